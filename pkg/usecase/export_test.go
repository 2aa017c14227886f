package usecase

// ToastMessage is exported for testing
var ToastMessage = toastMessage
