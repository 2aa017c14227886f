package model

import "github.com/google/uuid"

// ToastKind is the visual kind of a transient notification
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a transient, non-blocking user notification
type Toast struct {
	ID      string
	Kind    ToastKind
	Message string
}

// NewToast creates a toast with a fresh ID
func NewToast(kind ToastKind, message string) Toast {
	return Toast{ID: uuid.New().String(), Kind: kind, Message: message}
}
