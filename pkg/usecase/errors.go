package usecase

// Context keys for error values
const (
	ViewerKey   = "viewer"
	SequenceKey = "sequence"
)
