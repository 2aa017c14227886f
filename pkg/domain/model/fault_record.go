package model

import (
	"time"

	"github.com/google/uuid"
)

// FaultRecordID is a UUID-based identifier for FaultRecord
type FaultRecordID string

// NewFaultRecordID generates a new UUID v4 FaultRecordID
func NewFaultRecordID() FaultRecordID {
	return FaultRecordID(uuid.New().String())
}

// FaultRecord is one entry appended to the diagnostic journal.
// Payload values are flattened to strings so every backend can store them.
type FaultRecord struct {
	ID        FaultRecordID
	Severity  Severity
	Message   string
	Kind      string
	Payload   map[string]string
	CreatedAt time.Time
}
