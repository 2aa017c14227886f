// Package diag implements the diagnostic sink: an append-only, write-only reporting surface
// shared by the fault boundaries, the global fault listener and the viewers.
package diag

import (
	"context"
	"sync"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
)

// Sink accepts diagnostic records. Report never blocks and never fails the caller.
type Sink interface {
	Report(ctx context.Context, severity model.Severity, message string, payload map[string]any)
}

// Nop discards every record
type Nop struct{}

func (Nop) Report(context.Context, model.Severity, string, map[string]any) {}

// Entry is a record captured by Recorder
type Entry struct {
	Severity model.Severity
	Message  string
	Payload  map[string]any
}

// Recorder keeps every record in memory
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Report(_ context.Context, severity model.Severity, message string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Severity: severity, Message: message, Payload: payload})
}

// Entries returns a copy of the recorded entries
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recorded entries
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
