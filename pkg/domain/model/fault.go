package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// FaultID is a UUID-based identifier for a captured fault
type FaultID string

// NewFaultID generates a new UUID v4 FaultID
func NewFaultID() FaultID {
	return FaultID(uuid.New().String())
}

// FaultKind classifies where a fault was observed
type FaultKind string

const (
	FaultKindRender             FaultKind = "render"
	FaultKindUncaught           FaultKind = "uncaught"
	FaultKindUnhandledRejection FaultKind = "unhandled_rejection"
	FaultKindAPI                FaultKind = "api"
)

// Fault is an error value captured by a boundary or the global listener.
type Fault struct {
	ID         FaultID
	Kind       FaultKind
	Message    string
	Stack      []string
	OccurredAt time.Time
	Err        error
}

// NewFault builds a Fault from a recovered panic value or an error.
// A nil value produces a fault with a generic message, never a nil Fault.
func NewFault(kind FaultKind, v any) *Fault {
	f := &Fault{
		ID:         NewFaultID(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
	}

	switch e := v.(type) {
	case nil:
		f.Err = goerr.New("unknown fault")
	case error:
		f.Err = e
	case string:
		f.Err = goerr.New(e)
	default:
		f.Err = goerr.New(fmt.Sprintf("%v", e), goerr.V("panic", e))
	}
	f.Message = f.Err.Error()

	var ge *goerr.Error
	if errors.As(f.Err, &ge) {
		for _, st := range ge.Stacks() {
			f.Stack = append(f.Stack, fmt.Sprintf("%s (%s:%d)", st.Func, st.File, st.Line))
		}
	}

	return f
}

func (f *Fault) Error() string {
	return f.Message
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// FaultContext describes where in the render tree a fault occurred
type FaultContext struct {
	// Path is the component chain, outermost first
	Path       []string
	Boundary   string
	RequestID  string
	InstanceID string
}

// ComponentStack renders the path innermost first, one component per line
func (c *FaultContext) ComponentStack() string {
	if c == nil || len(c.Path) == 0 {
		return ""
	}
	var b strings.Builder
	for i := len(c.Path) - 1; i >= 0; i-- {
		b.WriteString("\n    in ")
		b.WriteString(c.Path[i])
	}
	return b.String()
}

// Payload returns the context as structured values for the diagnostic sink
func (c *FaultContext) Payload() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	return map[string]any{
		"path":        strings.Join(c.Path, " > "),
		"boundary":    c.Boundary,
		"request_id":  c.RequestID,
		"instance_id": c.InstanceID,
	}
}

// FaultState is owned by exactly one boundary. HasFault is true iff Fault is non-nil.
type FaultState struct {
	HasFault bool
	Fault    *Fault
	Context  *FaultContext
}

// Valid reports whether HasFault agrees with Fault
func (s FaultState) Valid() bool {
	return s.HasFault == (s.Fault != nil)
}
