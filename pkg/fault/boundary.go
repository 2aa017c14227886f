// Package fault contains faults so that one failure does not take down the dashboard.
//
// A Boundary contains render faults of its subtree and replaces the subtree with a
// fallback until it is dismissed. The Listener observes faults outside the render path
// (goroutines, unhandled async errors, panics escaping HTTP handlers) and only reports them.
package fault

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/service/diag"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/leakwatch/leakwatch/pkg/utils/metrics"
	"github.com/leakwatch/leakwatch/pkg/view"
	"github.com/m-mizutani/goerr/v2"
)

// State of a Boundary
type State int

const (
	Clear State = iota
	Faulted
)

func (s State) String() string {
	switch s {
	case Clear:
		return "clear"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Boundary is the Clear/Faulted state machine wrapping one subtree.
// Its FaultState is owned exclusively by the boundary.
type Boundary struct {
	name string
	sink diag.Sink

	mu          sync.Mutex
	state       model.FaultState
	transitions int
}

// NewBoundary returns a boundary in the Clear state
func NewBoundary(name string, sink diag.Sink) *Boundary {
	if sink == nil {
		sink = diag.Nop{}
	}
	return &Boundary{name: name, sink: sink}
}

// Name identifies the boundary in fallbacks and dismiss requests
func (b *Boundary) Name() string {
	return b.name
}

// State returns Clear or Faulted
func (b *Boundary) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state.HasFault {
		return Faulted
	}
	return Clear
}

// Snapshot returns a copy of the current FaultState
func (b *Boundary) Snapshot() model.FaultState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Transitions counts Clear to Faulted transitions since creation
func (b *Boundary) Transitions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transitions
}

// Render renders child through w while Clear. Child output is buffered and copied unchanged,
// so a fault never leaves partial child markup behind. While Faulted, the fallback is
// rendered and child is not called.
func (b *Boundary) Render(ctx context.Context, w io.Writer, child view.Component) error {
	if state := b.Snapshot(); state.HasFault {
		return b.renderFallback(ctx, w, state)
	}

	var buf bytes.Buffer
	if err := renderChild(ctx, &buf, child); err != nil {
		b.Catch(ctx, err)
		return b.renderFallback(ctx, w, b.Snapshot())
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return goerr.Wrap(err, "failed to write rendered output", goerr.V("boundary", b.name))
	}
	return nil
}

// Catch transitions Clear to Faulted with the given fault and reports it.
// A fault caught while already Faulted is reported but does not change the state.
func (b *Boundary) Catch(ctx context.Context, v any) {
	fault, fctx := b.describe(ctx, v)

	b.mu.Lock()
	alreadyFaulted := b.state.HasFault
	if !alreadyFaulted {
		b.state = model.FaultState{HasFault: true, Fault: fault, Context: fctx}
		b.transitions++
	}
	b.mu.Unlock()

	metrics.FaultsTotal.WithLabelValues(string(model.FaultKindRender)).Inc()

	payload := fctx.Payload()
	payload["kind"] = string(model.FaultKindRender)
	payload["fault_id"] = string(fault.ID)
	payload["error"] = fault.Message
	payload["component_stack"] = fctx.ComponentStack()
	if alreadyFaulted {
		payload["ignored"] = true
	}
	safeReport(ctx, b.sink, model.SeverityError, "render fault", payload)
}

// Dismiss resets the boundary to its initial Clear state so the next Render retries the
// children. It returns false if the boundary was not Faulted.
func (b *Boundary) Dismiss() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.state.HasFault {
		return false
	}
	b.state = model.FaultState{}
	return true
}

func (b *Boundary) describe(ctx context.Context, v any) (*model.Fault, *model.FaultContext) {
	fctx := &model.FaultContext{
		Path:       view.Path(ctx),
		Boundary:   b.name,
		RequestID:  RequestIDFrom(ctx),
		InstanceID: InstanceIDFrom(ctx),
	}

	cause := v
	if err, ok := v.(error); ok {
		var re *view.RenderError
		if errors.As(err, &re) {
			fctx.Path = re.Path
			cause = re.Cause
		}
	}

	return model.NewFault(model.FaultKindRender, cause), fctx
}

func (b *Boundary) renderFallback(ctx context.Context, w io.Writer, state model.FaultState) error {
	return view.Fallback(b.name, state).Render(ctx, w)
}

// renderChild converts a panic in child into a returned error
func renderChild(ctx context.Context, w io.Writer, child view.Component) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*view.RenderError); ok {
				err = re
				return
			}
			err = &view.RenderError{Path: view.Path(ctx), Cause: r}
		}
	}()
	return child.Render(ctx, w)
}

// safeReport shields callers from a misbehaving sink
func safeReport(ctx context.Context, sink diag.Sink, severity model.Severity, msg string, payload map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			logging.Default().Error("panic while reporting fault", "panic", r, "message", msg)
		}
	}()
	sink.Report(ctx, severity, msg, payload)
}
