package fault_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/fault"
	"github.com/leakwatch/leakwatch/pkg/service/diag"
	"github.com/leakwatch/leakwatch/pkg/view"
	"github.com/m-mizutani/gt"
)

type panicSink struct{}

func (panicSink) Report(context.Context, model.Severity, string, map[string]any) {
	panic("sink is broken")
}

func throwing(v any) view.Component {
	return view.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, "<partial>")
		panic(v)
	})
}

func TestBoundaryPassThrough(t *testing.T) {
	sink := diag.NewRecorder()
	b := fault.NewBoundary("root", sink)

	child := view.Text(`<div id="child">hello</div>`)

	var direct bytes.Buffer
	gt.NoError(t, child.Render(context.Background(), &direct)).Required()

	var wrapped bytes.Buffer
	gt.NoError(t, b.Render(context.Background(), &wrapped, child)).Required()

	gt.Value(t, wrapped.String()).Equal(direct.String())
	gt.Value(t, b.State()).Equal(fault.Clear)
	gt.Value(t, sink.Len()).Equal(0)
	gt.Bool(t, b.Snapshot().Valid()).True()
}

func TestBoundaryCatch(t *testing.T) {
	testCases := []struct {
		name    string
		child   view.Component
		message string
	}{
		{
			name:    "panic with string",
			child:   throwing("x"),
			message: "x",
		},
		{
			name:    "panic with error",
			child:   throwing(errors.New("boom")),
			message: "boom",
		},
		{
			name:    "panic with non-error value",
			child:   throwing(42),
			message: "42",
		},
		{
			name: "returned error",
			child: view.ComponentFunc(func(context.Context, io.Writer) error {
				return errors.New("template failed")
			}),
			message: "template failed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sink := diag.NewRecorder()
			b := fault.NewBoundary("root", sink)

			var buf bytes.Buffer
			gt.NoError(t, b.Render(context.Background(), &buf, tc.child)).Required()

			out := buf.String()
			gt.String(t, out).Contains("An unexpected error occurred")
			gt.String(t, out).Contains(tc.message)
			gt.String(t, out).NotContains("<partial>")

			gt.Value(t, b.State()).Equal(fault.Faulted)
			gt.Value(t, b.Transitions()).Equal(1)

			state := b.Snapshot()
			gt.Bool(t, state.Valid()).True()
			gt.Bool(t, state.HasFault).True()
			gt.Value(t, state.Fault.Message).Equal(tc.message)
			gt.Value(t, state.Fault.Kind).Equal(model.FaultKindRender)

			entries := sink.Entries()
			gt.Array(t, entries).Length(1).Required()
			gt.Value(t, entries[0].Severity).Equal(model.SeverityError)
			gt.Value(t, entries[0].Message).Equal("render fault")
			gt.Value(t, entries[0].Payload["error"]).Equal(any(tc.message))
			gt.Value(t, entries[0].Payload["boundary"]).Equal(any("root"))
		})
	}
}

func TestBoundaryFaultedSkipsChild(t *testing.T) {
	sink := diag.NewRecorder()
	b := fault.NewBoundary("root", sink)

	var buf bytes.Buffer
	gt.NoError(t, b.Render(context.Background(), &buf, throwing("x"))).Required()

	calls := 0
	counting := view.ComponentFunc(func(_ context.Context, w io.Writer) error {
		calls++
		_, err := io.WriteString(w, "ok")
		return err
	})

	buf.Reset()
	gt.NoError(t, b.Render(context.Background(), &buf, counting)).Required()
	gt.Value(t, calls).Equal(0)
	gt.String(t, buf.String()).Contains("An unexpected error occurred")
	gt.Value(t, sink.Len()).Equal(1)
}

func TestBoundaryDismiss(t *testing.T) {
	sink := diag.NewRecorder()
	b := fault.NewBoundary("root", sink)

	// Dismiss while clear is a no-op
	gt.Bool(t, b.Dismiss()).False()
	gt.Value(t, b.State()).Equal(fault.Clear)

	var buf bytes.Buffer
	gt.NoError(t, b.Render(context.Background(), &buf, throwing("x"))).Required()
	gt.Value(t, b.State()).Equal(fault.Faulted)

	gt.Bool(t, b.Dismiss()).True()
	gt.Value(t, b.State()).Equal(fault.Clear)
	gt.Value(t, b.Snapshot()).Equal(model.FaultState{})

	t.Run("recovered child renders normally", func(t *testing.T) {
		buf.Reset()
		gt.NoError(t, b.Render(context.Background(), &buf, view.Text("restored"))).Required()
		gt.Value(t, buf.String()).Equal("restored")
		gt.Value(t, b.State()).Equal(fault.Clear)
	})

	t.Run("persisting fault is a new transition", func(t *testing.T) {
		buf.Reset()
		gt.NoError(t, b.Render(context.Background(), &buf, throwing("x"))).Required()
		gt.Value(t, b.State()).Equal(fault.Faulted)
		gt.Value(t, b.Transitions()).Equal(2)
		gt.Value(t, sink.Len()).Equal(2)
	})
}

func TestBoundaryRecordsComponentPath(t *testing.T) {
	sink := diag.NewRecorder()
	b := fault.NewBoundary("root", sink)

	child := view.Named("App", view.Named("ReportsPage", throwing("x")))

	var buf bytes.Buffer
	gt.NoError(t, b.Render(context.Background(), &buf, child)).Required()

	state := b.Snapshot()
	gt.Value(t, state.Context.Path).Equal([]string{"App", "ReportsPage"})
	gt.Value(t, state.Context.Boundary).Equal("root")
	gt.Value(t, state.Context.ComponentStack()).Equal("\n    in ReportsPage\n    in App")
	gt.String(t, buf.String()).Contains("in ReportsPage")

	entries := sink.Entries()
	gt.Array(t, entries).Length(1).Required()
	gt.Value(t, entries[0].Payload["path"]).Equal(any("App > ReportsPage"))
}

func TestBoundaryRecordsInstanceID(t *testing.T) {
	sink := diag.NewRecorder()
	b := fault.NewBoundary("root", sink)

	ctx := fault.WithInstanceID(context.Background(), "instance-1")
	var buf bytes.Buffer
	gt.NoError(t, b.Render(ctx, &buf, throwing("x"))).Required()

	gt.Value(t, b.Snapshot().Context.InstanceID).Equal("instance-1")
}

func TestNestedBoundaries(t *testing.T) {
	sink := diag.NewRecorder()
	outer := fault.NewBoundary("outer", sink)
	inner := fault.NewBoundary("inner", sink)

	child := view.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<nav>"); err != nil {
			return err
		}
		return inner.Render(ctx, w, throwing("inner failure"))
	})

	var buf bytes.Buffer
	gt.NoError(t, outer.Render(context.Background(), &buf, child)).Required()

	gt.Value(t, outer.State()).Equal(fault.Clear)
	gt.Value(t, inner.State()).Equal(fault.Faulted)
	gt.Bool(t, strings.HasPrefix(buf.String(), "<nav>")).True()
	gt.String(t, buf.String()).Contains("inner failure")
	gt.Value(t, sink.Len()).Equal(1)
}

func TestBoundarySinkFailureIsSwallowed(t *testing.T) {
	b := fault.NewBoundary("root", panicSink{})

	var buf bytes.Buffer
	gt.NoError(t, b.Render(context.Background(), &buf, throwing("x"))).Required()
	gt.Value(t, b.State()).Equal(fault.Faulted)
	gt.String(t, buf.String()).Contains("An unexpected error occurred")
}

func TestBoundaryConcurrentCatch(t *testing.T) {
	sink := diag.NewRecorder()
	b := fault.NewBoundary("root", sink)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Catch(context.Background(), errors.New("boom"))
		}()
	}
	wg.Wait()

	gt.Value(t, b.Transitions()).Equal(1)
	gt.Value(t, sink.Len()).Equal(16)
	gt.Bool(t, b.Snapshot().Valid()).True()
}
