package fault

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/service/diag"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/leakwatch/leakwatch/pkg/utils/metrics"
	"github.com/m-mizutani/goerr/v2"
)

// Listener observes faults that escape the render path. It only reports them and never
// touches boundary state.
type Listener struct {
	sink    diag.Sink
	started atomic.Bool
}

// NewListener creates a listener reporting to sink. It ignores faults until Start.
func NewListener(sink diag.Sink) *Listener {
	if sink == nil {
		sink = diag.Nop{}
	}
	return &Listener{sink: sink}
}

// Start activates the listener. A second call returns ErrListenerAlreadyStarted.
func (l *Listener) Start() error {
	if !l.started.CompareAndSwap(false, true) {
		return goerr.Wrap(ErrListenerAlreadyStarted, "cannot start listener twice")
	}
	return nil
}

// Started reports whether Start has been called
func (l *Listener) Started() bool {
	return l.started.Load()
}

// ReportUncaught reports a panic value or error thrown outside any boundary
func (l *Listener) ReportUncaught(ctx context.Context, v any) {
	l.report(ctx, model.FaultKindUncaught, "uncaught fault", v)
}

// ReportUnhandledRejection reports an asynchronous error nobody handled
func (l *Listener) ReportUnhandledRejection(ctx context.Context, reason any) {
	l.report(ctx, model.FaultKindUnhandledRejection, "unhandled rejection", reason)
}

func (l *Listener) report(ctx context.Context, kind model.FaultKind, msg string, v any) {
	if !l.started.Load() {
		logging.From(ctx).Warn("fault listener not started, dropping fault",
			"kind", kind, "fault", fmt.Sprint(v))
		return
	}

	fault := model.NewFault(kind, v)
	metrics.FaultsTotal.WithLabelValues(string(kind)).Inc()

	payload := map[string]any{
		"kind":     string(kind),
		"fault_id": string(fault.ID),
		"error":    fault.Message,
	}
	if id := RequestIDFrom(ctx); id != "" {
		payload["request_id"] = id
	}
	if id := InstanceIDFrom(ctx); id != "" {
		payload["instance_id"] = id
	}
	if len(fault.Stack) > 0 {
		payload["stack"] = fault.Stack
	}

	safeReport(ctx, l.sink, model.SeverityError, msg, payload)
}

// Go runs fn in a new goroutine detached from ctx cancellation. A panic in fn is reported
// as uncaught.
func (l *Listener) Go(ctx context.Context, fn func(ctx context.Context)) {
	bgCtx := detach(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				l.ReportUncaught(bgCtx, r)
			}
		}()
		fn(bgCtx)
	}()
}

// Dispatch is Go for handlers returning an error. A returned error is reported as an
// unhandled rejection.
func (l *Listener) Dispatch(ctx context.Context, fn func(ctx context.Context) error) {
	l.Go(ctx, func(ctx context.Context) {
		if err := fn(ctx); err != nil {
			l.ReportUnhandledRejection(ctx, err)
		}
	})
}

// Recoverer is HTTP middleware reporting panics that escape handlers as uncaught faults
// and answering 500.
func (l *Listener) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				l.ReportUncaught(r.Context(), rv)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// detach keeps the logger and the fault context values but drops cancellation
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
