package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/service/diag"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/leakwatch/leakwatch/pkg/utils/metrics"
	"github.com/m-mizutani/goerr/v2"
)

// Runner starts fire-and-forget work. The global fault listener implements it.
type Runner interface {
	Go(ctx context.Context, fn func(ctx context.Context))
}

// ViewerState is what a viewer renders. Data is nil until the first successful fetch.
type ViewerState[T any] struct {
	Loading bool
	Data    *T
}

// viewer owns the fetch lifecycle of one read-only backend resource.
//
// Every fetch gets a sequence number. A result is applied only when it is newer than the
// last applied one, and Loading is cleared when the most recently issued fetch finishes,
// so overlapping refreshes can neither regress data nor leave the loader stuck.
type viewer[T any] struct {
	name       string
	fetch      func(ctx context.Context) (*T, error)
	successMsg string
	failureMsg string
	toasts     *Toasts
	sink       diag.Sink

	mu      sync.Mutex
	state   ViewerState[T]
	issued  uint64
	applied uint64
	mounted bool
}

// State returns a copy of the current state
func (v *viewer[T]) State() ViewerState[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Fetch loads the resource synchronously. A failure keeps the previous data, pushes an
// error toast and is reported to the sink; the error is returned for callers that want it.
func (v *viewer[T]) Fetch(ctx context.Context) error {
	return v.run(ctx, v.begin())
}

// Mount starts the initial fetch in the background. Only the first call fetches.
func (v *viewer[T]) Mount(ctx context.Context, runner Runner) bool {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return false
	}
	v.mounted = true
	v.mu.Unlock()

	v.Refresh(ctx, runner)
	return true
}

// Refresh starts a new background fetch without cancelling one already in flight
func (v *viewer[T]) Refresh(ctx context.Context, runner Runner) {
	v.mu.Lock()
	v.mounted = true
	v.mu.Unlock()

	seq := v.begin()
	runner.Go(ctx, func(ctx context.Context) {
		_ = v.run(ctx, seq)
	})
}

func (v *viewer[T]) begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issued++
	v.state.Loading = true
	return v.issued
}

func (v *viewer[T]) run(ctx context.Context, seq uint64) error {
	defer v.finish(seq)

	data, err := v.fetch(ctx)
	if err != nil {
		v.fail(ctx, seq, err)
		return goerr.Wrap(err, "failed to fetch", goerr.V(ViewerKey, v.name), goerr.V(SequenceKey, seq))
	}

	v.mu.Lock()
	if seq <= v.applied {
		v.mu.Unlock()
		logging.From(ctx).Debug("discarding stale response", "viewer", v.name, "seq", seq)
		return nil
	}
	v.applied = seq
	v.state.Data = data
	v.mu.Unlock()

	v.toasts.Push(model.ToastSuccess, v.successMsg)
	return nil
}

func (v *viewer[T]) finish(seq uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq == v.issued {
		v.state.Loading = false
	}
}

func (v *viewer[T]) fail(ctx context.Context, seq uint64, err error) {
	metrics.FaultsTotal.WithLabelValues(string(model.FaultKindAPI)).Inc()

	v.mu.Lock()
	stale := seq <= v.applied
	v.mu.Unlock()

	v.sink.Report(ctx, model.SeverityError, v.failureMsg, map[string]any{
		"kind":   string(model.FaultKindAPI),
		"viewer": v.name,
		"error":  err.Error(),
		"stale":  stale,
	})

	if !stale {
		v.toasts.Push(model.ToastError, toastMessage(err, v.failureMsg))
	}
}

// toastMessage prefers the backend's own error text over the default message
func toastMessage(err error, fallback string) string {
	var apiErr interface{ Message() string }
	if errors.As(err, &apiErr) && apiErr.Message() != "" {
		return apiErr.Message()
	}
	return fallback
}
