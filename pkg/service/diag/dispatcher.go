package diag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/leakwatch/leakwatch/pkg/utils/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultQueueSize is the number of records buffered before new ones are dropped
	DefaultQueueSize = 256
	// DefaultDeliveryTimeout bounds one delivery of one record to all channels
	DefaultDeliveryTimeout = 10 * time.Second
)

// Dispatcher is the process-wide Sink. Every record is logged synchronously and then queued
// for delivery to the configured channels by a background worker.
//
// Architecture assumptions:
// - One dispatcher per process, started before the first Report that must be delivered
// - Records queued while the worker is not running are delivered once it starts
type Dispatcher struct {
	channels        []Channel
	queue           chan *model.FaultRecord
	deliveryTimeout time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

var _ Sink = &Dispatcher{}

type DispatcherOption func(*Dispatcher)

// WithChannel adds a delivery channel
func WithChannel(ch Channel) DispatcherOption {
	return func(d *Dispatcher) {
		d.channels = append(d.channels, ch)
	}
}

// WithQueueSize sets the delivery queue capacity
func WithQueueSize(size int) DispatcherOption {
	return func(d *Dispatcher) {
		if size > 0 {
			d.queue = make(chan *model.FaultRecord, size)
		}
	}
}

// WithDeliveryTimeout sets the per-record delivery timeout
func WithDeliveryTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.deliveryTimeout = timeout
	}
}

func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		queue:           make(chan *model.FaultRecord, DefaultQueueSize),
		deliveryTimeout: DefaultDeliveryTimeout,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Channels returns the names of the configured channels
func (d *Dispatcher) Channels() []string {
	names := make([]string, len(d.channels))
	for i, ch := range d.channels {
		names[i] = ch.Name()
	}
	return names
}

// Report logs the record and enqueues it without blocking. A full queue drops the record.
func (d *Dispatcher) Report(ctx context.Context, severity model.Severity, message string, payload map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			logging.Default().Error("panic in diagnostic sink", "panic", r)
		}
	}()

	attrs := make([]any, 0, len(payload))
	keys := sortedKeys(payload)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, payload[k]))
	}
	logging.From(ctx).Log(ctx, severity.SlogLevel(), message, attrs...)

	if len(d.channels) == 0 {
		return
	}

	record := &model.FaultRecord{
		ID:        model.NewFaultRecordID(),
		Severity:  severity,
		Message:   message,
		Payload:   make(map[string]string, len(payload)),
		CreatedAt: time.Now().UTC(),
	}
	for _, k := range keys {
		if k == "kind" {
			record.Kind = fmt.Sprint(payload[k])
			continue
		}
		record.Payload[k] = fmt.Sprint(payload[k])
	}

	select {
	case d.queue <- record:
	default:
		metrics.DiagnosticsDropped.Inc()
		logging.From(ctx).Warn("diagnostic queue full, record dropped", "record_id", record.ID)
	}
}

// Start launches the delivery worker. Calling Start more than once has no effect.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		logging.Default().Info("diagnostic dispatcher starting", "channels", d.Channels())
		go d.run(ctx)
	})
}

// Stop signals the worker to deliver what is queued and waits for it to exit.
// Stop on a dispatcher that was never started returns immediately.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
		started := true
		d.startOnce.Do(func() { started = false })
		if started {
			<-d.doneCh
		}
		logging.Default().Info("diagnostic dispatcher stopped")
	})
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.doneCh)

	for {
		select {
		case record := <-d.queue:
			d.deliver(ctx, record)

		case <-d.stopCh:
			d.drain()
			return

		case <-ctx.Done():
			logging.Default().Info("diagnostic dispatcher context cancelled")
			d.drain()
			return
		}
	}
}

// drain delivers records still queued at shutdown with a fresh context
func (d *Dispatcher) drain() {
	for {
		select {
		case record := <-d.queue:
			d.deliver(context.Background(), record)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, record *model.FaultRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.deliveryTimeout)
	defer cancel()

	var eg errgroup.Group
	for _, ch := range d.channels {
		eg.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					metrics.DiagnosticDeliveries.WithLabelValues(ch.Name(), "panic").Inc()
					logging.Default().Error("panic in diagnostic channel", "channel", ch.Name(), "panic", r)
				}
			}()

			if err := ch.Deliver(ctx, record); err != nil {
				metrics.DiagnosticDeliveries.WithLabelValues(ch.Name(), "error").Inc()
				logging.Default().Error("failed to deliver diagnostic record",
					"channel", ch.Name(),
					"record_id", record.ID,
					"error", err,
				)
				return nil
			}
			metrics.DiagnosticDeliveries.WithLabelValues(ch.Name(), "ok").Inc()
			return nil
		})
	}
	_ = eg.Wait()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
