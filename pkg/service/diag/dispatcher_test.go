package diag_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/repository/memory"
	"github.com/leakwatch/leakwatch/pkg/service/diag"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/m-mizutani/gt"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"
)

// mockChannel records deliveries and can be told to fail or block
type mockChannel struct {
	mu      sync.Mutex
	name    string
	records []*model.FaultRecord
	err     error
	panics  bool
	block   chan struct{}
}

func (m *mockChannel) Name() string { return m.name }

func (m *mockChannel) Deliver(ctx context.Context, record *model.FaultRecord) error {
	if m.block != nil {
		<-m.block
	}
	if m.panics {
		panic("channel exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return m.err
}

func (m *mockChannel) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDispatcherDeliversToAllChannels(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	repo := memory.New()
	ch := &mockChannel{name: "mock"}
	d := diag.NewDispatcher(
		diag.WithChannel(ch),
		diag.WithChannel(diag.NewJournalChannel(repo.FaultRecord())),
	)
	d.Start(context.Background())

	d.Report(context.Background(), model.SeverityError, "render fault", map[string]any{
		"kind":  "render",
		"path":  "App > ReportsPage",
		"count": 2,
	})

	waitFor(t, func() bool { return ch.count() == 1 })
	d.Stop()

	gt.Value(t, ch.records[0].Kind).Equal("render")
	gt.Value(t, ch.records[0].Payload["path"]).Equal("App > ReportsPage")
	gt.Value(t, ch.records[0].Payload["count"]).Equal("2")

	records, err := repo.FaultRecord().List(context.Background(), 10)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(1).Required()
	gt.Value(t, records[0].Message).Equal("render fault")
}

func TestDispatcherLogsSynchronously(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := logging.With(context.Background(), logger)

	d := diag.NewDispatcher()
	d.Report(ctx, model.SeverityWarning, "global fault captured", map[string]any{"kind": "uncaught"})

	gt.String(t, buf.String()).Contains("global fault captured")
	gt.String(t, buf.String()).Contains("level=WARN")
}

func TestDispatcherChannelFailureIsSwallowed(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	failing := &mockChannel{name: "failing", err: errors.New("unreachable")}
	panicking := &mockChannel{name: "panicking", panics: true}
	healthy := &mockChannel{name: "healthy"}

	d := diag.NewDispatcher(
		diag.WithChannel(failing),
		diag.WithChannel(panicking),
		diag.WithChannel(healthy),
	)
	d.Start(context.Background())

	d.Report(context.Background(), model.SeverityError, "first", nil)
	d.Report(context.Background(), model.SeverityError, "second", nil)

	waitFor(t, func() bool { return healthy.count() == 2 })
	d.Stop()
	gt.Value(t, failing.count()).Equal(2)
}

func TestDispatcherReportNeverBlocks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	block := make(chan struct{})
	ch := &mockChannel{name: "slow", block: block}
	d := diag.NewDispatcher(diag.WithChannel(ch), diag.WithQueueSize(1))
	d.Start(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			d.Report(context.Background(), model.SeverityInfo, "flood", nil)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Report blocked on a full queue")
	}

	close(block)
	d.Stop()
	gt.Bool(t, ch.count() < 50).True()
}

func TestDispatcherStopDrainsQueue(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ch := &mockChannel{name: "mock"}
	d := diag.NewDispatcher(diag.WithChannel(ch))

	for i := 0; i < 5; i++ {
		d.Report(context.Background(), model.SeverityInfo, "queued before start", nil)
	}
	d.Start(context.Background())
	d.Stop()

	gt.Value(t, ch.count()).Equal(5)
}

func TestDispatcherStopWithoutStart(t *testing.T) {
	d := diag.NewDispatcher()
	d.Stop()
	d.Stop()
}

func TestThrottle(t *testing.T) {
	ch := &mockChannel{name: "mock"}
	throttled := diag.Throttle(ch, rate.Every(time.Hour), 2)
	gt.Value(t, throttled.Name()).Equal("mock")

	for i := 0; i < 5; i++ {
		gt.NoError(t, throttled.Deliver(context.Background(), &model.FaultRecord{ID: model.NewFaultRecordID()}))
	}
	gt.Value(t, ch.count()).Equal(2)
}

func TestRecorder(t *testing.T) {
	r := diag.NewRecorder()
	r.Report(context.Background(), model.SeverityError, "x", map[string]any{"a": 1})

	gt.Value(t, r.Len()).Equal(1)
	entries := r.Entries()
	gt.Value(t, entries[0].Message).Equal("x")
	gt.Value(t, entries[0].Severity).Equal(model.SeverityError)
}
