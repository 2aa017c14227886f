package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type faultRecordRepository struct {
	mu      sync.RWMutex
	records []*model.FaultRecord
}

func newFaultRecordRepository() *faultRecordRepository {
	return &faultRecordRepository{}
}

func copyFaultRecord(r *model.FaultRecord) *model.FaultRecord {
	c := *r
	c.Payload = maps.Clone(r.Payload)
	return &c
}

func (r *faultRecordRepository) Append(ctx context.Context, record *model.FaultRecord) error {
	if record == nil {
		return goerr.New("fault record is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = model.NewFaultRecordID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	r.records = append(r.records, copyFaultRecord(record))
	return nil
}

func (r *faultRecordRepository) List(ctx context.Context, limit int) ([]*model.FaultRecord, error) {
	return r.list(limit, func(*model.FaultRecord) bool { return true })
}

func (r *faultRecordRepository) ListByKind(ctx context.Context, kind string, limit int) ([]*model.FaultRecord, error) {
	return r.list(limit, func(rec *model.FaultRecord) bool { return rec.Kind == kind })
}

func (r *faultRecordRepository) list(limit int, match func(*model.FaultRecord) bool) ([]*model.FaultRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := make([]*model.FaultRecord, 0, len(r.records))
	for _, rec := range r.records {
		if match(rec) {
			sorted = append(sorted, rec)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	result := make([]*model.FaultRecord, 0, len(sorted))
	for _, rec := range sorted {
		result = append(result, copyFaultRecord(rec))
	}
	return result, nil
}

func (r *faultRecordRepository) Get(ctx context.Context, id model.FaultRecordID) (*model.FaultRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.ID == id {
			return copyFaultRecord(rec), nil
		}
	}
	return nil, goerr.Wrap(model.ErrNotFound, "fault record not found", goerr.V("id", string(id)))
}
