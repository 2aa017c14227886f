package interfaces

import (
	"context"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
)

// FaultRecordRepository is the append-only diagnostic journal
type FaultRecordRepository interface {
	// Append stores a new record. ID and CreatedAt are assigned when empty.
	Append(ctx context.Context, record *model.FaultRecord) error

	// List returns up to limit records ordered by CreatedAt descending
	List(ctx context.Context, limit int) ([]*model.FaultRecord, error)

	// ListByKind is List restricted to records of one fault kind
	ListByKind(ctx context.Context, kind string, limit int) ([]*model.FaultRecord, error)

	// Get returns model.ErrNotFound if the record does not exist
	Get(ctx context.Context, id model.FaultRecordID) (*model.FaultRecord, error)
}
