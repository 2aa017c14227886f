package diag

import (
	"context"

	"github.com/leakwatch/leakwatch/pkg/domain/interfaces"
	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type journalChannel struct {
	repo interfaces.FaultRecordRepository
}

// NewJournalChannel appends every record to repo
func NewJournalChannel(repo interfaces.FaultRecordRepository) Channel {
	return &journalChannel{repo: repo}
}

func (x *journalChannel) Name() string { return "journal" }

func (x *journalChannel) Deliver(ctx context.Context, record *model.FaultRecord) error {
	if err := x.repo.Append(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to append to journal", goerr.V("record_id", string(record.ID)))
	}
	return nil
}
