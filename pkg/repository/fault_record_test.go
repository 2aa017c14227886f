package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/leakwatch/leakwatch/pkg/domain/interfaces"
	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/repository/firestore"
	"github.com/leakwatch/leakwatch/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

func runFaultRecordRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Append assigns ID and CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		rec := &model.FaultRecord{
			Severity: model.SeverityError,
			Message:  "render fault",
			Kind:     string(model.FaultKindRender),
			Payload:  map[string]string{"path": "App > ReportsPage"},
		}
		gt.NoError(t, repo.FaultRecord().Append(ctx, rec)).Required()
		gt.String(t, string(rec.ID)).NotEqual("")
		gt.Bool(t, rec.CreatedAt.IsZero()).False()

		got, err := repo.FaultRecord().Get(ctx, rec.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Message).Equal("render fault")
		gt.Value(t, got.Severity).Equal(model.SeverityError)
		gt.Value(t, got.Payload["path"]).Equal("App > ReportsPage")
	})

	t.Run("List returns newest first and respects limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Now().UTC()
		var ids []model.FaultRecordID
		for i := 0; i < 3; i++ {
			rec := &model.FaultRecord{
				Severity:  model.SeverityWarning,
				Message:   fmt.Sprintf("record %d", i),
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			}
			gt.NoError(t, repo.FaultRecord().Append(ctx, rec)).Required()
			ids = append(ids, rec.ID)
		}

		items, err := repo.FaultRecord().List(ctx, 2)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(2).Required()
		gt.Value(t, items[0].ID).Equal(ids[2])
		gt.Value(t, items[1].ID).Equal(ids[1])
	})

	t.Run("ListByKind filters by kind", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Now().UTC()
		kinds := []model.FaultKind{model.FaultKindRender, model.FaultKindAPI, model.FaultKindRender}
		for i, kind := range kinds {
			rec := &model.FaultRecord{
				Severity:  model.SeverityError,
				Message:   fmt.Sprintf("record %d", i),
				Kind:      string(kind),
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			}
			gt.NoError(t, repo.FaultRecord().Append(ctx, rec)).Required()
		}

		items, err := repo.FaultRecord().ListByKind(ctx, string(model.FaultKindRender), 0)
		gt.NoError(t, err).Required()
		gt.Array(t, items).Length(2).Required()
		gt.Value(t, items[0].Message).Equal("record 2")
		gt.Value(t, items[1].Message).Equal("record 0")

		none, err := repo.FaultRecord().ListByKind(ctx, "unknown", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, none).Length(0)
	})

	t.Run("Get unknown record returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.FaultRecord().Get(context.Background(), model.NewFaultRecordID())
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("Append nil record fails", func(t *testing.T) {
		repo := newRepo(t)
		gt.Error(t, repo.FaultRecord().Append(context.Background(), nil))
	})
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d_", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestMemoryFaultRecordRepository(t *testing.T) {
	runFaultRecordRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreFaultRecordRepository(t *testing.T) {
	runFaultRecordRepositoryTest(t, newFirestoreRepository)
}
