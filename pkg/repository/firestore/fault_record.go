package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FaultRecordsCollection is the collection holding the diagnostic journal
const FaultRecordsCollection = "fault_records"

// faultRecordDoc is the Firestore document representation of model.FaultRecord.
type faultRecordDoc struct {
	ID        string            `firestore:"ID"`
	Severity  string            `firestore:"Severity"`
	Message   string            `firestore:"Message"`
	Kind      string            `firestore:"Kind"`
	Payload   map[string]string `firestore:"Payload"`
	CreatedAt time.Time         `firestore:"CreatedAt"`
}

func toFaultRecordDoc(r *model.FaultRecord) *faultRecordDoc {
	return &faultRecordDoc{
		ID:        string(r.ID),
		Severity:  string(r.Severity),
		Message:   r.Message,
		Kind:      r.Kind,
		Payload:   r.Payload,
		CreatedAt: r.CreatedAt,
	}
}

func fromFaultRecordDoc(d *faultRecordDoc) *model.FaultRecord {
	return &model.FaultRecord{
		ID:        model.FaultRecordID(d.ID),
		Severity:  model.Severity(d.Severity),
		Message:   d.Message,
		Kind:      d.Kind,
		Payload:   d.Payload,
		CreatedAt: d.CreatedAt,
	}
}

type faultRecordRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newFaultRecordRepository(client *firestore.Client) *faultRecordRepository {
	return &faultRecordRepository{client: client}
}

func (r *faultRecordRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + FaultRecordsCollection)
}

// Append uses Create so an existing record is never overwritten
func (r *faultRecordRepository) Append(ctx context.Context, record *model.FaultRecord) error {
	if record == nil {
		return goerr.New("fault record is nil")
	}
	if record.ID == "" {
		record.ID = model.NewFaultRecordID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	docRef := r.collection().Doc(string(record.ID))
	if _, err := docRef.Create(ctx, toFaultRecordDoc(record)); err != nil {
		return goerr.Wrap(err, "failed to append fault record", goerr.V("id", string(record.ID)))
	}
	return nil
}

func (r *faultRecordRepository) List(ctx context.Context, limit int) ([]*model.FaultRecord, error) {
	return r.query(ctx, r.collection().OrderBy("CreatedAt", firestore.Desc), limit)
}

// ListByKind requires the Kind ASC, CreatedAt DESC composite index created by the migrate command
func (r *faultRecordRepository) ListByKind(ctx context.Context, kind string, limit int) ([]*model.FaultRecord, error) {
	query := r.collection().Where("Kind", "==", kind).OrderBy("CreatedAt", firestore.Desc)
	return r.query(ctx, query, limit)
}

func (r *faultRecordRepository) query(ctx context.Context, query firestore.Query, limit int) ([]*model.FaultRecord, error) {
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	records := make([]*model.FaultRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate fault records")
		}

		var d faultRecordDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal fault record", goerr.V("doc_id", doc.Ref.ID))
		}
		records = append(records, fromFaultRecordDoc(&d))
	}

	return records, nil
}

func (r *faultRecordRepository) Get(ctx context.Context, id model.FaultRecordID) (*model.FaultRecord, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "fault record not found", goerr.V("id", string(id)))
		}
		return nil, goerr.Wrap(err, "failed to get fault record", goerr.V("id", string(id)))
	}

	var d faultRecordDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal fault record", goerr.V("id", string(id)))
	}
	return fromFaultRecordDoc(&d), nil
}
