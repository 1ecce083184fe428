package firestore

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	complaintsCollection = "complaints"
	adherencesCollection = "adherences"
	countersCollection   = "counters"
	complaintCounterDoc  = "complaint_counter"
)

type complaintRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ComplaintRepository = &complaintRepository{}

func newComplaintRepository(client *firestore.Client) *complaintRepository {
	return &complaintRepository{
		client: client,
	}
}

// complaintDoc is the Firestore persistence model
type complaintDoc struct {
	ID            int64      `firestore:"id"`
	Description   string     `firestore:"description"`
	Status        string     `firestore:"status"`
	Department    string     `firestore:"department"`
	OwnerUserID   string     `firestore:"owner_user_id"`
	CreatedAt     time.Time  `firestore:"created_at"`
	ResolvedAt    *time.Time `firestore:"resolved_at"`
	AttachmentRef string     `firestore:"attachment_ref"`
	Version       int64      `firestore:"version"`
	UpdatedAt     time.Time  `firestore:"updated_at"`
}

// adherenceDoc is keyed by "{user}_{complaint}" so a duplicate pair collides
type adherenceDoc struct {
	UserID      string    `firestore:"user_id"`
	ComplaintID int64     `firestore:"complaint_id"`
	CreatedAt   time.Time `firestore:"created_at"`
}

func (r *complaintRepository) collection(name string) *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + name)
	}
	return r.client.Collection(name)
}

func (r *complaintRepository) complaintRef(id types.ComplaintID) *firestore.DocumentRef {
	return r.collection(complaintsCollection).Doc(id.String())
}

func (r *complaintRepository) adherenceRef(userID types.UserID, id types.ComplaintID) *firestore.DocumentRef {
	// PathEscape keeps "/" out of the document ID and is injective, so distinct users never collide
	return r.collection(adherencesCollection).Doc(fmt.Sprintf("%d_%s", id, url.PathEscape(userID.String())))
}

func toComplaintDoc(c *model.Complaint) *complaintDoc {
	return &complaintDoc{
		ID:            int64(c.ID),
		Description:   c.Description,
		Status:        c.Status.String(),
		Department:    c.Department.String(),
		OwnerUserID:   c.OwnerUserID.String(),
		CreatedAt:     c.CreatedAt,
		ResolvedAt:    c.ResolvedAt,
		AttachmentRef: c.AttachmentRef,
		Version:       c.Version,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (d *complaintDoc) toModel() *model.Complaint {
	c := &model.Complaint{
		ID:            types.ComplaintID(d.ID),
		Description:   d.Description,
		Status:        types.ComplaintStatus(d.Status),
		Department:    types.Department(d.Department),
		OwnerUserID:   types.UserID(d.OwnerUserID),
		CreatedAt:     d.CreatedAt.UTC(),
		AttachmentRef: d.AttachmentRef,
		Version:       d.Version,
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
	if d.ResolvedAt != nil {
		resolvedAt := d.ResolvedAt.UTC()
		c.ResolvedAt = &resolvedAt
	}
	return c
}

func (r *complaintRepository) getNextID(ctx context.Context) (int64, error) {
	counterRef := r.collection(countersCollection).Doc(complaintCounterDoc)

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID")
	}

	return nextID, nil
}

func (r *complaintRepository) Create(ctx context.Context, c *model.Complaint) (*model.Complaint, error) {
	nextID, err := r.getNextID(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next ID")
	}

	created := c.Clone()
	created.ID = types.ComplaintID(nextID)
	created.Version = 1
	created.UpdatedAt = time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = created.UpdatedAt
	}

	if _, err := r.complaintRef(created.ID).Set(ctx, toComplaintDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create complaint", goerr.V(model.ComplaintIDKey, created.ID))
	}

	return created, nil
}

func (r *complaintRepository) Get(ctx context.Context, id types.ComplaintID) (*model.Complaint, error) {
	docSnap, err := r.complaintRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "complaint not found", goerr.V(model.ComplaintIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get complaint", goerr.V(model.ComplaintIDKey, id))
	}

	var doc complaintDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode complaint", goerr.V(model.ComplaintIDKey, id))
	}

	return doc.toModel(), nil
}

func (r *complaintRepository) List(ctx context.Context, opts ...interfaces.ListComplaintOption) ([]*model.Complaint, error) {
	cfg := interfaces.BuildListComplaintConfig(opts...)

	// Each filter combination is backed by a composite index ending in id, see IndexConfig
	query := r.collection(complaintsCollection).Query
	if d := cfg.Department(); d != nil {
		query = query.Where("department", "==", d.String())
	}
	if s := cfg.Status(); s != nil {
		query = query.Where("status", "==", s.String())
	}
	if o := cfg.Owner(); o != nil {
		query = query.Where("owner_user_id", "==", o.String())
	}

	iter := query.OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var complaints []*model.Complaint
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate complaints")
		}

		var doc complaintDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode complaint", goerr.V("doc_id", docSnap.Ref.ID))
		}
		complaints = append(complaints, doc.toModel())
	}
	return complaints, nil
}

func (r *complaintRepository) Update(ctx context.Context, c *model.Complaint) (*model.Complaint, error) {
	docRef := r.complaintRef(c.ID)

	var updated *model.Complaint
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "complaint not found", goerr.V(model.ComplaintIDKey, c.ID))
			}
			return goerr.Wrap(err, "failed to get complaint", goerr.V(model.ComplaintIDKey, c.ID))
		}

		var stored complaintDoc
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode complaint", goerr.V(model.ComplaintIDKey, c.ID))
		}
		if stored.Version != c.Version {
			return goerr.Wrap(interfaces.ErrVersionConflict, "complaint version mismatch",
				goerr.V(model.ComplaintIDKey, c.ID),
				goerr.V("stored_version", stored.Version),
				goerr.V("given_version", c.Version))
		}

		updated = c.Clone()
		updated.CreatedAt = stored.CreatedAt.UTC()
		updated.Version = stored.Version + 1
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, toComplaintDoc(updated))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update complaint", goerr.V(model.ComplaintIDKey, c.ID))
	}

	return updated, nil
}

func (r *complaintRepository) Delete(ctx context.Context, id types.ComplaintID) error {
	docRef := r.complaintRef(id)

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(interfaces.ErrNotFound, "complaint not found", goerr.V(model.ComplaintIDKey, id))
		}
		return goerr.Wrap(err, "failed to check complaint existence", goerr.V(model.ComplaintIDKey, id))
	}

	iter := r.collection(adherencesCollection).Where("complaint_id", "==", int64(id)).Documents(ctx)
	bulkWriter := r.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			iter.Stop()
			bulkWriter.End()
			return goerr.Wrap(err, "failed to iterate adherences for deletion", goerr.V(model.ComplaintIDKey, id))
		}
		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			iter.Stop()
			bulkWriter.End()
			return goerr.Wrap(err, "failed to delete adherence", goerr.V(model.ComplaintIDKey, id))
		}
	}
	iter.Stop()
	bulkWriter.End()

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete complaint", goerr.V(model.ComplaintIDKey, id))
	}
	return nil
}

func (r *complaintRepository) CountAdherents(ctx context.Context, id types.ComplaintID) (int, error) {
	iter := r.collection(adherencesCollection).
		Where("complaint_id", "==", int64(id)).
		Select().
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count adherents", goerr.V(model.ComplaintIDKey, id))
		}
		count++
	}
	return count, nil
}

func (r *complaintRepository) AddAdherent(ctx context.Context, userID types.UserID, id types.ComplaintID) error {
	complaintRef := r.complaintRef(id)
	adherenceRef := r.adherenceRef(userID, id)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(complaintRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "complaint not found", goerr.V(model.ComplaintIDKey, id))
			}
			return goerr.Wrap(err, "failed to get complaint", goerr.V(model.ComplaintIDKey, id))
		}

		_, err := tx.Get(adherenceRef)
		if err == nil {
			return goerr.Wrap(interfaces.ErrAlreadyAdhered, "duplicate adherence",
				goerr.V(model.ComplaintIDKey, id),
				goerr.V("user_id", userID))
		}
		if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get adherence", goerr.V(model.ComplaintIDKey, id))
		}

		return tx.Create(adherenceRef, &adherenceDoc{
			UserID:      userID.String(),
			ComplaintID: int64(id),
			CreatedAt:   time.Now().UTC(),
		})
	})
}

func (r *complaintRepository) ListDepartments(ctx context.Context) ([]types.Department, error) {
	iter := r.collection(complaintsCollection).Select("department").Documents(ctx)
	defer iter.Stop()

	seen := make(map[types.Department]struct{})
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate complaint departments")
		}

		v, err := docSnap.DataAt("department")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read department", goerr.V("doc_id", docSnap.Ref.ID))
		}
		if s, ok := v.(string); ok && s != "" {
			seen[types.Department(s)] = struct{}{}
		}
	}

	result := make([]types.Department, 0, len(seen))
	for d := range seen {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i] < result[j]
	})
	return result, nil
}
