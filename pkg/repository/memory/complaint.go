package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
)

type adherenceKey struct {
	userID      types.UserID
	complaintID types.ComplaintID
}

type complaintRepository struct {
	mu         sync.RWMutex
	complaints map[types.ComplaintID]*model.Complaint
	adherences map[adherenceKey]*model.Adherence
	nextID     types.ComplaintID
}

func newComplaintRepository() *complaintRepository {
	return &complaintRepository{
		complaints: make(map[types.ComplaintID]*model.Complaint),
		adherences: make(map[adherenceKey]*model.Adherence),
		nextID:     1,
	}
}

func (r *complaintRepository) Create(ctx context.Context, c *model.Complaint) (*model.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := c.Clone()
	created.ID = r.nextID
	created.Version = 1
	created.UpdatedAt = time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = created.UpdatedAt
	}
	r.nextID++

	r.complaints[created.ID] = created
	return created.Clone(), nil
}

func (r *complaintRepository) Get(ctx context.Context, id types.ComplaintID) (*model.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.complaints[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "complaint not found", goerr.V(model.ComplaintIDKey, id))
	}
	return c.Clone(), nil
}

func (r *complaintRepository) List(ctx context.Context, opts ...interfaces.ListComplaintOption) ([]*model.Complaint, error) {
	cfg := interfaces.BuildListComplaintConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Complaint, 0, len(r.complaints))
	for _, c := range r.complaints {
		if !cfg.Match(c.Department, c.Status, c.OwnerUserID) {
			continue
		}
		result = append(result, c.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *complaintRepository) Update(ctx context.Context, c *model.Complaint) (*model.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.complaints[c.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "complaint not found", goerr.V(model.ComplaintIDKey, c.ID))
	}
	if existing.Version != c.Version {
		return nil, goerr.Wrap(interfaces.ErrVersionConflict, "complaint version mismatch",
			goerr.V(model.ComplaintIDKey, c.ID),
			goerr.V("stored_version", existing.Version),
			goerr.V("given_version", c.Version))
	}

	updated := c.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.Version = existing.Version + 1
	updated.UpdatedAt = time.Now().UTC()

	r.complaints[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *complaintRepository) Delete(ctx context.Context, id types.ComplaintID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.complaints[id]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "complaint not found", goerr.V(model.ComplaintIDKey, id))
	}

	delete(r.complaints, id)
	for key := range r.adherences {
		if key.complaintID == id {
			delete(r.adherences, key)
		}
	}
	return nil
}

func (r *complaintRepository) CountAdherents(ctx context.Context, id types.ComplaintID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for key := range r.adherences {
		if key.complaintID == id {
			count++
		}
	}
	return count, nil
}

func (r *complaintRepository) AddAdherent(ctx context.Context, userID types.UserID, id types.ComplaintID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.complaints[id]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "complaint not found", goerr.V(model.ComplaintIDKey, id))
	}

	key := adherenceKey{userID: userID, complaintID: id}
	if _, exists := r.adherences[key]; exists {
		return goerr.Wrap(interfaces.ErrAlreadyAdhered, "duplicate adherence",
			goerr.V(model.ComplaintIDKey, id),
			goerr.V("user_id", userID))
	}

	r.adherences[key] = &model.Adherence{
		UserID:      userID,
		ComplaintID: id,
		CreatedAt:   time.Now().UTC(),
	}
	return nil
}

func (r *complaintRepository) ListDepartments(ctx context.Context) ([]types.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[types.Department]struct{})
	for _, c := range r.complaints {
		seen[c.Department] = struct{}{}
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
