package interfaces

import (
	"context"

	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
)

// ComplaintRepository defines the interface for Complaint data access.
// List results are ordered by ascending ID.
type ComplaintRepository interface {
	// Create stores a new complaint with an auto-generated ID and Version 1
	Create(ctx context.Context, c *model.Complaint) (*model.Complaint, error)

	// Get retrieves a complaint by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id types.ComplaintID) (*model.Complaint, error)

	// List retrieves complaints matching every given filter
	List(ctx context.Context, opts ...ListComplaintOption) ([]*model.Complaint, error)

	// Update replaces a stored complaint. c.Version must match the stored version,
	// otherwise ErrVersionConflict is returned. The returned complaint carries the
	// incremented version.
	Update(ctx context.Context, c *model.Complaint) (*model.Complaint, error)

	// Delete removes a complaint and its adherences
	Delete(ctx context.Context, id types.ComplaintID) error

	// CountAdherents returns the number of users who adhered to the complaint
	CountAdherents(ctx context.Context, id types.ComplaintID) (int, error)

	// AddAdherent records an adherence. Returns ErrAlreadyAdhered for a duplicate pair
	// and ErrNotFound if the complaint does not exist.
	AddAdherent(ctx context.Context, userID types.UserID, id types.ComplaintID) error

	// ListDepartments returns the distinct departments of stored complaints, sorted
	ListDepartments(ctx context.Context) ([]types.Department, error)
}
