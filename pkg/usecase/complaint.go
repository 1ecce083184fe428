package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"github.com/secmon-lab/grievance/pkg/utils/logging"
)

type ComplaintUseCase struct {
	repo        interfaces.Repository
	departments *model.DepartmentRegistry
	classifier  interfaces.Classifier
	now         func() time.Time
}

func NewComplaintUseCase(repo interfaces.Repository, departments *model.DepartmentRegistry, classifier interfaces.Classifier, now func() time.Time) *ComplaintUseCase {
	if now == nil {
		now = time.Now
	}
	return &ComplaintUseCase{
		repo:        repo,
		departments: departments,
		classifier:  classifier,
		now:         now,
	}
}

// CreateComplaintInput holds the fields a user supplies when filing a complaint
type CreateComplaintInput struct {
	Description   string
	Department    types.Department
	OwnerUserID   types.UserID
	AttachmentRef string
}

// ComplaintView is a complaint together with its adherent count
type ComplaintView struct {
	*model.Complaint
	Adherents int
}

func (uc *ComplaintUseCase) checkDepartment(department types.Department) error {
	if !uc.departments.Accepts(department) {
		return goerr.Wrap(ErrUnknownDepartment, "department is not registered",
			goerr.V(DepartmentKey, department))
	}
	return nil
}

// get maps a repository miss to ErrComplaintNotFound
func (uc *ComplaintUseCase) get(ctx context.Context, id types.ComplaintID) (*model.Complaint, error) {
	c, err := uc.repo.Complaint().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrComplaintNotFound, "complaint not found", goerr.V(ComplaintIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get complaint", goerr.V(ComplaintIDKey, id))
	}
	return c, nil
}

func (uc *ComplaintUseCase) CreateComplaint(ctx context.Context, input CreateComplaintInput) (*model.Complaint, error) {
	c, err := model.NewComplaint(input.Description, input.Department, input.OwnerUserID, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.checkDepartment(c.Department); err != nil {
		return nil, err
	}
	c.AttachmentRef = input.AttachmentRef

	created, err := uc.repo.Complaint().Create(ctx, c)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create complaint")
	}

	logging.From(ctx).Info("complaint created",
		"complaint_id", created.ID,
		"department", created.Department,
		"owner", created.OwnerUserID)
	return created, nil
}

func (uc *ComplaintUseCase) GetComplaint(ctx context.Context, id types.ComplaintID) (*model.Complaint, error) {
	return uc.get(ctx, id)
}

// ListComplaints returns matching complaints with their adherent counts
func (uc *ComplaintUseCase) ListComplaints(ctx context.Context, opts ...interfaces.ListComplaintOption) ([]*ComplaintView, error) {
	complaints, err := uc.repo.Complaint().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list complaints")
	}

	views := make([]*ComplaintView, 0, len(complaints))
	for _, c := range complaints {
		count, err := uc.repo.Complaint().CountAdherents(ctx, c.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to count adherents", goerr.V(ComplaintIDKey, c.ID))
		}
		views = append(views, &ComplaintView{Complaint: c, Adherents: count})
	}
	return views, nil
}

// ListPending returns the complaints users can still adhere to
func (uc *ComplaintUseCase) ListPending(ctx context.Context) ([]*ComplaintView, error) {
	return uc.ListComplaints(ctx, interfaces.WithStatus(types.ComplaintStatusPending))
}

// ListByDepartment returns a department's complaints, optionally narrowed to one status
func (uc *ComplaintUseCase) ListByDepartment(ctx context.Context, department types.Department, status *types.ComplaintStatus) ([]*model.Complaint, error) {
	if department.IsEmpty() {
		return nil, goerr.Wrap(model.ErrInvalidComplaint, "department is required")
	}

	opts := []interfaces.ListComplaintOption{interfaces.WithDepartment(department)}
	if status != nil {
		opts = append(opts, interfaces.WithStatus(*status))
	}

	complaints, err := uc.repo.Complaint().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list complaints", goerr.V(DepartmentKey, department))
	}
	return complaints, nil
}

// Transition moves a complaint to the next status. estimatedDays is required for IN_PROGRESS.
func (uc *ComplaintUseCase) Transition(ctx context.Context, id types.ComplaintID, next types.ComplaintStatus, estimatedDays *int) (*model.Complaint, error) {
	c, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := c.Status
	if err := c.Transition(next, estimatedDays, uc.now()); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Complaint().Update(ctx, c)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update complaint", goerr.V(ComplaintIDKey, id))
	}

	logging.From(ctx).Info("complaint status changed",
		"complaint_id", id,
		"from", previous,
		"to", updated.Status)
	return updated, nil
}

// DeriveDepartment re-routes a complaint to another department
func (uc *ComplaintUseCase) DeriveDepartment(ctx context.Context, id types.ComplaintID, department types.Department) (*model.Complaint, error) {
	c, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := c.Department
	if err := c.DeriveTo(department); err != nil {
		return nil, err
	}
	if err := uc.checkDepartment(c.Department); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Complaint().Update(ctx, c)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update complaint", goerr.V(ComplaintIDKey, id))
	}

	logging.From(ctx).Info("complaint derived",
		"complaint_id", id,
		"from", previous,
		"to", updated.Department)
	return updated, nil
}

func (uc *ComplaintUseCase) DeleteComplaint(ctx context.Context, id types.ComplaintID) error {
	if err := uc.repo.Complaint().Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrComplaintNotFound, "complaint not found", goerr.V(ComplaintIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete complaint", goerr.V(ComplaintIDKey, id))
	}
	return nil
}

// Adhere records that userID shares complaint id
func (uc *ComplaintUseCase) Adhere(ctx context.Context, userID types.UserID, id types.ComplaintID) error {
	if err := uc.repo.Complaint().AddAdherent(ctx, userID, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrComplaintNotFound, "complaint not found", goerr.V(ComplaintIDKey, id))
		}
		return goerr.Wrap(err, "failed to adhere to complaint",
			goerr.V(ComplaintIDKey, id),
			goerr.V(UserIDKey, userID))
	}
	return nil
}

// ListDepartments returns the registered departments and those of stored complaints, sorted.
// Departments only known from stored complaints have no description.
func (uc *ComplaintUseCase) ListDepartments(ctx context.Context) ([]*model.DepartmentEntry, error) {
	stored, err := uc.repo.Complaint().ListDepartments(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list departments")
	}

	names := mergeDepartments(uc.departments.Names(), stored)
	entries := make([]*model.DepartmentEntry, 0, len(names))
	for _, name := range names {
		entry, err := uc.departments.Get(name)
		if err != nil {
			if !errors.Is(err, model.ErrDepartmentNotFound) {
				return nil, goerr.Wrap(err, "failed to look up department", goerr.V(DepartmentKey, name))
			}
			entry = &model.DepartmentEntry{Name: name}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// FindSimilar returns stored complaints whose descriptions fall in the same category as description
func (uc *ComplaintUseCase) FindSimilar(ctx context.Context, description string) ([]*model.Complaint, error) {
	if uc.classifier == nil {
		return nil, goerr.Wrap(ErrClassifierNotConfigured, "similar search requires a classifier")
	}

	target, err := uc.classify(ctx, description)
	if err != nil {
		return nil, err
	}

	complaints, err := uc.repo.Complaint().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list complaints")
	}

	var similar []*model.Complaint
	for _, c := range complaints {
		category, err := uc.classify(ctx, c.Description)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to classify stored complaint", goerr.V(ComplaintIDKey, c.ID))
		}
		if category == target {
			similar = append(similar, c)
		}
	}

	logging.From(ctx).Debug("similar complaints found",
		"category", target,
		"count", len(similar))
	return similar, nil
}

func (uc *ComplaintUseCase) classify(ctx context.Context, text string) (string, error) {
	category, err := uc.classifier.Classify(ctx, text)
	if err != nil {
		return "", goerr.Wrap(err, "failed to classify text")
	}
	if category == "" {
		return "", goerr.Wrap(ErrInvalidClassification, "classifier returned an empty label")
	}
	return category, nil
}
