package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"gorm.io/gorm"
)

type complaintRow struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	Description   string `gorm:"type:text;not null"`
	Status        string `gorm:"type:text;not null;index:idx_complaint_department_status,priority:2"`
	Department    string `gorm:"type:text;not null;index:idx_complaint_department_status,priority:1"`
	OwnerUserID   string `gorm:"type:text;index"`
	CreatedAt     time.Time
	ResolvedAt    *time.Time
	AttachmentRef string `gorm:"type:text"`
	Version       int64  `gorm:"not null"`
	UpdatedAt     time.Time
}

func (complaintRow) TableName() string { return "complaints" }

type adherenceRow struct {
	UserID      string `gorm:"primaryKey;type:text"`
	ComplaintID int64  `gorm:"primaryKey;index"`
	CreatedAt   time.Time
}

func (adherenceRow) TableName() string { return "adherences" }

func toRow(c *model.Complaint) *complaintRow {
	return &complaintRow{
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

func (r *complaintRow) toModel() *model.Complaint {
	c := &model.Complaint{
		ID:            types.ComplaintID(r.ID),
		Description:   r.Description,
		Status:        types.ComplaintStatus(r.Status),
		Department:    types.Department(r.Department),
		OwnerUserID:   types.UserID(r.OwnerUserID),
		CreatedAt:     r.CreatedAt.UTC(),
		AttachmentRef: r.AttachmentRef,
		Version:       r.Version,
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.ResolvedAt != nil {
		resolvedAt := r.ResolvedAt.UTC()
		c.ResolvedAt = &resolvedAt
	}
	return c
}

type complaintRepository struct {
	db *gorm.DB
}

var _ interfaces.ComplaintRepository = &complaintRepository{}

func newComplaintRepository(db *gorm.DB) *complaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) Create(ctx context.Context, c *model.Complaint) (*model.Complaint, error) {
	row := toRow(c)
	row.ID = 0
	row.Version = 1
	row.UpdatedAt = time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = row.UpdatedAt
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to create complaint")
	}
	return row.toModel(), nil
}

func (r *complaintRepository) Get(ctx context.Context, id types.ComplaintID) (*model.Complaint, error) {
	var row complaintRow
	if err := r.db.WithContext(ctx).First(&row, int64(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "complaint not found", goerr.V(model.ComplaintIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get complaint", goerr.V(model.ComplaintIDKey, id))
	}
	return row.toModel(), nil
}

func (r *complaintRepository) List(ctx context.Context, opts ...interfaces.ListComplaintOption) ([]*model.Complaint, error) {
	cfg := interfaces.BuildListComplaintConfig(opts...)

	query := r.db.WithContext(ctx).Model(&complaintRow{})
	if d := cfg.Department(); d != nil {
		query = query.Where("department = ?", d.String())
	}
	if s := cfg.Status(); s != nil {
		query = query.Where("status = ?", s.String())
	}
	if o := cfg.Owner(); o != nil {
		query = query.Where("owner_user_id = ?", o.String())
	}

	var rows []complaintRow
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list complaints")
	}

	complaints := make([]*model.Complaint, 0, len(rows))
	for i := range rows {
		complaints = append(complaints, rows[i].toModel())
	}
	return complaints, nil
}

func (r *complaintRepository) Update(ctx context.Context, c *model.Complaint) (*model.Complaint, error) {
	var updated *model.Complaint

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored complaintRow
		if err := tx.First(&stored, int64(c.ID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return goerr.Wrap(interfaces.ErrNotFound, "complaint not found", goerr.V(model.ComplaintIDKey, c.ID))
			}
			return goerr.Wrap(err, "failed to get complaint", goerr.V(model.ComplaintIDKey, c.ID))
		}

		row := toRow(c)
		row.CreatedAt = stored.CreatedAt
		row.Version = c.Version + 1
		row.UpdatedAt = time.Now().UTC()

		// Conditional write on the version column; zero rows means someone else won
		result := tx.Model(&complaintRow{}).
			Where("id = ? AND version = ?", row.ID, c.Version).
			Select("*").
			Updates(row)
		if result.Error != nil {
			return goerr.Wrap(result.Error, "failed to update complaint", goerr.V(model.ComplaintIDKey, c.ID))
		}
		if result.RowsAffected == 0 {
			return goerr.Wrap(interfaces.ErrVersionConflict, "complaint version mismatch",
				goerr.V(model.ComplaintIDKey, c.ID),
				goerr.V("stored_version", stored.Version),
				goerr.V("given_version", c.Version))
		}

		updated = row.toModel()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *complaintRepository) Delete(ctx context.Context, id types.ComplaintID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("complaint_id = ?", int64(id)).Delete(&adherenceRow{}).Error; err != nil {
			return goerr.Wrap(err, "failed to delete adherences", goerr.V(model.ComplaintIDKey, id))
		}

		result := tx.Delete(&complaintRow{}, int64(id))
		if result.Error != nil {
			return goerr.Wrap(result.Error, "failed to delete complaint", goerr.V(model.ComplaintIDKey, id))
		}
		if result.RowsAffected == 0 {
			return goerr.Wrap(interfaces.ErrNotFound, "complaint not found", goerr.V(model.ComplaintIDKey, id))
		}
		return nil
	})
}

func (r *complaintRepository) CountAdherents(ctx context.Context, id types.ComplaintID) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&adherenceRow{}).
		Where("complaint_id = ?", int64(id)).
		Count(&count).Error; err != nil {
		return 0, goerr.Wrap(err, "failed to count adherents", goerr.V(model.ComplaintIDKey, id))
	}
	return int(count), nil
}

func (r *complaintRepository) AddAdherent(ctx context.Context, userID types.UserID, id types.ComplaintID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&complaintRow{}).Where("id = ?", int64(id)).Count(&exists).Error; err != nil {
			return goerr.Wrap(err, "failed to check complaint existence", goerr.V(model.ComplaintIDKey, id))
		}
		if exists == 0 {
			return goerr.Wrap(interfaces.ErrNotFound, "complaint not found", goerr.V(model.ComplaintIDKey, id))
		}

		err := tx.Create(&adherenceRow{
			UserID:      userID.String(),
			ComplaintID: int64(id),
			CreatedAt:   time.Now().UTC(),
		}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return goerr.Wrap(interfaces.ErrAlreadyAdhered, "duplicate adherence",
				goerr.V(model.ComplaintIDKey, id),
				goerr.V("user_id", userID))
		}
		if err != nil {
			return goerr.Wrap(err, "failed to add adherence", goerr.V(model.ComplaintIDKey, id))
		}
		return nil
	})
}

func (r *complaintRepository) ListDepartments(ctx context.Context) ([]types.Department, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&complaintRow{}).
		Distinct("department").
		Order("department ASC").
		Pluck("department", &names).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list departments")
	}

	result := make([]types.Department, 0, len(names))
	for _, n := range names {
		result = append(result, types.Department(n))
	}
	return result, nil
}
