package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/domain/types"
)

// Complaint is a grievance filed by a user and routed to a department
type Complaint struct {
	ID            types.ComplaintID
	Description   string
	Status        types.ComplaintStatus
	Department    types.Department
	OwnerUserID   types.UserID
	CreatedAt     time.Time
	ResolvedAt    *time.Time // actual completion when RESOLVED, estimate when IN_PROGRESS
	AttachmentRef string
	Version       int64
	UpdatedAt     time.Time
}

// NewComplaint builds a PENDING complaint. createdAt defaults to time.Now() when zero.
func NewComplaint(description string, department types.Department, owner types.UserID, createdAt time.Time) (*Complaint, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, goerr.Wrap(ErrInvalidComplaint, "description is required")
	}
	if department.IsEmpty() {
		return nil, goerr.Wrap(ErrInvalidComplaint, "department is required")
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &Complaint{
		Description: description,
		Status:      types.ComplaintStatusPending,
		Department:  department.Normalize(),
		OwnerUserID: owner,
		CreatedAt:   createdAt.UTC(),
	}, nil
}

// ResolutionDays returns the whole days between CreatedAt and ResolvedAt, or nil
// unless both timestamps are present.
func (c *Complaint) ResolutionDays() *int {
	if c.ResolvedAt == nil || c.CreatedAt.IsZero() {
		return nil
	}
	days := int(c.ResolvedAt.Sub(c.CreatedAt) / (24 * time.Hour))
	return &days
}

// Transition applies a status change with its timestamp side effect.
// estimatedDays is only consulted for IN_PROGRESS.
func (c *Complaint) Transition(next types.ComplaintStatus, estimatedDays *int, now time.Time) error {
	if !next.IsValid() {
		return goerr.Wrap(ErrInvalidTransition, "unknown status",
			goerr.V(ComplaintIDKey, c.ID),
			goerr.V(NextStatusKey, next))
	}
	if !c.Status.CanTransitionTo(next) {
		return goerr.Wrap(ErrInvalidTransition, "status transition is not allowed",
			goerr.V(ComplaintIDKey, c.ID),
			goerr.V(StatusKey, c.Status),
			goerr.V(NextStatusKey, next))
	}

	switch next {
	case types.ComplaintStatusResolved:
		resolvedAt := now.UTC()
		c.ResolvedAt = &resolvedAt

	case types.ComplaintStatusInProgress:
		if err := ValidateEstimatedDays(estimatedDays); err != nil {
			return goerr.Wrap(err, "in-progress transition requires a valid estimate",
				goerr.V(ComplaintIDKey, c.ID))
		}
		estimate := c.CreatedAt.Add(time.Duration(*estimatedDays) * 24 * time.Hour)
		c.ResolvedAt = &estimate

	case types.ComplaintStatusInvalid:
		// an estimate for a complaint that will never be resolved is meaningless
		c.ResolvedAt = nil
	}

	c.Status = next
	return nil
}

// DeriveTo re-routes the complaint to another department. Status and timestamps are untouched.
func (c *Complaint) DeriveTo(department types.Department) error {
	department = department.Normalize()
	if department == "" {
		return goerr.Wrap(ErrInvalidDerivation, "target department is required",
			goerr.V(ComplaintIDKey, c.ID))
	}
	if department == c.Department {
		return goerr.Wrap(ErrInvalidDerivation, "target department must differ from the current one",
			goerr.V(ComplaintIDKey, c.ID),
			goerr.V(DepartmentKey, department))
	}
	c.Department = department
	return nil
}

// Clone returns a deep copy
func (c *Complaint) Clone() *Complaint {
	copied := *c
	if c.ResolvedAt != nil {
		t := *c.ResolvedAt
		copied.ResolvedAt = &t
	}
	return &copied
}

// ValidateEstimatedDays checks that an estimate is present and within bounds
func ValidateEstimatedDays(days *int) error {
	if days == nil {
		return goerr.Wrap(ErrInvalidEstimate, "estimated days is required")
	}
	if *days < MinEstimatedDays || *days > MaxEstimatedDays {
		return goerr.Wrap(ErrInvalidEstimate, "estimated days out of range",
			goerr.V(EstimatedDaysKey, *days),
			goerr.V("min", MinEstimatedDays),
			goerr.V("max", MaxEstimatedDays))
	}
	return nil
}

// ParseEstimatedDays converts operator input into an estimate. Empty input yields nil.
// Range is not checked here; see ValidateEstimatedDays.
func ParseEstimatedDays(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidEstimate, "estimated days must be an integer",
			goerr.V(EstimatedDaysKey, raw))
	}
	return &days, nil
}
