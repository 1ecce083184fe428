package interfaces

import "github.com/secmon-lab/grievance/pkg/domain/types"

// ListComplaintOption is a functional option for filtering complaints in List
type ListComplaintOption func(*listComplaintConfig)

type listComplaintConfig struct {
	department *types.Department
	status     *types.ComplaintStatus
	owner      *types.UserID
}

// WithDepartment filters complaints by department
func WithDepartment(department types.Department) ListComplaintOption {
	return func(c *listComplaintConfig) {
		d := department.Normalize()
		c.department = &d
	}
}

// WithStatus filters complaints by status
func WithStatus(status types.ComplaintStatus) ListComplaintOption {
	return func(c *listComplaintConfig) {
		c.status = &status
	}
}

// WithOwner filters complaints by the user who filed them
func WithOwner(owner types.UserID) ListComplaintOption {
	return func(c *listComplaintConfig) {
		c.owner = &owner
	}
}

// BuildListComplaintConfig builds a listComplaintConfig from options
func BuildListComplaintConfig(opts ...ListComplaintOption) *listComplaintConfig {
	cfg := &listComplaintConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Department returns the department filter value, or nil if not set
func (c *listComplaintConfig) Department() *types.Department {
	return c.department
}

// Status returns the status filter value, or nil if not set
func (c *listComplaintConfig) Status() *types.ComplaintStatus {
	return c.status
}

// Owner returns the owner filter value, or nil if not set
func (c *listComplaintConfig) Owner() *types.UserID {
	return c.owner
}

// Match reports whether c satisfies every configured filter
func (c *listComplaintConfig) Match(department types.Department, status types.ComplaintStatus, owner types.UserID) bool {
	if c.department != nil && department != *c.department {
		return false
	}
	if c.status != nil && status != *c.status {
		return false
	}
	if c.owner != nil && owner != *c.owner {
		return false
	}
	return true
}
