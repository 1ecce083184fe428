package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/domain/types"
)

// ErrDepartmentNotFound is returned when a department is not registered
var ErrDepartmentNotFound = goerr.New("department not found")

// DepartmentEntry describes a department complaints can be routed to
type DepartmentEntry struct {
	Name        types.Department `json:"name"`
	Description string           `json:"description,omitempty"`
}

// DepartmentRegistry holds the configured departments.
// An empty registry accepts any non-empty department.
type DepartmentRegistry struct {
	entries map[types.Department]*DepartmentEntry
	order   []types.Department // preserves registration order
}

// NewDepartmentRegistry creates a new empty DepartmentRegistry
func NewDepartmentRegistry() *DepartmentRegistry {
	return &DepartmentRegistry{
		entries: make(map[types.Department]*DepartmentEntry),
	}
}

// Register adds a department entry to the registry
func (r *DepartmentRegistry) Register(entry *DepartmentEntry) {
	name := entry.Name.Normalize()
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	normalized := *entry
	normalized.Name = name
	r.entries[name] = &normalized
}

// Get retrieves a department entry by name
func (r *DepartmentRegistry) Get(name types.Department) (*DepartmentEntry, error) {
	var entry *DepartmentEntry
	if r != nil {
		entry = r.entries[name.Normalize()]
	}
	if entry == nil {
		return nil, goerr.Wrap(ErrDepartmentNotFound, "department not found",
			goerr.V(DepartmentKey, name))
	}
	copied := *entry
	return &copied, nil
}

// Accepts reports whether complaints may be routed to name
func (r *DepartmentRegistry) Accepts(name types.Department) bool {
	if r == nil || len(r.entries) == 0 {
		return !name.IsEmpty()
	}
	_, ok := r.entries[name.Normalize()]
	return ok
}

// Names returns all registered departments in registration order
func (r *DepartmentRegistry) Names() []types.Department {
	if r == nil {
		return nil
	}
	result := make([]types.Department, len(r.order))
	copy(result, r.order)
	return result
}

// Len returns the number of registered departments
func (r *DepartmentRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}
