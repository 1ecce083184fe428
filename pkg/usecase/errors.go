package usecase

import (
	"errors"

	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrComplaintNotFound = errors.New("complaint not found")

	// Conflict errors, shared with the repository layer
	ErrAlreadyAdhered  = interfaces.ErrAlreadyAdhered
	ErrVersionConflict = interfaces.ErrVersionConflict

	// Validation errors
	ErrUnknownDepartment = errors.New("department is not registered")

	// Classifier errors
	ErrClassifierNotConfigured = errors.New("classifier is not configured")
	ErrInvalidClassification   = errors.New("classifier returned no category")
)

// Context keys for error values
const (
	ComplaintIDKey = "complaint_id"
	UserIDKey      = "user_id"
	DepartmentKey  = "department"
)
