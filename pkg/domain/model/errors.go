package model

import "github.com/m-mizutani/goerr/v2"

// Lifecycle rule violations
var (
	ErrInvalidComplaint  = goerr.New("invalid complaint")
	ErrInvalidEstimate   = goerr.New("invalid resolution estimate")
	ErrInvalidDerivation = goerr.New("invalid department derivation")
	ErrInvalidTransition = goerr.New("invalid status transition")
)

// Context keys for error values
const (
	ComplaintIDKey   = "complaint_id"
	StatusKey        = "status"
	NextStatusKey    = "next_status"
	EstimatedDaysKey = "estimated_days"
	DepartmentKey    = "department"
)

// Resolution estimate bounds in days, inclusive
const (
	MinEstimatedDays = 1
	MaxEstimatedDays = 15
)
