package types

import (
	"fmt"
	"strings"
)

// ComplaintStatus represents the lifecycle status of a complaint
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "PENDING"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
	ComplaintStatusInvalid    ComplaintStatus = "INVALID"
)

// AllComplaintStatuses returns all valid complaint statuses
func AllComplaintStatuses() []ComplaintStatus {
	return []ComplaintStatus{
		ComplaintStatusPending,
		ComplaintStatusInProgress,
		ComplaintStatusResolved,
		ComplaintStatusInvalid,
	}
}

// IsValid checks if the complaint status is valid
func (s ComplaintStatus) IsValid() bool {
	switch s {
	case ComplaintStatusPending,
		ComplaintStatusInProgress,
		ComplaintStatusResolved,
		ComplaintStatusInvalid:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no status transition can leave s.
func (s ComplaintStatus) IsTerminal() bool {
	return s == ComplaintStatusResolved || s == ComplaintStatusInvalid
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle step.
// PENDING is the initial status only and can never be re-entered. IN_PROGRESS may
// be re-entered to revise the estimate.
func (s ComplaintStatus) CanTransitionTo(next ComplaintStatus) bool {
	switch s {
	case ComplaintStatusPending:
		return next == ComplaintStatusInProgress ||
			next == ComplaintStatusResolved ||
			next == ComplaintStatusInvalid
	case ComplaintStatusInProgress:
		return next == ComplaintStatusInProgress ||
			next == ComplaintStatusResolved ||
			next == ComplaintStatusInvalid
	default:
		return false
	}
}

// String returns the string representation of the complaint status
func (s ComplaintStatus) String() string {
	return string(s)
}

// ParseComplaintStatus parses a string into a ComplaintStatus.
// Both "IN_PROGRESS" and "in_progress" are accepted.
func ParseComplaintStatus(s string) (ComplaintStatus, error) {
	status := ComplaintStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid complaint status: %s", s)
	}
	return status, nil
}
