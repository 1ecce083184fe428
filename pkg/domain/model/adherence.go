package model

import (
	"time"

	"github.com/secmon-lab/grievance/pkg/domain/types"
)

// Adherence records that a user shares an existing complaint instead of filing a duplicate.
// At most one adherence exists per (UserID, ComplaintID) pair.
type Adherence struct {
	UserID      types.UserID
	ComplaintID types.ComplaintID
	CreatedAt   time.Time
}
