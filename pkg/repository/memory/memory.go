package memory

import (
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	complaint *complaintRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		complaint: newComplaintRepository(),
	}
}

func (m *Memory) Complaint() interfaces.ComplaintRepository {
	return m.complaint
}

func (m *Memory) Close() error {
	return nil
}
