package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"github.com/secmon-lab/grievance/pkg/repository/memory"
	"github.com/secmon-lab/grievance/pkg/usecase"
)

var baseTime = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

// fakeClock is a settable time source
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newUseCases(t *testing.T, opts ...usecase.Option) (*usecase.UseCases, *memory.Memory, *fakeClock) {
	t.Helper()
	repo := memory.New()
	clock := &fakeClock{now: baseTime}
	opts = append([]usecase.Option{usecase.WithClock(clock.Now)}, opts...)
	return usecase.New(repo, opts...), repo, clock
}

func mustCreate(t *testing.T, uc *usecase.UseCases, description string, department types.Department) *model.Complaint {
	t.Helper()
	c, err := uc.Complaint.CreateComplaint(context.Background(), usecase.CreateComplaintInput{
		Description: description,
		Department:  department,
		OwnerUserID: "U001",
	})
	gt.NoError(t, err).Required()
	return c
}

func intPtr(v int) *int { return &v }
