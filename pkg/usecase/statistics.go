package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"github.com/secmon-lab/grievance/pkg/service/keyword"
	"github.com/secmon-lab/grievance/pkg/utils/median"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentAggregations bounds AggregateAll fan-out against the repository
const maxConcurrentAggregations = 4

type StatisticsUseCase struct {
	repo        interfaces.Repository
	departments *model.DepartmentRegistry
	keywords    *keyword.Counter
}

func NewStatisticsUseCase(repo interfaces.Repository, departments *model.DepartmentRegistry, keywords *keyword.Counter) *StatisticsUseCase {
	if keywords == nil {
		keywords = keyword.New()
	}
	return &StatisticsUseCase{
		repo:        repo,
		departments: departments,
		keywords:    keywords,
	}
}

// Aggregate builds the statistics snapshot of one department.
// Every call starts from fresh trackers so repeated calls on unchanged data agree.
func (uc *StatisticsUseCase) Aggregate(ctx context.Context, department types.Department) (*model.Snapshot, error) {
	department = department.Normalize()
	if department == "" {
		return nil, goerr.Wrap(model.ErrInvalidComplaint, "department is required")
	}

	complaints, err := uc.repo.Complaint().List(ctx, interfaces.WithDepartment(department))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list complaints", goerr.V(DepartmentKey, department))
	}

	snapshot, err := summarize(complaints, uc.keywords)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to summarize complaints", goerr.V(DepartmentKey, department))
	}
	snapshot.Department = department
	return snapshot, nil
}

// AggregateAll builds one snapshot per known department, sorted by department
func (uc *StatisticsUseCase) AggregateAll(ctx context.Context) ([]*model.Snapshot, error) {
	stored, err := uc.repo.Complaint().ListDepartments(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list departments")
	}
	departments := mergeDepartments(uc.departments.Names(), stored)

	snapshots := make([]*model.Snapshot, len(departments))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentAggregations)
	for i, d := range departments {
		eg.Go(func() error {
			s, err := uc.Aggregate(ctx, d)
			if err != nil {
				return err
			}
			snapshots[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

func summarize(complaints []*model.Complaint, keywords *keyword.Counter) (*model.Snapshot, error) {
	snapshot := &model.Snapshot{Total: len(complaints)}
	resolved := median.New()
	inProgress := median.New()
	descriptions := make([]string, 0, len(complaints))

	for _, c := range complaints {
		descriptions = append(descriptions, c.Description)

		var tracker *median.Tracker
		switch c.Status {
		case types.ComplaintStatusPending:
			snapshot.Pending++
		case types.ComplaintStatusInProgress:
			snapshot.InProgress++
			tracker = inProgress
		case types.ComplaintStatusResolved:
			snapshot.Resolved++
			tracker = resolved
		case types.ComplaintStatusInvalid:
			snapshot.Invalid++
		}

		if tracker == nil {
			continue
		}
		days := c.ResolutionDays()
		if days == nil {
			continue
		}
		if err := tracker.Insert(float64(*days)); err != nil {
			return nil, goerr.Wrap(err, "failed to record resolution days", goerr.V(ComplaintIDKey, c.ID))
		}
	}

	var err error
	if snapshot.MedianResolved, err = medianOf(resolved); err != nil {
		return nil, err
	}
	if snapshot.MedianInProgress, err = medianOf(inProgress); err != nil {
		return nil, err
	}
	snapshot.TopWords = keywords.TopWords(descriptions)

	return snapshot, nil
}

// medianOf returns nil for a tracker that never received a sample
func medianOf(t *median.Tracker) (*float64, error) {
	if t.Len() == 0 {
		return nil, nil
	}
	m, err := t.Median()
	if err != nil {
		return nil, err
	}
	return &m, nil
}
