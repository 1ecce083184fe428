package usecase

import (
	"time"

	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/service/keyword"
)

type UseCases struct {
	repo        interfaces.Repository
	departments *model.DepartmentRegistry
	classifier  interfaces.Classifier
	keywords    *keyword.Counter
	now         func() time.Time

	Complaint  *ComplaintUseCase
	Statistics *StatisticsUseCase
}

type Option func(*UseCases)

// WithDepartments restricts complaints to the registered departments
func WithDepartments(registry *model.DepartmentRegistry) Option {
	return func(uc *UseCases) {
		uc.departments = registry
	}
}

// WithClassifier enables similar-complaint search
func WithClassifier(c interfaces.Classifier) Option {
	return func(uc *UseCases) {
		uc.classifier = c
	}
}

// WithKeywordCounter replaces the default top-words counter
func WithKeywordCounter(c *keyword.Counter) Option {
	return func(uc *UseCases) {
		uc.keywords = c
	}
}

// WithClock overrides time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.keywords == nil {
		uc.keywords = keyword.New()
	}

	uc.Complaint = NewComplaintUseCase(repo, uc.departments, uc.classifier, uc.now)
	uc.Statistics = NewStatisticsUseCase(repo, uc.departments, uc.keywords)

	return uc
}
