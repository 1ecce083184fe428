package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"github.com/secmon-lab/grievance/pkg/usecase"
)

func TestComplaintUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a pending complaint", func(t *testing.T) {
		uc, _, _ := newUseCases(t)
		created, err := uc.Complaint.CreateComplaint(ctx, usecase.CreateComplaintInput{
			Description:   "La puerta del laboratorio no cierra",
			Department:    "Maestranza",
			OwnerUserID:   "U001",
			AttachmentRef: "uploads/puerta.png",
		})
		gt.NoError(t, err).Required()
		gt.B(t, created.ID.IsZero()).False()
		gt.V(t, created.Status).Equal(types.ComplaintStatusPending)
		gt.B(t, created.CreatedAt.Equal(baseTime)).True()
		gt.S(t, created.AttachmentRef).Equal("uploads/puerta.png")
	})

	t.Run("empty department is rejected", func(t *testing.T) {
		uc, _, _ := newUseCases(t)
		_, err := uc.Complaint.CreateComplaint(ctx, usecase.CreateComplaintInput{
			Description: "desc",
			Department:  "   ",
		})
		gt.Error(t, err).Is(model.ErrInvalidComplaint)
	})

	t.Run("unregistered department is rejected when a registry is set", func(t *testing.T) {
		reg := model.NewDepartmentRegistry()
		reg.Register(&model.DepartmentEntry{Name: "Maestranza"})
		uc, _, _ := newUseCases(t, usecase.WithDepartments(reg))

		_, err := uc.Complaint.CreateComplaint(ctx, usecase.CreateComplaintInput{
			Description: "desc",
			Department:  "Cocina",
		})
		gt.Error(t, err).Is(usecase.ErrUnknownDepartment)

		_, err = uc.Complaint.CreateComplaint(ctx, usecase.CreateComplaintInput{
			Description: "desc",
			Department:  "Maestranza",
		})
		gt.NoError(t, err)
	})
}

func TestComplaintUseCase_Transition(t *testing.T) {
	ctx := context.Background()

	t.Run("in progress requires a valid estimate", func(t *testing.T) {
		uc, _, _ := newUseCases(t)
		c := mustCreate(t, uc, "desc", "Maestranza")

		for _, days := range []*int{nil, intPtr(0), intPtr(16)} {
			_, err := uc.Complaint.Transition(ctx, c.ID, types.ComplaintStatusInProgress, days)
			gt.Error(t, err).Is(model.ErrInvalidEstimate)
		}

		stored, err := uc.Complaint.GetComplaint(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.V(t, stored.Status).Equal(types.ComplaintStatusPending)
		gt.V(t, stored.ResolvedAt).Nil()
	})

	t.Run("seven day estimate is measured from creation", func(t *testing.T) {
		uc, _, clock := newUseCases(t)
		c := mustCreate(t, uc, "desc", "Maestranza")
		clock.Advance(3 * 24 * time.Hour)

		updated, err := uc.Complaint.Transition(ctx, c.ID, types.ComplaintStatusInProgress, intPtr(7))
		gt.NoError(t, err).Required()
		gt.V(t, updated.Status).Equal(types.ComplaintStatusInProgress)
		gt.B(t, updated.ResolvedAt.Equal(baseTime.Add(7*24*time.Hour))).True()
	})

	t.Run("resolved records the current time", func(t *testing.T) {
		uc, _, clock := newUseCases(t)
		c := mustCreate(t, uc, "desc", "Maestranza")
		clock.Advance(4*24*time.Hour + 5*time.Hour)

		updated, err := uc.Complaint.Transition(ctx, c.ID, types.ComplaintStatusResolved, nil)
		gt.NoError(t, err).Required()
		gt.B(t, updated.ResolvedAt.Equal(clock.Now())).True()
		gt.V(t, *updated.ResolutionDays()).Equal(4)

		_, err = uc.Complaint.Transition(ctx, c.ID, types.ComplaintStatusInProgress, intPtr(3))
		gt.Error(t, err).Is(model.ErrInvalidTransition)
	})

	t.Run("missing complaint", func(t *testing.T) {
		uc, _, _ := newUseCases(t)
		_, err := uc.Complaint.Transition(ctx, 404, types.ComplaintStatusResolved, nil)
		gt.Error(t, err).Is(usecase.ErrComplaintNotFound)
	})
}

func TestComplaintUseCase_DeriveDepartment(t *testing.T) {
	ctx := context.Background()

	t.Run("moves complaint", func(t *testing.T) {
		uc, _, _ := newUseCases(t)
		c := mustCreate(t, uc, "desc", "Maestranza")

		updated, err := uc.Complaint.DeriveDepartment(ctx, c.ID, "Soporte técnico")
		gt.NoError(t, err).Required()
		gt.V(t, updated.Department).Equal(types.Department("Soporte técnico"))
		gt.V(t, updated.Status).Equal(types.ComplaintStatusPending)
	})

	t.Run("same department fails", func(t *testing.T) {
		uc, _, _ := newUseCases(t)
		c := mustCreate(t, uc, "desc", "Maestranza")
		_, err := uc.Complaint.DeriveDepartment(ctx, c.ID, "Maestranza")
		gt.Error(t, err).Is(model.ErrInvalidDerivation)
	})

	t.Run("unknown department fails with registry", func(t *testing.T) {
		reg := model.NewDepartmentRegistry()
		reg.Register(&model.DepartmentEntry{Name: "Maestranza"})
		uc, _, _ := newUseCases(t, usecase.WithDepartments(reg))
		c := mustCreate(t, uc, "desc", "Maestranza")

		_, err := uc.Complaint.DeriveDepartment(ctx, c.ID, "Cocina")
		gt.Error(t, err).Is(usecase.ErrUnknownDepartment)
	})

	t.Run("missing complaint", func(t *testing.T) {
		uc, _, _ := newUseCases(t)
		_, err := uc.Complaint.DeriveDepartment(ctx, 404, "Maestranza")
		gt.Error(t, err).Is(usecase.ErrComplaintNotFound)
	})
}

func TestComplaintUseCase_AdhereAndList(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCases(t)

	first := mustCreate(t, uc, "Sin agua en el edificio B", "Maestranza")
	second := mustCreate(t, uc, "El wifi se corta", "Soporte técnico")

	gt.NoError(t, uc.Complaint.Adhere(ctx, "U010", first.ID)).Required()
	gt.NoError(t, uc.Complaint.Adhere(ctx, "U011", first.ID)).Required()

	err := uc.Complaint.Adhere(ctx, "U010", first.ID)
	gt.Error(t, err).Is(usecase.ErrAlreadyAdhered)
	gt.B(t, errors.Is(err, interfaces.ErrAlreadyAdhered)).True()

	gt.Error(t, uc.Complaint.Adhere(ctx, "U010", 404)).Is(usecase.ErrComplaintNotFound)

	views, err := uc.Complaint.ListComplaints(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, views).Length(2)
	gt.V(t, views[0].ID).Equal(first.ID)
	gt.N(t, views[0].Adherents).Equal(2)
	gt.N(t, views[1].Adherents).Equal(0)

	_, err = uc.Complaint.Transition(ctx, second.ID, types.ComplaintStatusResolved, nil)
	gt.NoError(t, err).Required()

	pending, err := uc.Complaint.ListPending(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, pending).Length(1)
	gt.V(t, pending[0].ID).Equal(first.ID)

	resolved := types.ComplaintStatusResolved
	byDept, err := uc.Complaint.ListByDepartment(ctx, "Soporte técnico", &resolved)
	gt.NoError(t, err).Required()
	gt.A(t, byDept).Length(1)

	_, err = uc.Complaint.ListByDepartment(ctx, " ", nil)
	gt.Error(t, err).Is(model.ErrInvalidComplaint)
}

func TestComplaintUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCases(t)
	c := mustCreate(t, uc, "desc", "Maestranza")

	gt.NoError(t, uc.Complaint.DeleteComplaint(ctx, c.ID)).Required()
	_, err := uc.Complaint.GetComplaint(ctx, c.ID)
	gt.Error(t, err).Is(usecase.ErrComplaintNotFound)
	gt.Error(t, uc.Complaint.DeleteComplaint(ctx, c.ID)).Is(usecase.ErrComplaintNotFound)
}

func TestComplaintUseCase_ListDepartments(t *testing.T) {
	ctx := context.Background()
	reg := model.NewDepartmentRegistry()
	reg.Register(&model.DepartmentEntry{Name: "Secretaría técnica", Description: "Trámites académicos"})
	reg.Register(&model.DepartmentEntry{Name: "Maestranza"})
	uc, _, _ := newUseCases(t, usecase.WithDepartments(reg))

	mustCreate(t, uc, "desc", "Maestranza")

	depts, err := uc.Complaint.ListDepartments(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, depts).Length(2)
	gt.V(t, depts[0].Name).Equal(types.Department("Maestranza"))
	gt.S(t, depts[0].Description).Equal("")
	gt.V(t, depts[1].Name).Equal(types.Department("Secretaría técnica"))
	gt.S(t, depts[1].Description).Equal("Trámites académicos")
}

func TestComplaintUseCase_ListDepartmentsWithoutRegistry(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCases(t)

	mustCreate(t, uc, "desc", "Bienestar estudiantil")

	depts, err := uc.Complaint.ListDepartments(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, depts).Length(1)
	gt.V(t, depts[0].Name).Equal(types.Department("Bienestar estudiantil"))
}

type keywordClassifier struct {
	fn func(text string) string
}

func (c *keywordClassifier) Classify(ctx context.Context, text string) (string, error) {
	return c.fn(text), nil
}

func TestComplaintUseCase_FindSimilar(t *testing.T) {
	ctx := context.Background()

	t.Run("without classifier", func(t *testing.T) {
		uc, _, _ := newUseCases(t)
		_, err := uc.Complaint.FindSimilar(ctx, "desc")
		gt.Error(t, err).Is(usecase.ErrClassifierNotConfigured)
	})

	t.Run("returns complaints in the same category", func(t *testing.T) {
		classifier := &keywordClassifier{fn: func(text string) string {
			for _, w := range []string{"wifi", "proyector"} {
				if strings.Contains(text, w) {
					return "tecnologia"
				}
			}
			return "infraestructura"
		}}
		uc, _, _ := newUseCases(t, usecase.WithClassifier(classifier))

		wifi := mustCreate(t, uc, "el wifi no anda", "Soporte técnico")
		mustCreate(t, uc, "la puerta está rota", "Maestranza")
		projector := mustCreate(t, uc, "el proyector parpadea", "Soporte técnico")

		similar, err := uc.Complaint.FindSimilar(ctx, "se cae el wifi del aula")
		gt.NoError(t, err).Required()
		gt.A(t, similar).Length(2)
		gt.V(t, similar[0].ID).Equal(wifi.ID)
		gt.V(t, similar[1].ID).Equal(projector.ID)
	})

	t.Run("empty label is invalid", func(t *testing.T) {
		classifier := &keywordClassifier{fn: func(string) string { return "" }}
		uc, _, _ := newUseCases(t, usecase.WithClassifier(classifier))
		_, err := uc.Complaint.FindSimilar(ctx, "desc")
		gt.Error(t, err).Is(usecase.ErrInvalidClassification)
	})
}
