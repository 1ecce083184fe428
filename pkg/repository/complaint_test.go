package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"github.com/secmon-lab/grievance/pkg/repository/firestore"
	"github.com/secmon-lab/grievance/pkg/repository/memory"
	"github.com/secmon-lab/grievance/pkg/repository/postgres"
)

func newComplaint(t *testing.T, description string, department types.Department, owner types.UserID) *model.Complaint {
	t.Helper()
	c, err := model.NewComplaint(description, department, owner, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	gt.NoError(t, err).Required()
	return c
}

// uniqueDepartment isolates test data on shared backends
func uniqueDepartment(name string) types.Department {
	return types.Department(fmt.Sprintf("%s-%d", name, time.Now().UnixNano()))
}

func runComplaintRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns increasing IDs and version 1", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		dept := uniqueDepartment("create")

		created1, err := repo.Complaint().Create(ctx, newComplaint(t, "Las luces del pasillo no encienden", dept, "U001"))
		gt.NoError(t, err).Required()
		gt.B(t, created1.ID.IsZero()).False()
		gt.N(t, created1.Version).Equal(1)
		gt.V(t, created1.Status).Equal(types.ComplaintStatusPending)
		gt.B(t, created1.CreatedAt.Equal(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))).True()

		created2, err := repo.Complaint().Create(ctx, newComplaint(t, "Falta papel en el baño", dept, "U002"))
		gt.NoError(t, err).Required()
		gt.B(t, created2.ID > created1.ID).True()
	})

	t.Run("Get returns stored complaint", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := newComplaint(t, "El ascensor está detenido", uniqueDepartment("get"), "U001")
		c.AttachmentRef = "uploads/ascensor.jpg"
		created, err := repo.Complaint().Create(ctx, c)
		gt.NoError(t, err).Required()

		got, err := repo.Complaint().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.V(t, got.ID).Equal(created.ID)
		gt.S(t, got.Description).Equal(c.Description)
		gt.V(t, got.Department).Equal(c.Department)
		gt.V(t, got.OwnerUserID).Equal(c.OwnerUserID)
		gt.S(t, got.AttachmentRef).Equal("uploads/ascensor.jpg")
		gt.V(t, got.ResolvedAt).Nil()
		gt.B(t, got.CreatedAt.Equal(created.CreatedAt)).True()
	})

	t.Run("Get returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Complaint().Get(context.Background(), types.ComplaintID(time.Now().UnixNano()))
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("Update persists lifecycle changes and bumps version", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Complaint().Create(ctx, newComplaint(t, "Goteras en el aula 4", uniqueDepartment("update"), "U001"))
		gt.NoError(t, err).Required()

		days := 7
		gt.NoError(t, created.Transition(types.ComplaintStatusInProgress, &days, time.Now())).Required()

		updated, err := repo.Complaint().Update(ctx, created)
		gt.NoError(t, err).Required()
		gt.N(t, updated.Version).Equal(2)

		got, err := repo.Complaint().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.V(t, got.Status).Equal(types.ComplaintStatusInProgress)
		gt.V(t, got.ResolvedAt).NotNil()
		gt.V(t, *got.ResolutionDays()).Equal(7)
		gt.N(t, got.Version).Equal(2)
	})

	t.Run("Update with stale version fails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Complaint().Create(ctx, newComplaint(t, "Ruidos en la sala", uniqueDepartment("stale"), "U001"))
		gt.NoError(t, err).Required()

		first := created.Clone()
		second := created.Clone()

		gt.NoError(t, first.Transition(types.ComplaintStatusResolved, nil, time.Now())).Required()
		_, err = repo.Complaint().Update(ctx, first)
		gt.NoError(t, err).Required()

		gt.NoError(t, second.Transition(types.ComplaintStatusInvalid, nil, time.Now())).Required()
		_, err = repo.Complaint().Update(ctx, second)
		gt.Error(t, err).Is(interfaces.ErrVersionConflict)

		got, err := repo.Complaint().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.V(t, got.Status).Equal(types.ComplaintStatusResolved)
	})

	t.Run("Update returns ErrNotFound for unknown complaint", func(t *testing.T) {
		repo := newRepo(t)
		c := newComplaint(t, "desc", uniqueDepartment("missing"), "U001")
		c.ID = types.ComplaintID(time.Now().UnixNano())
		c.Version = 1
		_, err := repo.Complaint().Update(context.Background(), c)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("List filters and orders by ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		deptA := uniqueDepartment("list-a")
		deptB := uniqueDepartment("list-b")

		a1, err := repo.Complaint().Create(ctx, newComplaint(t, "a1", deptA, "U001"))
		gt.NoError(t, err).Required()
		a2, err := repo.Complaint().Create(ctx, newComplaint(t, "a2", deptA, "U002"))
		gt.NoError(t, err).Required()
		_, err = repo.Complaint().Create(ctx, newComplaint(t, "b1", deptB, "U001"))
		gt.NoError(t, err).Required()

		gt.NoError(t, a2.Transition(types.ComplaintStatusResolved, nil, time.Now())).Required()
		_, err = repo.Complaint().Update(ctx, a2)
		gt.NoError(t, err).Required()

		inA, err := repo.Complaint().List(ctx, interfaces.WithDepartment(deptA))
		gt.NoError(t, err).Required()
		gt.A(t, inA).Length(2)
		gt.V(t, inA[0].ID).Equal(a1.ID)
		gt.V(t, inA[1].ID).Equal(a2.ID)

		resolvedA, err := repo.Complaint().List(ctx,
			interfaces.WithDepartment(deptA),
			interfaces.WithStatus(types.ComplaintStatusResolved))
		gt.NoError(t, err).Required()
		gt.A(t, resolvedA).Length(1)
		gt.V(t, resolvedA[0].ID).Equal(a2.ID)

		ownedA, err := repo.Complaint().List(ctx,
			interfaces.WithDepartment(deptA),
			interfaces.WithOwner("U001"))
		gt.NoError(t, err).Required()
		gt.A(t, ownedA).Length(1)
		gt.V(t, ownedA[0].ID).Equal(a1.ID)

		none, err := repo.Complaint().List(ctx, interfaces.WithDepartment(uniqueDepartment("empty")))
		gt.NoError(t, err).Required()
		gt.A(t, none).Length(0)
	})

	t.Run("Adherence is unique per user and complaint", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Complaint().Create(ctx, newComplaint(t, "Sin agua caliente", uniqueDepartment("adhere"), "U001"))
		gt.NoError(t, err).Required()

		count, err := repo.Complaint().CountAdherents(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.N(t, count).Equal(0)

		gt.NoError(t, repo.Complaint().AddAdherent(ctx, "U002", created.ID)).Required()
		gt.NoError(t, repo.Complaint().AddAdherent(ctx, "U003", created.ID)).Required()
		gt.Error(t, repo.Complaint().AddAdherent(ctx, "U002", created.ID)).Is(interfaces.ErrAlreadyAdhered)

		count, err = repo.Complaint().CountAdherents(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.N(t, count).Equal(2)
	})

	t.Run("Adherence accepts user IDs with path separators", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Complaint().Create(ctx, newComplaint(t, "Ascensor detenido", uniqueDepartment("adhere-path"), "U001"))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Complaint().AddAdherent(ctx, "campus/norte/U010", created.ID)).Required()
		gt.NoError(t, repo.Complaint().AddAdherent(ctx, "campus%2Fnorte%2FU010", created.ID)).Required()
		gt.NoError(t, repo.Complaint().AddAdherent(ctx, "..", created.ID)).Required()
		gt.Error(t, repo.Complaint().AddAdherent(ctx, "campus/norte/U010", created.ID)).Is(interfaces.ErrAlreadyAdhered)

		count, err := repo.Complaint().CountAdherents(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.N(t, count).Equal(3)
	})

	t.Run("AddAdherent to unknown complaint fails", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Complaint().AddAdherent(context.Background(), "U002", types.ComplaintID(time.Now().UnixNano()))
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("Concurrent adherence by the same user succeeds once", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Complaint().Create(ctx, newComplaint(t, "Wifi caído", uniqueDepartment("race"), "U001"))
		gt.NoError(t, err).Required()

		const workers = 8
		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := range workers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = repo.Complaint().AddAdherent(ctx, "U009", created.ID)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			}
		}
		gt.N(t, succeeded).Equal(1)

		count, err := repo.Complaint().CountAdherents(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.N(t, count).Equal(1)
	})

	t.Run("Delete removes complaint and adherences", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Complaint().Create(ctx, newComplaint(t, "Bancos rotos", uniqueDepartment("delete"), "U001"))
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Complaint().AddAdherent(ctx, "U002", created.ID)).Required()

		gt.NoError(t, repo.Complaint().Delete(ctx, created.ID)).Required()

		_, err = repo.Complaint().Get(ctx, created.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		count, err := repo.Complaint().CountAdherents(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.N(t, count).Equal(0)

		gt.Error(t, repo.Complaint().Delete(ctx, created.ID)).Is(interfaces.ErrNotFound)
	})

	t.Run("ListDepartments returns sorted distinct departments", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		suffix := fmt.Sprintf("-%d", time.Now().UnixNano())
		zeta := types.Department("zeta" + suffix)
		alpha := types.Department("alpha" + suffix)

		for _, d := range []types.Department{zeta, alpha, zeta} {
			_, err := repo.Complaint().Create(ctx, newComplaint(t, "desc", d, "U001"))
			gt.NoError(t, err).Required()
		}

		depts, err := repo.Complaint().ListDepartments(ctx)
		gt.NoError(t, err).Required()

		alphaIdx, zetaIdx := -1, -1
		for i, d := range depts {
			switch d {
			case alpha:
				gt.N(t, alphaIdx).Equal(-1)
				alphaIdx = i
			case zeta:
				gt.N(t, zetaIdx).Equal(-1)
				zetaIdx = i
			}
			if i > 0 {
				gt.B(t, depts[i-1] < d).True()
			}
		}
		gt.B(t, alphaIdx >= 0 && zetaIdx > alphaIdx).True()
	})
}

func TestComplaintRepository_Memory(t *testing.T) {
	runComplaintRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestComplaintRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("FIRESTORE_DATABASE_ID")

	// List needs the composite indexes: grievance migrate --collection-prefix test
	runComplaintRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, databaseID, firestore.WithCollectionPrefix("test"))
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			gt.NoError(t, repo.Close())
		})
		return repo
	})
}

func TestComplaintRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("GRIEVANCE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("GRIEVANCE_TEST_POSTGRES_DSN not set")
	}

	runComplaintRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := postgres.New(context.Background(), dsn)
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			gt.NoError(t, repo.Close())
		})
		return repo
	})
}
