package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grievance/pkg/cli/config"
)

func TestRepository_Configure(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest(config.BackendMemory, "", "").Configure(t.Context())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore requires project ID", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendFirestore, "", "").Configure(t.Context())
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("postgres requires DSN", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendPostgres, "", "").Configure(t.Context())
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("redis", "", "").Configure(t.Context())
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("returns flags", func(t *testing.T) {
		var cfg config.Repository
		gt.A(t, cfg.Flags()).Length(4)
	})
}
