package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/cli/config"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"github.com/secmon-lab/grievance/pkg/utils/errutil"
	"github.com/secmon-lab/grievance/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// ErrUnconfiguredDepartment is returned when stored complaints reference a department missing from the configuration
var ErrUnconfiguredDepartment = goerr.New("stored department is not configured")

func cmdValidate() *cli.Command {
	var appCfg config.App
	var repoCfg config.Repository
	var checkDB bool

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-db",
		Usage:       "Check that every stored complaint belongs to a configured department",
		Destination: &checkDB,
	})
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file and optionally check DB consistency",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if appCfg.Path() == "" {
				return goerr.Wrap(config.ErrInvalidConfig, "--config is required")
			}

			cfg, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			if cfg.Classifier.Type == config.ClassifierRule {
				if _, err := cfg.BuildClassifier(nil); err != nil {
					return goerr.Wrap(err, "classifier validation failed")
				}
			}

			registry := cfg.DepartmentRegistry()
			logger.Info("Configuration validation passed",
				"department_count", registry.Len(),
				"category_count", len(cfg.Classifier.Categories),
				"classifier", cfg.Classifier.Type,
			)

			if !checkDB {
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				_ = errutil.Handle(ctx, repo.Close(), "failed to close repository")
			}()

			return checkStoredDepartments(ctx, repo, registry)
		},
	}
}

// checkStoredDepartments fails when a stored complaint belongs to a department the registry rejects
func checkStoredDepartments(ctx context.Context, repo interfaces.Repository, registry *model.DepartmentRegistry) error {
	logger := logging.From(ctx)

	stored, err := repo.Complaint().ListDepartments(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list stored departments")
	}

	var unknown []types.Department
	for _, dept := range stored {
		if !registry.Accepts(dept) {
			logger.Warn("Stored department is not configured", "department", dept)
			unknown = append(unknown, dept)
		}
	}
	if len(unknown) > 0 {
		return goerr.Wrap(ErrUnconfiguredDepartment, "DB consistency check found unconfigured departments",
			goerr.V("unknown", len(unknown)),
			goerr.V("departments", unknown))
	}

	logger.Info("DB consistency check passed", "stored_departments", len(stored))
	return nil
}
