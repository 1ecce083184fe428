package cli

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/cli/config"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"github.com/secmon-lab/grievance/pkg/utils/errutil"
	"github.com/urfave/cli/v3"
)

func cmdStats() *cli.Command {
	var department string
	var appCfg config.App
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "department",
			Aliases:     []string{"d"},
			Usage:       "Department to aggregate (all departments when omitted)",
			Destination: &department,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "stats",
		Usage: "Print complaint statistics as JSON",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				_ = errutil.Handle(ctx, repo.Close(), "failed to close repository")
			}()

			// aggregation never classifies
			uc, err := buildUseCases(ctx, repo, &appCfg, nil)
			if err != nil {
				return err
			}

			var out any
			if department != "" {
				snapshot, err := uc.Statistics.Aggregate(ctx, types.Department(department))
				if err != nil {
					return goerr.Wrap(err, "failed to aggregate department", goerr.V("department", department))
				}
				out = snapshot
			} else {
				snapshots, err := uc.Statistics.AggregateAll(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to aggregate departments")
				}
				out = snapshots
			}

			enc := json.NewEncoder(c.Root().Writer)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return goerr.Wrap(err, "failed to write statistics")
			}
			return nil
		},
	}
}
