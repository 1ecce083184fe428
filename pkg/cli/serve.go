package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grievance/pkg/cli/config"
	httpctrl "github.com/secmon-lab/grievance/pkg/controller/http"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/usecase"
	"github.com/secmon-lab/grievance/pkg/utils/errutil"
	"github.com/secmon-lab/grievance/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var appCfg config.App
	var repoCfg config.Repository
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("GRIEVANCE_ADDR"),
			Destination: &addr,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				_ = errutil.Handle(ctx, repo.Close(), "failed to close repository")
			}()

			logging.Default().Info("Repository configured", "repository", repoCfg)

			uc, err := buildUseCases(ctx, repo, &appCfg, &geminiCfg)
			if err != nil {
				return err
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

// buildUseCases wires the configuration file into the use cases. A nil
// geminiCfg skips the classifier entirely, for commands that never classify.
func buildUseCases(ctx context.Context, repo interfaces.Repository, appCfg *config.App, geminiCfg *config.Gemini) (*usecase.UseCases, error) {
	cfg, err := appCfg.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load configuration")
	}

	registry := cfg.DepartmentRegistry()
	ucOpts := []usecase.Option{
		usecase.WithDepartments(registry),
		usecase.WithKeywordCounter(cfg.KeywordCounter()),
	}

	if geminiCfg != nil {
		classifierOpt, err := configureClassifier(ctx, cfg, geminiCfg)
		if err != nil {
			return nil, err
		}
		if classifierOpt != nil {
			ucOpts = append(ucOpts, classifierOpt)
		}
	}

	logging.Default().Info("Configuration loaded",
		"path", appCfg.Path(),
		"departments", registry.Len(),
	)

	return usecase.New(repo, ucOpts...), nil
}

func configureClassifier(ctx context.Context, cfg *config.AppConfig, geminiCfg *config.Gemini) (usecase.Option, error) {
	client, err := geminiCfg.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure gemini")
	}
	if client != nil {
		logging.Default().LogAttrs(ctx, slog.LevelInfo, "Gemini client configured", geminiCfg.LogAttrs()...)
	}

	classifier, err := cfg.BuildClassifier(client)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure classifier")
	}
	if classifier == nil {
		logging.Default().Info("Classifier not configured, similar complaint search is disabled")
		return nil, nil
	}

	logging.Default().Info("Classifier enabled", "type", cfg.Classifier.Type)
	return usecase.WithClassifier(classifier), nil
}
