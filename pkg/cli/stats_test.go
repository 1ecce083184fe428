package cli_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grievance/pkg/cli"
)

func TestRun_StatsCommand(t *testing.T) {
	t.Run("all departments with memory backend", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{
			"grievance", "stats", "--repository-backend", "memory",
		}, "test")
		gt.NoError(t, err)
	})

	t.Run("single department", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{
			"grievance", "stats", "--repository-backend", "memory", "--department", "Bienestar",
		}, "test")
		gt.NoError(t, err)
	})

	t.Run("llm classifier config without gemini", func(t *testing.T) {
		configPath := writeConfig(t, `
[[department]]
name = "Bienestar"

[classifier]
type = "llm"
fallback = "other"

  [[classifier.category]]
  id = "building"
  description = "Building maintenance"
`)
		err := cli.Run(context.Background(), []string{
			"grievance", "stats", "--repository-backend", "memory", "--config", configPath,
		}, "test")
		gt.NoError(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{
			"grievance", "stats", "--repository-backend", "unknown",
		}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid log level", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{
			"grievance", "--log-level", "verbose", "stats",
		}, "test")
		gt.Value(t, err).NotNil()
	})
}
