package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/grievance/pkg/domain/interfaces"
	"github.com/secmon-lab/grievance/pkg/domain/model"
	"github.com/secmon-lab/grievance/pkg/domain/types"
	"github.com/secmon-lab/grievance/pkg/service/classifier"
	"github.com/secmon-lab/grievance/pkg/service/keyword"
	"github.com/urfave/cli/v3"
)

// Classifier types
const (
	ClassifierRule = "rule"
	ClassifierLLM  = "llm"
)

// App holds the CLI flag pointing at the TOML configuration file
type App struct {
	path string
}

// Flags returns CLI flags for application configuration
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file (departments, keywords, classifier)",
			Sources:     cli.EnvVars("GRIEVANCE_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Path returns the configured file path
func (a *App) Path() string {
	return a.path
}

// Configure loads the configuration file. Without --config an empty
// configuration is returned, which accepts any department and disables
// classification.
func (a *App) Configure() (*AppConfig, error) {
	if a.path == "" {
		return &AppConfig{}, nil
	}
	return LoadAppConfiguration(a.path)
}

// AppConfig represents the application configuration
type AppConfig struct {
	Departments []Department `toml:"department"`
	Keyword     Keyword      `toml:"keyword"`
	Classifier  Classifier   `toml:"classifier"`
}

// Department represents a department complaints can be routed to
type Department struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Validate checks if the Department is valid
func (d *Department) Validate() error {
	if types.Department(d.Name).IsEmpty() {
		return goerr.Wrap(ErrMissingName, "department name is required")
	}
	return nil
}

// Keyword configures the top word counter
type Keyword struct {
	Top       int      `toml:"top"`
	StopWords []string `toml:"stop_words"`
}

// Validate checks if the Keyword section is valid
func (k *Keyword) Validate() error {
	if k.Top < 0 {
		return goerr.Wrap(ErrInvalidKeywordTopN, "invalid keyword section", goerr.V("top", k.Top))
	}
	return nil
}

// Classifier configures how complaint descriptions are labeled.
// An empty Type disables classification.
type Classifier struct {
	Type       string     `toml:"type"`
	Fallback   string     `toml:"fallback"`
	Categories []Category `toml:"category"`
}

// Category represents a classifier label
type Category struct {
	ID          string   `toml:"id"`
	Description string   `toml:"description"`
	Keywords    []string `toml:"keywords"`
}

// Validate checks if the Category is valid
func (c *Category) Validate() error {
	id := types.CategoryID(c.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid category ID", goerr.V(CategoryIDKey, c.ID))
	}
	return nil
}

// Validate checks if the Classifier section is valid
func (c *Classifier) Validate() error {
	switch c.Type {
	case "":
		return nil
	case ClassifierRule, ClassifierLLM:
	default:
		return goerr.Wrap(ErrInvalidClassifier, "unknown classifier type", goerr.V(ClassifierTypeKey, c.Type))
	}

	if len(c.Categories) == 0 {
		return goerr.Wrap(ErrMissingCategories, "classifier has no category", goerr.V(ClassifierTypeKey, c.Type))
	}

	ids := make(map[string]bool)
	for _, cat := range c.Categories {
		if err := cat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category")
		}
		if ids[cat.ID] {
			return goerr.Wrap(ErrDuplicateName, "duplicate category ID", goerr.V(CategoryIDKey, cat.ID))
		}
		ids[cat.ID] = true
	}

	if c.Fallback != "" {
		if err := types.CategoryID(c.Fallback).Validate(); err != nil {
			return goerr.Wrap(err, "invalid fallback category", goerr.V(CategoryIDKey, c.Fallback))
		}
	}

	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	names := make(map[types.Department]bool)
	for _, dept := range a.Departments {
		if err := dept.Validate(); err != nil {
			return goerr.Wrap(err, "invalid department")
		}
		name := types.Department(dept.Name).Normalize()
		if names[name] {
			return goerr.Wrap(ErrDuplicateName, "duplicate department", goerr.V(DepartmentKey, dept.Name))
		}
		names[name] = true
	}

	if err := a.Keyword.Validate(); err != nil {
		return err
	}

	return a.Classifier.Validate()
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path),
			goerr.V("error", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// DepartmentRegistry builds the domain registry from the configured departments
func (a *AppConfig) DepartmentRegistry() *model.DepartmentRegistry {
	registry := model.NewDepartmentRegistry()
	for _, dept := range a.Departments {
		registry.Register(&model.DepartmentEntry{
			Name:        types.Department(dept.Name),
			Description: dept.Description,
		})
	}
	return registry
}

// KeywordCounter builds the word counter used by statistics
func (a *AppConfig) KeywordCounter() *keyword.Counter {
	return keyword.New(
		keyword.WithTop(a.Keyword.Top),
		keyword.WithStopWords(a.Keyword.StopWords...),
	)
}

// BuildClassifier creates the configured classifier. It returns nil when
// classification is disabled. llmClient is only used by the llm type.
func (a *AppConfig) BuildClassifier(llmClient gollem.LLMClient) (interfaces.Classifier, error) {
	categories := make([]classifier.Category, len(a.Classifier.Categories))
	for i, cat := range a.Classifier.Categories {
		categories[i] = classifier.Category{
			ID:          types.CategoryID(cat.ID),
			Description: cat.Description,
			Keywords:    cat.Keywords,
		}
	}
	fallback := types.CategoryID(a.Classifier.Fallback)

	switch a.Classifier.Type {
	case "":
		return nil, nil

	case ClassifierRule:
		c, err := classifier.NewRule(categories, fallback)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build rule classifier")
		}
		return c, nil

	case ClassifierLLM:
		if llmClient == nil {
			return nil, goerr.Wrap(ErrLLMNotConfigured, "set --gemini-project to use the llm classifier")
		}
		c, err := classifier.NewLLM(llmClient, categories, fallback)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build llm classifier")
		}
		return c, nil

	default:
		return nil, goerr.Wrap(ErrInvalidClassifier, "unknown classifier type", goerr.V(ClassifierTypeKey, a.Classifier.Type))
	}
}
