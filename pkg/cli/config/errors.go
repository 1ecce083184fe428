package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrDuplicateName      = goerr.New("duplicate name")
	ErrMissingName        = goerr.New("name is required")
	ErrInvalidClassifier  = goerr.New("invalid classifier type")
	ErrLLMNotConfigured   = goerr.New("llm classifier requires gemini configuration")
	ErrMissingCategories  = goerr.New("classifier requires at least one category")
	ErrInvalidKeywordTopN = goerr.New("keyword top must not be negative")
)

// Context keys for error values
const (
	ConfigPathKey     = "config_path"
	BackendKey        = "backend"
	DepartmentKey     = "department"
	CategoryIDKey     = "category_id"
	ClassifierTypeKey = "classifier_type"
)
