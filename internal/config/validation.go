// Package config provides configuration management for the hoopslines application.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("windowmode", validateWindowMode)
	_ = v.RegisterValidation("schedule", validateSchedule)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateWindowMode accepts the two window alignments understood by the
// feature aggregator.
func validateWindowMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "historical", "as_of":
		return true
	default:
		return false
	}
}

// validateSchedule checks a five-field cron expression.
func validateSchedule(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	if cfg.Predictor.Enabled {
		switch cfg.Predictor.Transport {
		case "grpc":
			if cfg.Predictor.GRPCAddress == "" {
				return fmt.Errorf("predictor grpc_address is required for grpc transport")
			}
		case "http":
			if cfg.Predictor.HTTPAddress == "" {
				return fmt.Errorf("predictor http_address is required for http transport")
			}
		default:
			return fmt.Errorf("predictor transport must be grpc or http when enabled")
		}
	}

	seen := make(map[string]bool, len(cfg.DataIngestion.Sources))
	for _, s := range cfg.DataIngestion.Sources {
		if seen[s.Name] {
			return fmt.Errorf("duplicate data source name %q", s.Name)
		}
		seen[s.Name] = true
		fileSource := s.Type == "csv" || s.Type == "lines_csv"
		if fileSource && s.Path == "" {
			return fmt.Errorf("data source %q of type %s requires a path", s.Name, s.Type)
		}
		if !fileSource && s.URL == "" {
			return fmt.Errorf("data source %q of type %s requires a url", s.Name, s.Type)
		}
	}

	for alias, canonical := range cfg.Teams.Aliases {
		if strings.TrimSpace(canonical) == "" {
			return fmt.Errorf("team alias %q maps to an empty abbreviation", alias)
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "windowmode":
			fmt.Fprintf(&b, "- Field '%s' must be one of: historical, as_of\n", field)
		case "schedule":
			fmt.Fprintf(&b, "- Field '%s' must be a cron expression, got '%v'\n", field, value)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}
