package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogDir == "" {
		errs = append(errs, ValidationError{
			Field:   "logs",
			Message: "log directory must not be empty",
		})
	}

	if cfg.PythonPath == "" {
		errs = append(errs, ValidationError{
			Field:   "python",
			Message: "interpreter must not be empty",
		})
	}

	for _, port := range []struct {
		field string
		value int
	}{
		{"backend-port", cfg.BackendPort},
		{"upload-port", cfg.UploadPort},
	} {
		if port.value < 1 || port.value > 65535 {
			errs = append(errs, ValidationError{
				Field:   port.field,
				Message: fmt.Sprintf("must be in 1-65535 (got %d)", port.value),
			})
		}
	}

	if cfg.BackendPort == cfg.UploadPort {
		errs = append(errs, ValidationError{
			Field:   "upload-port",
			Message: fmt.Sprintf("must differ from backend-port (both %d)", cfg.UploadPort),
		})
	}

	if cfg.SimDuration <= 0 {
		errs = append(errs, ValidationError{
			Field:   "sim-duration",
			Message: "must be positive",
		})
	}

	if cfg.FrameFPS <= 0 {
		errs = append(errs, ValidationError{
			Field:   "fps",
			Message: "must be positive",
		})
	}

	if cfg.TelemetryHz <= 0 {
		errs = append(errs, ValidationError{
			Field:   "telemetry-hz",
			Message: "must be positive",
		})
	}

	if cfg.TermGrace <= 0 {
		errs = append(errs, ValidationError{
			Field:   "term-grace",
			Message: "must be positive",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log-format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	if cfg.MonitorEnabled && cfg.MonitorInterval <= 0 {
		errs = append(errs, ValidationError{
			Field:   "monitor-interval",
			Message: "must be positive when the monitor is enabled",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
