// Package config loads screening settings from the environment and resolves
// them into an engine configuration.
//
// The loading sequence is:
//  1. Load .env file via godotenv (non-fatal if absent).
//  2. Use envconfig to process struct tags and populate the Config struct.
//  3. Validate the struct using go-playground/validator.
//
// Thresholds are resolved separately: the named preset first, then the YAML
// override file on top of it.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/flyby-triad/internal/gate"
	"github.com/danielpatrickdp/flyby-triad/internal/stats"
	"github.com/danielpatrickdp/flyby-triad/internal/triad"
)

// ConfigError is a diagnostic error type returned by the loaders.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadConfig loads and validates the screening configuration.
func LoadConfig() (*Config, error) {
	// godotenv.Load does not override variables already set in the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate runs struct validation, e.g. after CLI flags were applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}
	return nil
}

// LoadThresholds decodes a YAML thresholds file on top of base. Keys absent
// from the file keep the base value. The result is validated.
//
//	a_warn: 3.84
//	a_fail: 7.88
//	d_fail: 20
func LoadThresholds(path string, base gate.Thresholds) (gate.Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gate.Thresholds{}, &ConfigError{
			Type:    ErrThresholdsFile,
			Message: fmt.Sprintf("read %s", path),
			Err:     err,
		}
	}
	th := base
	if err := yaml.Unmarshal(data, &th); err != nil {
		return gate.Thresholds{}, &ConfigError{
			Type:    ErrThresholdsFile,
			Message: fmt.Sprintf("decode %s", path),
			Err:     err,
		}
	}
	if err := th.Validate(); err != nil {
		return gate.Thresholds{}, &ConfigError{
			Type:    ErrThresholds,
			Message: fmt.Sprintf("thresholds from %s", path),
			Err:     err,
		}
	}
	return th, nil
}

// Thresholds resolves the preset and the optional override file.
func (c *Config) Thresholds() (gate.Thresholds, error) {
	th, err := gate.Preset(c.Preset)
	if err != nil {
		return gate.Thresholds{}, &ConfigError{Type: ErrThresholds, Message: "preset", Err: err}
	}
	if c.ThresholdsFile == "" {
		return th, nil
	}
	return LoadThresholds(c.ThresholdsFile, th)
}

// EngineConfig builds the triad engine configuration from c.
func (c *Config) EngineConfig() (triad.Config, error) {
	th, err := c.Thresholds()
	if err != nil {
		return triad.Config{}, err
	}
	out := triad.DefaultConfig()
	out.Gate.Thresholds = th
	out.Gate.Alpha = c.Alpha
	out.Digital.WindowS = c.WindowS
	out.Memory.BinS = c.BinS
	out.Memory.Lags = c.Lags
	out.Memory.Weighting = stats.PortmanteauWeighting(c.Weighting)
	if c.MaxBins > 0 {
		out.Digital.MaxWindows = c.MaxBins
		out.Memory.MaxBins = c.MaxBins
	}
	out.Workers = c.Workers
	return out, nil
}

// IsConfigError reports whether err carries a ConfigError of type t.
func IsConfigError(err error, t ConfigErrorType) bool {
	var ce *ConfigError
	return errors.As(err, &ce) && ce.Type == t
}
