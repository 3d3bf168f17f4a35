// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"runtime"
)

const (
	// ContainerEngineDocker uses Docker for container hooks.
	ContainerEngineDocker ContainerEngine = "docker"
	// ContainerEnginePodman uses Podman for container hooks.
	ContainerEnginePodman ContainerEngine = "podman"

	// ColorAuto colors output when stdout is a terminal.
	ColorAuto ColorMode = "auto"
	// ColorAlways forces colored output.
	ColorAlways ColorMode = "always"
	// ColorNever disables colored output.
	ColorNever ColorMode = "never"

	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidContainerEngine is the sentinel error wrapped by InvalidContainerEngineError.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidColorMode is the sentinel error wrapped by InvalidColorModeError.
	ErrInvalidColorMode = errors.New("invalid color mode")
	// ErrInvalidLogLevel is the sentinel error wrapped by InvalidLogLevelError.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConcurrency is returned for a negative concurrency.
	ErrInvalidConcurrency = errors.New("concurrency must not be negative")
)

type (
	// ContainerEngine names the container CLI used for container hooks.
	ContainerEngine string

	// ColorMode controls colored output.
	ColorMode string

	// LogLevel is the minimum level the logger emits.
	LogLevel string

	// InvalidContainerEngineError is returned when a ContainerEngine value is not recognized.
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// InvalidColorModeError is returned when a ColorMode value is not recognized.
	InvalidColorModeError struct {
		Value ColorMode
	}

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// Config is the resolved configuration. An empty StoreDir means the
	// default store location.
	Config struct {
		ContainerEngine ContainerEngine `json:"container_engine" mapstructure:"container_engine"`
		StoreDir        string          `json:"store_dir" mapstructure:"store_dir"`
		Color           ColorMode       `json:"color" mapstructure:"color"`
		LogLevel        LogLevel        `json:"log_level" mapstructure:"log_level"`
		Concurrency     int             `json:"concurrency" mapstructure:"concurrency"`
	}
)

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		ContainerEngine: ContainerEngineDocker,
		Color:           ColorAuto,
		LogLevel:        LogLevelInfo,
	}
}

// Validate checks every field and joins the failures.
func (c *Config) Validate() error {
	var errs []error
	if err := c.ContainerEngine.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Color.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.LogLevel.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidConcurrency, c.Concurrency))
	}
	return errors.Join(errs...)
}

// EffectiveConcurrency resolves a zero concurrency to the number of CPUs.
func (c *Config) EffectiveConcurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return runtime.NumCPU()
}

// Validate returns an error if the engine is not docker or podman.
func (e ContainerEngine) Validate() error {
	switch e {
	case ContainerEngineDocker, ContainerEnginePodman:
		return nil
	default:
		return &InvalidContainerEngineError{Value: e}
	}
}

// Validate returns an error for an unknown color mode.
func (m ColorMode) Validate() error {
	switch m {
	case ColorAuto, ColorAlways, ColorNever:
		return nil
	default:
		return &InvalidColorModeError{Value: m}
	}
}

// Validate returns an error for an unknown log level.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: docker, podman)", e.Value)
}

// Unwrap returns ErrInvalidContainerEngine for errors.Is() compatibility.
func (e *InvalidContainerEngineError) Unwrap() error { return ErrInvalidContainerEngine }

func (e *InvalidColorModeError) Error() string {
	return fmt.Sprintf("invalid color mode %q (valid: auto, always, never)", e.Value)
}

// Unwrap returns ErrInvalidColorMode for errors.Is() compatibility.
func (e *InvalidColorModeError) Unwrap() error { return ErrInvalidColorMode }

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }
