// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/invowk/precommit/internal/issue"
)

const (
	// AppName names the configuration directory.
	AppName = "pre-commit"
	// ConfigFileName is the name of the config file inside the config directory.
	ConfigFileName = "config.cue"

	// maxConfigFileSize bounds how much of a config file is read.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// envBindings maps configuration keys to the environment variables that
// override them.
var envBindings = map[string]string{
	"store_dir":        "PRE_COMMIT_HOME",
	"container_engine": "PRE_COMMIT_CONTAINER_ENGINE",
	"color":            "PRE_COMMIT_COLOR",
	"log_level":        "PRE_COMMIT_LOG_LEVEL",
	"concurrency":      "PRE_COMMIT_CONCURRENCY",
}

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	// The file must exist.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
}

// Dir returns $XDG_CONFIG_HOME/pre-commit, falling back to the platform's
// user config directory.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// Load resolves the configuration from defaults, the CUE config file and
// the environment, in increasing precedence. Any failure is fatal.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, err := load(ctx, opts)
	if err != nil {
		if issue.KindOf(err) == issue.KindInterrupted {
			return nil, err
		}
		ec := issue.NewErrorContext("load configuration").
			WithSuggestion("Check that the file contains valid CUE syntax").
			WithSuggestion("Verify the values match the documented settings")
		if path, perr := resolveConfigFile(opts); perr == nil && path != "" {
			ec.WithPath(path)
		}
		return nil, issue.NewFatalError(ec.Wrap(err).Err()).WithIssue(issue.ConfigLoadFailedId)
	}
	return cfg, nil
}

func load(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, issue.NewInterruptedError(nil, context.Cause(ctx))
	default:
	}

	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("container_engine", string(defaults.ContainerEngine))
	v.SetDefault("store_dir", defaults.StoreDir)
	v.SetDefault("color", string(defaults.Color))
	v.SetDefault("log_level", string(defaults.LogLevel))
	v.SetDefault("concurrency", defaults.Concurrency)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	path, err := resolveConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveConfigFile returns the config file to read, or "" when there is none.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = Dir(); err != nil {
			return "", err
		}
	}
	path := filepath.Join(dir, ConfigFileName)
	if !fileExists(path) {
		return "", nil
	}
	return path, nil
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config
// schema and merges it into v. Fields are optional, so validation does not
// require concrete values.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}
