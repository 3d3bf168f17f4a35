// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/invowk/precommit/internal/config"
	"github.com/invowk/precommit/internal/container"
	"github.com/invowk/precommit/internal/store"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and reaches configuration, engines and output through it.
	App struct {
		Config     config.Provider
		Engines    EngineFactory
		stdout     io.Writer
		stderr     io.Writer
		isTerminal func() bool

		configFile string
		verbose    bool

		mu       sync.Mutex
		storeDir string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config  config.Provider
		Engines EngineFactory
		Stdout  io.Writer
		Stderr  io.Writer
		// IsTerminal reports whether stdout is a terminal, for color=auto.
		IsTerminal func() bool
	}

	// EngineFactory creates the container engine named in the configuration.
	EngineFactory func(engine config.ContainerEngine, logger *log.Logger) (container.Engine, error)

	// session is the per-invocation state derived from the configuration.
	session struct {
		cfg    *config.Config
		logger *log.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Engines == nil {
		deps.Engines = defaultEngines
	}
	if deps.IsTerminal == nil {
		deps.IsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	}
	return &App{
		Config:     deps.Config,
		Engines:    deps.Engines,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
		isTerminal: deps.IsTerminal,
	}
}

func defaultEngines(engine config.ContainerEngine, logger *log.Logger) (container.Engine, error) {
	return container.NewEngine(container.EngineType(engine), container.WithLogger(logger))
}

// Store returns the store selected by the loaded configuration, or the
// default store before configuration is loaded.
func (a *App) Store() (*store.Store, error) {
	a.mu.Lock()
	dir := a.storeDir
	a.mu.Unlock()
	return store.New(dir)
}

// session loads the configuration and builds the logger for one invocation.
func (a *App) session(ctx context.Context) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configFile})
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.storeDir = cfg.StoreDir
	a.mu.Unlock()

	return &session{cfg: cfg, logger: a.newLogger(cfg.LogLevel)}, nil
}

func (a *App) newLogger(level config.LogLevel) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: "pre-commit"})
	if a.verbose {
		logger.SetLevel(log.DebugLevel)
		return logger
	}
	lvl, err := log.ParseLevel(string(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// color resolves the color mode; an explicit flag value wins over config.
func (a *App) color(cfg *config.Config, flag string) bool {
	mode := cfg.Color
	if flag != "" {
		mode = config.ColorMode(flag)
	}
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return a.isTerminal()
	}
}
