// SPDX-License-Identifier: MPL-2.0

// Package hook defines the immutable description of a single configured check.
package hook

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/anmitsu/go-shlex"
)

var (
	// ErrInvalidHook is the sentinel error wrapped by InvalidHookError.
	ErrInvalidHook = errors.New("invalid hook")

	// ErrEmptyEntry is returned by Cmd when the entry has no tokens.
	ErrEmptyEntry = errors.New("hook entry is empty")
)

// DefaultLanguageVersion is used when a hook does not pin a language version.
const DefaultLanguageVersion = "default"

type (
	// Config holds the fields a Hook is built from.
	Config struct {
		ID                     string
		Name                   string
		Entry                  string
		Language               string
		LanguageVersion        string
		AdditionalDependencies []string
		Args                   []string
		Prefix                 string // hook repository root
		PassFilenames          bool
		AlwaysRun              bool
		RequireSerial          bool
	}

	// Hook is a single configured check. It is immutable once constructed;
	// accessors return copies of slice fields.
	Hook struct {
		cfg Config
	}

	// InvalidHookError is returned by New when required fields are missing.
	InvalidHookError struct {
		ID     string
		Reason string
	}
)

func (e *InvalidHookError) Error() string {
	return fmt.Sprintf("invalid hook %q: %s", e.ID, e.Reason)
}

func (e *InvalidHookError) Unwrap() error { return ErrInvalidHook }

// New validates cfg and returns the hook. Name defaults to ID and the
// language version defaults to DefaultLanguageVersion.
func New(cfg Config) (*Hook, error) {
	switch {
	case strings.TrimSpace(cfg.ID) == "":
		return nil, &InvalidHookError{ID: cfg.ID, Reason: "id is required"}
	case strings.TrimSpace(cfg.Entry) == "":
		return nil, &InvalidHookError{ID: cfg.ID, Reason: "entry is required"}
	case strings.TrimSpace(cfg.Language) == "":
		return nil, &InvalidHookError{ID: cfg.ID, Reason: "language is required"}
	}

	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	if cfg.LanguageVersion == "" {
		cfg.LanguageVersion = DefaultLanguageVersion
	}
	cfg.AdditionalDependencies = slices.Clone(cfg.AdditionalDependencies)
	cfg.Args = slices.Clone(cfg.Args)
	return &Hook{cfg: cfg}, nil
}

func (h *Hook) ID() string                       { return h.cfg.ID }
func (h *Hook) Name() string                     { return h.cfg.Name }
func (h *Hook) Entry() string                    { return h.cfg.Entry }
func (h *Hook) Language() string                 { return h.cfg.Language }
func (h *Hook) LanguageVersion() string          { return h.cfg.LanguageVersion }
func (h *Hook) AdditionalDependencies() []string { return slices.Clone(h.cfg.AdditionalDependencies) }
func (h *Hook) Args() []string                   { return slices.Clone(h.cfg.Args) }
func (h *Hook) Prefix() string                   { return h.cfg.Prefix }
func (h *Hook) PassFilenames() bool              { return h.cfg.PassFilenames }
func (h *Hook) AlwaysRun() bool                  { return h.cfg.AlwaysRun }
func (h *Hook) RequireSerial() bool              { return h.cfg.RequireSerial }

// Cmd returns the hook's command line: the entry split into words with
// POSIX quoting rules followed by the args. Words are taken literally:
// variables are not expanded and shell operators stay inside their word.
// The first token is the entry point.
func (h *Hook) Cmd() ([]string, error) {
	fields, err := shlex.Split(h.cfg.Entry, true)
	if err != nil {
		return nil, fmt.Errorf("split entry of hook %q: %w", h.cfg.ID, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("hook %q: %w", h.cfg.ID, ErrEmptyEntry)
	}
	return append(fields, h.cfg.Args...), nil
}

// String returns the hook id, for logging.
func (h *Hook) String() string { return h.cfg.ID }
