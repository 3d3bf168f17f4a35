// SPDX-License-Identifier: MPL-2.0

// Package config handles pre-commit configuration using Viper with CUE as the
// file format.
//
// Configuration is read from $XDG_CONFIG_HOME/pre-commit/config.cue
// (~/.config/pre-commit/config.cue when unset), validated against the
// embedded #Config schema, and overridden by PRE_COMMIT_* environment
// variables. A missing file means defaults.
package config
