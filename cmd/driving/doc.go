// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for driving.
//
// This package implements the Cobra command hierarchy for the driving CLI:
// the root command, framework registry commands (git-list, git-sources,
// git-install), repository commands, installation wiring, IDE sync, skills
// sync, and self-update.
package cmd
