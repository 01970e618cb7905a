// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"driving-cli/internal/gitrepo"
	"driving-cli/internal/issue"
	"driving-cli/internal/selfupdate"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool

	// logger is the process-wide structured logger, configured in initLogging.
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "driving"})

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "driving",
		Short: "Manage layered AI framework registries in a project",
		Long: TitleStyle.Render("driving") + SubtitleStyle.Render(" - Manage layered AI framework registries") + `

driving wires shareable AI framework packages into a project. Frameworks
are declared in gitlist.json registries (project-local overrides, the
shared registry, and a legacy root document), can extend each other, and
resolve to source paths rooted either in the project or in per-framework
git checkouts.

` + SubtitleStyle.Render("Quick Start:") + `
  1. driving install --url <driving-repo-url>
  2. driving git-install          Check out every remote framework
  3. driving git-list             See what is registered

` + SubtitleStyle.Render("Examples:") + `
  driving git-list workflow       Show a framework and its dependencies
  driving git-sources workflow    Print its merged source paths
  driving ide-sync cursor         Sync the cursor IDE configuration
  driving skills-sync             Refresh AGENTS.md from ai-docs/skills`,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// initLogging raises the log level when --verbose is set.
func initLogging() {
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		reportError(os.Stderr, err, verbose)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// reportError prints the actionable context of err: the suggestion bullets
// from Format, then the rendered catalog entry matching the failure.
// fang already printed the bare error text, so plain errors add nothing here.
func reportError(w io.Writer, err error, verboseMode bool) {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && (ae.HasSuggestions() || verboseMode) {
		fmt.Fprintln(w, formatErrorForDisplay(err, verboseMode))
	}

	renderIssue(w, issueIDFor(err, ae))
}

// issueIDFor maps err to its catalog entry: an explicitly linked ID wins,
// then well-known error types.
func issueIDFor(err error, ae *issue.ActionableError) issue.Id {
	if ae != nil && ae.IssueID != 0 {
		return ae.IssueID
	}

	var cmdErr *gitrepo.CommandError
	switch {
	case errors.As(err, &cmdErr):
		return issue.GitCommandFailedId
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId
	case errors.Is(err, selfupdate.ErrManifestInvalid):
		return issue.UpdateCheckFailedId
	}
	return 0
}

// renderIssue writes the catalog entry for id to w; a zero id is a no-op.
func renderIssue(w io.Writer, id issue.Id) {
	if id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render("dark")
	if err != nil {
		logger.Debug("failed to render issue catalog entry", "id", id, "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
