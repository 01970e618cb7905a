// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"driving-cli/internal/gitrepo"
	"driving-cli/internal/issue"
	"driving-cli/internal/registry"
	"driving-cli/internal/settings"
	"driving-cli/internal/workspace"
)

// requireWorkspace detects the workspace from the current directory and
// fails with actionable guidance when driving is not installed.
func requireWorkspace() (workspace.Context, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return workspace.Context{}, err
	}

	ws, err := workspace.Detect(cwd)
	if err != nil {
		return workspace.Context{}, err
	}
	if err := ws.RequireInstalled(); err != nil {
		return workspace.Context{}, issue.NewErrorContext().
			WithOperation("locate driving workspace").
			WithResource(cwd).
			WithSuggestion("Run 'driving install --url <driving-repo-url>' to set up this project").
			WithIssue(issue.NotInstalledId).
			Wrap(err).
			BuildError()
	}
	return ws, nil
}

// openRegistry loads and merges every gitlist document of ws, surfacing
// shadowing diagnostics as warnings.
func openRegistry(ws workspace.Context) (*registry.Registry, error) {
	reg, err := registry.Open(ws)
	if err != nil {
		var perr *registry.ParseError
		if errors.As(err, &perr) {
			return nil, issue.NewErrorContext().
				WithOperation("load gitlist registry").
				WithResource(perr.Path).
				WithSuggestion("Validate the document against the record schema").
				WithSuggestion("Run 'driving --verbose git-list' for detail").
				WithIssue(issue.GitlistParseErrorId).
				Wrap(err).
				BuildError()
		}
		return nil, err
	}

	warnDiagnostics(reg.Diagnostics())
	return reg, nil
}

// warnDiagnostics prints non-fatal registry findings to stderr.
func warnDiagnostics(diags []registry.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+d.Message)
		logger.Debug("diagnostic", "code", d.Code, "framework", d.Framework)
	}
}

// resolveClosure resolves name's dependency closure with actionable errors
// for unknown names and broken extends chains.
func resolveClosure(reg *registry.Registry, name string) ([]registry.Framework, error) {
	closure, err := reg.Resolve(name)
	if err == nil {
		return closure, nil
	}

	var dangling *registry.DanglingExtendsError
	if errors.As(err, &dangling) {
		return nil, issue.NewErrorContext().
			WithOperation("resolve framework dependencies").
			WithResource(dangling.Parent).
			WithSuggestion(fmt.Sprintf("Define %q in a gitlist registry or drop it from the extends list", dangling.Missing)).
			WithSuggestion("Run 'driving pull' in case the dependency was added upstream").
			WithIssue(issue.DanglingExtendsId).
			Wrap(err).
			BuildError()
	}

	var notFound *registry.NotFoundError
	if errors.As(err, &notFound) {
		return nil, issue.NewErrorContext().
			WithOperation("look up framework").
			WithResource(name).
			WithSuggestion("Run 'driving git-list' to see registered frameworks").
			WithIssue(issue.FrameworkNotFoundId).
			Wrap(err).
			BuildError()
	}
	return nil, err
}

// newGit builds the CLI-backed git wrapper sharing the process logger.
func newGit() gitrepo.Git {
	return gitrepo.New(logger)
}

// loadSettings resolves settings against the workspace root, tolerating a
// missing workspace for commands that run before installation.
func loadSettings(ws workspace.Context) *settings.Settings {
	return settings.Load(ws.Root)
}
