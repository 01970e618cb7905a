// SPDX-License-Identifier: MPL-2.0

// Package gitrepo wraps the git command line for the repository operations
// the CLI needs: cloning framework checkouts, keeping them on a branch, and
// committing workspace changes back.
package gitrepo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

type (
	// Git is the repository surface consumed by the commands. Implementations
	// must be safe for sequential reuse across directories.
	Git interface {
		// Clone checks out url at branch into dir. An empty branch clones
		// the remote default.
		Clone(ctx context.Context, url, branch, dir string) error
		// Checkout switches dir to branch.
		Checkout(ctx context.Context, dir, branch string) error
		// Pull fast-forwards the current branch of dir.
		Pull(ctx context.Context, dir string) error
		// AddAll stages every change under dir.
		AddAll(ctx context.Context, dir string) error
		// Commit records the staged changes with message.
		Commit(ctx context.Context, dir, message string) error
		// Push publishes the current branch of dir.
		Push(ctx context.Context, dir string) error
		// IsRepo reports whether dir is inside a git work tree.
		IsRepo(ctx context.Context, dir string) bool
		// IsDirty reports whether dir has uncommitted changes.
		IsDirty(ctx context.Context, dir string) (bool, error)
		// CurrentBranch returns the checked-out branch name, or "" for a
		// detached HEAD.
		CurrentBranch(ctx context.Context, dir string) (string, error)
		// SubmoduleAdd registers url as a submodule of dir at path.
		SubmoduleAdd(ctx context.Context, dir, url, path string) error
		// SubmoduleUpdate initializes and updates every submodule of dir.
		SubmoduleUpdate(ctx context.Context, dir string) error
		// SubmoduleDeinit unregisters the submodule of dir at path.
		SubmoduleDeinit(ctx context.Context, dir, path string) error
	}

	// CommandError carries the failing git invocation and its combined
	// output so callers can surface what git actually said.
	CommandError struct {
		Args   []string
		Output string
		Err    error
	}

	// CLI runs git through os/exec.
	CLI struct {
		logger *log.Logger

		// run is swappable for tests.
		run func(ctx context.Context, dir string, args ...string) (string, error)
	}
)

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

// Unwrap returns the process error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// New returns a CLI-backed Git using logger for command tracing.
func New(logger *log.Logger) *CLI {
	cli := &CLI{logger: logger}
	cli.run = cli.execGit
	return cli
}

func (c *CLI) execGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if c.logger != nil {
		c.logger.Debug("git", "dir", dir, "args", strings.Join(args, " "), "err", err)
	}
	if err != nil {
		return string(out), &CommandError{Args: args, Output: string(out), Err: err}
	}
	return string(out), nil
}

func (c *CLI) Clone(ctx context.Context, url, branch, dir string) error {
	args := []string{"clone"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, url, dir)
	_, err := c.run(ctx, "", args...)
	return err
}

func (c *CLI) Checkout(ctx context.Context, dir, branch string) error {
	_, err := c.run(ctx, dir, "checkout", branch)
	return err
}

func (c *CLI) Pull(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "pull")
	return err
}

func (c *CLI) AddAll(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "add", "-A")
	return err
}

func (c *CLI) Commit(ctx context.Context, dir, message string) error {
	_, err := c.run(ctx, dir, "commit", "-m", message)
	return err
}

func (c *CLI) Push(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "push")
	return err
}

func (c *CLI) IsRepo(ctx context.Context, dir string) bool {
	out, err := c.run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

func (c *CLI) IsDirty(ctx context.Context, dir string) (bool, error) {
	out, err := c.run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func (c *CLI) CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := c.run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(out)
	if branch == "HEAD" {
		// Detached HEAD.
		return "", nil
	}
	return branch, nil
}

func (c *CLI) SubmoduleAdd(ctx context.Context, dir, url, path string) error {
	_, err := c.run(ctx, dir, "submodule", "add", url, path)
	return err
}

func (c *CLI) SubmoduleUpdate(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "submodule", "update", "--init", "--recursive")
	return err
}

func (c *CLI) SubmoduleDeinit(ctx context.Context, dir, path string) error {
	if _, err := c.run(ctx, dir, "submodule", "deinit", "-f", path); err != nil {
		return err
	}
	_, err := c.run(ctx, dir, "rm", "-f", path)
	return err
}
