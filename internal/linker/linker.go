// SPDX-License-Identifier: MPL-2.0

// Package linker wires a driving repository into a project: the repository
// becomes a git submodule at .driving, its docs tree is symlinked to
// ai-docs, and the URL is persisted for later installs.
package linker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"driving-cli/internal/gitrepo"
	"driving-cli/internal/settings"
	"driving-cli/internal/workspace"
)

// RepoURLEnvKey is the .env key remembering the driving repository URL.
const RepoURLEnvKey = "DRIVING_REPO_URL"

// drivingGitignore keeps framework checkouts out of the submodule's index.
const drivingGitignore = "submodules/\n"

// Linker performs install and uninstall against a project root.
type Linker struct {
	git gitrepo.Git
}

// New builds a Linker on top of git.
func New(git gitrepo.Git) *Linker {
	return &Linker{git: git}
}

// Install adds the driving repository at url as a submodule of root,
// symlinks ai-docs to its docs tree, and persists the URL to .env. Install
// is idempotent: an existing .driving checkout is left in place.
func (l *Linker) Install(ctx context.Context, root, url string) error {
	if !l.git.IsRepo(ctx, root) {
		return fmt.Errorf("%s is not a git repository", root)
	}

	drivingDir := filepath.Join(root, workspace.DrivingDirName)
	if _, err := os.Stat(drivingDir); os.IsNotExist(err) {
		if err := l.git.SubmoduleAdd(ctx, root, url, workspace.DrivingDirName); err != nil {
			return fmt.Errorf("adding %s submodule: %w", workspace.DrivingDirName, err)
		}
		if err := l.git.SubmoduleUpdate(ctx, root); err != nil {
			return fmt.Errorf("initializing submodules: %w", err)
		}
	} else if err != nil {
		return err
	}

	// Framework checkouts inside the submodule must never be committed to
	// the driving repository itself.
	ignorePath := filepath.Join(drivingDir, ".gitignore")
	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		if err := os.WriteFile(ignorePath, []byte(drivingGitignore), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", ignorePath, err)
		}
	}

	if err := l.linkDocs(root); err != nil {
		return err
	}

	if err := settings.WriteEnvValue(root, RepoURLEnvKey, url); err != nil {
		return fmt.Errorf("persisting repository URL: %w", err)
	}
	return nil
}

// linkDocs points root/ai-docs at the submodule's remote docs tree. A
// pre-existing real directory is left untouched; a stale symlink is
// replaced.
func (l *Linker) linkDocs(root string) error {
	linkPath := filepath.Join(root, workspace.RemoteDocsDirName)
	target := filepath.Join(workspace.DrivingDirName, workspace.RemoteDocsDirName)

	if fi, err := os.Lstat(linkPath); err == nil {
		if fi.Mode()&os.ModeSymlink == 0 {
			return nil
		}
		if err := os.Remove(linkPath); err != nil {
			return fmt.Errorf("removing stale %s link: %w", workspace.RemoteDocsDirName, err)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.Symlink(target, linkPath); err != nil {
		return fmt.Errorf("linking %s: %w", workspace.RemoteDocsDirName, err)
	}
	return nil
}

// Uninstall removes the ai-docs symlink and deregisters the .driving
// submodule. Missing pieces are skipped so a half-finished install can be
// cleaned up.
func (l *Linker) Uninstall(ctx context.Context, root string) error {
	linkPath := filepath.Join(root, workspace.RemoteDocsDirName)
	if fi, err := os.Lstat(linkPath); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(linkPath); err != nil {
			return fmt.Errorf("removing %s link: %w", workspace.RemoteDocsDirName, err)
		}
	}

	drivingDir := filepath.Join(root, workspace.DrivingDirName)
	if _, err := os.Stat(drivingDir); err == nil {
		if err := l.git.SubmoduleDeinit(ctx, root, workspace.DrivingDirName); err != nil {
			return fmt.Errorf("removing %s submodule: %w", workspace.DrivingDirName, err)
		}
	}
	return nil
}
