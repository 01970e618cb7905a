// SPDX-License-Identifier: MPL-2.0

// Package workspace detects which of the two driving layouts applies to a
// directory and derives all well-known paths from the detected root.
//
// Local mode: gitlist.json sits directly at the project root and the
// registry lives in the working tree. Standard mode: the registry is
// mounted as a git submodule under .driving/.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// GitlistName is the registry document file name.
	GitlistName = "gitlist.json"
	// DrivingDirName is the submodule mount directory used in standard mode.
	DrivingDirName = ".driving"
	// SubmodulesDirName is the directory framework repositories are cloned into.
	SubmodulesDirName = "submodules"
	// LocalDocsDirName holds local-project framework configuration and docs.
	LocalDocsDirName = "ai-docs-local"
	// RemoteDocsDirName holds remote framework configuration and docs.
	RemoteDocsDirName = "ai-docs"
	// InstallDirName holds shareable IDE configuration trees.
	InstallDirName = "install"
	// SkillsDirName holds skill definitions under the remote docs root.
	SkillsDirName = "skills"

	// ModeStandard means configuration lives under the .driving submodule.
	ModeStandard Mode = "standard"
	// ModeLocal means configuration lives directly at the project root.
	ModeLocal Mode = "local"
)

type (
	// Mode is the operating layout of a project directory.
	Mode string

	// Context is the detection result threaded explicitly into every core
	// call. It is a value object; commands recompute it on each invocation
	// instead of reading ambient process state.
	Context struct {
		// Mode is the detected layout.
		Mode Mode
		// Root is the effective project root directory (absolute).
		Root string

		installed bool
	}

	// NotInstalledError indicates that neither layout marker was found at or
	// above the starting directory.
	NotInstalledError struct {
		// Start is the directory detection began from.
		Start string
	}
)

// Error implements the error interface.
func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("driving is not set up in %s: no %s directory or %s found in any parent directory", e.Start, DrivingDirName, GitlistName)
}

// Detect walks upward from startDir (inclusive) and decides the operating
// mode and effective root.
//
// The legacy root marker wins over the submodule marker across the entire
// ancestor chain: the walk first looks for gitlist.json on every level
// (local mode), and only then for a .driving directory (standard mode).
// When neither exists the Context defaults to standard mode rooted at
// startDir, and RequireInstalled reports NotInstalledError.
//
// Detection is a read-only filesystem probe; it never consults version
// control.
func Detect(startDir string) (Context, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return Context{}, fmt.Errorf("resolving start directory %s: %w", startDir, err)
	}

	for dir := abs; ; dir = filepath.Dir(dir) {
		if fileExists(filepath.Join(dir, GitlistName)) {
			return Context{Mode: ModeLocal, Root: dir, installed: true}, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}

	for dir := abs; ; dir = filepath.Dir(dir) {
		if dirExists(filepath.Join(dir, DrivingDirName)) {
			return Context{Mode: ModeStandard, Root: dir, installed: true}, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}

	return Context{Mode: ModeStandard, Root: abs, installed: false}, nil
}

// Installed reports whether a layout marker was actually found.
func (c Context) Installed() bool {
	return c.installed
}

// RequireInstalled returns NotInstalledError when no layout marker was
// found. Commands that read or mutate installation state call this before
// touching the registry.
func (c Context) RequireInstalled() error {
	if !c.installed {
		return &NotInstalledError{Start: c.Root}
	}
	return nil
}

// DrivingDir returns the directory holding the registry documents: the root
// itself in local mode, the .driving submodule in standard mode.
func (c Context) DrivingDir() string {
	if c.Mode == ModeLocal {
		return c.Root
	}
	return filepath.Join(c.Root, DrivingDirName)
}

// SubmodulesDir returns the directory framework repositories are installed
// into: <root>/submodules in local mode, <root>/.driving/submodules in
// standard mode.
func (c Context) SubmodulesDir() string {
	return filepath.Join(c.DrivingDir(), SubmodulesDirName)
}

// LocalDocsDir returns the documentation root for local-project frameworks.
func (c Context) LocalDocsDir() string {
	return filepath.Join(c.DrivingDir(), LocalDocsDirName)
}

// RemoteDocsDir returns the documentation root for remote frameworks.
func (c Context) RemoteDocsDir() string {
	return filepath.Join(c.DrivingDir(), RemoteDocsDirName)
}

// InstallDir returns the directory holding IDE configuration trees.
func (c Context) InstallDir() string {
	return filepath.Join(c.DrivingDir(), InstallDirName)
}

// SkillsDir returns the skills directory under the remote docs root.
func (c Context) SkillsDir() string {
	return filepath.Join(c.RemoteDocsDir(), SkillsDirName)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
