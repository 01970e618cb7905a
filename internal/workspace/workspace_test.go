// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	mkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDetect_LocalMode(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, GitlistName), "[]")

	ctx, err := Detect(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Mode != ModeLocal {
		t.Errorf("expected local mode, got %s", ctx.Mode)
	}
	if ctx.Root != root {
		t.Errorf("expected root %s, got %s", root, ctx.Root)
	}
	if !ctx.Installed() {
		t.Error("expected installed")
	}
}

func TestDetect_StandardMode(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mkdirAll(t, filepath.Join(root, DrivingDirName))

	ctx, err := Detect(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Mode != ModeStandard {
		t.Errorf("expected standard mode, got %s", ctx.Mode)
	}
	if ctx.Root != root {
		t.Errorf("expected root %s, got %s", root, ctx.Root)
	}
}

func TestDetect_WalksUpFromSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, GitlistName), "[]")
	nested := filepath.Join(root, "a", "b", "c")
	mkdirAll(t, nested)

	ctx, err := Detect(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Mode != ModeLocal || ctx.Root != root {
		t.Errorf("expected (local, %s), got (%s, %s)", root, ctx.Mode, ctx.Root)
	}
}

// Detection must yield the same result from any two subdirectories of the
// same project.
func TestDetect_Idempotent(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mkdirAll(t, filepath.Join(root, DrivingDirName))
	a := filepath.Join(root, "src", "pkg")
	b := filepath.Join(root, "docs")
	mkdirAll(t, a)
	mkdirAll(t, b)

	ctxA, err := Detect(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctxB, err := Detect(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctxA != ctxB {
		t.Errorf("detection differs across subdirectories: %+v vs %+v", ctxA, ctxB)
	}
}

// The legacy root marker takes precedence over a .driving mount found
// closer to the starting directory.
func TestDetect_GitlistAboveDrivingWinsLocal(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, GitlistName), "[]")
	sub := filepath.Join(root, "svc")
	mkdirAll(t, filepath.Join(sub, DrivingDirName))

	ctx, err := Detect(sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Mode != ModeLocal || ctx.Root != root {
		t.Errorf("expected (local, %s), got (%s, %s)", root, ctx.Mode, ctx.Root)
	}
}

func TestDetect_NothingFound(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	ctx, err := Detect(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Mode != ModeStandard {
		t.Errorf("expected standard mode fallback, got %s", ctx.Mode)
	}
	if ctx.Root != dir {
		t.Errorf("expected root %s, got %s", dir, ctx.Root)
	}
	if ctx.Installed() {
		t.Error("expected not installed")
	}

	var nie *NotInstalledError
	if err := ctx.RequireInstalled(); !errors.As(err, &nie) {
		t.Errorf("expected NotInstalledError, got %v", err)
	}
}

// A gitlist.json that is a directory must not flip the mode to local.
func TestDetect_GitlistDirectoryIgnored(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mkdirAll(t, filepath.Join(root, GitlistName))
	mkdirAll(t, filepath.Join(root, DrivingDirName))

	ctx, err := Detect(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Mode != ModeStandard {
		t.Errorf("expected standard mode, got %s", ctx.Mode)
	}
}

func TestContext_Paths(t *testing.T) {
	t.Parallel()

	local := Context{Mode: ModeLocal, Root: "/proj", installed: true}
	if got := local.DrivingDir(); got != "/proj" {
		t.Errorf("local DrivingDir = %s", got)
	}
	if got := local.SubmodulesDir(); got != filepath.Join("/proj", "submodules") {
		t.Errorf("local SubmodulesDir = %s", got)
	}

	std := Context{Mode: ModeStandard, Root: "/proj", installed: true}
	if got := std.DrivingDir(); got != filepath.Join("/proj", ".driving") {
		t.Errorf("standard DrivingDir = %s", got)
	}
	if got := std.SubmodulesDir(); got != filepath.Join("/proj", ".driving", "submodules") {
		t.Errorf("standard SubmodulesDir = %s", got)
	}
	if got := std.LocalDocsDir(); got != filepath.Join("/proj", ".driving", "ai-docs-local") {
		t.Errorf("standard LocalDocsDir = %s", got)
	}
	if got := std.RemoteDocsDir(); got != filepath.Join("/proj", ".driving", "ai-docs") {
		t.Errorf("standard RemoteDocsDir = %s", got)
	}
}
