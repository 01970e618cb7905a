// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"driving-cli/internal/workspace"
)

// standardWorkspace builds a .driving layout under a temp dir and returns
// the detected workspace context.
func standardWorkspace(t *testing.T) workspace.Context {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, workspace.DrivingDirName), 0o755); err != nil {
		t.Fatal(err)
	}
	ws, err := workspace.Detect(root)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	return ws
}

// writeGitlist writes content to rel (slash-separated) under the driving dir,
// creating parents.
func writeGitlist(t *testing.T, ws workspace.Context, rel, content string) {
	t.Helper()
	path := filepath.Join(ws.DrivingDir(), filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const minimalRecord = `[{
	"name": "workflow",
	"project_name": "driving-workflow",
	"url": "https://example.com/driving-workflow.git",
	"branch": "main",
	"module": "workflow",
	"sources": ["commands/**"],
	"description": "workflow commands",
	"creator": "team",
	"date": "2025-01-01"
}]`

func TestLoadMissingDocumentsContributeNothing(t *testing.T) {
	t.Parallel()

	ws := standardWorkspace(t)
	records, err := Load(ws)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("Load() = %d records, want 0", len(records))
	}
}

func TestLoadTagsOriginAndDocPath(t *testing.T) {
	t.Parallel()

	ws := standardWorkspace(t)
	writeGitlist(t, ws, "ai-docs-local/gitlist.json", `[{
		"name": "mine",
		"project_name": "__local__",
		"url": "__local__",
		"branch": "__local__",
		"module": "mine",
		"sources": ["docs/**"],
		"description": "local overrides",
		"creator": "me",
		"date": "2025-02-02"
	}]`)
	writeGitlist(t, ws, "ai-docs/gitlist.json", minimalRecord)
	writeGitlist(t, ws, "gitlist.json", strings.Replace(minimalRecord, `"workflow"`, `"legacy"`, 1))

	records, err := Load(ws)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Load() = %d records, want 3", len(records))
	}

	wantOrigins := []Origin{OriginLocalProject, OriginRemote, OriginLegacyRoot}
	for i, want := range wantOrigins {
		if records[i].Origin != want {
			t.Errorf("records[%d].Origin = %s, want %s", i, records[i].Origin, want)
		}
	}
	if got, want := records[0].DocPath, filepath.Join(ws.LocalDocsDir(), "mine"); got != want {
		t.Errorf("local DocPath = %q, want %q", got, want)
	}
	// Legacy root records document under the remote docs tree.
	if got, want := records[2].DocPath, filepath.Join(ws.RemoteDocsDir(), "legacy"); got != want {
		t.Errorf("legacy DocPath = %q, want %q", got, want)
	}
}

func TestLoadMalformedJSONFailsWhole(t *testing.T) {
	t.Parallel()

	ws := standardWorkspace(t)
	writeGitlist(t, ws, "ai-docs/gitlist.json", `[{"name": "broken"`)

	_, err := Load(ws)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load() error = %v, want ParseError", err)
	}
	if !strings.Contains(perr.Path, "ai-docs") {
		t.Errorf("ParseError.Path = %q, want the ai-docs document", perr.Path)
	}
}

func TestLoadSchemaViolationReportsFieldPath(t *testing.T) {
	t.Parallel()

	ws := standardWorkspace(t)
	writeGitlist(t, ws, "ai-docs/gitlist.json", `[{
		"name": "bad",
		"project_name": "p",
		"url": "https://example.com/p.git",
		"module": "m",
		"sources": "not-a-list",
		"description": "d",
		"creator": "c",
		"date": "2025-01-01"
	}]`)

	_, err := Load(ws)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load() error = %v, want ParseError", err)
	}
	if !strings.Contains(err.Error(), "sources") {
		t.Errorf("error %q does not name the offending field", err)
	}
}

func TestLoadToleratesExtraFields(t *testing.T) {
	t.Parallel()

	ws := standardWorkspace(t)
	writeGitlist(t, ws, "ai-docs/gitlist.json", strings.Replace(minimalRecord,
		`"date": "2025-01-01"`, `"date": "2025-01-01", "homepage": "https://example.com"`, 1))

	records, err := Load(ws)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 1 || records[0].Name != "workflow" {
		t.Fatalf("Load() = %+v, want single workflow record", records)
	}
}

func TestLoadLocalMode(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, workspace.GitlistName), []byte(minimalRecord), 0o644); err != nil {
		t.Fatal(err)
	}
	ws, err := workspace.Detect(root)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if ws.Mode != workspace.ModeLocal {
		t.Fatalf("Mode = %v, want local", ws.Mode)
	}

	records, err := Load(ws)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 1 || records[0].Origin != OriginLegacyRoot {
		t.Fatalf("Load() = %+v, want one legacy-root record", records)
	}
}
