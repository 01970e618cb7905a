// SPDX-License-Identifier: MPL-2.0

package idesync

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testKeywords = []string{"api_key", "token", "secret", "password"}

func TestIsSensitiveKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want bool
	}{
		{"API_KEY", true},
		{"github_token", true},
		{"clientSecret", true},
		{"command", false},
		{"args", false},
		{"url", false},
	}
	for _, tt := range tests {
		if got := IsSensitiveKey(tt.key, testKeywords); got != tt.want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestEnvVarName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{[]string{"mcpServers", "github", "api-key"}, "MCPSERVERS_GITHUB_API_KEY"},
		{[]string{"token"}, "TOKEN"},
		{[]string{"a.b", "c d"}, "A_B_C_D"},
	}
	for _, tt := range tests {
		if got := EnvVarName(tt.path...); got != tt.want {
			t.Errorf("EnvVarName(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestScrubConfigExtractsSecrets(t *testing.T) {
	t.Parallel()

	input := []byte(`{
	// GitHub MCP server
	"mcpServers": {
		"github": {
			"command": "gh-mcp",
			"env": {
				"GITHUB_TOKEN": "ghp_realsecret123"
			}
		}
	}
}`)

	out, secrets, err := ScrubConfig(input, testKeywords)
	if err != nil {
		t.Fatalf("ScrubConfig() error = %v", err)
	}

	if len(secrets) != 1 {
		t.Fatalf("secrets = %v, want one entry", secrets)
	}
	name := "MCPSERVERS_GITHUB_ENV_GITHUB_TOKEN"
	if secrets[name] != "ghp_realsecret123" {
		t.Errorf("secrets[%s] = %q", name, secrets[name])
	}
	if strings.Contains(string(out), "ghp_realsecret123") {
		t.Error("secret value survived in the scrubbed config")
	}
	if !strings.Contains(string(out), "${"+name+"}") {
		t.Errorf("scrubbed config %s missing env reference", out)
	}

	// The output must be strict JSON again.
	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Errorf("scrubbed config is not valid JSON: %v", err)
	}
}

func TestScrubConfigLeavesExistingReferences(t *testing.T) {
	t.Parallel()

	input := []byte(`{"api_key": "${ALREADY_REF}", "password": ""}`)
	out, secrets, err := ScrubConfig(input, testKeywords)
	if err != nil {
		t.Fatalf("ScrubConfig() error = %v", err)
	}
	if len(secrets) != 0 {
		t.Errorf("secrets = %v, want none", secrets)
	}
	if !strings.Contains(string(out), "${ALREADY_REF}") {
		t.Error("existing reference was rewritten")
	}
}

func TestScrubConfigInvalidJSON(t *testing.T) {
	t.Parallel()

	_, _, err := ScrubConfig([]byte("{not json"), testKeywords)
	if err == nil {
		t.Error("ScrubConfig() error = nil for invalid JSON")
	}
}

func TestListConfigs(t *testing.T) {
	t.Parallel()

	installDir := t.TempDir()
	for _, d := range []string{".cursor", ".vscode", "templates"} {
		if err := os.MkdirAll(filepath.Join(installDir, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	names, err := ListConfigs(installDir)
	if err != nil {
		t.Fatalf("ListConfigs() error = %v", err)
	}
	if len(names) != 2 || names[0] != "cursor" || names[1] != "vscode" {
		t.Errorf("ListConfigs() = %v, want [cursor vscode]", names)
	}
}

func TestListConfigsMissingDir(t *testing.T) {
	t.Parallel()

	names, err := ListConfigs(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ListConfigs() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("ListConfigs() = %v, want empty", names)
	}
}

func setupIDETree(t *testing.T) (srcDir, projectRoot string) {
	t.Helper()
	srcRoot := t.TempDir()
	srcDir = filepath.Join(srcRoot, ".cursor")
	if err := os.MkdirAll(filepath.Join(srcDir, "rules"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "rules", "style.md"), []byte("rule body"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, MCPConfigName), []byte(`{"api_key": "s3cret"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	return srcDir, t.TempDir()
}

func TestSyncCopiesAndScrubs(t *testing.T) {
	t.Parallel()

	srcDir, projectRoot := setupIDETree(t)
	s := NewSyncer(testKeywords, nil)

	report, err := s.Sync(srcDir, projectRoot)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(report.Added) != 2 {
		t.Errorf("Added = %v, want both files", report.Added)
	}

	synced, err := os.ReadFile(filepath.Join(projectRoot, ".cursor", MCPConfigName))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(synced), "s3cret") {
		t.Error("secret landed in the project tree")
	}

	envData, err := os.ReadFile(filepath.Join(projectRoot, EnvLocalName))
	if err != nil {
		t.Fatalf("missing %s: %v", EnvLocalName, err)
	}
	if !strings.Contains(string(envData), "s3cret") {
		t.Errorf("%s = %q, want the extracted secret", EnvLocalName, envData)
	}

	ignoreData, err := os.ReadFile(filepath.Join(projectRoot, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(ignoreData), EnvLocalName) {
		t.Errorf(".gitignore = %q, want %s entry", ignoreData, EnvLocalName)
	}
}

func TestSyncIncremental(t *testing.T) {
	t.Parallel()

	srcDir, projectRoot := setupIDETree(t)
	s := NewSyncer(testKeywords, nil)

	if _, err := s.Sync(srcDir, projectRoot); err != nil {
		t.Fatal(err)
	}

	// Second run: nothing changed, everything skips.
	report, err := s.Sync(srcDir, projectRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Added) != 0 || len(report.Updated) != 0 {
		t.Errorf("second run report = %+v, want all skipped", report)
	}
	if len(report.Skipped) != 2 {
		t.Errorf("Skipped = %v, want both files", report.Skipped)
	}

	// Change a source file: exactly that file updates.
	if err := os.WriteFile(filepath.Join(srcDir, "rules", "style.md"), []byte("new rule body"), 0o644); err != nil {
		t.Fatal(err)
	}
	report, err = s.Sync(srcDir, projectRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Updated) != 1 || !strings.Contains(report.Updated[0], "style.md") {
		t.Errorf("Updated = %v, want style.md only", report.Updated)
	}
}

func TestSyncPreservesManualEnvValues(t *testing.T) {
	t.Parallel()

	srcDir, projectRoot := setupIDETree(t)
	envPath := filepath.Join(projectRoot, EnvLocalName)
	if err := os.WriteFile(envPath, []byte("API_KEY=manually-set\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewSyncer(testKeywords, nil)
	if _, err := s.Sync(srcDir, projectRoot); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(envPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "manually-set") {
		t.Errorf("%s = %q, manual value was overwritten", EnvLocalName, data)
	}
}

func TestSyncMissingSource(t *testing.T) {
	t.Parallel()

	s := NewSyncer(testKeywords, nil)
	_, err := s.Sync(filepath.Join(t.TempDir(), ".nope"), t.TempDir())
	if err == nil {
		t.Error("Sync() error = nil for missing source tree")
	}
}
