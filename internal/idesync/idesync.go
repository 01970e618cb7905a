// SPDX-License-Identifier: MPL-2.0

// Package idesync copies IDE configuration trees from the workspace install
// directory into the project, extracting secrets from MCP configs into
// .env.local references along the way.
package idesync

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	// EnvLocalName holds the secrets extracted from MCP configs. It must
	// never be committed.
	EnvLocalName = ".env.local"

	gitignoreName = ".gitignore"
)

type (
	// SyncReport summarizes one IDE sync run.
	SyncReport struct {
		// Added are project-relative paths created by this run.
		Added []string
		// Updated are paths whose content changed.
		Updated []string
		// Skipped are paths already byte-identical.
		Skipped []string
		// EnvVars are the secret names extracted into .env.local.
		EnvVars []string
	}

	// Syncer copies IDE config trees.
	Syncer struct {
		keywords []string
		logger   *log.Logger
	}
)

// NewSyncer builds a Syncer that treats keys matching keywords as secrets.
func NewSyncer(keywords []string, logger *log.Logger) *Syncer {
	return &Syncer{keywords: keywords, logger: logger}
}

// ListConfigs returns the IDE names available under installDir: every
// dot-prefixed directory, without the dot, sorted.
func ListConfigs(installDir string) ([]string, error) {
	entries, err := os.ReadDir(installDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), ".") {
			names = append(names, strings.TrimPrefix(e.Name(), "."))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Sync copies the IDE tree at srcDir into projectRoot under the same
// dot-directory name. Files are compared byte-for-byte and only written when
// they differ; MCP configs are scrubbed before comparison so secrets never
// land in the project tree.
func (s *Syncer) Sync(srcDir, projectRoot string) (*SyncReport, error) {
	if _, err := os.Stat(srcDir); err != nil {
		return nil, err
	}

	dstDir := filepath.Join(projectRoot, filepath.Base(srcDir))
	report := &SyncReport{}
	secrets := map[string]string{}

	err := filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dstDir, rel)

		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if filepath.Base(path) == MCPConfigName {
			scrubbed, found, err := ScrubConfig(data, s.keywords)
			if err != nil {
				return fmt.Errorf("%s: %w", rel, err)
			}
			for k, v := range found {
				secrets[k] = v
			}
			data = scrubbed
		}

		relToRoot := filepath.Join(filepath.Base(srcDir), rel)
		existing, err := os.ReadFile(dst)
		switch {
		case err == nil && bytes.Equal(existing, data):
			report.Skipped = append(report.Skipped, relToRoot)
			return nil
		case err == nil:
			report.Updated = append(report.Updated, relToRoot)
		case os.IsNotExist(err):
			report.Added = append(report.Added, relToRoot)
		default:
			return err
		}

		if s.logger != nil {
			s.logger.Debug("sync", "path", relToRoot)
		}
		return os.WriteFile(dst, data, 0o644)
	})
	if err != nil {
		return nil, err
	}

	if len(secrets) > 0 {
		if err := s.writeSecrets(projectRoot, secrets, report); err != nil {
			return nil, err
		}
	}

	sort.Strings(report.Added)
	sort.Strings(report.Updated)
	sort.Strings(report.Skipped)
	return report, nil
}

// writeSecrets merges the extracted secrets into .env.local (existing values
// win over extracted ones) and makes sure .gitignore covers the file.
func (s *Syncer) writeSecrets(projectRoot string, secrets map[string]string, report *SyncReport) error {
	envPath := filepath.Join(projectRoot, EnvLocalName)

	merged := map[string]string{}
	if existing, err := godotenv.Read(envPath); err == nil {
		merged = existing
	}
	for k, v := range secrets {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
		report.EnvVars = append(report.EnvVars, k)
	}
	sort.Strings(report.EnvVars)

	if err := godotenv.Write(merged, envPath); err != nil {
		return fmt.Errorf("writing %s: %w", EnvLocalName, err)
	}

	return ensureGitignored(projectRoot, EnvLocalName)
}

// ensureGitignored appends entry to the project .gitignore unless an
// existing line already covers it.
func ensureGitignored(projectRoot, entry string) error {
	path := filepath.Join(projectRoot, gitignoreName)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == entry {
			return nil
		}
	}

	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"
	return os.WriteFile(path, []byte(content), 0o644)
}
