// SPDX-License-Identifier: MPL-2.0

// Package skills discovers SKILL.md definitions under the workspace skills
// tree and keeps the agents file's available-skills section in sync with
// them.
package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

const (
	// SkillFileName is the per-skill definition file.
	SkillFileName = "SKILL.md"

	// AgentsFileName is the agents file updated by sync.
	AgentsFileName = "AGENTS.md"

	frontMatterDelim = "---"
)

type (
	// Skill is one parsed SKILL.md front matter.
	Skill struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		// Dir is the skill's directory name under the skills tree.
		Dir string `yaml:"-"`
	}

	// Warning is a non-fatal finding from scanning: a skill that was
	// skipped and why.
	Warning struct {
		Path    string
		Message string
	}
)

// Scan walks dir for */SKILL.md files and parses each one's front matter.
// Skills without a usable name or description are skipped with a warning;
// a missing skills tree yields an empty result.
func Scan(dir string) ([]Skill, []Warning, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "*/"+SkillFileName)
	if err != nil {
		return nil, nil, fmt.Errorf("scanning skills in %s: %w", dir, err)
	}
	sort.Strings(matches)

	var (
		skills   []Skill
		warnings []Warning
	)
	for _, rel := range matches {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		skill, err := parseSkillFile(path)
		if err != nil {
			warnings = append(warnings, Warning{Path: path, Message: err.Error()})
			continue
		}
		if skill.Description == "" {
			warnings = append(warnings, Warning{Path: path, Message: "skill has an empty description"})
			continue
		}
		skill.Dir = filepath.Dir(rel)
		if skill.Name == "" {
			skill.Name = skill.Dir
		}
		skills = append(skills, skill)
	}

	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills, warnings, nil
}

// parseSkillFile reads path and decodes its YAML front matter.
func parseSkillFile(path string) (Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Skill{}, err
	}

	front, err := extractFrontMatter(string(data))
	if err != nil {
		return Skill{}, err
	}

	var skill Skill
	if err := yaml.Unmarshal([]byte(front), &skill); err != nil {
		return Skill{}, fmt.Errorf("invalid front matter: %w", err)
	}
	skill.Name = strings.TrimSpace(skill.Name)
	skill.Description = strings.TrimSpace(skill.Description)
	return skill, nil
}

// extractFrontMatter returns the YAML between the leading "---" delimiters.
func extractFrontMatter(content string) (string, error) {
	trimmed := strings.TrimLeft(content, "\ufeff\n\r ")
	if !strings.HasPrefix(trimmed, frontMatterDelim) {
		return "", fmt.Errorf("missing front matter delimiter")
	}

	rest := trimmed[len(frontMatterDelim):]
	end := strings.Index(rest, "\n"+frontMatterDelim)
	if end < 0 {
		return "", fmt.Errorf("unterminated front matter")
	}
	return rest[:end], nil
}
