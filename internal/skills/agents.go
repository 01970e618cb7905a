// SPDX-License-Identifier: MPL-2.0

package skills

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

const (
	markerStart = "<!-- SKILLS_TABLE_START -->"
	markerEnd   = "<!-- SKILLS_TABLE_END -->"

	skillsSystemOpen  = `<skills_system priority="1">`
	skillsSystemClose = `</skills_system>`

	usageText = `In order to use a skill, read its SKILL.md file and follow the
instructions inside. Only use a skill when the task matches its description.`
)

var (
	markerBlockRe       = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(markerStart) + `.*?` + regexp.QuoteMeta(markerEnd))
	skillsSystemBlockRe = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(skillsSystemOpen) + `.*?` + regexp.QuoteMeta(skillsSystemClose))
)

// RenderAvailableSkills renders the skills list as the XML-ish block embedded
// in the agents file. Skills appear sorted by name.
func RenderAvailableSkills(skills []Skill) string {
	var sb strings.Builder
	sb.WriteString("<available_skills>\n")
	for _, s := range skills {
		sb.WriteString("  <skill>\n")
		fmt.Fprintf(&sb, "    <name>%s</name>\n", s.Name)
		fmt.Fprintf(&sb, "    <description>%s</description>\n", s.Description)
		sb.WriteString("  </skill>\n")
	}
	sb.WriteString("</available_skills>")
	return sb.String()
}

// renderSkillsSystemBlock wraps the available-skills listing with usage
// guidance for a fresh insertion.
func renderSkillsSystemBlock(skills []Skill) string {
	return skillsSystemOpen + "\n" +
		markerStart + "\n" +
		usageText + "\n\n" +
		RenderAvailableSkills(skills) + "\n" +
		markerEnd + "\n" +
		skillsSystemClose
}

// UpdateAgentsFile rewrites path so its skills section reflects skills.
// Replacement prefers the explicit table markers, falls back to the
// skills_system tags, and appends a complete block when neither exists.
// A missing file is created.
func UpdateAgentsFile(path string, skills []Skill) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		content := renderSkillsSystemBlock(skills) + "\n"
		return os.WriteFile(path, []byte(content), 0o644)
	}
	if err != nil {
		return err
	}

	content := string(data)
	replacement := markerStart + "\n" + usageText + "\n\n" + RenderAvailableSkills(skills) + "\n" + markerEnd

	switch {
	case markerBlockRe.MatchString(content):
		content = markerBlockRe.ReplaceAllLiteralString(content, replacement)
	case skillsSystemBlockRe.MatchString(content):
		content = skillsSystemBlockRe.ReplaceAllLiteralString(content, renderSkillsSystemBlock(skills))
	default:
		if !strings.HasSuffix(content, "\n") && content != "" {
			content += "\n"
		}
		content += "\n" + renderSkillsSystemBlock(skills) + "\n"
	}

	return os.WriteFile(path, []byte(content), 0o644)
}
