// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"driving-cli/internal/issue"
	"driving-cli/internal/skills"

	"github.com/spf13/cobra"
)

var skillsSyncCmd = &cobra.Command{
	Use:   "skills-sync",
	Short: "Sync skill definitions into AGENTS.md",
	Long: `Scan ai-docs/skills for SKILL.md definitions and rewrite the
available-skills section of the project's AGENTS.md to match. Skills
with an empty description are skipped with a warning.`,
	Args: cobra.NoArgs,
	RunE: runSkillsSync,
}

func init() {
	rootCmd.AddCommand(skillsSyncCmd)
}

func runSkillsSync(cmd *cobra.Command, args []string) error {
	ws, err := requireWorkspace()
	if err != nil {
		return err
	}

	found, warnings, err := skills.Scan(ws.SkillsDir())
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+
			fmt.Sprintf("%s: %s", w.Path, w.Message))
	}
	if len(warnings) > 0 {
		renderIssue(os.Stderr, issue.SkillsFileInvalidId)
	}

	agentsPath := filepath.Join(ws.Root, skills.AgentsFileName)
	if err := skills.UpdateAgentsFile(agentsPath, found); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(
		fmt.Sprintf("synced %d skills into %s", len(found), skills.AgentsFileName)))
	if verbose {
		for _, s := range found {
			fmt.Fprintln(cmd.OutOrStdout(), VerboseStyle.Render("  "+s.Name+": "+s.Description))
		}
	}
	return nil
}
