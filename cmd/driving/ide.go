// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"driving-cli/internal/idesync"
	"driving-cli/internal/issue"

	"github.com/spf13/cobra"
)

var ideListCmd = &cobra.Command{
	Use:   "ide-list",
	Short: "List available IDE configurations",
	Args:  cobra.NoArgs,
	RunE:  runIdeList,
}

var ideSyncCmd = &cobra.Command{
	Use:   "ide-sync <ide>",
	Short: "Sync an IDE configuration into the project",
	Long: `Copy the IDE's configuration tree from the install directory into
the project root. Files are only rewritten when their content changed.
Secrets found in MCP configs are moved to .env.local and replaced with
environment references.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdeSync,
}

func init() {
	rootCmd.AddCommand(ideListCmd)
	rootCmd.AddCommand(ideSyncCmd)
}

func runIdeList(cmd *cobra.Command, args []string) error {
	ws, err := requireWorkspace()
	if err != nil {
		return err
	}

	names, err := idesync.ListConfigs(ws.InstallDir())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("No IDE configurations available."))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), TitleStyle.Render("Available IDE configurations:"))
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), "  "+CmdStyle.Render(name))
	}
	return nil
}

func runIdeSync(cmd *cobra.Command, args []string) error {
	ws, err := requireWorkspace()
	if err != nil {
		return err
	}

	ide := args[0]
	srcDir := filepath.Join(ws.InstallDir(), "."+ide)
	if !checkoutExists(srcDir) {
		return issue.NewErrorContext().
			WithOperation("sync IDE configuration").
			WithResource(srcDir).
			WithSuggestion("Run 'driving ide-list' to see available IDEs").
			WithSuggestion("Run 'driving pull' in case the configuration was added upstream").
			WithIssue(issue.IdeConfigNotFoundId).
			BuildError()
	}

	syncer := idesync.NewSyncer(loadSettings(ws).SensitiveKeywords(), logger)
	report, err := syncer.Sync(srcDir, ws.Root)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(fmt.Sprintf(
		"synced %s: %d added, %d updated, %d unchanged",
		ide, len(report.Added), len(report.Updated), len(report.Skipped))))

	if len(report.EnvVars) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), WarningStyle.Render("Secrets moved to "+idesync.EnvLocalName+":"))
		for _, name := range report.EnvVars {
			fmt.Fprintln(cmd.OutOrStdout(), "  "+name)
		}
	}

	if verbose {
		for _, p := range report.Added {
			fmt.Fprintln(cmd.OutOrStdout(), VerboseStyle.Render("added   "+p))
		}
		for _, p := range report.Updated {
			fmt.Fprintln(cmd.OutOrStdout(), VerboseStyle.Render("updated "+p))
		}
	}
	return nil
}
