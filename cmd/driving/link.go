// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"driving-cli/internal/issue"
	"driving-cli/internal/linker"
	"driving-cli/internal/settings"

	"github.com/spf13/cobra"
)

var installURL string

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install driving into the current project",
	Long: `Wire a driving repository into the current git project: the
repository is added as a .driving submodule, ai-docs is linked to its
docs tree, and the URL is remembered in .env for later runs.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove driving from the current project",
	Args:  cobra.NoArgs,
	RunE:  runUninstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)

	installCmd.Flags().StringVar(&installURL, "url", "", "driving repository URL")
}

func runInstall(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	url := installURL
	if url == "" {
		// Fall back to the URL remembered by a previous install.
		url = settings.Load(cwd).RepoURL()
	}
	if url == "" {
		return issue.NewErrorContext().
			WithOperation("install driving").
			WithSuggestion("Pass the repository with --url <driving-repo-url>").
			WithSuggestion("Or set DRIVING_REPO_URL in the environment or .env").
			BuildError()
	}

	if err := linker.New(newGit()).Install(cmd.Context(), cwd, url); err != nil {
		return issue.NewErrorContext().
			WithOperation("install driving").
			WithResource(cwd).
			WithSuggestion("Make sure the project root is a git repository").
			WithSuggestion("Run 'driving uninstall' to clean up a partial install and retry").
			WithIssue(issue.SubmoduleSetupFailedId).
			Wrap(err).
			BuildError()
	}

	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("driving installed from ")+CmdStyle.Render(url))
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	if err := linker.New(newGit()).Uninstall(cmd.Context(), cwd); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("driving removed"))
	return nil
}
