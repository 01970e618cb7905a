// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"driving-cli/internal/issue"
	"driving-cli/internal/registry"
	"driving-cli/internal/workspace"

	"github.com/spf13/cobra"
)

var gitCheckoutCmd = &cobra.Command{
	Use:   "git-checkout <framework> <branch>",
	Short: "Switch a framework checkout to a branch",
	Args:  cobra.ExactArgs(2),
	RunE:  runGitCheckout,
}

var gitPullCmd = &cobra.Command{
	Use:   "git-pull [framework]",
	Short: "Pull framework checkouts",
	Long: `Pull the named framework's checkout, or every installed remote
framework when no name is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGitPull,
}

func init() {
	rootCmd.AddCommand(gitCheckoutCmd)
	rootCmd.AddCommand(gitPullCmd)
}

// frameworkCheckoutDir looks up name and returns its checkout directory,
// rejecting local-project frameworks which have no checkout.
func frameworkCheckoutDir(ws workspace.Context, reg *registry.Registry, name string) (string, error) {
	rec, err := reg.Get(name)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("look up framework").
			WithResource(name).
			WithSuggestion("Run 'driving git-list' to see registered frameworks").
			WithIssue(issue.FrameworkNotFoundId).
			Wrap(err).
			BuildError()
	}
	if rec.IsLocalProject() {
		return "", fmt.Errorf("framework %q is a local project and has no checkout", name)
	}

	dir := filepath.Join(ws.SubmodulesDir(), rec.ProjectName)
	if !checkoutExists(dir) {
		return "", issue.NewErrorContext().
			WithOperation("locate framework checkout").
			WithResource(dir).
			WithSuggestion(fmt.Sprintf("Run 'driving git-install %s' first", name)).
			BuildError()
	}
	return dir, nil
}

func runGitCheckout(cmd *cobra.Command, args []string) error {
	ws, err := requireWorkspace()
	if err != nil {
		return err
	}
	reg, err := openRegistry(ws)
	if err != nil {
		return err
	}

	dir, err := frameworkCheckoutDir(ws, reg, args[0])
	if err != nil {
		return err
	}

	if err := newGit().Checkout(cmd.Context(), dir, args[1]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(
		fmt.Sprintf("%s is now on %s", args[0], args[1])))
	return nil
}

func runGitPull(cmd *cobra.Command, args []string) error {
	ws, err := requireWorkspace()
	if err != nil {
		return err
	}
	reg, err := openRegistry(ws)
	if err != nil {
		return err
	}

	git := newGit()

	if len(args) == 1 {
		dir, err := frameworkCheckoutDir(ws, reg, args[0])
		if err != nil {
			return err
		}
		if err := git.Pull(cmd.Context(), dir); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("pulled "+args[0]))
		return nil
	}

	var pulled, failed int
	for _, rec := range reg.All() {
		if rec.IsLocalProject() {
			continue
		}
		dir := filepath.Join(ws.SubmodulesDir(), rec.ProjectName)
		if !checkoutExists(dir) {
			continue
		}
		if err := git.Pull(cmd.Context(), dir); err != nil {
			failed++
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+
				fmt.Sprintf("%s: %v", rec.Name, err))
			continue
		}
		pulled++
	}

	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(
		fmt.Sprintf("pulled %d checkouts", pulled)))
	if failed > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}
