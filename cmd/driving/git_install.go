// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"driving-cli/internal/gitrepo"
	"driving-cli/internal/issue"
	"driving-cli/internal/registry"

	"github.com/spf13/cobra"
)

var gitInstallCmd = &cobra.Command{
	Use:   "git-install [framework]",
	Short: "Clone or update framework checkouts",
	Long: `Install the remote frameworks of the registry into the submodules
directory. Named with a framework, only that framework's dependency
closure is installed. Existing checkouts are switched to their declared
branch and pulled; local-project frameworks are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGitInstall,
}

func init() {
	rootCmd.AddCommand(gitInstallCmd)
}

func runGitInstall(cmd *cobra.Command, args []string) error {
	ws, err := requireWorkspace()
	if err != nil {
		return err
	}
	reg, err := openRegistry(ws)
	if err != nil {
		return err
	}

	var records []registry.Framework
	if len(args) == 1 {
		records, err = resolveClosure(reg, args[0])
		if err != nil {
			return err
		}
	} else {
		records = reg.All()
	}

	set := registry.Aggregate(ws, records)
	warnDiagnostics(set.Diagnostics)

	git := newGit()
	var installed, updated, failed int
	for _, t := range set.InstallTargets {
		item := installItem{InstallTarget: t, existed: checkoutExists(t.Dir)}
		switch err := installTarget(cmd.Context(), git, item); {
		case err == nil && item.existed:
			updated++
		case err == nil:
			installed++
		default:
			failed++
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+
				fmt.Sprintf("%s: %v", item.Framework.Name, err))
		}
	}
	skipped := localCount(records)

	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(
		fmt.Sprintf("installed %d, updated %d, skipped %d local", installed, updated, skipped)))
	if failed > 0 {
		return &ExitError{Code: 1, Err: issue.NewErrorContext().
			WithOperation("install frameworks").
			WithSuggestion("Run with --verbose to see the failing git commands").
			Build()}
	}
	return nil
}

// installTarget clones a missing checkout, or best-effort switches an
// existing one to its declared branch and pulls.
func installTarget(ctx context.Context, git gitrepo.Git, target installItem) error {
	fw := target.Framework
	if !target.existed {
		logger.Debug("clone", "framework", fw.Name, "url", fw.URL, "dir", target.Dir)
		return git.Clone(ctx, fw.URL, fw.Branch, target.Dir)
	}

	if fw.Branch != "" {
		// Branch switch is best effort: a checkout pinned elsewhere still pulls.
		if err := git.Checkout(ctx, target.Dir, fw.Branch); err != nil {
			logger.Debug("checkout failed, pulling current branch", "framework", fw.Name, "err", err)
		}
	}
	return git.Pull(ctx, target.Dir)
}

func localCount(records []registry.Framework) int {
	n := 0
	for _, rec := range records {
		if rec.IsLocalProject() {
			n++
		}
	}
	return n
}

// installItem decorates a registry install target with existence state.
type installItem struct {
	registry.InstallTarget
	existed bool
}

func checkoutExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
