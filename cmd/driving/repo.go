// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"driving-cli/internal/issue"

	"github.com/spf13/cobra"
)

var commitMessage string

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the driving repository",
	Long: `Pull the driving repository itself (the .driving submodule in
standard mode, the project root in local mode). A dirty working tree
aborts the pull; a detached HEAD is reattached to main or master first.`,
	Args: cobra.NoArgs,
	RunE: runRepoPull,
}

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit all changes in the driving repository",
	Args:  cobra.NoArgs,
	RunE:  runRepoCommit,
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the driving repository",
	Args:  cobra.NoArgs,
	RunE:  runRepoPush,
}

func init() {
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(pushCmd)

	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
}

func runRepoPull(cmd *cobra.Command, args []string) error {
	ws, err := requireWorkspace()
	if err != nil {
		return err
	}
	git := newGit()
	dir := ws.DrivingDir()

	dirty, err := git.IsDirty(cmd.Context(), dir)
	if err != nil {
		return err
	}
	if dirty {
		return &ExitError{Code: 1, Err: issue.NewErrorContext().
			WithOperation("pull driving repository").
			WithResource(dir).
			WithSuggestion("Commit your changes first: driving commit -m \"...\"").
			WithSuggestion("Or stash them: git stash").
			WithIssue(issue.RepoDirtyId).
			Build()}
	}

	// Submodule checkouts often sit on a detached HEAD; reattach before
	// pulling so the pull has an upstream.
	branch, err := git.CurrentBranch(cmd.Context(), dir)
	if err != nil {
		return err
	}
	if branch == "" {
		if err := git.Checkout(cmd.Context(), dir, "main"); err != nil {
			if err := git.Checkout(cmd.Context(), dir, "master"); err != nil {
				return fmt.Errorf("detached HEAD in %s and neither main nor master exists: %w", dir, err)
			}
		}
	}

	if err := git.Pull(cmd.Context(), dir); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("driving repository is up to date"))
	return nil
}

func runRepoCommit(cmd *cobra.Command, args []string) error {
	ws, err := requireWorkspace()
	if err != nil {
		return err
	}
	git := newGit()
	dir := ws.DrivingDir()

	dirty, err := git.IsDirty(cmd.Context(), dir)
	if err != nil {
		return err
	}
	if !dirty {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("nothing to commit"))
		return nil
	}

	message := commitMessage
	if message == "" {
		message = loadSettings(ws).CommitMessage()
	}

	if err := git.AddAll(cmd.Context(), dir); err != nil {
		return err
	}
	if err := git.Commit(cmd.Context(), dir, message); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("committed: ")+message)
	return nil
}

func runRepoPush(cmd *cobra.Command, args []string) error {
	ws, err := requireWorkspace()
	if err != nil {
		return err
	}

	if err := newGit().Push(cmd.Context(), ws.DrivingDir()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("pushed driving repository"))
	return nil
}
