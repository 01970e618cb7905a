// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"driving-cli/internal/selfupdate"
	"driving-cli/internal/settings"

	"github.com/spf13/cobra"
)

// updateParams bundles the dependencies and flags for the update command,
// enabling the core logic in runUpdate to be tested without a real Cobra
// command or live network calls.
type updateParams struct {
	stdout      io.Writer
	stderr      io.Writer
	stdin       io.Reader
	updater     *selfupdate.Updater
	manifestURL string
	check       bool // --check mode: report availability without installing
	yes         bool // --yes flag: skip confirmation prompt
	force       bool // --force flag: reinstall even when already up to date
}

// newUpdateCommand creates the `driving update` command, which replaces the
// binary with the version published in the version manifest.
func newUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update driving to the published version",
		Long: `Update driving to the version published in the version manifest.

The update command downloads the new binary, verifies its SHA256
checksum when the manifest provides one, and atomically replaces the
current binary.

If driving was installed via Homebrew or go install, the command
suggests using the appropriate package manager instead.`,
		Example: `  # Update to the published version
  driving update

  # Check for updates without installing
  driving update --check

  # Use a different manifest
  driving update --url https://example.com/dist/version.json

  # Skip confirmation prompt
  driving update --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			checkFlag, _ := cmd.Flags().GetBool("check")
			yesFlag, _ := cmd.Flags().GetBool("yes")
			forceFlag, _ := cmd.Flags().GetBool("force")
			urlFlag, _ := cmd.Flags().GetString("url")

			if urlFlag == "" {
				cwd, _ := os.Getwd()
				urlFlag = settings.Load(cwd).UpdateVersionURL()
			}

			p := updateParams{
				stdout:      cmd.OutOrStdout(),
				stderr:      cmd.ErrOrStderr(),
				stdin:       cmd.InOrStdin(),
				updater:     selfupdate.NewUpdater(Version),
				manifestURL: urlFlag,
				check:       checkFlag,
				yes:         yesFlag,
				force:       forceFlag,
			}

			if err := runUpdate(cmd.Context(), p); err != nil {
				fmt.Fprintln(p.stderr, formatUpdateError(err))
				return &ExitError{Code: classifyUpdateExitCode(err), Err: err}
			}

			return nil
		},
	}

	cmd.Flags().Bool("check", false, "Check for an available update without installing")
	cmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")
	cmd.Flags().Bool("force", false, "Reinstall even when already up to date")
	cmd.Flags().String("url", "", "version manifest URL (default from DRIVING_UPDATE_VERSION_URL)")

	return cmd
}

// newVersionCommand creates the `driving version` command. It prints the
// running version; with --check it also consults the manifest for an
// available update.
func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the driving version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), getVersionString())

			checkFlag, _ := cmd.Flags().GetBool("check")
			if !checkFlag {
				return nil
			}

			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			urlFlag, _ := cmd.Flags().GetString("url")
			if urlFlag == "" {
				cwd, _ := os.Getwd()
				urlFlag = settings.Load(cwd).UpdateVersionURL()
			}

			p := updateParams{
				stdout:      cmd.OutOrStdout(),
				stderr:      cmd.ErrOrStderr(),
				stdin:       cmd.InOrStdin(),
				updater:     selfupdate.NewUpdater(Version),
				manifestURL: urlFlag,
				check:       true,
			}

			if err := runUpdate(cmd.Context(), p); err != nil {
				fmt.Fprintln(p.stderr, formatUpdateError(err))
				return &ExitError{Code: classifyUpdateExitCode(err), Err: err}
			}
			return nil
		},
	}

	cmd.Flags().Bool("check", false, "Also check the manifest for an available update")
	cmd.Flags().String("url", "", "version manifest URL (default from DRIVING_UPDATE_VERSION_URL)")

	return cmd
}

func init() {
	rootCmd.AddCommand(newUpdateCommand())
	rootCmd.AddCommand(newVersionCommand())
}

// runUpdate is the core update logic, separated from Cobra for testability.
// All user-facing output goes through p.stdout and p.stderr.
//
// Flow:
//  1. Fetch the manifest and compare versions.
//  2. If the install is managed (Homebrew/go install), print guidance and return.
//  3. If already up-to-date, print status and return (unless --force).
//  4. If --check, print availability and return.
//  5. Otherwise, confirm with the user (unless --yes), download, verify, and replace.
func runUpdate(ctx context.Context, p updateParams) error {
	check, err := p.updater.Check(ctx, p.manifestURL)
	if err != nil {
		return fmt.Errorf("checking for update: %w", err)
	}

	// Managed installs (Homebrew, go install) should use their respective
	// package managers. The Check method returns a pre-formatted message.
	if check.InstallMethod == selfupdate.InstallMethodHomebrew ||
		check.InstallMethod == selfupdate.InstallMethodGoInstall {
		fmt.Fprintln(p.stdout, check.Message)
		return nil
	}

	if !check.UpgradeAvailable && !(p.force && check.Info != nil) {
		fmt.Fprintf(p.stdout, "Current version: %s\n", check.CurrentVersion)
		if check.LatestVersion != "" {
			fmt.Fprintf(p.stdout, "Published version: %s\n", check.LatestVersion)
		}
		fmt.Fprintf(p.stdout, "\n%s\n", check.Message)
		return nil
	}

	if p.check {
		fmt.Fprintf(p.stdout, "Current version: %s\n", check.CurrentVersion)
		fmt.Fprintf(p.stdout, "Published version: %s\n", check.LatestVersion)
		fmt.Fprintf(p.stdout, "\nAn update is available: %s → %s\n", check.CurrentVersion, check.LatestVersion)
		fmt.Fprintln(p.stdout, "Run 'driving update' to install.")
		return nil
	}

	fmt.Fprintf(p.stdout, "Current version: %s\n", check.CurrentVersion)
	fmt.Fprintf(p.stdout, "Published version: %s\n", check.LatestVersion)
	if check.Info != nil && check.Info.Changelog != "" {
		fmt.Fprintf(p.stdout, "\nChangelog:\n%s\n", check.Info.Changelog)
	}

	if !p.yes {
		fmt.Fprintf(p.stdout, "\nUpdate driving from %s to %s? [y/N] ", check.CurrentVersion, check.LatestVersion)
		if !readConfirmation(p.stdin) {
			return nil
		}
	}

	fmt.Fprintf(p.stdout, "\nDownloading driving %s...\n", check.LatestVersion)

	if err := p.updater.Apply(ctx, check.Info); err != nil {
		return fmt.Errorf("applying update: %w", err)
	}

	fmt.Fprintln(p.stdout, SuccessStyle.Render(fmt.Sprintf("Successfully updated to %s", check.LatestVersion)))
	return nil
}

// readConfirmation treats y/yes (any case) as consent.
func readConfirmation(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// classifyUpdateExitCode maps an update error to the appropriate process exit
// code. Permission errors use exit code 1 (user-correctable); all other
// failures use exit code 2 (unexpected/transient).
func classifyUpdateExitCode(err error) int {
	if errors.Is(err, os.ErrPermission) {
		return 1
	}
	return 2
}

// formatUpdateError produces a user-friendly error message with actionable
// remediation guidance tailored to the specific error type.
func formatUpdateError(err error) string {
	var checksumErr *selfupdate.ChecksumError
	if errors.As(err, &checksumErr) {
		return fmt.Sprintf("checksum verification failed for %s\n\nExpected: %s\nGot:      %s\n\nThe download may be corrupted. Please try again.",
			checksumErr.Filename, checksumErr.Expected, checksumErr.Got)
	}

	if errors.Is(err, selfupdate.ErrManifestInvalid) {
		return fmt.Sprintf("%s\n\nCheck the manifest URL, or point at another one:\n  driving update --url https://example.com/dist/version.json", err.Error())
	}

	if errors.Is(err, os.ErrPermission) {
		return "insufficient permissions to replace the binary\n\nTry running with elevated privileges:\n  sudo driving update"
	}

	return fmt.Sprintf("%s\n\nCheck your network connection and try again.", err.Error())
}
