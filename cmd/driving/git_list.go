// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"driving-cli/internal/registry"
	"driving-cli/internal/workspace"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var gitListJSON bool

type (
	// frameworkView is one registry record with workspace-resolved sources,
	// as emitted by --json.
	frameworkView struct {
		Name        string   `json:"name"`
		ProjectName string   `json:"project_name"`
		URL         string   `json:"url"`
		Branch      string   `json:"branch,omitempty"`
		Module      string   `json:"module"`
		Sources     []string `json:"sources"`
		Extends     []string `json:"extends,omitempty"`
		Description string   `json:"description,omitempty"`
		Origin      string   `json:"origin"`
		IsLocal     bool     `json:"is_local"`
	}

	// gitListOutput is the --json document.
	gitListOutput struct {
		Frameworks  []frameworkView `json:"frameworks"`
		InstallPath string          `json:"install_path"`
		Mode        string          `json:"mode"`
	}
)

var gitListCmd = &cobra.Command{
	Use:   "git-list [framework]",
	Short: "List registered frameworks",
	Long: `List every framework in the merged gitlist registries, or show one
framework together with its resolved dependency closure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGitList,
}

func init() {
	rootCmd.AddCommand(gitListCmd)
	gitListCmd.Flags().BoolVar(&gitListJSON, "json", false, "emit machine-readable JSON")
}

func runGitList(cmd *cobra.Command, args []string) error {
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

	if gitListJSON {
		return printGitListJSON(cmd, ws, records)
	}
	printGitListTable(cmd, ws, records)
	return nil
}

func buildFrameworkViews(ws workspace.Context, records []registry.Framework) ([]frameworkView, []registry.Diagnostic) {
	views := make([]frameworkView, 0, len(records))
	var diags []registry.Diagnostic
	for _, rec := range records {
		set := registry.Aggregate(ws, []registry.Framework{rec})
		diags = append(diags, set.Diagnostics...)
		views = append(views, frameworkView{
			Name:        rec.Name,
			ProjectName: rec.ProjectName,
			URL:         rec.URL,
			Branch:      rec.Branch,
			Module:      rec.Module,
			Sources:     set.Sources,
			Extends:     rec.Extends,
			Description: rec.Description,
			Origin:      rec.Origin.String(),
			IsLocal:     rec.IsLocalProject(),
		})
	}
	return views, diags
}

func printGitListJSON(cmd *cobra.Command, ws workspace.Context, records []registry.Framework) error {
	views, diags := buildFrameworkViews(ws, records)
	warnDiagnostics(diags)

	out := gitListOutput{
		Frameworks:  views,
		InstallPath: ws.SubmodulesDir(),
		Mode:        string(ws.Mode),
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printGitListTable(cmd *cobra.Command, ws workspace.Context, records []registry.Framework) {
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("No frameworks registered."))
		return
	}

	t := table.New().
		Headers("NAME", "MODULE", "BRANCH", "ORIGIN", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})

	for _, rec := range records {
		branch := rec.Branch
		if rec.IsLocalProject() {
			branch = "-"
		}
		t.Row(rec.Name, rec.Module, branch, rec.Origin.String(), rec.Description)
	}

	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render(
		fmt.Sprintf("mode: %s  install path: %s", ws.Mode, ws.SubmodulesDir())))

	if verbose {
		for _, rec := range records {
			if len(rec.Extends) > 0 {
				fmt.Fprintln(os.Stderr, VerboseStyle.Render(
					fmt.Sprintf("%s extends %s", rec.Name, strings.Join(rec.Extends, ", "))))
			}
		}
	}
}
