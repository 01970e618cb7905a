// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"

	"driving-cli/internal/registry"

	"github.com/spf13/cobra"
)

// sourcesOutput is the root framework projected with its closure's merged
// source paths.
type sourcesOutput struct {
	Name        string   `json:"name"`
	ProjectName string   `json:"project_name"`
	URL         string   `json:"url"`
	Branch      string   `json:"branch,omitempty"`
	Module      string   `json:"module"`
	Sources     []string `json:"sources"`
	IsLocal     bool     `json:"is_local"`
}

var gitSourcesCmd = &cobra.Command{
	Use:   "git-sources <framework>",
	Short: "Print a framework's merged source paths",
	Long: `Resolve the framework's dependency closure and print the framework
record with every source path of the closure merged in, deduplicated in
first-seen order and resolved against the workspace layout.`,
	Args: cobra.ExactArgs(1),
	RunE: runGitSources,
}

func init() {
	rootCmd.AddCommand(gitSourcesCmd)
}

func runGitSources(cmd *cobra.Command, args []string) error {
	ws, err := requireWorkspace()
	if err != nil {
		return err
	}
	reg, err := openRegistry(ws)
	if err != nil {
		return err
	}

	closure, err := resolveClosure(reg, args[0])
	if err != nil {
		return err
	}

	set := registry.Aggregate(ws, closure)
	warnDiagnostics(set.Diagnostics)

	root := closure[0]
	out := sourcesOutput{
		Name:        root.Name,
		ProjectName: root.ProjectName,
		URL:         root.URL,
		Branch:      root.Branch,
		Module:      root.Module,
		Sources:     set.Sources,
		IsLocal:     set.IsLocal,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
