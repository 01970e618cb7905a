// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"
	"path/filepath"

	"driving-cli/internal/workspace"

	"github.com/bmatcuk/doublestar/v4"
)

type (
	// SourceSet is the aggregated view over a resolved framework closure:
	// every source path, rooted per record, deduplicated in first-seen
	// order, plus the remote repositories that need installing.
	SourceSet struct {
		// Sources are the resolved source paths in first-seen order.
		Sources []string
		// IsLocal reports whether the root framework itself is a local
		// project. Dependencies never influence it.
		IsLocal bool
		// InstallTargets lists the remote frameworks of the closure and
		// the checkout directory each one maps to.
		InstallTargets []InstallTarget
		// Diagnostics carries non-fatal findings from aggregation.
		Diagnostics []Diagnostic
	}

	// InstallTarget pairs a remote framework with its checkout directory
	// under the submodules tree.
	InstallTarget struct {
		Framework Framework
		Dir       string
	}
)

// Aggregate resolves the source paths of a closure against the workspace
// layout. Local-project records root their sources at the workspace root;
// remote records root theirs at the framework's submodule checkout. The
// closure order is preserved and the first occurrence of a path wins.
func Aggregate(ws workspace.Context, closure []Framework) SourceSet {
	set := SourceSet{}
	if len(closure) == 0 {
		return set
	}
	set.IsLocal = closure[0].IsLocalProject()

	seen := make(map[string]bool)
	for _, rec := range closure {
		var root string
		if rec.IsLocalProject() {
			root = ws.Root
		} else {
			root = filepath.Join(ws.SubmodulesDir(), rec.ProjectName)
			set.InstallTargets = append(set.InstallTargets, InstallTarget{Framework: rec, Dir: root})
		}

		if rec.HasPartialLocalSentinel() {
			set.Diagnostics = append(set.Diagnostics, Diagnostic{
				Severity:  SeverityWarning,
				Code:      "partial_local_sentinel",
				Message:   fmt.Sprintf("framework %q marks only some of project_name/url/branch as %s; treating it as remote", rec.Name, LocalSentinel),
				Framework: rec.Name,
			})
		}

		for _, src := range rec.Sources {
			// Malformed globs are warned about but still joined; every
			// declared source appears in the output.
			if !doublestar.ValidatePattern(src) {
				set.Diagnostics = append(set.Diagnostics, Diagnostic{
					Severity:  SeverityWarning,
					Code:      "invalid_source_pattern",
					Message:   fmt.Sprintf("framework %q declares malformed source pattern %q", rec.Name, src),
					Framework: rec.Name,
				})
			}
			resolved := filepath.Join(root, filepath.FromSlash(src))
			if seen[resolved] {
				continue
			}
			seen[resolved] = true
			set.Sources = append(set.Sources, resolved)
		}
	}
	return set
}
