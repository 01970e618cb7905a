// SPDX-License-Identifier: MPL-2.0

package registry

// LocalSentinel marks a framework record as a local project when present in
// project_name, url, and branch simultaneously. Local projects describe the
// current repository itself and are never fetched.
const LocalSentinel = "__local__"

const (
	// OriginLocalProject is the highest-priority source (ai-docs-local/gitlist.json).
	OriginLocalProject Origin = iota
	// OriginRemote is the second-priority source (ai-docs/gitlist.json).
	OriginRemote
	// OriginLegacyRoot is the lowest-priority source (gitlist.json at the
	// driving root, kept for backward compatibility).
	OriginLegacyRoot
)

type (
	// Origin identifies which gitlist document contributed a record.
	Origin int

	// Framework is one entry of a gitlist document. The JSON field set is
	// exactly the document schema; Origin and DocPath are derived during
	// loading and never serialized.
	Framework struct {
		// Name is the unique lookup key within the merged registry.
		Name string `json:"name"`
		// ProjectName is the checkout directory name under submodules/.
		ProjectName string `json:"project_name"`
		// URL is the repository address to fetch from.
		URL string `json:"url"`
		// Branch optionally pins the branch to check out.
		Branch string `json:"branch,omitempty"`
		// Module is opaque pass-through metadata.
		Module string `json:"module"`
		// Sources are path globs relative to the record's own root.
		Sources []string `json:"sources"`
		// Extends names frameworks whose sources this one builds on.
		Extends []string `json:"extends,omitempty"`

		Description string `json:"description"`
		Creator     string `json:"creator"`
		Date        string `json:"date"`

		// Origin is the document the record came from.
		Origin Origin `json:"-"`
		// DocPath is the directory holding this framework's documentation.
		DocPath string `json:"-"`
	}
)

// String returns the origin tag used in diagnostics and listings.
func (o Origin) String() string {
	switch o {
	case OriginLocalProject:
		return "local-project"
	case OriginRemote:
		return "remote"
	case OriginLegacyRoot:
		return "legacy-root"
	default:
		return "unknown"
	}
}

// IsLocalProject reports whether the record represents the current
// repository rather than a fetchable dependency. The predicate requires all
// three sentinel fields; partial matches classify as remote (see
// HasPartialLocalSentinel).
func (f *Framework) IsLocalProject() bool {
	return f.ProjectName == LocalSentinel && f.URL == LocalSentinel && f.Branch == LocalSentinel
}

// HasPartialLocalSentinel reports whether some but not all of the sentinel
// fields carry the local marker. Such records are invalid configuration:
// they stay classified as remote and a diagnostic is recorded during
// aggregation.
func (f *Framework) HasPartialLocalSentinel() bool {
	if f.IsLocalProject() {
		return false
	}
	return f.ProjectName == LocalSentinel || f.URL == LocalSentinel || f.Branch == LocalSentinel
}
