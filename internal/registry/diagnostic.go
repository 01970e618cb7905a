// SPDX-License-Identifier: MPL-2.0

package registry

const (
	// SeverityWarning indicates a recoverable registry condition.
	SeverityWarning Severity = "warning"
)

type (
	// Severity is a diagnostic level.
	Severity string

	// Diagnostic is a structured, non-fatal finding produced while merging
	// or aggregating. Diagnostics are returned to callers instead of being
	// written to stderr so the CLI layer owns the rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity
		// Code is a machine-readable identifier (e.g. "framework_shadowed").
		Code string
		// Message is the human-readable description.
		Message string
		// Framework names the record the diagnostic is about (optional).
		Framework string
	}
)
