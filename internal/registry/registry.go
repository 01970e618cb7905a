// SPDX-License-Identifier: MPL-2.0

// Package registry loads, merges and resolves the layered framework
// registry of a driving workspace. Three gitlist documents may contribute
// records (project-local overrides, the shared remote registry, and the
// legacy root document); earlier documents shadow later ones whole-record.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"driving-cli/internal/workspace"
)

type (
	// Registry is the merged view over all gitlist documents of a
	// workspace. Record order is deterministic: first occurrence of each
	// name, in document priority order then document order.
	Registry struct {
		records []Framework
		// byName indexes into records; appends may reallocate the backing
		// array, so pointers must not be held across Merge.
		byName      map[string]int
		diagnostics []Diagnostic
	}

	// NotFoundError reports a lookup for a framework name no document
	// defines. Known carries the sorted names present in the registry so
	// callers can show what was available.
	NotFoundError struct {
		Name  string
		Known []string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("framework %q not found (registry is empty)", e.Name)
	}
	return fmt.Sprintf("framework %q not found (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

// Open loads every gitlist document of the workspace and merges them.
func Open(ws workspace.Context) (*Registry, error) {
	records, err := Load(ws)
	if err != nil {
		return nil, err
	}
	return Merge(records), nil
}

// Merge folds raw records into a registry. The first record seen for a name
// wins in full; a later record with the same name is dropped whole, never
// field-merged, and noted as a shadowing diagnostic.
func Merge(records []Framework) *Registry {
	reg := &Registry{
		byName: make(map[string]int, len(records)),
	}
	for _, rec := range records {
		if i, ok := reg.byName[rec.Name]; ok {
			reg.diagnostics = append(reg.diagnostics, Diagnostic{
				Severity:  SeverityWarning,
				Code:      "framework_shadowed",
				Message:   fmt.Sprintf("framework %q from %s registry is shadowed by %s registry", rec.Name, rec.Origin, reg.records[i].Origin),
				Framework: rec.Name,
			})
			continue
		}
		reg.byName[rec.Name] = len(reg.records)
		reg.records = append(reg.records, rec)
	}
	return reg
}

// Get returns the winning record for name.
func (r *Registry) Get(name string) (Framework, error) {
	i, ok := r.byName[name]
	if !ok {
		return Framework{}, &NotFoundError{Name: name, Known: r.Names()}
	}
	return r.records[i], nil
}

// Has reports whether any document defines name.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// All returns the merged records in deterministic precedence order.
func (r *Registry) All() []Framework {
	out := make([]Framework, len(r.records))
	copy(out, r.records)
	return out
}

// Names returns the sorted framework names present in the registry.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of merged records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Diagnostics returns the non-fatal findings collected while merging.
func (r *Registry) Diagnostics() []Diagnostic {
	return r.diagnostics
}
