// SPDX-License-Identifier: MPL-2.0

package registry

import "fmt"

// DanglingExtendsError reports an extends reference to a framework no
// document defines. Resolution fails hard on a dangling reference instead of
// silently producing a partial closure.
type DanglingExtendsError struct {
	// Parent is the framework whose extends list names the missing entry.
	Parent string
	// Missing is the referenced framework name.
	Missing string

	cause *NotFoundError
}

// Error implements the error interface.
func (e *DanglingExtendsError) Error() string {
	return fmt.Sprintf("framework %q extends %q which is not defined in any registry", e.Parent, e.Missing)
}

// Unwrap exposes the underlying lookup failure.
func (e *DanglingExtendsError) Unwrap() error {
	return e.cause
}

// Resolve returns the dependency closure of name: the framework itself
// followed by every framework reachable through extends chains, breadth
// first, each at its first visit. Cycles terminate naturally through the
// visited set, so mutually extending frameworks resolve without error.
func (r *Registry) Resolve(name string) ([]Framework, error) {
	root, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	closure := []Framework{root}
	visited := map[string]bool{root.Name: true}

	for i := 0; i < len(closure); i++ {
		parent := closure[i]
		for _, dep := range parent.Extends {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			rec, err := r.Get(dep)
			if err != nil {
				nf, _ := err.(*NotFoundError)
				return nil, &DanglingExtendsError{Parent: parent.Name, Missing: dep, cause: nf}
			}
			closure = append(closure, rec)
		}
	}
	return closure, nil
}
