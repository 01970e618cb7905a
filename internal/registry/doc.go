// SPDX-License-Identifier: MPL-2.0

// Package registry loads the layered gitlist.json documents of a workspace,
// merges them into one logical framework registry, resolves a framework's
// transitive extends closure, and aggregates the closure's source paths for
// install decisions.
//
// All operations are pure functions of a workspace.Context plus the
// filesystem snapshot; nothing is cached between command invocations.
package registry
