// SPDX-License-Identifier: MPL-2.0

// Package selfupdate implements self-upgrade functionality for the driving CLI.
// It fetches a published version.json manifest, detects how the binary was
// installed, verifies downloads against SHA256 checksums, and performs atomic
// binary replacement.
//
// The package is organized into four concerns:
//   - manifest.go: HTTP client for the version manifest and release downloads
//   - detect.go: Install method detection (Script, Homebrew, GoInstall, Unknown)
//   - checksum.go: SHA256 file verification
//   - selfupdate.go: Updater type that composes the above for end-to-end upgrade flow
package selfupdate
