// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// FormatError flattens CUE's error list into field-path prefixed lines.
//
// Error format: <field-path>: <message>
//
// Examples:
//   - [2].sources: conflicting values "x" and [...]
//   - [0].project_name: incomplete value string
//
// The document path itself is left to the caller; registry loading wraps the
// result in an error type that carries it.
func FormatError(err error) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return err
	}

	var lines []string
	for _, e := range cueErrors {
		pathStr := FormatFieldPath(errors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the field path inside the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}

		if pathStr != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", pathStr, msg))
		} else {
			lines = append(lines, msg)
		}
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s", lines[0])
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(lines, "\n  "))
}

// FormatFieldPath renders a CUE error path in JSON-path notation. CUE
// provides paths as flat string slices (e.g. ["2", "sources"]) where numeric
// elements are list indices; those become bracketed ("[2].sources").
func FormatFieldPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		if isAllDigits(part) {
			sb.WriteString("[")
			sb.WriteString(part)
			sb.WriteString("]")
			continue
		}
		if i > 0 {
			sb.WriteString(".")
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize verifies that data does not exceed the given maximum size.
func CheckFileSize(data []byte, maxSize int64) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("document size %d bytes exceeds maximum %d bytes", len(data), maxSize)
	}
	return nil
}
