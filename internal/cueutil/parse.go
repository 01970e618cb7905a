// SPDX-License-Identifier: MPL-2.0

// Package cueutil wraps the shared CUE validation flow used for gitlist
// registry documents: compile an embedded schema, compile the user document
// (JSON is valid CUE), unify against a named definition, then validate and
// decode into a Go value.
package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseResult contains the result of a successful CUE parse.
type ParseResult[T any] struct {
	// Value is the decoded Go value.
	Value *T

	// Unified is the unified CUE value, available for callers that need to
	// inspect fields beyond what the decoded struct carries.
	Unified cue.Value
}

// ParseAndDecode runs the 3-step CUE flow:
//
//  1. Compile the embedded schema.
//  2. Compile the user document and unify it with the definition named by
//     schemaPath (e.g. "#Gitlist").
//  3. Validate and decode into T.
//
// Errors from the user document are flattened through FormatError so field
// paths render in list-index notation.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, options.maxFileSize); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	docValue := ctx.CompileBytes(data, cue.Filename(filename))
	if docValue.Err() != nil {
		return nil, FormatError(docValue.Err())
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(docValue)

	if options.concrete {
		if err := unified.Validate(cue.Concrete(true)); err != nil {
			return nil, FormatError(err)
		}
	} else {
		if err := unified.Validate(); err != nil {
			return nil, FormatError(err)
		}
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err)
	}

	return &ParseResult[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}

// ParseAndDecodeString is a convenience wrapper for schemas embedded as
// string constants.
func ParseAndDecodeString[T any](schema string, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	return ParseAndDecode[T]([]byte(schema), data, schemaPath, opts...)
}
