// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize caps parsed documents at 5MB. Registry and settings
// documents are small; anything larger is malformed input.
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type (
	// parseOptions holds configuration for CUE parsing.
	parseOptions struct {
		maxFileSize int64
		concrete    bool
		filename    string
	}

	// Option configures parsing behavior.
	Option func(*parseOptions)
)

// defaultOptions returns the default parse options.
func defaultOptions() parseOptions {
	return parseOptions{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
		filename:    "",
	}
}

// WithMaxFileSize sets the maximum allowed document size.
// Default is DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(o *parseOptions) {
		o.maxFileSize = size
	}
}

// WithConcrete sets whether all values must be concrete after unification.
// Default is true.
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) {
		o.concrete = concrete
	}
}

// WithFilename sets the filename used in CUE error positions.
func WithFilename(name string) Option {
	return func(o *parseOptions) {
		o.filename = name
	}
}
