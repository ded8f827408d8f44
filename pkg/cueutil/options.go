// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize caps the size of a CUE document accepted by ParseAndDecode (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type (
	// Option configures ParseAndDecode.
	Option func(*parseOptions)

	parseOptions struct {
		filename    string
		maxFileSize int64
		concrete    bool
	}
)

func defaultOptions() parseOptions {
	return parseOptions{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
}

// WithFilename sets the name reported in error messages.
func WithFilename(name string) Option {
	return func(o *parseOptions) {
		o.filename = name
	}
}

// WithMaxFileSize overrides DefaultMaxFileSize. Non-positive values are ignored.
func WithMaxFileSize(size int64) Option {
	return func(o *parseOptions) {
		if size > 0 {
			o.maxFileSize = size
		}
	}
}

// WithConcrete controls whether every value must be concrete after unification.
// Config files pass false so that optional fields may stay unset.
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) {
		o.concrete = concrete
	}
}
