// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

const anonymousInput = "<input>"

// ParseResult holds a decoded document together with the unified CUE value it
// was decoded from.
type ParseResult[T any] struct {
	Value   *T
	Unified cue.Value
}

// ParseAndDecode validates data against the definition at schemaPath inside
// schema (e.g. "#Config") and decodes the unified value into T.
// Errors carry the filename and the offending field path.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	filename := options.filename
	if filename == "" {
		filename = anonymousInput
	}

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return nil, err
	}

	cctx := cuecontext.New()

	root, err := compileSchema(cctx, schema, schemaPath)
	if err != nil {
		return nil, err
	}

	user := cctx.CompileBytes(data, cue.Filename(filename))
	if user.Err() != nil {
		return nil, FormatError(user.Err(), filename)
	}

	unified, err := unifyAndValidate(root, user, options.concrete)
	if err != nil {
		return nil, FormatError(err, filename)
	}

	var out T
	if err := unified.Decode(&out); err != nil {
		return nil, FormatError(err, filename)
	}

	return &ParseResult[T]{Value: &out, Unified: unified}, nil
}

func compileSchema(cctx *cue.Context, schema []byte, schemaPath string) (cue.Value, error) {
	compiled := cctx.CompileBytes(schema)
	if compiled.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", compiled.Err())
	}

	root := compiled.LookupPath(cue.ParsePath(schemaPath))
	if root.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, root.Err())
	}
	return root, nil
}

func unifyAndValidate(schema, user cue.Value, concrete bool) (cue.Value, error) {
	unified := schema.Unify(user)
	if err := unified.Validate(cue.Concrete(concrete)); err != nil {
		return cue.Value{}, err
	}
	return unified, nil
}
