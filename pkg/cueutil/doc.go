// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user-supplied CUE documents against an embedded
// schema definition and decodes them into Go values.
//
// Both the configuration file and .cue attribute files go through the same
// three steps: compile the schema, unify the user document with one of its
// definitions, then validate and decode.
//
//	//go:embed config_schema.cue
//	var configSchema []byte
//
//	result, err := cueutil.ParseAndDecode[map[string]any](
//	    configSchema,
//	    data,
//	    "#Config",
//	    cueutil.WithFilename(path),
//	    cueutil.WithConcrete(false),
//	)
package cueutil
