// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hostprobe/hostprobe/pkg/types"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// ErrInvalidOutputFormat is returned for --format values other than text, json or yaml.
var ErrInvalidOutputFormat = errors.New("invalid output format")

// writeStructured encodes v as JSON or YAML. Text output is rendered by the
// caller, so formatText is rejected here.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return &ExitError{Code: types.ExitUsage, Err: fmt.Errorf("%w %q (use text, json or yaml)", ErrInvalidOutputFormat, format)}
	}
}
