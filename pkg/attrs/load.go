// SPDX-License-Identifier: MPL-2.0

package attrs

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hostprobe/hostprobe/pkg/cueutil"
)

// Attribute document formats, named after their file extensions.
const (
	// FormatJSON is a JSON object (.json).
	FormatJSON Format = "json"
	// FormatYAML is a YAML mapping (.yaml, .yml).
	FormatYAML Format = "yaml"
	// FormatTOML is a TOML document (.toml).
	FormatTOML Format = "toml"
	// FormatCUE is a CUE struct checked against the attributes schema (.cue).
	FormatCUE Format = "cue"
)

var (
	//go:embed attributes_schema.cue
	attributesSchema []byte

	// ErrUnsupportedFormat is returned when an attribute document format is not recognized.
	ErrUnsupportedFormat = errors.New("unsupported attribute format")
)

type (
	// Format identifies the encoding of an attribute document.
	Format string

	// UnsupportedFormatError reports an unknown format or file extension.
	UnsupportedFormatError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported attribute format %q (supported: json, yaml, toml, cue)", e.Value)
}

// Unwrap returns ErrUnsupportedFormat so callers can use errors.Is.
func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// String returns the string representation of the Format.
func (f Format) String() string { return string(f) }

// Validate returns nil for a known format, or an *UnsupportedFormatError.
func (f Format) Validate() error {
	switch f {
	case FormatJSON, FormatYAML, FormatTOML, FormatCUE:
		return nil
	default:
		return &UnsupportedFormatError{Value: string(f)}
	}
}

// FormatFromPath infers the document format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "cue":
		return FormatCUE, nil
	default:
		return "", &UnsupportedFormatError{Value: filepath.Ext(path)}
	}
}

// Load reads an attribute document from disk, choosing the decoder by extension.
func Load(path string) (Map, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes file: %w", err)
	}

	return Parse(data, format, path)
}

// Parse decodes an attribute document. filename is only used in error messages.
// The document root must be a mapping; an empty document yields an empty Map.
func Parse(data []byte, format Format, filename string) (Map, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if filename == "" {
		filename = "<attributes>"
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Map{}, nil
	}

	var (
		out map[string]any
		err error
	)
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &out)
	case FormatYAML:
		err = yaml.Unmarshal(data, &out)
	case FormatTOML:
		err = toml.Unmarshal(data, &out)
	case FormatCUE:
		var result *cueutil.ParseResult[map[string]any]
		result, err = cueutil.ParseAndDecode[map[string]any](
			attributesSchema,
			data,
			"#Attributes",
			cueutil.WithFilename(filename),
		)
		if err == nil {
			out = *result.Value
		}
	}
	if err != nil {
		if format == FormatCUE {
			return nil, err
		}
		return nil, fmt.Errorf("%s: failed to decode %s attributes: %w", filename, format, err)
	}

	if out == nil {
		return Map{}, nil
	}
	return Map(out), nil
}
