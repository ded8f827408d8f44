// SPDX-License-Identifier: MPL-2.0

package attrs

import "strings"

const (
	// KeyPlatform is the attribute holding the concrete platform name (e.g. "ubuntu").
	KeyPlatform = "platform"
	// KeyPlatformFamily is the attribute holding the platform family (e.g. "debian").
	KeyPlatformFamily = "platform_family"
	// KeyVirtualization is the root of the virtualization attribute tree.
	KeyVirtualization = "virtualization"
)

type (
	// Source looks up attribute values by key path. Each path element may itself
	// contain dots, so Lookup("virtualization.systems", "docker") and
	// Lookup("virtualization", "systems", "docker") are equivalent.
	// The boolean result reports whether the path resolved to a value.
	Source interface {
		Lookup(path ...string) (any, bool)
	}

	// Map is a Source backed by nested string-keyed maps.
	Map map[string]any
)

// Lookup implements Source.
func (m Map) Lookup(path ...string) (any, bool) {
	keys := splitPath(path)
	if len(keys) == 0 || m == nil {
		return nil, false
	}

	var cur any = map[string]any(m)
	for _, key := range keys {
		node, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the string stored at path, or "" when src is nil, the path is
// absent, or the value is not a string.
func String(src Source, path ...string) string {
	if src == nil {
		return ""
	}
	v, ok := src.Lookup(path...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func asMap(v any) (map[string]any, bool) {
	switch n := v.(type) {
	case map[string]any:
		return n, true
	case Map:
		return map[string]any(n), true
	default:
		return nil, false
	}
}

func splitPath(path []string) []string {
	keys := make([]string, 0, len(path))
	for _, p := range path {
		for part := range strings.SplitSeq(p, ".") {
			if part != "" {
				keys = append(keys, part)
			}
		}
	}
	return keys
}
