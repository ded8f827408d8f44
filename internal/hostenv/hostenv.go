// SPDX-License-Identifier: MPL-2.0

package hostenv

import (
	"os"
	"slices"
	"strings"
)

// PathKey is the environment variable holding the executable search path.
const PathKey = "PATH"

type (
	// Environment reads environment variables.
	Environment interface {
		LookupEnv(key string) (string, bool)
	}

	// Process reads the environment of the running process.
	Process struct{}

	// Map is an in-memory Environment, e.g. a snapshot of a remote host.
	Map map[string]string
)

// LookupEnv implements Environment.
func (Process) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// LookupEnv implements Environment.
func (m Map) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Keys returns the variable names in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// HasKey reports whether key is set in env, even to an empty value.
// A nil env has no keys.
func HasKey(env Environment, key string) bool {
	if env == nil {
		return false
	}
	_, ok := env.LookupEnv(key)
	return ok
}

// Get returns the value of key, or "" when env is nil or the key is unset.
func Get(env Environment, key string) string {
	if env == nil {
		return ""
	}
	v, _ := env.LookupEnv(key)
	return v
}

// SearchPath splits the PATH variable of env on sep. Empty entries are dropped.
func SearchPath(env Environment, sep byte) []string {
	return SplitList(Get(env, PathKey), sep)
}

// SplitList splits a path list on sep, dropping empty entries.
func SplitList(list string, sep byte) []string {
	if list == "" {
		return nil
	}
	parts := strings.Split(list, string(sep))
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseEnviron builds a Map from "KEY=value" lines as printed by env(1).
// Lines without '=' are treated as continuations of the previous value, since
// values may contain newlines.
func ParseEnviron(output string) Map {
	m := Map{}
	last := ""
	for line := range strings.Lines(output) {
		line = strings.TrimSuffix(line, "\n")
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			if last != "" {
				m[last] += "\n" + line
			}
			continue
		}
		m[key] = value
		last = key
	}
	return m
}

// FromEnviron builds a Map from os.Environ-style "KEY=value" entries.
func FromEnviron(entries []string) Map {
	m := make(Map, len(entries))
	for _, e := range entries {
		if key, value, ok := strings.Cut(e, "="); ok && key != "" {
			m[key] = value
		}
	}
	return m
}
