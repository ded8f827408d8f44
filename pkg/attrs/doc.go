// SPDX-License-Identifier: MPL-2.0

// Package attrs provides read-only access to the attributes reported for a
// managed machine (platform, platform_family, virtualization, ...).
//
// A Source is a key-path accessor. Map is the in-memory implementation and can
// be decoded from JSON, YAML, TOML or CUE documents with Load and Parse, which
// makes it usable with ohai dumps and hand-written fixtures alike. Descriptor is
// the two-field view of a Source that the platform taxonomy needs.
package attrs
