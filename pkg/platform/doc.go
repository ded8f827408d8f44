// SPDX-License-Identifier: MPL-2.0

// Package platform classifies a machine into platform families from its
// reported attributes.
//
// Base predicates (IsDebian, IsRHEL, IsFreeBSD, ...) compare the
// platform_family attribute against a single value. Composite predicates build
// on them: IsRedhatBased implies IsFedoraDerived, which implies IsRPMBased.
// IsSolarisBased and IsBSDBased look at the concrete platform attribute instead.
//
// Every predicate takes an attrs.Source and returns false when the source is nil
// or the attribute is missing. IsWindows is the one exception: with a nil source
// it falls back to the platform string of the running process.
package platform
