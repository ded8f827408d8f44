// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared across hostprobe packages:
// process exit codes and network ports. Each carries its own
// validation and a typed error wrapping a sentinel.
//
// This package is a leaf dependency and imports only the standard library.
package types
