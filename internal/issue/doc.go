// SPDX-License-Identifier: MPL-2.0

// Package issue holds the user-facing error layer of hostprobe.
//
// ActionableError pairs a failed operation with the resource it touched and
// suggestions for the user. An error can link to an entry of the issue
// catalog, a longer markdown guide that the CLI renders with glamour.
package issue
