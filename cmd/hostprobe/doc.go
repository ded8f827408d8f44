// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for hostprobe.
//
// Every command resolves one target machine from the configuration and the
// global flags (local host, SSH host, running container or unpacked root
// filesystem) and runs the resolver or the introspection checks against it.
package cmd
