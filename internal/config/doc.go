// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/hostprobe/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/hostprobe/config.cue on macOS,
// %APPDATA%\hostprobe\config.cue on Windows). It selects the transport used to reach the
// target machine, the extra directories searched for executables, the attribute file
// describing the target, and logging and UI preferences.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before being
// merged over the built-in defaults. Every key can also be overridden from the
// environment with the HOSTPROBE_ prefix, e.g. HOSTPROBE_SEARCH_CONCURRENCY=4.
package config
