// SPDX-License-Identifier: MPL-2.0

// Package which locates executables on a target machine by walking its search
// path, in the manner of which(1) and where.exe.
//
// A Resolver reads the PATH of the target through a hostenv.Environment and
// tests candidate files through a transport.Backend, so the same lookup works
// against the local machine, an SSH host, a running container or an unpacked
// root filesystem. A candidate matches when it exists, is not a directory,
// has the owner-execute bit set and passes the optional filter.
//
// Not finding a command is a normal outcome: Where returns an empty slice and
// Which returns false. Backend failures for individual candidates are logged
// at debug level and treated as "no match".
package which
