// SPDX-License-Identifier: MPL-2.0

// Package transport gives the executable resolver and the introspection
// helpers uniform read access to the filesystem of the machine being probed.
//
// A Backend answers stat and read requests. Local uses the filesystem of the
// running process, FS wraps any io/fs.FS (an unpacked image root, a test
// fixture), SSH runs stat and cat over an SSH connection, and Container runs
// them inside a running Docker or Podman container. Remote backends also
// implement EnvironmentProvider so that the remote PATH can be searched.
package transport
