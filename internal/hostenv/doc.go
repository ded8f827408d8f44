// SPDX-License-Identifier: MPL-2.0

// Package hostenv abstracts read access to environment variables so that the
// executable resolver and introspection checks can run against the local
// process or against the environment captured from a remote host.
package hostenv
