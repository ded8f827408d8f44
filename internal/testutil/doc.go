// SPDX-License-Identifier: MPL-2.0

// Package testutil holds helpers shared by hostprobe tests: environment
// variable management (MustSetenv, MustUnsetenv, SetHomeDir), fixture trees
// (MustMkdirAll, MustWriteFile, MustWriteExecutable), a semaphore for
// container-backed tests, and an in-process SSH server that runs commands
// with /bin/sh.
package testutil
