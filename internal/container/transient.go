// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/hostprobe/hostprobe/pkg/types"
)

// transientMarkers are engine error messages that usually clear up on retry.
var transientMarkers = []string{
	"OCI runtime exec failed",
	"OCI runtime error",
	"ping_group_range",
	"Cannot connect to the Docker daemon",
	"connection refused",
	"connection timed out",
	"i/o timeout",
	"EOF",
}

// IsTransientError reports whether an engine invocation failed in a way that
// may succeed on retry: the engine's own failure exit codes or a known
// transient daemon message. Context cancellation is never transient.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && types.ExitCode(exitErr.ExitCode()).IsTransient() {
		return true
	}

	msg := err.Error()
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsTransientResult reports whether an Exec result carries an engine failure
// exit code rather than the command's own status.
func IsTransientResult(r *ExecResult) bool {
	return r != nil && r.ExitCode.IsTransient()
}
