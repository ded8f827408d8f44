// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"
)

// newExitError produces a real *exec.ExitError with the given status by
// running TestHelperProcess.
func newExitError(ctx context.Context, t *testing.T, code int) error {
	t.Helper()
	//nolint:gosec // TestHelperProcess is a test-only pattern
	cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess", "--")
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", code)}
	err := cmd.Run()
	if err == nil {
		t.Fatalf("helper process exited 0, want %d", code)
	}
	return err
}

func TestIsTransientError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "wrapped deadline", err: fmt.Errorf("exec: %w", context.DeadlineExceeded), want: false},
		{name: "generic error", err: errors.New("no such container: web"), want: false},
		{name: "exit code 1", err: newExitError(t.Context(), t, 1), want: false},
		{name: "exit code 125", err: newExitError(t.Context(), t, 125), want: true},
		{name: "wrapped exit code 126", err: fmt.Errorf("exec: %w", newExitError(t.Context(), t, 126)), want: true},
		{name: "OCI exec failure", err: errors.New("OCI runtime exec failed: exec failed: unable to start container process"), want: true},
		{name: "daemon down", err: errors.New("Cannot connect to the Docker daemon at unix:///var/run/docker.sock"), want: true},
		{name: "podman race", err: errors.New("error reading /proc/sys/net/ipv4/ping_group_range"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsTransientError(tt.err); got != tt.want {
				t.Errorf("IsTransientError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsTransientResult(t *testing.T) {
	t.Parallel()

	if IsTransientResult(nil) {
		t.Error("IsTransientResult(nil) = true")
	}
	if IsTransientResult(&ExecResult{ExitCode: 1}) {
		t.Error("exit 1 is the command's own status, not transient")
	}
	if !IsTransientResult(&ExecResult{ExitCode: 126}) {
		t.Error("exit 126 should be transient")
	}
}
