// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os/exec"
	"slices"
	"strings"

	"github.com/hostprobe/hostprobe/pkg/platform"
	"github.com/hostprobe/hostprobe/pkg/types"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine implements the parts of Engine shared by CLI-driven engines.
	// Concrete engines add Name, Available and Version.
	BaseCLIEngine struct {
		name        string
		binaryPath  string
		execCommand ExecCommandFunc
		sandbox     platform.SandboxType
		cmdEnv      map[string]string
	}
)

// WithName overrides the engine name used in error messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.name = name
	}
}

// WithExecCommand replaces exec.CommandContext, typically with a test double.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		if fn != nil {
			e.execCommand = fn
		}
	}
}

// WithBinaryPath overrides the engine binary found on PATH.
func WithBinaryPath(path string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.binaryPath = path
	}
}

// WithSandbox routes every engine invocation through the host spawn helper of
// the given sandbox. The engine daemon lives on the host, so from inside a
// Flatpak or Snap the CLI has to be started there too.
func WithSandbox(st platform.SandboxType) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.sandbox = st
	}
}

// WithCmdEnv sets an environment variable on every engine invocation, on top of
// the inherited environment (e.g. DOCKER_HOST, CONTAINER_HOST).
func WithCmdEnv(key, value string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		if e.cmdEnv == nil {
			e.cmdEnv = make(map[string]string)
		}
		e.cmdEnv[key] = value
	}
}

// NewBaseCLIEngine creates a BaseCLIEngine for the binary at binaryPath.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:  binaryPath,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BinaryPath returns the engine binary, empty when it is not installed.
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// ExecArgs builds the argument list for running command in a container.
func (e *BaseCLIEngine) ExecArgs(id ContainerID, command []string, opts ExecOptions) []string {
	args := []string{"exec"}
	if opts.User != "" {
		args = append(args, "--user", opts.User)
	}
	if opts.WorkDir != "" {
		args = append(args, "--workdir", opts.WorkDir)
	}
	for _, k := range slices.Sorted(maps.Keys(opts.Env)) {
		args = append(args, "--env", k+"="+opts.Env[k])
	}
	args = append(args, string(id))
	return append(args, command...)
}

// RunningArgs builds the argument list for querying a container's state.
func (e *BaseCLIEngine) RunningArgs(id ContainerID) []string {
	return []string{"container", "inspect", "--format", "{{.State.Running}}", string(id)}
}

// CreateCommand builds the exec.Cmd for an engine invocation, wrapping it in
// the sandbox spawn helper when needed.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	name := e.binaryPath
	if spawn := platform.SpawnCommandFor(e.sandbox); spawn != "" {
		args = slices.Concat(platform.SpawnArgsFor(e.sandbox), []string{e.binaryPath}, args)
		name = spawn
	}

	cmd := e.execCommand(ctx, name, args...)
	if len(e.cmdEnv) > 0 {
		if cmd.Env == nil {
			cmd.Env = cmd.Environ()
		}
		for _, k := range slices.Sorted(maps.Keys(e.cmdEnv)) {
			cmd.Env = append(cmd.Env, k+"="+e.cmdEnv[k])
		}
	}
	return cmd
}

// RunCommandWithOutput executes an engine command and returns its stdout.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", e.commandError(args, stderr.String(), err)
	}
	return stdout.String(), nil
}

// Exec runs a command in a running container.
func (e *BaseCLIEngine) Exec(ctx context.Context, id ContainerID, command []string, opts ExecOptions) (*ExecResult, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if len(command) == 0 {
		return nil, errors.New("exec requires a command")
	}

	args := e.ExecArgs(id, command, opts)
	cmd := e.CreateCommand(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := &ExecResult{ContainerID: id}
	err := cmd.Run()
	result.Stdout = stdout.Bytes()
	result.Stderr = stderr.Bytes()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, e.commandError(args, stderr.String(), err)
		}
		result.ExitCode = types.ExitCode(exitErr.ExitCode())
	}
	return result, nil
}

// Running reports whether the container exists and is running. A container
// that does not exist is reported as not running without an error.
func (e *BaseCLIEngine) Running(ctx context.Context, id ContainerID) (bool, error) {
	if err := id.Validate(); err != nil {
		return false, err
	}
	out, err := e.RunCommandWithOutput(ctx, e.RunningArgs(id)...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(out) == "true", nil
}

func (e *BaseCLIEngine) commandError(args []string, stderr string, err error) error {
	name := e.name
	if name == "" {
		name = e.binaryPath
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		return fmt.Errorf("%s %s failed: %s: %w", name, strings.Join(args, " "), msg, err)
	}
	return fmt.Errorf("%s %s failed: %w", name, strings.Join(args, " "), err)
}
