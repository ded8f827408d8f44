// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hostprobe/hostprobe/pkg/types"
)

const (
	EngineTypePodman EngineType = "podman"
	EngineTypeDocker EngineType = "docker"
)

var (
	// ErrInvalidEngineType is the sentinel error wrapped by InvalidEngineTypeError.
	ErrInvalidEngineType = errors.New("invalid container engine type")

	// ErrInvalidContainerID is the sentinel error wrapped by InvalidContainerIDError.
	ErrInvalidContainerID = errors.New("invalid container ID")

	// ErrEngineNotAvailable is the sentinel error wrapped by EngineNotAvailableError.
	ErrEngineNotAvailable = errors.New("container engine not available")
)

type (
	// Engine runs commands inside running containers.
	Engine interface {
		// Name returns the engine name (docker or podman).
		Name() string
		// Available reports whether the engine binary is installed and responds.
		Available() bool
		// Version returns the engine version.
		Version(ctx context.Context) (string, error)
		// Exec runs command inside the container. A non-zero exit status of the
		// command is reported in ExecResult.ExitCode, not as an error.
		Exec(ctx context.Context, id ContainerID, command []string, opts ExecOptions) (*ExecResult, error)
		// Running reports whether the container exists and is running.
		Running(ctx context.Context, id ContainerID) (bool, error)
	}

	// EngineType identifies the container engine type.
	EngineType string

	// InvalidEngineTypeError is returned when an EngineType is not docker or podman.
	InvalidEngineTypeError struct {
		Value EngineType
	}

	// ContainerID is a container name or ID as accepted by the engine CLI.
	ContainerID string

	// InvalidContainerIDError is returned when a ContainerID is empty or contains whitespace.
	InvalidContainerIDError struct {
		Value ContainerID
	}

	// ExecOptions tunes a single Exec call.
	ExecOptions struct {
		// User runs the command as this user (--user).
		User string
		// WorkDir sets the working directory inside the container (--workdir).
		WorkDir string
		// Env adds environment variables (--env KEY=VALUE).
		Env map[string]string
	}

	// ExecResult is the outcome of a command run with Exec.
	ExecResult struct {
		ContainerID ContainerID
		ExitCode    types.ExitCode
		Stdout      []byte
		Stderr      []byte
	}

	// EngineNotAvailableError is returned when no usable engine binary is found.
	EngineNotAvailableError struct {
		Engine string
		Reason string
	}
)

// String returns the string representation of the EngineType.
func (t EngineType) String() string { return string(t) }

// Validate returns nil for docker or podman, or an *InvalidEngineTypeError.
func (t EngineType) Validate() error {
	switch t {
	case EngineTypeDocker, EngineTypePodman:
		return nil
	default:
		return &InvalidEngineTypeError{Value: t}
	}
}

// Error implements the error interface.
func (e *InvalidEngineTypeError) Error() string {
	return fmt.Sprintf("invalid container engine type %q (must be docker or podman)", e.Value)
}

// Unwrap returns ErrInvalidEngineType so callers can use errors.Is for programmatic detection.
func (e *InvalidEngineTypeError) Unwrap() error { return ErrInvalidEngineType }

// String returns the string representation of the ContainerID.
func (id ContainerID) String() string { return string(id) }

// Validate returns an error if the ContainerID is empty or contains whitespace.
func (id ContainerID) Validate() error {
	if id == "" || strings.ContainsAny(string(id), " \t\r\n") {
		return &InvalidContainerIDError{Value: id}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidContainerIDError) Error() string {
	return fmt.Sprintf("invalid container ID %q: must be a non-empty name or ID without whitespace", e.Value)
}

// Unwrap returns ErrInvalidContainerID so callers can use errors.Is for programmatic detection.
func (e *InvalidContainerIDError) Unwrap() error { return ErrInvalidContainerID }

// Error implements the error interface.
func (e *EngineNotAvailableError) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// Unwrap returns ErrEngineNotAvailable so callers can use errors.Is for programmatic detection.
func (e *EngineNotAvailableError) Unwrap() error { return ErrEngineNotAvailable }

// Success reports whether the command exited with status zero.
func (r *ExecResult) Success() bool { return r.ExitCode.IsSuccess() }

// NewEngine returns the preferred engine, falling back to the other one when
// the preferred binary is missing.
func NewEngine(preferred EngineType, opts ...BaseCLIEngineOption) (Engine, error) {
	if err := preferred.Validate(); err != nil {
		return nil, err
	}

	candidates := []Engine{NewDockerEngine(opts...), NewPodmanEngine(opts...)}
	if preferred == EngineTypePodman {
		candidates[0], candidates[1] = candidates[1], candidates[0]
	}

	for _, engine := range candidates {
		if engine.Available() {
			return engine, nil
		}
	}
	return nil, &EngineNotAvailableError{
		Engine: preferred.String(),
		Reason: fmt.Sprintf("%s is not installed or not accessible, and the fallback engine is also not available", preferred),
	}
}

// AutoDetectEngine returns the first available engine, trying Podman first.
func AutoDetectEngine(opts ...BaseCLIEngineOption) (Engine, error) {
	for _, engine := range []Engine{NewPodmanEngine(opts...), NewDockerEngine(opts...)} {
		if engine.Available() {
			return engine, nil
		}
	}
	return nil, &EngineNotAvailableError{
		Engine: "any",
		Reason: "no container engine (podman or docker) is available on this system",
	}
}
