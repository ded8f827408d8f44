// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// versionFormats holds the `version --format` template of each engine. Docker
// reports the daemon version, Podman its own.
var versionFormats = map[EngineType]string{
	EngineTypeDocker: "{{.Server.Version}}",
	EngineTypePodman: "{{.Version}}",
}

// CLIEngine implements Engine on top of a Docker-compatible CLI.
type CLIEngine struct {
	*BaseCLIEngine
	kind EngineType
}

// NewCLIEngine creates an engine of the given kind using the binary of the
// same name found on PATH. WithBinaryPath overrides the lookup.
func NewCLIEngine(kind EngineType, opts ...BaseCLIEngineOption) *CLIEngine {
	path, _ := exec.LookPath(kind.String())
	all := append([]BaseCLIEngineOption{WithName(kind.String())}, opts...)
	return &CLIEngine{BaseCLIEngine: NewBaseCLIEngine(path, all...), kind: kind}
}

// NewDockerEngine creates a Docker engine.
func NewDockerEngine(opts ...BaseCLIEngineOption) *CLIEngine {
	return NewCLIEngine(EngineTypeDocker, opts...)
}

// NewPodmanEngine creates a Podman engine.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *CLIEngine {
	return NewCLIEngine(EngineTypePodman, opts...)
}

// Name returns the engine name.
func (e *CLIEngine) Name() string { return e.kind.String() }

// Available reports whether the binary is installed and the engine answers.
func (e *CLIEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	_, err := e.Version(context.Background())
	return err == nil
}

// Version returns the engine version.
func (e *CLIEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", versionFormats[e.kind])
	if err != nil {
		return "", fmt.Errorf("failed to get %s version: %w", e.kind, err)
	}
	return strings.TrimSpace(out), nil
}
