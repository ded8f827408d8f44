// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hostprobe/hostprobe/internal/container"
	"github.com/hostprobe/hostprobe/internal/hostenv"
)

const (
	containerExecAttempts = 3
	containerExecBackoff  = 200 * time.Millisecond
)

// Container reads the filesystem of a running container through the engine CLI.
type Container struct {
	engine container.Engine
	id     container.ContainerID
	logger *log.Logger
}

// NewContainer creates a backend for the running container id. The container
// is checked to be running.
func NewContainer(ctx context.Context, engine container.Engine, id container.ContainerID, opts ...Option) (*Container, error) {
	o := applyOptions(opts)
	if err := id.Validate(); err != nil {
		return nil, err
	}
	running, err := engine.Running(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container %s: %w", id, err)
	}
	if !running {
		return nil, fmt.Errorf("container %s is not running", id)
	}
	return &Container{engine: engine, id: id, logger: o.logger}, nil
}

// Name implements Backend.
func (c *Container) Name() string {
	return c.engine.Name() + "://" + c.id.String()
}

// Stat implements Backend.
func (c *Container) Stat(ctx context.Context, path string) (FileInfo, error) {
	return remoteStat(ctx, c.Name(), c, path)
}

// ReadFile implements Backend.
func (c *Container) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return remoteReadFile(ctx, c.Name(), c, path)
}

// Environ implements EnvironmentProvider.
func (c *Container) Environ(ctx context.Context) (hostenv.Map, error) {
	return remoteEnviron(ctx, c.Name(), c)
}

// PathSeparator implements Backend. Only Linux containers are supported.
func (c *Container) PathSeparator() byte { return '/' }

// PathListSeparator implements Backend.
func (c *Container) PathListSeparator() byte { return ':' }

// run executes argv with Exec, retrying engine-level failures.
func (c *Container) run(ctx context.Context, argv []string) (stdout, stderr []byte, exitCode int, err error) {
	var result *container.ExecResult
	err = container.RetryWithBackoff(ctx, containerExecAttempts, containerExecBackoff, func(attempt int) (bool, error) {
		r, execErr := c.engine.Exec(ctx, c.id, argv, container.ExecOptions{})
		if execErr != nil {
			c.logger.Debug("container exec failed", "container", c.id, "command", argv, "attempt", attempt, "error", execErr)
			return container.IsTransientError(execErr), execErr
		}
		if container.IsTransientResult(r) {
			c.logger.Debug("container engine error", "container", c.id, "command", argv, "attempt", attempt, "exit_code", r.ExitCode)
			return true, fmt.Errorf("%s exec exited with %s: %s", c.engine.Name(), r.ExitCode, r.Stderr)
		}
		result = r
		return false, nil
	})
	if err != nil {
		return nil, nil, 0, err
	}
	if result == nil {
		return nil, nil, 0, errors.New("container exec returned no result")
	}
	return result.Stdout, result.Stderr, int(result.ExitCode), nil
}

var _ interface {
	Backend
	EnvironmentProvider
} = (*Container)(nil)
