// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/hostprobe/hostprobe/internal/config"
	"github.com/hostprobe/hostprobe/internal/container"
	"github.com/hostprobe/hostprobe/internal/issue"
	"github.com/hostprobe/hostprobe/internal/transport"
	"github.com/hostprobe/hostprobe/pkg/platform"
	"github.com/hostprobe/hostprobe/pkg/types"
)

// sshPasswordEnv holds the SSH password. It is never read from the config
// file.
const sshPasswordEnv = "HOSTPROBE_SSH_PASSWORD"

// connect is the production ConnectFunc.
func connect(ctx context.Context, cfg *config.Config, logger *log.Logger) (transport.Backend, error) {
	switch cfg.Transport.Kind {
	case config.TransportSSH:
		return connectSSH(ctx, cfg.Transport.SSH, logger)
	case config.TransportContainer:
		return connectContainer(ctx, cfg.Transport.Container, logger)
	case config.TransportRootFS:
		return openRootFS(cfg.Transport.RootFS, logger)
	default:
		return transport.NewLocal(transport.WithLogger(logger)), nil
	}
}

func connectSSH(ctx context.Context, c config.SSHConfig, logger *log.Logger) (transport.Backend, error) {
	sshCfg := transport.SSHConfig{
		Host:                  c.Host,
		Port:                  types.Port(c.Port),
		User:                  c.User,
		IdentityFile:          c.IdentityFile,
		Password:              os.Getenv(sshPasswordEnv),
		KnownHostsFile:        c.KnownHostsFile,
		InsecureIgnoreHostKey: c.InsecureIgnoreHostKey,
		Timeout:               c.Timeout,
	}
	backend, err := transport.DialSSH(ctx, sshCfg, transport.WithLogger(logger))
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("connect to SSH host").
			WithResource(sshCfg.Address()).
			WithIssue(issue.TransportConnectFailedId).
			WithSuggestion("Pass --identity <key> or set " + sshPasswordEnv).
			WithSuggestion("Check that the host is in your known_hosts file").
			Wrap(err).
			BuildError()
	}
	return backend, nil
}

func connectContainer(ctx context.Context, c config.ContainerConfig, logger *log.Logger) (transport.Backend, error) {
	engine, err := container.NewEngine(
		container.EngineType(c.Engine),
		container.WithSandbox(platform.DetectSandbox()),
	)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("find container engine").
			WithResource(c.Engine.String()).
			WithIssue(issue.ContainerEngineNotFoundId).
			Wrap(err).
			BuildError()
	}
	logger.Debug("using container engine", "engine", engine.Name())

	backend, err := transport.NewContainer(ctx, engine, container.ContainerID(c.ID), transport.WithLogger(logger))
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("attach to container").
			WithResource(c.ID).
			WithIssue(issue.ContainerNotRunningId).
			WithSuggestion(fmt.Sprintf("List running containers with '%s ps'", engine.Name())).
			Wrap(err).
			BuildError()
	}
	return backend, nil
}

func openRootFS(c config.RootFSConfig, logger *log.Logger) (transport.Backend, error) {
	var err error
	if c.Path == "" {
		err = errors.New("no root filesystem path configured")
	} else if info, statErr := os.Stat(c.Path); statErr != nil {
		err = statErr
	} else if !info.IsDir() {
		err = fmt.Errorf("%s is not a directory", c.Path)
	}
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("open root filesystem").
			WithResource(c.Path).
			WithIssue(issue.RootFSNotFoundId).
			WithSuggestion("Pass --root <dir>").
			Wrap(err).
			BuildError()
	}
	return transport.NewFS(os.DirFS(c.Path), "rootfs://"+c.Path, transport.WithLogger(logger)), nil
}
