// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/hostprobe/hostprobe/internal/config"
	"github.com/hostprobe/hostprobe/internal/hostenv"
	"github.com/hostprobe/hostprobe/internal/introspect"
	"github.com/hostprobe/hostprobe/internal/issue"
	"github.com/hostprobe/hostprobe/internal/transport"
	"github.com/hostprobe/hostprobe/internal/which"
	"github.com/hostprobe/hostprobe/pkg/attrs"
	"github.com/hostprobe/hostprobe/pkg/types"
)

// target is the machine a command runs against.
type target struct {
	cfg     *config.Config
	logger  *log.Logger
	backend transport.Backend
	env     hostenv.Environment
}

// openTarget loads the configuration, builds the logger and connects to the
// configured machine. Callers must Close the result.
func (app *App) openTarget(ctx context.Context) (*target, error) {
	cfg, _, err := app.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger := newLogger(app.stderr, cfg)

	backend, err := app.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	t := &target{cfg: cfg, logger: logger, backend: backend, env: hostenv.Process{}}
	if ep, ok := backend.(transport.EnvironmentProvider); ok {
		env, err := ep.Environ(ctx)
		if err != nil {
			_ = t.Close()
			return nil, issue.NewErrorContext().
				WithOperation("read target environment").
				WithResource(backend.Name()).
				WithIssue(issue.TransportConnectFailedId).
				Wrap(err).
				BuildError()
		}
		t.env = env
	}
	logger.Debug("target ready", "backend", backend.Name(), "transport", cfg.Transport.Kind)
	return t, nil
}

// Close releases the backend connection, if it holds one.
func (t *target) Close() error {
	if c, ok := t.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// resolver builds an executable resolver for the target. The configured
// extra path is expanded against the target environment and used as the
// default for every call.
func (t *target) resolver() (*which.Resolver, error) {
	extra, err := config.ExpandExtraPath(t.cfg.Search.ExtraPath, func(key string) string {
		return hostenv.Get(t.env, key)
	})
	if err != nil {
		return nil, err
	}
	return which.New(t.backend, t.env,
		which.WithLogger(t.logger),
		which.WithConcurrency(t.cfg.Search.Concurrency),
		which.WithDefaultExtraPath(extra),
	), nil
}

func (t *target) inspector() *introspect.Inspector {
	return introspect.New(t.backend, t.env)
}

// attributes loads the configured attribute file from the local disk. It
// returns nil without error when no file is configured.
func (t *target) attributes() (attrs.Source, error) {
	return loadAttributes(t.cfg.Attributes.File)
}

func loadAttributes(path string) (attrs.Source, error) {
	if path == "" {
		return nil, nil
	}
	m, err := attrs.Load(path)
	if err != nil {
		id := issue.AttributesLoadFailedId
		switch {
		case errors.Is(err, os.ErrNotExist):
			id = issue.FileNotFoundId
		case errors.Is(err, os.ErrPermission):
			id = issue.PermissionDeniedId
		}
		return nil, issue.NewErrorContext().
			WithOperation("load attributes").
			WithResource(path).
			WithIssue(id).
			WithSuggestion("Check the --attributes path").
			Wrap(err).
			BuildError()
	}
	return m, nil
}

// requireAttributes is loadAttributes for commands that cannot run without them.
func requireAttributes(cfg *config.Config) (attrs.Source, error) {
	if cfg.Attributes.File == "" {
		return nil, &ExitError{
			Code: types.ExitUsage,
			Err: issue.NewErrorContext().
				WithOperation("classify the target").
				WithIssue(issue.AttributesLoadFailedId).
				WithSuggestion("Pass --attributes <file>").
				WithSuggestion("Set attributes.file in the configuration").
				Wrap(errors.New("no attribute file configured")).
				BuildError(),
		}
	}
	return loadAttributes(cfg.Attributes.File)
}

// newLogger builds the CLI logger. ui.verbose selects debug output and
// log.level, when set, overrides it.
func newLogger(w io.Writer, cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: config.AppName})
	level := log.InfoLevel
	if cfg.UI.Verbose {
		level = log.DebugLevel
	}
	if cfg.Log.Level != config.LogLevelDefault {
		if parsed, err := log.ParseLevel(string(cfg.Log.Level)); err == nil {
			level = parsed
		}
	}
	logger.SetLevel(level)
	return logger
}
