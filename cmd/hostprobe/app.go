// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/hostprobe/hostprobe/internal/config"
	"github.com/hostprobe/hostprobe/internal/issue"
	"github.com/hostprobe/hostprobe/internal/transport"
	"github.com/hostprobe/hostprobe/pkg/types"
)

// ErrConflictingConnectionFlags is returned when more than one of --host,
// --container and --root is given.
var ErrConflictingConnectionFlags = errors.New("conflicting connection flags")

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: every Cobra handler receives an App and reaches the
	// configuration and the target machine through it.
	App struct {
		Config  ConfigProvider
		Connect ConnectFunc
		stdout  io.Writer
		stderr  io.Writer
		flags   globalFlags

		// colorScheme is ui.color_scheme from the last loaded configuration.
		colorScheme config.ColorScheme
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config  ConfigProvider
		Connect ConnectFunc
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// ConnectFunc opens the backend selected by cfg. Backends that implement
	// io.Closer are closed when the command finishes.
	ConnectFunc func(ctx context.Context, cfg *config.Config, logger *log.Logger) (transport.Backend, error)

	// globalFlags holds the persistent flags. Zero values mean "not given" and
	// leave the configured value alone.
	globalFlags struct {
		configFile string
		verbose    bool
		transport  string
		host       string
		port       int
		user       string
		identity   string
		insecure   bool
		container  string
		engine     string
		root       string
		attributes string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Connect == nil {
		deps.Connect = connect
	}

	return &App{
		Config:  deps.Config,
		Connect: deps.Connect,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}
}

// loadConfig loads the configuration and applies the global flag overrides.
// It returns the file the configuration came from, empty for defaults.
func (app *App) loadConfig(ctx context.Context) (*config.Config, string, error) {
	cfg, path, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: app.flags.configFile})
	if err != nil {
		return nil, "", err
	}
	if err := app.flags.apply(cfg); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	app.colorScheme = cfg.UI.ColorScheme
	return cfg, path, nil
}

// guideStyle returns the glamour style for rendered issue guides.
func (app *App) guideStyle() string {
	if app.colorScheme == "" {
		return string(config.ColorSchemeAuto)
	}
	return string(app.colorScheme)
}

func (f globalFlags) apply(cfg *config.Config) error {
	if err := f.checkConnection(); err != nil {
		return err
	}
	if f.verbose {
		cfg.UI.Verbose = true
	}
	if f.transport != "" {
		cfg.Transport.Kind = config.TransportKind(f.transport)
	}

	// A connection flag without --transport selects the matching transport.
	switch {
	case f.host != "":
		cfg.Transport.SSH.Host = f.host
		if f.transport == "" {
			cfg.Transport.Kind = config.TransportSSH
		}
	case f.container != "":
		cfg.Transport.Container.ID = f.container
		if f.transport == "" {
			cfg.Transport.Kind = config.TransportContainer
		}
	case f.root != "":
		cfg.Transport.RootFS.Path = f.root
		if f.transport == "" {
			cfg.Transport.Kind = config.TransportRootFS
		}
	}

	if f.port != 0 {
		cfg.Transport.SSH.Port = f.port
	}
	if f.user != "" {
		cfg.Transport.SSH.User = f.user
	}
	if f.identity != "" {
		cfg.Transport.SSH.IdentityFile = f.identity
	}
	if f.insecure {
		cfg.Transport.SSH.InsecureIgnoreHostKey = true
	}
	if f.engine != "" {
		cfg.Transport.Container.Engine = config.ContainerEngine(f.engine)
	}
	if f.attributes != "" {
		cfg.Attributes.File = f.attributes
	}
	return nil
}

// checkConnection rejects more than one target selector.
func (f globalFlags) checkConnection() error {
	var given []string
	for _, sel := range []struct{ flag, value string }{
		{"--host", f.host},
		{"--container", f.container},
		{"--root", f.root},
	} {
		if sel.value != "" {
			given = append(given, sel.flag)
		}
	}
	if len(given) < 2 {
		return nil
	}
	return &ExitError{
		Code: types.ExitUsage,
		Err: issue.NewErrorContext().
			WithOperation("select target").
			WithSuggestion("Pass only one of --host, --container or --root").
			Wrap(fmt.Errorf("%w: %s", ErrConflictingConnectionFlags, strings.Join(given, ", "))).
			BuildError(),
	}
}
