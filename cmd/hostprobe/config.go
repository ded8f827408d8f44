// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hostprobe/hostprobe/internal/config"
	"github.com/hostprobe/hostprobe/pkg/types"
)

// settableKeys lists the keys accepted by `config set`, in display order.
var settableKeys = []string{
	"transport.kind",
	"transport.ssh.host",
	"transport.ssh.port",
	"transport.ssh.user",
	"transport.ssh.identity_file",
	"transport.container.engine",
	"transport.container.id",
	"transport.rootfs.path",
	"search.concurrency",
	"attributes.file",
	"log.level",
	"ui.verbose",
	"ui.color_scheme",
}

// newConfigCommand creates the `hostprobe config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage hostprobe configuration",
		Long: `Manage hostprobe configuration.

Configuration is stored in:
  - Linux: ~/.config/hostprobe/config.cue
  - macOS: ~/Library/Application Support/hostprobe/config.cue
  - Windows: %APPDATA%\hostprobe\config.cue

Every key can be overridden with a HOSTPROBE_ environment variable, for
example HOSTPROBE_TRANSPORT_KIND=ssh.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig("")
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			cfgPath, err := config.ConfigFilePath(cfgDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", cfgPath)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value.\n\nValid keys:\n  " + strings.Join(settableKeys, "\n  "),
		Args:  cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return settableKeys, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: app.flags.configFile})
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, path, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	section := func(name string) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s:\n", KeyStyle.Render(name))
	}

	section("transport")
	printValue(w, "kind", cfg.Transport.Kind.String())
	printValue(w, "ssh.host", cfg.Transport.SSH.Host)
	printValue(w, "ssh.port", strconv.Itoa(cfg.Transport.SSH.Port))
	printValue(w, "ssh.user", cfg.Transport.SSH.User)
	printValue(w, "ssh.identity_file", cfg.Transport.SSH.IdentityFile)
	printValue(w, "ssh.known_hosts_file", cfg.Transport.SSH.KnownHostsFile)
	printValue(w, "ssh.insecure_ignore_host_key", strconv.FormatBool(cfg.Transport.SSH.InsecureIgnoreHostKey))
	printValue(w, "ssh.timeout", cfg.Transport.SSH.Timeout.String())
	printValue(w, "container.engine", cfg.Transport.Container.Engine.String())
	printValue(w, "container.id", cfg.Transport.Container.ID)
	printValue(w, "rootfs.path", cfg.Transport.RootFS.Path)

	section("search")
	printValue(w, "extra_path", strings.Join(cfg.Search.ExtraPath, ", "))
	printValue(w, "concurrency", strconv.Itoa(cfg.Search.Concurrency))

	section("attributes")
	printValue(w, "file", cfg.Attributes.File)

	section("log")
	printValue(w, "level", cfg.Log.Level.String())

	section("ui")
	printValue(w, "verbose", strconv.FormatBool(cfg.UI.Verbose))
	printValue(w, "color_scheme", cfg.UI.ColorScheme.String())

	return nil
}

func printValue(w io.Writer, key, value string) {
	if value == "" {
		value = SubtitleStyle.Render("(not set)")
	} else {
		value = SuccessStyle.Render(value)
	}
	fmt.Fprintf(w, "  %s: %s\n", key, value)
}

// setConfigValue updates one key and writes the configuration back to the
// file it came from, or to the default location.
func setConfigValue(ctx context.Context, app *App, key, value string) error {
	cfg, path, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: app.flags.configFile})
	if err != nil {
		return err
	}

	switch key {
	case "transport.kind":
		cfg.Transport.Kind = config.TransportKind(value)
	case "transport.ssh.host":
		cfg.Transport.SSH.Host = value
	case "transport.ssh.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid transport.ssh.port %q: %w", value, err)
		}
		cfg.Transport.SSH.Port = port
	case "transport.ssh.user":
		cfg.Transport.SSH.User = value
	case "transport.ssh.identity_file":
		cfg.Transport.SSH.IdentityFile = value
	case "transport.container.engine":
		cfg.Transport.Container.Engine = config.ContainerEngine(value)
	case "transport.container.id":
		cfg.Transport.Container.ID = value
	case "transport.rootfs.path":
		cfg.Transport.RootFS.Path = value
	case "search.concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid search.concurrency %q: %w", value, err)
		}
		cfg.Search.Concurrency = n
	case "attributes.file":
		cfg.Attributes.File = value
	case "log.level":
		cfg.Log.Level = config.LogLevel(value)
	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)
	default:
		return &ExitError{
			Code: types.ExitUsage,
			Err:  fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(settableKeys, ", ")),
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if path == "" {
		if path, err = config.ConfigFilePath(""); err != nil {
			return err
		}
	}
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}
