// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/hostprobe/hostprobe/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hostprobe",
		Short: "Find executables and classify machines",
		Long: TitleStyle.Render("hostprobe") + SubtitleStyle.Render(" - Find executables and classify machines") + `

hostprobe resolves commands against the PATH of a target machine and
classifies it into platform families from its attribute file. The target
is the local host by default, or a host reached over SSH, a running
Docker/Podman container or an unpacked root filesystem.

` + SubtitleStyle.Render("Examples:") + `
  hostprobe which git                      First git on the local PATH
  hostprobe where python3 python           Every python on the PATH
  hostprobe --host web1 which systemctl    Look on an SSH host
  hostprobe is debian --attributes node.json
  hostprobe introspect --format yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&app.flags.configFile, "config", "", "config file (default is $HOME/.config/hostprobe/config.cue)")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&app.flags.transport, "transport", "", "target transport: local, ssh, container or rootfs")
	pf.StringVar(&app.flags.host, "host", "", "SSH host of the target")
	pf.IntVar(&app.flags.port, "port", 0, "SSH port of the target")
	pf.StringVar(&app.flags.user, "user", "", "SSH user")
	pf.StringVar(&app.flags.identity, "identity", "", "SSH private key file")
	pf.BoolVar(&app.flags.insecure, "insecure-ignore-host-key", false, "skip SSH host key verification")
	pf.StringVar(&app.flags.container, "container", "", "name or ID of a running target container")
	pf.StringVar(&app.flags.engine, "engine", "", "container engine: docker or podman")
	pf.StringVar(&app.flags.root, "root", "", "directory holding the root filesystem of the target")
	pf.StringVar(&app.flags.attributes, "attributes", "", "platform attribute file (json, yaml, toml or cue)")

	rootCmd.AddCommand(
		newWhichCommand(app),
		newWhereCommand(app),
		newClassifyCommand(app),
		newIsCommand(app),
		newIntrospectCommand(app),
		newServiceScriptCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, err, app.flags.verbose, app.guideStyle())
		}),
	)
	os.Exit(exitCodeFor(err))
}

// exitCodeFor maps a command error to the process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return int(exitErr.Code)
	}
	return 1
}

// renderError prints err for the user. ExitErrors without a cause are silent:
// they only carry a negative answer. Actionable errors linked to the issue
// catalog also get the guide, rendered with the given glamour style.
func renderError(w io.Writer, err error, verbose bool, style string) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		guide, guideErr := ae.Guide(style)
		if guideErr == nil && guide != "" {
			fmt.Fprint(w, guide)
		}
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
