// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hostprobe/hostprobe/internal/introspect"
	"github.com/hostprobe/hostprobe/internal/issue"
	"github.com/hostprobe/hostprobe/pkg/types"
)

func newIntrospectCommand(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Report what the target machine is and how it manages services",
		Long: `Report what the target machine is and how it manages services.

The platform facts come from the attribute file when one is configured;
every other check reads the target through the selected transport.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := app.openTarget(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = t.Close() }()

			src, err := t.attributes()
			if err != nil {
				return err
			}
			facts := t.inspector().Report(ctx, src)

			if format != formatText {
				return writeStructured(app.stdout, format, facts)
			}
			renderFacts(app.stdout, facts)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", formatText, "output format: text, json or yaml")
	return cmd
}

func renderFacts(w io.Writer, f introspect.Facts) {
	row := func(key string, value string) {
		fmt.Fprintf(w, "  %s: %s\n", KeyStyle.Render(key), value)
	}
	flag := func(key string, v bool) {
		row(key, boolStyle(v).Render(fmt.Sprint(v)))
	}
	orNone := func(s string) string {
		if s == "" {
			return SubtitleStyle.Render("(unknown)")
		}
		return s
	}

	fmt.Fprintln(w, TitleStyle.Render("Target ")+f.Backend)
	fmt.Fprintln(w)
	row("platform", orNone(f.Platform))
	row("platform_family", orNone(f.PlatformFamily))
	categories := make([]string, 0, len(f.Categories))
	for _, c := range f.Categories {
		categories = append(categories, c.String())
	}
	row("categories", orNone(strings.Join(categories, ", ")))
	flag("docker", f.Docker)
	flag("systemd", f.Systemd)
	flag("kitchen", f.Kitchen)
	flag("ci", f.CI)
	row("sandbox", f.Sandbox.String())

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Service tools"))
	flag("update-rc.d", f.ServiceTools.DebianRCD)
	flag("invoke-rc.d", f.ServiceTools.InvokeRCD)
	flag("initctl", f.ServiceTools.Upstart)
	flag("insserv", f.ServiceTools.Insserv)
	flag("chkconfig", f.ServiceTools.RedhatRCD)
}

func newServiceScriptCommand(app *App) *cobra.Command {
	typeNames := make([]string, 0, len(introspect.ServiceTypes()))
	for _, st := range introspect.ServiceTypes() {
		typeNames = append(typeNames, st.String())
	}

	return &cobra.Command{
		Use:   "service-script <type> <name>",
		Short: "Exit 0 when a service script of the given type exists on the target",
		Long: `Exit 0 when a service script of the given type exists on the target.

Types: ` + strings.Join(typeNames, ", ") + `. For systemd an init.d script, a
service unit and a plain unit all count.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: typeNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := introspect.ServiceType(args[0])
			if err := st.Validate(); err != nil {
				return &ExitError{
					Code: types.ExitUsage,
					Err: issue.NewErrorContext().
						WithOperation("look up service script").
						WithResource(args[1]).
						WithIssue(issue.UnknownServiceTypeId).
						Wrap(err).
						BuildError(),
				}
			}

			ctx := cmd.Context()
			t, err := app.openTarget(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = t.Close() }()

			found, err := t.inspector().ServiceScriptExists(ctx, st, args[1])
			if err != nil {
				return err
			}
			if !found {
				return &ExitError{Code: types.ExitNotFound}
			}
			return nil
		},
	}
}
