// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hostprobe/hostprobe/internal/issue"
	"github.com/hostprobe/hostprobe/internal/which"
	"github.com/hostprobe/hostprobe/pkg/types"
)

// searchFlags are the flags shared by which and where.
type searchFlags struct {
	extraPath   []string
	exclude     []string
	searchPaths bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.extraPath, "extra-path", nil, "directory to search after PATH (repeatable, replaces search.extra_path)")
	cmd.Flags().StringArrayVar(&f.exclude, "exclude", nil, "skip matches whose path or file name matches this glob (repeatable)")
	cmd.Flags().BoolVar(&f.searchPaths, "search-paths", false, "print the directories that would be searched and exit")
}

func (f *searchFlags) options(cmd *cobra.Command) []which.SearchOption {
	var opts []which.SearchOption
	if cmd.Flags().Changed("extra-path") {
		opts = append(opts, which.WithExtraPath(f.extraPath))
	}
	if len(f.exclude) > 0 {
		opts = append(opts, which.WithFilter(excludeFilter(f.exclude)))
	}
	return opts
}

// excludeFilter rejects paths whose full path or base name matches any of
// the glob patterns. Malformed patterns match nothing.
func excludeFilter(patterns []string) which.Filter {
	return func(p string) bool {
		base := path.Base(toSlash(p))
		for _, pattern := range patterns {
			if ok, _ := path.Match(pattern, toSlash(p)); ok {
				return false
			}
			if ok, _ := path.Match(pattern, base); ok {
				return false
			}
		}
		return true
	}
}

// toSlash converts Windows separators so that path.Match works on paths from
// any target.
func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func newWhichCommand(app *App) *cobra.Command {
	var flags searchFlags
	cmd := &cobra.Command{
		Use:   "which <command>...",
		Short: "Print the first executable matching any of the commands",
		Long: `Print the first executable matching any of the commands.

Each command is tried in the order given, and for each command every PATH
directory of the target in order. The exit status is 1 when nothing matches.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, app, &flags, args, false)
		},
	}
	flags.register(cmd)
	return cmd
}

func newWhereCommand(app *App) *cobra.Command {
	var flags searchFlags
	cmd := &cobra.Command{
		Use:   "where <command>...",
		Short: "Print every executable matching any of the commands",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, app, &flags, args, true)
		},
	}
	flags.register(cmd)
	return cmd
}

func runSearch(cmd *cobra.Command, app *App, flags *searchFlags, cmds []string, all bool) error {
	ctx := cmd.Context()
	t, err := app.openTarget(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = t.Close() }()

	r, err := t.resolver()
	if err != nil {
		return err
	}
	opts := flags.options(cmd)

	if flags.searchPaths {
		for _, dir := range r.SearchPaths(opts...) {
			fmt.Fprintln(app.stdout, dir)
		}
		return nil
	}

	var found []string
	if all {
		found = r.Where(ctx, cmds, opts...)
	} else if p, ok := r.Which(ctx, cmds, opts...); ok {
		found = []string{p}
	}

	if len(found) == 0 {
		t.logger.Debug("no executable found", "commands", cmds, "backend", t.backend.Name())
		if !t.cfg.UI.Verbose {
			return &ExitError{Code: types.ExitNotFound}
		}
		return &ExitError{
			Code: types.ExitNotFound,
			Err: issue.NewErrorContext().
				WithOperation("find "+strings.Join(cmds, ", ")).
				WithResource(t.backend.Name()).
				WithIssue(issue.CommandNotFoundId).
				Wrap(errors.New("no executable found on the search path")).
				BuildError(),
		}
	}
	for _, p := range found {
		fmt.Fprintln(app.stdout, p)
	}
	return nil
}
