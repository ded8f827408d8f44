// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hostprobe/hostprobe/internal/issue"
	"github.com/hostprobe/hostprobe/pkg/attrs"
	"github.com/hostprobe/hostprobe/pkg/platform"
	"github.com/hostprobe/hostprobe/pkg/types"
)

// categoryResult is one row of the classify output.
type categoryResult struct {
	Category platform.Category `json:"category" yaml:"category"`
	Holds    bool              `json:"holds" yaml:"holds"`
}

func newClassifyCommand(app *App) *cobra.Command {
	var (
		onlyTrue bool
		format   string
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Evaluate every platform category against the attribute file",
		Long: `Evaluate every platform category against the attribute file.

The attribute file is a JSON, YAML, TOML or CUE document carrying at least
"platform" and "platform_family", such as the output of ohai. It is given
with --attributes or attributes.file in the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := app.loadRequiredAttributes(cmd)
			if err != nil {
				return err
			}

			results := []categoryResult{}
			if onlyTrue {
				for _, c := range platform.Resolve(src) {
					results = append(results, categoryResult{Category: c, Holds: true})
				}
			} else {
				results = classify(src)
			}

			if format != formatText {
				return writeStructured(app.stdout, format, results)
			}
			for _, r := range results {
				if onlyTrue {
					fmt.Fprintln(app.stdout, r.Category)
					continue
				}
				fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render(r.Category.String()), boolStyle(r.Holds).Render(fmt.Sprint(r.Holds)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&onlyTrue, "only-true", false, "print only the categories that hold, one per line")
	cmd.Flags().StringVarP(&format, "format", "o", formatText, "output format: text, json or yaml")
	return cmd
}

func newIsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "is <category>",
		Short: "Exit 0 when the category holds for the attribute file, 1 otherwise",
		Long: `Exit 0 when the category holds for the attribute file, 1 otherwise.

The category is any name listed by 'hostprobe classify', or a platform family
alias such as osx, mac, el, amazon_linux or solaris.`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			names := make([]string, 0, len(platform.Categories()))
			for _, c := range platform.Categories() {
				names = append(names, c.String())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := platform.ParseCategory(args[0])
			var pred platform.Predicate
			if err == nil {
				pred, err = platform.PredicateFor(category)
			}
			if err != nil {
				return &ExitError{
					Code: types.ExitUsage,
					Err: issue.NewErrorContext().
						WithOperation("evaluate category").
						WithResource(args[0]).
						WithIssue(issue.UnknownCategoryId).
						Wrap(err).
						BuildError(),
				}
			}

			src, err := app.loadRequiredAttributes(cmd)
			if err != nil {
				return err
			}
			if !pred(src) {
				return &ExitError{Code: types.ExitNotFound}
			}
			return nil
		},
	}
}

// classify evaluates every category in definition order.
func classify(src attrs.Source) []categoryResult {
	categories := platform.Categories()
	results := make([]categoryResult, 0, len(categories))
	for _, c := range categories {
		pred, err := platform.PredicateFor(c)
		if err != nil {
			continue
		}
		results = append(results, categoryResult{Category: c, Holds: pred(src)})
	}
	return results
}

// loadRequiredAttributes loads the configuration and the attribute file
// without connecting to the target.
func (app *App) loadRequiredAttributes(cmd *cobra.Command) (attrs.Source, error) {
	cfg, _, err := app.loadConfig(cmd.Context())
	if err != nil {
		return nil, err
	}
	return requireAttributes(cfg)
}
