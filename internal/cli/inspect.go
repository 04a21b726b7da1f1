package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/wirecheck/internal/inspect"
)

func newInspectCmd(a *app) *cobra.Command {
	var all, report bool
	cmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Compare wireframes against each other for pattern drift",
		Long: `inspect extracts the structure of each wireframe, checks the required
landmarks, and flags screens whose positions deviate from the corpus
majority. Oddball detection needs the whole corpus, so a single path only
gets the structure checks.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectPaths(a, all || report, args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintln(a.out, "No SVG files found to inspect.")
				return nil
			}

			res, err := a.runner(!report).Inspect(cmd.Context(), paths)
			if err != nil {
				return err
			}

			if report {
				if err := writeJSON(a.out, res.Report); err != nil {
					return err
				}
			} else {
				printInspection(a, len(paths), res.Violations)
			}
			if !res.OK() {
				return errFindings
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "inspect every wireframe under the root")
	cmd.Flags().BoolVar(&report, "report", false, "print the corpus report as JSON")
	return cmd
}

func printInspection(a *app, total int, vs []inspect.PatternViolation) {
	p := a.style
	p.banner(a.out, fmt.Sprintf("INSPECTING %d SVG FILES", total))

	if len(vs) == 0 {
		fmt.Fprintln(a.out, "\nAll SVGs follow consistent patterns.")
		fmt.Fprintf(a.out, "\n%s\nSTATUS: %s\n", rule, p.status(true))
		return
	}

	fmt.Fprintf(a.out, "\n%d pattern violations found:\n\n", len(vs))
	order, groups := inspect.ByPath(vs)
	for _, path := range order {
		rel, err := filepath.Rel(a.cfg.Dir, path)
		if err != nil {
			rel = path
		}
		fmt.Fprintf(a.out, "  %s:\n", rel)
		for _, v := range groups[path] {
			fmt.Fprintf(a.out, "    [%s] expected %s, got %s\n", p.render(p.code, v.Check), v.Expected, v.Actual)
		}
		fmt.Fprintln(a.out)
	}
	fmt.Fprintf(a.out, "%s\nSTATUS: %s\n", rule, p.render(p.fail, fmt.Sprintf("%d PATTERN VIOLATIONS", len(vs))))
}
