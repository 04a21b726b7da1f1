package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/wirecheck/internal/inspect"
	"github.com/dgallion1/wirecheck/internal/issuelog"
	"github.com/dgallion1/wirecheck/internal/pipeline"
)

type validateFlags struct {
	all             bool
	json            bool
	summary         bool
	noLog           bool
	checkEscalation bool
	promote         bool
}

func newValidateCmd(a *app) *cobra.Command {
	var f validateFlags
	cmd := &cobra.Command{
		Use:   "validate [path...]",
		Short: "Check wireframes against the layout rules",
		Example: `  wirecheck validate 002-cookie-consent/01-consent-modal.svg
  wirecheck validate --all
  wirecheck validate --all --summary
  wirecheck validate --check-escalation --promote`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.checkEscalation {
				return runEscalation(a, f.promote)
			}
			if f.promote {
				return fmt.Errorf("--promote requires --check-escalation")
			}
			if f.json && f.summary {
				return fmt.Errorf("--json and --summary are mutually exclusive")
			}
			paths, err := collectPaths(a, f.all, args)
			if err != nil {
				return err
			}

			// Machine-readable modes leave the issues logs alone.
			writeLogs := !f.noLog && !f.json && !f.summary
			r := a.runner(writeLogs)

			rep, err := r.Validate(cmd.Context(), paths)
			if err != nil {
				return err
			}

			switch {
			case f.json:
				if err := writeJSON(a.out, rep); err != nil {
					return err
				}
			case f.summary:
				fmt.Fprintln(a.out, rep.Summary())
			default:
				printValidation(a, rep, writeLogs)
			}
			if !rep.OK() {
				return errFindings
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&f.all, "all", false, "validate every wireframe under the root")
	fl.BoolVar(&f.json, "json", false, "print the report as JSON")
	fl.BoolVar(&f.summary, "summary", false, "print a one-line pass/fail summary")
	fl.BoolVar(&f.noLog, "no-log", false, "do not update issues logs")
	fl.BoolVar(&f.checkEscalation, "check-escalation", false, "list issue codes recurring across features")
	fl.BoolVar(&f.promote, "promote", false, "record escalation candidates in the ledger")
	return cmd
}

// collectPaths resolves the documents a command should look at.
func collectPaths(a *app, all bool, args []string) ([]string, error) {
	if all {
		if len(args) > 0 {
			return nil, fmt.Errorf("--all takes no paths")
		}
		return pipeline.Discover(a.cfg.Dir)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("no input specified, use --all or provide an SVG path")
	}
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		p, err := a.resolve(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func printValidation(a *app, rep *pipeline.ValidationReport, logged bool) {
	p := a.style
	for _, res := range rep.Results {
		p.banner(a.out, "Validating: "+res.Path)
		if len(res.Findings) == 0 {
			fmt.Fprintf(a.out, "%s - No issues found\n", p.status(true))
			continue
		}
		for _, f := range res.Findings {
			line := ""
			if f.Line > 0 {
				line = fmt.Sprintf(" (line %d)", f.Line)
			}
			fmt.Fprintf(a.out, "  %s [%s]%s: %s\n", f.Severity, p.render(p.code, f.Code), line, f.Message)
		}
		fmt.Fprintf(a.out, "\n  %s\n", plural(len(res.Findings), "error"))
		if logged {
			fmt.Fprintf(a.out, "  %s\n", p.render(p.muted, "Issues logged to: "+issuelog.PathFor(res.Path)))
		}
	}

	fmt.Fprintf(a.out, "\n%s\n", rule)
	fmt.Fprintf(a.out, "TOTAL: %s across %s\n", plural(rep.TotalIssues, "error"), plural(rep.TotalFiles, "file"))
	fmt.Fprintf(a.out, "STATUS: %s\n", p.status(rep.OK()))
}

func runEscalation(a *app, promote bool) error {
	p := a.style
	p.banner(a.out, "CHECKING FOR ESCALATION CANDIDATES")

	cands, err := a.runner(false).Escalations(promote, time.Now())
	if err != nil {
		return err
	}
	if len(cands) == 0 {
		fmt.Fprintln(a.out, "\nNo escalation candidates found.")
		fmt.Fprintf(a.out, "Issues must appear in %d+ features to escalate to %s\n", inspect.MinFeatures, issuelog.LedgerName)
		return nil
	}

	fmt.Fprintf(a.out, "\n%d issue codes found in %d+ features:\n\n", len(cands), inspect.MinFeatures)
	for _, c := range cands {
		fmt.Fprintf(a.out, "  %s: %s\n", p.render(p.code, c.Code), strings.Join(c.Features, ", "))
	}
	fmt.Fprintln(a.out)
	if promote {
		fmt.Fprintf(a.out, "Promoted to %s\n", a.cfg.LedgerPath())
	} else {
		fmt.Fprintf(a.out, "ACTION: run with --promote to add these to %s.\n", issuelog.LedgerName)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
