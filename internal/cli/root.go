// Package cli wires the wirecheck commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/wirecheck/internal/checks"
	"github.com/dgallion1/wirecheck/internal/config"
	"github.com/dgallion1/wirecheck/internal/issuelog"
	"github.com/dgallion1/wirecheck/internal/pipeline"
)

var Version = "dev"

// errFindings marks a run that completed but reported problems. It maps to
// exit status 1 without an extra error line.
var errFindings = errors.New("findings reported")

// app is the state shared by every command once flags are parsed.
type app struct {
	cfg   config.Config
	log   *slog.Logger
	out   io.Writer
	style palette
	stats *pipeline.DurationStats

	dir      string
	rules    string
	logLevel string
}

// runner builds a runner over the configured corpus.
func (a *app) runner(writeLogs bool) *pipeline.Runner {
	return pipeline.NewRunner(pipeline.Options{
		Root:             a.cfg.Dir,
		LedgerPath:       a.cfg.LedgerPath(),
		OddballTolerance: a.cfg.Expectations.OddballTolerance,
		WriteLogs:        writeLogs && a.cfg.WriteIssueLogs,
	}, checks.New(a.cfg.Expectations, a.log), issuelog.NewLogger(a.log), a.stats, a.log)
}

// resolve finds a document named on the command line, either as given or
// relative to the corpus root.
func (a *app) resolve(arg string) (string, error) {
	candidates := []string{arg}
	if !filepath.IsAbs(arg) {
		candidates = append(candidates, filepath.Join(a.cfg.Dir, arg))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("file not found: %s", arg)
}

func (a *app) setup(cmd *cobra.Command) error {
	a.cfg = config.Load()
	if cmd.Flags().Changed("dir") {
		a.cfg.Dir = a.dir
	}
	if cmd.Flags().Changed("rules") {
		a.cfg.RulesFile = a.rules
	}
	if cmd.Flags().Changed("log-level") {
		a.cfg.LogLevel = a.logLevel
	}
	if err := a.cfg.ApplyRulesFile(); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	lvl, _ := config.ParseLevel(a.cfg.LogLevel)
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
	a.out = cmd.OutOrStdout()
	a.style = newPalette(a.out)
	a.stats = pipeline.NewDurationStats(a.cfg.JobTTL)
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     "wirecheck",
		Version: Version,
		Short:   "Validate and cross-check SVG wireframes",
		Long: `wirecheck checks SVG wireframes against the house layout rules,
compares screens across features for pattern drift, and keeps a per-screen
issues log next to every wireframe.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.dir, "dir", "", "wireframes root (default $WIRECHECK_DIR or .)")
	pf.StringVar(&a.rules, "rules", "", "YAML file with expected landmark positions")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newValidateCmd(a),
		newInspectCmd(a),
		newExtractCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
	)
	return root
}

// Execute runs the command line and returns the process exit status: 0 when
// nothing was reported, 1 otherwise.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintln(stderr, "ERROR:", err)
		}
		return 1
	}
	return 0
}
