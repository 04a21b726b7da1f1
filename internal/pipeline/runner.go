package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/wirecheck/internal/checks"
	"github.com/dgallion1/wirecheck/internal/doctree"
	"github.com/dgallion1/wirecheck/internal/extract"
	"github.com/dgallion1/wirecheck/internal/inspect"
	"github.com/dgallion1/wirecheck/internal/issuelog"
	"github.com/dgallion1/wirecheck/internal/parser"
)

// Options configure a Runner.
type Options struct {
	Root             string // Corpus root; report paths are relative to it
	LedgerPath       string
	OddballTolerance int
	WriteLogs        bool // Upsert findings into per-document issues files
}

// ProgressFunc is called after each document is checked.
type ProgressFunc func(path string, findings int)

// Runner drives documents through load, extract, check and log, one at a
// time.
type Runner struct {
	opts     Options
	engine   *checks.Engine
	issues   *issuelog.Logger
	stats    *DurationStats
	log      *slog.Logger
	progress ProgressFunc
}

func NewRunner(opts Options, engine *checks.Engine, issues *issuelog.Logger, stats *DurationStats, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	if issues == nil {
		issues = issuelog.NewLogger(log)
	}
	return &Runner{
		opts:   opts,
		engine: engine,
		issues: issues,
		stats:  stats,
		log:    log,
	}
}

// WithProgress returns a copy of r reporting to fn.
func (r *Runner) WithProgress(fn ProgressFunc) *Runner {
	cp := *r
	cp.progress = fn
	return &cp
}

// WithLogs returns a copy of r with issues logging switched on or off.
func (r *Runner) WithLogs(on bool) *Runner {
	cp := *r
	cp.opts.WriteLogs = on
	return &cp
}

// Root returns the corpus root.
func (r *Runner) Root() string {
	return r.opts.Root
}

// Discover lists the corpus screens.
func (r *Runner) Discover() ([]string, error) {
	return Discover(r.opts.Root)
}

// Load reads and extracts one document. An unreadable file comes back as a
// document carrying ParseErr, so it is reported rather than aborting a batch.
func (r *Runner) Load(path string) *doctree.Document {
	doc, err := parser.Load(path)
	if err != nil {
		r.log.Warn("document unreadable", "file", path, "error", err)
		doc = doctree.NewDocument(path, "")
		doc.ParseErr = err
		return doc
	}
	doc.Record = extract.Extract(doc.Name, doc.Text)
	return doc
}

// CheckBytes validates an in-memory document without touching the issues log.
func (r *Runner) CheckBytes(name string, data []byte) ([]doctree.Finding, error) {
	start := time.Now()
	doc, err := parser.Parse(bytes.NewReader(data), name)
	if err != nil {
		return nil, err
	}
	doc.Record = extract.Extract(doc.Name, doc.Text)
	findings := r.engine.Run(doc)
	r.observe(ModeValidate, doc, findings, time.Since(start))
	return findings, nil
}

// Extract returns the structural record of the document at path.
func (r *Runner) Extract(path string) (*doctree.Document, error) {
	doc, err := parser.Load(path)
	if err != nil {
		return nil, err
	}
	doc.Record = extract.Extract(doc.Name, doc.Text)
	return doc, nil
}

// Validate runs the full catalogue over paths.
func (r *Runner) Validate(ctx context.Context, paths []string) (*ValidationReport, error) {
	rep := newValidationReport(len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		start := time.Now()
		doc := r.Load(p)
		findings := r.engine.Run(doc)
		r.observe(ModeValidate, doc, findings, time.Since(start))

		rep.add(r.rel(p), findings)
		if r.opts.WriteLogs {
			r.writeLog(doc, issuelog.Validator, findings)
		}
		if r.progress != nil {
			r.progress(p, len(findings))
		}
	}
	return rep, nil
}

// Inspect runs the structure checks per document, then, once every record
// is available, the corpus-wide oddball pass. An unreadable document is
// reported as PARSE and counted, but contributes nothing to the oddball
// majorities.
func (r *Runner) Inspect(ctx context.Context, paths []string) (*InspectionResult, error) {
	loaded := make([]*doctree.Document, 0, len(paths))
	records := make([]*doctree.Document, 0, len(paths))
	var violations []inspect.PatternViolation
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		doc := r.Load(p)
		var findings []doctree.Finding
		if unreadable(doc) {
			findings = r.engine.Run(doc)
		} else {
			findings = r.engine.RunStructure(doc)
			records = append(records, doc)
		}
		r.observe(ModeInspect, doc, findings, time.Since(start))

		loaded = append(loaded, doc)
		for _, f := range findings {
			violations = append(violations, inspect.FromFinding(doc, f))
		}
		if r.progress != nil {
			r.progress(p, len(findings))
		}
	}

	violations = append(violations, inspect.FindOddballs(records, r.opts.OddballTolerance)...)

	if r.opts.WriteLogs {
		byPath := map[string]*doctree.Document{}
		for _, d := range loaded {
			byPath[d.Path] = d
		}
		order, groups := inspect.ByPath(violations)
		for _, p := range order {
			fs := make([]doctree.Finding, 0, len(groups[p]))
			for _, v := range groups[p] {
				fs = append(fs, v.Finding())
			}
			r.writeLog(byPath[p], issuelog.Inspector, fs)
		}
	}

	return &InspectionResult{
		Report:     inspect.NewReport(len(loaded), violations, r.rel),
		Violations: violations,
	}, nil
}

// unreadable reports a document with nothing to extract from: the file
// could not be read, or it is empty.
func unreadable(doc *doctree.Document) bool {
	return doc.ParseErr != nil && doc.Text == ""
}

// Escalations returns codes recurring across features. With promote set,
// the candidates are recorded in the ledger.
func (r *Runner) Escalations(promote bool, now time.Time) ([]inspect.Candidate, error) {
	cands, err := inspect.EscalationCandidates(r.opts.Root, r.opts.LedgerPath)
	if err != nil {
		return nil, err
	}
	if promote && len(cands) > 0 {
		added, err := issuelog.Promote(r.opts.LedgerPath, inspect.Codes(cands), now)
		if err != nil {
			return cands, err
		}
		r.log.Info("escalations promoted", "ledger", r.opts.LedgerPath, "codes", added)
	}
	return cands, nil
}

func (r *Runner) writeLog(doc *doctree.Document, sec issuelog.Section, findings []doctree.Finding) {
	if err := r.issues.LogSection(doc, sec, findings); err != nil {
		issueLogErrors.Inc()
		r.log.Error("issues log write failed", "file", doc.Path, "error", err)
	}
}

func (r *Runner) observe(mode Mode, doc *doctree.Document, findings []doctree.Finding, elapsed time.Duration) {
	outcome := "pass"
	switch {
	case doc.ParseErr != nil:
		outcome = "parse_error"
	case len(findings) > 0:
		outcome = "fail"
	}
	documentsChecked.WithLabelValues(string(mode), outcome).Inc()
	documentDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
	for _, f := range findings {
		findingsTotal.WithLabelValues(f.Code).Inc()
	}
	if r.stats != nil {
		r.stats.Record(elapsed.Milliseconds())
	}
	r.log.Debug("document checked", "file", doc.Path, "mode", mode, "findings", len(findings), "outcome", outcome)
}

func (r *Runner) rel(path string) string {
	if r.opts.Root == "" {
		return path
	}
	rel, err := filepath.Rel(r.opts.Root, path)
	if err != nil {
		return path
	}
	return rel
}
