package pipeline

import (
	"fmt"
	"time"

	"github.com/dgallion1/wirecheck/internal/doctree"
	"github.com/dgallion1/wirecheck/internal/inspect"
)

// Mode selects which passes a run performs.
type Mode string

const (
	ModeValidate Mode = "validate"
	ModeInspect  Mode = "inspect"
	ModeAll      Mode = "all"
)

// ParseMode accepts "" as ModeAll.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAll:
		return ModeAll, nil
	case ModeValidate, ModeInspect:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want validate, inspect or all)", s)
}

// Issue is one finding in the validator JSON report.
type Issue struct {
	File     string `json:"file"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Line     *int   `json:"line"`
}

// Result holds one document's findings.
type Result struct {
	Path     string            `json:"path"`
	Findings []doctree.Finding `json:"findings"`
}

// ValidationReport is the validator's corpus report.
type ValidationReport struct {
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	TotalFiles  int     `json:"total_files"`
	TotalIssues int     `json:"total_issues"`
	Issues      []Issue `json:"issues"`

	Results []Result `json:"-"`
}

func newValidationReport(total int) *ValidationReport {
	return &ValidationReport{TotalFiles: total, Issues: []Issue{}}
}

func (r *ValidationReport) add(file string, findings []doctree.Finding) {
	r.Results = append(r.Results, Result{Path: file, Findings: findings})
	if len(findings) == 0 {
		r.Passed++
		return
	}
	r.Failed++
	for _, f := range findings {
		var line *int
		if f.Line > 0 {
			l := f.Line
			line = &l
		}
		r.Issues = append(r.Issues, Issue{
			File:     file,
			Severity: f.Severity,
			Code:     f.Code,
			Message:  f.Message,
			Line:     line,
		})
		if f.Severity == doctree.SeverityError {
			r.TotalIssues++
		}
	}
}

// OK reports whether no document produced a finding.
func (r *ValidationReport) OK() bool {
	return r.TotalIssues == 0
}

// Summary is the one-line pass/fail used in pull request comments.
func (r *ValidationReport) Summary() string {
	status := "PASS"
	if !r.OK() {
		status = "FAIL"
	}
	return fmt.Sprintf("Wireframe Validation: %s | %d/%d passed | %d issues", status, r.Passed, r.TotalFiles, r.TotalIssues)
}

// InspectionResult is the inspector's output for a set of documents.
type InspectionResult struct {
	Report     inspect.Report
	Violations []inspect.PatternViolation
}

// OK reports whether every document followed the expected patterns.
func (r *InspectionResult) OK() bool {
	return len(r.Violations) == 0
}

// RunReport is what a queued corpus run produces and what gets published.
type RunReport struct {
	RunID      string            `json:"run_id"`
	Mode       Mode              `json:"mode"`
	FinishedAt time.Time         `json:"finished_at"`
	Validation *ValidationReport `json:"validation,omitempty"`
	Inspection *inspect.Report   `json:"inspection,omitempty"`
}
