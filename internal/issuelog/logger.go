package issuelog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/wirecheck/internal/doctree"
)

// Section names a machine-owned block of an issues file.
type Section int

const (
	Validator Section = iota
	Inspector
)

func (s Section) title() string {
	if s == Inspector {
		return "Inspector Issues"
	}
	return "Validator Issues"
}

const dateLayout = "2006-01-02"

var lastReviewRe = regexp.MustCompile(`(?m)^\*\*Last Review:\*\* .*$`)

// Logger upserts findings into per-document issues files. Hand-written
// content outside the machine sections is preserved.
type Logger struct {
	log *slog.Logger
	now func() time.Time
}

func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log, now: time.Now}
}

// WithClock returns a copy of l that dates sections with now.
func (l *Logger) WithClock(now func() time.Time) *Logger {
	cp := *l
	cp.now = now
	return &cp
}

// PathFor returns the issues file that sits next to an SVG.
func PathFor(svgPath string) string {
	ext := filepath.Ext(svgPath)
	return strings.TrimSuffix(svgPath, ext) + ".issues.md"
}

// Log records validator findings for doc.
func (l *Logger) Log(doc *doctree.Document, findings []doctree.Finding) error {
	return l.LogSection(doc, Validator, findings)
}

// LogSection writes findings into the given machine section of doc's issues
// file. Empty findings leave the file untouched.
func (l *Logger) LogSection(doc *doctree.Document, sec Section, findings []doctree.Finding) error {
	if len(findings) == 0 {
		return nil
	}
	path := PathFor(doc.Path)
	date := l.now().Format(dateLayout)

	var body []byte
	if sec == Inspector {
		body = renderInspector(date, findings)
	} else {
		body = renderValidator(date, findings)
	}

	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		existing = nil
	case err != nil:
		return fmt.Errorf("read issues log: %w", err)
	}

	var out []byte
	if len(existing) == 0 {
		out = append(header(doc, date), body...)
	} else {
		out = touchLastReview(upsert(existing, sec.title(), body), date)
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write issues log: %w", err)
	}
	l.log.Debug("issues logged", "file", path, "section", sec.title(), "count", len(findings))
	return nil
}

// touchLastReview stamps date on the header's Last Review line. Lines of the
// same form further down belong to hand-written notes and are left alone.
func touchLastReview(src []byte, date string) []byte {
	loc := lastReviewRe.FindIndex(src[:headerEnd(src)])
	if loc == nil {
		return src
	}
	var out bytes.Buffer
	out.Write(src[:loc[0]])
	out.WriteString("**Last Review:** " + date)
	out.Write(src[loc[1]:])
	return out.Bytes()
}

// upsert replaces the section titled title, or appends body when absent.
func upsert(src []byte, title string, body []byte) []byte {
	if s, ok := findSection(src, title); ok {
		var out bytes.Buffer
		out.Write(src[:s.start])
		out.Write(body)
		out.Write(src[s.end:])
		return out.Bytes()
	}
	out := bytes.TrimRight(src, "\n")
	out = append(out[:len(out):len(out)], "\n\n"...)
	return append(out, body...)
}

func header(doc *doctree.Document, date string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# Issues: %s\n\n", doc.Name)
	fmt.Fprintf(&b, "**Feature:** %s\n", doc.Feature)
	fmt.Fprintf(&b, "**SVG:** %s\n", doc.Name)
	fmt.Fprintf(&b, "**Last Review:** %s\n\n", date)
	b.WriteString("---\n\n")
	return b.Bytes()
}

// renderValidator groups findings by category in first-seen order.
func renderValidator(date string, findings []doctree.Finding) []byte {
	var order []string
	groups := map[string][]doctree.Finding{}
	for _, f := range findings {
		cat := Category(f.Code)
		if _, ok := groups[cat]; !ok {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], f)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "## %s (%s)\n\n", Validator.title(), date)
	for _, cat := range order {
		fmt.Fprintf(&b, "### %s\n\n", cat)
		b.WriteString("| ID | Issue | Code | Line | Classification |\n")
		b.WriteString("|----|-------|------|------|----------------|\n")
		for i, f := range groups[cat] {
			line := "-"
			if f.Line > 0 {
				line = fmt.Sprint(f.Line)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				IssueID(cat, i+1), escapeCell(shorten(f.Message, 60)), f.Code, line, Classification(f.Code))
		}
		b.WriteString("\n")
	}
	return b.Bytes()
}

func renderInspector(date string, findings []doctree.Finding) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "## %s (%s)\n\n", Inspector.title(), date)
	b.WriteString("| Code | Expected | Actual | Classification |\n")
	b.WriteString("|------|----------|--------|----------------|\n")
	for _, f := range findings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			f.Code, cell(f.Expected), cell(f.Actual), Classification(f.Code))
	}
	b.WriteString("\n")
	return b.Bytes()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return escapeCell(s)
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
