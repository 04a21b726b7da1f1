package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/wirecheck/internal/checks"
	"github.com/dgallion1/wirecheck/internal/config"
	"github.com/dgallion1/wirecheck/internal/issuelog"
)

const malformed = `<svg xmlns="http://www.w3.org/2000/svg"><g></svg>`

// screen renders a bare screen whose desktop mockup sits at desktopX.
func screen(desktopX int) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1920 1080" width="1920" height="1080">
  <g id="desktop" transform="translate(%d, 60)">
    <rect x="0" y="0" width="1280" height="720" rx="8" fill="#e8d4b8"/>
  </g>
</svg>
`, desktopX)
}

func writeFile(t *testing.T, root, rel, body string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRunner(root string, writeLogs bool) *Runner {
	return NewRunner(Options{
		Root:             root,
		LedgerPath:       filepath.Join(root, issuelog.LedgerName),
		OddballTolerance: 10,
		WriteLogs:        writeLogs,
	}, checks.New(config.DefaultExpectations(), nil), nil, NewDurationStats(time.Hour), nil)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "001-login/01-login.svg", screen(40))
	writeFile(t, root, "001-login/01-login.issues.md", "# Issues")
	writeFile(t, root, "002-cookie-consent/01-modal.svg", screen(40))
	writeFile(t, root, "includes/header-desktop.svg", "<svg/>")
	writeFile(t, root, "templates/blank.svg", "<svg/>")
	writeFile(t, root, "002-cookie-consent/templates/old.svg", "<svg/>")

	got, err := Discover(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "001-login/01-login.svg"),
		filepath.Join(root, "002-cookie-consent/01-modal.svg"),
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Discover = %v, want %v", got, want)
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestRunner_Validate(t *testing.T) {
	root := t.TempDir()
	bad := writeFile(t, root, "001-login/01-login.svg", malformed)
	good := writeFile(t, root, "001-login/02-reset.svg", screen(40))

	var seen []string
	r := newTestRunner(root, true).WithProgress(func(path string, _ int) { seen = append(seen, path) })
	rep, err := r.Validate(context.Background(), []string{bad, good})
	if err != nil {
		t.Fatal(err)
	}

	if rep.TotalFiles != 2 || rep.Failed != 2 || rep.Passed != 0 {
		t.Errorf("counts = %+v", rep)
	}
	if rep.OK() {
		t.Error("report should fail")
	}
	if len(seen) != 2 {
		t.Errorf("progress calls = %d", len(seen))
	}

	first := rep.Issues[0]
	if first.File != "001-login/01-login.svg" || first.Code != "PARSE" || first.Line != nil {
		t.Errorf("first issue = %+v", first)
	}
	if !strings.HasPrefix(first.Message, "Failed to parse SVG: ") {
		t.Errorf("message = %q", first.Message)
	}
	if rep.Results[0].Findings[0].Code != "PARSE" || len(rep.Results[0].Findings) != 1 {
		t.Errorf("malformed document should yield exactly one PARSE finding: %+v", rep.Results[0])
	}
	if rep.TotalIssues != len(rep.Issues) {
		t.Errorf("total_issues %d != len(issues) %d", rep.TotalIssues, len(rep.Issues))
	}

	b, _ := json.Marshal(rep)
	if !strings.Contains(string(b), `"line":null`) {
		t.Errorf("lineless issues should encode line as null: %s", b)
	}

	log, err := os.ReadFile(issuelog.PathFor(bad))
	if err != nil {
		t.Fatalf("issues log not written: %v", err)
	}
	if !strings.Contains(string(log), "| PARSE |") {
		t.Errorf("issues log missing PARSE row:\n%s", log)
	}

	want := fmt.Sprintf("Wireframe Validation: FAIL | 0/2 passed | %d issues", rep.TotalIssues)
	if rep.Summary() != want {
		t.Errorf("Summary = %q, want %q", rep.Summary(), want)
	}
}

func TestRunner_ValidateWithoutLogs(t *testing.T) {
	root := t.TempDir()
	bad := writeFile(t, root, "001-login/01-login.svg", malformed)

	if _, err := newTestRunner(root, true).WithLogs(false).Validate(context.Background(), []string{bad}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(issuelog.PathFor(bad)); !os.IsNotExist(err) {
		t.Errorf("issues log should not be written, stat err = %v", err)
	}
}

func TestRunner_ValidateUnreadable(t *testing.T) {
	root := t.TempDir()
	missing := filepath.Join(root, "001-login/gone.svg")

	rep, err := newTestRunner(root, false).Validate(context.Background(), []string{missing})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Issues) != 1 || rep.Issues[0].Code != "PARSE" {
		t.Errorf("unreadable file should be one PARSE issue: %+v", rep.Issues)
	}
}

func TestRunner_ValidateCancelled(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "001-login/01-login.svg", screen(40))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestRunner(root, false).Validate(ctx, []string{p}); err == nil {
		t.Error("expected context error")
	}
}

func TestSummary_Pass(t *testing.T) {
	rep := newValidationReport(1)
	rep.add("001-login/01-login.svg", nil)
	if got := rep.Summary(); got != "Wireframe Validation: PASS | 1/1 passed | 0 issues" {
		t.Errorf("Summary = %q", got)
	}
}

func TestRunner_InspectFindsOddball(t *testing.T) {
	root := t.TempDir()
	var paths []string
	for i, x := range []int{40, 40, 40, 40, 250} {
		paths = append(paths, writeFile(t, root, fmt.Sprintf("00%d-feature/01-screen.svg", i+1), screen(x)))
	}

	res, err := newTestRunner(root, true).Inspect(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if res.OK() {
		t.Fatal("expected violations")
	}
	odd := res.Report.ViolationsByCheck["desktop_x_oddball"]
	if len(odd) != 1 || odd[0] != "005-feature/01-screen.svg" {
		t.Errorf("desktop_x_oddball = %v", odd)
	}
	if res.Report.TotalSVGs != 5 {
		t.Errorf("total_svgs = %d", res.Report.TotalSVGs)
	}
	// Bare screens have no title, so every document reports it.
	if n := len(res.Report.ViolationsByCheck["title_missing"]); n != 5 {
		t.Errorf("title_missing count = %d", n)
	}

	log, err := os.ReadFile(issuelog.PathFor(paths[4]))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"## Inspector Issues", "| desktop_x_oddball | majority pattern: 40 | this SVG: 250 |"} {
		if !strings.Contains(string(log), want) {
			t.Errorf("issues log missing %q:\n%s", want, log)
		}
	}
}

func TestRunner_Escalations(t *testing.T) {
	root := t.TempDir()
	row := "| Code |\n|------|\n| MODAL-001 |\n"
	writeFile(t, root, "001-login/01-login.issues.md", row)
	writeFile(t, root, "002-cookie-consent/01-modal.issues.md", row)
	r := newTestRunner(root, false)

	cands, err := r.Escalations(false, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 || cands[0].Code != "MODAL-001" {
		t.Fatalf("candidates = %+v", cands)
	}
	if _, err := os.Stat(filepath.Join(root, issuelog.LedgerName)); !os.IsNotExist(err) {
		t.Error("ledger written without promote")
	}

	if _, err := r.Escalations(true, time.Now()); err != nil {
		t.Fatal(err)
	}
	again, err := r.Escalations(false, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Errorf("promoted candidate still reported: %+v", again)
	}
}

func TestRunner_CheckBytes(t *testing.T) {
	r := newTestRunner(t.TempDir(), true)
	fs, err := r.CheckBytes("upload.svg", []byte(malformed))
	if err != nil {
		t.Fatal(err)
	}
	if len(fs) != 1 || fs[0].Code != "PARSE" {
		t.Errorf("findings = %+v", fs)
	}
}

func TestRunner_InspectReportsUnreadable(t *testing.T) {
	root := t.TempDir()
	empty := writeFile(t, root, "001-feature/01-empty.svg", "")
	var paths []string
	for i := range 3 {
		paths = append(paths, writeFile(t, root, fmt.Sprintf("00%d-feature/02-screen.svg", i+2), screen(40)))
	}
	paths = append(paths, empty)
	r := newTestRunner(root, true)

	rep, err := r.Validate(context.Background(), []string{empty})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Issues) != 1 || rep.Issues[0].Code != "PARSE" {
		t.Fatalf("validate issues = %+v", rep.Issues)
	}

	res, err := r.Inspect(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if res.OK() {
		t.Error("empty document must not pass inspection")
	}
	if res.Report.TotalSVGs != 4 {
		t.Errorf("total_svgs = %d, want 4", res.Report.TotalSVGs)
	}
	got := res.Report.ViolationsBySVG["001-feature/01-empty.svg"]
	if len(got) != 1 || got[0].Check != "PARSE" || got[0].Expected != "well-formed SVG" {
		t.Errorf("violations for empty document = %+v", got)
	}
	// The unreadable document has no record, so it cannot sway a majority.
	for check := range res.Report.ViolationsByCheck {
		if strings.HasSuffix(check, "_oddball") {
			t.Errorf("unexpected oddball %s: %v", check, res.Report.ViolationsByCheck[check])
		}
	}

	log, err := os.ReadFile(issuelog.PathFor(empty))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(log), "| PARSE | well-formed SVG |") {
		t.Errorf("inspector section missing PARSE row:\n%s", log)
	}
}
