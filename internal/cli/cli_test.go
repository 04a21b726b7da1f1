package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const malformed = `<svg xmlns="http://www.w3.org/2000/svg"><g></svg>`

const bare = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1920 1080" width="1920" height="1080">
  <g id="desktop" transform="translate(40, 60)">
    <rect x="0" y="0" width="1280" height="720" rx="8" fill="#e8d4b8"/>
  </g>
</svg>
`

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

// runCLI executes the command line against root with a clean environment.
func runCLI(t *testing.T, root string, args ...string) (int, string, string) {
	t.Helper()
	for _, k := range []string{"WIRECHECK_RULES", "WIRECHECK_LEDGER", "WIRECHECK_WRITE_LOGS", "WIRECHECK_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"--dir", root}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestValidate_Text(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "001-login/01-login.svg", malformed)

	code, out, _ := runCLI(t, root, "validate", "001-login/01-login.svg")
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
	for _, want := range []string{
		"Validating: 001-login/01-login.svg",
		"ERROR [PARSE]: Failed to parse SVG",
		"Issues logged to: 001-login/01-login.issues.md",
		"STATUS: FAIL",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(strings.TrimSuffix(path, ".svg") + ".issues.md"); err != nil {
		t.Errorf("issues log not written: %v", err)
	}
}

func TestValidate_NoLog(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "001-login/01-login.svg", malformed)

	if code, _, _ := runCLI(t, root, "validate", "--no-log", path); code != 1 {
		t.Errorf("exit = %d", code)
	}
	if _, err := os.Stat(strings.TrimSuffix(path, ".svg") + ".issues.md"); !os.IsNotExist(err) {
		t.Errorf("issues log written with --no-log")
	}
}

func TestValidate_AllModes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "001-login/01-login.svg", malformed)
	writeFile(t, root, "includes/header-desktop.svg", malformed)

	t.Run("summary", func(t *testing.T) {
		code, out, _ := runCLI(t, root, "validate", "--all", "--summary")
		if code != 1 || strings.TrimSpace(out) != "Wireframe Validation: FAIL | 0/1 passed | 1 issues" {
			t.Errorf("exit %d, output %q", code, out)
		}
	})

	t.Run("json", func(t *testing.T) {
		code, out, _ := runCLI(t, root, "validate", "--all", "--json")
		if code != 1 {
			t.Errorf("exit = %d", code)
		}
		var rep struct {
			TotalFiles int `json:"total_files"`
			Failed     int `json:"failed"`
			Issues     []struct {
				File string `json:"file"`
				Code string `json:"code"`
			} `json:"issues"`
		}
		if err := json.Unmarshal([]byte(out), &rep); err != nil {
			t.Fatalf("decode: %v\n%s", err, out)
		}
		if rep.TotalFiles != 1 || rep.Failed != 1 || rep.Issues[0].File != "001-login/01-login.svg" {
			t.Errorf("report = %+v", rep)
		}
	})

	// Machine-readable modes never touch the issues logs.
	matches, _ := filepath.Glob(filepath.Join(root, "*", "*.issues.md"))
	if len(matches) != 0 {
		t.Errorf("unexpected issues logs: %v", matches)
	}
}

func TestValidate_EmptyCorpusPasses(t *testing.T) {
	code, out, _ := runCLI(t, t.TempDir(), "validate", "--all", "--summary")
	if code != 0 || strings.TrimSpace(out) != "Wireframe Validation: PASS | 0/0 passed | 0 issues" {
		t.Errorf("exit %d, output %q", code, out)
	}
}

func TestValidate_UsageErrors(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"validate"}, "no input specified"},
		{"missing file", []string{"validate", "nope.svg"}, "file not found"},
		{"promote alone", []string{"validate", "--promote"}, "--promote requires --check-escalation"},
		{"json and summary", []string{"validate", "--all", "--json", "--summary"}, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, root, tt.args...)
			if code != 1 || !strings.Contains(errOut, tt.want) {
				t.Errorf("exit %d, stderr %q, want %q", code, errOut, tt.want)
			}
		})
	}
}

func TestValidate_CheckEscalation(t *testing.T) {
	root := t.TempDir()
	row := "| Code |\n|------|\n| MODAL-001 |\n"
	writeFile(t, root, "001-login/01-login.issues.md", row)
	writeFile(t, root, "002-cookie-consent/01-modal.issues.md", row)

	code, out, _ := runCLI(t, root, "validate", "--check-escalation")
	if code != 0 || !strings.Contains(out, "MODAL-001: 001-login, 002-cookie-consent") {
		t.Fatalf("exit %d, output:\n%s", code, out)
	}

	if code, _, _ := runCLI(t, root, "validate", "--check-escalation", "--promote"); code != 0 {
		t.Fatalf("promote exit = %d", code)
	}
	ledger, err := os.ReadFile(filepath.Join(root, "GENERAL_ISSUES.md"))
	if err != nil || !strings.Contains(string(ledger), "MODAL-001 →") {
		t.Fatalf("ledger = %q, %v", ledger, err)
	}

	_, out, _ = runCLI(t, root, "validate", "--check-escalation")
	if !strings.Contains(out, "No escalation candidates found.") {
		t.Errorf("promoted code still a candidate:\n%s", out)
	}
}

func TestInspect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "001-login/01-login.svg", bare)
	writeFile(t, root, "002-cookie-consent/01-modal.svg", bare)

	t.Run("report", func(t *testing.T) {
		code, out, _ := runCLI(t, root, "inspect", "--report")
		if code != 1 {
			t.Errorf("exit = %d", code)
		}
		var rep struct {
			TotalSVGs         int                 `json:"total_svgs"`
			ViolationsByCheck map[string][]string `json:"violations_by_check"`
		}
		if err := json.Unmarshal([]byte(out), &rep); err != nil {
			t.Fatalf("decode: %v\n%s", err, out)
		}
		if rep.TotalSVGs != 2 || len(rep.ViolationsByCheck["title_missing"]) != 2 {
			t.Errorf("report = %+v", rep)
		}
		matches, _ := filepath.Glob(filepath.Join(root, "*", "*.issues.md"))
		if len(matches) != 0 {
			t.Errorf("--report wrote issues logs: %v", matches)
		}
	})

	t.Run("text", func(t *testing.T) {
		code, out, _ := runCLI(t, root, "inspect", "001-login/01-login.svg")
		if code != 1 {
			t.Errorf("exit = %d", code)
		}
		for _, want := range []string{"INSPECTING 1 SVG FILES", "001-login/01-login.svg:", "[title_missing]", "PATTERN VIOLATIONS"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		log, err := os.ReadFile(filepath.Join(root, "001-login/01-login.issues.md"))
		if err != nil || !strings.Contains(string(log), "## Inspector Issues") {
			t.Errorf("inspector section not logged: %v", err)
		}
	})
}

func TestInspect_EmptyCorpus(t *testing.T) {
	code, out, _ := runCLI(t, t.TempDir(), "inspect", "--all")
	if code != 0 || !strings.Contains(out, "No SVG files found to inspect.") {
		t.Errorf("exit %d, output %q", code, out)
	}
}

func TestExtract(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "001-login/01-login.svg", bare)

	code, out, _ := runCLI(t, root, "extract", "001-login/01-login.svg")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if rec["title"] != nil {
		t.Errorf("title = %v, want null", rec["title"])
	}
	desktop, ok := rec["desktop_mockup"].(map[string]any)
	if !ok || desktop["x"] != float64(40) || desktop["y"] != float64(60) {
		t.Errorf("desktop_mockup = %v", rec["desktop_mockup"])
	}
}
