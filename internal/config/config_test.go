package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"WIRECHECK_DIR", "WIRECHECK_LEDGER", "WIRECHECK_MAX_QUEUE", "WIRECHECK_POSITION_TOLERANCE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Dir != "." {
		t.Errorf("expected dir %q, got %q", ".", cfg.Dir)
	}
	if cfg.LedgerFile != "GENERAL_ISSUES.md" {
		t.Errorf("expected ledger GENERAL_ISSUES.md, got %q", cfg.LedgerFile)
	}
	if cfg.MaxQueueSize != 16 {
		t.Errorf("expected queue 16, got %d", cfg.MaxQueueSize)
	}
	if cfg.Expectations.PositionTolerance != 5 {
		t.Errorf("expected tolerance 5, got %d", cfg.Expectations.PositionTolerance)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WIRECHECK_DIR", "/tmp/wf")
	t.Setenv("WIRECHECK_MAX_QUEUE", "-3")
	t.Setenv("WIRECHECK_JOB_TTL", "2m")
	t.Setenv("WIRECHECK_POSITION_TOLERANCE", "8")
	t.Setenv("WIRECHECK_WRITE_LOGS", "false")

	cfg := Load()
	if cfg.Dir != "/tmp/wf" {
		t.Errorf("expected dir override, got %q", cfg.Dir)
	}
	if cfg.MaxQueueSize != 16 {
		t.Errorf("expected non-positive queue size to fall back to 16, got %d", cfg.MaxQueueSize)
	}
	if cfg.JobTTL != 2*time.Minute {
		t.Errorf("expected 2m TTL, got %v", cfg.JobTTL)
	}
	if cfg.Expectations.PositionTolerance != 8 {
		t.Errorf("expected tolerance 8, got %d", cfg.Expectations.PositionTolerance)
	}
	if cfg.WriteIssueLogs {
		t.Error("expected issue logs disabled")
	}
	if got := cfg.LedgerPath(); got != "/tmp/wf/GENERAL_ISSUES.md" {
		t.Errorf("unexpected ledger path %q", got)
	}
}

func TestLedgerPath(t *testing.T) {
	tests := []struct {
		dir, ledger, want string
	}{
		{"/tmp/wf/", "GENERAL_ISSUES.md", "/tmp/wf/GENERAL_ISSUES.md"},
		{".", "GENERAL_ISSUES.md", "GENERAL_ISSUES.md"},
		{"wireframes", "docs/ledger.md", filepath.Join("wireframes", "docs", "ledger.md")},
		{"wireframes", "/etc/ledger.md", "/etc/ledger.md"},
	}
	for _, tt := range tests {
		cfg := Config{Dir: tt.dir, LedgerFile: tt.ledger}
		if got := cfg.LedgerPath(); got != tt.want {
			t.Errorf("LedgerPath(%q, %q) = %q, want %q", tt.dir, tt.ledger, got, tt.want)
		}
	}
}

func TestValidate_Errors(t *testing.T) {
	cfg := Load()
	cfg.Dir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty dir")
	}

	cfg = Load()
	cfg.LogLevel = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bad log level")
	}

	cfg = Load()
	cfg.Expectations.Signature.Format = "("
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bad signature format")
	}
}

func TestApplyRulesFile_Overlay(t *testing.T) {
	t.Setenv("WIRECHECK_POSITION_TOLERANCE", "")
	path := filepath.Join(t.TempDir(), "rules.yaml")
	yml := "title:\n  x: 900\nkey_concepts:\n  y: 950\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	cfg.RulesFile = path
	if err := cfg.ApplyRulesFile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exp := cfg.Expectations
	if exp.Title.X != 900 {
		t.Errorf("expected title x 900, got %d", exp.Title.X)
	}
	if exp.Title.Y != 28 {
		t.Errorf("expected title y to keep default 28, got %d", exp.Title.Y)
	}
	if exp.KeyConcepts.Y != 950 || exp.KeyConcepts.Tolerance != 50 {
		t.Errorf("unexpected key concepts rule %+v", exp.KeyConcepts)
	}
	if exp.Signature.MinFontSize != 18 {
		t.Errorf("expected default min font size, got %d", exp.Signature.MinFontSize)
	}
}

func TestApplyRulesFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("title: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Load()
	cfg.RulesFile = path
	if err := cfg.ApplyRulesFile(); err == nil {
		t.Error("expected YAML error")
	}
}

func TestSignatureFormat(t *testing.T) {
	re := DefaultExpectations().SignatureFormat()
	if !re.MatchString("002:01 | Cookie Consent | ScriptHammer") {
		t.Error("expected well-formed signature to match")
	}
	if re.MatchString("2:1 | Cookie Consent | ScriptHammer") {
		t.Error("expected short numbering to fail")
	}
}
