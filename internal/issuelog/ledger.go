package issuelog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// LedgerName is the project-wide ledger; it is never scanned as a per-document log.
const LedgerName = "GENERAL_ISSUES.md"

const escalationsTitle = "Escalations"

var (
	// "FONT-001 → G-041" history entries, and the lines Promote writes.
	arrowRe = regexp.MustCompile(`([A-Z]+-\d{3}|[a-z]+(?:_[a-z]+)+)\s*→`)
	// "FONT-001 fires" or "(validator: FONT-001)" trigger notes.
	triggerRe = regexp.MustCompile(`(?:validator:\s*)?([A-Z]+-\d{3})(?:\s+fires|\))`)
)

// legacyPromotions were escalated before the ledger recorded them.
var legacyPromotions = map[string]string{
	"COLL-001":  "G-031",
	"US-002":    "G-018",
	"TITLE-003": "G-024",
}

// Ledger is the set of codes already promoted to project-wide rules.
type Ledger map[string]bool

// ParseLedger derives the documented codes from ledger text.
func ParseLedger(src []byte) Ledger {
	l := Ledger{}
	for code := range legacyPromotions {
		l[code] = true
	}
	for _, m := range arrowRe.FindAllSubmatch(src, -1) {
		l[string(m[1])] = true
	}
	for _, m := range triggerRe.FindAllSubmatch(src, -1) {
		l[string(m[1])] = true
	}
	return l
}

// ReadLedger parses the ledger at path. A missing ledger documents only the
// legacy promotions.
func ReadLedger(path string) (Ledger, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ParseLedger(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return ParseLedger(src), nil
}

func (l Ledger) Has(code string) bool { return l[code] }

// Promote records candidates as pending rules under the ledger's
// Escalations section. Codes already documented are skipped, so promoting
// twice changes nothing.
func Promote(path string, candidates []string, now time.Time) ([]string, error) {
	src, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	ledger := ParseLedger(src)

	var added []string
	seen := map[string]bool{}
	for _, c := range candidates {
		if ledger.Has(c) || seen[c] {
			continue
		}
		seen[c] = true
		added = append(added, c)
	}
	if len(added) == 0 {
		return nil, nil
	}
	sort.Strings(added)

	var lines bytes.Buffer
	date := now.Format(dateLayout)
	for _, c := range added {
		fmt.Fprintf(&lines, "- %s → pending rule (%s)\n", c, date)
	}

	var out []byte
	if len(src) == 0 {
		out = []byte("# General Issues\n\n## " + escalationsTitle + "\n\n")
		out = append(out, lines.Bytes()...)
	} else if s, ok := findSection(src, escalationsTitle); ok {
		sec := bytes.TrimRight(src[s.start:s.end], "\n")
		var b bytes.Buffer
		b.Write(src[:s.start])
		b.Write(sec)
		b.WriteString("\n")
		b.Write(lines.Bytes())
		if s.end < len(src) {
			b.WriteString("\n")
		}
		b.Write(src[s.end:])
		out = b.Bytes()
	} else {
		body := append([]byte("## "+escalationsTitle+"\n\n"), lines.Bytes()...)
		out = upsert(src, escalationsTitle, body)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return nil, fmt.Errorf("write ledger: %w", err)
	}
	return added, nil
}

// skipDirs hold shared components and starter files, not features.
var skipDirs = map[string]bool{"includes": true, "templates": true}

// ScanCodes walks root for per-document issues files and returns, for each
// code listed in a table's Code column, the set of features reporting it.
func ScanCodes(root string) (map[string]map[string]bool, error) {
	byCode := map[string]map[string]bool{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if name == LedgerName || !isIssuesFile(name) {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		feature := filepath.Base(filepath.Dir(path))
		for _, code := range TableCodes(src) {
			if byCode[code] == nil {
				byCode[code] = map[string]bool{}
			}
			byCode[code][feature] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan issues logs: %w", err)
	}
	return byCode, nil
}

func isIssuesFile(name string) bool {
	ok, _ := filepath.Match("*.issues.md", name)
	return ok
}
