package inspect

import (
	"sort"

	"github.com/dgallion1/wirecheck/internal/doctree"
)

// PatternViolation is one document departing from an expected or majority
// pattern.
type PatternViolation struct {
	Path     string `json:"-"`
	Check    string `json:"check"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// FromFinding lifts a structure-check finding into a violation of doc.
func FromFinding(doc *doctree.Document, f doctree.Finding) PatternViolation {
	return PatternViolation{Path: doc.Path, Check: f.Code, Expected: f.Expected, Actual: f.Actual}
}

// Finding converts v back for the issue logger.
func (v PatternViolation) Finding() doctree.Finding {
	f := doctree.NewFinding(v.Check, "expected "+v.Expected+", got "+v.Actual)
	f.Expected = v.Expected
	f.Actual = v.Actual
	return f
}

// Report is the inspector's JSON output.
type Report struct {
	TotalSVGs         int                           `json:"total_svgs"`
	TotalViolations   int                           `json:"total_violations"`
	ViolationsBySVG   map[string][]PatternViolation `json:"violations_by_svg"`
	ViolationsByCheck map[string][]string           `json:"violations_by_check"`
}

// NewReport groups violations by document and by check. rel maps a
// document path to its report key; nil keeps paths as they are.
func NewReport(totalSVGs int, vs []PatternViolation, rel func(string) string) Report {
	if rel == nil {
		rel = func(p string) string { return p }
	}
	r := Report{
		TotalSVGs:         totalSVGs,
		TotalViolations:   len(vs),
		ViolationsBySVG:   map[string][]PatternViolation{},
		ViolationsByCheck: map[string][]string{},
	}
	for _, v := range vs {
		key := rel(v.Path)
		r.ViolationsBySVG[key] = append(r.ViolationsBySVG[key], v)
		r.ViolationsByCheck[v.Check] = append(r.ViolationsByCheck[v.Check], key)
	}
	return r
}

// ByPath groups violations per document, keeping first-seen document order.
func ByPath(vs []PatternViolation) (paths []string, groups map[string][]PatternViolation) {
	groups = map[string][]PatternViolation{}
	for _, v := range vs {
		if _, ok := groups[v.Path]; !ok {
			paths = append(paths, v.Path)
		}
		groups[v.Path] = append(groups[v.Path], v)
	}
	return paths, groups
}

// Checks returns the distinct check names in vs, sorted.
func Checks(vs []PatternViolation) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range vs {
		if !seen[v.Check] {
			seen[v.Check] = true
			out = append(out, v.Check)
		}
	}
	sort.Strings(out)
	return out
}
