package inspect

import (
	"sort"

	"github.com/dgallion1/wirecheck/internal/issuelog"
)

// MinFeatures is how many distinct features must report a code before it
// is worth a project-wide rule.
const MinFeatures = 2

// Candidate is a recurring code not yet in the ledger.
type Candidate struct {
	Code     string   `json:"code"`
	Features []string `json:"features"`
}

// EscalationCandidates scans the issues logs under root and returns codes
// reported by at least MinFeatures features that the ledger at ledgerPath
// does not document. The ledger is re-read on every call.
func EscalationCandidates(root, ledgerPath string) ([]Candidate, error) {
	byCode, err := issuelog.ScanCodes(root)
	if err != nil {
		return nil, err
	}
	ledger, err := issuelog.ReadLedger(ledgerPath)
	if err != nil {
		return nil, err
	}
	return candidates(byCode, ledger), nil
}

func candidates(byCode map[string]map[string]bool, ledger issuelog.Ledger) []Candidate {
	var out []Candidate
	for code, features := range byCode {
		if len(features) < MinFeatures || ledger.Has(code) {
			continue
		}
		fs := make([]string, 0, len(features))
		for f := range features {
			fs = append(fs, f)
		}
		sort.Strings(fs)
		out = append(out, Candidate{Code: code, Features: fs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Codes lists the candidate codes.
func Codes(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Code
	}
	return out
}
