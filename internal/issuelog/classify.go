package issuelog

import (
	"fmt"
	"strings"
)

// OtherCategory collects codes no prefix rule claims.
const OtherCategory = "Other Issues"

// categoryRules are checked in order; the first match wins.
var categoryRules = []struct {
	category string
	match    func(code string) bool
}{
	{"Structure Issues", prefixes("S-", "G-02")},
	{"Modal Issues", prefixes("MODAL")},
	{"Collision Issues", prefixes("C-", "COLL")},
	{"Annotation Issues", prefixes("ANN", "A-")},
	{"Font Issues", prefixes("FONT", "F-")},
	{"Header/Footer Issues", prefixes("HDR")},
	{"Button Issues", prefixes("BTN")},
	{"User Story Issues", prefixes("US-")},
	{"Title/Section Issues", prefixes("TITLE", "SECTION")},
	{"Layout Issues", func(code string) bool { return strings.HasPrefix(code, "LAYOUT") || code == "G-036" }},
	{"Clutter Issues", prefixes("CLUTTER")},
	{"Visual Issues", prefixes("VIS")},
	{"Mobile Issues", prefixes("MOBILE", "MOB")},
	{"Annotation Issues", func(code string) bool { return code == "G-037" }},
}

// patchPrefixes mark localized fixes; everything else needs regeneration.
var patchPrefixes = []string{"C-", "COLL", "A-03", "FONT-001", "VIS-002", "VIS-006"}

func prefixes(ps ...string) func(string) bool {
	return func(code string) bool {
		for _, p := range ps {
			if strings.HasPrefix(code, p) {
				return true
			}
		}
		return false
	}
}

// Category returns the issues.md category heading for a code.
func Category(code string) string {
	for _, r := range categoryRules {
		if r.match(code) {
			return r.category
		}
	}
	return OtherCategory
}

// Classification returns PATCH for localized fixes, REGENERATE otherwise.
func Classification(code string) string {
	if prefixes(patchPrefixes...)(code) {
		return "PATCH"
	}
	return "REGENERATE"
}

// IssueID builds the per-category row ID, e.g. "S-01".
func IssueID(category string, n int) string {
	prefix := "X"
	if category != OtherCategory && category != "" {
		prefix = category[:1]
	}
	return fmt.Sprintf("%s-%02d", prefix, n)
}
