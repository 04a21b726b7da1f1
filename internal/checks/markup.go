package checks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/wirecheck/internal/doctree"
)

var (
	entityRe         = regexp.MustCompile(`^(?:amp|lt|gt|quot|apos|#\d+|#x[0-9a-fA-F]+);`)
	mixedQuoteRe     = regexp.MustCompile(`(\w+)="[^"]*'|(\w+)='[^']*"`)
	unquotedAttrRe   = regexp.MustCompile(`\s(\w+)=([^"'\s>][^\s>]*)\s`)
	titleCandidateRe = regexp.MustCompile(`<text[^>]*\by=["']?(\d+)["']?[^>]*>([^<]+)</text>`)
	desktopLabelRe   = regexp.MustCompile(`(?s)DESKTOP.*?\by=["']?5[0-9]|\by=["']?5[0-9]["']?.*?>.*?DESKTOP`)
	mobileLabelRe    = regexp.MustCompile(`(?s)MOBILE.*?\by=["']?5[0-9]|\by=["']?5[0-9]["']?.*?>.*?MOBILE`)
)

const (
	expectedViewBox = "0 0 1920 1080"
	titleWindow     = 2000
	sectionWindow   = 4000
)

func checkXMLSyntax(c *Context) []doctree.Finding {
	text := c.Text()
	var out []doctree.Finding

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '&':
			if !entityRe.MatchString(text[i+1:]) {
				out = append(out, finding("XML-001", "Unescaped '&' character (use &amp; instead)").
					At(c.Line(i)).WithSnippet(text[i:min(i+20, len(text))]))
			}
		case '<':
			if i+1 >= len(text) || !startsTag(text[i+1]) {
				out = append(out, finding("XML-002", "Unescaped '<' character (use &lt; instead)").
					At(c.Line(i)).WithSnippet(text[i:min(i+20, len(text))]))
			}
		}
	}

	for _, loc := range mixedQuoteRe.FindAllStringIndex(text, -1) {
		out = append(out, finding("XML-003", "Mismatched quotes in attribute").
			At(c.Line(loc[0])).WithSnippet(text[loc[0]:loc[1]]))
	}

	for _, m := range unquotedAttrRe.FindAllStringSubmatchIndex(text, -1) {
		val := text[m[4]:m[5]]
		if strings.HasPrefix(val, "url(") {
			continue
		}
		name := text[m[2]:m[3]]
		out = append(out, finding("XML-004", fmt.Sprintf("Attribute '%s' has unquoted value '%s'", name, val)).
			At(c.Line(m[0])))
	}
	return out
}

func startsTag(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '/' || b == '?' || b == '!'
}

func checkSVGRoot(c *Context) []doctree.Finding {
	root := c.Doc.Root
	var out []doctree.Finding
	if v := root["viewBox"]; v != expectedViewBox {
		out = append(out, finding("SVG-001", fmt.Sprintf("viewBox should be '%s', got '%s'", expectedViewBox, v)))
	}
	if v := root["width"]; v != "1920" {
		out = append(out, finding("SVG-002", fmt.Sprintf("width attribute should be '1920', got '%s'", v)))
	}
	if v := root["height"]; v != "1080" {
		out = append(out, finding("SVG-003", fmt.Sprintf("height attribute should be '1080', got '%s'", v)))
	}
	return out
}

// checkTitleFormat inspects the first text element near the top of the
// canvas. Only that one candidate is considered.
func checkTitleFormat(c *Context) []doctree.Finding {
	head := c.Text()
	if len(head) > titleWindow {
		head = head[:titleWindow]
	}
	for _, m := range titleCandidateRe.FindAllStringSubmatchIndex(head, -1) {
		var y int
		fmt.Sscanf(head[m[2]:m[3]], "%d", &y)
		title := strings.TrimSpace(head[m[4]:m[5]])
		if y >= 50 || len(title) <= 5 {
			continue
		}
		line := c.Line(m[0])
		var out []doctree.Finding
		if strings.Contains(title, "|") {
			out = append(out, finding("TITLE-001",
				fmt.Sprintf("Title contains '|' - use human-readable format: '%s...'", truncate(title, 50))).At(line))
		}
		if strings.Contains(title, "Page") && strings.Contains(title, "of") {
			out = append(out, finding("TITLE-002", "Remove 'Page X of Y' from title").At(line))
		}
		if !isCentered(head[m[0]:m[1]]) {
			out = append(out, finding("TITLE-003",
				"Title must be centered (text-anchor='middle')").At(line))
		}
		return out
	}
	return nil
}

func checkSectionLabels(c *Context) []doctree.Finding {
	text := c.Text()
	head := text
	if len(head) > sectionWindow {
		head = head[:sectionWindow]
	}
	var out []doctree.Finding
	if !desktopLabelRe.MatchString(head) {
		out = append(out, finding("SECTION-001", "Missing DESKTOP section label (e.g., 'DESKTOP (16:9)' at y=52)"))
	}
	if !mobileLabelRe.MatchString(text) {
		out = append(out, finding("SECTION-002", "Missing MOBILE section label"))
	}
	return out
}

var clutterLabels = []struct {
	code, label, message string
}{
	{"CLUTTER-001", "Legend:", "Remove 'Legend:' row - badge colors are self-explanatory"},
	{"CLUTTER-002", "Coverage:", "Remove 'Coverage:' row - internal tracking, not wireframe content"},
	{"CLUTTER-003", "Integration:", "Remove 'Integration:' row - shows nothing visual"},
}

func checkClutter(c *Context) []doctree.Finding {
	var out []doctree.Finding
	for _, cl := range clutterLabels {
		if i := strings.Index(c.Text(), cl.label); i >= 0 {
			out = append(out, finding(cl.code, cl.message).At(c.Line(i)))
		}
	}
	return out
}
