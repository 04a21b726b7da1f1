package checks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/wirecheck/internal/doctree"
)

// Colors that must never fill a panel rect.
var forbiddenPanelColors = []string{"#ffffff", "#d1d5db", "#e5e7eb"}

// Dark fills that make a mobile frame look like a device bezel.
var forbiddenFrameColors = map[string]bool{"#1f2937": true, "#111827": true, "#0f172a": true}

// Light greys that are unreadable on the parchment annotation panel.
var lightTextColors = map[string]bool{"#9ca3af": true, "#d1d5db": true, "#e5e7eb": true, "#6b7280": true}

var (
	panelColorRes = func() map[string]*regexp.Regexp {
		m := make(map[string]*regexp.Regexp, len(forbiddenPanelColors))
		for _, color := range forbiddenPanelColors {
			m[color] = regexp.MustCompile(`(?i)<rect[^>]*fill=["']?` + regexp.QuoteMeta(color))
		}
		return m
	}()

	toggleRe      = regexp.MustCompile(`<rect[^>]*\swidth=["']?(?:4[0-9]|5[0-5])\b["']?[^>]*\sheight=["']?2[0-9]\b["']?[^>]*>`)
	mobileFrameRe = regexp.MustCompile(`<rect[^>]*\brx=["']?(?:[2-9][0-9])\b["']?[^>]*>`)

	// Buttons are matched in both attribute orders.
	buttonRes = []*regexp.Regexp{
		regexp.MustCompile(`<rect[^>]*\swidth=["']?(\d+)["']?[^>]*\sheight=["']?(\d+)["']?[^>]*fill=["']?([^"'\s>]+)`),
		regexp.MustCompile(`<rect[^>]*fill=["']?([^"'\s>]+)["']?[^>]*\swidth=["']?(\d+)["']?[^>]*\sheight=["']?(\d+)`),
	}

	numberedTitleRe = regexp.MustCompile(`<text[^>]*>([①②③④⑤⑥⑦⑧⑨⑩][^<]*)</text>`)
	textFillRe      = regexp.MustCompile(`<text[^>]*fill=["']?([^"'>\s]+)["']?[^>]*>([^<]+)</text>`)
)

func checkPanelColors(c *Context) []doctree.Finding {
	var out []doctree.Finding
	for _, color := range forbiddenPanelColors {
		for _, loc := range panelColorRes[color].FindAllStringIndex(c.Text(), -1) {
			out = append(out, finding("G-001",
				fmt.Sprintf("Forbidden panel color '%s' on rect (use #e8d4b8 parchment)", color)).
				At(c.Line(loc[0])))
		}
	}
	return out
}

func checkToggleColors(c *Context) []doctree.Finding {
	text := c.Text()
	var out []doctree.Finding
	for _, loc := range toggleRe.FindAllStringIndex(text, -1) {
		elem := text[loc[0]:loc[1]]
		if rx, ok := intMatch(rxRe, elem); !ok || rx < 10 {
			continue
		}
		fill := fillOf(elem)
		if fill == "" || fill == "#6b7280" || fill == "#22c55e" || fill == "none" || strings.HasPrefix(fill, "url(") {
			continue
		}
		out = append(out, finding("G-015",
			fmt.Sprintf("Toggle has wrong color '%s' (must be #6b7280 OFF or #22c55e ON)", fill)).
			At(c.Line(loc[0])))
	}
	return out
}

func checkMobileFrame(c *Context) []doctree.Finding {
	text := c.Text()
	var out []doctree.Finding
	for _, loc := range mobileFrameRe.FindAllStringIndex(text, -1) {
		fill := fillOf(text[loc[0]:loc[1]])
		if forbiddenFrameColors[fill] {
			out = append(out, finding("MOB-001",
				fmt.Sprintf("Mobile frame uses dark color '%s' (use light color like #e8d4b8)", fill)).
				At(c.Line(loc[0])))
		}
	}
	return out
}

func checkButtonFills(c *Context) []doctree.Finding {
	text := c.Text()
	seen := make(map[int]bool)
	var out []doctree.Finding
	for i, re := range buttonRes {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if seen[m[0]] {
				continue
			}
			var wStr, hStr, fill string
			if i == 0 {
				wStr, hStr, fill = text[m[2]:m[3]], text[m[4]:m[5]], text[m[6]:m[7]]
			} else {
				fill, wStr, hStr = text[m[2]:m[3]], text[m[4]:m[5]], text[m[6]:m[7]]
			}
			var w, h int
			fmt.Sscanf(wStr, "%d", &w)
			fmt.Sscanf(hStr, "%d", &h)
			if w < 80 || w > 300 || h < 35 || h > 60 {
				continue
			}
			seen[m[0]] = true
			fill = strings.ToLower(fill)
			switch fill {
			case "#e8d4b8":
				out = append(out, finding("BTN-001",
					fmt.Sprintf("Button uses panel background color (%s) - use solid fill for prominence", fill)).
					At(c.Line(m[0])))
			case "none", "transparent":
				out = append(out, finding("BTN-001",
					fmt.Sprintf("Button has transparent fill (%s) - buttons must have solid fills", fill)).
					At(c.Line(m[0])))
			}
		}
	}
	return out
}

func checkBackgroundGradient(c *Context) []doctree.Finding {
	text := c.Text()
	hasGradient := strings.Contains(text, "linearGradient") && strings.Contains(text, "#c7ddf5")
	hasRef := strings.Contains(text, `fill="url(#bg)"`) || strings.Contains(text, `fill='url(#bg)'`)
	switch {
	case !hasGradient:
		return []doctree.Finding{finding("G-022", "Missing background gradient. Add linearGradient with #c7ddf5 → #b8d4f0")}
	case !hasRef:
		return []doctree.Finding{finding("G-022", `Background gradient defined but not used. Add fill="url(#bg)" to background rect`)}
	}
	return nil
}

func checkAnnotationReadability(c *Context) []doctree.Finding {
	ann, off := c.Annotations()
	if ann == "" {
		return nil
	}
	var out []doctree.Finding
	for _, m := range numberedTitleRe.FindAllStringSubmatchIndex(ann, -1) {
		if isBold(ann[m[0]:m[1]]) {
			continue
		}
		out = append(out, finding("G-037",
			fmt.Sprintf(`Annotation title not bold: '%s...' - add font-weight="bold"`, truncate(ann[m[2]:m[3]], 30))).
			At(c.Line(off+m[0])))
	}
	for _, m := range textFillRe.FindAllStringSubmatchIndex(ann, -1) {
		fill := strings.ToLower(ann[m[2]:m[3]])
		if !lightTextColors[fill] {
			continue
		}
		out = append(out, finding("G-037",
			fmt.Sprintf("Annotation text uses light color %s: '%s...' - use #374151 or darker", fill, truncate(ann[m[4]:m[5]], 20))).
			At(c.Line(off+m[0])))
	}
	return out
}
