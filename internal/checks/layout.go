package checks

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/wirecheck/internal/doctree"
	"github.com/dgallion1/wirecheck/internal/parser"
	"golang.org/x/net/html"
)

// Annotation panel text columns, in panel coordinates.
var annotationColumns = [][2]int{{20, 470}, {470, 920}, {920, 1370}, {1370, 1820}}

const (
	annotationGroupFallback = 5000
	signatureGapY           = 1020
	mobileContentWindow     = 2000
)

var (
	badgeTextRe       = regexp.MustCompile(`<text[^>]*>([FSU][RCS]-\d+)</text>`)
	panelTranslateRe  = regexp.MustCompile(`id="annotations"[^>]*transform="translate\(\s*\d+\s*,\s*(\d+)`)
	rectHeightRe      = regexp.MustCompile(`<rect[^>]*\sheight=["']?(\d+)`)
	badgeRectRe       = regexp.MustCompile(`<rect[^>]*\brx=["']?4\b["']?[^>]*>`)
	columnTextRe      = regexp.MustCompile(`<text[^>]*\bx=["']?(\d+)["']?[^>]*>([^<]*)</text>`)
	mobileGroupRe     = regexp.MustCompile(`<g[^>]*id=["']mobile["'][^>]*>`)
	mobileHeaderUseRe = regexp.MustCompile(`<use[^>]*header-mobile\.svg[^>]*/>`)
	firstContentRe    = regexp.MustCompile(`<(rect|text|g)[^>]*\sy=["']?(\d+)`)
)

// floatAttr parses a numeric attribute, treating a missing one as 0.
func floatAttr(n *html.Node, key string) (float64, bool) {
	v, ok := parser.Attr(n, key)
	if !ok {
		return 0, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func checkFontSizes(c *Context) []doctree.Finding {
	var out []doctree.Finding
	for _, n := range parser.Elements(c.Doc.Tree, "text") {
		raw, ok := parser.Attr(n, "font-size")
		if !ok {
			raw = "14"
		}
		size, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(raw, "px", "")), 64)
		if err != nil {
			continue
		}
		minSize := float64(MinFontSize)
		if parser.ParentTag(n) == "a" {
			minSize = BadgeMinFontSize
		}
		if size < minSize {
			out = append(out, finding("FONT-001",
				fmt.Sprintf("Font size %spx below minimum %dpx: '%s'", formatNum(size), int(minSize), truncate(parser.TextContent(n), 30))))
		}
	}
	return out
}

func checkCanvasBounds(c *Context) []doctree.Finding {
	var out []doctree.Finding
	for _, n := range parser.Elements(c.Doc.Tree, "rect") {
		x, okX := floatAttr(n, "x")
		y, okY := floatAttr(n, "y")
		w, okW := floatAttr(n, "width")
		h, okH := floatAttr(n, "height")
		if !okX || !okY || !okW || !okH {
			continue
		}
		if x+w > CanvasWidth {
			out = append(out, finding("G-018",
				fmt.Sprintf("Element extends past canvas right edge (ends at %s)", formatNum(x+w))))
		}
		if y+h > CanvasHeight {
			out = append(out, finding("G-018",
				fmt.Sprintf("Element extends past canvas bottom (ends at %s)", formatNum(y+h))))
		}
	}
	return out
}

// checkLayoutUsage estimates the rightmost painted x. Text is assumed to be
// 200px wide.
func checkLayoutUsage(c *Context) []doctree.Finding {
	var rightmost float64
	for _, n := range parser.Elements(c.Doc.Tree, "rect") {
		x, okX := floatAttr(n, "x")
		w, okW := floatAttr(n, "width")
		if okX && okW {
			rightmost = math.Max(rightmost, x+w)
		}
	}
	for _, n := range parser.Elements(c.Doc.Tree, "text") {
		if x, ok := floatAttr(n, "x"); ok {
			rightmost = math.Max(rightmost, x+200)
		}
	}
	unused := CanvasWidth - rightmost
	if unused > MaxUnusedRightSpace {
		return []doctree.Finding{finding("LAYOUT-001",
			fmt.Sprintf("%dpx unused space on right (rightmost element at x=%d)", int(unused), int(rightmost)))}
	}
	return nil
}

func checkClickableBadges(c *Context) []doctree.Finding {
	text := c.Text()
	var out []doctree.Finding
	for _, m := range badgeTextRe.FindAllStringSubmatchIndex(text, -1) {
		before := text[max(0, m[0]-200):m[0]]
		after := text[m[1]:min(len(text), m[1]+50)]
		linked := (strings.Contains(before, "<a ") || strings.Contains(before, "<a>")) && strings.Contains(after, "</a>")
		if linked {
			continue
		}
		out = append(out, finding("LINK-001",
			fmt.Sprintf("Badge '%s' is not clickable (wrap in <a href='...'>)", text[m[2]:m[3]])).
			At(c.Line(m[0])))
	}
	return out
}

func checkAnnotationSpacing(c *Context) []doctree.Finding {
	text := c.Text()
	m := panelTranslateRe.FindStringSubmatchIndex(text)
	if m == nil {
		return nil
	}
	panelY, _ := strconv.Atoi(text[m[2]:m[3]])
	window := text[m[1]:min(len(text), m[1]+500)]
	height, ok := intMatch(rectHeightRe, window)
	if !ok {
		return nil
	}
	if bottom := panelY + height; bottom > signatureGapY {
		return []doctree.Finding{finding("LAYOUT-002",
			fmt.Sprintf("Annotation panel clips into signature area (ends at y=%d, need gap before y=1040)", bottom)).
			At(c.Line(m[0]))}
	}
	return nil
}

func checkBadgeContainment(c *Context) []doctree.Finding {
	text := c.Text()
	var out []doctree.Finding
	for _, loc := range badgeRectRe.FindAllStringIndex(text, -1) {
		rect := text[loc[0]:loc[1]]
		if strings.Contains(rect, `width="4`) || strings.Contains(rect, `width="5`) {
			continue
		}
		x, okX := intMatch(xRe, rect)
		w, okW := intMatch(widthRe, rect)
		if !okX || !okW {
			continue
		}
		right := x + w
		line := c.Line(loc[0])
		switch {
		case x < 40:
		case x < 1360:
			y, ok := intMatch(yRe, rect)
			if !ok {
				continue
			}
			if y > 800 {
				if right > AnnotationPanelRight {
					out = append(out, finding("G-036",
						fmt.Sprintf("Badge at x=%d overflows annotation panel (right edge %d > %d)", x, right, AnnotationPanelRight)).At(line))
				}
			} else if right > DesktopMockupRight {
				out = append(out, finding("G-036",
					fmt.Sprintf("Badge at x=%d overflows desktop mockup (right edge %d > %d)", x, right, DesktopMockupRight)).At(line))
			}
		default:
			if right > MobileMockupRight {
				out = append(out, finding("G-036",
					fmt.Sprintf("Badge at x=%d overflows mobile mockup (right edge %d > %d)", x, right, MobileMockupRight)).At(line))
			}
		}
	}
	return out
}

func checkAnnotationColumns(c *Context) []doctree.Finding {
	ann, off := c.Annotations()
	if ann == "" {
		return nil
	}
	lastEnd := annotationColumns[len(annotationColumns)-1][1]
	var out []doctree.Finding
	for _, m := range columnTextRe.FindAllStringSubmatchIndex(ann, -1) {
		x, err := strconv.Atoi(ann[m[2]:m[3]])
		if err != nil {
			continue
		}
		content := ann[m[4]:m[5]]
		width := utf8.RuneCountInString(content) * 8
		end := x + width

		fits, startsInColumn := false, false
		for _, col := range annotationColumns {
			if x >= col[0] && end <= col[1] {
				fits = true
			}
			if x >= col[0] && x < col[1] {
				startsInColumn = true
			}
		}
		if fits || width <= 100 || !startsInColumn || end <= lastEnd {
			continue
		}
		out = append(out, finding("ANN-003",
			fmt.Sprintf("Text overflows column boundary: '%s...' (x=%d, est. end=%d)", truncate(content, 30), x, end)).
			At(c.Line(off+m[0])))
	}
	return out
}

// annotationGroup returns the body of the annotation <g>, found by
// balancing nested groups. ok is false when a closing tag is missing.
func annotationGroup(ann string) (string, bool) {
	gt := strings.IndexByte(ann, '>')
	if gt < 0 {
		return "", false
	}
	depth, pos := 1, gt+1
	for pos < len(ann) {
		nextClose := strings.Index(ann[pos:], "</g>")
		if nextClose < 0 {
			return "", false
		}
		nextClose += pos
		nextOpen := strings.Index(ann[pos:], "<g")
		if nextOpen >= 0 && pos+nextOpen < nextClose {
			depth++
			pos += nextOpen + 2
			continue
		}
		depth--
		if depth == 0 {
			return ann[:nextClose], true
		}
		pos = nextClose + 4
	}
	return ann[:min(len(ann), annotationGroupFallback)], true
}

func checkAnnotationContainment(c *Context) []doctree.Finding {
	ann, off := c.Annotations()
	if ann == "" {
		return nil
	}
	group, ok := annotationGroup(ann)
	if !ok {
		return nil
	}
	var out []doctree.Finding
	for _, m := range xRe.FindAllStringSubmatchIndex(group, -1) {
		if x, err := strconv.Atoi(group[m[2]:m[3]]); err == nil && x > AnnotationPanelMaxX {
			out = append(out, finding("ANN-004",
				fmt.Sprintf("Content extends beyond annotation panel (x=%d > %d)", x, AnnotationPanelMaxX)).
				At(c.Line(off+m[0])))
		}
	}
	for _, m := range yRe.FindAllStringSubmatchIndex(group, -1) {
		if y, err := strconv.Atoi(group[m[2]:m[3]]); err == nil && y > AnnotationPanelMaxY {
			out = append(out, finding("ANN-004",
				fmt.Sprintf("Content extends beyond annotation panel (y=%d > %d)", y, AnnotationPanelMaxY)).
				At(c.Line(off+m[0])))
		}
	}
	return out
}

func checkMobileContentPosition(c *Context) []doctree.Finding {
	text := c.Text()
	g := mobileGroupRe.FindStringIndex(text)
	if g == nil {
		return nil
	}
	h := mobileHeaderUseRe.FindStringIndex(text[g[1]:])
	if h == nil {
		return nil
	}
	start := g[1] + h[1]
	window := text[start:min(len(text), start+mobileContentWindow)]
	m := firstContentRe.FindStringSubmatchIndex(window)
	if m == nil {
		return nil
	}
	y, _ := strconv.Atoi(window[m[4]:m[5]])
	if y >= MobileHeaderHeight {
		return nil
	}
	return []doctree.Finding{finding("MOBILE-001",
		fmt.Sprintf("Mobile content y=%d overlaps header zone (must be y >= %d)", y, MobileHeaderHeight)).
		At(c.Line(start + m[0])).WithSnippet(window[m[0]:m[1]])}
}
