package checks

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/dgallion1/wirecheck/internal/doctree"
)

const (
	minPanelCallouts   = 4
	minMockupCallouts  = 2
	defaultCalloutR    = 14
	groupSpacingWindow = 3000
	minSummaryY        = 140
)

var (
	anyRectRe      = regexp.MustCompile(`<rect[^>]*>`)
	buttonRxRe     = regexp.MustCompile(`\brx=["']?[4-8]\b`)
	panelCircleRes = []*regexp.Regexp{
		regexp.MustCompile(`<circle[^>]*\bcy=["']?(\d+)["']?[^>]*fill=["']?#dc2626`),
		regexp.MustCompile(`<circle[^>]*fill=["']?#dc2626["']?[^>]*\bcy=["']?(\d+)`),
	}
	summaryIndicators = []string{"UI Elements", "Summary", "Notes"}
	summaryRes        = func() map[string]*regexp.Regexp {
		m := make(map[string]*regexp.Regexp, len(summaryIndicators))
		for _, ind := range summaryIndicators {
			q := regexp.QuoteMeta(ind)
			m[ind] = regexp.MustCompile(q + `[^<]*</text>|<text[^>]*>.*?` + q)
		}
		return m
	}()
)

func checkCalloutCollisions(c *Context) []doctree.Finding {
	desktop, mobile := c.viewports()
	var out []doctree.Finding
	scan := func(s *section, footerY int, name string) {
		if s == nil {
			return
		}
		for _, loc := range calloutRe.FindAllStringIndex(s.text, -1) {
			circle := s.text[loc[0]:loc[1]]
			cy, ok := intMatch(cyRe, circle)
			if !ok {
				continue
			}
			r, ok := intMatch(rRe, circle)
			if !ok {
				r = defaultCalloutR
			}
			if cy+r >= footerY-FooterMargin {
				out = append(out, finding("COLL-001",
					fmt.Sprintf("Callout at cy=%d too close to %s footer (y=%d) - move up", cy, name, footerY)).
					At(c.Line(s.offset+loc[0])))
			}
		}
	}
	scan(desktop, DesktopFooterY, "desktop")
	scan(mobile, MobileFooterY, "mobile")
	return out
}

func checkAnnotationStructure(c *Context) []doctree.Finding {
	ann, _ := c.Annotations()
	if ann == "" {
		return []doctree.Finding{finding("ANN-001", "No annotation panel found (expected id='annotations')")}
	}
	if n := len(calloutRe.FindAllStringIndex(ann, -1)); n < minPanelCallouts {
		return []doctree.Finding{finding("ANN-002",
			fmt.Sprintf("Only %d callout circles in annotation panel (minimum %d required)", n, minPanelCallouts))}
	}
	return nil
}

func checkCalloutCoverage(c *Context) []doctree.Finding {
	ann, _ := c.Annotations()
	if ann == "" {
		return nil
	}
	mock := len(calloutRe.FindAllStringIndex(c.Mockups(), -1))
	panel := len(calloutRe.FindAllStringIndex(ann, -1))
	if mock < panel {
		return []doctree.Finding{finding("CALLOUT-002",
			fmt.Sprintf("Mockup missing %d callout circles (annotation has %d concepts, mockup only illustrates %d)", panel-mock, panel, mock))}
	}
	return nil
}

func checkCalloutsOnMockups(c *Context) []doctree.Finding {
	if !c.HasAnnotations() {
		return nil
	}
	if n := len(calloutRe.FindAllStringIndex(c.Mockups(), -1)); n < minMockupCallouts {
		return []doctree.Finding{finding("G-026",
			fmt.Sprintf("Only %d callout circles on mockups. Need numbered callouts (①②③④) ON the UI elements.", n))}
	}
	return nil
}

type button struct {
	x, y, w, h int
}

func (b button) contains(x, y int) bool {
	return b.x <= x && x <= b.x+b.w && b.y <= y && y <= b.y+b.h
}

func buttonsIn(s string) []button {
	var out []button
	for _, rect := range anyRectRe.FindAllString(s, -1) {
		if !buttonRxRe.MatchString(rect) {
			continue
		}
		x, okX := intMatch(xRe, rect)
		y, okY := intMatch(yRe, rect)
		w, okW := intMatch(widthRe, rect)
		h, okH := intMatch(heightRe, rect)
		if !okX || !okY || !okW || !okH {
			continue
		}
		if w >= 60 && w <= 200 && h >= 25 && h <= 50 {
			out = append(out, button{x, y, w, h})
		}
	}
	return out
}

// checkCalloutPositioning compares callouts with buttons of the same
// viewport only, since each viewport has its own coordinate space.
func checkCalloutPositioning(c *Context) []doctree.Finding {
	desktop, mobile := c.viewports()
	var out []doctree.Finding
	for _, s := range []*section{desktop, mobile} {
		if s == nil {
			continue
		}
		buttons := buttonsIn(s.text)
		for _, loc := range calloutRe.FindAllStringIndex(s.text, -1) {
			circle := s.text[loc[0]:loc[1]]
			cx, okX := intMatch(cxRe, circle)
			cy, okY := intMatch(cyRe, circle)
			if !okX || !okY {
				continue
			}
			for _, b := range buttons {
				if b.contains(cx, cy) {
					out = append(out, finding("CALLOUT-003",
						fmt.Sprintf("Callout at (%d,%d) overlaps button at (%d,%d) - place after (right/below) instead", cx, cy, b.x, b.y)).
						At(c.Line(s.offset+loc[0])))
					break
				}
			}
		}
	}
	return out
}

func checkSectionSeparation(c *Context) []doctree.Finding {
	ann, _ := c.Annotations()
	if ann == "" {
		return nil
	}
	var out []doctree.Finding
	for _, ind := range summaryIndicators {
		loc := summaryRes[ind].FindStringIndex(ann)
		if loc == nil {
			continue
		}
		window := ann[max(0, loc[0]-100):min(len(ann), loc[1]+50)]
		y, ok := intMatch(yRe, window)
		if ok && y < minSummaryY {
			out = append(out, finding("ANN-005",
				fmt.Sprintf("'%s' section at y=%d is too close to callouts - move to y>=150 for visual separation", ind, y)))
		}
	}
	return out
}

func checkAnnotationGroupSpacing(c *Context) []doctree.Finding {
	ann, _ := c.Annotations()
	if ann == "" {
		return nil
	}
	head := ann[:min(len(ann), groupSpacingWindow)]
	seen := make(map[int]bool)
	var ys []int
	for _, re := range panelCircleRes {
		for _, m := range re.FindAllStringSubmatch(head, -1) {
			y, err := strconv.Atoi(m[1])
			if err != nil || seen[y] {
				continue
			}
			seen[y] = true
			ys = append(ys, y)
		}
	}
	sort.Ints(ys)

	var out []doctree.Finding
	for i := 1; i < len(ys); i++ {
		if gap := ys[i] - ys[i-1]; gap > 0 && gap < 60 {
			out = append(out, finding("G-020",
				fmt.Sprintf("Annotation groups too close: y=%d to y=%d (gap=%dpx, need 70px between rows)", ys[i-1], ys[i], gap)))
		}
	}
	return out
}
