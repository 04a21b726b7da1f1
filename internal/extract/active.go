package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/wirecheck/internal/doctree"
)

var (
	directActiveRe = regexp.MustCompile(`<rect[^>]*\bx=["']?(\d+)["']?[^>]*\by=["']?664["']?[^>]*fill=["']#8b5cf6["']?`)
	groupActiveRe  = regexp.MustCompile(`<g[^>]*transform=["']translate\(\s*(\d+)\s*,\s*664\s*\)["'][^>]*>([\s\S]*?)</g>`)
	activeIconRe   = regexp.MustCompile(`<path[^>]*fill=["'](?:#fff(?:fff)?|white)["']`)
)

// Bottom-nav tab offsets. Corner tabs need a path with one rounded corner;
// middle tabs are plain rounded rects.
func isCornerTab(x int) bool { return x == 0 || x == 270 }
func isMiddleTab(x int) bool { return x == 90 || x == 180 }

// mobileActive merges the two markup shapes for an active bottom-nav tab: a
// bare rect at y=664, and a group translated to y=664. A bare rect that sits
// inside a translated group is counted with the group only.
func mobileActive(text string) doctree.MobileActive {
	a := doctree.MobileActive{OverlayRounded: true, CornerUsesPath: true}

	groups := groupActiveRe.FindAllStringSubmatchIndex(text, -1)
	inGroup := func(pos int) bool {
		for _, g := range groups {
			if pos >= g[0] && pos < g[1] {
				return true
			}
		}
		return false
	}

	for _, m := range directActiveRe.FindAllStringSubmatchIndex(text, -1) {
		if inGroup(m[0]) {
			continue
		}
		a.Detected = true
		x, _ := strconv.Atoi(text[m[2]:m[3]])
		switch {
		case isMiddleTab(x):
			if !strings.Contains(text[m[0]:m[1]], "rx=") {
				a.OverlayRounded = false
			}
		case isCornerTab(x):
			a.CornerUsesPath = false
		}
	}

	for _, g := range groups {
		body := text[g[4]:g[5]]
		if !strings.Contains(body, `fill="#8b5cf6"`) {
			continue
		}
		a.Detected = true
		if activeIconRe.MatchString(body) {
			a.HasIcon = true
		}
		x, _ := strconv.Atoi(text[g[2]:g[3]])
		if isCornerTab(x) {
			usesRect := strings.Contains(body, "<rect") && strings.Contains(body, `width="90"`)
			usesPath := strings.Contains(body, "<path") &&
				(strings.Contains(body, "M 0 0 L 90") || strings.Contains(body, "M0 0L90"))
			if usesRect && !usesPath {
				a.CornerUsesPath = false
			}
		}
	}
	return a
}
