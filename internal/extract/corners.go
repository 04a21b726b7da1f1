package extract

import (
	"regexp"
	"strings"

	"github.com/dgallion1/wirecheck/internal/doctree"
)

// CornerRule decides whether a footer or bottom-nav region is drawn with
// rounded corners. A region passes when it comes from the include file
// (whose paths carry the corners) or when every inline footer rect has rx.
type CornerRule interface {
	Region() string
	Evaluate(text string) doctree.Corners
}

type footerRule struct {
	region  string
	include *regexp.Regexp
	rect    *regexp.Regexp
}

var (
	// DesktopFooterCorners matches wide rects in the desktop footer band.
	DesktopFooterCorners CornerRule = footerRule{
		region:  "desktop footer",
		include: regexp.MustCompile(`<use[^>]*href=["']includes/footer-desktop\.svg`),
		rect:    regexp.MustCompile(`<rect[^>]*\by=["']?(?:6[4-9]\d|7[0-7]\d)["']?[^>]*width=["']?1[0-2]\d\d["']?[^>]*`),
	}

	// MobileNavCorners matches phone-width rects in the mobile nav band.
	MobileNavCorners CornerRule = footerRule{
		region:  "mobile nav",
		include: regexp.MustCompile(`<use[^>]*href=["']includes/footer-mobile\.svg`),
		rect:    regexp.MustCompile(`<rect[^>]*\by=["']?(?:66[4-9]|6[7-9]\d|7[0-1]\d)["']?[^>]*width=["']?3[4-6]\d["']?[^>]*`),
	}
)

// CornerRules returns every corner rule in reporting order.
func CornerRules() []CornerRule {
	return []CornerRule{DesktopFooterCorners, MobileNavCorners}
}

func (r footerRule) Region() string { return r.region }

func (r footerRule) Evaluate(text string) doctree.Corners {
	c := doctree.Corners{Include: r.include.MatchString(text)}
	for _, loc := range r.rect.FindAllStringIndex(text, -1) {
		if strings.Contains(text[loc[0]:loc[1]], "rx=") {
			c.Rounded = true
		} else {
			c.Bare = append(c.Bare, loc[0])
		}
	}
	return c
}
