package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/wirecheck/internal/doctree"
)

// TitleWindow bounds the title search to the head of the document.
const TitleWindow = 5000

// Include hrefs each slot is expected to carry.
const (
	DesktopHeaderHref = "includes/header-desktop.svg#desktop-header"
	DesktopFooterHref = "includes/footer-desktop.svg#site-footer"
	MobileHeaderHref  = "includes/header-mobile.svg#mobile-header-group"
	MobileFooterHref  = "includes/footer-mobile.svg#mobile-bottom-nav"
)

var (
	textElemRe   = regexp.MustCompile(`<text([^>]*)>([\s\S]*?)</text>`)
	signatureRe  = regexp.MustCompile(`<text([^>]*\by=["']?(?:10[4-9]\d|1[1-9]\d\d)["']?[^>]*)>([\s\S]*?)</text>`)
	xAttrRe      = regexp.MustCompile(`\bx=["']?(\d+)`)
	yAttrRe      = regexp.MustCompile(`\by=["']?(\d+)`)
	anchorRe     = regexp.MustCompile(`text-anchor=["']([^"']+)["']`)
	fontSizeRe   = regexp.MustCompile(`font-size=["']?(\d+)`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	keyConceptRe = regexp.MustCompile(`[Kk]ey\s*[Cc]oncepts\s*:`)
	kcGroupRe    = regexp.MustCompile(`<g[^>]*transform=["']translate\(\s*\d+\s*,\s*(\d+)\s*\)["'][^>]*>\s*(?:<[^>]+>\s*){0,5}[^<]*[Kk]ey\s*[Cc]oncepts`)
	kcTextRe     = regexp.MustCompile(`<text[^>]*\by=["']?(\d+)["']?[^>]*>[^<]*[Kk]ey\s*[Cc]oncepts`)
	wrongLabelRe = regexp.MustCompile(`[Aa]dditional\s*[Rr]equirements\s*:`)

	includeRes = []struct {
		slot func(*doctree.Includes) *string
		re   *regexp.Regexp
		file string
	}{
		{func(i *doctree.Includes) *string { return &i.DesktopHeader }, regexp.MustCompile(`href=["']includes/header-desktop\.svg#([^"']+)["']`), "header-desktop.svg"},
		{func(i *doctree.Includes) *string { return &i.DesktopFooter }, regexp.MustCompile(`href=["']includes/footer-desktop\.svg#([^"']+)["']`), "footer-desktop.svg"},
		{func(i *doctree.Includes) *string { return &i.MobileHeader }, regexp.MustCompile(`href=["']includes/header-mobile\.svg#([^"']+)["']`), "header-mobile.svg"},
		{func(i *doctree.Includes) *string { return &i.MobileFooter }, regexp.MustCompile(`href=["']includes/footer-mobile\.svg#([^"']+)["']`), "footer-mobile.svg"},
	}
)

// navPages maps the active nav entry to file-name keywords, checked in order.
var navPages = []struct {
	page     string
	keywords []string
}{
	{"Home", []string{"landing", "home", "index"}},
	{"Features", []string{"features", "feature"}},
	{"Docs", []string{"docs", "documentation", "guide"}},
	{"Account", []string{"account", "profile", "settings", "auth", "login", "register"}},
}

// Extract scans a document's text for landmarks. It never fails; a landmark
// that cannot be found is left nil or false in the returned Record.
func Extract(name, text string) doctree.Record {
	var rec doctree.Record

	rec.Title = findTitle(text)
	rec.Signature = findSignature(text)

	rec.Desktop = GroupOrigin(text, "desktop")
	rec.Mobile = GroupOrigin(text, "mobile")
	rec.Annotations = GroupOrigin(text, "annotations")

	rec.Viewports = doctree.Viewports{
		Desktop: strings.Contains(text, `id="desktop"`) || strings.Contains(text, "DESKTOP"),
		Mobile:  strings.Contains(text, `id="mobile"`) || strings.Contains(text, "MOBILE"),
	}

	for _, inc := range includeRes {
		if m := inc.re.FindStringSubmatch(text); m != nil {
			*inc.slot(&rec.Includes) = "includes/" + inc.file + "#" + m[1]
		}
	}

	rec.NavPage = navPage(name)
	rec.DesktopFooter = DesktopFooterCorners.Evaluate(text)
	rec.MobileNav = MobileNavCorners.Evaluate(text)
	rec.Active = mobileActive(text)
	rec.KeyConcepts = keyConcepts(text)

	return rec
}

func findTitle(text string) *doctree.Label {
	head := text
	if len(head) > TitleWindow {
		head = head[:TitleWindow]
	}
	for _, m := range textElemRe.FindAllStringSubmatchIndex(head, -1) {
		attrs := head[m[2]:m[3]]
		if !strings.Contains(attrs, `text-anchor="middle"`) && !strings.Contains(attrs, `text-anchor='middle'`) {
			continue
		}
		y, ok := intAttr(yAttrRe, attrs)
		if !ok || y >= 50 {
			continue
		}
		l := &doctree.Label{Y: y, Anchor: "middle", Offset: m[0]}
		l.X, l.HasX = intAttr(xAttrRe, attrs)
		l.FontSize, _ = intAttr(fontSizeRe, attrs)
		l.Bold = isBold(attrs)
		l.Text = collapse(head[m[4]:m[5]])
		return l
	}
	return nil
}

func findSignature(text string) *doctree.Label {
	m := signatureRe.FindStringSubmatchIndex(text)
	if m == nil {
		return nil
	}
	attrs := text[m[2]:m[3]]
	l := &doctree.Label{Offset: m[0]}
	l.Y, _ = intAttr(yAttrRe, attrs)
	l.X, l.HasX = intAttr(xAttrRe, attrs)
	l.FontSize, _ = intAttr(fontSizeRe, attrs)
	l.Bold = isBold(attrs)
	if am := anchorRe.FindStringSubmatch(attrs); am != nil {
		l.Anchor = am[1]
	}
	l.Text = collapse(text[m[4]:m[5]])
	return l
}

// GroupOrigin returns the translate(x,y) of the <g> whose id is id, accepting
// either attribute order.
func GroupOrigin(text, id string) *doctree.Origin {
	res, ok := originRes[id]
	if !ok {
		res = originPatterns(id)
	}
	for _, re := range res {
		if m := re.FindStringSubmatch(text); m != nil {
			x, _ := strconv.Atoi(m[1])
			y, _ := strconv.Atoi(m[2])
			return &doctree.Origin{X: x, Y: y}
		}
	}
	return nil
}

var originRes = map[string][]*regexp.Regexp{
	"desktop":     originPatterns("desktop"),
	"mobile":      originPatterns("mobile"),
	"annotations": originPatterns("annotations"),
}

func originPatterns(id string) []*regexp.Regexp {
	q := regexp.QuoteMeta(id)
	return []*regexp.Regexp{
		regexp.MustCompile(`<g[^>]*id=["']` + q + `["'][^>]*transform=["']translate\(\s*(\d+)\s*,\s*(\d+)\s*\)`),
		regexp.MustCompile(`<g[^>]*transform=["']translate\(\s*(\d+)\s*,\s*(\d+)\s*\)["'][^>]*id=["']` + q + `["']`),
	}
}

func navPage(name string) string {
	lower := strings.ToLower(name)
	for _, np := range navPages {
		for _, kw := range np.keywords {
			if strings.Contains(lower, kw) {
				return np.page
			}
		}
	}
	return ""
}

// keyConcepts tries the enclosing group's translate y first and reads it as
// an absolute coordinate, then falls back to a y attribute on the text.
func keyConcepts(text string) doctree.KeyConcepts {
	kc := doctree.KeyConcepts{
		Present:    keyConceptRe.MatchString(text),
		WrongLabel: wrongLabelRe.MatchString(text),
	}
	if !kc.Present {
		return kc
	}
	if m := kcGroupRe.FindStringSubmatch(text); m != nil {
		kc.Y, _ = strconv.Atoi(m[1])
	}
	if kc.Y == 0 {
		if m := kcTextRe.FindStringSubmatch(text); m != nil {
			kc.Y, _ = strconv.Atoi(m[1])
		}
	}
	kc.HasY = kc.Y != 0
	return kc
}

func intAttr(re *regexp.Regexp, s string) (int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isBold(attrs string) bool {
	return strings.Contains(attrs, `font-weight="bold"`) ||
		strings.Contains(attrs, "font-weight:bold") ||
		strings.Contains(attrs, `font-weight="700"`)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(tagRe.ReplaceAllString(s, "")), " ")
}
