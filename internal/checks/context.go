package checks

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/wirecheck/internal/config"
	"github.com/dgallion1/wirecheck/internal/doctree"
)

// Canvas and region constants shared by the layout checks.
const (
	CanvasWidth         = 1920
	CanvasHeight        = 1080
	MinFontSize         = 14
	BadgeMinFontSize    = 11
	MaxUnusedRightSpace = 200

	MobileHeaderHeight = 78
	DesktopFooterY     = 640
	MobileFooterY      = 664
	FooterMargin       = 30

	AnnotationPanelMaxX = 1800
	AnnotationPanelMaxY = 200

	DesktopMockupRight   = 1320
	MobileMockupRight    = 1720
	AnnotationPanelRight = 1880
)

const annotationsMarker = `id="annotations"`

var (
	calloutRe = regexp.MustCompile(`<circle[^>]*fill=["']?#dc2626["']?[^>]*>`)
	fillRe    = regexp.MustCompile(`fill=["']?([^"'\s>]+)`)
	xRe       = regexp.MustCompile(`\bx=["']?(\d+)`)
	yRe       = regexp.MustCompile(`\by=["']?(\d+)`)
	cxRe      = regexp.MustCompile(`\bcx=["']?(\d+)`)
	cyRe      = regexp.MustCompile(`\bcy=["']?(\d+)`)
	rRe       = regexp.MustCompile(`\br=["']?(\d+)`)
	rxRe      = regexp.MustCompile(`\brx=["']?(\d+)`)
	widthRe   = regexp.MustCompile(`\swidth=["']?(\d+)`)
	heightRe  = regexp.MustCompile(`\sheight=["']?(\d+)`)
)

// Context is the per-document state shared by all checks.
type Context struct {
	Doc       *doctree.Document
	Exp       config.Expectations
	SigFormat *regexp.Regexp

	annStart int
}

func (e *Engine) newContext(doc *doctree.Document) *Context {
	start := strings.Index(doc.Text, annotationsMarker)
	if start < 0 {
		start = len(doc.Text)
	}
	return &Context{Doc: doc, Exp: e.exp, SigFormat: e.sigFormat, annStart: start}
}

// Text returns the raw document text.
func (c *Context) Text() string { return c.Doc.Text }

// Rec returns the extracted landmarks.
func (c *Context) Rec() *doctree.Record { return &c.Doc.Record }

// Line maps a byte offset to its line.
func (c *Context) Line(pos int) int { return c.Doc.Lines.Line(pos) }

// HasAnnotations reports whether the annotation panel group exists.
func (c *Context) HasAnnotations() bool { return c.annStart < len(c.Doc.Text) }

// Annotations returns the text from the annotation marker to the end and
// its offset. Empty when there is no panel.
func (c *Context) Annotations() (string, int) {
	if !c.HasAnnotations() {
		return "", c.annStart
	}
	return c.Doc.Text[c.annStart:], c.annStart
}

// Mockups returns the text before the annotation panel.
func (c *Context) Mockups() string { return c.Doc.Text[:c.annStart] }

// section is a slice of document text and where it starts.
type section struct {
	text   string
	offset int
}

// viewports splits the mockup text into desktop and mobile sections. A
// missing viewport yields a nil pointer.
func (c *Context) viewports() (desktop, mobile *section) {
	mock := c.Mockups()
	ds := strings.Index(mock, `id="desktop"`)
	ms := strings.Index(mock, `id="mobile"`)
	if ds >= 0 {
		end := len(mock)
		if ms > ds {
			end = ms
		}
		desktop = &section{text: mock[ds:end], offset: ds}
	}
	if ms >= 0 {
		mobile = &section{text: mock[ms:], offset: ms}
	}
	return desktop, mobile
}

func finding(code, format string) doctree.Finding {
	return doctree.NewFinding(code, format)
}

// intMatch returns the first submatch of re in s as an int.
func intMatch(re *regexp.Regexp, s string) (int, bool) {
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

func fillOf(s string) string {
	m := fillRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

func isBold(s string) bool {
	return strings.Contains(s, `font-weight="bold"`) || strings.Contains(s, "font-weight:bold")
}

func isCentered(s string) bool {
	return strings.Contains(s, `text-anchor="middle"`) || strings.Contains(s, "text-anchor:middle")
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
