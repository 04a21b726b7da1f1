package doctree

import (
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// SeverityError is the only severity a Finding ever carries.
const SeverityError = "ERROR"

// Document is one wireframe screen loaded for a single run.
type Document struct {
	Path    string // Path as discovered (relative to the corpus root when walked)
	Feature string // Parent directory name, e.g. "002-cookie-consent"
	Name    string // Base file name, e.g. "01-consent-modal.svg"
	Text    string // Raw document text

	// Root holds the attributes of the root element when the document is well-formed.
	Root map[string]string
	// Tree is the tolerant parse of Text (nil if tree building failed).
	Tree *html.Node
	// ParseErr is set when strict XML parsing failed.
	ParseErr error

	Lines  *LineIndex
	Record Record
}

// NewDocument builds a Document shell from a path and raw text.
func NewDocument(path, text string) *Document {
	return &Document{
		Path:    path,
		Feature: filepath.Base(filepath.Dir(path)),
		Name:    filepath.Base(path),
		Text:    text,
		Lines:   NewLineIndex(text),
	}
}

// Stem returns the file name without its extension.
func (d *Document) Stem() string {
	return strings.TrimSuffix(d.Name, filepath.Ext(d.Name))
}

// Finding is a single rule violation or presence gap.
type Finding struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`    // 1-based, 0 when not applicable
	Snippet  string `json:"snippet,omitempty"` // Raw matched text, truncated

	// Expected/Actual are filled by landmark checks that compare against a pattern.
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// NewFinding returns an ERROR finding.
func NewFinding(code, message string) Finding {
	return Finding{Severity: SeverityError, Code: code, Message: message}
}

// At returns a copy of f positioned at the given line.
func (f Finding) At(line int) Finding {
	f.Line = line
	return f
}

// WithSnippet returns a copy of f carrying up to 60 characters of raw text.
func (f Finding) WithSnippet(s string) Finding {
	if len(s) > 60 {
		s = s[:60]
	}
	f.Snippet = s
	return f
}

// Label is a located <text> landmark (title or signature).
type Label struct {
	X        int    `json:"x,omitempty"`
	HasX     bool   `json:"has_x"`
	Y        int    `json:"y"`
	Anchor   string `json:"anchor,omitempty"`
	Bold     bool   `json:"bold"`
	FontSize int    `json:"font_size,omitempty"` // 0 when the attribute is absent
	Text     string `json:"text,omitempty"`
	Offset   int    `json:"-"` // Byte offset of the <text tag
}

// Origin is the literal translate(x,y) of a named group.
type Origin struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Includes records the href of each include slot ("" when absent).
type Includes struct {
	DesktopHeader string `json:"desktop_header,omitempty"`
	DesktopFooter string `json:"desktop_footer,omitempty"`
	MobileHeader  string `json:"mobile_header,omitempty"`
	MobileFooter  string `json:"mobile_footer,omitempty"`
}

// Viewports records which mockup regions the document declares.
type Viewports struct {
	Desktop bool `json:"desktop"`
	Mobile  bool `json:"mobile"`
}

// Corners is the outcome of the footer/nav corner predicate for one region.
type Corners struct {
	Include bool `json:"include"` // Region comes from an include (corners drawn there)
	Rounded bool `json:"rounded"` // An inline footer rect carries rx
	// Bare holds the offset of every inline footer rect without rx.
	Bare []int `json:"-"`
}

// OK reports whether the region is rounded one way or the other. Any bare
// inline rect fails the region unless the include draws it.
func (c Corners) OK() bool {
	return c.Include || (c.Rounded && len(c.Bare) == 0)
}

// MobileActive holds the merged mobile bottom-nav active-state flags.
type MobileActive struct {
	Detected       bool `json:"detected"`
	OverlayRounded bool `json:"overlay_rounded"`
	HasIcon        bool `json:"has_icon"`
	CornerUsesPath bool `json:"corner_uses_path"`
}

// KeyConcepts holds presence and position of the Key Concepts row.
type KeyConcepts struct {
	Present    bool `json:"present"`
	Y          int  `json:"y,omitempty"`
	HasY       bool `json:"has_y"`
	WrongLabel bool `json:"wrong_label"`
}

// Record is the set of landmarks extracted from one document's text.
// Every pointer field is nil when the landmark is absent.
type Record struct {
	Title       *Label  `json:"title"`
	Signature   *Label  `json:"signature"`
	Desktop     *Origin `json:"desktop_mockup"`
	Mobile      *Origin `json:"mobile_mockup"`
	Annotations *Origin `json:"annotation_panel"`

	Viewports Viewports `json:"viewports"`
	Includes  Includes  `json:"includes"`
	NavPage   string    `json:"nav_active_page,omitempty"`

	DesktopFooter Corners `json:"desktop_footer_corners"`
	MobileNav     Corners `json:"mobile_nav_corners"`

	Active      MobileActive `json:"mobile_active"`
	KeyConcepts KeyConcepts  `json:"key_concepts"`
}
