package checks

import (
	"log/slog"
	"regexp"

	"github.com/dgallion1/wirecheck/internal/config"
	"github.com/dgallion1/wirecheck/internal/doctree"
)

// Scope says which pass a check belongs to.
type Scope int

const (
	// ScopeMarkup checks read raw text or the tree; they run in validation only.
	ScopeMarkup Scope = iota
	// ScopeStructure checks read only the extracted Record; validation and
	// inspection both run them.
	ScopeStructure
)

// Check is one independent rule family.
type Check struct {
	Name  string
	Scope Scope
	Run   func(c *Context) []doctree.Finding
}

// Engine runs every registered check against a document.
type Engine struct {
	checks    []Check
	exp       config.Expectations
	sigFormat *regexp.Regexp
	log       *slog.Logger
}

// New builds an Engine with the full catalogue.
func New(exp config.Expectations, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		checks:    registry(),
		exp:       exp,
		sigFormat: exp.SignatureFormat(),
		log:       log,
	}
}

// Checks returns the registered checks in run order.
func (e *Engine) Checks() []Check {
	return e.checks
}

// Run evaluates every check. A document that failed strict parsing yields
// exactly one PARSE finding.
func (e *Engine) Run(doc *doctree.Document) []doctree.Finding {
	if doc.ParseErr != nil {
		f := doctree.NewFinding("PARSE", "Failed to parse SVG: "+doc.ParseErr.Error())
		f.Expected, f.Actual = "well-formed SVG", doc.ParseErr.Error()
		return []doctree.Finding{f}
	}
	ctx := e.newContext(doc)
	var out []doctree.Finding
	for _, ch := range e.checks {
		out = append(out, e.runCheck(ch, ctx)...)
	}
	return out
}

// RunStructure evaluates only the Record-based checks. It does not require
// the document to be well-formed.
func (e *Engine) RunStructure(doc *doctree.Document) []doctree.Finding {
	ctx := e.newContext(doc)
	var out []doctree.Finding
	for _, ch := range e.checks {
		if ch.Scope == ScopeStructure {
			out = append(out, e.runCheck(ch, ctx)...)
		}
	}
	return out
}

func (e *Engine) runCheck(ch Check, ctx *Context) (out []doctree.Finding) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("check aborted, no findings recorded",
				"check", ch.Name,
				"file", ctx.Doc.Path,
				"panic", r,
			)
			out = nil
		}
	}()
	return ch.Run(ctx)
}

func registry() []Check {
	return []Check{
		{"xml-syntax", ScopeMarkup, checkXMLSyntax},
		{"svg-root", ScopeMarkup, checkSVGRoot},
		{"panel-colors", ScopeMarkup, checkPanelColors},
		{"toggle-colors", ScopeMarkup, checkToggleColors},
		{"canvas-bounds", ScopeMarkup, checkCanvasBounds},
		{"mobile-frame", ScopeMarkup, checkMobileFrame},
		{"font-sizes", ScopeMarkup, checkFontSizes},
		{"clickable-badges", ScopeMarkup, checkClickableBadges},
		{"layout-usage", ScopeMarkup, checkLayoutUsage},
		{"callout-collisions", ScopeMarkup, checkCalloutCollisions},
		{"annotation-structure", ScopeMarkup, checkAnnotationStructure},
		{"title-format", ScopeMarkup, checkTitleFormat},
		{"section-labels", ScopeMarkup, checkSectionLabels},
		{"clutter", ScopeMarkup, checkClutter},
		{"callout-coverage", ScopeMarkup, checkCalloutCoverage},
		{"button-fills", ScopeMarkup, checkButtonFills},
		{"annotation-spacing", ScopeMarkup, checkAnnotationSpacing},
		{"user-stories", ScopeMarkup, checkUserStories},
		{"modal-overlay", ScopeMarkup, checkModalOverlay},
		{"callout-positioning", ScopeMarkup, checkCalloutPositioning},
		{"annotation-columns", ScopeMarkup, checkAnnotationColumns},
		{"annotation-containment", ScopeMarkup, checkAnnotationContainment},
		{"section-separation", ScopeMarkup, checkSectionSeparation},
		{"annotation-group-spacing", ScopeMarkup, checkAnnotationGroupSpacing},
		{"footer-paint-order", ScopeMarkup, checkFooterPaintOrder},
		{"background-gradient", ScopeMarkup, checkBackgroundGradient},
		{"callouts-on-mockups", ScopeMarkup, checkCalloutsOnMockups},
		{"mobile-content-position", ScopeMarkup, checkMobileContentPosition},
		{"badge-containment", ScopeMarkup, checkBadgeContainment},
		{"annotation-readability", ScopeMarkup, checkAnnotationReadability},

		{"title", ScopeStructure, checkTitle},
		{"signature", ScopeStructure, checkSignature},
		{"includes", ScopeStructure, checkIncludes},
		{"mockup-positions", ScopeStructure, checkMockupPositions},
		{"footer-nav-corners", ScopeStructure, checkFooterNavCorners},
		{"mobile-active-state", ScopeStructure, checkMobileActive},
		{"key-concepts", ScopeStructure, checkKeyConcepts},
	}
}
