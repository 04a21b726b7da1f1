package checks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/wirecheck/internal/doctree"
)

const minUserStories = 3

var (
	userStoryRe = regexp.MustCompile(`US-\d{3}`)

	pageIndicators  = []string{"settings", "dashboard", "policy", "page", "profile", "account", "management"}
	modalIndicators = []string{"modal", "dialog", "consent", "cookie preferences", "privacy preferences"}

	darkOverlayRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)fill=["']?rgba\s*\(\s*0\s*,\s*0\s*,\s*0`),
		regexp.MustCompile(`(?i)fill=["']?#000["']?`),
		regexp.MustCompile(`(?i)fill=["']?black["']?`),
		regexp.MustCompile(`(?i)opacity=["']?0\.[3-6]["']?[^>]*fill=["']?#000`),
	}
	lightOverlayRe = regexp.MustCompile(`(?i)fill=["']?#[d-f][0-9a-f]{5}["']?[^>]*opacity=["']?0\.[3-9]`)

	paintOrderIndicators = []string{"modal", "dialog", "consent", `opacity="0.5"`, `opacity="0.4"`}
	footerUseRe          = regexp.MustCompile(`<use[^>]*footer-desktop\.svg`)
	overlayRectRe        = regexp.MustCompile(`<rect[^>]*opacity=["']?0\.[3-6]`)
)

func checkUserStories(c *Context) []doctree.Finding {
	ann, _ := c.Annotations()
	if ann == "" {
		return nil
	}
	unique := make(map[string]bool)
	for _, id := range userStoryRe.FindAllString(ann, -1) {
		unique[id] = true
	}
	switch n := len(unique); {
	case n == 0:
		return []doctree.Finding{finding("US-001",
			"No User Story badges found in annotation panel - each group should be anchored by a US")}
	case n < minUserStories:
		return []doctree.Finding{finding("US-002",
			fmt.Sprintf("Only %d User Story badges found - need at least %d User Stories", n, minUserStories))}
	}
	return nil
}

// checkModalOverlay requires a dark dimming overlay behind modals. Pages
// that merely mention modal words are skipped unless the title names a
// modal or dialog explicitly.
func checkModalOverlay(c *Context) []doctree.Finding {
	lower := strings.ToLower(c.Text())
	head := lower[:min(len(lower), titleWindow)]
	path := strings.ToLower(c.Doc.Path)

	isPage := false
	for _, ind := range pageIndicators {
		if strings.Contains(path, ind) || strings.Contains(head, ">"+ind) || strings.Contains(head, " "+ind) {
			isPage = true
			break
		}
	}
	explicit := strings.Contains(head, "modal") || strings.Contains(head, "dialog")
	if isPage && !explicit {
		return nil
	}

	hasModal := false
	for _, ind := range modalIndicators {
		if strings.Contains(lower, ind) {
			hasModal = true
			break
		}
	}
	if !hasModal {
		return nil
	}

	if lightOverlayRe.MatchString(c.Text()) {
		return []doctree.Finding{finding("MODAL-001",
			"Modal uses light-colored overlay - use dark grey/black (rgba(0,0,0,0.5)) for proper dimming")}
	}
	for _, re := range darkOverlayRes {
		if re.MatchString(c.Text()) {
			return nil
		}
	}
	return []doctree.Finding{finding("MODAL-001",
		"Modal detected but no dimmed background overlay found (use semi-transparent dark rect behind modal)")}
}

// checkFooterPaintOrder flags a desktop footer include painted before the
// first semi-transparent overlay, which would hide it under the dimming.
func checkFooterPaintOrder(c *Context) []doctree.Finding {
	lower := strings.ToLower(c.Text())
	hasModal := false
	for _, ind := range paintOrderIndicators {
		if strings.Contains(lower, ind) {
			hasModal = true
			break
		}
	}
	if !hasModal {
		return nil
	}
	footer := footerUseRe.FindStringIndex(c.Text())
	overlay := overlayRectRe.FindStringIndex(c.Text())
	if footer == nil || overlay == nil || footer[0] >= overlay[0] {
		return nil
	}
	return []doctree.Finding{finding("G-021",
		"Footer <use> appears BEFORE modal overlay - will be hidden. Move footer after modal content.").
		At(c.Line(footer[0]))}
}
