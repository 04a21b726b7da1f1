package checks

import (
	"fmt"
	"strings"

	"github.com/dgallion1/wirecheck/internal/config"
	"github.com/dgallion1/wirecheck/internal/doctree"
	"github.com/dgallion1/wirecheck/internal/extract"
)

// violation is a finding that compares a landmark with its expected form.
func violation(code, message, expected, actual string) doctree.Finding {
	f := doctree.NewFinding(code, message)
	f.Expected = expected
	f.Actual = actual
	return f
}

// outOfTolerance treats a zero coordinate as unset.
func outOfTolerance(got, want, tol int) bool {
	return got != 0 && absInt(got-want) > tol
}

func checkTitle(c *Context) []doctree.Finding {
	exp := c.Exp.Title
	tol := c.Exp.PositionTolerance
	t := c.Rec().Title
	if t == nil {
		return []doctree.Finding{violation("title_missing",
			fmt.Sprintf(`Missing centered title block at y=%d. Add text-anchor="middle" title.`, exp.Y),
			fmt.Sprintf("centered title at y=%d", exp.Y), "no title found")}
	}
	var out []doctree.Finding
	line := c.Line(t.Offset)
	if outOfTolerance(t.Y, exp.Y, tol) {
		out = append(out, violation("title_y_position",
			fmt.Sprintf("Title at y=%d, expected y=%d", t.Y, exp.Y),
			fmt.Sprintf("y=%d", exp.Y), fmt.Sprintf("y=%d", t.Y)).At(line))
	}
	if t.HasX && outOfTolerance(t.X, exp.X, tol) {
		out = append(out, violation("title_x_position",
			fmt.Sprintf("Title at x=%d, expected x=%d", t.X, exp.X),
			fmt.Sprintf("x=%d", exp.X), fmt.Sprintf("x=%d", t.X)).At(line))
	}
	return out
}

func checkSignature(c *Context) []doctree.Finding {
	exp := c.Exp.Signature
	s := c.Rec().Signature
	if s == nil {
		return []doctree.Finding{violation("signature_missing",
			fmt.Sprintf("Missing signature block at y=%d. Add %dpx bold signature.", exp.Y, exp.MinFontSize),
			fmt.Sprintf("signature at y=%d", exp.Y), "no signature found")}
	}
	var out []doctree.Finding
	line := c.Line(s.Offset)

	if outOfTolerance(s.Y, exp.Y, c.Exp.PositionTolerance) {
		out = append(out, violation("signature_y_position",
			fmt.Sprintf("Signature at y=%d, expected y=%d", s.Y, exp.Y),
			fmt.Sprintf("y=%d", exp.Y), fmt.Sprintf("y=%d", s.Y)).At(line))
	}
	if s.FontSize > 0 && s.FontSize < exp.MinFontSize {
		out = append(out, violation("SIGNATURE-001",
			fmt.Sprintf("Signature font too small (%dpx) - use %dpx", s.FontSize, exp.MinFontSize),
			fmt.Sprintf("font-size>=%d", exp.MinFontSize), fmt.Sprintf("font-size=%d", s.FontSize)).At(line))
	}
	if !s.Bold {
		out = append(out, violation("SIGNATURE-002", "Signature must be bold",
			`font-weight="bold"`, "not bold").At(line))
	}

	// Position and anchor are reported separately.
	if s.HasX && s.X != exp.X {
		out = append(out, violation("SIGNATURE-003",
			fmt.Sprintf("Signature must be left-aligned at x=%d, got x=%d", exp.X, s.X),
			fmt.Sprintf(`x="%d" (left-aligned)`, exp.X), fmt.Sprintf("x=%d", s.X)).At(line))
	}
	if s.Anchor == "middle" {
		out = append(out, violation("SIGNATURE-003",
			fmt.Sprintf(`Signature must NOT use text-anchor="middle" - use left-alignment at x=%d`, exp.X),
			`text-anchor="start"`, `text-anchor="middle"`).At(line))
	}

	if s.Text != "" && !c.SigFormat.MatchString(s.Text) {
		shown := s.Text
		if len([]rune(shown)) > 50 {
			shown = truncate(shown, 47) + "..."
		}
		out = append(out, violation("SIGNATURE-004",
			fmt.Sprintf("Signature format wrong: '%s...' - must be 'NNN:NN | Feature Name | ScriptHammer'", truncate(s.Text, 40)),
			"NNN:NN | Feature Name | ScriptHammer", fmt.Sprintf("%q", shown)).At(line))
	}
	return out
}

// checkIncludes reports every include slot that is absent or points at the
// wrong fragment, for the viewports the document declares.
func checkIncludes(c *Context) []doctree.Finding {
	r := c.Rec()
	if !r.Viewports.Desktop && !r.Viewports.Mobile {
		return nil
	}
	var missing []string
	want := func(got, href string) {
		if got != href {
			missing = append(missing, strings.TrimPrefix(href, "includes/"))
		}
	}
	if r.Viewports.Desktop {
		want(r.Includes.DesktopHeader, extract.DesktopHeaderHref)
		want(r.Includes.DesktopFooter, extract.DesktopFooterHref)
	}
	if r.Viewports.Mobile {
		want(r.Includes.MobileHeader, extract.MobileHeaderHref)
		want(r.Includes.MobileFooter, extract.MobileFooterHref)
	}
	if len(missing) == 0 {
		return nil
	}
	list := strings.Join(missing, ", ")
	return []doctree.Finding{violation("HDR-001",
		fmt.Sprintf(`Missing include references: %s. Use <use href="includes/..."/>`, list),
		"header and footer includes for each viewport", "missing: "+list)}
}

func checkMockupPositions(c *Context) []doctree.Finding {
	r := c.Rec()
	tol := c.Exp.PositionTolerance
	regions := []struct {
		name   string
		label  string
		origin *doctree.Origin
		want   config.Point
	}{
		{"desktop_mockup", "Desktop mockup", r.Desktop, c.Exp.DesktopMockup},
		{"mobile_mockup", "Mobile mockup", r.Mobile, c.Exp.MobileMockup},
		{"annotation_panel", "Annotation panel", r.Annotations, c.Exp.AnnotationPanel},
	}
	var out []doctree.Finding
	for _, reg := range regions {
		if reg.origin == nil {
			continue
		}
		if outOfTolerance(reg.origin.X, reg.want.X, tol) {
			out = append(out, violation(reg.name+"_x",
				fmt.Sprintf("%s at x=%d, expected x=%d", reg.label, reg.origin.X, reg.want.X),
				fmt.Sprintf("x=%d", reg.want.X), fmt.Sprintf("x=%d", reg.origin.X)))
		}
		if outOfTolerance(reg.origin.Y, reg.want.Y, tol) {
			out = append(out, violation(reg.name+"_y",
				fmt.Sprintf("%s at y=%d, expected y=%d", reg.label, reg.origin.Y, reg.want.Y),
				fmt.Sprintf("y=%d", reg.want.Y), fmt.Sprintf("y=%d", reg.origin.Y)))
		}
	}
	return out
}

// checkFooterNavCorners applies the shared corner predicate to each
// viewport the document declares. Each bare inline rect is its own finding.
func checkFooterNavCorners(c *Context) []doctree.Finding {
	r := c.Rec()
	var out []doctree.Finding
	add := func(present bool, corners doctree.Corners, msg, expected, actual string) {
		if !present || corners.OK() {
			return
		}
		if len(corners.Bare) == 0 {
			out = append(out, violation("G-044", msg, expected, actual))
			return
		}
		for _, off := range corners.Bare {
			out = append(out, violation("G-044", msg, expected, actual).At(c.Line(off)))
		}
	}
	add(r.Viewports.Desktop, r.DesktopFooter,
		`Desktop footer missing rounded corners - add rx="4" or rx="8"`,
		`desktop footer via include OR inline rect with rx="4-8"`, "desktop footer missing rounded corners")
	add(r.Viewports.Mobile, r.MobileNav,
		`Mobile bottom nav missing rounded corners - add rx="4" or rx="8"`,
		`mobile nav via include OR inline rect with rx="4-8"`, "mobile nav missing rounded corners")
	return out
}

func checkMobileActive(c *Context) []doctree.Finding {
	a := c.Rec().Active
	if !a.Detected {
		return nil
	}
	var out []doctree.Finding
	if !a.OverlayRounded {
		out = append(out, violation("mobile_active_overlay_corners",
			"Mobile active tab overlay (middle tabs) is missing rx",
			`mobile active state rect (middle tabs) has rx="8"`, "mobile active state rect missing rx attribute"))
	}
	if !a.HasIcon {
		out = append(out, violation("mobile_active_icon_missing",
			"Mobile active tab has text only, add a white icon path",
			"mobile active state includes white icon path", "active state has text only, no icon"))
	}
	if !a.CornerUsesPath {
		out = append(out, violation("mobile_active_corner_shape",
			"Mobile corner tab uses <rect>; corner tabs need a <path> with one rounded corner",
			"corner tabs (Home/Account) use <path> with rounded corner", "corner tab uses <rect> (missing rounded corner)"))
	}
	return out
}

func checkKeyConcepts(c *Context) []doctree.Finding {
	kc := c.Rec().KeyConcepts
	want := c.Exp.KeyConcepts
	var out []doctree.Finding
	switch {
	case !kc.Present:
		out = append(out, violation("key_concepts_missing",
			"Key Concepts row not found in annotation panel",
			fmt.Sprintf("Key Concepts row at y≈%d", want.Y), "Key Concepts row not found"))
	case kc.HasY && absInt(kc.Y-want.Y) > want.Tolerance:
		out = append(out, violation("key_concepts_position",
			fmt.Sprintf("Key Concepts row at y=%d, expected y=%d (±%dpx)", kc.Y, want.Y, want.Tolerance),
			fmt.Sprintf("y=%d (±%dpx)", want.Y, want.Tolerance), fmt.Sprintf("y=%d", kc.Y)))
	}
	if kc.WrongLabel {
		out = append(out, violation("key_concepts_wrong_label",
			`Use the label "Key Concepts:" instead of "Additional Requirements:"`,
			`Label: "Key Concepts:"`, `Label: "Additional Requirements:" (wrong - use "Key Concepts:")`))
	}
	return out
}
