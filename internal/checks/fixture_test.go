package checks

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/wirecheck/internal/config"
	"github.com/dgallion1/wirecheck/internal/doctree"
	"github.com/dgallion1/wirecheck/internal/extract"
	"github.com/dgallion1/wirecheck/internal/parser"
)

const fixturePath = "004-account-settings/01-account-settings.svg"

const (
	titleLine     = `  <text x="960" y="28" text-anchor="middle" font-size="32" font-weight="bold" fill="#1f2937">ACCOUNT SETTINGS OVERVIEW</text>` + "\n"
	signatureLine = `  <text x="40" y="1060" font-size="18" font-weight="bold" fill="#374151">004:01 | Account Settings | ScriptHammer</text>` + "\n"
	desktopFooter = `    <use href="includes/footer-desktop.svg#site-footer"/>` + "\n"
	desktopHeader = `    <use href="includes/header-desktop.svg#desktop-header"/>` + "\n"
)

// annotationColumn renders one numbered callout group with a linked story badge.
func annotationColumn(n int, x int) string {
	marks := []string{"①", "②", "③", "④"}
	return fmt.Sprintf(`    <g transform="translate(%d, 20)">
      <circle cx="14" cy="14" r="14" fill="#dc2626"/>
      <text x="36" y="20" font-size="16" font-weight="bold" fill="#1f2937">%s Profile field</text>
      <text x="36" y="44" font-size="14" fill="#374151">Edits the stored profile</text>
      <a href="#us-00%d"><rect x="36" y="56" width="64" height="22" rx="4" fill="#0891b2"/><text x="68" y="72" text-anchor="middle" font-size="12" fill="#ffffff">US-00%d</text></a>
    </g>
`, x, marks[n], n+1, n+1)
}

// baselineSVG returns a screen that passes every check.
func baselineSVG() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1920 1080" width="1920" height="1080">
  <defs>
    <linearGradient id="bg" x1="0" y1="0" x2="0" y2="1">
      <stop offset="0%" stop-color="#c7ddf5"/>
      <stop offset="100%" stop-color="#b8d4f0"/>
    </linearGradient>
  </defs>
  <rect width="1920" height="1080" fill="url(#bg)"/>
`)
	b.WriteString(titleLine)
	b.WriteString(`  <text x="40" y="52" font-size="16" font-weight="bold" fill="#374151">DESKTOP (16:9)</text>
  <text x="1360" y="52" font-size="16" font-weight="bold" fill="#374151">MOBILE</text>
  <g id="desktop" transform="translate(40, 60)">
    <rect x="0" y="0" width="1280" height="720" rx="8" fill="#e8d4b8"/>
`)
	b.WriteString(desktopHeader)
	b.WriteString(`    <rect x="100" y="300" width="160" height="44" rx="6" fill="#8b5cf6"/>
    <text x="180" y="327" text-anchor="middle" font-size="16" fill="#ffffff">Save</text>
    <circle cx="300" cy="200" r="14" fill="#dc2626"/>
    <circle cx="300" cy="322" r="14" fill="#dc2626"/>
`)
	b.WriteString(desktopFooter)
	b.WriteString(`  </g>
  <g id="mobile" transform="translate(1360, 60)">
    <rect x="0" y="0" width="360" height="720" rx="24" fill="#e8d4b8"/>
    <use href="includes/header-mobile.svg#mobile-header-group"/>
    <rect x="16" y="96" width="328" height="120" rx="8" fill="#f5f0e6"/>
    <text x="32" y="130" font-size="16" fill="#1f2937">Profile</text>
    <circle cx="330" cy="110" r="14" fill="#dc2626"/>
    <circle cx="330" cy="240" r="14" fill="#dc2626"/>
    <use href="includes/footer-mobile.svg#mobile-bottom-nav"/>
  </g>
  <g id="annotations" transform="translate(40, 800)">
    <rect x="0" y="0" width="1840" height="220" rx="8" fill="#e8d4b8"/>
`)
	for i, x := range []int{20, 470, 920, 1370} {
		b.WriteString(annotationColumn(i, x))
	}
	b.WriteString(`  </g>
  <g transform="translate(40, 940)">
    <text x="20" y="0" font-size="14" font-weight="bold" fill="#1f2937">Key Concepts:</text>
    <text x="140" y="0" font-size="14" fill="#374151">profile, password, notifications</text>
  </g>
`)
	b.WriteString(signatureLine)
	b.WriteString("</svg>\n")
	return b.String()
}

// load parses and extracts a document the way the pipeline does.
func load(t *testing.T, path, text string) *doctree.Document {
	t.Helper()
	doc, err := parser.Parse(strings.NewReader(text), path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	doc.Record = extract.Extract(doc.Name, doc.Text)
	return doc
}

func newEngine() *Engine {
	return New(config.DefaultExpectations(), nil)
}

func codes(fs []doctree.Finding) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Code)
	}
	return out
}

func hasCode(fs []doctree.Finding, code string) bool {
	for _, f := range fs {
		if f.Code == code {
			return true
		}
	}
	return false
}

// contextFor builds a Context for calling a single check directly.
func contextFor(t *testing.T, text string) *Context {
	t.Helper()
	return newEngine().newContext(load(t, fixturePath, text))
}
