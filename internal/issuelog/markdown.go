package issuelog

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// CodeGrammar matches validator codes (FONT-001) and inspector check names
// (title_missing). Auto-generated row IDs such as S-01 do not match.
var CodeGrammar = regexp.MustCompile(`^(?:[A-Z]+-\d{3}|[a-z]+(?:_[a-z]+)+)$`)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

func parseMarkdown(src []byte) ast.Node {
	return md.Parser().Parse(text.NewReader(src))
}

// span is a byte range of a markdown document.
type span struct {
	start, end int
}

// findSection locates the top-level heading of level 2 whose text starts
// with title. The span runs from the heading line through the next heading
// of level 1 or 2, or EOF. Headings inside code blocks are not headings and
// are never matched.
func findSection(src []byte, title string) (span, bool) {
	doc := parseMarkdown(src)
	found := false
	var s span
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		start := lineStart(src, h.Lines().At(0).Start)
		if found {
			if h.Level <= 2 {
				s.end = start
				return s, true
			}
			continue
		}
		if h.Level == 2 && strings.HasPrefix(inlineText(h, src), title) {
			found = true
			s.start = start
		}
	}
	if !found {
		return span{}, false
	}
	s.end = len(src)
	return s, true
}

// headerEnd returns the offset of the first top-level heading of level 2
// or deeper, or len(src). Everything before it is the file header.
func headerEnd(src []byte) int {
	doc := parseMarkdown(src)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level >= 2 && h.Lines().Len() > 0 {
			return lineStart(src, h.Lines().At(0).Start)
		}
	}
	return len(src)
}

func lineStart(src []byte, pos int) int {
	return bytes.LastIndexByte(src[:pos], '\n') + 1
}

// TableCodes returns every code listed in the Code (or Check) column of the
// tables in src, in document order.
func TableCodes(src []byte) []string {
	doc := parseMarkdown(src)
	var codes []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		table, ok := n.(*east.Table)
		if !ok {
			return ast.WalkContinue, nil
		}
		codes = append(codes, tableCodes(table, src)...)
		return ast.WalkSkipChildren, nil
	})
	return codes
}

func tableCodes(table *east.Table, src []byte) []string {
	col := -1
	var codes []string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		cells := cellTexts(row, src)
		if _, ok := row.(*east.TableHeader); ok {
			for i, c := range cells {
				if c == "Code" || c == "Check" {
					col = i
					break
				}
			}
			continue
		}
		if col < 0 || col >= len(cells) {
			continue
		}
		if code := cells[col]; CodeGrammar.MatchString(code) {
			codes = append(codes, code)
		}
	}
	return codes
}

func cellTexts(row ast.Node, src []byte) []string {
	var out []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*east.TableCell); ok {
			out = append(out, strings.TrimSpace(inlineText(c, src)))
		}
	}
	return out
}

// inlineText concatenates the text beneath an inline container.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}

// escapeCell makes s safe inside a table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
