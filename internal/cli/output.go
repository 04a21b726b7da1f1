package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorPass  = lipgloss.Color("#2CD7C7")
	colorFail  = lipgloss.Color("#E74C3C")
	colorWarn  = lipgloss.Color("#F4D03F")
	colorMuted = lipgloss.Color("#6C7A80")
)

const rule = "============================================================"

// palette styles terminal output. Styling is off unless out is a terminal
// and NO_COLOR is unset.
type palette struct {
	on bool

	title lipgloss.Style
	pass  lipgloss.Style
	fail  lipgloss.Style
	code  lipgloss.Style
	muted lipgloss.Style
}

func newPalette(out io.Writer) palette {
	return palette{
		on:    isTerminal(out) && os.Getenv("NO_COLOR") == "",
		title: lipgloss.NewStyle().Bold(true),
		pass:  lipgloss.NewStyle().Bold(true).Foreground(colorPass),
		fail:  lipgloss.NewStyle().Bold(true).Foreground(colorFail),
		code:  lipgloss.NewStyle().Foreground(colorWarn),
		muted: lipgloss.NewStyle().Foreground(colorMuted),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p palette) render(s lipgloss.Style, text string) string {
	if !p.on {
		return text
	}
	return s.Render(text)
}

// banner prints a ruled heading.
func (p palette) banner(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, p.render(p.title, title), rule)
}

func (p palette) status(ok bool) string {
	if ok {
		return p.render(p.pass, "PASS")
	}
	return p.render(p.fail, "FAIL")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
