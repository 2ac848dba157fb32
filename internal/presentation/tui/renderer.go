package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/keypad/pkg/runner"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// DisplayWidth is the inner width of the rendered calculator screen.
const DisplayWidth = 24

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		return r.Render(markdown)
	}
}

// RenderHelp renders the key reference, falling back to raw markdown.
func RenderHelp() string {
	out, err := NewRenderer()(runner.KeyHelp)
	if err != nil {
		return runner.KeyHelp
	}
	return out
}

// NewDisplayRenderer returns a runner.DisplayRenderer that draws the two
// display lines right-aligned inside a box, coloured for profile.
func NewDisplayRenderer(profile termenv.Profile) runner.DisplayRenderer {
	return func(d runner.Display) string {
		border := strings.Repeat("─", DisplayWidth+2)

		var b strings.Builder
		b.WriteString("┌" + border + "┐\n")
		b.WriteString("│ " + profile.String(pad(d.Previous)).Foreground(profile.Color("#a1a1aa")).String() + " │\n")
		b.WriteString("│ " + profile.String(pad(d.Current)).Bold().String() + " │\n")
		b.WriteString("└" + border + "┘")
		return b.String()
	}
}

// pad right-aligns s to DisplayWidth, keeping the rightmost digits when s is too long.
func pad(s string) string {
	n := utf8.RuneCountInString(s)
	if n > DisplayWidth {
		r := []rune(s)
		return "…" + string(r[n-DisplayWidth+1:])
	}
	return strings.Repeat(" ", DisplayWidth-n) + s
}
