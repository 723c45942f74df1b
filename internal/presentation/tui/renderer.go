package tui

import (
	"os"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// NewHighlighter returns a tape highlighter that renders the cell under the
// head in reverse video.
func NewHighlighter() func(cells []domain.Symbol, head int) string {
	p := termenv.ColorProfile()
	return func(cells []domain.Symbol, head int) string {
		return highlight(p, cells, head)
	}
}

func highlight(p termenv.Profile, cells []domain.Symbol, head int) string {
	if head < 0 || head >= len(cells) {
		return domain.JoinTape(cells)
	}
	cell := p.String(string(cells[head])).Reverse().Bold().Foreground(p.Color("#f59e0b"))
	return domain.JoinTape(cells[:head]) + cell.String() + domain.JoinTape(cells[head+1:])
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
