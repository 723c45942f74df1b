package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Turing.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Amber to teal, one colour per line
	lines := []struct {
		text, color string
	}{
		{"  _____            _             ", "#f59e0b"},
		{" |_   _|   _ _ __ (_)_ __   __ _ ", "#eab308"},
		{"   | || | | | '__|| | '_ \\ / _` |", "#84cc16"},
		{"   | || |_| | |   | | | | | (_| |", "#22c55e"},
		{"   |_| \\__,_|_|   |_|_| |_|\\__, |", "#14b8a6"},
		{"                           |___/ ", "#06b6d4"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
