package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestHighlight_Ascii(t *testing.T) {
	// The Ascii profile drops styling, so the tape comes back unchanged.
	assert.Equal(t, "101", highlight(termenv.Ascii, domain.SplitTape("101"), 1))
}

func TestHighlight_ANSI(t *testing.T) {
	out := highlight(termenv.ANSI256, domain.SplitTape("101"), 1)
	assert.NotEqual(t, "101", out)
	assert.Contains(t, out, "1")
	assert.True(t, len(out) > 3)
	assert.Equal(t, byte('1'), out[0])
}

func TestHighlight_OutOfRange(t *testing.T) {
	assert.Equal(t, "10", highlight(termenv.ANSI256, domain.SplitTape("10"), 5))
}

func TestHighlight_MultiCharacterCells(t *testing.T) {
	cells := []domain.Symbol{"ab", "c", "de"}
	assert.Equal(t, "abcde", highlight(termenv.Ascii, cells, 2))

	out := highlight(termenv.ANSI256, cells, 2)
	assert.True(t, strings.HasPrefix(out, "abc"))
	assert.Contains(t, out, "de")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer()("# Title")
	assert.NoError(t, err)
	assert.Contains(t, out, "Title")
}
