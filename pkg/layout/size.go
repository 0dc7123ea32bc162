package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Size is a node's content-box extent in user units.
type Size struct {
	Width  float64
	Height float64
}

// Sizer estimates the content box a node's text occupies at a font size.
// Implementations must be pure: the same text and font size always yield
// the same box, since the engine memoizes results within a pass.
type Sizer interface {
	Size(text string, fontSize float64) Size
}

// Character cell metrics relative to font size. These approximate a
// proportional UI font closely enough for layout purposes; exact glyph
// metrics live in the rendering layer, which is out of scope here.
const (
	charWidthFactor  = 0.6
	lineHeightFactor = 1.4

	boxPaddingX = 8.0
	boxPaddingY = 4.0

	// minContentCells keeps empty nodes from collapsing to zero width.
	minContentCells = 2
)

// TextSizer is the default deterministic content measurer. It measures
// display cells with go-runewidth (so CJK and emoji count double-width)
// and applies the configured wrap policy.
type TextSizer struct {
	wrap WrapPolicy
}

// NewTextSizer creates a text sizer with the given wrap policy.
// A zero MaxWidth falls back to DefaultWrapWidth.
func NewTextSizer(wrap WrapPolicy) *TextSizer {
	if wrap.MaxWidth == 0 {
		wrap.MaxWidth = DefaultWrapWidth
	}
	return &TextSizer{wrap: wrap}
}

// Size returns the content box for text at the given font size.
// Explicit newlines always break lines; with wrapping enabled, lines wider
// than the wrap width are additionally split at the cell limit.
func (t *TextSizer) Size(text string, fontSize float64) Size {
	charW := fontSize * charWidthFactor
	lineH := fontSize * lineHeightFactor

	maxCells := 0
	lines := 0
	for _, line := range strings.Split(text, "\n") {
		cells := runewidth.StringWidth(line)
		if t.wrap.Enabled {
			limit := int((t.wrap.MaxWidth - 2*boxPaddingX) / charW)
			if limit < 1 {
				limit = 1
			}
			for cells > limit {
				lines++
				cells -= limit
				if maxCells < limit {
					maxCells = limit
				}
			}
		}
		lines++
		if cells > maxCells {
			maxCells = cells
		}
	}
	if maxCells < minContentCells {
		maxCells = minContentCells
	}

	return Size{
		Width:  float64(maxCells)*charW + 2*boxPaddingX,
		Height: float64(lines)*lineH + 2*boxPaddingY,
	}
}

var _ Sizer = (*TextSizer)(nil)
