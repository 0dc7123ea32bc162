// Package layout computes 2-D coordinates for outline trees.
//
// The engine is a pure function over a nested tree (as produced by the
// store's Denormalize): it clones the input, writes X/Y onto the clone, and
// returns it. The tree reads left to right by depth and top to bottom by
// sibling order, with every parent vertically centered on the extent of its
// visible subtree. Collapsed nodes contribute only their own content box.
//
// All geometry derives from the explicit [Config]; for a fixed tree shape,
// node content, collapse flags, and configuration, the output is exactly
// reproducible.
package layout

// Default geometry values used when a Config field is zero.
const (
	// DefaultLevelSpacing is the base horizontal gap between a parent's
	// content box and its children.
	DefaultLevelSpacing = 80.0

	// DefaultSiblingSpacing is the minimum vertical gap between adjacent
	// sibling subtrees.
	DefaultSiblingSpacing = 24.0

	// DefaultFontSize is the font size used for content measurement.
	DefaultFontSize = 14.0

	// DefaultWrapWidth is the maximum content-box width when wrapping is
	// enabled.
	DefaultWrapWidth = 240.0

	// panelWidth is the horizontal space occupied by an open side panel.
	// The visual center shifts by half of this when a panel is active.
	panelWidth = 300.0

	// levelSpacingFactor scales the width-dependent part of the horizontal
	// gap, so wider boxes repel their children further right.
	levelSpacingFactor = 0.05
)

// WrapPolicy controls text wrapping during content measurement.
type WrapPolicy struct {
	Enabled  bool
	MaxWidth float64 // content-box width ceiling; DefaultWrapWidth when zero
}

// ChromeState describes the UI chrome around the canvas. An open side panel
// narrows the visible area, so the computed center point shifts left to
// keep the tree visually centered. This is a presentation accommodation,
// not a structural input.
type ChromeState struct {
	PanelCollapsed bool
	ActivePanel    string // empty means no panel is active
}

// Config carries every input to the layout pass besides the tree itself.
// The zero value is usable: zero spacing and font values fall back to the
// Default* constants.
type Config struct {
	// CenterX, CenterY anchor the root node's center.
	CenterX float64
	CenterY float64

	// LevelSpacing is the base horizontal gap per depth level.
	LevelSpacing float64

	// SiblingSpacing is the minimum vertical gap between siblings.
	SiblingSpacing float64

	// FontSize feeds content measurement.
	FontSize float64

	// Wrap is the text wrapping policy for content measurement.
	Wrap WrapPolicy

	// Chrome shifts the effective center when a side panel is open.
	Chrome ChromeState

	// Sizer estimates content boxes. Nil selects [NewTextSizer].
	Sizer Sizer
}

// withDefaults returns a copy of the config with zero fields resolved.
func (c Config) withDefaults() Config {
	if c.LevelSpacing == 0 {
		c.LevelSpacing = DefaultLevelSpacing
	}
	if c.SiblingSpacing == 0 {
		c.SiblingSpacing = DefaultSiblingSpacing
	}
	if c.FontSize == 0 {
		c.FontSize = DefaultFontSize
	}
	if c.Wrap.MaxWidth == 0 {
		c.Wrap.MaxWidth = DefaultWrapWidth
	}
	if c.Sizer == nil {
		c.Sizer = NewTextSizer(c.Wrap)
	}
	return c
}

// effectiveCenter returns the root anchor point after accounting for UI
// chrome: an active, non-collapsed side panel shifts the center left by
// half the panel width.
func (c Config) effectiveCenter() (x, y float64) {
	x, y = c.CenterX, c.CenterY
	if c.Chrome.ActivePanel != "" && !c.Chrome.PanelCollapsed {
		x -= panelWidth / 2
	}
	return x, y
}
