// Package pipeline provides the document processing pipeline for canopy.
//
// This package implements the check → layout flow shared by the CLI and the
// HTTP API. By centralizing this logic, we ensure consistent behavior across
// all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Check: Validate document structure (ids, references, cycles)
//  2. Layout: Compute per-node coordinates for the outline tree
//
// Layout results are cached by document content hash plus layout options;
// any edit or option change produces a fresh cache key.
//
// # Usage
//
// Create a Runner and compute a layout:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{FontSize: 14}
//	positioned, hit, err := runner.Layout(ctx, document, opts)
package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/canopy-tools/canopy/pkg/cache"
	"github.com/canopy-tools/canopy/pkg/layout"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a layout computation.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Center anchor for the first root's content box.
	CenterX float64 `json:"center_x,omitempty"`
	CenterY float64 `json:"center_y,omitempty"`

	// Spacing and measurement options.
	LevelSpacing   float64 `json:"level_spacing,omitempty"`
	SiblingSpacing float64 `json:"sibling_spacing,omitempty"`
	FontSize       float64 `json:"font_size,omitempty"`
	WrapEnabled    bool    `json:"wrap,omitempty"`
	WrapWidth      float64 `json:"wrap_width,omitempty"`

	// UI chrome state: an open side panel shifts the computed center.
	Panel          string `json:"panel,omitempty"`
	PanelCollapsed bool   `json:"panel_collapsed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills zero fields with the layout engine defaults and
// ensures a usable logger. Idempotent.
func (o *Options) SetDefaults() {
	if o.LevelSpacing == 0 {
		o.LevelSpacing = layout.DefaultLevelSpacing
	}
	if o.SiblingSpacing == 0 {
		o.SiblingSpacing = layout.DefaultSiblingSpacing
	}
	if o.FontSize == 0 {
		o.FontSize = layout.DefaultFontSize
	}
	if o.WrapWidth == 0 {
		o.WrapWidth = layout.DefaultWrapWidth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values after defaulting.
func (o *Options) Validate() error {
	if o.LevelSpacing < 0 || o.SiblingSpacing < 0 {
		return fmt.Errorf("spacing values must not be negative")
	}
	if o.FontSize <= 0 {
		return fmt.Errorf("font size must be positive")
	}
	if o.WrapEnabled && o.WrapWidth <= 0 {
		return fmt.Errorf("wrap width must be positive when wrapping is enabled")
	}
	return nil
}

// Config converts the options to a layout engine configuration.
func (o Options) Config() layout.Config {
	return layout.Config{
		CenterX:        o.CenterX,
		CenterY:        o.CenterY,
		LevelSpacing:   o.LevelSpacing,
		SiblingSpacing: o.SiblingSpacing,
		FontSize:       o.FontSize,
		Wrap:           layout.WrapPolicy{Enabled: o.WrapEnabled, MaxWidth: o.WrapWidth},
		Chrome:         layout.ChromeState{PanelCollapsed: o.PanelCollapsed, ActivePanel: o.Panel},
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		CenterX:        o.CenterX,
		CenterY:        o.CenterY,
		LevelSpacing:   o.LevelSpacing,
		SiblingSpacing: o.SiblingSpacing,
		FontSize:       o.FontSize,
		WrapEnabled:    o.WrapEnabled,
		WrapWidth:      o.WrapWidth,
		Panel:          o.Panel,
		PanelCollapsed: o.PanelCollapsed,
	}
}
