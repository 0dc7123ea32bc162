package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canopy-tools/canopy/pkg/doc"
	"github.com/canopy-tools/canopy/pkg/pipeline"
)

// layoutCommand creates the layout command for computing node coordinates.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		noCache   bool
		redisAddr string
	)
	opts := c.baseOptions()

	cmd := &cobra.Command{
		Use:   "layout [document.json]",
		Short: "Compute mind-map coordinates for a document",
		Long: `Compute mind-map coordinates for a document.

The layout command reads a document file, assigns X/Y coordinates to
every node (roots stacked vertically, children fanned out to the right,
parents centered on their subtrees), and writes the positioned document.

Results are cached locally for faster subsequent runs; identical
documents laid out with identical options are served from the cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache, redisAddr)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for the layout cache (host:port)")

	// Layout flags
	cmd.Flags().Float64Var(&opts.CenterX, "center-x", opts.CenterX, "horizontal center of the root column")
	cmd.Flags().Float64Var(&opts.CenterY, "center-y", opts.CenterY, "vertical center of the root column")
	cmd.Flags().Float64Var(&opts.LevelSpacing, "level-spacing", opts.LevelSpacing, "base horizontal gap between depth levels")
	cmd.Flags().Float64Var(&opts.SiblingSpacing, "sibling-spacing", opts.SiblingSpacing, "vertical gap between siblings")
	cmd.Flags().Float64Var(&opts.FontSize, "font-size", opts.FontSize, "font size used for text measurement")
	cmd.Flags().BoolVar(&opts.WrapEnabled, "wrap", opts.WrapEnabled, "wrap node text when measuring")
	cmd.Flags().Float64Var(&opts.WrapWidth, "wrap-width", opts.WrapWidth, "wrap width in pixels")
	cmd.Flags().StringVar(&opts.Panel, "panel", opts.Panel, "active side panel name (shifts the layout center)")
	cmd.Flags().BoolVar(&opts.PanelCollapsed, "panel-collapsed", opts.PanelCollapsed, "treat the active panel as collapsed")

	return cmd
}

// runLayout loads the document, computes coordinates, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool, redisAddr string) error {
	d, err := doc.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache, redisAddr)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	positioned, cacheHit, err := runner.LayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}

	if ctx.Err() != nil {
		spinner.Stop()
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	spinner.Update("Writing " + outputPath + "...")
	if err := doc.WriteFile(positioned, outputPath); err != nil {
		spinner.StopWithError("Write failed")
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	spinner.Stop()

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(countDocNodes(positioned), cacheHit)
	printNewline()
	printNextStep("Browse", "canopy browse "+outputPath)

	return nil
}
