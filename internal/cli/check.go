package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canopy-tools/canopy/pkg/doc"
	"github.com/canopy-tools/canopy/pkg/pipeline"
)

// checkCommand creates the check command for validating documents.
func (c *CLI) checkCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check [document.json]",
		Short: "Validate an outline document's structure",
		Long: `Validate an outline document's structure.

The check command reads a document file and reports every structural
problem it finds: empty or duplicate node ids, children under table
nodes, out-of-range heading levels, and violations of the normalized
form. Warnings do not affect the exit status; errors do.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(args[0], quiet)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-problem output")

	return cmd
}

func (c *CLI) runCheck(input string, quiet bool) error {
	d, err := doc.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}

	p := newProgress(c.Logger)
	problems := pipeline.Check(d)
	p.done(fmt.Sprintf("Checked %d nodes", countDocNodes(d)))

	errs := 0
	for _, p := range problems {
		if p.Severity == pipeline.SeverityError {
			errs++
		}
		if quiet {
			continue
		}
		switch p.Severity {
		case pipeline.SeverityError:
			printError("%s", p.Message)
		default:
			printWarning("%s", p.Message)
		}
	}

	if errs > 0 {
		return fmt.Errorf("%d structural problem(s) in %s", errs, input)
	}
	printSuccess("Document is well formed")
	printDetail("%d nodes, %d warning(s)", countDocNodes(d), len(problems))
	return nil
}

// countDocNodes counts every node in the nested document.
func countDocNodes(d doc.Document) int {
	var walk func(n doc.Node) int
	walk = func(n doc.Node) int {
		total := 1
		for _, c := range n.Children {
			total += walk(c)
		}
		return total
	}
	total := 0
	for _, root := range d.Roots {
		total += walk(root)
	}
	return total
}
