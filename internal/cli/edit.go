package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/canopy-tools/canopy/pkg/doc"
	"github.com/canopy-tools/canopy/pkg/errors"
	"github.com/canopy-tools/canopy/pkg/observability"
	"github.com/canopy-tools/canopy/pkg/tree"
)

// editCommand creates the edit command group for structural edits.
//
// Every subcommand reads the document, applies one operation against the
// normalized form, and writes the result back. Moves that the structure
// rules forbid are reported as warnings, not failures: the document is
// left untouched and the exit status stays zero.
func (c *CLI) editCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Apply structural edits to a document",
	}

	cmd.AddCommand(c.editAddCommand())
	cmd.AddCommand(c.editMoveCommand())
	cmd.AddCommand(c.editReorderCommand())
	cmd.AddCommand(c.editUpdateCommand())
	cmd.AddCommand(c.editDeleteCommand())

	return cmd
}

// editAddCommand creates the "edit add" subcommand.
func (c *CLI) editAddCommand() *cobra.Command {
	var (
		id       string
		text     string
		kind     string
		markdown string
		parent   string
		sibling  string
		after    bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "add [document.json]",
		Short: "Add a node under a parent or next to a sibling",
		Long: `Add a node under a parent or next to a sibling.

Exactly one of --parent or --sibling must be given. With --parent the
node is appended as the last child. With --sibling the node is inserted
immediately before the sibling, or after it when --after is set; a root
sibling produces a new root.

When --id is omitted a random UUID is generated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (parent == "") == (sibling == "") {
				return errors.New(errors.ErrCodeInvalidInput, "exactly one of --parent or --sibling is required")
			}
			if id == "" {
				id = uuid.NewString()
			}
			if err := errors.ValidateNodeID(id); err != nil {
				return err
			}

			n := &tree.Node{ID: id, Text: text}
			var err error
			if n.Kind, err = parseKindFlag(kind); err != nil {
				return err
			}
			if n.Markdown, err = parseMarkdownFlag(markdown); err != nil {
				return err
			}

			return c.applyEdit(cmd.Context(), args[0], output, "add", func(s *tree.Normalized) (*tree.Normalized, error) {
				if parent != "" {
					return s.Add(parent, n)
				}
				if s.IsRoot(sibling) {
					return s.AddRootSibling(sibling, n, after)
				}
				return s.AddSibling(sibling, n, after)
			}, func() {
				printSuccess("Added node")
				printKeyValue("Id", id)
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "node id (default: random UUID)")
	cmd.Flags().StringVar(&text, "text", "", "node text")
	cmd.Flags().StringVar(&kind, "kind", "", "node kind: table")
	cmd.Flags().StringVar(&markdown, "markdown", "", "markdown role: heading:<level>, ul, ol, preface")
	cmd.Flags().StringVar(&parent, "parent", "", "parent node id")
	cmd.Flags().StringVar(&sibling, "sibling", "", "sibling node id")
	cmd.Flags().BoolVar(&after, "after", false, "insert after the sibling instead of before")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: edit in place)")

	return cmd
}

// editMoveCommand creates the "edit move" subcommand.
func (c *CLI) editMoveCommand() *cobra.Command {
	var (
		position string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "move [document.json] [node-id] [target-id]",
		Short: "Move a node to a new parent or next to a target",
		Long: `Move a node to a new parent or next to a target.

With --position child (the default) the node becomes the target's last
child. With --position before or after the node becomes the target's
sibling. Moves that would break the structure rules - cycles, children
under tables, headings under lists - are refused with a warning and
leave the document unchanged.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := tree.ParsePosition(position)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPosition, err, "invalid --position")
			}

			s, err := loadNormalized(args[0])
			if err != nil {
				return err
			}

			res := s.MoveWithPosition(args[1], args[2], pos)
			observability.Store().OnOperation(cmd.Context(), "move", !res.OK, nil)
			if !res.OK {
				printWarning("Move refused: %s", res.Reason)
				return nil
			}

			if err := saveNormalized(res.Structure, args[0], output); err != nil {
				return err
			}
			printSuccess("Moved %s %s %s", args[1], pos, args[2])
			return nil
		},
	}

	cmd.Flags().StringVar(&position, "position", "child", "placement relative to target: child, before, after")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: edit in place)")

	return cmd
}

// editReorderCommand creates the "edit reorder" subcommand.
func (c *CLI) editReorderCommand() *cobra.Command {
	var (
		after  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "reorder [document.json] [node-id] [target-id]",
		Short: "Reorder a node among its siblings",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.applyEdit(cmd.Context(), args[0], output, "reorder", func(s *tree.Normalized) (*tree.Normalized, error) {
				return s.ChangeSiblingOrder(args[1], args[2], !after)
			}, func() {
				printSuccess("Reordered %s", args[1])
			})
		},
	}

	cmd.Flags().BoolVar(&after, "after", false, "place after the target instead of before")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: edit in place)")

	return cmd
}

// editUpdateCommand creates the "edit update" subcommand.
func (c *CLI) editUpdateCommand() *cobra.Command {
	var (
		output string
	)

	cmd := &cobra.Command{
		Use:   "update [document.json] [node-id]",
		Short: "Update a node's text, kind, markdown role, or collapsed state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd tree.NodeUpdate

			if cmd.Flags().Changed("text") {
				text, _ := cmd.Flags().GetString("text")
				upd.Text = &text
			}
			if cmd.Flags().Changed("kind") {
				raw, _ := cmd.Flags().GetString("kind")
				kind, err := parseKindFlag(raw)
				if err != nil {
					return err
				}
				upd.Kind = &kind
			}
			if cmd.Flags().Changed("markdown") {
				raw, _ := cmd.Flags().GetString("markdown")
				md, err := parseMarkdownFlag(raw)
				if err != nil {
					return err
				}
				upd.Markdown = &md
			}
			if cmd.Flags().Changed("collapsed") {
				collapsed, _ := cmd.Flags().GetBool("collapsed")
				upd.Collapsed = &collapsed
			}

			return c.applyEdit(cmd.Context(), args[0], output, "update", func(s *tree.Normalized) (*tree.Normalized, error) {
				return s.Update(args[1], upd)
			}, func() {
				printSuccess("Updated %s", args[1])
			})
		},
	}

	cmd.Flags().String("text", "", "new node text")
	cmd.Flags().String("kind", "", "new node kind: plain, table")
	cmd.Flags().String("markdown", "", "new markdown role: heading:<level>, ul, ol, preface, none")
	cmd.Flags().Bool("collapsed", false, "collapsed state")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: edit in place)")

	return cmd
}

// editDeleteCommand creates the "edit delete" subcommand.
func (c *CLI) editDeleteCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "delete [document.json] [node-id]",
		Short: "Delete a node and its whole subtree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.applyEdit(cmd.Context(), args[0], output, "delete", func(s *tree.Normalized) (*tree.Normalized, error) {
				return s.Delete(args[1])
			}, func() {
				printSuccess("Deleted %s", args[1])
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: edit in place)")

	return cmd
}

// =============================================================================
// Edit Helpers
// =============================================================================

// applyEdit loads the document, runs the named operation against its
// normalized form, and writes the result. report runs only after a
// successful write.
func (c *CLI) applyEdit(ctx context.Context, input, output, name string, op func(*tree.Normalized) (*tree.Normalized, error), report func()) error {
	s, err := loadNormalized(input)
	if err != nil {
		return err
	}

	next, err := op(s)
	observability.Store().OnOperation(ctx, name, false, err)
	if err != nil {
		return err
	}

	if err := saveNormalized(next, input, output); err != nil {
		return err
	}
	report()
	return nil
}

// loadNormalized reads a document file into its normalized form.
func loadNormalized(path string) (*tree.Normalized, error) {
	d, err := doc.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", path, err)
	}
	s, err := d.Normalize()
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", path, err)
	}
	return s, nil
}

// saveNormalized writes a normalized structure back to a document file.
// An empty output path means edit in place.
func saveNormalized(s *tree.Normalized, input, output string) error {
	d, err := doc.FromNormalized(s)
	if err != nil {
		return fmt.Errorf("denormalize: %w", err)
	}
	path := output
	if path == "" {
		path = input
	}
	if err := doc.WriteFile(d, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// parseKindFlag maps a --kind flag value to a node kind.
func parseKindFlag(s string) (tree.NodeKind, error) {
	switch s {
	case "", "plain":
		return tree.KindPlain, nil
	case "table":
		return tree.KindTable, nil
	default:
		return tree.KindPlain, errors.New(errors.ErrCodeInvalidInput, "unknown kind %q (want plain or table)", s)
	}
}

// parseMarkdownFlag maps a --markdown flag value to markdown metadata.
// Headings carry a level suffix, e.g. "heading:2".
func parseMarkdownFlag(s string) (tree.MarkdownMeta, error) {
	switch {
	case s == "" || s == "none":
		return tree.MarkdownMeta{}, nil
	case s == "ul":
		return tree.MarkdownMeta{Type: tree.MarkdownUnorderedList}, nil
	case s == "ol":
		return tree.MarkdownMeta{Type: tree.MarkdownOrderedList}, nil
	case s == "preface":
		return tree.MarkdownMeta{Type: tree.MarkdownPreface}, nil
	case strings.HasPrefix(s, "heading:"):
		level, err := strconv.Atoi(strings.TrimPrefix(s, "heading:"))
		if err != nil || level < 1 || level > 6 {
			return tree.MarkdownMeta{}, errors.New(errors.ErrCodeInvalidInput, "heading level must be 1-6, got %q", s)
		}
		return tree.MarkdownMeta{Type: tree.MarkdownHeading, Level: level}, nil
	default:
		return tree.MarkdownMeta{}, errors.New(errors.ErrCodeInvalidInput, "unknown markdown role %q", s)
	}
}
