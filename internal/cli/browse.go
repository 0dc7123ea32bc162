package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/canopy-tools/canopy/pkg/doc"
	"github.com/canopy-tools/canopy/pkg/tree"
)

// browseCommand creates the browse command for interactive navigation.
func (c *CLI) browseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [document.json]",
		Short: "Navigate an outline interactively in the terminal",
		Long: `Navigate an outline interactively in the terminal.

Arrow keys (or j/k) move the cursor, left/right collapse and expand
subtrees, space toggles, and q quits. Collapse state is view-local and
never written back to the document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := doc.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load document %s: %w", args[0], err)
			}
			s, err := d.Normalize()
			if err != nil {
				return fmt.Errorf("normalize %s: %w", args[0], err)
			}

			model := newOutlineModel(args[0], s)
			prog := tea.NewProgram(model, tea.WithContext(cmd.Context()))
			_, err = prog.Run()
			return err
		},
	}

	return cmd
}

// =============================================================================
// OutlineModel - Interactive outline navigation
// =============================================================================

// Outline styles
var (
	outlineSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	outlineNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	outlineDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	outlineBadgeStyle    = lipgloss.NewStyle().Foreground(colorYellow)
)

// outlineRow is one visible line of the outline: a node plus its depth.
type outlineRow struct {
	id    string
	depth int
}

// outlineModel is the bubbletea model for outline navigation. Collapse
// state lives in the model, not the document, so browsing never mutates
// the file.
type outlineModel struct {
	title     string
	structure *tree.Normalized
	collapsed map[string]bool
	rows      []outlineRow
	cursor    int
	height    int
	offset    int
}

// newOutlineModel creates an outline model with every subtree expanded,
// except nodes the document itself marks collapsed.
func newOutlineModel(title string, s *tree.Normalized) outlineModel {
	collapsed := make(map[string]bool)
	for id, n := range s.Nodes {
		if n.Collapsed {
			collapsed[id] = true
		}
	}
	m := outlineModel{
		title:     title,
		structure: s,
		collapsed: collapsed,
		height:    15,
	}
	m.rebuildRows()
	return m
}

// rebuildRows flattens the structure into the visible rows, skipping the
// children of collapsed nodes.
func (m *outlineModel) rebuildRows() {
	m.rows = m.rows[:0]
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		m.rows = append(m.rows, outlineRow{id: id, depth: depth})
		if m.collapsed[id] {
			return
		}
		for _, child := range m.structure.ChildrenMap[id] {
			walk(child, depth+1)
		}
	}
	for _, root := range m.structure.RootNodeIDs {
		walk(root, 0)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m outlineModel) Init() tea.Cmd {
	return nil
}

func (m outlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "left", "h":
			if id := m.currentID(); id != "" {
				m.collapsed[id] = true
				m.rebuildRows()
			}
		case "right", "l":
			if id := m.currentID(); id != "" {
				delete(m.collapsed, id)
				m.rebuildRows()
			}
		case " ", "enter":
			if id := m.currentID(); id != "" {
				if m.collapsed[id] {
					delete(m.collapsed, id)
				} else {
					m.collapsed[id] = true
				}
				m.rebuildRows()
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 5
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m outlineModel) currentID() string {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return ""
	}
	return m.rows[m.cursor].id
}

func (m outlineModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(outlineDimStyle.Render("↑/↓ navigate  ←/→ collapse/expand  ␣ toggle  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.offset; i < end; i++ {
		row := m.rows[i]
		n := m.structure.Nodes[row.id]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		marker := "· "
		if len(m.structure.ChildrenMap[row.id]) > 0 {
			marker = "▾ "
			if m.collapsed[row.id] {
				marker = "▸ "
			}
		}

		text := n.Text
		if text == "" {
			text = outlineDimStyle.Render("(untitled)")
		}

		style := outlineNormalStyle
		if i == m.cursor {
			style = outlineSelectedStyle
		}

		line := cursor + strings.Repeat("  ", row.depth) + outlineDimStyle.Render(marker) + style.Render(text)
		if badge := nodeBadge(n); badge != "" {
			line += " " + outlineBadgeStyle.Render(badge)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.rows) > m.height {
		b.WriteString("\n")
		b.WriteString(outlineDimStyle.Render(fmt.Sprintf("%d/%d", m.cursor+1, len(m.rows))))
		b.WriteString("\n")
	}

	return b.String()
}

// nodeBadge renders a short tag for nodes with a special role.
func nodeBadge(n *tree.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind == tree.KindTable {
		return "[table]"
	}
	switch n.Markdown.Type {
	case tree.MarkdownHeading:
		return fmt.Sprintf("[h%d]", n.Markdown.Level)
	case tree.MarkdownUnorderedList:
		return "[ul]"
	case tree.MarkdownOrderedList:
		return "[ol]"
	case tree.MarkdownPreface:
		return "[preface]"
	}
	return ""
}
