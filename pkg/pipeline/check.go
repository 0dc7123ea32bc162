package pipeline

import (
	"fmt"

	"github.com/canopy-tools/canopy/pkg/doc"
	"github.com/canopy-tools/canopy/pkg/tree"
)

// Problem severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Problem is a single finding from a document check.
type Problem struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Check validates a document and returns every problem found. An empty
// result means the document is well formed: ids are unique and non-empty,
// kind and markdown tags decode, table nodes own no children, and the
// normalized form satisfies the store's structural invariants.
//
// Check never stops at the first finding; doctor-style, it reports
// everything it can so one run is enough to see the full damage.
func Check(d doc.Document) []Problem {
	var problems []Problem

	seen := make(map[string]bool)
	var walk func(n doc.Node, parentTable bool)
	walk = func(n doc.Node, parentTable bool) {
		switch {
		case n.ID == "":
			problems = append(problems, Problem{Severity: SeverityError, Message: "node with empty id"})
		case n.ID == tree.RootParentID:
			problems = append(problems, Problem{Severity: SeverityError, Message: fmt.Sprintf("node id %q is reserved", n.ID)})
		case seen[n.ID]:
			problems = append(problems, Problem{Severity: SeverityError, Message: fmt.Sprintf("duplicate node id %q", n.ID)})
		default:
			seen[n.ID] = true
		}

		if parentTable {
			problems = append(problems, Problem{Severity: SeverityError, Message: fmt.Sprintf("node %q is a child of a table node", n.ID)})
		}
		if n.Markdown != nil && n.Markdown.Type == doc.MarkdownHeading {
			if n.Markdown.Level < 1 || n.Markdown.Level > 6 {
				problems = append(problems, Problem{Severity: SeverityWarning, Message: fmt.Sprintf("node %q: heading level %d out of range 1-6", n.ID, n.Markdown.Level)})
			}
		}

		for _, c := range n.Children {
			walk(c, n.Kind == doc.KindTable)
		}
	}
	for _, root := range d.Roots {
		walk(root, false)
	}

	roots, err := d.ToTree()
	if err != nil {
		problems = append(problems, Problem{Severity: SeverityError, Message: err.Error()})
		return problems
	}
	if len(problems) > 0 {
		// Normalizing a forest with duplicate ids would silently drop
		// nodes, so stop before the structural pass.
		return problems
	}

	s := tree.Normalize(roots)
	if err := s.Validate(); err != nil {
		problems = append(problems, Problem{Severity: SeverityError, Message: err.Error()})
	}
	if _, err := s.Denormalize(); err != nil {
		problems = append(problems, Problem{Severity: SeverityError, Message: err.Error()})
	}
	return problems
}
