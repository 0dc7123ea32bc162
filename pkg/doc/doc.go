// Package doc defines the JSON interchange format for outline documents.
//
// This is the boundary format used by the CLI and HTTP API: a nested tree
// of nodes, round-trip safe (read → edit → write → re-read produces identical
// structure). It is deliberately not a persistence layer for the store —
// the store's normalized form stays in memory; files carry only the nested
// form that Normalize and Denormalize convert to and from.
package doc

import (
	"encoding/json"
	"fmt"

	"github.com/canopy-tools/canopy/pkg/tree"
)

// Node kind names in the interchange format.
const (
	KindTable = "table"
)

// Markdown type names in the interchange format.
const (
	MarkdownHeading       = "heading"
	MarkdownUnorderedList = "unordered-list"
	MarkdownOrderedList   = "ordered-list"
	MarkdownPreface       = "preface"
)

// Document is the canonical serialization format for outline documents.
// Used for CLI files, API requests and responses, and caching.
type Document struct {
	Roots []Node `json:"roots"`
}

// Node is the serialized form of a single outline node. Children are
// nested inline, in sibling order.
type Node struct {
	ID        string    `json:"id"`
	Text      string    `json:"text,omitempty"`
	X         float64   `json:"x,omitempty"`
	Y         float64   `json:"y,omitempty"`
	Kind      string    `json:"kind,omitempty"` // "table" or empty
	Markdown  *Markdown `json:"markdown,omitempty"`
	Collapsed bool      `json:"collapsed,omitempty"`
	Children  []Node    `json:"children,omitempty"`
}

// Markdown carries the markdown semantics of a node in serialized form.
type Markdown struct {
	Type  string `json:"type"`
	Level int    `json:"level,omitempty"` // heading depth, 1-6
}

// FromTree converts a nested forest to its serialization format.
func FromTree(roots []*tree.Node) Document {
	out := Document{Roots: make([]Node, len(roots))}
	for i, r := range roots {
		out.Roots[i] = nodeFromTree(r)
	}
	return out
}

// ToTree converts a Document to a nested forest.
// Returns an error for unknown kind or markdown type names.
func (d Document) ToTree() ([]*tree.Node, error) {
	if len(d.Roots) == 0 {
		return nil, nil
	}
	roots := make([]*tree.Node, len(d.Roots))
	for i, r := range d.Roots {
		n, err := nodeToTree(r)
		if err != nil {
			return nil, err
		}
		roots[i] = n
	}
	return roots, nil
}

// Normalize converts the document straight to the store's flat form.
func (d Document) Normalize() (*tree.Normalized, error) {
	roots, err := d.ToTree()
	if err != nil {
		return nil, err
	}
	return tree.Normalize(roots), nil
}

// FromNormalized denormalizes a structure and serializes the result.
func FromNormalized(s *tree.Normalized) (Document, error) {
	roots, err := s.Denormalize()
	if err != nil {
		return Document{}, err
	}
	return FromTree(roots), nil
}

func nodeFromTree(n *tree.Node) Node {
	out := Node{
		ID:        n.ID,
		Text:      n.Text,
		X:         n.X,
		Y:         n.Y,
		Collapsed: n.Collapsed,
	}
	if n.Kind == tree.KindTable {
		out.Kind = KindTable
	}
	if md := markdownFromTree(n.Markdown); md != nil {
		out.Markdown = md
	}
	if len(n.Children) > 0 {
		out.Children = make([]Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = nodeFromTree(c)
		}
	}
	return out
}

func nodeToTree(n Node) (*tree.Node, error) {
	out := &tree.Node{
		ID:        n.ID,
		Text:      n.Text,
		X:         n.X,
		Y:         n.Y,
		Collapsed: n.Collapsed,
	}
	switch n.Kind {
	case "":
		out.Kind = tree.KindPlain
	case KindTable:
		out.Kind = tree.KindTable
	default:
		return nil, fmt.Errorf("node %s: unknown kind %q", n.ID, n.Kind)
	}
	md, err := markdownToTree(n.ID, n.Markdown)
	if err != nil {
		return nil, err
	}
	out.Markdown = md
	for _, c := range n.Children {
		child, err := nodeToTree(c)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}

func markdownFromTree(m tree.MarkdownMeta) *Markdown {
	switch m.Type {
	case tree.MarkdownHeading:
		return &Markdown{Type: MarkdownHeading, Level: m.Level}
	case tree.MarkdownUnorderedList:
		return &Markdown{Type: MarkdownUnorderedList}
	case tree.MarkdownOrderedList:
		return &Markdown{Type: MarkdownOrderedList}
	case tree.MarkdownPreface:
		return &Markdown{Type: MarkdownPreface}
	}
	return nil
}

func markdownToTree(id string, m *Markdown) (tree.MarkdownMeta, error) {
	if m == nil {
		return tree.MarkdownMeta{}, nil
	}
	switch m.Type {
	case MarkdownHeading:
		return tree.MarkdownMeta{Type: tree.MarkdownHeading, Level: m.Level}, nil
	case MarkdownUnorderedList:
		return tree.MarkdownMeta{Type: tree.MarkdownUnorderedList}, nil
	case MarkdownOrderedList:
		return tree.MarkdownMeta{Type: tree.MarkdownOrderedList}, nil
	case MarkdownPreface:
		return tree.MarkdownMeta{Type: tree.MarkdownPreface}, nil
	}
	return tree.MarkdownMeta{}, fmt.Errorf("node %s: unknown markdown type %q", id, m.Type)
}

// UnmarshalDocument deserializes JSON bytes to a Document.
func UnmarshalDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, err
	}
	return d, nil
}
