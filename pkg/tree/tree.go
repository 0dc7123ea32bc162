// Package tree implements the normalized store for outline documents.
//
// A document is a rooted forest of content nodes. The store keeps it in a
// flat, relational form (the [Normalized] structure) rather than as nested
// node values: node data lives in one map, and the shape of the forest is
// expressed entirely through parent/children index maps plus an ordered root
// sequence. Structural edits (add, move, reorder, delete) operate on this
// flat form and validate every precondition before touching anything, so a
// failed operation never leaves a half-applied state behind.
//
// # Immutability
//
// Operations never mutate their receiver. Each successful operation returns
// a new *Normalized that shares every map the operation did not touch with
// the input, so a sequence of edits costs O(changed path) per step rather
// than O(document size). Callers hold the "current" structure and replace it
// with each returned value; the store itself has no notion of a current
// document.
//
// # Error shapes
//
// Structural operations whose failure indicates caller error or corruption
// (unknown ids, duplicate ids, deleting the last root) return sentinel
// errors that callers test with errors.Is. Reparenting via [Normalized.Move]
// and [Normalized.MoveWithPosition] instead returns a [MoveResult]: invalid
// drop targets are a routine part of drag-and-drop interaction, and callers
// branch on the result rather than unwrapping errors.
package tree

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNodeNotFound is returned when an operation references a node id
	// that does not exist in the structure.
	ErrNodeNotFound = errors.New("node not found")

	// ErrParentNotFound is returned by [Normalized.Add] when the target
	// parent id does not exist.
	ErrParentNotFound = errors.New("parent node not found")

	// ErrDuplicateNodeID is returned when adding a node whose id already
	// exists. Node ids must be unique across the entire document.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrLastRoot is returned by [Normalized.Delete] when the target is the
	// only remaining root. A document always keeps at least one root.
	ErrLastRoot = errors.New("cannot delete the last root node")

	// ErrDifferentParent is returned by [Normalized.ChangeSiblingOrder]
	// when the two nodes do not share the same parent.
	ErrDifferentParent = errors.New("nodes must have the same parent")

	// ErrTableChildren is returned by [Normalized.Add] when the target
	// parent is a table node. Tables render as an atomic unit and never
	// own children.
	ErrTableChildren = errors.New("table nodes cannot have children")

	// ErrInconsistentStructure is returned when the index maps contradict
	// each other (e.g. a non-root node with no parent entry). A structure
	// built and edited exclusively through this package never triggers it.
	ErrInconsistentStructure = errors.New("inconsistent tree structure")
)

// RootParentID is the reserved pseudo-parent key under which ChildrenMap
// mirrors the ordered root sequence. It lets deletion and insertion treat
// roots uniformly with ordinary children. No real node may use this id.
const RootParentID = "root"

// NodeKind distinguishes structurally restricted node flavors.
type NodeKind int

const (
	// KindPlain is an ordinary content node.
	KindPlain NodeKind = iota
	// KindTable marks a node that renders as an atomic table block.
	// Table nodes may not own children and, among siblings, must come first.
	KindTable
)

// MarkdownType tags nodes whose content originated from markdown and whose
// placement is therefore constrained (headings nest by level, lists attach
// before sub-headings, prefaces never accept children).
type MarkdownType int

const (
	// MarkdownNone means the node carries no markdown semantics.
	MarkdownNone MarkdownType = iota
	// MarkdownHeading is a heading; MarkdownMeta.Level holds its depth (1-6).
	MarkdownHeading
	// MarkdownUnorderedList is a bulleted list item.
	MarkdownUnorderedList
	// MarkdownOrderedList is a numbered list item.
	MarkdownOrderedList
	// MarkdownPreface is leading prose before the first heading. Preface
	// nodes never accept children.
	MarkdownPreface
)

// MarkdownMeta carries the markdown semantics of a node, if any.
// The zero value means "no markdown type".
type MarkdownMeta struct {
	Type  MarkdownType
	Level int // heading depth, meaningful only when Type is MarkdownHeading
}

// Node is a single content unit in the outline.
//
// In the normalized store, Children is always nil: the forest shape lives in
// the index maps. Children is populated only on the nested form produced by
// [Normalized.Denormalize] and consumed by [Normalize] and the layout
// engine. X and Y are written by the layout engine and ignored by the store.
type Node struct {
	ID        string
	Text      string
	X, Y      float64
	Kind      NodeKind
	Markdown  MarkdownMeta
	Collapsed bool

	// Children is the ordered child sequence in the nested form only.
	Children []*Node
}

// IsTable reports whether the node renders as an atomic table block.
func (n *Node) IsTable() bool { return n.Kind == KindTable }

// IsHeading reports whether the node carries heading markdown semantics.
func (n *Node) IsHeading() bool { return n.Markdown.Type == MarkdownHeading }

// IsList reports whether the node is an ordered or unordered list item.
func (n *Node) IsList() bool {
	return n.Markdown.Type == MarkdownUnorderedList || n.Markdown.Type == MarkdownOrderedList
}

// clone returns a copy of the node with the given children slice.
func (n *Node) clone(children []*Node) *Node {
	c := *n
	c.Children = children
	return &c
}

// Normalized is the flat relational form of a document forest.
//
// Four parts are co-maintained: Nodes maps id to node data (children
// excluded), RootNodeIDs is the ordered sequence of parentless nodes,
// ParentMap maps child id to parent id (roots have no entry), and
// ChildrenMap maps parent id to its ordered child ids. ChildrenMap
// additionally carries the [RootParentID] entry mirroring RootNodeIDs.
//
// Treat values of this type as immutable: use the operation methods, which
// return fresh structures, instead of mutating maps in place.
type Normalized struct {
	Nodes       map[string]*Node
	RootNodeIDs []string
	ParentMap   map[string]string
	ChildrenMap map[string][]string
}

// NewNormalized returns an empty structure with all maps initialized.
func NewNormalized() *Normalized {
	return &Normalized{
		Nodes:       make(map[string]*Node),
		ParentMap:   make(map[string]string),
		ChildrenMap: map[string][]string{RootParentID: nil},
	}
}

// Normalize flattens a forest of nested root nodes into a [Normalized]
// structure. Traversal is pre-order depth-first; every visited node is
// stored stripped of its inline children, and sibling order is preserved in
// ChildrenMap. A nil or empty forest yields an empty structure.
//
// Normalize does not mutate the input nodes.
func Normalize(roots []*Node) *Normalized {
	s := NewNormalized()

	var walk func(n *Node, parentID string)
	walk = func(n *Node, parentID string) {
		s.Nodes[n.ID] = n.clone(nil)
		if parentID != "" {
			s.ParentMap[n.ID] = parentID
		}
		for _, child := range n.Children {
			s.ChildrenMap[n.ID] = append(s.ChildrenMap[n.ID], child.ID)
			walk(child, n.ID)
		}
	}

	for _, root := range roots {
		s.RootNodeIDs = append(s.RootNodeIDs, root.ID)
		walk(root, "")
	}
	s.ChildrenMap[RootParentID] = slices.Clone(s.RootNodeIDs)
	return s
}

// Denormalize rebuilds the nested forest from the flat structure, starting
// at RootNodeIDs. Every node in the result is a fresh copy with Children
// populated in sibling order.
//
// A dangling reference (an id in RootNodeIDs or ChildrenMap with no entry
// in Nodes) returns ErrNodeNotFound. This is a consistency check: a
// structure maintained through this package never triggers it.
func (s *Normalized) Denormalize() ([]*Node, error) {
	var build func(id string) (*Node, error)
	build = func(id string) (*Node, error) {
		n, ok := s.Nodes[id]
		if !ok {
			return nil, fmt.Errorf("denormalize %q: %w", id, ErrNodeNotFound)
		}
		childIDs := s.ChildrenMap[id]
		var children []*Node
		if len(childIDs) > 0 {
			children = make([]*Node, len(childIDs))
			for i, cid := range childIDs {
				child, err := build(cid)
				if err != nil {
					return nil, err
				}
				children[i] = child
			}
		}
		return n.clone(children), nil
	}

	if len(s.RootNodeIDs) == 0 {
		return nil, nil
	}
	roots := make([]*Node, len(s.RootNodeIDs))
	for i, id := range s.RootNodeIDs {
		root, err := build(id)
		if err != nil {
			return nil, err
		}
		roots[i] = root
	}
	return roots, nil
}

// Find returns the node with the given id and true, or nil and false if the
// id does not exist. Absence is an expected condition for callers probing
// selection state, so no error is involved.
func (s *Normalized) Find(id string) (*Node, bool) {
	n, ok := s.Nodes[id]
	return n, ok
}

// NodeCount returns the number of nodes in the document.
func (s *Normalized) NodeCount() int { return len(s.Nodes) }

// Parent returns the parent id of the given node and true, or "" and false
// if the node is a root or does not exist.
func (s *Normalized) Parent(id string) (string, bool) {
	p, ok := s.ParentMap[id]
	return p, ok
}

// Children returns the ordered child ids of the given node.
// The returned slice is a read-only view; do not modify it.
func (s *Normalized) Children(id string) []string { return s.ChildrenMap[id] }

// IsRoot reports whether the id is one of the document roots.
func (s *Normalized) IsRoot(id string) bool {
	return slices.Contains(s.RootNodeIDs, id)
}

// IsDescendant reports whether id lies in the subtree rooted at ancestorID
// (exclusive: a node is not its own descendant). This is the cycle guard
// used before any reparenting commit; cost is O(subtree size) per call.
func (s *Normalized) IsDescendant(ancestorID, id string) bool {
	for _, child := range s.ChildrenMap[ancestorID] {
		if child == id || s.IsDescendant(child, id) {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants and returns nil if they hold:
// every referenced id exists, parent and children maps agree, the root
// mirror matches RootNodeIDs, and the forest is acyclic.
func (s *Normalized) Validate() error {
	for child, parent := range s.ParentMap {
		if _, ok := s.Nodes[child]; !ok {
			return fmt.Errorf("parent map references unknown node %q: %w", child, ErrInconsistentStructure)
		}
		if _, ok := s.Nodes[parent]; !ok {
			return fmt.Errorf("node %q has unknown parent %q: %w", child, parent, ErrInconsistentStructure)
		}
		if !slices.Contains(s.ChildrenMap[parent], child) {
			return fmt.Errorf("node %q missing from children of %q: %w", child, parent, ErrInconsistentStructure)
		}
	}

	for parent, children := range s.ChildrenMap {
		if parent == RootParentID {
			continue
		}
		if _, ok := s.Nodes[parent]; !ok {
			return fmt.Errorf("children map references unknown parent %q: %w", parent, ErrInconsistentStructure)
		}
		seen := make(map[string]bool, len(children))
		for _, child := range children {
			if seen[child] {
				return fmt.Errorf("node %q listed twice under %q: %w", child, parent, ErrInconsistentStructure)
			}
			seen[child] = true
			if s.ParentMap[child] != parent {
				return fmt.Errorf("node %q not linked back to parent %q: %w", child, parent, ErrInconsistentStructure)
			}
		}
	}

	if len(s.Nodes) > 0 && len(s.RootNodeIDs) == 0 {
		return fmt.Errorf("non-empty document has no roots: %w", ErrInconsistentStructure)
	}
	if !slices.Equal(s.RootNodeIDs, s.ChildrenMap[RootParentID]) {
		return fmt.Errorf("root mirror out of sync: %w", ErrInconsistentStructure)
	}
	for _, id := range s.RootNodeIDs {
		if _, ok := s.Nodes[id]; !ok {
			return fmt.Errorf("unknown root %q: %w", id, ErrInconsistentStructure)
		}
		if _, ok := s.ParentMap[id]; ok {
			return fmt.Errorf("root %q has a parent entry: %w", id, ErrInconsistentStructure)
		}
	}

	// Acyclicity: following ParentMap from any node must terminate.
	for id := range s.Nodes {
		steps := 0
		cur := id
		for {
			parent, ok := s.ParentMap[cur]
			if !ok {
				break
			}
			if steps++; steps > len(s.Nodes) {
				return fmt.Errorf("parent chain from %q does not terminate: %w", id, ErrInconsistentStructure)
			}
			cur = parent
		}
	}
	return nil
}

// shallow returns a copy of the structure sharing all maps with s.
// Operations replace only the maps they actually change (via maps.Clone),
// so unmodified parts stay shared between successive structures.
func (s *Normalized) shallow() *Normalized {
	c := *s
	return &c
}
