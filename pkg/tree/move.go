package tree

import (
	"fmt"
	"maps"
	"slices"
)

// Position selects where [Normalized.MoveWithPosition] places the node
// relative to its target.
type Position int

const (
	// PositionBefore inserts the node immediately before the target, as a
	// sibling in the target's parent list.
	PositionBefore Position = iota
	// PositionAfter inserts the node immediately after the target.
	PositionAfter
	// PositionChild appends the node as the last child of the target.
	PositionChild
)

// String returns the lowercase position name.
func (p Position) String() string {
	switch p {
	case PositionBefore:
		return "before"
	case PositionAfter:
		return "after"
	case PositionChild:
		return "child"
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// ParsePosition converts a lowercase position name to a Position.
func ParsePosition(s string) (Position, error) {
	switch s {
	case "before":
		return PositionBefore, nil
	case "after":
		return PositionAfter, nil
	case "child":
		return PositionChild, nil
	}
	return 0, fmt.Errorf("unknown position %q", s)
}

// MoveResult is the outcome of a reparenting attempt.
//
// Invalid drop targets are an ordinary part of drag-and-drop and keyboard
// reparenting, so denial is not an error: OK is false, Reason says why, and
// Structure is the unchanged input. On success Structure is the new
// structure; a no-op move (same parent) returns the input by reference so
// callers can detect it with a cheap equality check.
type MoveResult struct {
	OK        bool
	Reason    string
	Structure *Normalized
}

func moved(s *Normalized) MoveResult { return MoveResult{OK: true, Structure: s} }

func denied(s *Normalized, format string, args ...any) MoveResult {
	return MoveResult{Reason: fmt.Sprintf(format, args...), Structure: s}
}

// Move reparents a node as the last child of newParentID.
//
// Denied with an unchanged structure when: the node or target parent does
// not exist, the node is a root, the target is a table or preface node, the
// markdown placement rules reject it, the node is a table and the target
// already has other children, or the target lies inside the node's own
// subtree (cycle guard). Moving a node to its current parent is a no-op
// success returning the input structure by reference.
func (s *Normalized) Move(nodeID, newParentID string) MoveResult {
	node, ok := s.Nodes[nodeID]
	if !ok {
		return denied(s, "node %q not found", nodeID)
	}
	if s.IsRoot(nodeID) {
		return denied(s, "root nodes cannot be moved")
	}
	curParent, ok := s.ParentMap[nodeID]
	if !ok {
		return denied(s, "node %q has no parent", nodeID)
	}
	newParent, ok := s.Nodes[newParentID]
	if !ok {
		return denied(s, "target parent %q not found", newParentID)
	}
	if newParentID == curParent {
		return moved(s)
	}

	if reason, ok := s.checkTarget(node, newParent); !ok {
		return denied(s, "%s", reason)
	}
	// Appending as last child: the node must not displace the table-first
	// rule, and a list node may not land after existing heading children.
	if node.IsTable() && len(s.ChildrenMap[newParentID]) > 0 {
		return denied(s, "table nodes must be the first child")
	}
	if node.IsList() && newParent.IsHeading() && s.hasHeadingChild(newParentID, nodeID) {
		return denied(s, "list nodes must come before heading children")
	}
	if nodeID == newParentID || s.IsDescendant(nodeID, newParentID) {
		return denied(s, "cannot move a node into its own subtree")
	}

	out := s.shallow()
	out.ParentMap = maps.Clone(s.ParentMap)
	out.ChildrenMap = maps.Clone(s.ChildrenMap)
	out.ChildrenMap[curParent] = removeID(s.ChildrenMap[curParent], nodeID)
	out.ChildrenMap[newParentID] = append(slices.Clone(s.ChildrenMap[newParentID]), nodeID)
	out.ParentMap[nodeID] = newParentID
	return moved(out)
}

// MoveWithPosition generalizes [Normalized.Move]: the node is inserted
// immediately before or after targetID among its siblings, or appended as
// the target's last child. The same cycle guard and table/preface checks
// apply, plus position-aware markdown validation.
//
// For before/after placement within the node's current parent, the
// insertion index is corrected for the node's own removal from the list.
func (s *Normalized) MoveWithPosition(nodeID, targetID string, pos Position) MoveResult {
	if pos == PositionChild {
		return s.Move(nodeID, targetID)
	}

	node, ok := s.Nodes[nodeID]
	if !ok {
		return denied(s, "node %q not found", nodeID)
	}
	if s.IsRoot(nodeID) {
		return denied(s, "root nodes cannot be moved")
	}
	curParent, ok := s.ParentMap[nodeID]
	if !ok {
		return denied(s, "node %q has no parent", nodeID)
	}
	if _, ok := s.Nodes[targetID]; !ok {
		return denied(s, "target %q not found", targetID)
	}
	newParentID, ok := s.ParentMap[targetID]
	if !ok {
		return denied(s, "target %q has no parent", targetID)
	}
	newParent := s.Nodes[newParentID]

	if reason, ok := s.checkTarget(node, newParent); !ok {
		return denied(s, "%s", reason)
	}
	if nodeID == newParentID || s.IsDescendant(nodeID, newParentID) {
		return denied(s, "cannot move a node into its own subtree")
	}

	siblings := s.ChildrenMap[newParentID]
	targetIdx := slices.Index(siblings, targetID)
	if targetIdx < 0 {
		return denied(s, "target %q missing from parent %q", targetID, newParentID)
	}
	insertIdx := targetIdx
	if pos == PositionAfter {
		insertIdx++
	}

	// Removing the node from its old slot shifts indices when both live in
	// the same list and the old slot precedes the insertion point.
	finalIdx := insertIdx
	sameParent := curParent == newParentID
	if sameParent {
		if oldIdx := slices.Index(siblings, nodeID); oldIdx >= 0 && oldIdx < insertIdx {
			finalIdx--
		}
	}

	if node.IsTable() && countOthers(siblings, nodeID) > 0 && finalIdx != 0 {
		return denied(s, "table nodes must be the first child")
	}
	if node.IsList() && newParent.IsHeading() && s.hasHeadingChild(newParentID, nodeID) {
		if reason, ok := s.checkListPlacement(newParentID, nodeID, targetID, pos); !ok {
			return denied(s, "%s", reason)
		}
	}

	out := s.shallow()
	out.ParentMap = maps.Clone(s.ParentMap)
	out.ChildrenMap = maps.Clone(s.ChildrenMap)
	if sameParent {
		list := removeID(siblings, nodeID)
		out.ChildrenMap[newParentID] = slices.Insert(list, finalIdx, nodeID)
	} else {
		out.ChildrenMap[curParent] = removeID(s.ChildrenMap[curParent], nodeID)
		out.ChildrenMap[newParentID] = slices.Insert(slices.Clone(siblings), finalIdx, nodeID)
	}
	out.ParentMap[nodeID] = newParentID
	return moved(out)
}

// ChangeSiblingOrder reorders two existing siblings within their shared
// parent's child list, placing draggedID immediately before or after
// targetID. Reordering a node against itself returns the input structure
// unchanged by reference.
//
// Fails with ErrNodeNotFound if either node lacks a parent entry, or
// ErrDifferentParent if the two nodes have different parents.
func (s *Normalized) ChangeSiblingOrder(draggedID, targetID string, insertBefore bool) (*Normalized, error) {
	if draggedID == targetID {
		return s, nil
	}
	draggedParent, ok := s.ParentMap[draggedID]
	if !ok {
		return nil, fmt.Errorf("reorder %q: node has no parent: %w", draggedID, ErrNodeNotFound)
	}
	targetParent, ok := s.ParentMap[targetID]
	if !ok {
		return nil, fmt.Errorf("reorder against %q: node has no parent: %w", targetID, ErrNodeNotFound)
	}
	if draggedParent != targetParent {
		return nil, fmt.Errorf("reorder %q against %q: %w", draggedID, targetID, ErrDifferentParent)
	}

	list := removeID(s.ChildrenMap[draggedParent], draggedID)
	idx := slices.Index(list, targetID)
	if idx < 0 {
		return nil, fmt.Errorf("reorder against %q: missing from parent %q: %w", targetID, targetParent, ErrInconsistentStructure)
	}
	if !insertBefore {
		idx++
	}

	out := s.shallow()
	out.ChildrenMap = maps.Clone(s.ChildrenMap)
	out.ChildrenMap[draggedParent] = slices.Insert(list, idx, draggedID)
	return out, nil
}

// checkTarget applies the target-side rules shared by Move and
// MoveWithPosition: the receiving parent may not be a table or preface
// node, and heading nodes obey nesting constraints.
func (s *Normalized) checkTarget(node, parent *Node) (string, bool) {
	if parent.IsTable() {
		return "table nodes cannot accept children", false
	}
	if parent.Markdown.Type == MarkdownPreface {
		return "preface nodes cannot accept children", false
	}
	if node.IsHeading() {
		if parent.IsList() {
			return "heading nodes cannot be nested under list nodes", false
		}
		if parent.IsHeading() && parent.Markdown.Level+1 > 6 {
			return "heading nesting depth exceeds level 6", false
		}
	}
	return "", true
}

// checkListPlacement enforces the ordering rule for list nodes joining a
// heading parent that already has heading children: the list must render
// before every sub-heading. For before-placement the target must be the
// first heading sibling; for after-placement no heading sibling may follow
// the target.
func (s *Normalized) checkListPlacement(parentID, nodeID, targetID string, pos Position) (string, bool) {
	siblings := s.ChildrenMap[parentID]
	switch pos {
	case PositionBefore:
		for _, id := range siblings {
			if id == nodeID {
				continue
			}
			if s.Nodes[id].IsHeading() {
				if id == targetID {
					return "", true
				}
				return "list nodes may only be placed immediately before the first heading", false
			}
		}
		return "", true
	case PositionAfter:
		after := false
		for _, id := range siblings {
			if id == targetID {
				after = true
				continue
			}
			if after && id != nodeID && s.Nodes[id].IsHeading() {
				return "list nodes cannot be placed after a heading", false
			}
		}
		return "", true
	}
	return "", true
}

// hasHeadingChild reports whether parentID has a heading child other than
// excludeID.
func (s *Normalized) hasHeadingChild(parentID, excludeID string) bool {
	for _, id := range s.ChildrenMap[parentID] {
		if id == excludeID {
			continue
		}
		if n, ok := s.Nodes[id]; ok && n.IsHeading() {
			return true
		}
	}
	return false
}

// countOthers counts entries in ids other than id.
func countOthers(ids []string, id string) int {
	n := 0
	for _, v := range ids {
		if v != id {
			n++
		}
	}
	return n
}
