package tree

import (
	"fmt"
	"maps"
	"slices"
)

// NodeUpdate describes a partial attribute change for [Normalized.Update].
// Nil fields are left untouched. Structure (id, children) is never part of
// an update; relocation goes through the move operations instead.
type NodeUpdate struct {
	Text      *string
	Kind      *NodeKind
	Markdown  *MarkdownMeta
	Collapsed *bool
}

// Update merges the given attributes onto the node with the given id and
// returns the new structure. Only the Nodes map is replaced; the index maps
// are shared with the input. Returns ErrNodeNotFound for an unknown id.
func (s *Normalized) Update(id string, upd NodeUpdate) (*Normalized, error) {
	old, ok := s.Nodes[id]
	if !ok {
		return nil, fmt.Errorf("update %q: %w", id, ErrNodeNotFound)
	}

	n := old.clone(nil)
	if upd.Text != nil {
		n.Text = *upd.Text
	}
	if upd.Kind != nil {
		n.Kind = *upd.Kind
	}
	if upd.Markdown != nil {
		n.Markdown = *upd.Markdown
	}
	if upd.Collapsed != nil {
		n.Collapsed = *upd.Collapsed
	}

	out := s.shallow()
	out.Nodes = maps.Clone(s.Nodes)
	out.Nodes[id] = n
	return out, nil
}

// Delete removes the node and its entire descendant subtree. The node is
// unlinked from its parent's child list; for a root that parent is the
// [RootParentID] mirror and the id is also removed from RootNodeIDs.
//
// Deleting the only remaining root returns ErrLastRoot and leaves the
// structure untouched. A target that is neither a root nor present in
// ParentMap indicates corruption and returns ErrInconsistentStructure.
func (s *Normalized) Delete(id string) (*Normalized, error) {
	if _, ok := s.Nodes[id]; !ok {
		return nil, fmt.Errorf("delete %q: %w", id, ErrNodeNotFound)
	}

	isRoot := s.IsRoot(id)
	parentID, hasParent := s.ParentMap[id]
	switch {
	case isRoot:
		if len(s.RootNodeIDs) == 1 {
			return nil, ErrLastRoot
		}
		parentID = RootParentID
	case !hasParent:
		return nil, fmt.Errorf("delete %q: node has no parent and is not a root: %w", id, ErrInconsistentStructure)
	}

	// Collect the subtree (inclusive) via DFS over the children index.
	doomed := []string{id}
	for i := 0; i < len(doomed); i++ {
		doomed = append(doomed, s.ChildrenMap[doomed[i]]...)
	}

	out := s.shallow()
	out.Nodes = maps.Clone(s.Nodes)
	out.ParentMap = maps.Clone(s.ParentMap)
	out.ChildrenMap = maps.Clone(s.ChildrenMap)
	for _, d := range doomed {
		delete(out.Nodes, d)
		delete(out.ParentMap, d)
		delete(out.ChildrenMap, d)
	}

	out.ChildrenMap[parentID] = removeID(out.ChildrenMap[parentID], id)
	if isRoot {
		out.RootNodeIDs = removeID(s.RootNodeIDs, id)
	}
	return out, nil
}

// Add appends a new node as the last child of parentID. The stored node is
// a childless copy of n; any inline Children on n are ignored.
//
// Fails with ErrDuplicateNodeID if n.ID already exists, ErrParentNotFound
// if the parent id is unknown, and ErrTableChildren if the parent is a
// table node.
func (s *Normalized) Add(parentID string, n *Node) (*Normalized, error) {
	if _, exists := s.Nodes[n.ID]; exists {
		return nil, fmt.Errorf("add %q: %w", n.ID, ErrDuplicateNodeID)
	}
	parent, ok := s.Nodes[parentID]
	if !ok {
		return nil, fmt.Errorf("add %q under %q: %w", n.ID, parentID, ErrParentNotFound)
	}
	if parent.IsTable() {
		return nil, fmt.Errorf("add %q under %q: %w", n.ID, parentID, ErrTableChildren)
	}

	out := s.shallow()
	out.Nodes = maps.Clone(s.Nodes)
	out.ParentMap = maps.Clone(s.ParentMap)
	out.ChildrenMap = maps.Clone(s.ChildrenMap)
	out.Nodes[n.ID] = n.clone(nil)
	out.ParentMap[n.ID] = parentID
	out.ChildrenMap[parentID] = append(slices.Clone(s.ChildrenMap[parentID]), n.ID)
	return out, nil
}

// AddSibling inserts a new node immediately before or after an existing
// non-root sibling, in that sibling's parent child list. Unlike [Add], no
// table/kind validation runs against the parent: the new node joins at the
// anchor's level rather than as a child of a type-restricted parent.
//
// Fails with ErrDuplicateNodeID if n.ID already exists, or ErrNodeNotFound
// if the anchor cannot be located in its expected sibling list.
func (s *Normalized) AddSibling(siblingID string, n *Node, after bool) (*Normalized, error) {
	if _, exists := s.Nodes[n.ID]; exists {
		return nil, fmt.Errorf("add sibling %q: %w", n.ID, ErrDuplicateNodeID)
	}
	parentID, ok := s.ParentMap[siblingID]
	if !ok {
		return nil, fmt.Errorf("add sibling of %q: anchor has no parent: %w", siblingID, ErrNodeNotFound)
	}
	idx := slices.Index(s.ChildrenMap[parentID], siblingID)
	if idx < 0 {
		return nil, fmt.Errorf("add sibling of %q: anchor missing from parent %q: %w", siblingID, parentID, ErrNodeNotFound)
	}
	if after {
		idx++
	}

	out := s.shallow()
	out.Nodes = maps.Clone(s.Nodes)
	out.ParentMap = maps.Clone(s.ParentMap)
	out.ChildrenMap = maps.Clone(s.ChildrenMap)
	out.Nodes[n.ID] = n.clone(nil)
	out.ParentMap[n.ID] = parentID
	out.ChildrenMap[parentID] = slices.Insert(slices.Clone(s.ChildrenMap[parentID]), idx, n.ID)
	return out, nil
}

// AddRootSibling inserts a new root immediately before or after an existing
// root, keeping RootNodeIDs and its ChildrenMap mirror in sync.
//
// Fails with ErrDuplicateNodeID if n.ID already exists, or ErrNodeNotFound
// if the anchor is not a root.
func (s *Normalized) AddRootSibling(rootID string, n *Node, after bool) (*Normalized, error) {
	if _, exists := s.Nodes[n.ID]; exists {
		return nil, fmt.Errorf("add root sibling %q: %w", n.ID, ErrDuplicateNodeID)
	}
	idx := slices.Index(s.RootNodeIDs, rootID)
	if idx < 0 {
		return nil, fmt.Errorf("add root sibling of %q: anchor is not a root: %w", rootID, ErrNodeNotFound)
	}
	if after {
		idx++
	}

	out := s.shallow()
	out.Nodes = maps.Clone(s.Nodes)
	out.ChildrenMap = maps.Clone(s.ChildrenMap)
	out.Nodes[n.ID] = n.clone(nil)
	out.RootNodeIDs = slices.Insert(slices.Clone(s.RootNodeIDs), idx, n.ID)
	out.ChildrenMap[RootParentID] = slices.Clone(out.RootNodeIDs)
	return out, nil
}

// removeID returns a copy of ids without the first occurrence of id.
func removeID(ids []string, id string) []string {
	idx := slices.Index(ids, id)
	if idx < 0 {
		return slices.Clone(ids)
	}
	return slices.Delete(slices.Clone(ids), idx, idx+1)
}
