package tree

import (
	"errors"
	"slices"
	"testing"
)

// fixture builds the two-root forest used across the store tests:
//
//	a
//	├── b
//	│   ├── d
//	│   └── e
//	└── c
//	f
func fixture() *Normalized {
	return Normalize([]*Node{
		{ID: "a", Text: "alpha", Children: []*Node{
			{ID: "b", Text: "bravo", Children: []*Node{
				{ID: "d", Text: "delta"},
				{ID: "e", Text: "echo"},
			}},
			{ID: "c", Text: "charlie"},
		}},
		{ID: "f", Text: "foxtrot"},
	})
}

func TestNormalizeShape(t *testing.T) {
	s := fixture()

	if s.NodeCount() != 6 {
		t.Errorf("NodeCount() = %d, want 6", s.NodeCount())
	}
	if !slices.Equal(s.RootNodeIDs, []string{"a", "f"}) {
		t.Errorf("RootNodeIDs = %v, want [a f]", s.RootNodeIDs)
	}
	if !slices.Equal(s.ChildrenMap[RootParentID], s.RootNodeIDs) {
		t.Errorf("root mirror %v out of sync with %v", s.ChildrenMap[RootParentID], s.RootNodeIDs)
	}
	if !slices.Equal(s.ChildrenMap["a"], []string{"b", "c"}) {
		t.Errorf("children of a = %v, want [b c]", s.ChildrenMap["a"])
	}
	if !slices.Equal(s.ChildrenMap["b"], []string{"d", "e"}) {
		t.Errorf("children of b = %v, want [d e]", s.ChildrenMap["b"])
	}

	// Parent entries exist for every non-root, and only for non-roots.
	wantParents := map[string]string{"b": "a", "c": "a", "d": "b", "e": "b"}
	for child, parent := range wantParents {
		if s.ParentMap[child] != parent {
			t.Errorf("ParentMap[%s] = %s, want %s", child, s.ParentMap[child], parent)
		}
	}
	if _, ok := s.ParentMap["a"]; ok {
		t.Error("root a should not have a parent entry")
	}

	// Stored nodes carry no inline children.
	for id, n := range s.Nodes {
		if n.Children != nil {
			t.Errorf("stored node %s still has inline children", id)
		}
	}

	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	s := Normalize(nil)
	if s.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want 0", s.NodeCount())
	}
	if len(s.RootNodeIDs) != 0 {
		t.Errorf("RootNodeIDs = %v, want empty", s.RootNodeIDs)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() on empty = %v, want nil", err)
	}

	roots, err := s.Denormalize()
	if err != nil {
		t.Fatalf("Denormalize error: %v", err)
	}
	if roots != nil {
		t.Errorf("Denormalize on empty = %v, want nil", roots)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	root := &Node{ID: "a", Children: []*Node{{ID: "b"}}}
	Normalize([]*Node{root})

	if len(root.Children) != 1 || root.Children[0].ID != "b" {
		t.Error("Normalize mutated the input forest")
	}
}

func TestDenormalizeRoundTrip(t *testing.T) {
	s := fixture()

	roots, err := s.Denormalize()
	if err != nil {
		t.Fatalf("Denormalize error: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(roots))
	}

	a := roots[0]
	if a.ID != "a" || len(a.Children) != 2 {
		t.Fatalf("root a = %+v, want 2 children", a)
	}
	b := a.Children[0]
	if b.ID != "b" || len(b.Children) != 2 || b.Children[0].ID != "d" || b.Children[1].ID != "e" {
		t.Errorf("subtree under b wrong: %+v", b)
	}
	if a.Children[1].ID != "c" {
		t.Errorf("second child of a = %s, want c", a.Children[1].ID)
	}
	if roots[1].ID != "f" || len(roots[1].Children) != 0 {
		t.Errorf("root f wrong: %+v", roots[1])
	}

	// Normalizing the rebuilt forest reproduces the same flat form.
	again := Normalize(roots)
	if !slices.Equal(again.RootNodeIDs, s.RootNodeIDs) {
		t.Errorf("round-trip roots = %v, want %v", again.RootNodeIDs, s.RootNodeIDs)
	}
	for id := range s.Nodes {
		if !slices.Equal(again.ChildrenMap[id], s.ChildrenMap[id]) {
			t.Errorf("round-trip children of %s = %v, want %v", id, again.ChildrenMap[id], s.ChildrenMap[id])
		}
	}
}

func TestDenormalizeDangling(t *testing.T) {
	s := fixture()
	s = s.shallow()
	s.RootNodeIDs = append(slices.Clone(s.RootNodeIDs), "ghost")

	if _, err := s.Denormalize(); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Denormalize with dangling root = %v, want ErrNodeNotFound", err)
	}
}

func TestFind(t *testing.T) {
	s := fixture()

	n, ok := s.Find("d")
	if !ok || n.Text != "delta" {
		t.Errorf("Find(d) = %+v, %v", n, ok)
	}
	if _, ok := s.Find("ghost"); ok {
		t.Error("Find(ghost) should report absence")
	}
}

func TestParentChildrenIsRoot(t *testing.T) {
	s := fixture()

	if p, ok := s.Parent("d"); !ok || p != "b" {
		t.Errorf("Parent(d) = %q, %v, want b, true", p, ok)
	}
	if _, ok := s.Parent("a"); ok {
		t.Error("Parent(a) should be absent for a root")
	}
	if !slices.Equal(s.Children("a"), []string{"b", "c"}) {
		t.Errorf("Children(a) = %v", s.Children("a"))
	}
	if s.Children("d") != nil {
		t.Errorf("Children(d) = %v, want nil", s.Children("d"))
	}
	if !s.IsRoot("a") || !s.IsRoot("f") {
		t.Error("a and f should be roots")
	}
	if s.IsRoot("b") {
		t.Error("b should not be a root")
	}
}

func TestIsDescendant(t *testing.T) {
	s := fixture()

	tests := []struct {
		ancestor, id string
		want         bool
	}{
		{"a", "d", true},
		{"a", "c", true},
		{"b", "e", true},
		{"b", "c", false},
		{"a", "f", false},
		{"d", "a", false},
		{"a", "a", false}, // exclusive: not its own descendant
	}
	for _, tt := range tests {
		if got := s.IsDescendant(tt.ancestor, tt.id); got != tt.want {
			t.Errorf("IsDescendant(%s, %s) = %v, want %v", tt.ancestor, tt.id, got, tt.want)
		}
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	tests := []struct {
		name  string
		corrupt func(*Normalized)
	}{
		{"unknown parent reference", func(s *Normalized) {
			s.ParentMap["d"] = "ghost"
		}},
		{"child missing from parent list", func(s *Normalized) {
			s.ChildrenMap["b"] = []string{"e"}
		}},
		{"duplicate child entry", func(s *Normalized) {
			s.ChildrenMap["b"] = []string{"d", "d", "e"}
		}},
		{"root mirror out of sync", func(s *Normalized) {
			s.ChildrenMap[RootParentID] = []string{"f", "a"}
		}},
		{"root with parent entry", func(s *Normalized) {
			s.ParentMap["f"] = "a"
			s.ChildrenMap["a"] = append(slices.Clone(s.ChildrenMap["a"]), "f")
		}},
		{"parent cycle", func(s *Normalized) {
			// b already parents d; pointing b's parent at d closes a loop.
			s.ParentMap["b"] = "d"
			s.ChildrenMap["d"] = []string{"b"}
			s.ChildrenMap["a"] = []string{"c"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fixture()
			tt.corrupt(s)
			if err := s.Validate(); !errors.Is(err, ErrInconsistentStructure) {
				t.Errorf("Validate() = %v, want ErrInconsistentStructure", err)
			}
		})
	}
}

func TestNodePredicates(t *testing.T) {
	table := &Node{ID: "t", Kind: KindTable}
	heading := &Node{ID: "h", Markdown: MarkdownMeta{Type: MarkdownHeading, Level: 2}}
	ul := &Node{ID: "u", Markdown: MarkdownMeta{Type: MarkdownUnorderedList}}
	ol := &Node{ID: "o", Markdown: MarkdownMeta{Type: MarkdownOrderedList}}
	plain := &Node{ID: "p"}

	if !table.IsTable() || plain.IsTable() {
		t.Error("IsTable wrong")
	}
	if !heading.IsHeading() || ul.IsHeading() {
		t.Error("IsHeading wrong")
	}
	if !ul.IsList() || !ol.IsList() || heading.IsList() || plain.IsList() {
		t.Error("IsList wrong")
	}
}
