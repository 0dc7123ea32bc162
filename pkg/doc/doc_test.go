package doc

import (
	"reflect"
	"strings"
	"testing"

	"github.com/canopy-tools/canopy/pkg/tree"
)

func sample() Document {
	return Document{Roots: []Node{
		{
			ID:   "plan",
			Text: "Trip Plan",
			Children: []Node{
				{ID: "intro", Text: "Why we go", Markdown: &Markdown{Type: MarkdownPreface}},
				{
					ID:       "pack",
					Text:     "Packing",
					Markdown: &Markdown{Type: MarkdownHeading, Level: 2},
					Children: []Node{
						{ID: "gear", Kind: KindTable, Text: "| item | qty |"},
						{ID: "boots", Text: "boots", Markdown: &Markdown{Type: MarkdownUnorderedList}},
					},
				},
				{ID: "route", Text: "Route", Collapsed: true, Children: []Node{
					{ID: "day1", Text: "Day 1", Markdown: &Markdown{Type: MarkdownOrderedList}},
				}},
			},
		},
		{ID: "notes", Text: "Notes"},
	}}
}

func TestToTreeFromTreeRoundTrip(t *testing.T) {
	d := sample()

	roots, err := d.ToTree()
	if err != nil {
		t.Fatalf("ToTree error: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(roots))
	}

	plan := roots[0]
	if plan.ID != "plan" || plan.Text != "Trip Plan" {
		t.Errorf("root = %+v", plan)
	}
	if plan.Children[0].Markdown.Type != tree.MarkdownPreface {
		t.Errorf("intro markdown = %+v", plan.Children[0].Markdown)
	}
	pack := plan.Children[1]
	if pack.Markdown.Type != tree.MarkdownHeading || pack.Markdown.Level != 2 {
		t.Errorf("pack markdown = %+v", pack.Markdown)
	}
	if pack.Children[0].Kind != tree.KindTable {
		t.Errorf("gear kind = %v, want table", pack.Children[0].Kind)
	}
	if !pack.Children[1].IsList() {
		t.Error("boots should be a list node")
	}
	if !plan.Children[2].Collapsed {
		t.Error("route should be collapsed")
	}

	back := FromTree(roots)
	if !reflect.DeepEqual(back, d) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, d)
	}
}

func TestToTreeEmpty(t *testing.T) {
	roots, err := Document{}.ToTree()
	if err != nil {
		t.Fatalf("ToTree error: %v", err)
	}
	if roots != nil {
		t.Errorf("empty document should yield nil forest, got %v", roots)
	}
}

func TestToTreeUnknownKind(t *testing.T) {
	d := Document{Roots: []Node{{ID: "a", Kind: "diagram"}}}
	if _, err := d.ToTree(); err == nil || !strings.Contains(err.Error(), `unknown kind "diagram"`) {
		t.Errorf("err = %v, want unknown kind", err)
	}
}

func TestToTreeUnknownMarkdown(t *testing.T) {
	d := Document{Roots: []Node{
		{ID: "a", Children: []Node{
			{ID: "b", Markdown: &Markdown{Type: "blockquote"}},
		}},
	}}
	if _, err := d.ToTree(); err == nil || !strings.Contains(err.Error(), `unknown markdown type "blockquote"`) {
		t.Errorf("err = %v, want unknown markdown type", err)
	}
}

func TestNormalizeFromNormalizedRoundTrip(t *testing.T) {
	d := sample()

	s, err := d.Normalize()
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if s.NodeCount() != 8 {
		t.Errorf("NodeCount = %d, want 8", s.NodeCount())
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	back, err := FromNormalized(s)
	if err != nil {
		t.Fatalf("FromNormalized error: %v", err)
	}
	if !reflect.DeepEqual(back, d) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, d)
	}
}

func TestCoordinatesSurviveConversion(t *testing.T) {
	d := Document{Roots: []Node{{ID: "a", X: 120.5, Y: -33.25}}}

	roots, err := d.ToTree()
	if err != nil {
		t.Fatalf("ToTree error: %v", err)
	}
	if roots[0].X != 120.5 || roots[0].Y != -33.25 {
		t.Errorf("coords = (%v, %v)", roots[0].X, roots[0].Y)
	}

	back := FromTree(roots)
	if back.Roots[0].X != 120.5 || back.Roots[0].Y != -33.25 {
		t.Errorf("serialized coords = (%v, %v)", back.Roots[0].X, back.Roots[0].Y)
	}
}

func TestUnmarshalDocument(t *testing.T) {
	data := []byte(`{
	  "roots": [
	    {
	      "id": "a",
	      "text": "hello",
	      "markdown": {"type": "heading", "level": 1},
	      "children": [{"id": "b", "kind": "table"}]
	    }
	  ]
	}`)

	d, err := UnmarshalDocument(data)
	if err != nil {
		t.Fatalf("UnmarshalDocument error: %v", err)
	}
	if len(d.Roots) != 1 || d.Roots[0].Markdown.Level != 1 {
		t.Errorf("decoded = %+v", d)
	}
	if d.Roots[0].Children[0].Kind != KindTable {
		t.Errorf("child kind = %q", d.Roots[0].Children[0].Kind)
	}

	if _, err := UnmarshalDocument([]byte("{")); err == nil {
		t.Error("truncated JSON should fail")
	}
}
