package layout

import (
	"math"
	"testing"

	"github.com/canopy-tools/canopy/pkg/tree"
)

// fixedSizer gives every node the same content box so expected coordinates
// can be computed by hand.
type fixedSizer struct {
	w, h float64
}

func (f fixedSizer) Size(string, float64) Size { return Size{Width: f.w, Height: f.h} }

func testConfig() Config {
	return Config{
		CenterX:        400,
		CenterY:        300,
		LevelSpacing:   50,
		SiblingSpacing: 10,
		FontSize:       14,
		Sizer:          fixedSizer{w: 100, h: 20},
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLayoutNilRoot(t *testing.T) {
	if Layout(nil, testConfig()) != nil {
		t.Error("nil root should yield nil")
	}
	if Height(nil, testConfig()) != 0 {
		t.Error("nil root should have zero height")
	}
}

func TestLayoutRootAnchor(t *testing.T) {
	out := Layout(&tree.Node{ID: "r"}, testConfig())
	if !approx(out.X, 400) || !approx(out.Y, 300) {
		t.Errorf("root at (%v, %v), want (400, 300)", out.X, out.Y)
	}
}

func TestLayoutChildrenStack(t *testing.T) {
	root := &tree.Node{ID: "r", Children: []*tree.Node{
		{ID: "c1"},
		{ID: "c2"},
	}}
	out := Layout(root, testConfig())

	// Two 20-high subtrees with a 10 gap stack symmetrically around the
	// parent: centers at Y-15 and Y+15.
	if !approx(out.Children[0].Y, 285) {
		t.Errorf("c1.Y = %v, want 285", out.Children[0].Y)
	}
	if !approx(out.Children[1].Y, 315) {
		t.Errorf("c2.Y = %v, want 315", out.Children[1].Y)
	}

	// X: parent half width (50) + gap (50 + 200*0.05 = 60) + child half
	// width (50) right of the parent center.
	wantX := 400.0 + 50 + 60 + 50
	for i, c := range out.Children {
		if !approx(c.X, wantX) {
			t.Errorf("child %d X = %v, want %v", i, c.X, wantX)
		}
	}

	// Symmetric children leave the parent centered.
	if !approx(out.Y, 300) {
		t.Errorf("root.Y = %v, want 300", out.Y)
	}
}

func TestLayoutParentRecentering(t *testing.T) {
	// An uneven tree: the first child carries a subtree, the second is a
	// leaf. The parent must end up at the midpoint of the full vertical
	// extent of its children, not of their content boxes.
	root := &tree.Node{ID: "r", Children: []*tree.Node{
		{ID: "c1", Children: []*tree.Node{{ID: "g1"}, {ID: "g2"}, {ID: "g3"}}},
		{ID: "c2"},
	}}
	out := Layout(root, testConfig())

	lo := math.Inf(1)
	hi := math.Inf(-1)
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		lo = math.Min(lo, n.Y-10)
		hi = math.Max(hi, n.Y+10)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, c := range out.Children {
		walk(c)
	}
	if !approx(out.Y, (lo+hi)/2) {
		t.Errorf("root.Y = %v, want midpoint %v of [%v, %v]", out.Y, (lo+hi)/2, lo, hi)
	}
}

func TestLayoutCollapsed(t *testing.T) {
	root := &tree.Node{ID: "r", Children: []*tree.Node{
		{ID: "c1", Collapsed: true, Children: []*tree.Node{{ID: "g1"}, {ID: "g2"}}},
		{ID: "c2"},
	}}
	out := Layout(root, testConfig())

	// A collapsed subtree occupies only its own content height, so the two
	// children stack as two 20-high boxes.
	if !approx(out.Children[0].Y, 285) || !approx(out.Children[1].Y, 315) {
		t.Errorf("children at %v and %v, want 285 and 315",
			out.Children[0].Y, out.Children[1].Y)
	}

	// Hidden descendants are never positioned.
	for _, g := range out.Children[0].Children {
		if g.X != 0 || g.Y != 0 {
			t.Errorf("hidden node %s positioned at (%v, %v)", g.ID, g.X, g.Y)
		}
	}
}

func TestLayoutDoesNotMutateInput(t *testing.T) {
	root := &tree.Node{ID: "r", Children: []*tree.Node{{ID: "c"}}}
	Layout(root, testConfig())

	if root.X != 0 || root.Y != 0 || root.Children[0].X != 0 {
		t.Error("Layout wrote coordinates onto the input tree")
	}
}

func TestLayoutDeterministic(t *testing.T) {
	root := &tree.Node{ID: "r", Text: "root", Children: []*tree.Node{
		{ID: "a", Text: "first child", Children: []*tree.Node{{ID: "a1", Text: "leaf"}}},
		{ID: "b", Text: "second"},
	}}
	cfg := Config{CenterX: 100, CenterY: 100}

	first := Layout(root, cfg)
	second := Layout(root, cfg)

	var compare func(a, b *tree.Node)
	compare = func(a, b *tree.Node) {
		if a.X != b.X || a.Y != b.Y {
			t.Errorf("node %s: (%v, %v) vs (%v, %v)", a.ID, a.X, a.Y, b.X, b.Y)
		}
		for i := range a.Children {
			compare(a.Children[i], b.Children[i])
		}
	}
	compare(first, second)
}

func TestLayoutPanelShift(t *testing.T) {
	cfg := testConfig()
	cfg.Chrome = ChromeState{ActivePanel: "notes"}
	out := Layout(&tree.Node{ID: "r"}, cfg)
	if !approx(out.X, 400-panelWidth/2) {
		t.Errorf("root.X = %v, want %v", out.X, 400-panelWidth/2)
	}

	cfg.Chrome.PanelCollapsed = true
	out = Layout(&tree.Node{ID: "r"}, cfg)
	if !approx(out.X, 400) {
		t.Errorf("root.X with collapsed panel = %v, want 400", out.X)
	}
}

func TestHeight(t *testing.T) {
	cfg := testConfig()

	if h := Height(&tree.Node{ID: "r"}, cfg); !approx(h, 20) {
		t.Errorf("leaf height = %v, want 20", h)
	}

	root := &tree.Node{ID: "r", Children: []*tree.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	// Three 20-high children plus two 10 gaps.
	if h := Height(root, cfg); !approx(h, 80) {
		t.Errorf("subtree height = %v, want 80", h)
	}

	root.Collapsed = true
	if h := Height(root, cfg); !approx(h, 20) {
		t.Errorf("collapsed height = %v, want 20", h)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.LevelSpacing != DefaultLevelSpacing ||
		cfg.SiblingSpacing != DefaultSiblingSpacing ||
		cfg.FontSize != DefaultFontSize ||
		cfg.Wrap.MaxWidth != DefaultWrapWidth {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Sizer == nil {
		t.Error("default sizer not installed")
	}

	// Explicit values survive.
	cfg = Config{LevelSpacing: 1, SiblingSpacing: 2, FontSize: 3}.withDefaults()
	if cfg.LevelSpacing != 1 || cfg.SiblingSpacing != 2 || cfg.FontSize != 3 {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}
