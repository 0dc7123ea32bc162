package layout

import (
	"math"

	"github.com/canopy-tools/canopy/pkg/tree"
)

// Layout computes coordinates for every node reachable from root and
// returns a fully positioned clone. The input tree is never mutated. The
// root's center is the config's effective center; children fan out to the
// right by depth and stack top to bottom in sibling order.
//
// A nil root returns nil.
func Layout(root *tree.Node, cfg Config) *tree.Node {
	if root == nil {
		return nil
	}
	p := newPass(cfg.withDefaults())
	clone := cloneTree(root)
	clone.X, clone.Y = p.cfg.effectiveCenter()
	p.place(clone)
	return clone
}

// Height returns the subtree actual height of root under the given config:
// the vertical space the node and its visible descendants occupy. Callers
// stacking multiple roots use this to offset successive root centers.
func Height(root *tree.Node, cfg Config) float64 {
	if root == nil {
		return 0
	}
	p := newPass(cfg.withDefaults())
	return p.subtreeHeight(root)
}

// pass holds the memoization state for a single layout invocation.
//
// Three caches are populated and consulted, each keyed by exactly the
// inputs that can change its result within one pass: content-box size by
// id+text+fontsize, subtree height by id+collapse+child count, and subtree
// vertical bounds by id+current y+collapse. Caches never outlive the pass;
// node content or collapse state may change between calls, and a stale
// entry would silently corrupt geometry.
type pass struct {
	cfg     Config
	sizes   map[sizeKey]Size
	heights map[heightKey]float64
	bounds  map[boundsKey]extent
}

type sizeKey struct {
	id       string
	text     string
	fontSize float64
}

type heightKey struct {
	id         string
	collapsed  bool
	childCount int
}

type boundsKey struct {
	id        string
	y         float64
	collapsed bool
}

// extent is a vertical interval (top < bottom, y grows downward).
type extent struct {
	top    float64
	bottom float64
}

func newPass(cfg Config) *pass {
	return &pass{
		cfg:     cfg,
		sizes:   make(map[sizeKey]Size),
		heights: make(map[heightKey]float64),
		bounds:  make(map[boundsKey]extent),
	}
}

// size returns the node's memoized content box.
func (p *pass) size(n *tree.Node) Size {
	key := sizeKey{id: n.ID, text: n.Text, fontSize: p.cfg.FontSize}
	if s, ok := p.sizes[key]; ok {
		return s
	}
	s := p.cfg.Sizer.Size(n.Text, p.cfg.FontSize)
	p.sizes[key] = s
	return s
}

// subtreeHeight returns the vertical space the node and its visible
// descendants occupy: the maximum of the node's own content height and the
// stacked heights of its children plus inter-child gaps. Collapsed and
// childless nodes occupy exactly their content height.
func (p *pass) subtreeHeight(n *tree.Node) float64 {
	key := heightKey{id: n.ID, collapsed: n.Collapsed, childCount: len(n.Children)}
	if h, ok := p.heights[key]; ok {
		return h
	}

	own := p.size(n).Height
	h := own
	if !n.Collapsed && len(n.Children) > 0 {
		sum := 0.0
		for _, c := range n.Children {
			sum += p.subtreeHeight(c)
		}
		sum += float64(len(n.Children)-1) * p.cfg.SiblingSpacing
		h = math.Max(own, sum)
	}
	p.heights[key] = h
	return h
}

// place assigns coordinates to every visible descendant of n, assuming
// n's own X/Y are already set. Children are stacked by walking a cursor
// from -total/2 to +total/2 around the parent's center, with each child
// centered inside its own subtree-height slot. After the recursive
// descent, n is re-centered on the min/max vertical extent of its
// children so parents sit at the midpoint of their subtree, not merely of
// their immediate children's centers.
func (p *pass) place(n *tree.Node) {
	if n.Collapsed || len(n.Children) == 0 {
		return
	}

	parentSize := p.size(n)
	total := 0.0
	for _, c := range n.Children {
		total += p.subtreeHeight(c)
	}
	total += float64(len(n.Children)-1) * p.cfg.SiblingSpacing

	cursor := n.Y - total/2
	for _, c := range n.Children {
		h := p.subtreeHeight(c)
		childSize := p.size(c)
		c.Y = cursor + h/2
		c.X = n.X + parentSize.Width/2 + p.gap(parentSize, childSize) + childSize.Width/2
		cursor += h + p.cfg.SiblingSpacing
		p.place(c)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range n.Children {
		b := p.subtreeBounds(c)
		lo = math.Min(lo, b.top)
		hi = math.Max(hi, b.bottom)
	}
	n.Y = (lo + hi) / 2
}

// gap returns the horizontal spacing between a parent's right edge and a
// child's left edge. The width-dependent term makes wider boxes repel
// further, pushing deeper levels right under long labels.
func (p *pass) gap(parent, child Size) float64 {
	return p.cfg.LevelSpacing + (parent.Width+child.Width)*levelSpacingFactor
}

// subtreeBounds returns the vertical extent of the node's content box and
// all its visible descendants, memoized by id, current y, and collapse
// state.
func (p *pass) subtreeBounds(n *tree.Node) extent {
	key := boundsKey{id: n.ID, y: n.Y, collapsed: n.Collapsed}
	if b, ok := p.bounds[key]; ok {
		return b
	}

	half := p.size(n).Height / 2
	b := extent{top: n.Y - half, bottom: n.Y + half}
	if !n.Collapsed {
		for _, c := range n.Children {
			cb := p.subtreeBounds(c)
			b.top = math.Min(b.top, cb.top)
			b.bottom = math.Max(b.bottom, cb.bottom)
		}
	}
	p.bounds[key] = b
	return b
}

// cloneTree deep-copies a nested tree so the caller's input stays pristine.
func cloneTree(n *tree.Node) *tree.Node {
	c := *n
	if len(n.Children) > 0 {
		c.Children = make([]*tree.Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = cloneTree(child)
		}
	}
	return &c
}
