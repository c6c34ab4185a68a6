package world

// Rect is an axis-aligned rectangle in chunk-coordinate space.
// Min is inclusive, Max is exclusive.
type Rect struct {
	X0, Y0 int
	X1, Y1 int
}

// Intersects reports whether two rects overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X0 < o.X1 && r.X1 > o.X0 && r.Y0 < o.Y1 && r.Y1 > o.Y0
}

// ContainsPoint reports whether the rect contains a point.
func (r Rect) ContainsPoint(x, y int) bool {
	return x >= r.X0 && x < r.X1 && y >= r.Y0 && y < r.Y1
}

const (
	quadCapacity = 16
	quadMaxDepth = 12

	// quadExtent bounds the index in chunk coordinates. Far more world
	// than any run can load.
	quadExtent = 1 << 21
)

type quadItem struct {
	key ChunkKey
}

// QuadNode is a quadtree over chunk coordinates, used by the chunk manager
// for range queries and eviction scans.
type QuadNode struct {
	bounds Rect
	depth  int
	items  []quadItem
	child  [4]*QuadNode
}

// NewQuadIndex creates an empty quadtree spanning the whole chunk space.
func NewQuadIndex() *QuadNode {
	return newQuadNode(Rect{X0: -quadExtent, Y0: -quadExtent, X1: quadExtent, Y1: quadExtent}, 0)
}

func newQuadNode(bounds Rect, depth int) *QuadNode {
	return &QuadNode{
		bounds: bounds,
		depth:  depth,
		items:  make([]quadItem, 0, quadCapacity),
	}
}

// Insert adds a chunk key to the index. The caller ensures no duplicates.
func (n *QuadNode) Insert(key ChunkKey) {
	if n.child[0] != nil {
		if c := n.childThatContains(key); c != nil {
			c.Insert(key)
			return
		}
	}

	n.items = append(n.items, quadItem{key: key})

	if len(n.items) > quadCapacity && n.depth < quadMaxDepth {
		n.subdivide()
		kept := n.items[:0]
		for _, it := range n.items {
			if c := n.childThatContains(it.key); c != nil {
				c.Insert(it.key)
			} else {
				kept = append(kept, it)
			}
		}
		n.items = kept
	}
}

// Remove deletes a chunk key from the index. Returns true if found.
func (n *QuadNode) Remove(key ChunkKey) bool {
	for i, it := range n.items {
		if it.key == key {
			n.items[i] = n.items[len(n.items)-1]
			n.items = n.items[:len(n.items)-1]
			return true
		}
	}
	if n.child[0] == nil {
		return false
	}
	if c := n.childThatContains(key); c != nil {
		return c.Remove(key)
	}
	return false
}

// Query appends every indexed key inside r to out and returns it.
func (n *QuadNode) Query(r Rect, out []ChunkKey) []ChunkKey {
	if !n.bounds.Intersects(r) {
		return out
	}
	for _, it := range n.items {
		if r.ContainsPoint(it.key.X, it.key.Y) {
			out = append(out, it.key)
		}
	}
	if n.child[0] == nil {
		return out
	}
	for i := 0; i < 4; i++ {
		out = n.child[i].Query(r, out)
	}
	return out
}

// Walk visits every indexed key.
func (n *QuadNode) Walk(fn func(ChunkKey)) {
	for _, it := range n.items {
		fn(it.key)
	}
	if n.child[0] == nil {
		return
	}
	for i := 0; i < 4; i++ {
		n.child[i].Walk(fn)
	}
}

// Len returns the number of indexed keys.
func (n *QuadNode) Len() int {
	total := len(n.items)
	if n.child[0] != nil {
		for i := 0; i < 4; i++ {
			total += n.child[i].Len()
		}
	}
	return total
}

func (n *QuadNode) subdivide() {
	if n.child[0] != nil {
		return
	}
	mx := (n.bounds.X0 + n.bounds.X1) / 2
	my := (n.bounds.Y0 + n.bounds.Y1) / 2
	n.child[0] = newQuadNode(Rect{X0: n.bounds.X0, Y0: n.bounds.Y0, X1: mx, Y1: my}, n.depth+1)
	n.child[1] = newQuadNode(Rect{X0: mx, Y0: n.bounds.Y0, X1: n.bounds.X1, Y1: my}, n.depth+1)
	n.child[2] = newQuadNode(Rect{X0: n.bounds.X0, Y0: my, X1: mx, Y1: n.bounds.Y1}, n.depth+1)
	n.child[3] = newQuadNode(Rect{X0: mx, Y0: my, X1: n.bounds.X1, Y1: n.bounds.Y1}, n.depth+1)
}

func (n *QuadNode) childThatContains(key ChunkKey) *QuadNode {
	for i := 0; i < 4; i++ {
		c := n.child[i]
		if c != nil && c.bounds.ContainsPoint(key.X, key.Y) {
			return c
		}
	}
	return nil
}
