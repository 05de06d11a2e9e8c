package geocoding

import (
	"bitbucket.org/kleinnic74/geosnap/domain/gps"
)

type entry[T any] struct {
	bounds gps.Rect
	data   T
}

// Visitor walks the nodes and objects of a quadtree
type Visitor interface {
	Begin(bounds gps.Rect)
	Level(depth int, bounds gps.Rect)
	Object(bounds gps.Rect)
	End()
}

type quadtree[T any] struct {
	count  int
	Bounds gps.Rect

	root     *node[T]
	capacity int
	maxDepth int
}

type node[T any] struct {
	bounds   gps.Rect
	quads    [4]*node[T]
	entries  []entry[T]
	capacity int
	depth    int
}

func newQuadTree[T any](bounds gps.Rect) *quadtree[T] {
	return &quadtree[T]{Bounds: bounds, capacity: 20, maxDepth: 10}
}

// InsertRect adds o covering r. Rectangles outside of the bounds of the tree
// are rejected.
func (qt *quadtree[T]) InsertRect(r gps.Rect, o T) bool {
	if !qt.Bounds.FullyContains(r) {
		return false
	}
	if qt.root == nil {
		qt.root = newNode[T](r, qt.capacity, qt.maxDepth)
	} else if !qt.root.FullyContains(r) {
		qt.root = qt.root.grow(r)
	}
	qt.root.add(r, o)
	qt.count++
	return true
}

func (qt *quadtree[T]) Len() int {
	return qt.count
}

func (qt *quadtree[T]) Find(p gps.Point) (result []T) {
	if qt.root == nil {
		return
	}
	qt.root.findFunc(p, func(o T, _ gps.Rect) {
		result = append(result, o)
	})
	return
}

func (qt *quadtree[T]) Visit(v Visitor) {
	if qt.root == nil {
		v.Begin(qt.Bounds)
		v.End()
		return
	}
	v.Begin(qt.root.bounds)
	qt.root.visit(v)
	v.End()
}

func newNode[T any](bounds gps.Rect, capacity int, depth int) *node[T] {
	return &node[T]{bounds: bounds, capacity: capacity, depth: depth}
}

func (n *node[T]) FullyContains(r gps.Rect) bool {
	return n.bounds.FullyContains(r)
}

func (n *node[T]) add(r gps.Rect, o T) {
	e := entry[T]{r, o}
	if n.quads[0] == nil {
		if len(n.entries) < n.capacity || n.depth == 0 {
			n.entries = append(n.entries, e)
			return
		}
		n.split()
	}
	if quad := n.choose(r); quad >= 0 {
		n.quads[quad].add(r, o)
	} else {
		n.entries = append(n.entries, e)
	}
}

func (n *node[T]) split() {
	hw, hh := n.bounds.HalfSize()
	b := n.bounds
	n.quads[0] = newNode[T](gps.RectFrom(b[0], b[1], b[0]+hw, b[1]+hh), n.capacity, n.depth-1)
	n.quads[1] = newNode[T](gps.RectFrom(b[0], b[1]+hh, b[0]+hw, b[3]), n.capacity, n.depth-1)
	n.quads[2] = newNode[T](gps.RectFrom(b[0]+hw, b[1], b[2], b[1]+hh), n.capacity, n.depth-1)
	n.quads[3] = newNode[T](gps.RectFrom(b[0]+hw, b[1]+hh, b[2], b[3]), n.capacity, n.depth-1)
	entries := n.entries
	n.entries = nil
	for _, e := range entries {
		if quad := n.choose(e.bounds); quad >= 0 {
			n.quads[quad].add(e.bounds, e.data)
		} else {
			// straddles the split lines
			n.entries = append(n.entries, e)
		}
	}
}

func (n *node[T]) grow(r gps.Rect) *node[T] {
	root := n
	for !root.FullyContains(r) {
		var xmin, ymin float64
		var previousIndex int
		if root.bounds.X0()-r.X0() > r.X1()-root.bounds.X1() {
			xmin = root.bounds.X0() - root.bounds.W()
			previousIndex += 2
		} else {
			xmin = root.bounds.X0()
		}
		if root.bounds.Y0()-r.Y0() > r.Y1()-root.bounds.Y1() {
			ymin = root.bounds.Y0() - root.bounds.H()
			previousIndex++
		} else {
			ymin = root.bounds.Y0()
		}
		newRoot := newNode[T](gps.RectPointSize(xmin, ymin, root.bounds.W()*2, root.bounds.H()*2), n.capacity, root.depth+1)
		for i := 0; i < 4; i++ {
			if i == previousIndex {
				newRoot.quads[i] = root
				continue
			}
			dx := float64(i/2) * root.bounds.W()
			dy := float64(i%2) * root.bounds.H()
			newRoot.quads[i] = newNode[T](gps.RectPointSize(xmin+dx, ymin+dy, root.bounds.W(), root.bounds.H()), n.capacity, root.depth)
		}
		root = newRoot
	}
	return root
}

func (n *node[T]) choose(r gps.Rect) int {
	for i := 0; i < 4; i++ {
		if n.quads[i].bounds.FullyContains(r) {
			return i
		}
	}
	return -1
}

func (n *node[T]) findFunc(p gps.Point, f func(T, gps.Rect)) {
	if !p.In(n.bounds) {
		return
	}
	for _, e := range n.entries {
		if p.In(e.bounds) {
			f(e.data, e.bounds)
		}
	}
	if n.quads[0] != nil {
		quad := 0
		dx, dy := p.X()-(n.bounds[0]+n.bounds.W()/2), p.Y()-(n.bounds[1]+n.bounds.H()/2)
		if dx > 0 {
			quad += 2
		}
		if dy > 0 {
			quad++
		}
		n.quads[quad].findFunc(p, f)
	}
}

func (n *node[T]) visit(v Visitor) {
	v.Level(n.depth, n.bounds)
	for _, e := range n.entries {
		v.Object(e.bounds)
	}
	if n.quads[0] != nil {
		for i := range n.quads {
			n.quads[i].visit(v)
		}
	}
}
