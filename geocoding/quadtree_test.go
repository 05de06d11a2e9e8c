package geocoding

import (
	"testing"

	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	"github.com/stretchr/testify/assert"
)

func TestQuadTreeFind(t *testing.T) {
	data := []struct {
		rects []gps.Rect
		point gps.Point
		in    []int
	}{
		{
			rects: []gps.Rect{
				gps.RectFrom(16.3551666, 48.2018494, 16.3751666, 48.2218494),
				gps.RectFrom(16.2433526, 48.0455922, 16.3233526, 48.1255922),
			},
			point: gps.Point{16.3651666, 48.2118494},
			in:    []int{0},
		},
		{
			rects: []gps.Rect{
				gps.RectFrom(-10, -10, 10, 10),
				gps.RectFrom(-1, -1, 1, 1),
			},
			point: gps.Point{0.5, 0.5},
			in:    []int{0, 1},
		},
		{
			rects: []gps.Rect{gps.RectFrom(-1, -1, 1, 1)},
			point: gps.Point{5, 5},
		},
	}
	for i, d := range data {
		qt := newQuadTree[int](gps.WorldBounds)
		for nb, rect := range d.rects {
			assert.True(t, qt.InsertRect(rect, nb))
		}
		assert.ElementsMatch(t, d.in, qt.Find(d.point), "case %d", i)
	}
}

func TestQuadTreeRejectsOutOfBounds(t *testing.T) {
	qt := newQuadTree[string](gps.WorldBounds)
	assert.False(t, qt.InsertRect(gps.RectFrom(170, 10, 190, 20), "dateline"))
	assert.Equal(t, 0, qt.Len())
	assert.Empty(t, qt.Find(gps.Point{175, 15}))
}

func TestQuadTreeSplit(t *testing.T) {
	qt := newQuadTree[int](gps.WorldBounds)
	r := gps.RectFrom(16.2433526, 48.0455922, 16.3233526, 48.1255922)
	for i := 0; i < 100; i++ {
		qt.InsertRect(r, i)
		r = gps.RectPointSize(r.X1()+0.01, r.Y1()+0.01, r.W(), r.H())
	}
	assert.Equal(t, 100, qt.Len())
	matching := qt.Find(gps.PointFromLatLon(48.0855922, 16.2833526))
	if len(matching) != 1 {
		t.Fatalf("Expected to match exactly one rectangle but found %d", len(matching))
	}
	if matching[0] != 0 {
		t.Errorf("Bad index returned, expected 0, got %d", matching[0])
	}
}

func TestQuadTreeSingle(t *testing.T) {
	qt := newQuadTree[string](gps.WorldBounds)
	qt.InsertRect(gps.RectFrom(-40, -30, -35, -20), "one")
	qt.InsertRect(gps.RectFrom(20, 30, 31, 50), "two")
	qt.InsertRect(gps.RectFrom(28, 45, 33, 49), "three")

	items := qt.Find(gps.Point{30, 30})
	assert.Equal(t, []string{"two"}, items)
}

func TestNodeSplitAndAdd(t *testing.T) {
	node := newNode[string](gps.RectFrom(-1, -1, 1, 1), 5, 2)
	node.split()
	for i := 0; i < 4; i++ {
		assert.Equal(t, 1, node.quads[i].depth, "Bad depth for node %d", i)
	}
	assert.Equal(t, gps.RectFrom(-1, -1, 0, 0), node.quads[0].bounds)
	assert.Equal(t, gps.RectFrom(-1, 0, 0, 1), node.quads[1].bounds)
	assert.Equal(t, gps.RectFrom(0, -1, 1, 0), node.quads[2].bounds)
	assert.Equal(t, gps.RectFrom(0, 0, 1, 1), node.quads[3].bounds)
	node.add(gps.RectFrom(-0.6, 0.2, -0.4, 0.4), "quadOne")
	node.add(gps.RectFrom(0.6, -0.6, 0.8, -0.4), "quadTwo")
	assert.Equal(t, "quadOne", node.quads[1].entries[0].data)
	assert.Equal(t, "quadTwo", node.quads[2].entries[0].data)
}
