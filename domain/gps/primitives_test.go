package gps_test

import (
	"testing"

	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	"github.com/stretchr/testify/assert"
)

func TestRectFromNormalizesCorners(t *testing.T) {
	r := gps.RectFrom(16.4, 48.3, 16.2, 48.1)
	assert.Equal(t, gps.Rect{16.2, 48.1, 16.4, 48.3}, r)
	assert.InDelta(t, 0.2, r.W(), 1e-9)
	assert.InDelta(t, 0.2, r.H(), 1e-9)
	c := r.Center()
	assert.InDelta(t, 16.3, c.X(), 1e-9)
	assert.InDelta(t, 48.2, c.Y(), 1e-9)
}

func TestPointIn(t *testing.T) {
	bounds := gps.Rect{-1, -1, 1, 2}
	data := []struct {
		p      gps.Point
		inside bool
	}{
		{gps.Point{0, 0}, true},
		{gps.Point{-1, -1}, true},
		{gps.Point{1, 0}, false},
		{gps.Point{0, 2}, false},
		{gps.PointFromLatLon(1.5, 0.5), true},
		{gps.PointFromLatLon(0.5, 1.5), false},
	}
	for _, d := range data {
		assert.Equal(t, d.inside, d.p.In(bounds), "%v", d.p)
	}
}

func TestFullyContains(t *testing.T) {
	outer := gps.RectPointSize(0, 0, 10, 10)
	assert.True(t, outer.FullyContains(gps.RectFrom(1, 1, 9, 9)))
	assert.True(t, outer.FullyContains(gps.RectFrom(0, 0, 9.5, 9.5)))
	assert.False(t, outer.FullyContains(gps.RectFrom(1, 1, 10, 9)), "upper bound is exclusive")
	assert.False(t, outer.FullyContains(gps.RectFrom(-1, 1, 5, 5)))
	assert.True(t, gps.WorldBounds.FullyContains(gps.RectFrom(-180, -90, 180, 90)))
}
