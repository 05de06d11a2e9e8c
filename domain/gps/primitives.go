package gps

import "math"

// Rect is an axis aligned box in degrees, stored as [lon0, lat0, lon1, lat1].
// The lower bounds are inclusive, the upper bounds exclusive.
type Rect [4]float64

// WorldBounds contains all valid positions
var WorldBounds = Rect{-180, -90, 180.000001, 90.000001}

// RectFrom returns the rect spanned by two corners given in any order
func RectFrom(x0, y0, x1, y1 float64) Rect {
	return Rect{math.Min(x0, x1), math.Min(y0, y1), math.Max(x0, x1), math.Max(y0, y1)}
}

func RectPointSize(x0, y0, w, h float64) Rect {
	return Rect{x0, y0, x0 + w, y0 + h}
}

func (r Rect) X0() float64 { return r[0] }
func (r Rect) Y0() float64 { return r[1] }
func (r Rect) X1() float64 { return r[2] }
func (r Rect) Y1() float64 { return r[3] }

// W is the width in degrees of longitude
func (r Rect) W() float64 { return r[2] - r[0] }

// H is the height in degrees of latitude
func (r Rect) H() float64 { return r[3] - r[1] }

func (r Rect) Center() Point {
	return Point{r[0] + r.W()/2, r[1] + r.H()/2}
}

func (r Rect) HalfSize() (float64, float64) {
	return r.W() / 2, r.H() / 2
}

// FullyContains reports whether other lies inside r, touching the upper
// bounds of r counts as outside
func (r Rect) FullyContains(other Rect) bool {
	return other[0] >= r[0] && other[1] >= r[1] && other[2] < r[2] && other[3] < r[3]
}

// Point is a position stored as [lon, lat], x before y
type Point [2]float64

func PointFromLatLon(lat, lon float64) Point {
	return Point{lon, lat}
}

func (p Point) X() float64 { return p[0] }
func (p Point) Y() float64 { return p[1] }

// In reports whether p lies in r, see Rect for the bound semantics
func (p Point) In(r Rect) bool {
	return p[0] >= r[0] && p[1] >= r[1] && p[0] < r[2] && p[1] < r[3]
}
