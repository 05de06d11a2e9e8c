package geocoding

import (
	"fmt"
	"io"

	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	svg "github.com/ajstarks/svgo"
)

var (
	strokeGrid   = []string{`stroke="gray"`, `stroke-width="0.2px"`, `fill="none"`}
	strokeQuad   = []string{`stroke="blue"`, `stroke-width="0.1px"`}
	strokeObject = []string{`stroke="red"`, `stroke-width="0.1px"`, `fill="none"`}
)

// GeoView is a Visitor rendering the quadtree of a Cache as SVG, mostly
// for debugging the spread of cached places
type GeoView struct {
	canvas *svg.SVG
	levels int
	places int
}

func NewGeoView(out io.Writer) *GeoView {
	return &GeoView{canvas: svg.New(out)}
}

// WriteSVG renders the content of c to out
func WriteSVG(out io.Writer, c *Cache) {
	c.Visit(NewGeoView(out))
}

func xlinePath(bounds gps.Rect) string {
	center := bounds.Center()
	return fmt.Sprintf("M %f %f l %f %f", bounds.X0(), center.Y(), bounds.W(), 0.)
}

func ylinePath(bounds gps.Rect) string {
	center := bounds.Center()
	return fmt.Sprintf("M %f %f l %f %f", center.X(), bounds.Y0(), 0., bounds.H())
}

func rectPath(bounds gps.Rect) string {
	return fmt.Sprintf("M %f %f l 0 %f l %f 0 l 0 %f Z", bounds.X0(), bounds.Y0(), bounds.H(), bounds.W(), -bounds.H())
}

func (g *GeoView) Begin(bounds gps.Rect) {
	view := gps.WorldBounds
	g.canvas.Startpercent(100, 100, fmt.Sprintf(`viewBox="%f %f %f %f"`, view.X0(), view.Y0(), view.W(), view.H()))
	g.canvas.Gtransform("scale(1,-1)")
	g.canvas.Path("M 0 -90 l 0 180", strokeGrid...)
	g.canvas.Path("M -180 0 l 360 0", strokeGrid...)
	g.canvas.Path("M -180 -90 L -180 90 L 180 90 L 180 -90 Z", strokeGrid...)
}

func (g *GeoView) Level(depth int, bounds gps.Rect) {
	g.levels++
	g.canvas.Group(fmt.Sprintf(`id="level-%d"`, g.levels))
	g.canvas.Path(xlinePath(bounds), strokeQuad...)
	g.canvas.Path(ylinePath(bounds), strokeQuad...)
	g.canvas.Gend()
}

func (g *GeoView) Object(bounds gps.Rect) {
	g.places++
	g.canvas.Path(rectPath(bounds), strokeObject...)
}

func (g *GeoView) End() {
	g.canvas.Gend()
	g.canvas.Desc(fmt.Sprintf("%d nodes, %d places", g.levels, g.places))
	g.canvas.End()
}
