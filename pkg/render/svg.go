package render

import (
	"fmt"
	"io"
	"math"
	"sort"

	svg "github.com/ajstarks/svgo"
	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/tessellate"
	"gonum.org/v1/gonum/spatial/r3"
)

// polygon is a projected face ready for the painter's pass.
type polygon struct {
	xs, ys []int
	depth  float64
	style  string
}

// SVG draws the scene as vector polygons sorted back to front, with
// dieline faces as unfilled outlines. Textures have no vector form, so
// a scene with any textured face is rejected with ErrTextured.
func SVG(w io.Writer, s Scene, cam Camera, light Light, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("svg size %dx%d must be positive", width, height)
	}
	if s.Textured() {
		return ErrTextured
	}
	proj := cam.projector(scenePoints(s), width, height)

	polys := make([]polygon, 0, len(s.Faces))
	for _, f := range s.Faces {
		if p, ok := projectFace(proj, light, f); ok {
			polys = append(polys, p)
		}
	}
	sort.SliceStable(polys, func(i, j int) bool { return polys[i].depth < polys[j].depth })

	bg := s.background()
	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:#%02x%02x%02x", bg.R, bg.G, bg.B))
	for _, p := range polys {
		canvas.Polygon(p.xs, p.ys, p.style)
	}
	for _, a := range s.Annotations {
		x1, y1, _ := proj.project(a.From)
		x2, y2, _ := proj.project(a.To)
		canvas.Line(round(x1), round(y1), round(x2), round(y2),
			fmt.Sprintf("stroke:%s;stroke-width:%g", a.Color, AnnotationWidth))
		if a.Label != "" {
			canvas.Text(round((x1+x2)/2)+4, round((y1+y2)/2)-4, a.Label,
				fmt.Sprintf("font-family:monospace;font-size:12px;fill:%s", a.Color))
		}
	}
	canvas.End()
	return nil
}

func projectFace(proj projector, light Light, f tessellate.Face) (polygon, bool) {
	if len(f.Points) < 2 {
		return polygon{}, false
	}
	p := polygon{xs: make([]int, len(f.Points)), ys: make([]int, len(f.Points))}
	for i, v := range f.Points {
		x, y, z := proj.project(v)
		p.xs[i], p.ys[i] = round(x), round(y)
		p.depth += z
	}
	p.depth /= float64(len(f.Points))

	if f.Material.Kind == graph.MaterialLine {
		p.style = fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g", f.Material.Color, OutlineWidth)
		return p, true
	}
	n := faceNormal(f.Points)
	if n == (r3.Vec{}) {
		return polygon{}, false
	}
	c := hexColor(f.Material.Color)
	shade := light.Shade(n)
	p.style = fmt.Sprintf("fill:#%02x%02x%02x;stroke:none",
		light.tone(c.R, shade), light.tone(c.G, shade), light.tone(c.B, shade))
	return p, true
}

func round(v float64) int {
	return int(math.Round(v))
}
