package shape

import (
	"math"

	"github.com/gogpu/gg"
)

// Tolerance is the maximum distance in mm between a curve and its
// flattened polyline.
const Tolerance = 0.05

// ArcClockwise is the fixed winding used for every arc instruction.
const ArcClockwise = true

// pointEps merges flattened points closer than this.
const pointEps = 1e-9

// Outline is a closed planar path built from a Shape.
type Outline struct {
	path   *gg.Path
	points []gg.Point
}

// Build traces s from the origin into a closed path. Each instruction is
// drawn from the current cursor in the outline's local frame. Arcs are
// joined to the cursor with a straight segment when their start point
// differs from it.
func Build(s Shape) (*Outline, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	p := gg.NewPath()
	p.MoveTo(0, 0)
	cur := gg.Pt(0, 0)

	for _, in := range s {
		c := in.Coords
		switch in.Kind {
		case Line:
			p.LineTo(c[0], c[1])
			cur = gg.Pt(c[0], c[1])
		case QuadraticCurve:
			p.QuadraticTo(c[0], c[1], c[2], c[3])
			cur = gg.Pt(c[2], c[3])
		case BezierCurve:
			p.CubicTo(c[0], c[1], c[2], c[3], c[4], c[5])
			cur = gg.Pt(c[4], c[5])
		case Arc:
			cur = arcTo(p, cur, gg.Pt(c[0], c[1]), c[2], c[3], c[4], ArcClockwise)
		}
	}
	p.Close()

	return &Outline{path: p, points: ring(p.Flatten(Tolerance))}, nil
}

// MustBuild is like Build but panics on an invalid shape. It is meant for
// the fixed shapes of the flap library.
func MustBuild(s Shape) *Outline {
	o, err := Build(s)
	if err != nil {
		panic(err)
	}
	return o
}

// Path returns the underlying path. Callers must not mutate it.
func (o *Outline) Path() *gg.Path {
	return o.path
}

// Points returns the flattened ring without the closing duplicate.
func (o *Outline) Points() []gg.Point {
	return append([]gg.Point(nil), o.points...)
}

// Len returns the number of ring vertices.
func (o *Outline) Len() int {
	return len(o.points)
}

// Bounds returns the tight bounding box of the path.
func (o *Outline) Bounds() gg.Rect {
	return o.path.BoundingBox()
}

// sweep returns the signed angular extent from start to end for the given
// winding. A full turn is kept when start and end differ by a multiple of
// 2π but are not identical.
func sweep(start, end float64, clockwise bool) float64 {
	const twoPi = 2 * math.Pi
	delta := end - start
	same := math.Abs(delta) < pointEps

	for delta < 0 {
		delta += twoPi
	}
	for delta > twoPi {
		delta -= twoPi
	}
	if delta < pointEps {
		if same {
			delta = 0
		} else {
			delta = twoPi
		}
	}
	if clockwise && !same {
		if delta == twoPi {
			delta = -twoPi
		} else {
			delta -= twoPi
		}
	}
	return delta
}

// arcTo appends a circular arc as cubic segments of at most a quarter
// turn each and returns the new cursor.
func arcTo(p *gg.Path, cur, center gg.Point, r, start, end float64, clockwise bool) gg.Point {
	at := func(a float64) gg.Point {
		return gg.Pt(center.X+r*math.Cos(a), center.Y+r*math.Sin(a))
	}

	first := at(start)
	if first.Distance(cur) > pointEps {
		p.LineTo(first.X, first.Y)
	}

	delta := sweep(start, end, clockwise)
	if delta == 0 || r == 0 {
		return first
	}

	n := int(math.Ceil(math.Abs(delta) / (math.Pi / 2)))
	step := delta / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)

	a0 := start
	for i := 0; i < n; i++ {
		a1 := a0 + step
		p0, p3 := at(a0), at(a1)
		c1 := gg.Pt(p0.X-k*r*math.Sin(a0), p0.Y+k*r*math.Cos(a0))
		c2 := gg.Pt(p3.X+k*r*math.Sin(a1), p3.Y-k*r*math.Cos(a1))
		p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p3.X, p3.Y)
		a0 = a1
	}
	return at(start + delta)
}

// ring drops consecutive duplicates and the closing point.
func ring(pts []gg.Point) []gg.Point {
	out := make([]gg.Point, 0, len(pts))
	for _, pt := range pts {
		if n := len(out); n > 0 && out[n-1].Distance(pt) <= pointEps {
			continue
		}
		out = append(out, pt)
	}
	for len(out) > 1 && out[0].Distance(out[len(out)-1]) <= pointEps {
		out = out[:len(out)-1]
	}
	return out
}
