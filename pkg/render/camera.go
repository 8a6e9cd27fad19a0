package render

import (
	"math"

	"github.com/chazu/carton/pkg/graph"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is an orthographic view. The scene is turned by Yaw about Y and
// then Pitch about X (degrees) and looked at along -Z, so larger view
// depth is nearer. With Fit the scene bounds fill the frame inside
// Margin pixels; otherwise Target is centred at Scale pixels per mm.
type Camera struct {
	Yaw    float64
	Pitch  float64
	Fit    bool
	Margin float64
	Target r3.Vec
	Scale  float64
}

// MockupCamera looks down at the Y-up box from the front right.
func MockupCamera() Camera {
	return Camera{Yaw: -35, Pitch: 25, Fit: true, Margin: 32}
}

// DielineCamera looks straight down on the XY plane.
func DielineCamera() Camera {
	return Camera{Fit: true, Margin: 32}
}

// FoldableCamera tilts the XY-plane net away so folded walls rise
// toward the viewer.
func FoldableCamera() Camera {
	return Camera{Yaw: 0, Pitch: -50, Fit: true, Margin: 32}
}

// projector maps world points to pixel coordinates and depth.
type projector struct {
	rot    r3.Rotation
	center r3.Vec
	scale  float64
	w, h   float64
}

func (c Camera) projector(pts []r3.Vec, w, h int) projector {
	p := projector{
		rot:    graph.Transform{Rotation: r3.Vec{X: c.Pitch, Y: c.Yaw}}.Orientation(),
		scale:  c.Scale,
		w:      float64(w),
		h:      float64(h),
	}
	if p.scale <= 0 {
		p.scale = 1
	}
	if !c.Fit || len(pts) == 0 {
		p.center = p.rot.Rotate(c.Target)
		return p
	}

	lo := r3.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := r3.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, v := range pts {
		q := p.rot.Rotate(v)
		lo.X, lo.Y = math.Min(lo.X, q.X), math.Min(lo.Y, q.Y)
		hi.X, hi.Y = math.Max(hi.X, q.X), math.Max(hi.Y, q.Y)
	}
	p.center = r3.Vec{X: (lo.X + hi.X) / 2, Y: (lo.Y + hi.Y) / 2}
	spanX, spanY := math.Max(hi.X-lo.X, 1e-3), math.Max(hi.Y-lo.Y, 1e-3)
	availW := math.Max(p.w-2*c.Margin, 1)
	availH := math.Max(p.h-2*c.Margin, 1)
	p.scale = math.Min(availW/spanX, availH/spanY)
	return p
}

// project returns pixel x, pixel y (down) and view depth.
func (p projector) project(v r3.Vec) (x, y, z float64) {
	q := p.rot.Rotate(v)
	x = p.w/2 + (q.X-p.center.X)*p.scale
	y = p.h/2 - (q.Y-p.center.Y)*p.scale
	return x, y, q.Z * p.scale
}

// scenePoints gathers every point the camera should frame.
func scenePoints(s Scene) []r3.Vec {
	var pts []r3.Vec
	for _, f := range s.Faces {
		pts = append(pts, f.Points...)
	}
	for _, a := range s.Annotations {
		pts = append(pts, a.From, a.To)
	}
	return pts
}
