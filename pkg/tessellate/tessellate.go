// Package tessellate walks a design graph and flattens it into world
// space: textured faces and dimension lines for rendering, and one kernel
// mesh per panel for solid export. The walk is read-only and never
// mutates the graph.
package tessellate

import (
	"context"
	"fmt"
	"math"

	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Surface says which part of a panel a face belongs to.
type Surface int

const (
	SurfaceFace  Surface = iota // top or bottom liner
	SurfaceWall                 // side wall of the extruded medium
	SurfaceCap                  // front or back cap of the medium
	SurfaceBevel                // curved fold bevel
	SurfaceEnd                  // bevel end cap
)

func (s Surface) String() string {
	switch s {
	case SurfaceFace:
		return "face"
	case SurfaceWall:
		return "wall"
	case SurfaceCap:
		return "cap"
	case SurfaceBevel:
		return "bevel"
	case SurfaceEnd:
		return "end"
	default:
		return fmt.Sprintf("Surface(%d)", int(s))
	}
}

// Face is a planar polygon in world space. UV holds texture coordinates
// per point, already scaled by the material's repeat.
type Face struct {
	Panel    string
	Surface  Surface
	Points   []r3.Vec
	UV       [][2]float64
	Material graph.Material
}

// Annotation is a labelled dimension line in world space.
type Annotation struct {
	Label string
	From  r3.Vec
	To    r3.Vec
	Color string
}

// frameStack accumulates composed frames during graph traversal.
type frameStack struct {
	frames []graph.Frame
}

func newFrameStack() *frameStack {
	return &frameStack{frames: []graph.Frame{graph.Identity()}}
}

func (fs *frameStack) push(t graph.Transform) {
	fs.frames = append(fs.frames, fs.top().Then(t))
}

func (fs *frameStack) pop() {
	if len(fs.frames) > 1 {
		fs.frames = fs.frames[:len(fs.frames)-1]
	}
}

func (fs *frameStack) top() graph.Frame {
	return fs.frames[len(fs.frames)-1]
}

// walk visits every node reachable from the roots in child order with the
// frame of its parent on top of the stack.
func walk(g *graph.DesignGraph, visit func(n *graph.Node, fs *frameStack)) {
	if g == nil {
		return
	}
	fs := newFrameStack()
	var rec func(n *graph.Node)
	rec = func(n *graph.Node) {
		visit(n, fs)
		fs.push(n.Transform)
		for _, c := range g.Children(n) {
			rec(c)
		}
		fs.pop()
	}
	for _, id := range g.Roots {
		if root := g.Get(id); root != nil {
			rec(root)
		}
	}
}

// Faces returns every visible polygon in world space. Flat panels emit
// their top layer only, since all three layers coincide.
func Faces(g *graph.DesignGraph) []Face {
	var faces []Face
	walk(g, func(n *graph.Node, fs *frameStack) {
		p := g.Parent(n.ID)
		if p == nil || p.Kind != graph.NodePanel {
			return
		}
		switch data := n.Data.(type) {
		case graph.LayerData:
			if pd, _ := p.Data.(graph.PanelData); pd.Flat && data.Role != graph.LayerTop {
				return
			}
			faces = append(faces, layerFaces(p.Name, data, fs.top())...)
		case graph.BevelData:
			faces = append(faces, bevelFaces(p.Name, data, fs.top())...)
		}
	})
	return faces
}

// Annotations returns every dimension line in world space.
func Annotations(g *graph.DesignGraph) []Annotation {
	var out []Annotation
	walk(g, func(n *graph.Node, fs *frameStack) {
		if ad, ok := n.Data.(graph.AnnotationData); ok {
			f := fs.top()
			out = append(out, Annotation{
				Label: ad.Label,
				From:  f.Apply(ad.From),
				To:    f.Apply(ad.To),
				Color: ad.Color,
			})
		}
	})
	return out
}

// planarUV maps local XY coordinates through the material repeat.
func planarUV(ring []r3.Vec, m graph.Material) [][2]float64 {
	uv := make([][2]float64, len(ring))
	for i, p := range ring {
		uv[i] = [2]float64{p.X * m.Repeat[0], p.Y * m.Repeat[1]}
	}
	return uv
}

func layerFaces(name string, l graph.LayerData, f graph.Frame) []Face {
	if l.Depth == 0 {
		return []Face{{
			Panel:    name,
			Surface:  SurfaceFace,
			Points:   f.ApplyAll(l.Ring),
			UV:       planarUV(l.Ring, l.Material),
			Material: l.Material,
		}}
	}

	faces := []Face{
		{Panel: name, Surface: SurfaceCap, Points: f.ApplyAll(l.Ring), UV: planarUV(l.Ring, l.Caps), Material: l.Caps},
		{Panel: name, Surface: SurfaceCap, Points: f.ApplyAll(l.BackCap()), UV: planarUV(l.Ring, l.Caps), Material: l.Caps},
	}
	// Walls run u along the perimeter and v across the board.
	rep := l.Material.Repeat
	var along float64
	for _, w := range l.Walls() {
		step := r3.Norm(r3.Sub(w[1], w[0]))
		faces = append(faces, Face{
			Panel:   name,
			Surface: SurfaceWall,
			Points:  f.ApplyAll(w[:]),
			UV: [][2]float64{
				{along * rep[0], 0},
				{(along + step) * rep[0], 0},
				{(along + step) * rep[0], l.Depth * rep[1]},
				{along * rep[0], l.Depth * rep[1]},
			},
			Material: l.Material,
		})
		along += step
	}
	return faces
}

func bevelFaces(name string, b graph.BevelData, f graph.Frame) []Face {
	if len(b.Profile) < 3 {
		return nil
	}
	end := b.Swept()
	length := r3.Norm(b.Extent)
	rep := b.Curved.Repeat
	faces := []Face{
		{Panel: name, Surface: SurfaceEnd, Points: f.ApplyAll(b.Profile), UV: make([][2]float64, len(b.Profile)), Material: b.Ends},
		{Panel: name, Surface: SurfaceEnd, Points: f.ApplyAll(end), UV: make([][2]float64, len(end)), Material: b.Ends},
	}
	var along float64
	for i, a := range b.Profile {
		j := (i + 1) % len(b.Profile)
		step := r3.Norm(r3.Sub(b.Profile[j], a))
		faces = append(faces, Face{
			Panel:   name,
			Surface: SurfaceBevel,
			Points:  f.ApplyAll([]r3.Vec{a, b.Profile[j], end[j], end[i]}),
			UV: [][2]float64{
				{along * rep[0], 0},
				{(along + step) * rep[0], 0},
				{(along + step) * rep[0], length * rep[1]},
				{along * rep[0], length * rep[1]},
			},
			Material: b.Curved,
		})
		along += step
	}
	return faces
}

// Tessellate walks the design graph and produces one triangle mesh per
// panel: the union of its extruded medium and fold bevels, placed in
// world space. Flat panels have no volume and produce nothing. Meshing
// stops between panels once ctx is done.
func Tessellate(ctx context.Context, g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	var firstErr error
	var chain []graph.Transform
	var rec func(n *graph.Node)
	rec = func(n *graph.Node) {
		chain = append(chain, n.Transform)
		defer func() { chain = chain[:len(chain)-1] }()

		if firstErr != nil {
			return
		}
		if n.Kind == graph.NodePanel {
			if err := ctx.Err(); err != nil {
				firstErr = fmt.Errorf("tessellate: %w", err)
				return
			}
			m, err := panelMesh(g, k, n, chain)
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("tessellate: panel %q: %w", n.Name, err)
			}
			if m != nil {
				meshes = append(meshes, m)
			}
		}
		for _, c := range g.Children(n) {
			if c.Kind == graph.NodePanel || c.Kind == graph.NodeGroup {
				rec(c)
			}
		}
	}
	for _, id := range g.Roots {
		if root := g.Get(id); root != nil {
			rec(root)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return meshes, nil
}

// panelMesh builds a panel's solid in its own frame, then applies the
// transform chain from the panel outward.
func panelMesh(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, chain []graph.Transform) (*kernel.Mesh, error) {
	var solids []kernel.Solid
	for _, c := range g.Children(n) {
		switch data := c.Data.(type) {
		case graph.LayerData:
			if data.Depth == 0 || len(data.Ring) < 3 {
				continue
			}
			ring := make([][2]float64, len(data.Ring))
			for i, p := range data.Ring {
				ring[i] = [2]float64{p.X, p.Y}
			}
			s, err := k.Prism(ring, data.Depth)
			if err != nil {
				return nil, err
			}
			solids = append(solids, k.Translate(s, 0, 0, data.Ring[0].Z))
		case graph.BevelData:
			if s := bevelSolid(k, data); s != nil {
				solids = append(solids, s)
			}
		}
	}
	if len(solids) == 0 {
		return nil, nil
	}
	solid, err := kernel.UnionAll(k, solids)
	if err != nil {
		return nil, err
	}

	// Apply rotation first, then translation, innermost transform first.
	for i := len(chain) - 1; i >= 0; i-- {
		rot, pos := chain[i].Rotation, chain[i].Position
		if rot != (r3.Vec{}) {
			solid = k.Rotate(solid, rot.X, rot.Y, rot.Z)
		}
		if pos != (r3.Vec{}) {
			solid = k.Translate(solid, pos.X, pos.Y, pos.Z)
		}
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed for node %s: %w", n.ID.Short(), err)
	}
	mesh.Part = g.PathOf(n.ID)
	return mesh, nil
}

// bevelSolid rebuilds a bevel as the outward half of a cylinder laid
// along its edge. Edges run along +X or +Y in the panel frame.
func bevelSolid(k kernel.Kernel, b graph.BevelData) kernel.Solid {
	length := r3.Norm(b.Extent)
	if b.Radius <= 0 || length == 0 || len(b.Profile) < 3 {
		return nil
	}
	origin := b.Profile[0]
	var centroid r3.Vec
	for _, p := range b.Profile {
		centroid = r3.Add(centroid, p)
	}
	centroid = r3.Scale(1/float64(len(b.Profile)), centroid)
	out := r3.Sub(centroid, origin)
	out.Z = 0
	if r3.Norm(out) == 0 {
		return nil
	}
	normal := r3.Unit(out)

	cyl := k.Cylinder(length, b.Radius)
	if math.Abs(b.Extent.X) >= math.Abs(b.Extent.Y) {
		cyl = k.Rotate(cyl, 0, 90, 0)
	} else {
		cyl = k.Rotate(cyl, -90, 0, 0)
	}
	mid := r3.Add(origin, r3.Scale(0.5, b.Extent))
	cyl = k.Translate(cyl, mid.X, mid.Y, mid.Z)

	p1 := r3.Add(origin, r3.Vec{Z: -b.Radius})
	p2 := r3.Add(r3.Add(r3.Add(origin, b.Extent), r3.Scale(b.Radius, normal)), r3.Vec{Z: b.Radius})
	lo := r3.Vec{X: math.Min(p1.X, p2.X), Y: math.Min(p1.Y, p2.Y), Z: math.Min(p1.Z, p2.Z)}
	size := r3.Vec{X: math.Abs(p2.X - p1.X), Y: math.Abs(p2.Y - p1.Y), Z: math.Abs(p2.Z - p1.Z)}
	half := k.Translate(k.Box(size.X, size.Y, size.Z), lo.X, lo.Y, lo.Z)
	return k.Intersection(cyl, half)
}
