package panel

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/shape"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDimension is returned for a non-positive width or height or a
// negative thickness.
var ErrDimension = errors.New("invalid panel dimension")

// Mode selects the solid 3D rendition or the flat dieline rendition.
type Mode int

const (
	ModeSolid Mode = iota
	ModeFlat
)

func (m Mode) String() string {
	if m == ModeFlat {
		return "flat"
	}
	return "solid"
}

// BevelRadius is the fold bevel radius as a fraction of board thickness.
const BevelRadius = 0.75

// Placement positions a panel in its parent's frame.
type Placement struct {
	Transform     graph.Transform
	CastShadow    bool
	ReceiveShadow bool
}

// At is a placement with a position and Euler rotation in degrees.
func At(pos, rotDeg r3.Vec) Placement {
	return Placement{Transform: graph.Transform{Position: pos, Rotation: rotDeg}}
}

// Shadowed returns p with both shadow flags set.
func (p Placement) Shadowed() Placement {
	p.CastShadow, p.ReceiveShadow = true, true
	return p
}

// BuildOption customises a single Build call.
type BuildOption func(*buildEnv)

type buildEnv struct {
	textures Textures
}

// WithTextures resolves face and edge textures through t.
func WithTextures(t Textures) BuildOption {
	return func(e *buildEnv) {
		e.textures = t
	}
}

// Layered is a built panel: its three layers, bevels and placement, all in
// the panel's own frame with the pivot applied.
type Layered struct {
	Spec      Spec
	Mode      Mode
	Placement Placement
	Outline   *shape.Outline
	Layers    [3]graph.LayerData
	Bevels    []graph.BevelData
}

// Build turns a panel spec into layered geometry. It is a pure function of
// its inputs; texture handles it attaches may still be loading.
func Build(spec Spec, look Look, place Placement, mode Mode, opts ...BuildOption) (*Layered, error) {
	var env buildEnv
	for _, o := range opts {
		o(&env)
	}
	if !(spec.width > 0) || !(spec.height > 0) || !(spec.thickness >= 0) {
		return nil, fmt.Errorf("panel %q %gx%gx%g: %w", spec.name, spec.width, spec.height, spec.thickness, ErrDimension)
	}
	outline, err := shape.Build(spec.Outline())
	if err != nil {
		return nil, fmt.Errorf("panel %q: %w", spec.name, err)
	}

	t := spec.thickness
	offsets := [3]float64{0, -t / 2, t / 2}
	depth := t
	face, edge := faceMaterial(look, env.textures), edgeMaterial(env.textures)
	if mode == ModeFlat {
		offsets = [3]float64{}
		depth = 0
		face, edge = lineMaterial(), lineMaterial()
	}

	lp := &Layered{Spec: spec, Mode: mode, Placement: place, Outline: outline}
	roles := [3]graph.LayerRole{graph.LayerTop, graph.LayerMid, graph.LayerBottom}
	for i, role := range roles {
		l := graph.LayerData{
			Role:     role,
			Ring:     lift(outline, offsets[i], spec.pivot),
			Material: face,
			Caps:     face,
		}
		if role == graph.LayerMid {
			l.Depth = depth
			l.Material = edge
		}
		lp.Layers[i] = l
	}

	// A flat dieline has no depth to round over.
	if mode == ModeSolid {
		for _, f := range spec.folds {
			b, err := bevel(spec, f, face, edge)
			if err != nil {
				return nil, err
			}
			lp.Bevels = append(lp.Bevels, b)
		}
	}
	return lp, nil
}

// lift maps the 2D outline ring onto the plane z = offset and translates
// it by the pivot.
func lift(o *shape.Outline, offset float64, pivot r3.Vec) []r3.Vec {
	pts := o.Points()
	ring := make([]r3.Vec, len(pts))
	for i, p := range pts {
		ring[i] = r3.Add(r3.Vec{X: p.X, Y: p.Y, Z: offset}, pivot)
	}
	return ring
}

// Insert adds the panel and its layer and bevel nodes to g under parent.
// A zero parent makes the panel a root. It returns the panel node's id.
func (lp *Layered) Insert(g *graph.DesignGraph, parent graph.NodeID) (graph.NodeID, error) {
	name := lp.Spec.name
	base := name
	if !parent.IsZero() {
		base = string(parent) + graph.PathSep + name
	}
	p := &graph.Node{
		ID:        graph.NewNodeID("panel/" + base),
		Kind:      graph.NodePanel,
		Name:      name,
		Transform: lp.Placement.Transform,
		Data: graph.PanelData{
			Width:         lp.Spec.width,
			Height:        lp.Spec.height,
			Thickness:     lp.Spec.thickness,
			Pivot:         lp.Spec.pivot,
			Custom:        lp.Spec.kind == KindCustom,
			Flat:          lp.Mode == ModeFlat,
			CastShadow:    lp.Placement.CastShadow,
			ReceiveShadow: lp.Placement.ReceiveShadow,
		},
	}
	g.AddNode(p)
	if parent.IsZero() {
		g.AddRoot(p.ID)
	} else if err := g.AddChild(parent, p.ID); err != nil {
		return "", fmt.Errorf("insert panel %q: %w", name, err)
	}

	for _, l := range lp.Layers {
		n := &graph.Node{
			ID:   graph.NewNodeID("layer/" + base + "/" + l.Role.String()),
			Kind: graph.NodeLayer,
			Data: l,
		}
		g.AddNode(n)
		if err := g.AddChild(p.ID, n.ID); err != nil {
			return "", err
		}
	}
	for i, b := range lp.Bevels {
		n := &graph.Node{
			ID:   graph.NewNodeID(fmt.Sprintf("bevel/%s/%d-%s", base, i, b.Edge)),
			Kind: graph.NodeBevel,
			Data: b,
		}
		g.AddNode(n)
		if err := g.AddChild(p.ID, n.ID); err != nil {
			return "", err
		}
	}
	return p.ID, nil
}

// edgeFrame returns the start point, unit direction, length and outward
// normal of one side of the nominal rectangle.
func edgeFrame(e Edge, w, h float64) (start, dir, normal r3.Vec, length float64) {
	switch e {
	case EdgeTop:
		return r3.Vec{Y: h}, r3.Vec{X: 1}, r3.Vec{Y: 1}, w
	case EdgeRight:
		return r3.Vec{X: w}, r3.Vec{Y: 1}, r3.Vec{X: 1}, h
	case EdgeLeft:
		return r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{X: -1}, h
	default:
		return r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: -1}, w
	}
}

// bevel builds the half-round fold along one edge. The half disk stands
// outward from the edge and spans the board thickness along Z.
func bevel(spec Spec, f Fold, ends, curved graph.Material) (graph.BevelData, error) {
	r := BevelRadius * spec.thickness
	start, dir, normal, full := edgeFrame(f.Edge, spec.width, spec.height)
	length := f.Length
	if length == 0 {
		length = full - f.Offset
	}
	length = math.Max(0, length)

	b := graph.BevelData{
		Edge:   f.Edge.String(),
		Radius: r,
		Extent: r3.Scale(length, dir),
		Curved: curved,
		Ends:   ends,
	}
	if r == 0 {
		return b, nil
	}
	half, err := shape.Build(shape.Shape{shape.A(0, 0, r, 0, math.Pi)})
	if err != nil {
		return graph.BevelData{}, fmt.Errorf("bevel %s: %w", f.Edge, err)
	}
	origin := r3.Add(r3.Add(start, r3.Scale(f.Offset, dir)), spec.pivot)
	for _, p := range half.Points() {
		q := r3.Add(origin, r3.Scale(-p.Y, normal))
		q.Z += p.X
		b.Profile = append(b.Profile, q)
	}
	return b, nil
}
