package panel_test

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/panel"
	"github.com/chazu/carton/pkg/shape"
	"github.com/chazu/carton/pkg/texture"
	"gonum.org/v1/gonum/spatial/r3"
)

// fakeTextures hands out resolved handles and records what was asked for.
type fakeTextures struct {
	refs    []string
	presets []texture.Preset
	noEdge  bool
}

func (f *fakeTextures) Request(ref string) *texture.Handle {
	f.refs = append(f.refs, ref)
	return texture.Resolved(ref, image.NewNRGBA(image.Rect(0, 0, 2, 2)))
}

func (f *fakeTextures) Preset(p texture.Preset) *texture.Handle {
	f.presets = append(f.presets, p)
	if f.noEdge {
		return nil
	}
	return texture.Resolved(string(p), image.NewNRGBA(image.Rect(0, 0, 2, 2)))
}

func mustBuild(t *testing.T, s panel.Spec, look panel.Look, mode panel.Mode, opts ...panel.BuildOption) *panel.Layered {
	t.Helper()
	lp, err := panel.Build(s, look, panel.Placement{}, mode, opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return lp
}

// ---------------------------------------------------------------------------
// Layers
// ---------------------------------------------------------------------------

func TestLayersShareOutline(t *testing.T) {
	lp := mustBuild(t, panel.Rect("bottom", 200, 100, 5), panel.Look{}, panel.ModeSolid)

	n := len(lp.Layers[0].Ring)
	if n != 4 {
		t.Fatalf("ring has %d points, want 4", n)
	}
	wantZ := [3]float64{0, -2.5, 2.5}
	for i, l := range lp.Layers {
		if len(l.Ring) != n {
			t.Errorf("layer %s has %d points, want %d", l.Role, len(l.Ring), n)
		}
		for j, p := range l.Ring {
			if p.Z != wantZ[i] {
				t.Errorf("layer %s point %d z = %g, want %g", l.Role, j, p.Z, wantZ[i])
			}
			top := lp.Layers[0].Ring[j]
			if p.X != top.X || p.Y != top.Y {
				t.Errorf("layer %s point %d = (%g,%g), top has (%g,%g)", l.Role, j, p.X, p.Y, top.X, top.Y)
			}
		}
	}
	if d := lp.Layers[1].Depth; d != 5 {
		t.Errorf("mid depth = %g, want 5", d)
	}
	if lp.Layers[0].Depth != 0 || lp.Layers[2].Depth != 0 {
		t.Error("outer layers must be flat")
	}
}

func TestFlatModeIsPlanarAndStroked(t *testing.T) {
	s := panel.Rect("bottom", 200, 100, 5, panel.WithFolds(panel.EdgeFolds(true, true, true, true)...))
	lp := mustBuild(t, s, panel.Look{Texture: "x.png"}, panel.ModeFlat, panel.WithTextures(&fakeTextures{}))

	for _, l := range lp.Layers {
		if l.Depth != 0 {
			t.Errorf("layer %s depth = %g, want 0", l.Role, l.Depth)
		}
		for _, p := range l.Ring {
			if p.Z != 0 {
				t.Errorf("layer %s has z = %g", l.Role, p.Z)
			}
		}
		if l.Material.Kind != graph.MaterialLine {
			t.Errorf("layer %s material = %s, want line", l.Role, l.Material.Kind)
		}
	}
	if len(lp.Bevels) != 0 {
		t.Errorf("flat panel has %d bevels", len(lp.Bevels))
	}
}

func TestPivotTranslatesGeometry(t *testing.T) {
	s := panel.Rect("bottomLeft", 60, 100, 5, panel.WithPivot(r3.Vec{X: -60}))
	lp := mustBuild(t, s, panel.Look{}, panel.ModeFlat)

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, p := range lp.Layers[0].Ring {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
	}
	if minX != -60 || maxX != 0 {
		t.Errorf("x range = [%g,%g], want [-60,0]", minX, maxX)
	}
}

func TestCustomOutline(t *testing.T) {
	s := panel.Custom("flap", 40, 40, 5, shape.RoundedFlap(40, 40, 10))
	lp := mustBuild(t, s, panel.Look{}, panel.ModeSolid)
	if got := len(lp.Layers[0].Ring); got <= 4 {
		t.Errorf("rounded flap ring has %d points, want more than 4", got)
	}
	if s.Kind() != panel.KindCustom {
		t.Errorf("kind = %s", s.Kind())
	}
}

// ---------------------------------------------------------------------------
// Materials
// ---------------------------------------------------------------------------

func TestMaterials(t *testing.T) {
	s := panel.Rect("bottom", 200, 100, 5)

	t.Run("color without textures", func(t *testing.T) {
		lp := mustBuild(t, s, panel.Look{Color: "#112233"}, panel.ModeSolid)
		for _, l := range lp.Layers {
			if l.Material.Kind != graph.MaterialColor {
				t.Errorf("layer %s kind = %s, want color", l.Role, l.Material.Kind)
			}
		}
		if c := lp.Layers[0].Material.Color; c != "#112233" {
			t.Errorf("top color = %s", c)
		}
		if c := lp.Layers[1].Material.Color; c != panel.KraftColor {
			t.Errorf("mid color = %s, want kraft", c)
		}
	})

	t.Run("default color", func(t *testing.T) {
		lp := mustBuild(t, s, panel.Look{}, panel.ModeSolid)
		if c := lp.Layers[0].Material.Color; c != panel.DefaultColor {
			t.Errorf("top color = %s", c)
		}
	})

	t.Run("textured faces", func(t *testing.T) {
		tex := &fakeTextures{}
		lp := mustBuild(t, s, panel.Look{Texture: "face.png", Color: "#112233"}, panel.ModeSolid, panel.WithTextures(tex))
		for _, i := range []int{0, 2} {
			m := lp.Layers[i].Material
			if !m.Textured() || m.Texture.Ref() != "face.png" {
				t.Errorf("layer %d not textured with face.png", i)
			}
			if m.Repeat != panel.FaceRepeat {
				t.Errorf("layer %d repeat = %v", i, m.Repeat)
			}
			if m.Color != "#112233" {
				t.Errorf("layer %d lost fallback color", i)
			}
		}
		mid := lp.Layers[1]
		if !mid.Material.Textured() || mid.Material.Repeat != panel.EdgeRepeat {
			t.Errorf("mid material = %+v", mid.Material)
		}
		if mid.Caps.Texture == nil || mid.Caps.Texture.Ref() != "face.png" {
			t.Error("mid caps should use the outer material")
		}
	})

	t.Run("missing corrugated asset", func(t *testing.T) {
		lp := mustBuild(t, s, panel.Look{}, panel.ModeSolid, panel.WithTextures(&fakeTextures{noEdge: true}))
		if m := lp.Layers[1].Material; m.Kind != graph.MaterialColor || m.Color != panel.KraftColor {
			t.Errorf("mid material = %+v, want kraft color", m)
		}
	})
}

// ---------------------------------------------------------------------------
// Bevels
// ---------------------------------------------------------------------------

func TestBevels(t *testing.T) {
	s := panel.Rect("bottom", 200, 100, 4, panel.WithFolds(panel.EdgeFolds(true, false, true, false)...))
	lp := mustBuild(t, s, panel.Look{}, panel.ModeSolid)

	if len(lp.Bevels) != 2 {
		t.Fatalf("got %d bevels, want 2", len(lp.Bevels))
	}
	for _, b := range lp.Bevels {
		if b.Radius != 3 {
			t.Errorf("%s radius = %g, want 3", b.Edge, b.Radius)
		}
		if b.Extent != (r3.Vec{X: 200}) {
			t.Errorf("%s extent = %v", b.Edge, b.Extent)
		}
		if b.Curved.Color != panel.KraftColor {
			t.Errorf("%s curved material = %+v", b.Edge, b.Curved)
		}
	}

	top := lp.Bevels[0]
	if top.Edge != "top" {
		t.Fatalf("first bevel edge = %s", top.Edge)
	}
	for _, p := range top.Profile {
		if p.Y < 100-1e-9 || p.Y > 103+1e-2 {
			t.Errorf("top profile point %v outside the outward half disk", p)
		}
		if math.Abs(p.Z) > 3+1e-2 {
			t.Errorf("top profile point %v beyond the radius", p)
		}
	}
}

func TestPartialFold(t *testing.T) {
	s := panel.Rect("bottom", 200, 100, 4, panel.WithFolds(panel.Fold{Edge: panel.EdgeRight, Offset: 10, Length: 30}))
	lp := mustBuild(t, s, panel.Look{}, panel.ModeSolid)
	b := lp.Bevels[0]
	if b.Extent != (r3.Vec{Y: 30}) {
		t.Errorf("extent = %v", b.Extent)
	}
	if b.Profile[0] != (r3.Vec{X: 200, Y: 10}) {
		t.Errorf("profile start = %v", b.Profile[0])
	}
}

// ---------------------------------------------------------------------------
// Failures
// ---------------------------------------------------------------------------

func TestBuildFailures(t *testing.T) {
	tests := []struct {
		name string
		spec panel.Spec
		want error
	}{
		{"zero width", panel.Rect("a", 0, 10, 1), panel.ErrDimension},
		{"negative height", panel.Rect("a", 10, -1, 1), panel.ErrDimension},
		{"negative thickness", panel.Rect("a", 10, 10, -1), panel.ErrDimension},
		{"nan width", panel.Rect("a", math.NaN(), 10, 1), panel.ErrDimension},
		{"bad arity", panel.Custom("a", 10, 10, 1, shape.Shape{{Kind: shape.Line, Coords: []float64{1}}}), shape.ErrArity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := panel.Build(tt.spec, panel.Look{}, panel.Placement{}, panel.ModeSolid)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Graph insertion
// ---------------------------------------------------------------------------

func TestInsert(t *testing.T) {
	g := graph.New()
	s := panel.Rect("bottom", 200, 100, 5, panel.WithFolds(panel.Fold{Edge: panel.EdgeTop}))
	place := panel.At(r3.Vec{X: 1}, r3.Vec{X: 90}).Shadowed()
	lp, err := panel.Build(s, panel.Look{}, place, panel.ModeSolid)
	if err != nil {
		t.Fatal(err)
	}
	id, err := lp.Insert(g, "")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	n := g.Get(id)
	if n == nil || n.Name != "bottom" || n.Kind != graph.NodePanel {
		t.Fatalf("panel node = %+v", n)
	}
	if n.Transform.Rotation.X != 90 {
		t.Errorf("rotation = %v", n.Transform.Rotation)
	}
	if pd := n.Data.(graph.PanelData); !pd.CastShadow || !pd.ReceiveShadow {
		t.Error("shadow flags not carried")
	}
	if got := len(g.ChildrenOfKind(n, graph.NodeLayer)); got != 3 {
		t.Errorf("got %d layers, want 3", got)
	}
	if got := len(g.ChildrenOfKind(n, graph.NodeBevel)); got != 1 {
		t.Errorf("got %d bevels, want 1", got)
	}
	if errs := graph.ValidateAll(g).Errors; len(errs) > 0 {
		t.Errorf("graph invalid: %v", errs)
	}
}

func TestSpecIsImmutable(t *testing.T) {
	sh := shape.Rectangle(10, 10)
	s := panel.Custom("a", 10, 10, 1, sh, panel.WithFolds(panel.Fold{Edge: panel.EdgeTop}))
	sh[0].Coords[0] = 99
	s.Folds()[0].Edge = panel.EdgeLeft

	if got := s.Outline()[0].Coords[0]; got != 0 {
		t.Errorf("outline changed through caller's slice: %g", got)
	}
	if got := s.Folds()[0].Edge; got != panel.EdgeTop {
		t.Errorf("folds changed through returned slice: %s", got)
	}
}
