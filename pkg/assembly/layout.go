package assembly

import (
	"strconv"

	"github.com/chazu/carton/pkg/animate"
	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/panel"
	"github.com/chazu/carton/pkg/shape"
	"gonum.org/v1/gonum/spatial/r3"
)

func vec(x, y, z float64) r3.Vec {
	return r3.Vec{X: x, Y: y, Z: z}
}

// Mockup3D builds the folded box, Y up and centred on the origin in X and
// Z. The bottom sits on y = 0 and the lid on y = H.
func Mockup3D(d Dimensions, look panel.Look, opts ...Option) (*Assembly, error) {
	b := newBuilder(VariantMockup, d, look, panel.ModeSolid, opts)
	L, W, H := d.Length, d.Width, d.Height

	lid := 90.0
	if b.opts.previewLid {
		lid = 45
	}
	all := panel.WithFolds(panel.EdgeFolds(true, true, true, true)...)
	hinge := panel.WithFolds(panel.Fold{Edge: panel.EdgeTop})

	steps := []struct {
		spec  panel.Spec
		place panel.Placement
	}{
		{b.spec(BottomLeft, H, W, nil), panel.At(vec(-L/2, 0, -W/2), vec(90, 90, 0))},
		{b.spec(Bottom, L, W, nil, all), panel.At(vec(-L/2, 0, -W/2), vec(90, 0, 0))},
		{b.spec(BottomRight, H, W, nil), panel.At(vec(L/2, 0, -W/2), vec(90, 90, 0))},
		{b.spec(BelowFront, L, H, nil, hinge), panel.At(vec(-L/2, 0, -W/2), vec(0, 0, 0))},
		{b.spec(UpperFront, L, H, nil), panel.At(vec(-L/2, 0, W/2), vec(0, 0, 0))},
		{b.spec(Upper, L, W, nil), panel.At(vec(-L/2, H, -W/2), vec(lid, 0, 0))},
	}
	for _, s := range steps {
		if err := b.add("", s.spec, s.place); err != nil {
			return nil, err
		}
	}
	return b.assembly(VariantMockup), nil
}

// Dieline2D builds the flat, stroke-only net in the XY plane with
// length, width and height annotations.
func Dieline2D(d Dimensions, opts ...Option) (*Assembly, error) {
	b := newBuilder(VariantDieline, d, panel.Look{}, panel.ModeFlat, opts)
	if err := b.net(); err != nil {
		return nil, err
	}
	L, W, H := d.Length, d.Width, d.Height
	b.annotate("L : "+mm(L)+" mm", [2]float64{0, W / 4}, [2]float64{L, W / 4})
	b.annotate("W : "+mm(W)+" mm", [2]float64{5 * L / 6, 0}, [2]float64{5 * L / 6, W})
	b.annotate("H : "+mm(H)+" mm", [2]float64{2 * L / 3, W}, [2]float64{2 * L / 3, W + H})
	return b.assembly(VariantDieline), nil
}

// Foldable builds the flat net as layered board with the flaps attached,
// ready to be folded by the returned timeline.
func Foldable(d Dimensions, look panel.Look, opts ...Option) (*Assembly, *animate.Timeline, error) {
	b := newBuilder(VariantFoldable, d, look, panel.ModeSolid, opts)
	if err := b.net(); err != nil {
		return nil, nil, err
	}
	return b.assembly(VariantFoldable), FoldTimeline(), nil
}

// net lays out the six core panels and four flaps flat. The bottom spans
// [0,L]×[0,W]; side walls and the front pivot about their shared edge
// with the bottom.
func (b *builder) net() error {
	L, W, H, t := b.dims.Length, b.dims.Width, b.dims.Height, b.dims.Thickness
	flat := b.mode == panel.ModeFlat
	var all, hinge []panel.Option
	if !flat {
		all = []panel.Option{panel.WithFolds(panel.EdgeFolds(true, true, true, true)...)}
		hinge = []panel.Option{panel.WithFolds(panel.Fold{Edge: panel.EdgeTop})}
	}

	corner := H - 2*t
	cornerFlap := shape.RoundedFlap(corner, corner, FlapRadius)
	tuck := shape.RoundedTrapezoid(H-2.5*t, W-2*t-FlapRadius, FlapRadius)

	steps := []struct {
		parent string
		spec   panel.Spec
		place  panel.Placement
	}{
		{"", b.spec(BottomLeft, H, W, nil, panel.WithPivot(vec(-H, 0, 0))), panel.At(vec(0, 0, 0), vec(0, 0, 0))},
		{"", b.spec(Bottom, L, W, nil, all...), panel.At(vec(0, 0, 0), vec(0, 0, 0))},
		{"", b.spec(BottomRight, H, W, nil), panel.At(vec(L, 0, 0), vec(0, 0, 0))},
		{"", b.spec(BelowFront, L, H, nil, hinge...), panel.At(vec(0, W, 0), vec(0, 0, 0))},
		{"", b.spec(UpperFront, L, H, nil, panel.WithPivot(vec(0, -H, 0))), panel.At(vec(0, 0, 0), vec(0, 0, 0))},
		{BelowFront, b.spec(Upper, L, W, nil), panel.At(vec(0, H, 0), vec(0, 0, 0))},
		{UpperFront, b.spec(UpperFrontLeftFlap, corner, corner, cornerFlap), panel.At(vec(0, -t, 0), vec(0, 0, 180))},
		{UpperFront, b.spec(UpperFrontRightFlap, corner, corner, cornerFlap), panel.At(vec(L, -H+t, 0), vec(0, 0, 0))},
		{Upper, b.spec(UpperLeftFlap, H-2.5*t, W-2*t-FlapRadius, tuck), panel.At(vec(0, W-t-FlapRadius, 0), vec(0, 0, 180))},
		{Upper, b.spec(UpperRightFlap, H-2.5*t, W-2*t-FlapRadius, tuck), panel.At(vec(L, t+FlapRadius, 0), vec(0, 0, 0))},
	}
	for _, s := range steps {
		if err := b.add(s.parent, s.spec, s.place); err != nil {
			return err
		}
	}
	return nil
}

// FoldSteps is the fixed fold order: back wall, side walls, front wall,
// front corner flaps, lid tuck flaps, then the lid. Paired steps run
// together.
func FoldSteps() []animate.Step {
	return []animate.Step{
		{Target: BelowFront, Axis: graph.AxisX, AngleDeg: 90, Duration: 1},
		{Target: BottomLeft, Axis: graph.AxisY, AngleDeg: 90, Duration: 1},
		{Target: BottomRight, Axis: graph.AxisY, AngleDeg: -90, Duration: 1, Start: animate.WithPrevious},
		{Target: UpperFront, Axis: graph.AxisX, AngleDeg: -90, Duration: 1},
		{Target: UpperFrontLeftFlap, Axis: graph.AxisY, AngleDeg: 90, Duration: 1},
		{Target: UpperFrontRightFlap, Axis: graph.AxisY, AngleDeg: -90, Duration: 1, Start: animate.WithPrevious},
		{Target: Upper + graph.PathSep + UpperLeftFlap, Axis: graph.AxisY, AngleDeg: 90, Duration: 1},
		{Target: Upper + graph.PathSep + UpperRightFlap, Axis: graph.AxisY, AngleDeg: -90, Duration: 1, Start: animate.WithPrevious},
		{Target: BelowFront + graph.PathSep + Upper, Axis: graph.AxisX, AngleDeg: 90, Duration: 1},
	}
}

// FoldTimeline lays FoldSteps out on the clock.
func FoldTimeline() *animate.Timeline {
	return animate.NewTimeline(FoldSteps()...)
}

// FollowTargets are the hinges the lerp follower eases: the lid and the
// back wall it hangs from.
func FollowTargets() []animate.Target {
	return []animate.Target{
		{Path: BelowFront + graph.PathSep + Upper, Axis: graph.AxisX, AngleDeg: 90},
		{Path: BelowFront, Axis: graph.AxisX, AngleDeg: 90},
	}
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
