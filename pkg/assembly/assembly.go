// Package assembly lays out the six-panel folding carton and its flaps in
// three renditions: a folded 3D mockup, a flat dieline with dimension
// annotations, and a flat foldable assembly paired with its fold
// timeline. Every placement is algebraic in length, width and height, so
// shared edges coincide exactly. Assemblies are rebuilt from scratch on
// every parameter change.
package assembly

import (
	"fmt"

	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/panel"
	"github.com/chazu/carton/pkg/shape"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Panel names. Flaps hang off the panel they fold against.
const (
	Bottom              = "bottom"
	BottomLeft          = "bottomLeft"
	BottomRight         = "bottomRight"
	BelowFront          = "belowFront"
	UpperFront          = "upperFront"
	Upper               = "upper"
	UpperLeftFlap       = "upperLeftFlap"
	UpperRightFlap      = "upperRightFlap"
	UpperFrontLeftFlap  = "upperFrontLeftFlap"
	UpperFrontRightFlap = "upperFrontRightFlap"
)

// CoreFaces are the six panels every rendition has, in construction
// order.
var CoreFaces = []string{BottomLeft, Bottom, BottomRight, BelowFront, UpperFront, Upper}

// Flaps are the optional tuck and corner flaps.
var Flaps = []string{UpperLeftFlap, UpperRightFlap, UpperFrontLeftFlap, UpperFrontRightFlap}

// FaceNames lists every panel name an assembly may contain.
var FaceNames = append(append([]string(nil), CoreFaces...), Flaps...)

// Variant names the rendition an assembly was built as.
type Variant string

const (
	VariantMockup   Variant = "mockup"
	VariantDieline  Variant = "dieline"
	VariantFoldable Variant = "foldable"
)

// Flap geometry in mm.
const (
	FlapRadius = 10.0
	// AnnotationColor strokes dieline dimension lines.
	AnnotationColor = "#fa11f2"
)

// Dimensions of the closed box in mm.
type Dimensions struct {
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Thickness float64 `json:"thicknessMm"`
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%gx%gx%g t=%g", d.Length, d.Width, d.Height, d.Thickness)
}

// Assembly is one built rendition of the box.
type Assembly struct {
	ID      uuid.UUID
	Variant Variant
	Dims    Dimensions
	Graph   *graph.DesignGraph
	Root    graph.NodeID
}

// Panel returns the named panel node, or nil.
func (a *Assembly) Panel(name string) *graph.Node {
	n := a.Graph.Lookup(name)
	if n == nil || n.Kind != graph.NodePanel {
		return nil
	}
	return n
}

// Faces returns the names of the panels present, in construction order.
func (a *Assembly) Faces() []string {
	return lo.Map(a.Graph.Panels(), func(n *graph.Node, _ int) string {
		return n.Name
	})
}

// Option customises an assembly build.
type Option func(*options)

type options struct {
	previewLid bool
	shapes     map[string]shape.Shape
	textures   panel.Textures
}

// WithPreviewLid half-opens the mockup lid at 45 degrees.
func WithPreviewLid() Option {
	return func(o *options) { o.previewLid = true }
}

// WithShapes replaces panel outlines by name. Nominal sizes and
// placements are unchanged.
func WithShapes(shapes map[string]shape.Shape) Option {
	return func(o *options) {
		if o.shapes == nil {
			o.shapes = make(map[string]shape.Shape, len(shapes))
		}
		for k, v := range shapes {
			o.shapes[k] = v.Clone()
		}
	}
}

// WithTextures resolves face textures through t.
func WithTextures(t panel.Textures) Option {
	return func(o *options) { o.textures = t }
}

// builder accumulates panels into one graph.
type builder struct {
	opts  options
	dims  Dimensions
	look  panel.Look
	mode  panel.Mode
	g     *graph.DesignGraph
	root  graph.NodeID
	ids   map[string]graph.NodeID
	build []panel.BuildOption
}

func newBuilder(v Variant, dims Dimensions, look panel.Look, mode panel.Mode, opts []Option) *builder {
	b := &builder{
		dims: dims,
		look: look,
		mode: mode,
		g:    graph.New(),
		ids:  make(map[string]graph.NodeID),
	}
	for _, o := range opts {
		o(&b.opts)
	}
	if b.opts.textures != nil {
		b.build = append(b.build, panel.WithTextures(b.opts.textures))
	}
	b.root = graph.NewNodeID("assembly/" + string(v))
	b.g.AddNode(&graph.Node{
		ID:   b.root,
		Kind: graph.NodeGroup,
		Name: string(v),
		Data: graph.GroupData{Variant: string(v)},
	})
	b.g.AddRoot(b.root)
	return b
}

// spec returns the panel spec for name, honouring shape overrides.
func (b *builder) spec(name string, w, h float64, def shape.Shape, opts ...panel.Option) panel.Spec {
	t := b.dims.Thickness
	if s, ok := b.opts.shapes[name]; ok {
		return panel.Custom(name, w, h, t, s, opts...)
	}
	if def != nil {
		return panel.Custom(name, w, h, t, def, opts...)
	}
	return panel.Rect(name, w, h, t, opts...)
}

// add builds a panel and inserts it under parent, or the root when parent
// is empty.
func (b *builder) add(parent string, s panel.Spec, place panel.Placement) error {
	if b.mode == panel.ModeSolid {
		place = place.Shadowed()
	}
	lp, err := panel.Build(s, b.look, place, b.mode, b.build...)
	if err != nil {
		return fmt.Errorf("build %s: %w", s.Name(), err)
	}
	pid := b.root
	if parent != "" {
		pid = b.ids[parent]
	}
	id, err := lp.Insert(b.g, pid)
	if err != nil {
		return err
	}
	b.ids[s.Name()] = id
	return nil
}

// annotate adds a dimension line under the root.
func (b *builder) annotate(label string, from, to [2]float64) {
	id := graph.NewNodeID("annotation/" + string(b.root) + "/" + label)
	b.g.AddNode(&graph.Node{
		ID:   id,
		Kind: graph.NodeAnnotation,
		Data: graph.AnnotationData{
			Label: label,
			From:  vec(from[0], from[1], 0),
			To:    vec(to[0], to[1], 0),
			Color: AnnotationColor,
		},
	})
	// The root exists and id was just added.
	_ = b.g.AddChild(b.root, id)
}

func (b *builder) assembly(v Variant) *Assembly {
	return &Assembly{
		ID:      uuid.New(),
		Variant: v,
		Dims:    b.dims,
		Graph:   b.g,
		Root:    b.root,
	}
}
