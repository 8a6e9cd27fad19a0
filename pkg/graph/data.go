package graph

import (
	"image"

	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Material
// ---------------------------------------------------------------------------

// MaterialKind distinguishes how a surface is painted.
type MaterialKind int

const (
	MaterialColor   MaterialKind = iota // flat fill
	MaterialTexture                     // tiled image, color until loaded
	MaterialLine                        // stroke only, no fill (dieline)
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialColor:
		return "color"
	case MaterialTexture:
		return "texture"
	case MaterialLine:
		return "line"
	default:
		return "unknown"
	}
}

// TextureSource is a texture that may still be loading. Image reports
// false until the image is available or after a failed load.
type TextureSource interface {
	Ref() string
	Image() (image.Image, bool)
}

// Material describes a surface. Color is always set and is used whenever
// the texture is missing, loading or failed.
type Material struct {
	Kind    MaterialKind  `json:"kind"`
	Color   string        `json:"color"`            // hex fallback, e.g. "#EDDA74"
	Repeat  [2]float64    `json:"repeat,omitempty"` // texture tiling per mm
	Texture TextureSource `json:"-"`
}

// Textured reports whether the material samples a texture.
func (m Material) Textured() bool {
	return m.Kind == MaterialTexture && m.Texture != nil
}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData is the payload of an assembly root.
type GroupData struct {
	Variant string `json:"variant"`
}

func (GroupData) nodeData() {}

// ---------------------------------------------------------------------------
// Panel
// ---------------------------------------------------------------------------

// PanelData describes a hinged panel. Width and Height are the outline's
// nominal size in mm; Pivot has already been applied to the panel's
// layer and bevel geometry.
type PanelData struct {
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Thickness     float64 `json:"thickness"`
	Pivot         r3.Vec  `json:"pivot"`
	Custom        bool    `json:"custom"`
	Flat          bool    `json:"flat"` // dieline rendition
	CastShadow    bool    `json:"cast_shadow"`
	ReceiveShadow bool    `json:"receive_shadow"`
}

func (PanelData) nodeData() {}

// ---------------------------------------------------------------------------
// Layers
// ---------------------------------------------------------------------------

// LayerRole identifies one of the three stacked board layers.
type LayerRole int

const (
	LayerTop    LayerRole = iota // outer liner
	LayerMid                     // corrugated medium
	LayerBottom                  // inner liner
)

func (r LayerRole) String() string {
	switch r {
	case LayerTop:
		return "top"
	case LayerMid:
		return "mid"
	case LayerBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// LayerData is one layer's geometry: a closed ring in the panel frame at
// the layer's depth offset, optionally extruded by Depth along +Z.
type LayerData struct {
	Role     LayerRole `json:"role"`
	Ring     []r3.Vec  `json:"ring"`
	Depth    float64   `json:"depth"`
	Material Material  `json:"material"` // faces, or side walls when extruded
	Caps     Material  `json:"caps"`     // front/back caps of an extruded layer
}

func (LayerData) nodeData() {}

// Walls returns the side quads of an extruded layer. It is empty for a
// flat layer.
func (d LayerData) Walls() [][4]r3.Vec {
	if d.Depth == 0 || len(d.Ring) < 2 {
		return nil
	}
	up := r3.Vec{Z: d.Depth}
	walls := make([][4]r3.Vec, 0, len(d.Ring))
	for i, a := range d.Ring {
		b := d.Ring[(i+1)%len(d.Ring)]
		walls = append(walls, [4]r3.Vec{a, b, r3.Add(b, up), r3.Add(a, up)})
	}
	return walls
}

// BackCap returns the ring offset by Depth.
func (d LayerData) BackCap() []r3.Vec {
	up := r3.Vec{Z: d.Depth}
	out := make([]r3.Vec, len(d.Ring))
	for i, p := range d.Ring {
		out[i] = r3.Add(p, up)
	}
	return out
}

// ---------------------------------------------------------------------------
// Fold bevel
// ---------------------------------------------------------------------------

// BevelData is a half-round profile swept along a panel edge. Profile is
// the closed cross-section at the edge start; Extent is the sweep vector.
type BevelData struct {
	Edge    string   `json:"edge"`
	Radius  float64  `json:"radius"`
	Profile []r3.Vec `json:"profile"`
	Extent  r3.Vec   `json:"extent"`
	Curved  Material `json:"curved"`
	Ends    Material `json:"ends"`
}

func (BevelData) nodeData() {}

// Swept returns the profile ring at the end of the sweep.
func (d BevelData) Swept() []r3.Vec {
	out := make([]r3.Vec, len(d.Profile))
	for i, p := range d.Profile {
		out[i] = r3.Add(p, d.Extent)
	}
	return out
}

// ---------------------------------------------------------------------------
// Annotation
// ---------------------------------------------------------------------------

// AnnotationData is a dimension line between two points in its parent's
// frame.
type AnnotationData struct {
	Label string `json:"label"`
	From  r3.Vec `json:"from"`
	To    r3.Vec `json:"to"`
	Color string `json:"color"`
}

func (AnnotationData) nodeData() {}
