package panel

import (
	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/texture"
)

const (
	// DefaultColor is the face color when none is given.
	DefaultColor = "#EDDA74"
	// KraftColor stands in for the corrugated edge texture.
	KraftColor = "#C8A56E"
	// DielineColor strokes flat panels.
	DielineColor = "#000000"
)

var (
	// FaceRepeat tiles face textures so they read as a pattern at any
	// panel size.
	FaceRepeat = [2]float64{0.005, 0.01}
	// EdgeRepeat tiles the corrugated edge texture.
	EdgeRepeat = [2]float64{0.05, 0.8}
)

// Textures resolves texture references into handles.
type Textures interface {
	Request(ref string) *texture.Handle
	Preset(p texture.Preset) *texture.Handle
}

// Look is the face appearance: an optional texture reference and the
// color used without it.
type Look struct {
	Texture string
	Color   string
}

// Textured reports whether the look asks for a texture.
func (l Look) Textured() bool {
	return l.Texture != ""
}

func (l Look) color() string {
	if l.Color == "" {
		return DefaultColor
	}
	return l.Color
}

// faceMaterial is the material of the outer layers.
func faceMaterial(look Look, tex Textures) graph.Material {
	m := graph.Material{Kind: graph.MaterialColor, Color: look.color()}
	if look.Textured() && tex != nil {
		if h := tex.Request(look.Texture); h != nil {
			m.Kind = graph.MaterialTexture
			m.Texture = h
			m.Repeat = FaceRepeat
		}
	}
	return m
}

// edgeMaterial is the corrugated core material. It ignores the face look.
func edgeMaterial(tex Textures) graph.Material {
	m := graph.Material{Kind: graph.MaterialColor, Color: KraftColor}
	if tex != nil {
		if h := tex.Preset(texture.Corrugated); h != nil {
			m.Kind = graph.MaterialTexture
			m.Texture = h
			m.Repeat = EdgeRepeat
		}
	}
	return m
}

func lineMaterial() graph.Material {
	return graph.Material{Kind: graph.MaterialLine, Color: DielineColor}
}
