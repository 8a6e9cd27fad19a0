// Package render captures a design graph as an image or a vector
// drawing. The camera and light are explicit values; nothing is global.
//
// Solid faces go through a small z-buffered triangle rasterizer that
// samples textures, then gg strokes dieline outlines and dimension lines
// over the result. SVG output sorts polygons back to front.
package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/tessellate"
	"github.com/gogpu/gg"
)

// ErrTextured is returned by SVG when a face needs a texture.
var ErrTextured = errors.New("textured faces cannot be drawn as vectors")

// DefaultBackground fills the canvas behind the scene.
const DefaultBackground = "#FFFFFF"

// Scene is what a capture draws: world-space faces and dimension lines.
type Scene struct {
	Faces       []tessellate.Face
	Annotations []tessellate.Annotation
	Background  string
}

// NewScene flattens g into a scene.
func NewScene(g *graph.DesignGraph) Scene {
	return Scene{
		Faces:       tessellate.Faces(g),
		Annotations: tessellate.Annotations(g),
		Background:  DefaultBackground,
	}
}

// Textured reports whether any face samples a texture.
func (s Scene) Textured() bool {
	for _, f := range s.Faces {
		if f.Material.Textured() {
			return true
		}
	}
	return false
}

func (s Scene) background() color.NRGBA {
	if s.Background == "" {
		return hexColor(DefaultBackground)
	}
	return hexColor(s.Background)
}

// hexColor parses "#RRGGBB" through gg.
func hexColor(hex string) color.NRGBA {
	c := gg.Hex(hex).Color()
	if n, ok := c.(color.NRGBA); ok {
		return n
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// asNRGBA returns img as *image.NRGBA, converting when needed.
func asNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// asRGBA returns img as *image.RGBA, converting when needed.
func asRGBA(img image.Image) *image.RGBA {
	if r, ok := img.(*image.RGBA); ok {
		return r
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
