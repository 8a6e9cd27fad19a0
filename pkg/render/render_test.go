package render_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/chazu/carton/pkg/assembly"
	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/panel"
	"github.com/chazu/carton/pkg/render"
	"github.com/chazu/carton/pkg/tessellate"
	"github.com/chazu/carton/pkg/texture"
	"gonum.org/v1/gonum/spatial/r3"
)

var square = []r3.Vec{{}, {X: 10}, {X: 10, Y: 10}, {Y: 10}}

func squareScene(m graph.Material) render.Scene {
	return render.Scene{
		Faces: []tessellate.Face{{
			Panel:    "square",
			Points:   square,
			UV:       [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
			Material: m,
		}},
	}
}

func uniform(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// pending is a texture that never finishes loading.
type pending struct{}

func (pending) Ref() string { return "pending.png" }
func (pending) Image() (image.Image, bool) { return nil, false }

func rgb(img *image.RGBA, x, y int) [3]uint8 {
	c := img.RGBAAt(x, y)
	return [3]uint8{c.R, c.G, c.B}
}

// --- Raster ---

func TestRasterFill(t *testing.T) {
	blue := uniform(2, 2, color.NRGBA{B: 255, A: 255})
	tests := []struct {
		name string
		m    graph.Material
		want [3]uint8
	}{
		{"color", graph.Material{Kind: graph.MaterialColor, Color: "#FF0000"}, [3]uint8{255, 0, 0}},
		{"texture", graph.Material{Kind: graph.MaterialTexture, Color: "#FF0000", Texture: texture.Resolved("blue", blue)}, [3]uint8{0, 0, 255}},
		{"texture loading", graph.Material{Kind: graph.MaterialTexture, Color: "#00FF00", Texture: pending{}}, [3]uint8{0, 255, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := render.Raster(squareScene(tt.m), render.DielineCamera(), render.FlatLight(), 100, 100)
			if err != nil {
				t.Fatal(err)
			}
			if got := rgb(img, 50, 50); got != tt.want {
				t.Errorf("center = %v, want %v", got, tt.want)
			}
			if got := rgb(img, 2, 2); got != [3]uint8{255, 255, 255} {
				t.Errorf("corner = %v, want background", got)
			}
		})
	}
}

func TestRasterSize(t *testing.T) {
	img, err := render.Raster(render.Scene{}, render.MockupCamera(), render.DefaultLight(), 64, 48)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("bounds = %v", b)
	}
	if _, err := render.Raster(render.Scene{}, render.MockupCamera(), render.DefaultLight(), 0, 10); err == nil {
		t.Error("zero width accepted")
	}
}

func TestRasterStrokesOutlines(t *testing.T) {
	s := squareScene(graph.Material{Kind: graph.MaterialLine, Color: "#000000"})
	img, err := render.Raster(s, render.DielineCamera(), render.FlatLight(), 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	if got := rgb(img, 50, 50); got != [3]uint8{255, 255, 255} {
		t.Errorf("outline interior = %v, want unfilled", got)
	}
	var dark bool
	for x := 30; x <= 34; x++ {
		if img.RGBAAt(x, 50).R < 200 {
			dark = true
		}
	}
	if !dark {
		t.Error("no stroke near the left edge")
	}
}

func TestRasterNearestWins(t *testing.T) {
	s := render.Scene{Faces: []tessellate.Face{
		{Points: square, Material: graph.Material{Color: "#FF0000"}},
		{Points: []r3.Vec{{Z: 1}, {X: 10, Z: 1}, {X: 10, Y: 10, Z: 1}, {Y: 10, Z: 1}}, Material: graph.Material{Color: "#0000FF"}},
	}}
	img, err := render.Raster(s, render.DielineCamera(), render.FlatLight(), 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	if got := rgb(img, 50, 50); got != [3]uint8{0, 0, 255} {
		t.Errorf("center = %v, want the nearer blue face", got)
	}
}

func TestRasterMockup(t *testing.T) {
	a, err := assembly.Mockup3D(assembly.Dimensions{Length: 200, Width: 100, Height: 60, Thickness: 5}, panel.Look{Color: "#EDDA74"})
	if err != nil {
		t.Fatal(err)
	}
	img, err := render.Raster(render.NewScene(a.Graph), render.MockupCamera(), render.DefaultLight(), 160, 120)
	if err != nil {
		t.Fatal(err)
	}
	if got := rgb(img, 80, 60); got == [3]uint8{255, 255, 255} {
		t.Error("box center rendered as background")
	}
}

// --- SVG ---

func TestSVGDieline(t *testing.T) {
	a, err := assembly.Dieline2D(assembly.Dimensions{Length: 200, Width: 100, Height: 60, Thickness: 5})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := render.SVG(&buf, render.NewScene(a.Graph), render.DielineCamera(), render.FlatLight(), 400, 300); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"<svg", "<polygon", "fill:none", "L : 200 mm", "W : 100 mm", "H : 60 mm", "</svg>"} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestSVGPainterOrder(t *testing.T) {
	s := render.Scene{Faces: []tessellate.Face{
		{Points: []r3.Vec{{Z: 1}, {X: 10, Z: 1}, {X: 10, Y: 10, Z: 1}}, Material: graph.Material{Color: "#0000FF"}},
		{Points: []r3.Vec{{}, {X: 10}, {X: 10, Y: 10}}, Material: graph.Material{Color: "#FF0000"}},
	}}
	var buf bytes.Buffer
	if err := render.SVG(&buf, s, render.DielineCamera(), render.FlatLight(), 100, 100); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	red, blue := strings.Index(out, "fill:#ff0000"), strings.Index(out, "fill:#0000ff")
	if red < 0 || blue < 0 || red > blue {
		t.Errorf("far face must be drawn first: red at %d, blue at %d", red, blue)
	}
}

func TestSVGRejectsTextures(t *testing.T) {
	s := squareScene(graph.Material{Kind: graph.MaterialTexture, Color: "#FF0000", Texture: pending{}})
	err := render.SVG(&bytes.Buffer{}, s, render.MockupCamera(), render.DefaultLight(), 100, 100)
	if !errors.Is(err, render.ErrTextured) {
		t.Errorf("err = %v, want ErrTextured", err)
	}
}
