package export_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/chazu/carton/pkg/assembly"
	"github.com/chazu/carton/pkg/export"
	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/kernel"
	"github.com/chazu/carton/pkg/kernel/sdfx"
	"github.com/chazu/carton/pkg/panel"
	"github.com/chazu/carton/pkg/render"
	"github.com/chazu/carton/pkg/texture"
)

var dims = assembly.Dimensions{Length: 200, Width: 100, Height: 60, Thickness: 5}

type stubTextures struct{}

func (stubTextures) Request(ref string) *texture.Handle {
	return texture.Resolved(ref, image.NewNRGBA(image.Rect(0, 0, 2, 2)))
}

func (stubTextures) Preset(p texture.Preset) *texture.Handle {
	return texture.Resolved(string(p), image.NewNRGBA(image.Rect(0, 0, 2, 2)))
}

func mockup(t *testing.T, look panel.Look, opts ...assembly.Option) *graph.DesignGraph {
	t.Helper()
	a, err := assembly.Mockup3D(dims, look, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return a.Graph
}

func dieline(t *testing.T) *graph.DesignGraph {
	t.Helper()
	a, err := assembly.Dieline2D(dims)
	if err != nil {
		t.Fatal(err)
	}
	return a.Graph
}

func request(g *graph.DesignGraph, f export.Format) export.Request {
	return export.Request{
		Graph:  g,
		Format: f,
		Width:  120,
		Height: 90,
		Camera: render.MockupCamera(),
		Light:  render.DefaultLight(),
		Kernel: sdfx.New(sdfx.WithCells(20)),
	}
}

// --- Formats ---

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want export.Format
		ok   bool
	}{
		{"png", export.PNG, true},
		{"JPG", export.JPEG, true},
		{"jpeg", export.JPEG, true},
		{".webp", export.WebP, true},
		{" pdf ", export.PDF, true},
		{"svg", export.SVG, true},
		{"stl", export.STL, true},
		{"gif", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := export.ParseFormat(tt.in)
			if tt.ok != (err == nil) {
				t.Fatalf("err = %v", err)
			}
			if !tt.ok && !errors.Is(err, export.ErrUnknownFormat) {
				t.Errorf("err = %v, want ErrUnknownFormat", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	if got := export.FileName("", export.JPEG); got != "gy-template-01.jpg" {
		t.Errorf("default name = %q", got)
	}
	if got := export.FileName("lid", export.STL); got != "lid.stl" {
		t.Errorf("name = %q", got)
	}
}

// --- Write ---

func TestWriteRaster(t *testing.T) {
	g := mockup(t, panel.Look{Color: panel.DefaultColor})
	tests := []struct {
		f      export.Format
		decode func([]byte) (image.Image, error)
		prefix string
	}{
		{export.PNG, func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) }, "\x89PNG"},
		{export.JPEG, func(b []byte) (image.Image, error) { return jpeg.Decode(bytes.NewReader(b)) }, "\xff\xd8"},
		{export.WebP, nil, "RIFF"},
		{export.PDF, nil, "%PDF"},
	}
	for _, tt := range tests {
		t.Run(string(tt.f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := export.Write(context.Background(), &buf, request(g, tt.f)); err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(buf.String(), tt.prefix) {
				t.Fatalf("output starts %q, want %q", buf.Bytes()[:min(8, buf.Len())], tt.prefix)
			}
			if tt.decode == nil {
				return
			}
			img, err := tt.decode(buf.Bytes())
			if err != nil {
				t.Fatal(err)
			}
			if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 90 {
				t.Errorf("size = %v, want 120x90", b)
			}
		})
	}
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	req := request(dieline(t), export.SVG)
	req.Camera, req.Light = render.DielineCamera(), render.FlatLight()
	if err := export.Write(context.Background(), &buf, req); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<polygon") {
		t.Error("svg has no polygons")
	}
}

func TestWriteUnsupported(t *testing.T) {
	tests := []struct {
		name string
		g    func(t *testing.T) *graph.DesignGraph
		f    export.Format
	}{
		{"svg of textured faces", func(t *testing.T) *graph.DesignGraph {
			return mockup(t, panel.Look{Texture: "kraft.png"}, assembly.WithTextures(stubTextures{}))
		}, export.SVG},
		{"stl of a dieline", dieline, export.STL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := export.Write(context.Background(), &buf, request(tt.g(t), tt.f))
			if !errors.Is(err, export.ErrUnsupportedCombination) {
				t.Fatalf("err = %v, want ErrUnsupportedCombination", err)
			}
			if buf.Len() != 0 {
				t.Errorf("%d bytes written on failure", buf.Len())
			}
		})
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	err := export.Write(context.Background(), &bytes.Buffer{}, request(dieline(t), export.Format("gif")))
	if !errors.Is(err, export.ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestWriteStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, f := range []export.Format{export.STL, export.PNG} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			err := export.Write(ctx, &buf, request(mockup(t, panel.Look{Color: panel.DefaultColor}), f))
			if !errors.Is(err, context.Canceled) {
				t.Errorf("err = %v, want context.Canceled", err)
			}
			if buf.Len() != 0 {
				t.Errorf("wrote %d bytes after cancel", buf.Len())
			}
		})
	}
}

func TestWriteSTLMockup(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Write(context.Background(), &buf, request(mockup(t, panel.Look{Color: panel.DefaultColor}), export.STL)); err != nil {
		t.Fatal(err)
	}
	out := buf.Bytes()
	if len(out) < 84 {
		t.Fatalf("stl is %d bytes", len(out))
	}
	n := binary.LittleEndian.Uint32(out[80:84])
	if n == 0 {
		t.Fatal("stl has no triangles")
	}
	if want := 84 + 50*int(n); len(out) != want {
		t.Errorf("stl is %d bytes, want %d", len(out), want)
	}
}

func TestWriteSTLLayout(t *testing.T) {
	m := &kernel.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
	}
	var buf bytes.Buffer
	if err := export.WriteSTL(&buf, []*kernel.Mesh{m, m}); err != nil {
		t.Fatal(err)
	}
	out := buf.Bytes()
	if len(out) != 84+2*50 {
		t.Fatalf("len = %d", len(out))
	}
	if n := binary.LittleEndian.Uint32(out[80:]); n != 2 {
		t.Errorf("count = %d", n)
	}
	var rec struct {
		Normal, A, B, C [3]float32
		Attr            uint16
	}
	if err := binary.Read(bytes.NewReader(out[84:134]), binary.LittleEndian, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Normal != [3]float32{0, 0, 1} || rec.B != [3]float32{1, 0, 0} {
		t.Errorf("record = %+v", rec)
	}
}
