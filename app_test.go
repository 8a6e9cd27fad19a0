package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/png"
	"os"
	"strings"
	"testing"

	"github.com/chazu/carton/pkg/assembly"
	"github.com/chazu/carton/pkg/config"
	"github.com/chazu/carton/pkg/engine"
	"github.com/chazu/carton/pkg/export"
	"github.com/chazu/carton/pkg/panel"
	"github.com/chazu/carton/pkg/server"
	"github.com/rs/zerolog"
)

// The server drives the App through this interface.
var _ server.Designer = (*App)(nil)

// newTestApp returns an App with small images and an empty asset
// directory, so every texture falls back to its color.
func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.AssetDir = t.TempDir()
	cfg.ImageWidth = 160
	cfg.ImageHeight = 120
	cfg.MeshCells = 40
	return NewApp(cfg, zerolog.Nop())
}

func params(mod func(p *config.Params)) config.Params {
	p := config.DefaultParams()
	if mod != nil {
		mod(&p)
	}
	return p
}

// TestE2ETuckLidExample exercises the full pipeline: script source →
// engine → assembly → tessellate → render → PNG.
func TestE2ETuckLidExample(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("examples/tuck-lid.carton")
	if err != nil {
		t.Fatalf("failed to read tuck-lid.carton: %v", err)
	}

	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	want := []string{
		assembly.UpperFrontLeftFlap,
		assembly.UpperFrontRightFlap,
		assembly.UpperFront,
		assembly.UpperLeftFlap,
		assembly.UpperRightFlap,
	}
	if len(result.Faces) != len(want) {
		t.Fatalf("expected %d faces, got %d", len(want), len(result.Faces))
	}
	for i, f := range result.Faces {
		if f.Name != want[i] {
			t.Errorf("face %d = %q, want %q", i, f.Name, want[i])
		}
		if f.Instructions == 0 {
			t.Errorf("face %q: no instructions", f.Name)
		}
	}

	var buf bytes.Buffer
	f, err := app.Export(context.Background(), &buf, params(nil), string(source))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if f != export.PNG {
		t.Errorf("format = %s, want png", f)
	}
	img, _, err := image.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		t.Errorf("size = %v, want 160x120", b)
	}
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

func TestExportFormats(t *testing.T) {
	tests := []struct {
		format string
		view   string
		prefix string
		want   export.Format
	}{
		{"png", "mockup", "\x89PNG", export.PNG},
		{"jpg", "mockup", "\xff\xd8", export.JPEG},
		{"webp", "foldable", "RIFF", export.WebP},
		{"pdf", "dieline", "%PDF", export.PDF},
		{"svg", "dieline", "<?xml", export.SVG},
		{"svg", "mockup", "<?xml", export.SVG},
	}
	app := newTestApp(t)
	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.view, func(t *testing.T) {
			p := params(func(p *config.Params) {
				p.Format = tt.format
				p.View = tt.view
			})
			var buf bytes.Buffer
			f, err := app.Export(context.Background(), &buf, p, "")
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			if f != tt.want {
				t.Errorf("format = %s, want %s", f, tt.want)
			}
			if !strings.HasPrefix(buf.String(), tt.prefix) {
				t.Errorf("output starts %q, want %q", buf.String()[:min(8, buf.Len())], tt.prefix)
			}
		})
	}
}

func TestExportSTL(t *testing.T) {
	app := newTestApp(t)
	p := params(func(p *config.Params) {
		p.Length, p.Width, p.Height = 60, 40, 30
		p.Format = "stl"
	})
	var buf bytes.Buffer
	if _, err := app.Export(context.Background(), &buf, p, ""); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if buf.Len() <= 84 || (buf.Len()-84)%50 != 0 {
		t.Errorf("binary STL length %d is not 84+50n", buf.Len())
	}
}

func TestExportRejects(t *testing.T) {
	tests := []struct {
		name   string
		p      config.Params
		script string
		want   error
	}{
		{
			name: "svg with material faces",
			p: params(func(p *config.Params) {
				p.FaceKind = config.FaceMaterial
				p.Format = "svg"
			}),
			want: export.ErrUnsupportedCombination,
		},
		{
			name: "svg with custom texture",
			p: params(func(p *config.Params) {
				p.FaceKind = config.FaceCustom
				p.Texture = "https://example.com/art.png"
				p.Format = "svg"
			}),
			want: export.ErrUnsupportedCombination,
		},
		{
			name: "stl of a dieline",
			p: params(func(p *config.Params) {
				p.Format = "stl"
				p.View = "dieline"
			}),
			want: export.ErrUnsupportedCombination,
		},
		{
			name: "negative length",
			p:    params(func(p *config.Params) { p.Length = -1 }),
			want: config.ErrInvalidParams,
		},
		{
			name: "unknown format",
			p:    params(func(p *config.Params) { p.Format = "gif" }),
			want: export.ErrUnknownFormat,
		},
		{
			name:   "script error",
			p:      params(nil),
			script: `(defshape "lid" (rect 1 1))`,
			want:   engine.ErrScript,
		},
	}
	app := newTestApp(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := app.Export(context.Background(), &buf, tt.p, tt.script)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if buf.Len() != 0 {
				t.Errorf("wrote %d bytes on failure", buf.Len())
			}
		})
	}
}

func TestExportMissingTextureFallsBack(t *testing.T) {
	app := newTestApp(t)
	p := params(func(p *config.Params) {
		p.FaceKind = config.FaceCustom
		p.Texture = "missing.png"
	})
	var buf bytes.Buffer
	if _, err := app.Export(context.Background(), &buf, p, ""); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("no output")
	}
}

// ---------------------------------------------------------------------------
// Design
// ---------------------------------------------------------------------------

func TestDesignViews(t *testing.T) {
	tests := []struct {
		view     string
		variant  assembly.Variant
		timeline bool
	}{
		{"mockup", assembly.VariantMockup, false},
		{"dieline", assembly.VariantDieline, false},
		{"foldable", assembly.VariantFoldable, true},
	}
	app := newTestApp(t)
	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			d, err := app.Design(params(func(p *config.Params) { p.View = tt.view }), "")
			if err != nil {
				t.Fatalf("Design: %v", err)
			}
			if d.Assembly.Variant != tt.variant {
				t.Errorf("variant = %s, want %s", d.Assembly.Variant, tt.variant)
			}
			if (d.Timeline != nil) != tt.timeline {
				t.Errorf("timeline set = %v, want %v", d.Timeline != nil, tt.timeline)
			}
			for _, name := range assembly.CoreFaces {
				if d.Assembly.Panel(name) == nil {
					t.Errorf("missing panel %q", name)
				}
			}
		})
	}
}

func TestLook(t *testing.T) {
	tests := []struct {
		name string
		p    config.Params
		want panel.Look
	}{
		{
			name: "color",
			p:    params(func(p *config.Params) { p.Color = "#112233" }),
			want: panel.Look{Color: "#112233"},
		},
		{
			name: "empty color",
			p:    params(func(p *config.Params) { p.Color = "" }),
			want: panel.Look{Color: panel.DefaultColor},
		},
		{
			name: "material",
			p: params(func(p *config.Params) {
				p.FaceKind = config.FaceMaterial
				p.Material = "paper"
			}),
			want: panel.Look{Texture: "paper.jpg", Color: config.DefaultParams().Color},
		},
		{
			name: "custom",
			p: params(func(p *config.Params) {
				p.FaceKind = config.FaceCustom
				p.Texture = "art/front.png"
			}),
			want: panel.Look{Texture: "art/front.png", Color: config.DefaultParams().Color},
		},
		{
			name: "color ignores texture",
			p:    params(func(p *config.Params) { p.Texture = "art/front.png" }),
			want: panel.Look{Color: config.DefaultParams().Color},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Look(tt.p); got != tt.want {
				t.Errorf("Look = %+v, want %+v", got, tt.want)
			}
		})
	}
}
