package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/kernel"
	"github.com/chazu/carton/pkg/render"
	"github.com/chazu/carton/pkg/tessellate"
	"github.com/go-pdf/fpdf"
)

var (
	// ErrUnsupportedCombination is returned when the design cannot be
	// written in the requested format: SVG of textured faces, or STL of a
	// design with no solid panels.
	ErrUnsupportedCombination = errors.New("unsupported export combination")
	ErrUnknownFormat          = errors.New("unknown export format")
)

// JPEGQuality is used for JPEG files and the image embedded in PDFs.
const JPEGQuality = 92

// Request describes one export.
type Request struct {
	Graph  *graph.DesignGraph
	Format Format
	Width  int
	Height int
	Camera render.Camera
	Light  render.Light
	// Kernel meshes solids for STL. Unused by other formats.
	Kernel kernel.Kernel
}

// Write renders req and writes the encoded file to w. Nothing is
// written when the request fails or ctx ends first.
func Write(ctx context.Context, w io.Writer, req Request) error {
	if req.Graph == nil {
		return errors.New("export: nil graph")
	}
	var buf bytes.Buffer
	if err := encode(ctx, &buf, req); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func encode(ctx context.Context, w io.Writer, req Request) error {
	scene := render.NewScene(req.Graph)
	switch req.Format {
	case SVG:
		err := render.SVG(w, scene, req.Camera, req.Light, req.Width, req.Height)
		if errors.Is(err, render.ErrTextured) {
			return fmt.Errorf("%w: svg of textured faces", ErrUnsupportedCombination)
		}
		return err
	case STL:
		return writeMeshes(ctx, w, req)
	case PNG, JPEG, WebP, PDF:
		img, err := render.Raster(scene, req.Camera, req.Light, req.Width, req.Height)
		if err != nil {
			return fmt.Errorf("raster: %w", err)
		}
		return encodeImage(w, img, req.Format)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, req.Format)
}

func encodeImage(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case WebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
		return nil
	case PDF:
		return writePDF(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// writePDF places img as a JPEG filling a single page sized to the image
// at 96 dpi.
func writePDF(w io.Writer, img image.Image) error {
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return fmt.Errorf("pdf image: %w", err)
	}
	b := img.Bounds()
	wd, ht := float64(b.Dx())*0.75, float64(b.Dy())*0.75

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: wd, Ht: ht},
	})
	pdf.SetCreator("carton", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader(DefaultName, opts, &jpg)
	pdf.ImageOptions(DefaultName, 0, 0, wd, ht, false, opts, 0, "")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return nil
}

func writeMeshes(ctx context.Context, w io.Writer, req Request) error {
	if req.Kernel == nil {
		return errors.New("export: stl needs a kernel")
	}
	meshes, err := tessellate.Tessellate(ctx, req.Graph, req.Kernel)
	if err != nil {
		return fmt.Errorf("stl: %w", err)
	}
	if len(meshes) == 0 {
		return fmt.Errorf("%w: stl of a design without solid panels", ErrUnsupportedCombination)
	}
	return WriteSTL(w, meshes)
}
