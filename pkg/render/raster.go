package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/chazu/carton/pkg/graph"
	"github.com/chazu/carton/pkg/tessellate"
	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/spatial/r3"
)

// Stroke widths in pixels.
const (
	OutlineWidth    = 1.5
	AnnotationWidth = 1.0
)

// frameBuffer holds the rendering target as flat slices for cache locality.
type frameBuffer struct {
	width  int
	height int
	color  []uint8   // RGBA interleaved, len = W*H*4
	zbuf   []float64 // depth per pixel, initialized to -inf
}

func newFrameBuffer(w, h int, bg color.NRGBA) *frameBuffer {
	n := w * h
	fb := &frameBuffer{
		width:  w,
		height: h,
		color:  make([]uint8, n*4),
		zbuf:   make([]float64, n),
	}
	for i := range fb.zbuf {
		fb.zbuf[i] = math.Inf(-1)
		fb.color[4*i], fb.color[4*i+1], fb.color[4*i+2], fb.color[4*i+3] = bg.R, bg.G, bg.B, 255
	}
	return fb
}

// vertex is a projected point with its texture coordinate.
type vertex struct {
	x, y, z float64
	u, v    float64
}

// Raster captures the scene at w×h pixels.
func Raster(s Scene, cam Camera, light Light, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster size %dx%d must be positive", w, h)
	}
	proj := cam.projector(scenePoints(s), w, h)
	fb := newFrameBuffer(w, h, s.background())

	var outlines []tessellate.Face
	for _, f := range s.Faces {
		if f.Material.Kind == graph.MaterialLine {
			outlines = append(outlines, f)
			continue
		}
		fillFace(fb, proj, light, f)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, fb.color)

	dc := gg.NewContextForImage(img)
	defer dc.Close()
	for _, f := range outlines {
		dc.SetHexColor(f.Material.Color)
		dc.SetLineWidth(OutlineWidth)
		for i, p := range f.Points {
			x, y, _ := proj.project(p)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("stroke %s: %w", f.Panel, err)
		}
	}
	for _, a := range s.Annotations {
		x1, y1, _ := proj.project(a.From)
		x2, y2, _ := proj.project(a.To)
		dc.SetHexColor(a.Color)
		dc.SetLineWidth(AnnotationWidth)
		dc.DrawLine(x1, y1, x2, y2)
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("stroke annotation %q: %w", a.Label, err)
		}
	}

	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("flush overlay: %w", err)
	}
	out := asRGBA(dc.Image())
	for _, a := range s.Annotations {
		drawLabel(out, proj, a)
	}
	return out, nil
}

// drawLabel writes an annotation's text beside the middle of its line in
// the built-in bitmap face.
func drawLabel(dst *image.RGBA, proj projector, a tessellate.Annotation) {
	if a.Label == "" {
		return
	}
	mid := r3.Scale(0.5, r3.Add(a.From, a.To))
	x, y, _ := proj.project(mid)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(hexColor(a.Color)),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(x)+4, int(y)-4),
	}
	d.DrawString(a.Label)
}

// fillFace triangulates a face and rasterizes it flat shaded. A texture
// that is not ready yet falls back to the material color.
func fillFace(fb *frameBuffer, proj projector, light Light, f tessellate.Face) {
	if len(f.Points) < 3 {
		return
	}
	n := faceNormal(f.Points)
	if n == (r3.Vec{}) {
		return
	}
	shade := light.Shade(n)

	var tex *image.NRGBA
	if f.Material.Textured() {
		if img, ok := f.Material.Texture.Image(); ok && img.Bounds().Dx() > 0 && img.Bounds().Dy() > 0 {
			tex = asNRGBA(img)
		}
	}
	base := hexColor(f.Material.Color)

	verts := make([]vertex, len(f.Points))
	for i, p := range f.Points {
		x, y, z := proj.project(p)
		verts[i] = vertex{x: x, y: y, z: z}
		if i < len(f.UV) {
			verts[i].u, verts[i].v = f.UV[i][0], f.UV[i][1]
		}
	}
	for _, t := range triangulate(planar(f.Points, n)) {
		rasterizeTriangle(fb, verts[t[0]], verts[t[1]], verts[t[2]], tex, base, shade, light)
	}
}

// rasterizeTriangle fills one triangle with z-buffering and optional
// bilinear texture sampling.
func rasterizeTriangle(fb *frameBuffer, a, b, c vertex, tex *image.NRGBA, base color.NRGBA, shade float64, light Light) {
	minX := max(int(math.Floor(min(a.x, b.x, c.x))), 0)
	maxX := min(int(math.Ceil(max(a.x, b.x, c.x))), fb.width-1)
	minY := max(int(math.Floor(min(a.y, b.y, c.y))), 0)
	maxY := min(int(math.Ceil(max(a.y, b.y, c.y))), fb.height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (b.y-c.y)*(a.x-c.x) + (c.x-b.x)*(a.y-c.y)
	if math.Abs(det) < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12, dx21 := b.y-c.y, c.x-b.x
	dy20, dx02 := c.y-a.y, a.x-c.x

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - c.y
		row := sy * fb.width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - c.x
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*a.z + w1*b.z + w2*c.z
			zi := row + sx
			if z <= fb.zbuf[zi] {
				continue
			}

			cr, cg, cb := base.R, base.G, base.B
			if tex != nil {
				u := w0*a.u + w1*b.u + w2*c.u
				v := w0*a.v + w1*b.v + w2*c.v
				var ca uint8
				cr, cg, cb, ca = sampleTexture(tex, u, v)
				// Skip transparent texels
				if ca < 8 {
					continue
				}
			}
			fb.zbuf[zi] = z

			pi := zi * 4
			fb.color[pi] = light.tone(cr, shade)
			fb.color[pi+1] = light.tone(cg, shade)
			fb.color[pi+2] = light.tone(cb, shade)
			fb.color[pi+3] = 255
		}
	}
}

// sampleTexture performs bilinear filtering with UV wrapping.
func sampleTexture(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()

	// Wrap UVs
	u -= math.Floor(u)
	v -= math.Floor(v)

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := (x0 + 1) % w
	y1 := (y0 + 1) % h
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	stride := tex.Stride
	pix := tex.Pix

	// Four texels
	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	ch := func(o int) uint8 {
		f := float64(pix[i00+o])*w00 + float64(pix[i10+o])*w10 + float64(pix[i01+o])*w01 + float64(pix[i11+o])*w11
		return uint8(f + 0.5)
	}
	return ch(0), ch(1), ch(2), ch(3)
}
