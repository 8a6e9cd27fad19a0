// Package texture resolves texture references (file paths, http URLs and
// data URIs) into decoded images. Loads are asynchronous: callers receive
// a Handle immediately and the image arrives later.
package texture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxBytes bounds a single texture download or file read unless the
// loader sets its own limit.
const MaxBytes = 32 << 20

var (
	// ErrUnsupportedRef is returned for references the loader cannot fetch.
	ErrUnsupportedRef = errors.New("texture: unsupported reference")
	// ErrOutsideRoot is returned for file references that leave the root.
	ErrOutsideRoot = errors.New("texture: path outside asset root")
	// ErrTooLarge is returned when a source exceeds the byte limit.
	ErrTooLarge = errors.New("texture: source too large")
)

// Loader fetches and decodes one texture reference.
type Loader interface {
	Load(ctx context.Context, ref string) (*image.NRGBA, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, ref string) (*image.NRGBA, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, ref string) (*image.NRGBA, error) {
	return f(ctx, ref)
}

// DefaultLoader reads data URIs, http(s) URLs and files. File references
// must be relative and stay inside Root after cleaning.
type DefaultLoader struct {
	Root   string
	Client *http.Client
	// MaxBytes caps each read; zero means MaxBytes.
	MaxBytes int64
}

func (l DefaultLoader) limit() int64 {
	if l.MaxBytes > 0 {
		return l.MaxBytes
	}
	return MaxBytes
}

// Load fetches ref and decodes it.
func (l DefaultLoader) Load(ctx context.Context, ref string) (*image.NRGBA, error) {
	raw, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

func (l DefaultLoader) fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case IsDataURI(ref):
		raw, err := decodeDataURI(ref)
		if err == nil && int64(len(raw)) > l.limit() {
			return nil, fmt.Errorf("texture: data URI of %d bytes: %w", len(raw), ErrTooLarge)
		}
		return raw, err
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.download(ctx, ref)
	case ref == "":
		return nil, fmt.Errorf("empty reference: %w", ErrUnsupportedRef)
	default:
		path, err := l.resolve(ref)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("texture: read %s: %w", ref, err)
		}
		defer f.Close()
		raw, err := readLimited(ctx, f, l.limit())
		if err != nil {
			return nil, fmt.Errorf("texture: read %s: %w", ref, err)
		}
		return raw, nil
	}
}

// resolve maps a file reference to a path under Root.
func (l DefaultLoader) resolve(ref string) (string, error) {
	if filepath.IsAbs(ref) || filepath.VolumeName(ref) != "" {
		return "", fmt.Errorf("%q is absolute: %w", ref, ErrOutsideRoot)
	}
	rel := filepath.Clean(ref)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", ref, ErrOutsideRoot)
	}
	root := l.Root
	if root == "" {
		root = "."
	}
	return filepath.Join(root, rel), nil
}

// ctxReader fails reads once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// readLimited reads r up to limit bytes, stopping when ctx ends.
func readLimited(ctx context.Context, r io.Reader, limit int64) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(ctxReader{ctx: ctx, r: r}, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("more than %d bytes: %w", limit, ErrTooLarge)
	}
	return raw, nil
}

func (l DefaultLoader) download(ctx context.Context, ref string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("texture: request %s: %w", ref, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("texture: get %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("texture: get %s: status %d", ref, resp.StatusCode)
	}
	raw, err := readLimited(ctx, resp.Body, l.limit())
	if err != nil {
		return nil, fmt.Errorf("texture: get %s: %w", ref, err)
	}
	return raw, nil
}

// FileDataURI reads a local image into a base64 data URI. The CLI uses it
// for textures named on the command line, which may live anywhere.
func FileDataURI(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("texture: read %s: %w", path, err)
	}
	defer f.Close()
	raw, err := readLimited(context.Background(), f, MaxBytes)
	if err != nil {
		return "", fmt.Errorf("texture: read %s: %w", path, err)
	}
	mime := http.DetectContentType(raw)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// IsDataURI reports whether ref carries its image inline.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// UploadsOnly restricts next to data URIs and preset files. Servers use it
// so a request cannot make them read local files or fetch URLs.
func UploadsOnly(next Loader) Loader {
	return LoaderFunc(func(ctx context.Context, ref string) (*image.NRGBA, error) {
		if !IsDataURI(ref) && !isPresetRef(ref) {
			return nil, fmt.Errorf("%q is not a data URI or preset: %w", shortRef(ref), ErrUnsupportedRef)
		}
		return next.Load(ctx, ref)
	})
}

// decodeDataURI returns the payload of a data URI. Only base64 and
// percent-encoded payloads are accepted.
func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("texture: malformed data URI: %w", ErrUnsupportedRef)
	}
	if strings.HasSuffix(meta, ";base64") {
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("texture: data URI: %w", err)
		}
		return raw, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("texture: data URI: %w", err)
	}
	return []byte(s), nil
}

// Decode decodes PNG, JPEG, TGA, BMP or WebP bytes into NRGBA.
func Decode(raw []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("texture: decode: %w", err)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// No alpha channel: draw, then force opaque.
		draw.Draw(dst, b, src, b.Min, draw.Src)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 255
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}

// Average returns the mean color of an image. It stands in for a texture
// where sampling is not possible.
func Average(img *image.NRGBA) color.NRGBA {
	var r, g, b, a, n uint64
	for i := 0; i+3 < len(img.Pix); i += 4 {
		r += uint64(img.Pix[i])
		g += uint64(img.Pix[i+1])
		b += uint64(img.Pix[i+2])
		a += uint64(img.Pix[i+3])
		n++
	}
	if n == 0 {
		return color.NRGBA{}
	}
	return color.NRGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: uint8(a / n)}
}
