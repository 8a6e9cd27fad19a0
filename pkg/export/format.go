// Package export writes a captured design to a file format: raster
// images, a single-page PDF, an SVG drawing or an STL mesh.
package export

import (
	"fmt"
	"strings"
)

// DefaultName is the file stem used when none is given.
const DefaultName = "gy-template-01"

// Format is an output file format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	WebP Format = "webp"
	PDF  Format = "pdf"
	SVG  Format = "svg"
	STL  Format = "stl"
)

// Formats lists every supported format.
var Formats = []Format{PNG, JPEG, WebP, PDF, SVG, STL}

// ParseFormat accepts a format name or common extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case PNG, JPEG, WebP, PDF, SVG, STL:
		return f, nil
	case "jpg":
		return JPEG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// ContentType returns the media type served for f.
func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	case WebP:
		return "image/webp"
	case PDF:
		return "application/pdf"
	case SVG:
		return "image/svg+xml"
	case STL:
		return "model/stl"
	}
	return "application/octet-stream"
}

// Raster reports whether f is drawn by the rasterizer.
func (f Format) Raster() bool {
	return f == PNG || f == JPEG || f == WebP || f == PDF
}

// FileName joins a stem and the format's extension, using DefaultName
// for an empty stem.
func FileName(stem string, f Format) string {
	stem = strings.TrimSpace(stem)
	if stem == "" {
		stem = DefaultName
	}
	return stem + f.Ext()
}
