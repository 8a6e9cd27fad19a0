package config

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid box parameters")

// FaceKind selects how the box faces are painted.
type FaceKind string

const (
	FaceColor    FaceKind = "Color"
	FaceMaterial FaceKind = "Material"
	FaceCustom   FaceKind = "Custom"
)

// Accepted enum values.
var (
	Materials = []string{"cardboard", "paper", "pattern"}
	Formats   = []string{"png", "jpeg", "jpg", "webp", "pdf", "svg", "stl"}
	Views     = []string{"mockup", "dieline", "foldable"}
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Params is the flat record a user fills in to design a box.
type Params struct {
	Length     float64  `json:"length"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Thickness  float64  `json:"thicknessMm"`
	FaceKind   FaceKind `json:"faceKind"`
	Color      string   `json:"color"`
	Texture    string   `json:"texture,omitempty"`
	Material   string   `json:"material,omitempty"`
	Format     string   `json:"format"`
	View       string   `json:"view"`
	PreviewLid bool     `json:"previewLid,omitempty"`
}

// DefaultParams is a 200×100×60 mm box of 5 mm board in plain yellow.
func DefaultParams() Params {
	return Params{
		Length:    200,
		Width:     100,
		Height:    60,
		Thickness: 5,
		FaceKind:  FaceColor,
		Color:     "#EDDA74",
		Material:  "cardboard",
		Format:    "png",
		View:      "mockup",
	}
}

// Validate checks every field and reports all problems at once, wrapped
// in ErrInvalidParams.
func (p Params) Validate() error {
	var problems []string
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			problems = append(problems, fmt.Sprintf("%s must be a positive number, got %g", name, v))
		}
	}
	positive("length", p.Length)
	positive("width", p.Width)
	positive("height", p.Height)
	positive("thicknessMm", p.Thickness)

	switch p.FaceKind {
	case FaceColor:
		if !hexColor.MatchString(p.Color) {
			problems = append(problems, fmt.Sprintf("color %q is not #RRGGBB", p.Color))
		}
	case FaceMaterial:
		if !slices.Contains(Materials, p.Material) {
			problems = append(problems, fmt.Sprintf("material %q is not one of %s", p.Material, strings.Join(Materials, ", ")))
		}
	case FaceCustom:
		if strings.TrimSpace(p.Texture) == "" {
			problems = append(problems, "custom faces need a texture")
		}
	default:
		problems = append(problems, fmt.Sprintf("faceKind %q is not Color, Material or Custom", p.FaceKind))
	}
	if p.Color != "" && p.FaceKind != FaceColor && !hexColor.MatchString(p.Color) {
		problems = append(problems, fmt.Sprintf("fallback color %q is not #RRGGBB", p.Color))
	}

	if !slices.Contains(Formats, strings.ToLower(p.Format)) {
		problems = append(problems, fmt.Sprintf("format %q is not one of %s", p.Format, strings.Join(Formats, ", ")))
	}
	if !slices.Contains(Views, p.View) {
		problems = append(problems, fmt.Sprintf("view %q is not one of %s", p.View, strings.Join(Views, ", ")))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(problems, "; "))
	}
	return nil
}

// Textured reports whether the faces sample an image rather than a flat
// color.
func (p Params) Textured() bool {
	return p.FaceKind == FaceMaterial || p.FaceKind == FaceCustom
}
