// Package panel builds one layered corrugated-board panel: three stacked
// layers sharing one outline, fold bevels on requested edges, materials,
// a pivot offset and a placement. Build is a pure function of its inputs.
package panel

import (
	"fmt"

	"github.com/chazu/carton/pkg/shape"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind distinguishes default rectangular panels from custom outlines.
type Kind int

const (
	KindRectangle Kind = iota
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "rectangle"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Edge names one side of a panel's nominal width×height rectangle.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeRight:
		return "right"
	case EdgeBottom:
		return "bottom"
	case EdgeLeft:
		return "left"
	default:
		return fmt.Sprintf("Edge(%d)", int(e))
	}
}

// Fold requests a bevel along an edge. Offset and Length are measured
// along the edge; a zero Length covers the rest of the edge.
type Fold struct {
	Edge   Edge
	Offset float64
	Length float64
}

// EdgeFolds builds full-length folds from per-edge flags in
// top, right, bottom, left order.
func EdgeFolds(top, right, bottom, left bool) []Fold {
	var folds []Fold
	for i, on := range []bool{top, right, bottom, left} {
		if on {
			folds = append(folds, Fold{Edge: Edge(i)})
		}
	}
	return folds
}

// Spec is an immutable panel description. Construct it with Rect or
// Custom.
type Spec struct {
	kind      Kind
	name      string
	width     float64
	height    float64
	thickness float64
	folds     []Fold
	pivot     r3.Vec
	shape     shape.Shape
}

// Option customises a Spec at construction.
type Option func(*Spec)

// WithFolds adds fold bevels.
func WithFolds(folds ...Fold) Option {
	return func(s *Spec) {
		s.folds = append(s.folds, folds...)
	}
}

// WithPivot offsets all geometry so the panel hinges about a chosen edge.
func WithPivot(p r3.Vec) Option {
	return func(s *Spec) {
		s.pivot = p
	}
}

// Rect describes a default width×height rectangular panel.
func Rect(name string, width, height, thickness float64, opts ...Option) Spec {
	s := Spec{kind: KindRectangle, name: name, width: width, height: height, thickness: thickness}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// Custom describes a panel traced by sh. Width and height remain the
// nominal size used for fold edges.
func Custom(name string, width, height, thickness float64, sh shape.Shape, opts ...Option) Spec {
	s := Rect(name, width, height, thickness, opts...)
	s.kind = KindCustom
	s.shape = sh.Clone()
	return s
}

func (s Spec) Kind() Kind { return s.kind }
func (s Spec) Name() string { return s.name }
func (s Spec) Width() float64 { return s.width }
func (s Spec) Height() float64 { return s.height }
func (s Spec) Thickness() float64 { return s.thickness }
func (s Spec) Pivot() r3.Vec { return s.pivot }
func (s Spec) Folds() []Fold { return append([]Fold(nil), s.folds...) }

// Outline returns the shape the panel is traced from.
func (s Spec) Outline() shape.Shape {
	if s.kind == KindCustom {
		return s.shape.Clone()
	}
	return shape.Rectangle(s.width, s.height)
}
