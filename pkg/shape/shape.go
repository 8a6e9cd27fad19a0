package shape

import (
	"errors"
	"fmt"
)

// Kind enumerates drawing instruction types.
type Kind int

const (
	Line           Kind = iota // x, y
	QuadraticCurve             // cx, cy, x, y
	BezierCurve                // c1x, c1y, c2x, c2y, x, y
	Arc                        // cx, cy, radius, startAngle, endAngle (radians)
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case QuadraticCurve:
		return "quadratic"
	case BezierCurve:
		return "bezier"
	case Arc:
		return "arc"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Arity returns the number of coordinates an instruction of this kind
// carries, or -1 for an unknown kind.
func (k Kind) Arity() int {
	switch k {
	case Line:
		return 2
	case QuadraticCurve:
		return 4
	case BezierCurve:
		return 6
	case Arc:
		return 5
	default:
		return -1
	}
}

// ErrArity is returned when an instruction's coordinate count does not
// match its kind.
var ErrArity = errors.New("shape: coordinate count does not match instruction kind")

// Instruction is a single drawing command in the outline's local frame.
type Instruction struct {
	Kind   Kind      `json:"kind"`
	Coords []float64 `json:"coords"`
}

// Shape is an ordered list of instructions tracing a closed outline from
// the origin.
type Shape []Instruction

// L returns a line-to instruction.
func L(x, y float64) Instruction {
	return Instruction{Kind: Line, Coords: []float64{x, y}}
}

// Q returns a quadratic-curve-to instruction.
func Q(cx, cy, x, y float64) Instruction {
	return Instruction{Kind: QuadraticCurve, Coords: []float64{cx, cy, x, y}}
}

// C returns a cubic bezier-curve-to instruction.
func C(c1x, c1y, c2x, c2y, x, y float64) Instruction {
	return Instruction{Kind: BezierCurve, Coords: []float64{c1x, c1y, c2x, c2y, x, y}}
}

// A returns an arc instruction centered at (cx, cy). Angles are radians.
func A(cx, cy, radius, start, end float64) Instruction {
	return Instruction{Kind: Arc, Coords: []float64{cx, cy, radius, start, end}}
}

// Validate checks every instruction's arity. It performs no topology
// checks; self-intersecting outlines are accepted.
func (s Shape) Validate() error {
	for i, in := range s {
		want := in.Kind.Arity()
		if want < 0 {
			return fmt.Errorf("instruction %d: unknown kind %s: %w", i, in.Kind, ErrArity)
		}
		if len(in.Coords) != want {
			return fmt.Errorf("instruction %d (%s): got %d coords, want %d: %w",
				i, in.Kind, len(in.Coords), want, ErrArity)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can't alias coordinate slices.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	for i, in := range s {
		out[i] = Instruction{Kind: in.Kind, Coords: append([]float64(nil), in.Coords...)}
	}
	return out
}
