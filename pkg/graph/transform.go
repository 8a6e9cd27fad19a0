package graph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Axis names a hinge rotation axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Unit returns the axis as a unit vector.
func (a Axis) Unit() r3.Vec {
	switch a {
	case AxisY:
		return r3.Vec{Y: 1}
	case AxisZ:
		return r3.Vec{Z: 1}
	default:
		return r3.Vec{X: 1}
	}
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// Transform places a node relative to its parent. Rotation holds Euler
// angles in degrees applied in XYZ order (R = Rx·Ry·Rz).
type Transform struct {
	Position r3.Vec `json:"position"`
	Rotation r3.Vec `json:"rotation"`
}

// Component returns the rotation angle about a single axis in degrees.
func (t Transform) Component(a Axis) float64 {
	switch a {
	case AxisY:
		return t.Rotation.Y
	case AxisZ:
		return t.Rotation.Z
	default:
		return t.Rotation.X
	}
}

// withComponent returns t with one rotation component replaced.
func (t Transform) withComponent(a Axis, deg float64) Transform {
	switch a {
	case AxisY:
		t.Rotation.Y = deg
	case AxisZ:
		t.Rotation.Z = deg
	default:
		t.Rotation.X = deg
	}
	return t
}

// Orientation returns the rotation as a unit quaternion.
func (t Transform) Orientation() r3.Rotation {
	rx := r3.NewRotation(Deg2Rad(t.Rotation.X), AxisX.Unit())
	ry := r3.NewRotation(Deg2Rad(t.Rotation.Y), AxisY.Unit())
	rz := r3.NewRotation(Deg2Rad(t.Rotation.Z), AxisZ.Unit())
	return r3.Rotation(quat.Mul(quat.Mul(quat.Number(rx), quat.Number(ry)), quat.Number(rz)))
}

// Apply maps a point from the node's local frame into its parent's frame.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	return r3.Add(t.Orientation().Rotate(p), t.Position)
}

// Frame is a composed rigid transform from a node's local frame to world
// space.
type Frame struct {
	R r3.Rotation
	T r3.Vec
}

// Identity is the world frame.
func Identity() Frame {
	return Frame{R: r3.NewRotation(0, AxisZ.Unit())}
}

// Then composes a child transform under f.
func (f Frame) Then(child Transform) Frame {
	r := quat.Mul(quat.Number(f.R), quat.Number(child.Orientation()))
	return Frame{
		R: r3.Rotation(r),
		T: f.Apply(child.Position),
	}
}

// Apply maps a local point into world space.
func (f Frame) Apply(p r3.Vec) r3.Vec {
	return r3.Add(f.R.Rotate(p), f.T)
}

// ApplyAll maps every point of a ring.
func (f Frame) ApplyAll(ps []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(ps))
	for i, p := range ps {
		out[i] = f.Apply(p)
	}
	return out
}

// Direction rotates a vector without translating it.
func (f Frame) Direction(v r3.Vec) r3.Vec {
	return f.R.Rotate(v)
}
