// Package kernel defines the abstract geometry kernel interface.
// Implementations provide solid modeling behind this interface so board
// panels can be turned into watertight meshes without the rest of the
// system knowing how.
package kernel

import "errors"

// ErrEmpty is returned when a solid or mesh would have no volume.
var ErrEmpty = errors.New("empty solid")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives. Box has its min corner at the origin, Cylinder is
	// centred on the Z axis, and Prism extrudes a closed XY ring from
	// z = 0 to z = depth.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid
	Prism(ring [][2]float64, depth float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, R = Rx·Ry·Rz

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// UnionAll folds solids into one. It returns ErrEmpty for no solids.
func UnionAll(k Kernel, solids []Solid) (Solid, error) {
	if len(solids) == 0 {
		return nil, ErrEmpty
	}
	acc := solids[0]
	for _, s := range solids[1:] {
		acc = k.Union(acc, s)
	}
	return acc, nil
}
