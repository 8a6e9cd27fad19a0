package kernel

import (
	"errors"
	"testing"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Mesh accessors ---

func TestMeshTriangleAndBounds(t *testing.T) {
	m := &Mesh{
		Vertices: []float32{0, 0, 0, 2, 0, 0, 0, 3, -1},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
	}
	corners, n := m.Triangle(0)
	if corners[1] != [3]float32{2, 0, 0} {
		t.Errorf("corner 1 = %v", corners[1])
	}
	if n != [3]float32{0, 0, 1} {
		t.Errorf("normal = %v", n)
	}
	min, max := m.Bounds()
	if min != [3]float32{0, 0, -1} || max != [3]float32{2, 3, 0} {
		t.Errorf("bounds = %v..%v", min, max)
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. Union grows the bounding box; everything else is trivial.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{
		minBB: [3]float64{0, 0, 0},
		maxBB: [3]float64{x, y, z},
	}
}

func (k *stubKernel) Cylinder(height, radius float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -height / 2},
		maxBB: [3]float64{radius, radius, height / 2},
	}
}

func (k *stubKernel) Prism(ring [][2]float64, depth float64) (Solid, error) {
	if len(ring) < 3 || depth <= 0 {
		return nil, ErrEmpty
	}
	return k.Box(1, 1, depth), nil
}

func (k *stubKernel) Union(a, b Solid) Solid {
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	s := &stubSolid{}
	for i := range 3 {
		s.minBB[i] = min(amin[i], bmin[i])
		s.maxBB[i] = max(amax[i], bmax[i])
	}
	return s
}

func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(10, 20, 30)
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("Box min = %v, want [0 0 0]", min)
	}
	if max != [3]float64{10, 20, 30} {
		t.Errorf("Box max = %v, want [10 20 30]", max)
	}
}

func TestUnionAll(t *testing.T) {
	var k Kernel = &stubKernel{}

	t.Run("empty", func(t *testing.T) {
		if _, err := UnionAll(k, nil); !errors.Is(err, ErrEmpty) {
			t.Errorf("err = %v, want ErrEmpty", err)
		}
	})

	t.Run("grows", func(t *testing.T) {
		s, err := UnionAll(k, []Solid{k.Box(1, 1, 1), k.Box(5, 2, 1), k.Cylinder(4, 1)})
		if err != nil {
			t.Fatal(err)
		}
		min, max := s.BoundingBox()
		if min != [3]float64{-1, -1, -2} || max != [3]float64{5, 2, 2} {
			t.Errorf("bounds = %v..%v", min, max)
		}
	})
}
