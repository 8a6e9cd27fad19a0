package kernel

// Mesh is a triangle mesh suitable for rendering or STL output.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Part     string    `json:"part"`     // which panel this came from, if any
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i uint32) [3]float32 {
	return [3]float32{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

// Triangle returns the corners and first-vertex normal of triangle i.
func (m *Mesh) Triangle(i int) (corners [3][3]float32, normal [3]float32) {
	for j := range 3 {
		corners[j] = m.Vertex(m.Indices[3*i+j])
	}
	v := m.Indices[3*i]
	if int(3*v+2) < len(m.Normals) {
		normal = [3]float32{m.Normals[3*v], m.Normals[3*v+1], m.Normals[3*v+2]}
	}
	return corners, normal
}

// Bounds returns the axis-aligned bounds of all vertices.
func (m *Mesh) Bounds() (min, max [3]float32) {
	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertex(uint32(i))
		for a := range 3 {
			if i == 0 || v[a] < min[a] {
				min[a] = v[a]
			}
			if i == 0 || v[a] > max[a] {
				max[a] = v[a]
			}
		}
	}
	return min, max
}
