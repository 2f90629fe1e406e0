package recast

// TriangleMesh is the final navigation mesh in world coordinates.
type TriangleMesh struct {
	// Vertices holds (x, y, z) triples.
	Vertices []float64
	// Indices holds three vertex indices per triangle, wrapped clockwise.
	Indices []int
	// TriangleRegions holds the region id of each triangle.
	TriangleRegions []int
}

func (m *TriangleMesh) VertCount() int {
	return len(m.Vertices) / 3
}

func (m *TriangleMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// TriangleVerts returns the nine coordinates of a triangle, or nil for an
// invalid index.
func (m *TriangleMesh) TriangleVerts(index int) []float64 {
	if index < 0 || index >= m.TriangleCount() {
		return nil
	}
	out := make([]float64, 0, 9)
	for _, vi := range m.Indices[index*3 : index*3+3] {
		out = append(out, m.Vertices[vi*3:vi*3+3]...)
	}
	return out
}

// TriangleRegion returns the region of a triangle, -1 for an invalid index.
func (m *TriangleMesh) TriangleRegion(index int) int {
	if index < 0 || index >= len(m.TriangleRegions) {
		return -1
	}
	return m.TriangleRegions[index]
}
