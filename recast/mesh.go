package recast

// NullIndex marks an unused vertex slot or a border edge in PolyMeshField
// polygon data.
const NullIndex = -1

// PolyMeshField is a mesh of convex polygons in voxel coordinates.
//
// Each polygon takes 2*MaxVertsPerPoly slots in polys. The first half holds
// vertex indices padded with NullIndex, the second half holds per edge the
// index of the polygon on the other side, or NullIndex for border edges.
// Edge j goes from vertex j to vertex j+1.
type PolyMeshField struct {
	BoundedField
	maxVertsPerPoly int
	verts           []int
	polys           []int
	polyRegions     []int
}

func newPolyMeshField(field BoundedField, maxVertsPerPoly int) *PolyMeshField {
	return &PolyMeshField{BoundedField: field, maxVertsPerPoly: maxVertsPerPoly}
}

func (m *PolyMeshField) MaxVertsPerPoly() int {
	return m.maxVertsPerPoly
}

func (m *PolyMeshField) VertCount() int {
	return len(m.verts) / 3
}

func (m *PolyMeshField) PolyCount() int {
	if m.maxVertsPerPoly == 0 {
		return 0
	}
	return len(m.polys) / (2 * m.maxVertsPerPoly)
}

// Verts returns the shared (x, y, z) vertex array.
func (m *PolyMeshField) Verts() []int {
	return m.verts
}

// Polys returns the raw polygon array.
func (m *PolyMeshField) Polys() []int {
	return m.polys
}

// Poly returns the 2*MaxVertsPerPoly slots of polygon index.
func (m *PolyMeshField) Poly(index int) []int {
	nvp := m.maxVertsPerPoly
	return m.polys[index*2*nvp : (index+1)*2*nvp]
}

// PolyIndices returns the used vertex indices of a polygon.
func (m *PolyMeshField) PolyIndices(index int) []int {
	p := m.Poly(index)
	return p[:countPolyVerts(p, m.maxVertsPerPoly)]
}

// PolyVerts returns the (x, y, z) voxel coordinates of the polygon's
// vertices in order.
func (m *PolyMeshField) PolyVerts(index int) []int {
	indices := m.PolyIndices(index)
	out := make([]int, 0, len(indices)*3)
	for _, vi := range indices {
		out = append(out, m.verts[vi*3:vi*3+3]...)
	}
	return out
}

// PolyNeighbors returns the per edge neighbor polygons.
func (m *PolyMeshField) PolyNeighbors(index int) []int {
	p := m.Poly(index)
	return p[m.maxVertsPerPoly : m.maxVertsPerPoly+countPolyVerts(p, m.maxVertsPerPoly)]
}

func (m *PolyMeshField) PolyRegion(index int) int {
	return m.polyRegions[index]
}

func countPolyVerts(p []int, nvp int) int {
	for i := 0; i < nvp; i++ {
		if p[i] == NullIndex {
			return i
		}
	}
	return nvp
}
