package recast

// Contour is the border of one region. Both vertex lists hold (x, y, z,
// regionID) in voxel units, where regionID is the region on the far side of
// the edge that starts at the vertex.
type Contour struct {
	RegionID int
	RawVerts []int
	Verts    []int
}

func (c *Contour) RawVertCount() int {
	return len(c.RawVerts) / 4
}

func (c *Contour) VertCount() int {
	return len(c.Verts) / 4
}

// ContourSet holds the contours of every region of an open heightfield.
type ContourSet struct {
	BoundedField
	contours []*Contour
}

func newContourSet(field *OpenHeightfield, capacity int) *ContourSet {
	return &ContourSet{
		BoundedField: field.BoundedField,
		contours:     make([]*Contour, 0, capacity),
	}
}

func (s *ContourSet) add(c *Contour) {
	s.contours = append(s.contours, c)
}

func (s *ContourSet) Size() int {
	return len(s.contours)
}

func (s *ContourSet) Get(index int) *Contour {
	if index < 0 || index >= len(s.contours) {
		return nil
	}
	return s.contours[index]
}

// ContourAlgorithm refines a simplified contour. sourceVerts is the raw
// contour, resultVerts the simplified one whose fourth component holds the
// raw vertex index. The updated simplified contour is returned.
type ContourAlgorithm interface {
	Apply(sourceVerts, resultVerts []int) []int
}
