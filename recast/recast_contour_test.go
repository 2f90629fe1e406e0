package recast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBlockField(t *testing.T, size int) *OpenHeightfield {
	t.Helper()
	f, spans := newTestOpenField(t, size, size, nil)
	setRegions(f, spans, 1, 0, size-1, 0, size-1)
	f.setRegionCount(2)
	return f
}

func contourXZ(verts []int) [][2]int {
	var out [][2]int
	for i := 0; i+3 < len(verts); i += 4 {
		out = append(out, [2]int{verts[i], verts[i+2]})
	}
	return out
}

func TestRawContourOfBlock(t *testing.T) {
	f := newBlockField(t, 4)
	cset := NewContourSetBuilder(nil, nil).Build(f)
	require.NotNil(t, cset)
	require.Equal(t, 1, cset.Size())

	c := cset.Get(0)
	assert.Equal(t, 1, c.RegionID)
	assert.Equal(t, 16, c.RawVertCount())
	assert.Equal(t, 0, len(c.RawVerts)%4)
	raw := contourXZ(c.RawVerts)
	assert.Equal(t, [2]int{0, 1}, raw[0])
	assert.Equal(t, [2]int{0, 4}, raw[3])
	assert.Equal(t, [2]int{4, 4}, raw[7])
	assert.Equal(t, [2]int{4, 0}, raw[11])
	assert.Equal(t, [2]int{0, 0}, raw[15])
	for i := 0; i < c.RawVertCount(); i++ {
		assert.Equal(t, 0, c.RawVerts[i*4+1], "floor height")
		assert.Equal(t, NullRegion, c.RawVerts[i*4+3])
	}

	// Without algorithms the two extreme corners get one more vertex.
	assert.GreaterOrEqual(t, c.VertCount(), 3)
	assert.Nil(t, cset.Get(1))
	assert.Nil(t, cset.Get(-1))
}

func TestMatchNullRegionEdgesFindsCorners(t *testing.T) {
	f := newBlockField(t, 4)
	cset := NewContourSetBuilder([]ContourAlgorithm{NewMatchNullRegionEdges(1)}, nil).Build(f)
	require.NotNil(t, cset)
	require.Equal(t, 1, cset.Size())

	c := cset.Get(0)
	assert.Equal(t, [][2]int{{4, 4}, {4, 0}, {0, 0}, {0, 4}}, contourXZ(c.Verts))
	for i := 0; i < c.VertCount(); i++ {
		assert.Equal(t, NullRegion, c.Verts[i*4+3])
	}
}

func TestNullRegionMaxEdgeSplitsLongEdges(t *testing.T) {
	f := newBlockField(t, 4)
	algorithms := []ContourAlgorithm{NewMatchNullRegionEdges(1), NewNullRegionMaxEdge(2)}
	cset := NewContourSetBuilder(algorithms, nil).Build(f)
	require.NotNil(t, cset)

	assert.Equal(t, [][2]int{{4, 4}, {4, 2}, {4, 0}, {2, 0}, {0, 0}, {0, 2}, {0, 4}, {2, 4}},
		contourXZ(cset.Get(0).Verts))
}

func TestNullRegionMaxEdgeDisabled(t *testing.T) {
	raw := []int{0, 0, 0, 0, 0, 0, 9, 0, 9, 0, 9, 0}
	out := []int{0, 0, 0, 0, 9, 0, 9, 2}
	assert.Equal(t, out, NewNullRegionMaxEdge(0).Apply(raw, append([]int(nil), out...)))
}

func TestContourBetweenTwoRegions(t *testing.T) {
	f, spans := newTestOpenField(t, 4, 2, nil)
	setRegions(f, spans, 1, 0, 1, 0, 1)
	setRegions(f, spans, 2, 2, 3, 0, 1)
	f.setRegionCount(3)

	cset := NewContourSetBuilder([]ContourAlgorithm{NewMatchNullRegionEdges(1)}, nil).Build(f)
	require.NotNil(t, cset)
	require.Equal(t, 2, cset.Size())

	for i := 0; i < cset.Size(); i++ {
		c := cset.Get(i)
		var portal int
		for v := 0; v < c.VertCount(); v++ {
			if c.Verts[v*4+3] != NullRegion {
				portal++
				assert.NotEqual(t, c.RegionID, c.Verts[v*4+3])
			}
		}
		assert.Equal(t, 1, portal, "region %d has one edge on the other region", c.RegionID)
		for _, v := range contourXZ(c.Verts) {
			if c.RegionID == 1 {
				assert.LessOrEqual(t, v[0], 2)
			} else {
				assert.GreaterOrEqual(t, v[0], 2)
			}
		}
	}
}

func TestContourBuildRejectsFieldWithoutRegions(t *testing.T) {
	f, _ := newTestOpenField(t, 2, 2, nil)
	assert.Nil(t, NewContourSetBuilder(nil, nil).Build(f))
	assert.Nil(t, NewContourSetBuilder(nil, nil).Build(nil))
}

func TestContourSkipsIslandSpan(t *testing.T) {
	f, spans := newTestOpenField(t, 3, 3, nil)
	setRegions(f, spans, 1, 0, 2, 0, 2)
	// Every edge of the corner span borders another region or the field edge.
	f.Span(spans[[2]int{0, 0}]).RegionID = 2
	f.setRegionCount(3)

	cset := NewContourSetBuilder(nil, nil).Build(f)
	require.NotNil(t, cset)
	require.Equal(t, 1, cset.Size())
	assert.Equal(t, 1, cset.Get(0).RegionID)
}

func TestCornerHeight(t *testing.T) {
	f, spans := newTestOpenField(t, 2, 2, nil)
	f.Span(spans[[2]int{1, 1}]).Floor = 1
	// Re-link with a step of one.
	NewOpenHeightfieldBuilder(1, 1, 0, 0, false, nil, nil).GenerateNeighborLinks(f)
	// The corner clockwise of the +z edge of (0,0) is shared by all four.
	assert.Equal(t, 1, f.cornerHeight(spans[[2]int{0, 0}], 1))
	assert.Equal(t, 0, f.cornerHeight(spans[[2]int{0, 0}], 3))
}

func TestRemoveVerticalSegments(t *testing.T) {
	verts := []int{
		0, 0, 0, 0,
		0, 3, 0, 0,
		4, 0, 0, 0,
		4, 0, 4, 0,
	}
	out := removeVerticalSegments(1, verts, NopLogger())
	assert.Equal(t, [][2]int{{0, 0}, {4, 0}, {4, 4}}, contourXZ(out))
}

func TestRemoveIntersectingSegments(t *testing.T) {
	// A bow tie: the null region edge (0,0)->(4,4) crosses (4,0)->(0,4).
	verts := []int{
		0, 0, 0, 0,
		4, 0, 4, 1,
		4, 0, 0, 1,
		0, 0, 4, 1,
	}
	out := removeIntersectingSegments(1, verts, NopLogger())
	assert.Less(t, len(out), len(verts))
}
