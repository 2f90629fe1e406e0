package recast

import (
	"testing"

	"github.com/gorustyt/gonmgen/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockContours(t *testing.T, size int) (*OpenHeightfield, *ContourSet) {
	t.Helper()
	f := newBlockField(t, size)
	cset := NewContourSetBuilder([]ContourAlgorithm{NewMatchNullRegionEdges(1)}, nil).Build(f)
	require.NotNil(t, cset)
	return f, cset
}

func TestPolyMeshOfBlockIsOneQuad(t *testing.T) {
	_, cset := blockContours(t, 4)
	pmesh := NewPolyMeshFieldBuilder(6, nil).Build(cset)
	require.NotNil(t, pmesh)

	assert.Equal(t, 6, pmesh.MaxVertsPerPoly())
	assert.Equal(t, 4, pmesh.VertCount())
	require.Equal(t, 1, pmesh.PolyCount())
	assert.Equal(t, []int{0, 1, 2, 3}, pmesh.PolyIndices(0))
	assert.Equal(t, []int{4, 0, 4, 4, 0, 0, 0, 0, 0, 0, 0, 4}, pmesh.PolyVerts(0))
	assert.Equal(t, []int{NullIndex, NullIndex, NullIndex, NullIndex}, pmesh.PolyNeighbors(0))
	assert.Equal(t, 1, pmesh.PolyRegion(0))
	assert.Len(t, pmesh.Poly(0), 12)
	assert.Len(t, pmesh.Polys(), 12)
}

func TestPolyMeshWithTriangles(t *testing.T) {
	_, cset := blockContours(t, 4)
	pmesh := NewPolyMeshFieldBuilder(3, nil).Build(cset)
	require.NotNil(t, pmesh)

	require.Equal(t, 2, pmesh.PolyCount())
	assert.Equal(t, []int{0, 1, 2}, pmesh.PolyIndices(0))
	assert.Equal(t, []int{0, 2, 3}, pmesh.PolyIndices(1))
	assert.Equal(t, []int{NullIndex, NullIndex, 1}, pmesh.PolyNeighbors(0))
	assert.Equal(t, []int{0, NullIndex, NullIndex}, pmesh.PolyNeighbors(1))
}

func TestPolyMeshSharesVerticesBetweenRegions(t *testing.T) {
	f, spans := newTestOpenField(t, 4, 2, nil)
	setRegions(f, spans, 1, 0, 1, 0, 1)
	setRegions(f, spans, 2, 2, 3, 0, 1)
	f.setRegionCount(3)
	cset := NewContourSetBuilder([]ContourAlgorithm{NewMatchNullRegionEdges(1)}, nil).Build(f)
	require.NotNil(t, cset)

	pmesh := NewPolyMeshFieldBuilder(6, nil).Build(cset)
	require.NotNil(t, pmesh)
	assert.Equal(t, 6, pmesh.VertCount())
	require.Equal(t, 2, pmesh.PolyCount())

	regions := map[int]bool{}
	for p := 0; p < 2; p++ {
		regions[pmesh.PolyRegion(p)] = true
		other := 1 - p
		links := 0
		for _, n := range pmesh.PolyNeighbors(p) {
			if n != NullIndex {
				assert.Equal(t, other, n)
				links++
			}
		}
		assert.Equal(t, 1, links, "polygon %d", p)
	}
	assert.Equal(t, map[int]bool{1: true, 2: true}, regions)
}

func TestPolyMeshBuildRejectsEmptyInput(t *testing.T) {
	b := NewPolyMeshFieldBuilder(6, nil)
	assert.Nil(t, b.Build(nil))
	f := newBlockField(t, 2)
	assert.Nil(t, b.Build(newContourSet(f, 0)))
}

func TestPolyMeshClampsMaxVerts(t *testing.T) {
	assert.Equal(t, 3, NewPolyMeshFieldBuilder(1, nil).maxVertsPerPoly)
}

func TestTriangulateConvexPolygon(t *testing.T) {
	// A hexagon in contour winding.
	verts := []int{
		2, 0, 0, 0,
		0, 0, 2, 0,
		2, 0, 4, 0,
		4, 0, 4, 0,
		6, 0, 2, 0,
		4, 0, 0, 0,
	}
	indices := []int{0, 1, 2, 3, 4, 5}
	tris := make([]int, 6*3)
	n := triangulate(6, verts, indices, tris)
	require.Equal(t, 4, n)

	area := 0
	for i := 0; i < n; i++ {
		a := verts[tris[i*3]*4:]
		b := verts[tris[i*3+1]*4:]
		c := verts[tris[i*3+2]*4:]
		area -= common.Area2(a, b, c)
	}
	// Twice the hexagon area.
	assert.Equal(t, 32, area)
}

func TestGetPolyMergeValue(t *testing.T) {
	verts := []int{
		0, 0, 0,
		0, 0, 4,
		4, 0, 4,
		4, 0, 0,
	}
	pa := []int{0, 1, 2, NullIndex}
	pb := []int{0, 2, 3, NullIndex}
	value, ea, eb := getPolyMergeValue(pa, pb, verts, 4)
	assert.Equal(t, 32, value)
	assert.Equal(t, 2, ea)
	assert.Equal(t, 0, eb)

	// Too many vertices for nvp 3.
	value, _, _ = getPolyMergeValue(pa[:3], pb[:3], verts, 3)
	assert.Equal(t, -1, value)

	// No shared edge.
	value, _, _ = getPolyMergeValue([]int{0, 1, 2, NullIndex}, []int{3, 3, 3, NullIndex}, verts, 4)
	assert.Equal(t, -1, value)
}
