package recast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterDiscardsSmallIsland(t *testing.T) {
	cells := [][2]int{{1, 1}}
	for w := 3; w <= 4; w++ {
		for d := 0; d <= 4; d++ {
			cells = append(cells, [2]int{w, d})
		}
	}
	f, spans := newTestOpenField(t, 5, 5, cells)
	setRegions(f, spans, 1, 1, 1, 1, 1)
	setRegions(f, spans, 2, 3, 4, 0, 4)
	f.setRegionCount(3)

	NewFilterOutSmallRegions(5, 0).Apply(f, nil)

	assert.Equal(t, 2, f.RegionCount())
	assert.Equal(t, NullRegion, f.Span(spans[[2]int{1, 1}]).RegionID)
	for w := 3; w <= 4; w++ {
		for d := 0; d <= 4; d++ {
			assert.Equal(t, 1, f.Span(spans[[2]int{w, d}]).RegionID, "(%d,%d)", w, d)
		}
	}

	// The contour builder agrees with the new region count.
	cset := NewContourSetBuilder(nil, nil).Build(f)
	require.NotNil(t, cset)
	require.Equal(t, 1, cset.Size())
	assert.Equal(t, 1, cset.Get(0).RegionID)
}

func TestFilterMergesSmallRegion(t *testing.T) {
	f, spans := newTestOpenField(t, 5, 1, nil)
	setRegions(f, spans, 1, 0, 1, 0, 0)
	setRegions(f, spans, 2, 2, 4, 0, 0)
	f.setRegionCount(3)

	assert.Equal(t, []int{NullRegion, 2}, f.findRegionConnections(spans[[2]int{0, 0}], 0, nil))
	assert.Equal(t, []int{1, NullRegion}, f.findRegionConnections(spans[[2]int{2, 0}], 0, nil))

	NewFilterOutSmallRegions(1, 10).Apply(f, nil)

	assert.Equal(t, 2, f.RegionCount())
	for w := 0; w < 5; w++ {
		assert.Equal(t, 1, f.Span(spans[[2]int{w, 0}]).RegionID)
	}
}

func TestFilterKeepsLargeRegionsApart(t *testing.T) {
	f, spans := newTestOpenField(t, 5, 1, nil)
	setRegions(f, spans, 1, 0, 1, 0, 0)
	setRegions(f, spans, 2, 2, 4, 0, 0)
	f.setRegionCount(3)

	NewFilterOutSmallRegions(1, 1).Apply(f, nil)

	assert.Equal(t, 3, f.RegionCount())
	assert.Equal(t, 1, f.Span(spans[[2]int{1, 0}]).RegionID)
	assert.Equal(t, 2, f.Span(spans[[2]int{2, 0}]).RegionID)
}

func TestFilterCompactsRegionIDs(t *testing.T) {
	f, spans := newTestOpenField(t, 5, 1, [][2]int{{0, 0}, {1, 0}, {3, 0}, {4, 0}})
	setRegions(f, spans, 2, 0, 1, 0, 0)
	setRegions(f, spans, 5, 3, 4, 0, 0)
	f.setRegionCount(6)

	NewFilterOutSmallRegions(1, 0).Apply(f, nil)

	assert.Equal(t, 3, f.RegionCount())
	assert.Equal(t, 1, f.Span(spans[[2]int{0, 0}]).RegionID)
	assert.Equal(t, 2, f.Span(spans[[2]int{4, 0}]).RegionID)
}

func TestFilterWithoutRegions(t *testing.T) {
	f, spans := newTestOpenField(t, 2, 2, nil)
	NewFilterOutSmallRegions(10, 10).Apply(f, nil)
	assert.Equal(t, 0, f.RegionCount())
	assert.Equal(t, NullRegion, f.Span(spans[[2]int{0, 0}]).RegionID)
}

func TestRemoveAdjacentDuplicateConnections(t *testing.T) {
	r := newRegion(1)
	r.connections = []int{1, 1, 2, 2, 0, 1}
	r.removeAdjacentDuplicateConnections()
	assert.Equal(t, []int{2, 0, 1}, r.connections)

	r.connections = []int{3, 3, 3}
	r.removeAdjacentDuplicateConnections()
	assert.Equal(t, []int{3}, r.connections)
}

func TestCanMergeWith(t *testing.T) {
	a := newRegion(1)
	b := newRegion(2)
	a.connections = []int{0, 2}
	assert.True(t, a.canMergeWith(b))

	a.connections = []int{0, 2, 0, 2}
	assert.False(t, a.canMergeWith(b), "touches in two places")

	a.connections = []int{0, 2}
	b.addUniqueOverlap(1)
	b.addUniqueOverlap(1)
	assert.Len(t, b.overlappingRegions, 1)
	assert.False(t, a.canMergeWith(b), "shares a column")
}

func TestMergeRegions(t *testing.T) {
	target := newRegion(1)
	target.connections = []int{0, 2, 3}
	target.spanCount = 4
	candidate := newRegion(2)
	candidate.connections = []int{1, 0}
	candidate.spanCount = 3
	candidate.overlappingRegions = []int{7}

	require.True(t, mergeRegions(target, candidate))
	assert.Equal(t, []int{3, 0}, target.connections)
	assert.Equal(t, 7, target.spanCount)
	assert.Equal(t, []int{7}, target.overlappingRegions)

	assert.False(t, mergeRegions(target, newRegion(9)))
}

func TestReplaceNeighborRegionID(t *testing.T) {
	r := newRegion(1)
	r.connections = []int{0, 2, 3}
	r.overlappingRegions = []int{2}
	r.replaceNeighborRegionID(2, 3)
	assert.Equal(t, []int{0, 3}, r.connections)
	assert.Equal(t, []int{3}, r.overlappingRegions)
}

func TestCleanNullRegionBordersSplitsEnclosingRegion(t *testing.T) {
	f, spans := newTestOpenField(t, 5, 5, nil)
	setRegions(f, spans, 1, 0, 4, 0, 4)
	f.Span(spans[[2]int{2, 2}]).RegionID = NullRegion
	f.setRegionCount(2)

	NewCleanNullRegionBorders(true).Apply(f, nil)

	require.Equal(t, 3, f.RegionCount())
	assert.Equal(t, NullRegion, f.Span(spans[[2]int{2, 2}]).RegionID)
	for c, h := range spans {
		if c == [2]int{2, 2} {
			continue
		}
		want := 1
		if c[0] <= 1 {
			want = 2
		}
		assert.Equal(t, want, f.Span(h).RegionID, "cell %v", c)
	}
}

func TestCleanNullRegionBordersLeavesOpenBorder(t *testing.T) {
	f, spans := newTestOpenField(t, 4, 4, nil)
	setRegions(f, spans, 1, 0, 3, 0, 3)
	f.setRegionCount(2)

	NewCleanNullRegionBorders(false).Apply(f, nil)

	assert.Equal(t, 2, f.RegionCount())
	for _, h := range spans {
		assert.Equal(t, 1, f.Span(h).RegionID)
	}
}
