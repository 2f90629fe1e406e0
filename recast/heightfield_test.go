package recast

import (
	"testing"

	"github.com/gorustyt/gonmgen/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSolidField(t *testing.T, width, depth int) *SolidHeightfield {
	t.Helper()
	f := NewSolidHeightfield(1, 1)
	require.True(t, f.setBounds(common.Vec3{0, 0, 0}, common.Vec3{float64(width), 20, float64(depth)}))
	require.Equal(t, width, f.Width())
	require.Equal(t, depth, f.Depth())
	return f
}

func columnSpans(f *SolidHeightfield, w, d int) []HeightSpan {
	var out []HeightSpan
	for h := f.FirstSpan(w, d); h != NullSpan; h = f.Next(h) {
		out = append(out, *f.Span(h))
	}
	return out
}

func TestGridIndexRoundTrip(t *testing.T) {
	f, ok := newBoundedFieldWithBounds(common.Vec3{0, 0, 0}, common.Vec3{7, 1, 5}, 1, 1)
	require.True(t, ok)
	seen := make(map[int]bool)
	for w := 0; w < f.Width(); w++ {
		for d := 0; d < f.Depth(); d++ {
			idx := f.GridIndex(w, d)
			require.False(t, seen[idx], "index %d reused", idx)
			seen[idx] = true
			gw, gd := f.GridLocation(idx)
			assert.Equal(t, w, gw)
			assert.Equal(t, d, gd)
		}
	}
	assert.Len(t, seen, 35)
	assert.Equal(t, -1, f.GridIndex(-1, 0))
	assert.Equal(t, -1, f.GridIndex(7, 0))
	assert.Equal(t, -1, f.GridIndex(0, 5))
}

func TestBoundedFieldRejectsInvertedBounds(t *testing.T) {
	_, ok := newBoundedFieldWithBounds(common.Vec3{1, 0, 0}, common.Vec3{0, 1, 1}, 1, 1)
	assert.False(t, ok)
}

func TestOverlapBounds(t *testing.T) {
	assert.True(t, overlapBounds(common.Vec3{0, 0, 0}, common.Vec3{1, 1, 1}, common.Vec3{1, 1, 1}, common.Vec3{2, 2, 2}))
	assert.False(t, overlapBounds(common.Vec3{0, 0, 0}, common.Vec3{1, 1, 1}, common.Vec3{1.5, 0, 0}, common.Vec3{2, 1, 1}))
}

func TestAddDataKeepsSeparateSpans(t *testing.T) {
	f := newTestSolidField(t, 2, 2)
	require.True(t, f.AddData(0, 0, 6, 8, 0))
	require.True(t, f.AddData(0, 0, 0, 2, SpanFlagWalkable))

	spans := columnSpans(f, 0, 0)
	require.Len(t, spans, 2)
	assert.Equal(t, 0, spans[0].Min)
	assert.Equal(t, 2, spans[0].Max)
	assert.True(t, spans[0].Walkable())
	assert.Equal(t, 6, spans[1].Min)
	assert.Equal(t, 8, spans[1].Max)
	assert.False(t, spans[1].Walkable())
}

func TestAddDataMergesTouchingSpans(t *testing.T) {
	f := newTestSolidField(t, 2, 2)
	require.True(t, f.AddData(0, 0, 0, 2, SpanFlagWalkable))
	require.True(t, f.AddData(0, 0, 5, 6, 0))
	// Touches the lower span and overlaps the upper one.
	require.True(t, f.AddData(0, 0, 3, 5, 0))

	spans := columnSpans(f, 0, 0)
	require.Len(t, spans, 1)
	assert.Equal(t, 0, spans[0].Min)
	assert.Equal(t, 6, spans[0].Max)
	// The top surface came from an unwalkable span.
	assert.False(t, spans[0].Walkable())
	assert.Equal(t, 1, f.SpanCount())
}

func TestAddDataEqualTopsCombineFlags(t *testing.T) {
	f := newTestSolidField(t, 2, 2)
	require.True(t, f.AddData(1, 1, 0, 4, SpanFlagWalkable))
	require.True(t, f.AddData(1, 1, 2, 4, 0))

	spans := columnSpans(f, 1, 1)
	require.Len(t, spans, 1)
	assert.True(t, spans[0].Walkable())
}

func TestAddDataRejectsInvalidInput(t *testing.T) {
	f := newTestSolidField(t, 2, 2)
	assert.False(t, f.AddData(2, 0, 0, 1, 0))
	assert.False(t, f.AddData(0, -1, 0, 1, 0))
	assert.False(t, f.AddData(0, 0, 3, 1, 0))
	assert.False(t, f.HasSpans())
}

func TestSolidSpansStaySortedAndSeparated(t *testing.T) {
	f := newTestSolidField(t, 1, 1)
	for _, r := range [][2]int{{10, 12}, {0, 1}, {5, 6}, {20, 22}, {13, 14}, {3, 3}} {
		require.True(t, f.AddData(0, 0, r[0], r[1], 0))
	}
	spans := columnSpans(f, 0, 0)
	require.NotEmpty(t, spans)
	for i := 1; i < len(spans); i++ {
		assert.Greater(t, spans[i].Min, spans[i-1].Max+1, "spans %d and %d should have merged", i-1, i)
	}
}

func TestSolidForEachOrder(t *testing.T) {
	f := newTestSolidField(t, 2, 2)
	require.True(t, f.AddData(1, 0, 0, 1, 0))
	require.True(t, f.AddData(0, 1, 0, 1, 0))
	require.True(t, f.AddData(0, 0, 4, 5, 0))
	require.True(t, f.AddData(0, 0, 0, 1, 0))

	var visited [][3]int
	f.ForEach(func(w, d, h int) {
		visited = append(visited, [3]int{w, d, f.Span(h).Min})
	})
	assert.Equal(t, [][3]int{{0, 0, 0}, {0, 0, 4}, {1, 0, 0}, {0, 1, 0}}, visited)
}

func TestSolidFreedSpansAreReused(t *testing.T) {
	f := newTestSolidField(t, 1, 1)
	require.True(t, f.AddData(0, 0, 0, 1, 0))
	require.True(t, f.AddData(0, 0, 5, 6, 0))
	require.True(t, f.AddData(0, 0, 0, 6, 0))
	arenaSize := len(f.spans)
	require.True(t, f.AddData(0, 0, 10, 11, 0))
	assert.Equal(t, arenaSize, len(f.spans))
	assert.Equal(t, 2, f.SpanCount())
}
