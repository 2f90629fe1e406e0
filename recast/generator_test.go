package recast

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() *Config {
	return &Config{
		CellSize:                 0.25,
		CellHeight:               0.1,
		MinTraversableHeight:     2,
		MaxTraversableStep:       0.5,
		MaxTraversableSlope:      45,
		SmoothingThreshold:       2,
		UseConservativeExpansion: true,
		MinUnconnectedRegionSize: 8,
		MergeRegionSize:          20,
		MaxEdgeLength:            12,
		EdgeMaxDeviation:         2.4,
		MaxVertsPerPoly:          6,
		ContourSampleDistance:    1,
		ContourMaxDeviation:      0.5,
	}
}

// upQuad appends an upward facing quad on y=0 spanning [x0,x1] x [z0,z1].
func upQuad(verts []float64, indices []int, x0, x1, z0, z1 float64) ([]float64, []int) {
	base := len(verts) / 3
	verts = append(verts,
		x0, 0, z0,
		x1, 0, z0,
		x1, 0, z1,
		x0, 0, z1)
	indices = append(indices, base, base+2, base+1, base, base+3, base+2)
	return verts, indices
}

func TestGenerateFlatQuad(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	g, err := NewNavmeshGenerator(testConfig(), zap.New(core).Sugar())
	require.NoError(t, err)

	verts, indices := upQuad(nil, nil, 0, 10, 0, 10)
	data := NewIntermediateData()
	mesh, err := g.Build(verts, indices, data)
	require.NoError(t, err)
	require.NotNil(t, mesh)

	assert.Equal(t, 2, mesh.TriangleCount())
	area := 0.0
	for i := 0; i < mesh.TriangleCount(); i++ {
		assert.Equal(t, 1, mesh.TriangleRegion(i))
		v := mesh.TriangleVerts(i)
		for k := 0; k < 3; k++ {
			assert.InDelta(t, 0, v[k*3+1], 1e-9)
		}
		area += triangleArea(xz(v[0], v[2]), xz(v[3], v[5]), xz(v[6], v[8]))
	}
	assert.InDelta(t, 100, area, 1e-6)

	require.NotNil(t, data.SolidHeightfield())
	require.NotNil(t, data.OpenHeightfield())
	require.NotNil(t, data.Contours())
	require.NotNil(t, data.PolyMesh())
	assert.Equal(t, 40, data.SolidHeightfield().Width())
	assert.Equal(t, 2, data.OpenHeightfield().RegionCount())
	assert.Equal(t, 1, data.Contours().Size())
	assert.Equal(t, 1, data.PolyMesh().PolyCount())
	assert.GreaterOrEqual(t, data.TotalGenTime(), time.Duration(0))
	assert.NotEqual(t, Undefined, data.TotalGenTime())

	assert.Equal(t, 1, logs.FilterMessageSnippet("generated 2 triangles").Len())
}

func TestGenerateSeparatePlatforms(t *testing.T) {
	verts, indices := upQuad(nil, nil, 0, 4, 0, 10)
	verts, indices = upQuad(verts, indices, 6, 10, 0, 10)
	assertSplitAtFive(t, verts, indices)
}

func TestGenerateUnwalkableStrip(t *testing.T) {
	verts, indices := upQuad(nil, nil, 0, 4.5, 0, 10)
	verts, indices = upQuad(verts, indices, 5.5, 10, 0, 10)
	// The strip in between faces down.
	base := len(verts) / 3
	verts, _ = upQuad(verts, nil, 4.5, 5.5, 0, 10)
	indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	assertSplitAtFive(t, verts, indices)
}

// assertSplitAtFive checks that no triangle crosses x=5 and no region is
// found on both sides.
func assertSplitAtFive(t *testing.T, verts []float64, indices []int) {
	t.Helper()
	g, err := NewNavmeshGenerator(testConfig(), nil)
	require.NoError(t, err)
	mesh, err := g.Build(verts, indices, nil)
	require.NoError(t, err)

	left, right := map[int]bool{}, map[int]bool{}
	for i := 0; i < mesh.TriangleCount(); i++ {
		v := mesh.TriangleVerts(i)
		onLeft := v[0] < 5
		for k := 1; k < 3; k++ {
			assert.Equal(t, onLeft, v[k*3] < 5, "triangle %d crosses the gap", i)
		}
		if onLeft {
			left[mesh.TriangleRegion(i)] = true
		} else {
			right[mesh.TriangleRegion(i)] = true
		}
	}
	require.NotEmpty(t, left)
	require.NotEmpty(t, right)
	for r := range left {
		assert.False(t, right[r], "region %d on both platforms", r)
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	g, err := NewNavmeshGenerator(testConfig(), nil)
	require.NoError(t, err)

	data := NewIntermediateData()
	mesh, err := g.Build(nil, nil, data)
	assert.Nil(t, mesh)
	assert.True(t, errors.Is(err, ErrSolidHeightfield))
	assert.Equal(t, Undefined, data.VoxelizationTime)
	assert.Equal(t, Undefined, data.TotalGenTime())
}

func TestGenerateUnwalkableInput(t *testing.T) {
	g, err := NewNavmeshGenerator(testConfig(), nil)
	require.NoError(t, err)

	// Facing down.
	verts := []float64{0, 0, 0, 10, 0, 0, 10, 0, 10, 0, 0, 10}
	mesh, err := g.Build(verts, []int{0, 1, 2, 0, 2, 3}, nil)
	assert.Nil(t, mesh)
	assert.True(t, errors.Is(err, ErrContourSet), "got %v", err)
}

func TestNewNavmeshGeneratorRejectsBadConfig(t *testing.T) {
	_, err := NewNavmeshGenerator(nil, nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.CellSize = 0
	_, err = NewNavmeshGenerator(cfg, nil)
	assert.ErrorContains(t, err, "cell_size")

	// The caller's config is not modified.
	cfg = testConfig()
	cfg.SmoothingThreshold = 9
	_, err = NewNavmeshGenerator(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.SmoothingThreshold)
}
