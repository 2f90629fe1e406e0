package debug_utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gorustyt/gonmgen/recast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func countPrefix(s, prefix string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func TestDumpRejectsNil(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, DumpTriangleMeshToObj(nil, &buf), errNilInput)
	assert.ErrorIs(t, DumpPolyMeshToObj(nil, &buf), errNilInput)
	assert.ErrorIs(t, DumpContourSetToObj(nil, &buf), errNilInput)
	assert.ErrorIs(t, DumpTriangleMeshToObj(&recast.TriangleMesh{}, nil), errNilInput)
}

func TestDumpTriangleMesh(t *testing.T) {
	mesh := &recast.TriangleMesh{
		Vertices:        []float64{0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1},
		Indices:         []int{0, 2, 1, 0, 3, 2},
		TriangleRegions: []int{1, 1},
	}
	var buf bytes.Buffer
	require.NoError(t, DumpTriangleMeshToObj(mesh, &buf))
	out := buf.String()
	assert.Equal(t, 4, countPrefix(out, "v "))
	assert.Equal(t, 2, countPrefix(out, "f "))
	assert.Contains(t, out, "f 1 3 2\n")
}

func TestDumpGeneratedMesh(t *testing.T) {
	cfg := recast.DefaultConfig()
	g, err := recast.NewNavmeshGenerator(cfg, nil)
	require.NoError(t, err)

	verts := []float64{0, 0, 0, 10, 0, 0, 10, 0, 10, 0, 0, 10}
	data := recast.NewIntermediateData()
	_, err = g.Build(verts, []int{0, 2, 1, 0, 3, 2}, data)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, DumpPolyMeshToObj(data.PolyMesh(), &buf))
	assert.Equal(t, data.PolyMesh().VertCount(), countPrefix(buf.String(), "v "))
	assert.NotZero(t, countPrefix(buf.String(), "f "))

	buf.Reset()
	require.NoError(t, DumpContourSetToObj(data.Contours(), &buf))
	assert.Equal(t, data.Contours().Size(), countPrefix(buf.String(), "g region_"))
	assert.Equal(t, data.Contours().Size(), countPrefix(buf.String(), "l "))
}

func TestRegionColor(t *testing.T) {
	assert.Equal(t, Colorb{0, 0, 0, 255}, RegionColor(0))
	assert.Equal(t, Colorb{63, 63, 126, 255}, RegionColor(1))
	assert.NotEqual(t, RegionColor(1), RegionColor(2))

	var c Colorb
	c.FromInt(RegionColor(5).Int())
	assert.Equal(t, RegionColor(5), c)
}

func TestLogBuildTimes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core).Sugar()

	data := recast.NewIntermediateData()
	LogBuildTimes(log, data)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())

	data.VoxelizationTime = 1000
	data.RegionGenTime = 1000
	data.ContourGenTime = 1000
	data.PolyGenTime = 1000
	data.FinalMeshGenTime = 1000
	LogBuildTimes(log, data)
	assert.Equal(t, 6, logs.FilterLevelExact(zapcore.InfoLevel).Len())
	assert.Equal(t, 5, logs.FilterMessageSnippet("(20.0%)").Len())

	LogBuildTimes(nil, data)
}
