package recast

import (
	"math"

	"github.com/gorustyt/gonmgen/common"
)

const (
	maxTraversableSlopeLimit = 85.0
	normalEpsilon            = 0.0001
	// A triangle clipped against four half planes has at most 7 vertices.
	maxClipVerts = 7
)

// SolidHeightfieldBuilder voxelizes a triangle soup into a SolidHeightfield.
type SolidHeightfieldBuilder struct {
	cellSize             float64
	cellHeight           float64
	minTraversableHeight int
	maxTraversableStep   int
	minNormalY           float64
	clipLedges           bool
	log                  Logger
}

// NewSolidHeightfieldBuilder expects heights and steps in voxel units and the
// slope in degrees. Out of range values are clamped.
func NewSolidHeightfieldBuilder(cellSize, cellHeight float64,
	minTraversableHeight, maxTraversableStep int,
	maxTraversableSlope float64, clipLedges bool, log Logger) *SolidHeightfieldBuilder {
	maxTraversableSlope = common.Clamp(maxTraversableSlope, 0, maxTraversableSlopeLimit)
	return &SolidHeightfieldBuilder{
		cellSize:             cellSize,
		cellHeight:           cellHeight,
		minTraversableHeight: max(1, minTraversableHeight),
		maxTraversableStep:   max(0, maxTraversableStep),
		// A flat surface has normal (0, 1, 0), so n.y is the cosine of the slope.
		minNormalY: math.Cos(math.Abs(maxTraversableSlope) / 180 * math.Pi),
		clipLedges: clipLedges,
		log:        orNop(log),
	}
}

// Build voxelizes the mesh. vertices holds (x, y, z) triples and indices
// holds three vertex indices per triangle. Returns nil on malformed input.
func (b *SolidHeightfieldBuilder) Build(vertices []float64, indices []int) *SolidHeightfield {
	if len(vertices) == 0 || len(indices) == 0 || len(vertices)%3 != 0 || len(indices)%3 != 0 {
		b.log.Errorf("[SolidHeightfieldBuilder][build] invalid mesh, %d vertex floats, %d indices", len(vertices), len(indices))
		return nil
	}
	vertCount := len(vertices) / 3
	for _, idx := range indices {
		if idx < 0 || idx >= vertCount {
			b.log.Errorf("[SolidHeightfieldBuilder][build] index %d out of range [0,%d)", idx, vertCount)
			return nil
		}
	}

	result := NewSolidHeightfield(b.cellSize, b.cellHeight)

	boundsMin := common.ToVec3(vertices, 0)
	boundsMax := boundsMin
	for i := 1; i < vertCount; i++ {
		v := common.ToVec3(vertices, i)
		for k := 0; k < 3; k++ {
			boundsMin[k] = min(boundsMin[k], v[k])
			boundsMax[k] = max(boundsMax[k], v[k])
		}
	}
	if !result.setBounds(boundsMin, boundsMax) {
		b.log.Errorf("[SolidHeightfieldBuilder][build] invalid bounds %v %v", boundsMin, boundsMax)
		return nil
	}

	polyFlags := b.markInputMeshWalkableFlags(vertices, indices)

	r := newTriRasterizer(result)
	for iPoly := 0; iPoly < len(indices)/3; iPoly++ {
		r.voxelizeTriangle(vertices, indices[iPoly*3:iPoly*3+3], polyFlags[iPoly])
	}

	b.markLowHeightSpans(result)
	if b.clipLedges {
		b.markLedgeSpans(result)
	}
	return result
}

// markInputMeshWalkableFlags flags triangles whose normal is steep enough to walk on.
func (b *SolidHeightfieldBuilder) markInputMeshWalkableFlags(vertices []float64, indices []int) []int {
	polyCount := len(indices) / 3
	flags := make([]int, polyCount)
	for iPoly := 0; iPoly < polyCount; iPoly++ {
		va := common.ToVec3(vertices, indices[iPoly*3])
		vb := common.ToVec3(vertices, indices[iPoly*3+1])
		vc := common.ToVec3(vertices, indices[iPoly*3+2])
		if normalY(vb.Sub(va).Cross(vc.Sub(va))) > b.minNormalY {
			flags[iPoly] = SpanFlagWalkable
		}
	}
	return flags
}

func normalY(v common.Vec3) float64 {
	length := v.Len()
	if length <= normalEpsilon {
		length = 1
	}
	y := v[1] / length
	if math.Abs(y) < normalEpsilon {
		y = 0
	}
	return y
}

// triRasterizer owns the clip buffers for one build.
type triRasterizer struct {
	field             *SolidHeightfield
	inverseCellSize   float64
	inverseCellHeight float64
	in                []float64
	inRow             []float64
	out               []float64
	tmp               []float64
}

func newTriRasterizer(field *SolidHeightfield) *triRasterizer {
	buf := make([]float64, maxClipVerts*3*4)
	return &triRasterizer{
		field:             field,
		inverseCellSize:   1 / field.cellSize,
		inverseCellHeight: 1 / field.cellHeight,
		in:                buf[0 : maxClipVerts*3],
		inRow:             buf[maxClipVerts*3 : maxClipVerts*6],
		out:               buf[maxClipVerts*6 : maxClipVerts*9],
		tmp:               buf[maxClipVerts*9:],
	}
}

// /	Rasterize a single triangle to the heightfield. The triangle is clipped
// /	to every grid row it touches (z half planes), then every row piece is
// /	clipped to the columns (x half planes). Each remaining piece yields one
// /	span for its column.
func (r *triRasterizer) voxelizeTriangle(vertices []float64, tri []int, flags int) {
	f := r.field
	v0 := common.ToVec3(vertices, tri[0])
	v1 := common.ToVec3(vertices, tri[1])
	v2 := common.ToVec3(vertices, tri[2])

	triMin := common.Vec3{min(v0[0], v1[0], v2[0]), min(v0[1], v1[1], v2[1]), min(v0[2], v1[2], v2[2])}
	triMax := common.Vec3{max(v0[0], v1[0], v2[0]), max(v0[1], v1[1], v2[1]), max(v0[2], v1[2], v2[2])}
	if !f.Overlaps(triMin, triMax) {
		return
	}

	boundsMin := f.boundsMin
	triWidthMin := common.Clamp(int((triMin[0]-boundsMin[0])*r.inverseCellSize), 0, f.width-1)
	triDepthMin := common.Clamp(int((triMin[2]-boundsMin[2])*r.inverseCellSize), 0, f.depth-1)
	triWidthMax := common.Clamp(int((triMax[0]-boundsMin[0])*r.inverseCellSize), 0, f.width-1)
	triDepthMax := common.Clamp(int((triMax[2]-boundsMin[2])*r.inverseCellSize), 0, f.depth-1)

	copy(r.in[0:3], v0[:])
	copy(r.in[3:6], v1[:])
	copy(r.in[6:9], v2[:])

	fieldHeight := f.boundsMax[1] - boundsMin[1]
	for depthIndex := triDepthMin; depthIndex <= triDepthMax; depthIndex++ {
		rowMin := boundsMin[2] + float64(depthIndex)*f.cellSize
		// z >= rowMin, then z <= rowMin + cellSize
		n := clipPoly(r.in, 3, r.tmp, 0, 1, -rowMin)
		if n < 3 {
			continue
		}
		n = clipPoly(r.tmp, n, r.inRow, 0, -1, rowMin+f.cellSize)
		if n < 3 {
			continue
		}
		for widthIndex := triWidthMin; widthIndex <= triWidthMax; widthIndex++ {
			colMin := boundsMin[0] + float64(widthIndex)*f.cellSize
			nc := clipPoly(r.inRow, n, r.tmp, 1, 0, -colMin)
			if nc < 3 {
				continue
			}
			nc = clipPoly(r.tmp, nc, r.out, -1, 0, colMin+f.cellSize)
			if nc < 3 {
				continue
			}

			spanMin := r.out[1]
			spanMax := r.out[1]
			for i := 1; i < nc; i++ {
				spanMin = min(spanMin, r.out[i*3+1])
				spanMax = max(spanMax, r.out[i*3+1])
			}
			spanMin -= boundsMin[1]
			spanMax -= boundsMin[1]
			if spanMax < 0 || spanMin > fieldHeight {
				continue
			}
			spanMin = max(spanMin, 0)
			spanMax = min(spanMax, fieldHeight)

			heightIndexMin := max(0, int(math.Floor(spanMin*r.inverseCellHeight)))
			heightIndexMax := max(heightIndexMin, int(math.Ceil(spanMax*r.inverseCellHeight)))
			f.AddData(widthIndex, depthIndex, heightIndexMin, heightIndexMax, flags)
		}
	}
}

// clipPoly keeps the part of a convex polygon where pnx*x + pnz*z + pd >= 0
// (Sutherland-Hodgman against one half plane) and returns the vertex count.
func clipPoly(in []float64, n int, out []float64, pnx, pnz, pd float64) int {
	var d [maxClipVerts + 2]float64
	for i := 0; i < n; i++ {
		d[i] = pnx*in[i*3] + pnz*in[i*3+2] + pd
	}

	m := 0
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		ina := d[j] >= 0
		inb := d[i] >= 0
		if ina != inb && m < maxClipVerts {
			s := d[j] / (d[j] - d[i])
			out[m*3+0] = in[j*3+0] + (in[i*3+0]-in[j*3+0])*s
			out[m*3+1] = in[j*3+1] + (in[i*3+1]-in[j*3+1])*s
			out[m*3+2] = in[j*3+2] + (in[i*3+2]-in[j*3+2])*s
			m++
		}
		if inb && m < maxClipVerts {
			copy(out[m*3:m*3+3], in[i*3:i*3+3])
			m++
		}
	}
	return m
}
