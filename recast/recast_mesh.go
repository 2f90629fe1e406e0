package recast

import (
	"github.com/gorustyt/gonmgen/common"
)

const (
	vertexBucketCount = 1 << 12

	// The high bit of a triangulation index flags a removable vertex.
	removableVertFlag = 0x80000000
	vertIndexMask     = 0x0fffffff

	minVertsPerPoly = 3
)

// PolyMeshFieldBuilder converts contours into a mesh of convex polygons.
type PolyMeshFieldBuilder struct {
	maxVertsPerPoly int
	log             Logger
}

// NewPolyMeshFieldBuilder clamps maxVertsPerPoly to at least 3.
func NewPolyMeshFieldBuilder(maxVertsPerPoly int, log Logger) *PolyMeshFieldBuilder {
	return &PolyMeshFieldBuilder{
		maxVertsPerPoly: max(minVertsPerPoly, maxVertsPerPoly),
		log:             orNop(log),
	}
}

func (b *PolyMeshFieldBuilder) Build(contours *ContourSet) *PolyMeshField {
	if contours == nil || contours.Size() == 0 {
		b.log.Errorf("[PolyMeshFieldBuilder][build] contour set is empty")
		return nil
	}
	nvp := b.maxVertsPerPoly
	result := newPolyMeshField(contours.BoundedField, nvp)

	maxVertsPerContour := 0
	totalVerts := 0
	for _, c := range contours.contours {
		maxVertsPerContour = max(maxVertsPerContour, c.VertCount())
		totalVerts += c.VertCount()
	}

	firstVert := make([]int, vertexBucketCount)
	for i := range firstVert {
		firstVert[i] = -1
	}
	nextVert := make([]int, 0, totalVerts)
	result.verts = make([]int, 0, totalVerts*3)

	indices := make([]int, maxVertsPerContour)
	tris := make([]int, maxVertsPerContour*3)
	globalIndices := make([]int, maxVertsPerContour)
	tmpPoly := make([]int, nvp)

	for _, contour := range contours.contours {
		vertCount := contour.VertCount()
		if vertCount < 3 {
			b.log.Errorf("[PolyMeshFieldBuilder][build] contour of region %d has %d verts, skipped", contour.RegionID, vertCount)
			continue
		}

		for j := 0; j < vertCount; j++ {
			indices[j] = j
		}
		ntris := triangulate(vertCount, contour.Verts, indices[:vertCount], tris)
		if ntris <= 0 {
			b.log.Warnf("[PolyMeshFieldBuilder][build] bad triangulation of region %d contour, %d verts", contour.RegionID, vertCount)
			ntris = -ntris
		}

		for j := 0; j < vertCount; j++ {
			v := common.GetVert4(contour.Verts, j)
			globalIndices[j], nextVert = addVertex(v[0], v[1], v[2], result, firstVert, nextVert)
		}

		// One polygon per triangle to start with.
		polys := make([]int, 0, ntris*nvp)
		for j := 0; j < ntris; j++ {
			t := tris[j*3 : j*3+3]
			if t[0] == t[1] || t[0] == t[2] || t[1] == t[2] {
				continue
			}
			if t[0] >= vertCount || t[1] >= vertCount || t[2] >= vertCount {
				b.log.Errorf("[PolyMeshFieldBuilder][build] invalid triangle index in region %d", contour.RegionID)
				continue
			}
			p := make([]int, nvp)
			for k := range p {
				p[k] = NullIndex
			}
			p[0] = globalIndices[t[0]]
			p[1] = globalIndices[t[1]]
			p[2] = globalIndices[t[2]]
			polys = append(polys, p...)
		}
		if len(polys) == 0 {
			continue
		}

		if nvp > 3 {
			polys = mergePolys(polys, result.verts, nvp, tmpPoly)
		}

		for j := 0; j < len(polys)/nvp; j++ {
			result.polys = append(result.polys, polys[j*nvp:(j+1)*nvp]...)
			for k := 0; k < nvp; k++ {
				result.polys = append(result.polys, NullIndex)
			}
			result.polyRegions = append(result.polyRegions, contour.RegionID)
		}
	}

	if result.PolyCount() == 0 {
		b.log.Errorf("[PolyMeshFieldBuilder][build] no polygons generated")
		return nil
	}
	buildMeshAdjacency(result.polys, result.PolyCount(), result.VertCount(), nvp)
	return result
}

// mergePolys repeatedly merges the pair of polygons sharing the longest
// edge, as long as the result stays convex.
func mergePolys(polys, verts []int, nvp int, tmp []int) []int {
	for {
		bestMergeVal := 0
		bestPa, bestPb, bestEa, bestEb := 0, 0, 0, 0
		npolys := len(polys) / nvp
		for j := 0; j < npolys-1; j++ {
			pj := polys[j*nvp : (j+1)*nvp]
			for k := j + 1; k < npolys; k++ {
				pk := polys[k*nvp : (k+1)*nvp]
				v, ea, eb := getPolyMergeValue(pj, pk, verts, nvp)
				if v > bestMergeVal {
					bestMergeVal = v
					bestPa, bestPb, bestEa, bestEb = j, k, ea, eb
				}
			}
		}
		if bestMergeVal <= 0 {
			return polys
		}

		pa := polys[bestPa*nvp : (bestPa+1)*nvp]
		pb := polys[bestPb*nvp : (bestPb+1)*nvp]
		mergePolyVerts(pa, pb, bestEa, bestEb, tmp, nvp)
		last := polys[(npolys-1)*nvp : npolys*nvp]
		if bestPb != npolys-1 {
			copy(pb, last)
		}
		polys = polys[:(npolys-1)*nvp]
	}
}

func computeVertexHash(x, y, z int) int {
	h1 := 0x8da6b343 // Large multiplicative constants;
	h2 := 0xd8163841 // here arbitrarily chosen primes
	h3 := 0xcb1ab31f
	n := h1*x + h2*y + h3*z
	return n & (vertexBucketCount - 1)
}

// addVertex returns the index of an existing vertex at the same column with
// a height within 2 voxels, or appends a new one.
func addVertex(x, y, z int, mesh *PolyMeshField, firstVert, nextVert []int) (int, []int) {
	bucket := computeVertexHash(x, 0, z)
	for i := firstVert[bucket]; i != -1; i = nextVert[i] {
		v := common.GetVert3(mesh.verts, i)
		if v[0] == x && common.Abs(v[1]-y) <= 2 && v[2] == z {
			return i, nextVert
		}
	}

	// Could not find, create new.
	i := len(mesh.verts) / 3
	mesh.verts = append(mesh.verts, x, y, z)
	nextVert = append(nextVert, firstVert[bucket])
	firstVert[bucket] = i
	return i, nextVert
}

type meshEdge struct {
	vert     [2]int
	polyEdge [2]int
	poly     [2]int
}

func buildMeshAdjacency(polys []int, npolys, nverts, vertsPerPoly int) {
	// Based on code by Eric Lengyel from:
	// https://web.archive.org/web/20080704083314/http://www.terathon.com/code/edges.php
	maxEdgeCount := npolys * vertsPerPoly
	firstEdge := make([]int, nverts)
	nextEdge := make([]int, maxEdgeCount)
	edges := make([]meshEdge, 0, maxEdgeCount)
	for i := range firstEdge {
		firstEdge[i] = NullIndex
	}

	polyEdgeVerts := func(t []int, j int) (int, int) {
		v0 := t[j]
		if j+1 >= vertsPerPoly || t[j+1] == NullIndex {
			return v0, t[0]
		}
		return v0, t[j+1]
	}

	for i := 0; i < npolys; i++ {
		t := polys[i*vertsPerPoly*2:]
		for j := 0; j < vertsPerPoly; j++ {
			if t[j] == NullIndex {
				break
			}
			v0, v1 := polyEdgeVerts(t, j)
			if v0 < v1 {
				edges = append(edges, meshEdge{
					vert:     [2]int{v0, v1},
					poly:     [2]int{i, i},
					polyEdge: [2]int{j, 0},
				})
				// Insert edge
				nextEdge[len(edges)-1] = firstEdge[v0]
				firstEdge[v0] = len(edges) - 1
			}
		}
	}

	for i := 0; i < npolys; i++ {
		t := polys[i*vertsPerPoly*2:]
		for j := 0; j < vertsPerPoly; j++ {
			if t[j] == NullIndex {
				break
			}
			v0, v1 := polyEdgeVerts(t, j)
			if v0 > v1 {
				for e := firstEdge[v1]; e != NullIndex; e = nextEdge[e] {
					edge := &edges[e]
					if edge.vert[1] == v0 && edge.poly[0] == edge.poly[1] {
						edge.poly[1] = i
						edge.polyEdge[1] = j
						break
					}
				}
			}
		}
	}

	// Store adjacency
	for _, e := range edges {
		if e.poly[0] != e.poly[1] {
			p0 := polys[e.poly[0]*vertsPerPoly*2:]
			p1 := polys[e.poly[1]*vertsPerPoly*2:]
			p0[vertsPerPoly+e.polyEdge[0]] = e.poly[1]
			p1[vertsPerPoly+e.polyEdge[1]] = e.poly[0]
		}
	}
}

// getPolyMergeValue returns the squared length of the edge shared by pa and
// pb together with the edge indices, or -1 if merging would exceed the
// vertex limit or produce a non convex polygon.
func getPolyMergeValue(pa, pb []int, verts []int, nvp int) (value, ea, eb int) {
	na := countPolyVerts(pa, nvp)
	nb := countPolyVerts(pb, nvp)

	// If the merged polygon would be too big, do not merge.
	if na+nb-2 > nvp {
		return -1, -1, -1
	}

	// Check if the polygons share an edge.
	ea, eb = -1, -1
	for i := 0; i < na && ea == -1; i++ {
		va0 := pa[i]
		va1 := pa[(i+1)%na]
		if va0 > va1 {
			va0, va1 = va1, va0
		}
		for j := 0; j < nb; j++ {
			vb0 := pb[j]
			vb1 := pb[(j+1)%nb]
			if vb0 > vb1 {
				vb0, vb1 = vb1, vb0
			}
			if va0 == vb0 && va1 == vb1 {
				ea = i
				eb = j
				break
			}
		}
	}

	// No common edge, cannot merge.
	if ea == -1 || eb == -1 {
		return -1, -1, -1
	}

	// Check to see if the merged polygon would be convex.
	va := pa[(ea+na-1)%na]
	vb := pa[ea]
	vc := pb[(eb+2)%nb]
	if !common.Left(common.GetVert3(verts, va), common.GetVert3(verts, vb), common.GetVert3(verts, vc)) {
		return -1, -1, -1
	}

	va = pb[(eb+nb-1)%nb]
	vb = pb[eb]
	vc = pa[(ea+2)%na]
	if !common.Left(common.GetVert3(verts, va), common.GetVert3(verts, vb), common.GetVert3(verts, vc)) {
		return -1, -1, -1
	}

	va = pa[ea]
	vb = pa[(ea+1)%na]
	dx := verts[va*3+0] - verts[vb*3+0]
	dz := verts[va*3+2] - verts[vb*3+2]
	return dx*dx + dz*dz, ea, eb
}

// mergePolyVerts writes the union of pa and pb, joined at the shared edge,
// into pa.
func mergePolyVerts(pa, pb []int, ea, eb int, tmp []int, nvp int) {
	na := countPolyVerts(pa, nvp)
	nb := countPolyVerts(pb, nvp)

	for i := range tmp {
		tmp[i] = NullIndex
	}
	n := 0
	// Add pa
	for i := 0; i < na-1; i++ {
		tmp[n] = pa[(ea+1+i)%na]
		n++
	}
	// Add pb
	for i := 0; i < nb-1; i++ {
		tmp[n] = pb[(eb+1+i)%nb]
		n++
	}
	copy(pa, tmp[:nvp])
}

// triangulate ear clips the contour polygon, always cutting the ear with the
// shortest diagonal. Returns the triangle count, negated if the polygon
// could not be fully triangulated.
func triangulate(n int, verts, indices []int, tris []int) int {
	ntris := 0
	dst := 0

	// The last bit of the index is used to indicate if the vertex can be removed.
	for i := 0; i < n; i++ {
		i1 := common.Next(i, n)
		i2 := common.Next(i1, n)
		if diagonal(i, i2, n, verts, indices) {
			indices[i1] |= removableVertFlag
		}
	}

	for n > 3 {
		minLen := -1
		mini := -1
		for i := 0; i < n; i++ {
			i1 := common.Next(i, n)
			if indices[i1]&removableVertFlag != 0 {
				p0 := common.GetVert4(verts, indices[i]&vertIndexMask)
				p2 := common.GetVert4(verts, indices[common.Next(i1, n)]&vertIndexMask)
				dx := p2[0] - p0[0]
				dz := p2[2] - p0[2]
				length := dx*dx + dz*dz
				if minLen < 0 || length < minLen {
					minLen = length
					mini = i
				}
			}
		}

		if mini == -1 {
			// The contour is messed up. This sometimes happens
			// if the contour simplification is too aggressive.
			return -ntris
		}

		i := mini
		i1 := common.Next(i, n)
		i2 := common.Next(i1, n)

		tris[dst] = indices[i] & vertIndexMask
		tris[dst+1] = indices[i1] & vertIndexMask
		tris[dst+2] = indices[i2] & vertIndexMask
		dst += 3
		ntris++

		// Removes P[i1] by copying P[i+1]...P[n-1] left one index.
		n--
		for k := i1; k < n; k++ {
			indices[k] = indices[k+1]
		}
		if i1 >= n {
			i1 = 0
		}
		i = common.Prev(i1, n)

		// Update diagonal flags.
		if diagonal(common.Prev(i, n), i1, n, verts, indices) {
			indices[i] |= removableVertFlag
		} else {
			indices[i] &= vertIndexMask
		}
		if diagonal(i, common.Next(i1, n), n, verts, indices) {
			indices[i1] |= removableVertFlag
		} else {
			indices[i1] &= vertIndexMask
		}
	}

	// Append the remaining triangle.
	tris[dst] = indices[0] & vertIndexMask
	tris[dst+1] = indices[1] & vertIndexMask
	tris[dst+2] = indices[2] & vertIndexMask
	ntris++
	return ntris
}

// Returns T iff (v_i, v_j) is a proper internal *or* external
// diagonal of P, *ignoring edges incident to v_i and v_j*.
func diagonalie(i, j, n int, verts []int, indices []int) bool {
	d0 := common.GetVert4(verts, indices[i]&vertIndexMask)
	d1 := common.GetVert4(verts, indices[j]&vertIndexMask)

	// For each edge (k,k+1) of P
	for k := 0; k < n; k++ {
		k1 := common.Next(k, n)
		// Skip edges incident to i or j
		if k == i || k1 == i || k == j || k1 == j {
			continue
		}
		p0 := common.GetVert4(verts, indices[k]&vertIndexMask)
		p1 := common.GetVert4(verts, indices[k1]&vertIndexMask)
		if common.VequalXZ(d0, p0) || common.VequalXZ(d1, p0) || common.VequalXZ(d0, p1) || common.VequalXZ(d1, p1) {
			continue
		}
		if common.Intersect(d0, d1, p0, p1) {
			return false
		}
	}
	return true
}

// Returns true iff the diagonal (i,j) is strictly internal to the
// polygon P in the neighborhood of the i endpoint.
func inCone(i, j, n int, verts []int, indices []int) bool {
	pi := common.GetVert4(verts, indices[i]&vertIndexMask)
	pj := common.GetVert4(verts, indices[j]&vertIndexMask)
	pi1 := common.GetVert4(verts, indices[common.Next(i, n)]&vertIndexMask)
	pin1 := common.GetVert4(verts, indices[common.Prev(i, n)]&vertIndexMask)

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if common.LeftOn(pin1, pi, pi1) {
		return common.Left(pi, pj, pin1) && common.Left(pj, pi, pi1)
	}
	// Assume (i-1,i,i+1) not collinear.
	// else P[i] is reflex.
	return !(common.LeftOn(pi, pj, pi1) && common.LeftOn(pj, pi, pin1))
}

// Returns T iff (v_i, v_j) is a proper internal
// diagonal of P.
func diagonal(i, j, n int, verts []int, indices []int) bool {
	return inCone(i, j, n, verts, indices) && diagonalie(i, j, n, verts, indices)
}
