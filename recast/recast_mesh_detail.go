package recast

import (
	"math"

	"github.com/gorustyt/gonmgen/common"
)

const (
	unsetHeight = math.MaxInt

	maxDetailVerts     = 256
	maxDetailEdgeVerts = 64

	edgeUndefined = -1
	edgeHull      = -2
)

// DetailMeshBuilder adds height detail to a poly mesh and triangulates it.
type DetailMeshBuilder struct {
	contourSampleDistance float64
	contourMaxDeviation   float64
	log                   Logger
}

// NewDetailMeshBuilder takes the sample distance and maximum deviation in
// world units. A sample distance of zero disables height sampling.
func NewDetailMeshBuilder(contourSampleDistance, contourMaxDeviation float64, log Logger) *DetailMeshBuilder {
	return &DetailMeshBuilder{
		contourSampleDistance: max(0, contourSampleDistance),
		contourMaxDeviation:   max(0, contourMaxDeviation),
		log:                   orNop(log),
	}
}

// heightPatch is a window of the open heightfield holding one floor height
// per grid cell, indexed (w-minWidth)*depth + (d-minDepth).
type heightPatch struct {
	minWidthIndex int
	minDepthIndex int
	width         int
	depth         int
	data          []int
}

func (hp *heightPatch) index(widthIndex, depthIndex int) int {
	return (widthIndex-hp.minWidthIndex)*hp.depth + depthIndex - hp.minDepthIndex
}

func (hp *heightPatch) contains(widthIndex, depthIndex int) bool {
	return widthIndex >= hp.minWidthIndex && widthIndex < hp.minWidthIndex+hp.width &&
		depthIndex >= hp.minDepthIndex && depthIndex < hp.minDepthIndex+hp.depth
}

type detailEdge struct {
	s, t int
	l, r int
}

// Build returns nil if either input is nil or the poly mesh is empty.
func (b *DetailMeshBuilder) Build(sourceMesh *PolyMeshField, field *OpenHeightfield) *TriangleMesh {
	if sourceMesh == nil || sourceMesh.PolyCount() == 0 || sourceMesh.VertCount() == 0 {
		b.log.Errorf("[DetailMeshBuilder][build] poly mesh is empty")
		return nil
	}
	if field == nil {
		b.log.Errorf("[DetailMeshBuilder][build] field is nil")
		return nil
	}

	cs := sourceMesh.CellSize()
	ch := sourceMesh.CellHeight()
	origin := sourceMesh.BoundsMin()
	sampleDist := b.contourSampleDistance
	maxDeviation := b.contourMaxDeviation

	// Grid bounds of each polygon, padded by one cell.
	polyCount := sourceMesh.PolyCount()
	bounds := make([]int, polyCount*4)
	maxPatchWidth, maxPatchDepth := 0, 0
	for i := 0; i < polyCount; i++ {
		minW, maxW := field.Width(), 0
		minD, maxD := field.Depth(), 0
		for _, vi := range sourceMesh.PolyIndices(i) {
			x := sourceMesh.verts[vi*3]
			z := sourceMesh.verts[vi*3+2]
			minW, maxW = min(minW, x), max(maxW, x)
			minD, maxD = min(minD, z), max(maxD, z)
		}
		minW, maxW = max(0, minW-1), min(field.Width(), maxW+1)
		minD, maxD = max(0, minD-1), min(field.Depth(), maxD+1)
		if minW >= maxW || minD >= maxD {
			continue
		}
		bounds[i*4+0], bounds[i*4+1], bounds[i*4+2], bounds[i*4+3] = minW, maxW, minD, maxD
		maxPatchWidth = max(maxPatchWidth, maxW-minW)
		maxPatchDepth = max(maxPatchDepth, maxD-minD)
	}

	hp := &heightPatch{data: make([]int, maxPatchWidth*maxPatchDepth)}
	result := &TriangleMesh{}
	polyVerts := make([]common.Vec3, 0, sourceMesh.MaxVertsPerPoly())
	var verts []common.Vec3
	var tris []int
	var edges []detailEdge
	var samples []int

	for i := 0; i < polyCount; i++ {
		indices := sourceMesh.PolyIndices(i)
		if len(indices) < 3 {
			continue
		}
		polyVerts = polyVerts[:0]
		for _, vi := range indices {
			v := sourceMesh.verts[vi*3 : vi*3+3]
			polyVerts = append(polyVerts, common.Vec3{float64(v[0]) * cs, float64(v[1]) * ch, float64(v[2]) * cs})
		}

		hp.minWidthIndex = bounds[i*4+0]
		hp.width = bounds[i*4+1] - bounds[i*4+0]
		hp.minDepthIndex = bounds[i*4+2]
		hp.depth = bounds[i*4+3] - bounds[i*4+2]
		if hp.width == 0 || hp.depth == 0 {
			b.log.Warnf("[DetailMeshBuilder][build] polygon %d has an empty footprint, skipped", i)
			continue
		}
		loadHeightPatch(field, sourceMesh, indices, hp)

		verts, tris, edges, samples = b.buildPolyDetail(polyVerts, sampleDist, maxDeviation,
			cs, ch, hp, verts[:0], tris[:0], edges[:0], samples[:0])

		if !validTriangles(tris, len(verts)) {
			b.log.Errorf("[DetailMeshBuilder][build] invalid triangulation of polygon %d, discarded", i)
			continue
		}

		base := result.VertCount()
		for _, v := range verts {
			result.Vertices = append(result.Vertices, v[0]+origin[0], v[1]+origin[1], v[2]+origin[2])
		}
		region := sourceMesh.PolyRegion(i)
		for t := 0; t < len(tris)/3; t++ {
			result.Indices = append(result.Indices, base+tris[t*3], base+tris[t*3+1], base+tris[t*3+2])
			result.TriangleRegions = append(result.TriangleRegions, region)
		}
	}

	if result.TriangleCount() == 0 {
		b.log.Errorf("[DetailMeshBuilder][build] no triangles generated")
		return nil
	}
	return result
}

func validTriangles(tris []int, vertCount int) bool {
	if len(tris) == 0 || len(tris)%3 != 0 {
		return false
	}
	for _, vi := range tris {
		if vi < 0 || vi >= vertCount {
			return false
		}
	}
	return true
}

var patchSeedOffsets = [9][2]int{{0, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}}

// loadHeightPatch seeds the patch from the spans closest in height to each
// polygon vertex and floods outward over the span neighbor links.
func loadHeightPatch(field *OpenHeightfield, mesh *PolyMeshField, indices []int, hp *heightPatch) {
	data := hp.data[:hp.width*hp.depth]
	for i := range data {
		data[i] = unsetHeight
	}

	queue := make([]int, 0, hp.width*hp.depth)
	for _, vi := range indices {
		vx, vy, vz := mesh.verts[vi*3], mesh.verts[vi*3+1], mesh.verts[vi*3+2]
		best := NullSpan
		minDiff := math.MaxInt
		for _, offset := range patchSeedOffsets {
			w, d := vx+offset[0], vz+offset[1]
			if !hp.contains(w, d) {
				continue
			}
			for h := field.FirstSpan(w, d); h != NullSpan; h = field.Next(h) {
				if diff := common.Abs(field.spans[h].Floor - vy); diff < minDiff {
					best = h
					minDiff = diff
				}
			}
		}
		if best == NullSpan {
			continue
		}
		w, d := field.Location(best)
		if data[hp.index(w, d)] == unsetHeight {
			data[hp.index(w, d)] = field.spans[best].Floor
			queue = append(queue, best)
		}
	}

	// Breadth first so the closest spans win.
	for head := 0; head < len(queue); head++ {
		h := queue[head]
		for dir := 0; dir < 4; dir++ {
			n := field.Neighbor(h, dir)
			if n == NullSpan {
				continue
			}
			w, d := field.Location(n)
			if !hp.contains(w, d) || data[hp.index(w, d)] != unsetHeight {
				continue
			}
			data[hp.index(w, d)] = field.spans[n].Floor
			queue = append(queue, n)
		}
	}
}

// patchHeight returns the voxel height at a local world position. Cells the
// flood did not reach take the closest height of the nearest ring holding
// data.
func patchHeight(fx, fy, fz, cs, ch float64, hp *heightPatch) int {
	ix := int(math.Floor(fx/cs + 0.01))
	iz := int(math.Floor(fz/cs + 0.01))
	ix = common.Clamp(ix-hp.minWidthIndex, 0, hp.width-1)
	iz = common.Clamp(iz-hp.minDepthIndex, 0, hp.depth-1)
	h := hp.data[ix*hp.depth+iz]
	if h != unsetHeight {
		return h
	}

	maxRadius := max(hp.width, hp.depth)
	for radius := 1; radius <= maxRadius; radius++ {
		minDiff := math.MaxFloat64
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				if common.Abs(dx) != radius && common.Abs(dz) != radius {
					continue
				}
				nx, nz := ix+dx, iz+dz
				if nx < 0 || nz < 0 || nx >= hp.width || nz >= hp.depth {
					continue
				}
				nh := hp.data[nx*hp.depth+nz]
				if nh == unsetHeight {
					continue
				}
				if diff := math.Abs(float64(nh)*ch - fy); diff < minDiff {
					h = nh
					minDiff = diff
				}
			}
		}
		if h != unsetHeight {
			return h
		}
	}
	return int(math.Floor(fy / ch))
}

// buildPolyDetail samples the polygon edges and interior against the height
// patch and returns a Delaunay triangulation of the result. Positions are
// local to the field origin.
func (b *DetailMeshBuilder) buildPolyDetail(in []common.Vec3, sampleDist, maxDeviation, cs, ch float64,
	hp *heightPatch, verts []common.Vec3, tris []int, edges []detailEdge, samples []int) ([]common.Vec3, []int, []detailEdge, []int) {
	nin := len(in)
	verts = append(verts, in...)
	hull := make([]int, 0, maxDetailVerts)
	var edgeSamples [maxDetailEdgeVerts + 1]common.Vec3
	idx := make([]int, 0, maxDetailEdgeVerts)

	if sampleDist > 0 {
		for i, j := 0, nin-1; i < nin; j, i = i, i+1 {
			vj, vi := in[j], in[i]
			// Sample shared edges in the same direction from both sides.
			swapped := false
			if math.Abs(vj[0]-vi[0]) < 1e-6 {
				if vj[2] > vi[2] {
					vj, vi = vi, vj
					swapped = true
				}
			} else if vj[0] > vi[0] {
				vj, vi = vi, vj
				swapped = true
			}

			delta := vi.Sub(vj)
			d := math.Sqrt(delta[0]*delta[0] + delta[2]*delta[2])
			nn := 1 + int(math.Floor(d/sampleDist))
			if nn >= maxDetailEdgeVerts {
				nn = maxDetailEdgeVerts - 1
			}
			if len(verts)+nn >= maxDetailVerts {
				nn = max(1, maxDetailVerts-1-len(verts))
			}
			for k := 0; k <= nn; k++ {
				u := float64(k) / float64(nn)
				pos := vj.Add(delta.Mul(u))
				pos[1] = float64(patchHeight(pos[0], pos[1], pos[2], cs, ch, hp)) * ch
				edgeSamples[k] = pos
			}

			idx = append(idx[:0], 0, nn)
			for k := 0; k < len(idx)-1; {
				a, c := idx[k], idx[k+1]
				maxd := 0.0
				maxi := -1
				for m := a + 1; m < c; m++ {
					if dev := pointSegmentDistanceSq3D(edgeSamples[m], edgeSamples[a], edgeSamples[c]); dev > maxd {
						maxd = dev
						maxi = m
					}
				}
				if maxi != -1 && maxd > maxDeviation*maxDeviation {
					idx = append(idx, 0)
					copy(idx[k+2:], idx[k+1:])
					idx[k+1] = maxi
				} else {
					k++
				}
			}

			hull = append(hull, j)
			if swapped {
				for k := len(idx) - 2; k > 0; k-- {
					verts = append(verts, edgeSamples[idx[k]])
					hull = append(hull, len(verts)-1)
				}
			} else {
				for k := 1; k < len(idx)-1; k++ {
					verts = append(verts, edgeSamples[idx[k]])
					hull = append(hull, len(verts)-1)
				}
			}
		}
	} else {
		for i := 0; i < nin; i++ {
			hull = append(hull, i)
		}
	}

	tris, edges = b.delaunayHull(verts, hull, tris[:0], edges[:0])
	if len(tris) == 0 {
		b.log.Warnf("[DetailMeshBuilder][buildPolyDetail] could not triangulate polygon, adding default data")
		for i := 2; i < len(verts); i++ {
			tris = append(tris, 0, i-1, i)
		}
		return verts, tris, edges, samples
	}

	if sampleDist <= 0 {
		return verts, tris, edges, samples
	}

	bmin, bmax := in[0], in[0]
	for _, v := range in[1:] {
		for k := 0; k < 3; k++ {
			bmin[k] = min(bmin[k], v[k])
			bmax[k] = max(bmax[k], v[k])
		}
	}
	x0 := int(math.Floor(bmin[0] / sampleDist))
	x1 := int(math.Ceil(bmax[0] / sampleDist))
	z0 := int(math.Floor(bmin[2] / sampleDist))
	z1 := int(math.Ceil(bmax[2] / sampleDist))
	for z := z0; z < z1; z++ {
		for x := x0; x < x1; x++ {
			pt := common.Vec3{float64(x) * sampleDist, (bmax[1] + bmin[1]) * 0.5, float64(z) * sampleDist}
			// Keep samples away from the edges.
			if distToPoly(in, pt) > -sampleDist/2 {
				continue
			}
			samples = append(samples, x, patchHeight(pt[0], pt[1], pt[2], cs, ch, hp), z)
		}
	}

	// Add the sample with the largest error until the error is within
	// tolerance.
	sampleCount := len(samples) / 3
	for iter := 0; iter < sampleCount && len(verts) < maxDetailVerts; iter++ {
		var bestPoint common.Vec3
		bestDist := 0.0
		for i := 0; i < sampleCount; i++ {
			pt := common.Vec3{
				float64(samples[i*3]) * sampleDist,
				float64(samples[i*3+1]) * ch,
				float64(samples[i*3+2]) * sampleDist,
			}
			d := distToTriMesh(pt, verts, tris)
			if d < 0 {
				continue
			}
			if d > bestDist {
				bestDist = d
				bestPoint = pt
			}
		}
		if bestDist <= maxDeviation {
			break
		}
		verts = append(verts, bestPoint)
		tris, edges = b.delaunayHull(verts, hull, tris[:0], edges[:0])
	}
	return verts, tris, edges, samples
}

// delaunayHull triangulates the points inside the hull. tris receives three
// vertex indices per triangle.
func (b *DetailMeshBuilder) delaunayHull(pts []common.Vec3, hull []int, tris []int, edges []detailEdge) ([]int, []detailEdge) {
	maxEdges := len(pts) * 10
	faceCount := 0
	for i, j := 0, len(hull)-1; i < len(hull); j, i = i, i+1 {
		edges = addEdge(edges, maxEdges, hull[j], hull[i], edgeHull, edgeUndefined)
	}
	for current := 0; current < len(edges); current++ {
		if edges[current].l == edgeUndefined {
			edges = completeFacet(pts, edges, maxEdges, &faceCount, current)
		}
		if edges[current].r == edgeUndefined {
			edges = completeFacet(pts, edges, maxEdges, &faceCount, current)
		}
	}

	faces := make([][3]int, faceCount)
	for i := range faces {
		faces[i] = [3]int{-1, -1, -1}
	}
	for _, e := range edges {
		if e.r >= 0 {
			t := &faces[e.r]
			if t[0] == -1 {
				t[0], t[1] = e.s, e.t
			} else if t[0] == e.t {
				t[2] = e.s
			} else if t[1] == e.s {
				t[2] = e.t
			}
		}
		if e.l >= 0 {
			t := &faces[e.l]
			if t[0] == -1 {
				t[0], t[1] = e.t, e.s
			} else if t[0] == e.s {
				t[2] = e.t
			} else if t[1] == e.t {
				t[2] = e.s
			}
		}
	}
	for i, t := range faces {
		if t[0] == -1 || t[1] == -1 || t[2] == -1 {
			b.log.Warnf("[DetailMeshBuilder][delaunayHull] removing dangling face %d [%d,%d,%d]", i, t[0], t[1], t[2])
			continue
		}
		tris = append(tris, t[0], t[1], t[2])
	}
	return tris, edges
}

func findEdge(edges []detailEdge, s, t int) int {
	for i, e := range edges {
		if (e.s == s && e.t == t) || (e.s == t && e.t == s) {
			return i
		}
	}
	return edgeUndefined
}

func addEdge(edges []detailEdge, maxEdges, s, t, l, r int) []detailEdge {
	if len(edges) >= maxEdges {
		return edges
	}
	if findEdge(edges, s, t) != edgeUndefined {
		return edges
	}
	return append(edges, detailEdge{s: s, t: t, l: l, r: r})
}

func updateLeftFace(e *detailEdge, s, t, f int) {
	if e.s == s && e.t == t && e.l == edgeUndefined {
		e.l = f
	} else if e.t == s && e.s == t && e.r == edgeUndefined {
		e.r = f
	}
}

// completeFacet closes the open side of an edge with the point whose
// circumcircle contains no other point, or marks it as hull.
func completeFacet(pts []common.Vec3, edges []detailEdge, maxEdges int, faceCount *int, e int) []detailEdge {
	const eps = 1e-5
	const tol = 0.001

	var s, t int
	switch edge := edges[e]; {
	case edge.l == edgeUndefined:
		s, t = edge.s, edge.t
	case edge.r == edgeUndefined:
		s, t = edge.t, edge.s
	default:
		return edges
	}

	pt := len(pts)
	var center common.Vec2
	radius := -1.0
	for u := range pts {
		if u == s || u == t {
			continue
		}
		if vcross2(pts[s], pts[t], pts[u]) <= eps {
			continue
		}
		if radius < 0 {
			pt = u
			center, radius, _ = circumCircle(pts[s], pts[t], pts[u])
			continue
		}
		d := vdist2(center, pts[u])
		switch {
		case d > radius*(1+tol):
			continue
		case d < radius*(1-tol):
		default:
			// On the circle. The new edges must not overlap existing ones.
			if overlapEdges(pts, edges, s, u) || overlapEdges(pts, edges, t, u) {
				continue
			}
		}
		pt = u
		center, radius, _ = circumCircle(pts[s], pts[t], pts[u])
	}

	if pt == len(pts) {
		updateLeftFace(&edges[e], s, t, edgeHull)
		return edges
	}

	updateLeftFace(&edges[e], s, t, *faceCount)
	if i := findEdge(edges, pt, s); i == edgeUndefined {
		edges = addEdge(edges, maxEdges, pt, s, *faceCount, edgeUndefined)
	} else {
		updateLeftFace(&edges[i], pt, s, *faceCount)
	}
	if i := findEdge(edges, t, pt); i == edgeUndefined {
		edges = addEdge(edges, maxEdges, t, pt, *faceCount, edgeUndefined)
	} else {
		updateLeftFace(&edges[i], t, pt, *faceCount)
	}
	*faceCount++
	return edges
}

func overlapEdges(pts []common.Vec3, edges []detailEdge, s1, t1 int) bool {
	for _, e := range edges {
		// Same or connected edges do not overlap.
		if e.s == s1 || e.s == t1 || e.t == s1 || e.t == t1 {
			continue
		}
		if overlapSegSeg2d(pts[e.s], pts[e.t], pts[s1], pts[t1]) {
			return true
		}
	}
	return false
}

func overlapSegSeg2d(a, b, c, d common.Vec3) bool {
	a1 := vcross2(a, b, d)
	a2 := vcross2(a, b, c)
	if a1*a2 < 0 {
		a3 := vcross2(c, d, a)
		a4 := a3 + a2 - a1
		if a3*a4 < 0 {
			return true
		}
	}
	return false
}

// vcross2 is the xz cross product of p1->p2 and p1->p3.
func vcross2(p1, p2, p3 common.Vec3) float64 {
	u1 := p2[0] - p1[0]
	v1 := p2[2] - p1[2]
	u2 := p3[0] - p1[0]
	v2 := p3[2] - p1[2]
	return u1*v2 - v1*u2
}

func vdist2(c common.Vec2, p common.Vec3) float64 {
	return math.Hypot(p[0]-c[0], p[2]-c[1])
}

// circumCircle returns the xz center and radius of the circle through the
// three points. Collinear points give a zero radius and false.
func circumCircle(p1, p2, p3 common.Vec3) (common.Vec2, float64, bool) {
	const eps = 1e-6
	// Relative to p1 for precision.
	v2 := common.Vec2{p2[0] - p1[0], p2[2] - p1[2]}
	v3 := common.Vec2{p3[0] - p1[0], p3[2] - p1[2]}
	cp := v2[0]*v3[1] - v2[1]*v3[0]
	if math.Abs(cp) <= eps {
		return common.Vec2{p1[0], p1[2]}, 0, false
	}
	v2Sq := v2.Dot(v2)
	v3Sq := v3.Dot(v3)
	cx := (v2Sq*v3[1] - v3Sq*v2[1]) / (2 * cp)
	cz := (v3Sq*v2[0] - v2Sq*v3[0]) / (2 * cp)
	return common.Vec2{cx + p1[0], cz + p1[2]}, math.Hypot(cx, cz), true
}

// distPtTri returns the vertical distance from p to the triangle abc, or
// MaxFloat64 when p is outside the triangle in xz.
func distPtTri(p, a, b, c common.Vec3) float64 {
	const eps = 1e-4
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := p.Sub(a)

	dot00 := v0[0]*v0[0] + v0[2]*v0[2]
	dot01 := v0[0]*v1[0] + v0[2]*v1[2]
	dot02 := v0[0]*v2[0] + v0[2]*v2[2]
	dot11 := v1[0]*v1[0] + v1[2]*v1[2]
	dot12 := v1[0]*v2[0] + v1[2]*v2[2]

	denom := dot00*dot11 - dot01*dot01
	if denom == 0 {
		return math.MaxFloat64
	}
	u := (dot11*dot02 - dot01*dot12) / denom
	v := (dot00*dot12 - dot01*dot02) / denom
	if u >= -eps && v >= -eps && u+v <= 1+eps {
		y := a[1] + v0[1]*u + v1[1]*v
		return math.Abs(y - p[1])
	}
	return math.MaxFloat64
}

// distToTriMesh returns the vertical distance from p to the triangles, or -1
// when p is outside all of them.
func distToTriMesh(p common.Vec3, verts []common.Vec3, tris []int) float64 {
	dmin := math.MaxFloat64
	for i := 0; i+2 < len(tris); i += 3 {
		d := distPtTri(p, verts[tris[i]], verts[tris[i+1]], verts[tris[i+2]])
		dmin = min(dmin, d)
	}
	if dmin == math.MaxFloat64 {
		return -1
	}
	return dmin
}

func distancePtSeg2d(p, a, b common.Vec3) float64 {
	pqx := b[0] - a[0]
	pqz := b[2] - a[2]
	dx := p[0] - a[0]
	dz := p[2] - a[2]
	d := pqx*pqx + pqz*pqz
	t := pqx*dx + pqz*dz
	if d > 0 {
		t /= d
	}
	t = common.Clamp(t, 0, 1)
	dx = a[0] + t*pqx - p[0]
	dz = a[2] + t*pqz - p[2]
	return dx*dx + dz*dz
}

// distToPoly returns the xz distance from p to the polygon edges, negative
// when p is inside.
func distToPoly(poly []common.Vec3, p common.Vec3) float64 {
	dmin := math.MaxFloat64
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		vi, vj := poly[i], poly[j]
		if (vi[2] > p[2]) != (vj[2] > p[2]) &&
			p[0] < (vj[0]-vi[0])*(p[2]-vi[2])/(vj[2]-vi[2])+vi[0] {
			inside = !inside
		}
		dmin = min(dmin, distancePtSeg2d(p, vj, vi))
	}
	dmin = math.Sqrt(dmin)
	if inside {
		return -dmin
	}
	return dmin
}
