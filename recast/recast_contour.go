package recast

import (
	"github.com/gorustyt/gonmgen/common"
)

const (
	// Bit mask of the four edge directions of a span.
	allEdgesMask = 0xf
)

// ContourSetBuilder traces the borders of the regions of an open heightfield.
type ContourSetBuilder struct {
	algorithms []ContourAlgorithm
	log        Logger
}

func NewContourSetBuilder(algorithms []ContourAlgorithm, log Logger) *ContourSetBuilder {
	return &ContourSetBuilder{algorithms: algorithms, log: orNop(log)}
}

// Build returns nil if the field has no regions or if the contours could
// not be matched up with the regions.
func (b *ContourSetBuilder) Build(field *OpenHeightfield) *ContourSet {
	if field == nil {
		b.log.Errorf("[ContourSetBuilder][build] field is nil")
		return nil
	}
	if field.RegionCount() < 2 {
		b.log.Errorf("[ContourSetBuilder][build] field has no regions")
		return nil
	}

	result := newContourSet(field, field.RegionCount())
	discardedContours := 0

	// Mark the edges of every span that border another region.
	edgeFlags := make([]uint8, field.SpanCount())
	for h := range field.spans {
		span := &field.spans[h]
		if span.RegionID == NullRegion {
			continue
		}
		var flags uint8
		for dir := 0; dir < 4; dir++ {
			if field.Region(field.Neighbor(h, dir)) != span.RegionID {
				flags |= 1 << dir
			}
		}
		if flags == allEdgesMask {
			// A single span surrounded by other regions.
			w, d := field.Location(h)
			b.log.Warnf("[ContourSetBuilder][build] discarded island span at (%d,%d), region %d", w, d, span.RegionID)
			discardedContours++
			flags = 0
		}
		edgeFlags[h] = flags
	}

	rawVerts := make([]int, 0, 256)
	simplifiedVerts := make([]int, 0, 64)

	field.ForEach(func(h int) {
		span := &field.spans[h]
		if span.RegionID == NullRegion || edgeFlags[h] == 0 {
			return
		}
		startDir := 0
		for edgeFlags[h]&(1<<startDir) == 0 {
			startDir++
		}

		rawVerts = b.buildRawContour(field, h, startDir, edgeFlags, rawVerts[:0])
		simplifiedVerts = b.buildSimplifiedContour(span.RegionID, rawVerts, simplifiedVerts[:0])

		if len(simplifiedVerts) < 12 {
			b.log.Warnf("[ContourSetBuilder][build] discarded degenerate contour, region %d, %d raw verts, %d simplified verts",
				span.RegionID, len(rawVerts)/4, len(simplifiedVerts)/4)
			discardedContours++
			return
		}
		result.add(&Contour{
			RegionID: span.RegionID,
			RawVerts: append([]int(nil), rawVerts...),
			Verts:    append([]int(nil), simplifiedVerts...),
		})
	})

	if result.Size()+discardedContours != field.RegionCount()-1 {
		b.log.Errorf("[ContourSetBuilder][build] contour generation failed, contours %d, discarded %d, regions %d",
			result.Size(), discardedContours, field.RegionCount()-1)
		for regionID := 1; regionID < field.RegionCount(); regionID++ {
			regionMatches := 0
			for _, c := range result.contours {
				if c.RegionID == regionID {
					regionMatches++
				}
			}
			if regionMatches > 1 {
				b.log.Errorf("[ContourSetBuilder][build] region %d has %d contours", regionID, regionMatches)
			}
		}
		return nil
	}
	return result
}

// buildRawContour walks the region border clockwise starting at the start
// edge and emits one vertex for every edge passed. The edge flags of the
// visited edges are cleared.
func (b *ContourSetBuilder) buildRawContour(field *OpenHeightfield, startSpan, startDir int,
	edgeFlags []uint8, verts []int) []int {
	h := startSpan
	dir := startDir
	maxSteps := len(field.spans)*4 + 4
	for step := 0; step < maxSteps; step++ {
		if edgeFlags[h]&(1<<dir) != 0 {
			px, pz := field.Location(h)
			py := field.cornerHeight(h, dir)
			switch dir {
			case 0:
				pz++
			case 1:
				px++
				pz++
			case 2:
				px++
			}
			regionThisDir := field.Region(field.Neighbor(h, dir))
			verts = append(verts, px, py, pz, regionThisDir)
			edgeFlags[h] &^= 1 << dir
			dir = common.ClockwiseDir(dir)
		} else {
			h = field.Neighbor(h, dir)
			dir = common.CounterClockwiseDir(dir)
		}
		if h == startSpan && dir == startDir {
			break
		}
	}
	return verts
}

// cornerHeight is the highest floor of the four spans sharing the corner
// clockwise of the edge in direction dir.
func (f *OpenHeightfield) cornerHeight(h, dir int) int {
	maxFloor := f.spans[h].Floor
	dirp := common.ClockwiseDir(dir)
	if n := f.Neighbor(h, dir); n != NullSpan {
		maxFloor = max(maxFloor, f.spans[n].Floor)
		if diag := f.Neighbor(n, dirp); diag != NullSpan {
			maxFloor = max(maxFloor, f.spans[diag].Floor)
		}
	}
	if n := f.Neighbor(h, dirp); n != NullSpan {
		maxFloor = max(maxFloor, f.spans[n].Floor)
		if diag := f.Neighbor(n, dir); diag != NullSpan {
			maxFloor = max(maxFloor, f.spans[diag].Floor)
		}
	}
	return maxFloor
}

// buildSimplifiedContour keeps the raw vertices where the neighbor region
// changes, runs the contour algorithms and cleans up the result.
func (b *ContourSetBuilder) buildSimplifiedContour(regionID int, raw, out []int) []int {
	rawCount := len(raw) / 4
	if rawCount == 0 {
		return out
	}

	for i := 0; i < rawCount; i++ {
		if raw[i*4+3] != raw[((i+1)%rawCount)*4+3] {
			out = append(out, raw[i*4], raw[i*4+1], raw[i*4+2], i)
		}
	}
	if len(out) == 0 {
		// Only one neighbor region. Seed with the two extreme corners.
		out = appendExtremeVerts(raw, out)
	}

	for _, algorithm := range b.algorithms {
		out = algorithm.Apply(raw, out)
	}

	for len(out) < 12 {
		n := len(out)
		if out = insertFarthestVert(raw, out); len(out) == n {
			break
		}
	}

	// Each vertex takes the region of the edge that leaves it.
	for i := 0; i < len(out)/4; i++ {
		rawIndex := out[i*4+3]
		out[i*4+3] = raw[((rawIndex+1)%rawCount)*4+3]
	}

	out = removeVerticalSegments(regionID, out, b.log)
	out = removeIntersectingSegments(regionID, out, b.log)
	return out
}

// appendExtremeVerts appends the lower left and upper right raw vertices.
func appendExtremeVerts(raw, out []int) []int {
	rawCount := len(raw) / 4
	llx, lly, llz, lli := raw[0], raw[1], raw[2], 0
	urx, ury, urz, uri := raw[0], raw[1], raw[2], 0
	for i := 1; i < rawCount; i++ {
		x, y, z := raw[i*4], raw[i*4+1], raw[i*4+2]
		if x < llx || (x == llx && z < llz) {
			llx, lly, llz, lli = x, y, z, i
		}
		if x > urx || (x == urx && z > urz) {
			urx, ury, urz, uri = x, y, z, i
		}
	}
	if lli == uri {
		return append(out, llx, lly, llz, lli)
	}
	if lli < uri {
		return append(out, llx, lly, llz, lli, urx, ury, urz, uri)
	}
	return append(out, urx, ury, urz, uri, llx, lly, llz, lli)
}

// insertFarthestVert adds the raw vertex farthest from the simplified edges,
// keeping the simplified vertices in raw order.
func insertFarthestVert(raw, out []int) []int {
	rawCount := len(raw) / 4
	simplifiedCount := len(out) / 4
	if simplifiedCount == 0 || rawCount < 3 {
		return out
	}

	maxDistance := -1.0
	farthest := -1
	insertAt := 0
	for i := 0; i < simplifiedCount; i++ {
		next := (i + 1) % simplifiedCount
		ax, az, ai := out[i*4], out[i*4+2], out[i*4+3]
		bx, bz, bi := out[next*4], out[next*4+2], out[next*4+3]
		for k := (ai + 1) % rawCount; k != bi; k = (k + 1) % rawCount {
			d := pointSegmentDistanceSq2D(raw[k*4], raw[k*4+2], ax, az, bx, bz)
			if d > maxDistance {
				maxDistance = d
				farthest = k
				insertAt = i + 1
			}
		}
	}
	if farthest == -1 {
		return out
	}
	return insertVert(out, insertAt, raw[farthest*4], raw[farthest*4+1], raw[farthest*4+2], farthest)
}

// removeVerticalSegments drops vertices that share their xz position with
// the next vertex.
func removeVerticalSegments(regionID int, verts []int, log Logger) []int {
	for i := 0; i < len(verts)/4 && len(verts)/4 > 1; {
		next := (i + 1) % (len(verts) / 4)
		if verts[i*4] == verts[next*4] && verts[i*4+2] == verts[next*4+2] {
			verts = removeVert(verts, next)
			log.Infof("[ContourSetBuilder][removeVerticalSegments] removed vertical segment, region %d", regionID)
			continue
		}
		i++
	}
	return verts
}

// removeIntersectingSegments removes vertices until no null region edge
// crosses another edge of the contour.
func removeIntersectingSegments(regionID int, verts []int, log Logger) []int {
	for restart := true; restart && len(verts) >= 12; {
		restart = false
		count := len(verts) / 4
		for i := 0; i < count && !restart; i++ {
			if verts[i*4+3] != NullRegion {
				continue
			}
			iNext := (i + 1) % count
			ax, az := verts[i*4], verts[i*4+2]
			bx, bz := verts[iNext*4], verts[iNext*4+2]
			for j := 0; j < count; j++ {
				jNext := (j + 1) % count
				if j == i || j == iNext || jNext == i {
					continue
				}
				if segmentsIntersect(ax, az, bx, bz, verts[j*4], verts[j*4+2], verts[jNext*4], verts[jNext*4+2]) {
					verts = removeVert(verts, iNext)
					log.Infof("[ContourSetBuilder][removeIntersectingSegments] removed self intersecting vertex, region %d", regionID)
					restart = true
					break
				}
			}
		}
	}
	return verts
}
