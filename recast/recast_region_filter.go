package recast

import (
	"math"

	"github.com/gorustyt/gonmgen/common"
)

// FilterOutSmallRegions removes small isolated regions, merges small regions
// into their neighbors and renumbers the survivors to [1, RegionCount).
type FilterOutSmallRegions struct {
	minUnconnectedRegionSize int
	mergeRegionSize          int
}

// NewFilterOutSmallRegions sizes are span counts.
func NewFilterOutSmallRegions(minUnconnectedRegionSize, mergeRegionSize int) *FilterOutSmallRegions {
	return &FilterOutSmallRegions{
		minUnconnectedRegionSize: max(0, minUnconnectedRegionSize),
		mergeRegionSize:          max(0, mergeRegionSize),
	}
}

func (a *FilterOutSmallRegions) Apply(field *OpenHeightfield, log Logger) {
	log = orNop(log)
	if field == nil {
		log.Errorf("[FilterOutSmallRegions][apply] field is nil")
		return
	}
	if field.RegionCount() < 2 {
		log.Warnf("[FilterOutSmallRegions][apply] field has no regions")
		return
	}

	regions := make([]*region, field.RegionCount())
	for i := range regions {
		regions[i] = newRegion(i)
	}

	// Gather span counts, overlaps and connections.
	for h := range field.spans {
		span := &field.spans[h]
		if span.RegionID <= NullRegion {
			continue
		}
		if span.RegionID >= len(regions) {
			log.Errorf("[FilterOutSmallRegions][apply] span region %d out of range [0,%d)", span.RegionID, len(regions))
			return
		}
		reg := regions[span.RegionID]
		reg.spanCount++

		for next := span.next; next != NullSpan; next = field.Next(next) {
			if nRegionID := field.spans[next].RegionID; nRegionID > NullRegion && nRegionID != reg.id {
				reg.addUniqueOverlap(nRegionID)
			}
		}

		if len(reg.connections) > 0 {
			continue
		}
		if edgeDir := field.regionEdgeDirection(h); edgeDir != -1 {
			reg.connections = field.findRegionConnections(h, edgeDir, reg.connections)
		}
	}

	// Regions that lost every span to an earlier pass, and small islands.
	for _, reg := range regions[1:] {
		if reg.spanCount == 0 {
			reg.resetWithID(NullRegion)
			continue
		}
		if len(reg.connections) == 1 && reg.connections[0] == NullRegion &&
			reg.spanCount < a.minUnconnectedRegionSize {
			reg.resetWithID(NullRegion)
		}
	}

	mergeCount := 1
	for mergeCount > 0 {
		mergeCount = 0
		for _, reg := range regions {
			if reg.id <= NullRegion || reg.spanCount == 0 || reg.spanCount > a.mergeRegionSize {
				continue
			}

			// Pick the smallest neighbor that is legal to merge with.
			var target *region
			mergeSpanCount := math.MaxInt
			for _, nRegionID := range reg.connections {
				if nRegionID == NullRegion {
					continue
				}
				nReg := regions[nRegionID]
				if nReg.spanCount < mergeSpanCount && reg.canMergeWith(nReg) {
					target = nReg
					mergeSpanCount = nReg.spanCount
				}
			}
			if target == nil {
				continue
			}

			oldRegionID := reg.id
			if !mergeRegions(target, reg) {
				continue
			}
			reg.resetWithID(target.id)
			for _, r := range regions {
				if r.id <= NullRegion {
					continue
				}
				if r.id == oldRegionID {
					r.id = target.id
				}
				r.replaceNeighborRegionID(oldRegionID, target.id)
			}
			mergeCount++
		}
	}

	// Compress the surviving ids.
	for _, reg := range regions {
		reg.remap = reg.id > NullRegion
	}
	currRegionID := 0
	for i, reg := range regions {
		if !reg.remap {
			continue
		}
		currRegionID++
		oldRegionID := reg.id
		for _, r := range regions[i:] {
			if r.id == oldRegionID {
				r.id = currRegionID
				r.remap = false
			}
		}
	}
	field.setRegionCount(currRegionID + 1)

	for h := range field.spans {
		span := &field.spans[h]
		if span.RegionID > NullRegion {
			span.RegionID = regions[span.RegionID].id
		}
	}
	log.Infof("[FilterOutSmallRegions][apply] %d regions after filtering", currRegionID)
}

// regionEdgeDirection returns the first direction in which the span borders
// a missing span or another region, -1 for interior spans.
func (f *OpenHeightfield) regionEdgeDirection(h int) int {
	regionID := f.spans[h].RegionID
	for dir := 0; dir < 4; dir++ {
		n := f.Neighbor(h, dir)
		if n == NullSpan || f.spans[n].RegionID != regionID {
			return dir
		}
	}
	return -1
}

// findRegionConnections walks the region border clockwise from the start
// edge and appends every change of neighbor region to connections.
func (f *OpenHeightfield) findRegionConnections(startSpan, startDirection int, connections []int) []int {
	h := startSpan
	dir := startDirection
	lastEdgeRegionID := f.Region(f.Neighbor(h, dir))
	connections = append(connections, lastEdgeRegionID)

	maxSteps := len(f.spans)*4 + 4
	for step := 0; step < maxSteps; step++ {
		n := f.Neighbor(h, dir)
		if n == NullSpan || f.spans[n].RegionID != f.spans[h].RegionID {
			currEdgeRegionID := f.Region(n)
			if currEdgeRegionID != lastEdgeRegionID {
				connections = append(connections, currEdgeRegionID)
				lastEdgeRegionID = currEdgeRegionID
			}
			dir = common.ClockwiseDir(dir)
		} else {
			h = n
			dir = common.CounterClockwiseDir(dir)
		}
		if h == startSpan && dir == startDirection {
			break
		}
	}

	if n := len(connections); n > 1 && connections[0] == connections[n-1] {
		connections = connections[:n-1]
	}
	return connections
}
