package recast

import (
	"math"

	"github.com/gorustyt/gonmgen/common"
)

const (
	// NullRegion is the region id of unwalkable or unassigned spans.
	NullRegion = 0

	// distanceNeedsInit marks a span whose border distance is not known yet.
	distanceNeedsInit = math.MaxInt
)

// OpenHeightSpan is the walkable space [Floor, Floor+Height) above a solid
// span. Links to neighbor spans and to the next span up the column are
// handles into the owning OpenHeightfield.
type OpenHeightSpan struct {
	Floor                int
	Height               int
	RegionID             int
	DistanceToBorder     int
	DistanceToRegionCore int

	widthIndex int
	depthIndex int
	neighbors  [4]int
	next       int
}

// Ceiling is the first solid voxel above the span, MaxInt for open sky.
func (s *OpenHeightSpan) Ceiling() int {
	return s.Floor + s.Height
}

// OpenHeightfield is the traversable space of a SolidHeightfield.
type OpenHeightfield struct {
	BoundedField
	spans   []OpenHeightSpan
	columns []int

	regionCount           int
	maxBorderDistance     int
	minBorderDistance     int
	borderDistanceCurrent bool
}

func newOpenHeightfield(boundsMin, boundsMax common.Vec3, cellSize, cellHeight float64) (*OpenHeightfield, bool) {
	bf, ok := newBoundedFieldWithBounds(boundsMin, boundsMax, cellSize, cellHeight)
	if !ok {
		return nil, false
	}
	f := &OpenHeightfield{BoundedField: bf, columns: make([]int, bf.width*bf.depth)}
	for i := range f.columns {
		f.columns[i] = NullSpan
	}
	return f, true
}

// addSpan appends a span on top of the column and returns its handle.
// Callers add spans of a column bottom up.
func (f *OpenHeightfield) addSpan(widthIndex, depthIndex, floor, height int) int {
	f.spans = append(f.spans, OpenHeightSpan{
		Floor:      floor,
		Height:     height,
		widthIndex: widthIndex,
		depthIndex: depthIndex,
		neighbors:  [4]int{NullSpan, NullSpan, NullSpan, NullSpan},
		next:       NullSpan,
	})
	handle := len(f.spans) - 1
	columnIndex := f.GridIndex(widthIndex, depthIndex)
	if f.columns[columnIndex] == NullSpan {
		f.columns[columnIndex] = handle
		return handle
	}
	last := f.columns[columnIndex]
	for f.spans[last].next != NullSpan {
		last = f.spans[last].next
	}
	f.spans[last].next = handle
	return handle
}

func (f *OpenHeightfield) Span(handle int) *OpenHeightSpan {
	return &f.spans[handle]
}

// Neighbor returns the linked span in the direction or NullSpan.
func (f *OpenHeightfield) Neighbor(handle, dir int) int {
	if handle == NullSpan {
		return NullSpan
	}
	return f.spans[handle].neighbors[dir&0x3]
}

func (f *OpenHeightfield) setNeighbor(handle, dir, neighbor int) {
	f.spans[handle].neighbors[dir&0x3] = neighbor
}

// Region returns the region of a span, NullRegion for NullSpan.
func (f *OpenHeightfield) Region(handle int) int {
	if handle == NullSpan {
		return NullRegion
	}
	return f.spans[handle].RegionID
}

func (f *OpenHeightfield) Next(handle int) int {
	return f.spans[handle].next
}

// Location returns the grid column of a span.
func (f *OpenHeightfield) Location(handle int) (widthIndex, depthIndex int) {
	s := &f.spans[handle]
	return s.widthIndex, s.depthIndex
}

func (f *OpenHeightfield) FirstSpan(widthIndex, depthIndex int) int {
	idx := f.GridIndex(widthIndex, depthIndex)
	if idx == -1 {
		return NullSpan
	}
	return f.columns[idx]
}

func (f *OpenHeightfield) SpanCount() int {
	return len(f.spans)
}

// ForEach visits spans depth-major then width-major, bottom up in a column.
func (f *OpenHeightfield) ForEach(fn func(handle int)) {
	for depthIndex := 0; depthIndex < f.depth; depthIndex++ {
		for widthIndex := 0; widthIndex < f.width; widthIndex++ {
			for h := f.columns[widthIndex*f.depth+depthIndex]; h != NullSpan; h = f.spans[h].next {
				fn(h)
			}
		}
	}
}

// ForEachReverse visits the columns in the opposite order of ForEach.
func (f *OpenHeightfield) ForEachReverse(fn func(handle int)) {
	for depthIndex := f.depth - 1; depthIndex >= 0; depthIndex-- {
		for widthIndex := f.width - 1; widthIndex >= 0; widthIndex-- {
			for h := f.columns[widthIndex*f.depth+depthIndex]; h != NullSpan; h = f.spans[h].next {
				fn(h)
			}
		}
	}
}

// RegionCount includes the null region, valid ids are [1, RegionCount).
func (f *OpenHeightfield) RegionCount() int {
	return f.regionCount
}

func (f *OpenHeightfield) setRegionCount(count int) {
	f.regionCount = count
}

func (f *OpenHeightfield) MaxBorderDistance() int {
	if !f.borderDistanceCurrent {
		f.calcBorderDistanceBounds()
	}
	return f.maxBorderDistance
}

func (f *OpenHeightfield) MinBorderDistance() int {
	if !f.borderDistanceCurrent {
		f.calcBorderDistanceBounds()
	}
	return f.minBorderDistance
}

// ClearBorderDistanceBounds forces the bounds to be recomputed on next access.
func (f *OpenHeightfield) ClearBorderDistanceBounds() {
	f.borderDistanceCurrent = false
}

func (f *OpenHeightfield) calcBorderDistanceBounds() {
	if len(f.spans) == 0 {
		f.minBorderDistance, f.maxBorderDistance = 0, 0
		f.borderDistanceCurrent = true
		return
	}
	f.minBorderDistance = math.MaxInt
	f.maxBorderDistance = math.MinInt
	for i := range f.spans {
		d := f.spans[i].DistanceToBorder
		f.minBorderDistance = min(f.minBorderDistance, d)
		f.maxBorderDistance = max(f.maxBorderDistance, d)
	}
	f.borderDistanceCurrent = true
}

// DetailedRegionMap fills out with the regions around a span, out[dir] for
// the axis neighbors and out[dir+4] for the diagonal clockwise of dir.
// Missing neighbors report NullRegion.
func (f *OpenHeightfield) DetailedRegionMap(handle int, out *[8]int) {
	for i := range out {
		out[i] = NullRegion
	}
	for dir := 0; dir < 4; dir++ {
		n := f.Neighbor(handle, dir)
		if n == NullSpan {
			continue
		}
		out[dir] = f.spans[n].RegionID
		if diag := f.Neighbor(n, common.ClockwiseDir(dir)); diag != NullSpan {
			out[dir+4] = f.spans[diag].RegionID
		}
		if diag := f.Neighbor(n, common.CounterClockwiseDir(dir)); diag != NullSpan {
			out[common.CounterClockwiseDir(dir)+4] = f.spans[diag].RegionID
		}
	}
}
