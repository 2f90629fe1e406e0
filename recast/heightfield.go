package recast

import "github.com/gorustyt/gonmgen/common"

const (
	// SpanFlagWalkable marks a solid span whose top surface can be stood on.
	SpanFlagWalkable = 1

	// NullSpan is the handle value meaning "no span".
	NullSpan = -1
)

// HeightSpan is a solid vertical interval [Min, Max] of one grid column, in
// voxel units. Spans of a column are chained upward through next.
type HeightSpan struct {
	Min   int
	Max   int
	Flags int
	next  int
}

func (s *HeightSpan) Walkable() bool {
	return s.Flags&SpanFlagWalkable != 0
}

// SolidHeightfield holds the voxelized input geometry. Spans live in an arena
// and are addressed by handle, columns store the handle of their lowest span.
type SolidHeightfield struct {
	BoundedField
	spans    []HeightSpan
	freelist []int
	columns  []int
}

func NewSolidHeightfield(cellSize, cellHeight float64) *SolidHeightfield {
	return &SolidHeightfield{BoundedField: newBoundedField(cellSize, cellHeight)}
}

func (f *SolidHeightfield) setBounds(boundsMin, boundsMax common.Vec3) bool {
	if !f.BoundedField.setBounds(boundsMin, boundsMax) {
		return false
	}
	f.spans = f.spans[:0]
	f.freelist = f.freelist[:0]
	f.columns = make([]int, f.width*f.depth)
	for i := range f.columns {
		f.columns[i] = NullSpan
	}
	return true
}

// Span returns the span for a handle.
func (f *SolidHeightfield) Span(handle int) *HeightSpan {
	return &f.spans[handle]
}

// Next returns the handle of the next higher span in the same column.
func (f *SolidHeightfield) Next(handle int) int {
	return f.spans[handle].next
}

// FirstSpan returns the lowest span handle of the column or NullSpan.
func (f *SolidHeightfield) FirstSpan(widthIndex, depthIndex int) int {
	idx := f.GridIndex(widthIndex, depthIndex)
	if idx == -1 {
		return NullSpan
	}
	return f.columns[idx]
}

func (f *SolidHeightfield) HasSpans() bool {
	for _, h := range f.columns {
		if h != NullSpan {
			return true
		}
	}
	return false
}

func (f *SolidHeightfield) SpanCount() int {
	return len(f.spans) - len(f.freelist)
}

// ForEach visits every span, depth-major then width-major, lowest span first.
func (f *SolidHeightfield) ForEach(fn func(widthIndex, depthIndex, handle int)) {
	for depthIndex := 0; depthIndex < f.depth; depthIndex++ {
		for widthIndex := 0; widthIndex < f.width; widthIndex++ {
			for h := f.columns[widthIndex*f.depth+depthIndex]; h != NullSpan; h = f.spans[h].next {
				fn(widthIndex, depthIndex, h)
			}
		}
	}
}

func (f *SolidHeightfield) allocSpan(minValue, maxValue, flags int) int {
	s := HeightSpan{Min: minValue, Max: maxValue, Flags: flags, next: NullSpan}
	if n := len(f.freelist); n > 0 {
		h := f.freelist[n-1]
		f.freelist = f.freelist[:n-1]
		f.spans[h] = s
		return h
	}
	f.spans = append(f.spans, s)
	return len(f.spans) - 1
}

func (f *SolidHeightfield) freeSpan(handle int) {
	f.spans[handle] = HeightSpan{next: NullSpan}
	f.freelist = append(f.freelist, handle)
}

// / Adds a span to the heightfield.  If the new span overlaps existing spans,
// / or is separated from them by less than one voxel, it is merged with them.
// /
// / @param[in]	widthIndex	The new span's column width index
// / @param[in]	depthIndex	The new span's column depth index
// / @param[in]	minValue	The new span's minimum height index
// / @param[in]	maxValue	The new span's maximum height index
// / @param[in]	flags		The new span's flags
// / @returns false if the location or the height range is invalid.
func (f *SolidHeightfield) AddData(widthIndex, depthIndex, minValue, maxValue, flags int) bool {
	columnIndex := f.GridIndex(widthIndex, depthIndex)
	if columnIndex == -1 {
		return false
	}
	if minValue < 0 || maxValue < 0 || minValue > maxValue {
		return false
	}

	previousSpan := NullSpan
	currentSpan := f.columns[columnIndex]
	for currentSpan != NullSpan {
		cur := f.spans[currentSpan]
		if cur.Min > maxValue+1 {
			// Current span is completely above the new span, insert before it.
			break
		}
		if cur.Max < minValue-1 {
			// Current span is completely below the new span.  Keep going.
			previousSpan = currentSpan
			currentSpan = cur.next
			continue
		}

		// Overlapping or touching, fold the current span into the new one.
		// The top most surface decides the flags, equal tops combine them.
		if cur.Min < minValue {
			minValue = cur.Min
		}
		if cur.Max > maxValue {
			maxValue = cur.Max
			flags = cur.Flags
		} else if cur.Max == maxValue {
			flags |= cur.Flags
		}

		next := cur.next
		f.freeSpan(currentSpan)
		if previousSpan != NullSpan {
			f.spans[previousSpan].next = next
		} else {
			f.columns[columnIndex] = next
		}
		currentSpan = next
	}

	newSpan := f.allocSpan(minValue, maxValue, flags)
	if previousSpan != NullSpan {
		f.spans[newSpan].next = f.spans[previousSpan].next
		f.spans[previousSpan].next = newSpan
	} else {
		f.spans[newSpan].next = f.columns[columnIndex]
		f.columns[columnIndex] = newSpan
	}
	return true
}
