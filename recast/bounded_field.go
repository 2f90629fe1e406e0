package recast

import "github.com/gorustyt/gonmgen/common"

// BoundedField is an axis aligned box split into a width x depth grid of
// columns. Every heightfield and the structures derived from them share it.
type BoundedField struct {
	width      int
	depth      int
	boundsMin  common.Vec3
	boundsMax  common.Vec3
	cellSize   float64
	cellHeight float64
}

func newBoundedField(cellSize, cellHeight float64) BoundedField {
	return BoundedField{
		cellSize:   max(cellSize, minCellSize),
		cellHeight: max(cellHeight, minCellSize),
	}
}

func newBoundedFieldWithBounds(boundsMin, boundsMax common.Vec3, cellSize, cellHeight float64) (BoundedField, bool) {
	f := newBoundedField(cellSize, cellHeight)
	ok := f.setBounds(boundsMin, boundsMax)
	return f, ok
}

const minCellSize = 1e-6

// setBounds stores the bounds and recomputes the grid size. Bounds with
// min > max on any axis are rejected and leave the field untouched.
func (f *BoundedField) setBounds(boundsMin, boundsMax common.Vec3) bool {
	if boundsMin[0] > boundsMax[0] || boundsMin[1] > boundsMax[1] || boundsMin[2] > boundsMax[2] {
		return false
	}
	f.boundsMin = boundsMin
	f.boundsMax = boundsMax
	f.calculateWidthDepth()
	return true
}

func (f *BoundedField) calculateWidthDepth() {
	f.width = int((f.boundsMax[0]-f.boundsMin[0])/f.cellSize + 0.5)
	f.depth = int((f.boundsMax[2]-f.boundsMin[2])/f.cellSize + 0.5)
}

func (f *BoundedField) Width() int {
	return f.width
}

func (f *BoundedField) Depth() int {
	return f.depth
}

func (f *BoundedField) BoundsMin() common.Vec3 {
	return f.boundsMin
}

func (f *BoundedField) BoundsMax() common.Vec3 {
	return f.boundsMax
}

func (f *BoundedField) CellSize() float64 {
	return f.cellSize
}

func (f *BoundedField) CellHeight() float64 {
	return f.cellHeight
}

func (f *BoundedField) IsInBounds(widthIndex, depthIndex int) bool {
	return widthIndex >= 0 && depthIndex >= 0 && widthIndex < f.width && depthIndex < f.depth
}

// GridIndex returns widthIndex*depth + depthIndex, or -1 outside the grid.
func (f *BoundedField) GridIndex(widthIndex, depthIndex int) int {
	if !f.IsInBounds(widthIndex, depthIndex) {
		return -1
	}
	return widthIndex*f.depth + depthIndex
}

// GridLocation is the inverse of GridIndex.
func (f *BoundedField) GridLocation(gridIndex int) (widthIndex, depthIndex int) {
	if f.depth == 0 {
		return -1, -1
	}
	return gridIndex / f.depth, gridIndex % f.depth
}

// Overlaps is the separating interval test against another box.
func (f *BoundedField) Overlaps(boundsMin, boundsMax common.Vec3) bool {
	return overlapBounds(f.boundsMin, f.boundsMax, boundsMin, boundsMax)
}

// / Check whether two bounding boxes overlap
// /
// / @param[in]	aMin	Min axis extents of bounding box A
// / @param[in]	aMax	Max axis extents of bounding box A
// / @param[in]	bMin	Min axis extents of bounding box B
// / @param[in]	bMax	Max axis extents of bounding box B
// / @returns true if the two bounding boxes overlap.  False otherwise.
func overlapBounds(aMin, aMax, bMin, bMax common.Vec3) bool {
	return aMin[0] <= bMax[0] && aMax[0] >= bMin[0] &&
		aMin[1] <= bMax[1] && aMax[1] >= bMin[1] &&
		aMin[2] <= bMax[2] && aMax[2] >= bMin[2]
}
