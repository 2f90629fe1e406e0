package recast

import (
	"math"

	"github.com/gorustyt/gonmgen/common"
)

// Chamfer costs of an axis step and a diagonal step.
const (
	chamferAxisWeight     = 2
	chamferDiagonalWeight = 3
)

// GenerateDistanceField sets the distance of every span to the nearest
// border span, using a two pass chamfer approximation.
func (b *OpenHeightfieldBuilder) GenerateDistanceField(field *OpenHeightfield) {
	if field == nil {
		b.log.Errorf("[OpenHeightfieldBuilder][generateDistanceField] field is nil")
		return
	}

	// Mark border cells.
	for h := range field.spans {
		span := &field.spans[h]
		span.DistanceToBorder = distanceNeedsInit
		for dir := 0; dir < 4; dir++ {
			n := field.Neighbor(h, dir)
			if n == NullSpan || field.Neighbor(n, common.ClockwiseDir(dir)) == NullSpan {
				span.DistanceToBorder = 0
				break
			}
		}
	}

	// Pass 1
	field.ForEach(func(h int) {
		span := &field.spans[h]
		if span.DistanceToBorder == 0 {
			return
		}
		dist := span.DistanceToBorder
		// (-1,0) and (-1,-1)
		if n := field.Neighbor(h, 0); n != NullSpan {
			dist = min(dist, chamferStep(field.spans[n].DistanceToBorder, chamferAxisWeight))
			if nn := field.Neighbor(n, 3); nn != NullSpan {
				dist = min(dist, chamferStep(field.spans[nn].DistanceToBorder, chamferDiagonalWeight))
			}
		}
		// (0,-1) and (1,-1)
		if n := field.Neighbor(h, 3); n != NullSpan {
			dist = min(dist, chamferStep(field.spans[n].DistanceToBorder, chamferAxisWeight))
			if nn := field.Neighbor(n, 2); nn != NullSpan {
				dist = min(dist, chamferStep(field.spans[nn].DistanceToBorder, chamferDiagonalWeight))
			}
		}
		span.DistanceToBorder = dist
	})

	// Pass 2
	field.ForEachReverse(func(h int) {
		span := &field.spans[h]
		if span.DistanceToBorder == 0 {
			return
		}
		dist := span.DistanceToBorder
		// (1,0) and (1,1)
		if n := field.Neighbor(h, 2); n != NullSpan {
			dist = min(dist, chamferStep(field.spans[n].DistanceToBorder, chamferAxisWeight))
			if nn := field.Neighbor(n, 1); nn != NullSpan {
				dist = min(dist, chamferStep(field.spans[nn].DistanceToBorder, chamferDiagonalWeight))
			}
		}
		// (0,1) and (-1,1)
		if n := field.Neighbor(h, 1); n != NullSpan {
			dist = min(dist, chamferStep(field.spans[n].DistanceToBorder, chamferAxisWeight))
			if nn := field.Neighbor(n, 0); nn != NullSpan {
				dist = min(dist, chamferStep(field.spans[nn].DistanceToBorder, chamferDiagonalWeight))
			}
		}
		span.DistanceToBorder = dist
	})

	field.ClearBorderDistanceBounds()
}

// chamferStep is the distance reached through a neighbor. A neighbor that has
// not been reached yet contributes the floor weight instead.
func chamferStep(neighborDist, weight int) int {
	if neighborDist == distanceNeedsInit {
		return weight - 1
	}
	return neighborDist + weight
}

// BlurDistanceField smooths the distance field with a 3x3 box filter. Spans
// at or below the smoothing threshold are set to the threshold.
func (b *OpenHeightfieldBuilder) BlurDistanceField(field *OpenHeightfield) {
	if field == nil {
		b.log.Errorf("[OpenHeightfieldBuilder][blurDistanceField] field is nil")
		return
	}
	if b.smoothingThreshold <= 0 {
		return
	}
	threshold := b.smoothingThreshold
	blurred := make([]int, len(field.spans))
	for h := range field.spans {
		origDist := field.spans[h].DistanceToBorder
		if origDist <= threshold {
			blurred[h] = threshold
			continue
		}
		workingDist := origDist
		for dir := 0; dir < 4; dir++ {
			n := field.Neighbor(h, dir)
			if n == NullSpan {
				workingDist += origDist * 2
				continue
			}
			workingDist += field.spans[n].DistanceToBorder
			if nn := field.Neighbor(n, common.ClockwiseDir(dir)); nn != NullSpan {
				workingDist += field.spans[nn].DistanceToBorder
			} else {
				workingDist += origDist
			}
		}
		blurred[h] = (workingDist + 5) / 9
	}
	for h := range field.spans {
		field.spans[h].DistanceToBorder = blurred[h]
	}
	field.ClearBorderDistanceBounds()
}

// GenerateRegions grows regions outward from the distance field maxima, then
// runs the configured region algorithms.
func (b *OpenHeightfieldBuilder) GenerateRegions(field *OpenHeightfield) {
	if field == nil {
		b.log.Errorf("[OpenHeightfieldBuilder][generateRegions] field is nil")
		return
	}

	minDist := b.traversableAreaBorderSize + field.MinBorderDistance()
	expandIterations := 4 + b.traversableAreaBorderSize*2

	nextRegionID := 1
	workingSpans := make([]int, 0, 1024)
	floodStack := newStack[int](1024)

	dist := (field.MaxBorderDistance() - 1) &^ 1
	for dist > minDist {
		workingSpans = workingSpans[:0]
		for h := range field.spans {
			span := &field.spans[h]
			if span.RegionID == NullRegion && span.DistanceToBorder >= dist {
				workingSpans = append(workingSpans, h)
			}
		}

		if nextRegionID > 1 {
			iterations := -1
			if dist > 0 {
				iterations = expandIterations
			}
			b.expandRegions(field, workingSpans, iterations)
		}

		fillTo := max(dist-2, minDist)
		for _, h := range workingSpans {
			if h == NullSpan || field.spans[h].RegionID != NullRegion {
				continue
			}
			if b.floodNewRegion(field, h, fillTo, nextRegionID, floodStack) {
				nextRegionID++
			}
		}
		dist = max(dist-2, 0)
	}

	// Mop up everything the flood fills could not reach.
	workingSpans = workingSpans[:0]
	for h := range field.spans {
		span := &field.spans[h]
		if span.DistanceToBorder >= minDist && span.RegionID == NullRegion {
			workingSpans = append(workingSpans, h)
		}
	}
	iterations := -1
	if minDist > 0 {
		iterations = expandIterations * 8
	}
	b.expandRegions(field, workingSpans, iterations)

	field.setRegionCount(nextRegionID)
	b.log.Infof("[OpenHeightfieldBuilder][generateRegions] %d regions before post processing", nextRegionID-1)

	for _, algorithm := range b.regionAlgorithms {
		algorithm.Apply(field, b.log)
	}
}

// expandRegions lets existing regions grow into the unassigned spans. Spans
// that get assigned are replaced with NullSpan in the input slice. A negative
// maxIterations means no limit.
func (b *OpenHeightfieldBuilder) expandRegions(field *OpenHeightfield, spans []int, maxIterations int) {
	if len(spans) == 0 {
		return
	}
	iteration := 0
	for {
		skipped := 0
		for i, h := range spans {
			if h == NullSpan {
				skipped++
				continue
			}
			regionID := NullRegion
			distToCore := math.MaxInt
			for dir := 0; dir < 4; dir++ {
				n := field.Neighbor(h, dir)
				if n == NullSpan {
					continue
				}
				nSpan := &field.spans[n]
				if nSpan.RegionID <= NullRegion || nSpan.DistanceToRegionCore+2 >= distToCore {
					continue
				}
				if b.useConservativeExpansion {
					sameRegionCount := 0
					for ndir := 0; ndir < 4; ndir++ {
						if field.Region(field.Neighbor(n, ndir)) == nSpan.RegionID {
							sameRegionCount++
						}
					}
					if sameRegionCount <= 1 {
						continue
					}
				}
				regionID = nSpan.RegionID
				distToCore = nSpan.DistanceToRegionCore + 2
			}
			if regionID != NullRegion {
				spans[i] = NullSpan
				field.spans[h].RegionID = regionID
				field.spans[h].DistanceToRegionCore = distToCore
			} else {
				skipped++
			}
		}
		if skipped == len(spans) {
			break
		}
		if maxIterations >= 0 {
			iteration++
			if iteration > maxIterations {
				break
			}
		}
	}
}

// floodNewRegion claims the root span and every span reachable from it with
// a distance of at least fillToDist. Spans touching another region are
// left unassigned. Returns false if no span ended up in the region.
func (b *OpenHeightfieldBuilder) floodNewRegion(field *OpenHeightfield, root, fillToDist, regionID int, open *stack[int]) bool {
	open.Clear()
	field.spans[root].RegionID = regionID
	field.spans[root].DistanceToRegionCore = 0
	open.Push(root)

	regionSize := 0
	for !open.Empty() {
		h := open.Pop()
		if field.isOnForeignRegionBorder(h, regionID) {
			field.spans[h].RegionID = NullRegion
			continue
		}
		regionSize++
		for dir := 0; dir < 4; dir++ {
			n := field.Neighbor(h, dir)
			if n == NullSpan {
				continue
			}
			nSpan := &field.spans[n]
			if nSpan.DistanceToBorder >= fillToDist && nSpan.RegionID == NullRegion {
				nSpan.RegionID = regionID
				nSpan.DistanceToRegionCore = 0
				open.Push(n)
			}
		}
	}
	return regionSize > 0
}

// isOnForeignRegionBorder reports whether an axis or diagonal neighbor
// belongs to a region other than regionID.
func (f *OpenHeightfield) isOnForeignRegionBorder(h, regionID int) bool {
	for dir := 0; dir < 4; dir++ {
		n := f.Neighbor(h, dir)
		if n == NullSpan {
			continue
		}
		if r := f.spans[n].RegionID; r != NullRegion && r != regionID {
			return true
		}
		if r := f.Region(f.Neighbor(n, common.ClockwiseDir(dir))); r != NullRegion && r != regionID {
			return true
		}
	}
	return false
}
