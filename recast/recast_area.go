package recast

import "github.com/gorustyt/gonmgen/common"

// CleanNullRegionBorders makes sure no null region is fully enclosed by a
// single region, and fixes corner configurations that would later produce
// self-intersecting contours.
//
// Whenever a null region is found that is surrounded by one region, the part
// of that region on the far side of the null region is flooded with a new
// region id.
type CleanNullRegionBorders struct {
	useOnlyNullRegionSpans bool
}

// NewCleanNullRegionBorders with useOnlyNullRegionSpans only starts border
// walks from null region spans. That is the right choice when the field has
// a traversable area border, since every region border then touches null
// region spans.
func NewCleanNullRegionBorders(useOnlyNullRegionSpans bool) *CleanNullRegionBorders {
	return &CleanNullRegionBorders{useOnlyNullRegionSpans: useOnlyNullRegionSpans}
}

func (a *CleanNullRegionBorders) Apply(field *OpenHeightfield, log Logger) {
	log = orNop(log)
	if field == nil {
		log.Errorf("[CleanNullRegionBorders][apply] field is nil")
		return
	}

	c := &nullBorderCleaner{
		field:   field,
		visited: make([]bool, field.SpanCount()),
		open:    newStack[floodEntry](256),
	}
	nextRegionID := field.RegionCount()
	splitCount := 0

	field.ForEach(func(h int) {
		if c.visited[h] {
			return
		}
		c.visited[h] = true

		workingSpan := NullSpan
		edgeDirection := -1
		if field.spans[h].RegionID == NullRegion {
			// Walk from the first non-null neighbor, facing back at this span.
			for dir := 0; dir < 4; dir++ {
				if n := field.Neighbor(h, dir); n != NullSpan && field.spans[n].RegionID != NullRegion {
					workingSpan = n
					edgeDirection = common.AntiDir(dir)
					break
				}
			}
		} else if !a.useOnlyNullRegionSpans {
			for dir := 0; dir < 4; dir++ {
				n := field.Neighbor(h, dir)
				if n == NullSpan || field.spans[n].RegionID == NullRegion {
					workingSpan = h
					edgeDirection = dir
					break
				}
			}
		}
		if workingSpan == NullSpan {
			return
		}

		if c.processNullRegion(workingSpan, edgeDirection) {
			c.partialFloodRegion(workingSpan, edgeDirection, nextRegionID)
			nextRegionID++
			splitCount++
		}
	})

	field.setRegionCount(nextRegionID)
	if splitCount > 0 {
		log.Infof("[CleanNullRegionBorders][apply] split %d regions around enclosed null regions", splitCount)
	}
}

type floodEntry struct {
	span     int
	distance int
}

// nullBorderCleaner holds the per run state. The visited marks only live
// for one Apply call.
type nullBorderCleaner struct {
	field   *OpenHeightfield
	visited []bool
	open    *stack[floodEntry]
}

// processNullRegion walks the border of the null region like a wall
// following robot, keeping the null region on its right. Returns true if
// the null region is encompassed by the start span's region: the walk only
// met that region and turned around more obtuse corners than acute ones.
// Dangerous outer corners met on the way are fixed up.
func (c *nullBorderCleaner) processNullRegion(startSpan, startDirection int) bool {
	f := c.field
	borderRegionID := f.spans[startSpan].RegionID

	h := startSpan
	dir := startDirection
	acuteCornerCount := 0
	obtuseCornerCount := 0
	stepsWithoutBorder := 0
	borderSeenLastLoop := false
	hasSingleConnection := true

	maxSteps := len(f.spans)*4 + 4
	for step := 0; step < maxSteps; step++ {
		isBorder := true
		n := f.Neighbor(h, dir)
		if n != NullSpan {
			c.visited[n] = true
			if r := f.spans[n].RegionID; r != NullRegion {
				isBorder = false
				if r != borderRegionID {
					hasSingleConnection = false
				}
			}
		}

		if isBorder {
			if borderSeenLastLoop {
				acuteCornerCount++
			} else if stepsWithoutBorder > 1 {
				obtuseCornerCount++
				if c.processOuterCorner(h, dir) {
					hasSingleConnection = false
				}
			}
			dir = common.ClockwiseDir(dir)
			borderSeenLastLoop = true
			stepsWithoutBorder = 0
		} else {
			h = n
			dir = common.CounterClockwiseDir(dir)
			borderSeenLastLoop = false
			stepsWithoutBorder++
		}

		if h == startSpan && dir == startDirection {
			return hasSingleConnection && obtuseCornerCount > acuteCornerCount
		}
	}
	return false
}

// processOuterCorner checks the spans behind an outer corner of the null
// region and reassigns spans where two spans of one region would only touch
// diagonally. Returns true if more than one region was found at the corner.
func (c *nullBorderCleaner) processOuterCorner(referenceSpan, borderDirection int) bool {
	f := c.field
	backOne := f.Neighbor(referenceSpan, common.CounterClockwiseDir(borderDirection))
	backTwo := f.Neighbor(backOne, borderDirection)
	if backOne == NullSpan || backTwo == NullSpan {
		return true
	}
	referenceRegion := f.spans[referenceSpan].RegionID
	backOneRegion := f.spans[backOne].RegionID
	backTwoRegion := f.spans[backTwo].RegionID

	switch {
	case backOneRegion != referenceRegion && backTwoRegion == referenceRegion:
		// Dangerous corner configuration.
		//     a x
		//     b a
		backTwoConnections := 0
		test := f.Neighbor(backOne, common.CounterClockwiseDir(borderDirection))
		if test != NullSpan && f.spans[test].RegionID == backOneRegion {
			backTwoConnections++
			test = f.Neighbor(test, borderDirection)
			if test != NullSpan && f.spans[test].RegionID == backOneRegion {
				backTwoConnections++
			}
		}
		referenceConnections := 0
		test = f.Neighbor(backTwo, common.AntiDir(borderDirection))
		if test != NullSpan && f.spans[test].RegionID == backTwoRegion {
			referenceConnections++
			test = f.Neighbor(test, common.AntiDir(borderDirection))
			if test != NullSpan && f.spans[test].RegionID == backTwoRegion {
				referenceConnections++
			}
		}
		if referenceConnections > backTwoConnections {
			f.spans[backOne].RegionID = referenceRegion
		} else {
			f.spans[backTwo].RegionID = backOneRegion
		}
		return true

	case backOneRegion == referenceRegion && backTwoRegion == referenceRegion:
		// Potential short wrap.
		//     a x
		//     a a
		selectedRegion := c.selectedRegionID(backTwo,
			common.ClockwiseDir(borderDirection), common.AntiDir(borderDirection))
		if selectedRegion == backTwoRegion {
			selectedRegion = c.selectedRegionID(referenceSpan,
				borderDirection, common.CounterClockwiseDir(borderDirection))
			if selectedRegion != referenceRegion {
				f.spans[referenceSpan].RegionID = selectedRegion
				return true
			}
			return false
		}
		f.spans[backTwo].RegionID = selectedRegion
		return true
	}
	return true
}

// selectedRegionID decides which region a corner span should belong to. The
// span keeps its own region unless the regions across the border and across
// the corner agree on another region that also wins the vote among the 8
// surrounding spans.
func (c *nullBorderCleaner) selectedRegionID(h, borderDirection, cornerDirection int) int {
	f := c.field
	ownRegion := f.spans[h].RegionID
	var regions [8]int
	f.DetailedRegionMap(h, &regions)

	regionID := regions[common.AntiDir(borderDirection)]
	if regionID == ownRegion || regionID == NullRegion {
		return ownRegion
	}
	potentialRegion := regionID

	regionID = regions[common.AntiDir(cornerDirection)]
	if regionID == ownRegion || regionID == NullRegion {
		return ownRegion
	}

	potentialCount := 0
	ownCount := 0
	for _, r := range regions {
		if r == ownRegion {
			ownCount++
		} else if r == potentialRegion {
			potentialCount++
		}
	}
	if potentialCount < ownCount {
		return ownRegion
	}
	return potentialRegion
}

// partialFloodRegion moves the part of the start span's region that lies
// away from the border direction into a new region. The flood may only step
// toward the border as far as it has previously moved away from it.
func (c *nullBorderCleaner) partialFloodRegion(startSpan, borderDirection, newRegionID int) {
	f := c.field
	antiBorderDirection := common.AntiDir(borderDirection)
	regionID := f.spans[startSpan].RegionID

	f.spans[startSpan].RegionID = newRegionID
	f.spans[startSpan].DistanceToRegionCore = 0
	c.open.Clear()
	c.open.Push(floodEntry{span: startSpan})

	for !c.open.Empty() {
		e := c.open.Pop()
		for dir := 0; dir < 4; dir++ {
			n := f.Neighbor(e.span, dir)
			if n == NullSpan || f.spans[n].RegionID != regionID {
				continue
			}
			nDistance := e.distance
			if dir == borderDirection {
				if e.distance == 0 {
					continue
				}
				nDistance--
			} else if dir == antiBorderDirection {
				nDistance++
			}
			f.spans[n].RegionID = newRegionID
			f.spans[n].DistanceToRegionCore = 0
			c.open.Push(floodEntry{span: n, distance: nDistance})
		}
	}
}
