package recast

import "slices"

// region is the bookkeeping used while filtering and merging regions.
type region struct {
	id        int
	spanCount int
	remap     bool

	// Neighbor region ids in the order met while walking the region's
	// border clockwise. The null region may appear several times.
	connections []int

	// Regions that share a grid column with this region at another height.
	overlappingRegions []int
}

func newRegion(id int) *region {
	return &region{id: id}
}

func (r *region) resetWithID(newRegionID int) {
	r.id = newRegionID
	r.spanCount = 0
	r.connections = r.connections[:0]
	r.overlappingRegions = r.overlappingRegions[:0]
}

func (r *region) addUniqueOverlap(regionID int) {
	if !slices.Contains(r.overlappingRegions, regionID) {
		r.overlappingRegions = append(r.overlappingRegions, regionID)
	}
}

// canMergeWith reports whether other touches this region at exactly one
// place along the border and the two never share a column.
func (r *region) canMergeWith(other *region) bool {
	connectionCount := 0
	for _, id := range r.connections {
		if id == other.id {
			connectionCount++
		}
	}
	if connectionCount != 1 {
		return false
	}
	if slices.Contains(r.overlappingRegions, other.id) {
		return false
	}
	if slices.Contains(other.overlappingRegions, r.id) {
		return false
	}
	return true
}

// removeAdjacentDuplicateConnections collapses runs of the same id, treating
// the list as cyclic.
func (r *region) removeAdjacentDuplicateConnections() {
	i := 0
	for len(r.connections) > 1 && i < len(r.connections) {
		next := (i + 1) % len(r.connections)
		if r.connections[i] == r.connections[next] {
			r.connections = slices.Delete(r.connections, next, next+1)
			continue
		}
		i++
	}
}

func (r *region) replaceNeighborRegionID(oldID, newID int) {
	connectionsChanged := false
	for i, id := range r.connections {
		if id == oldID {
			r.connections[i] = newID
			connectionsChanged = true
		}
	}
	for i, id := range r.overlappingRegions {
		if id == oldID {
			r.overlappingRegions[i] = newID
		}
	}
	if connectionsChanged {
		r.removeAdjacentDuplicateConnections()
	}
}

// mergeRegions folds candidate into target. The connection lists are
// spliced at the point where the two regions touch. Returns false if the
// regions are not connected.
func mergeRegions(target, candidate *region) bool {
	connectionPointOnTarget := slices.Index(target.connections, candidate.id)
	if connectionPointOnTarget == -1 {
		return false
	}
	connectionPointOnCandidate := slices.Index(candidate.connections, target.id)
	if connectionPointOnCandidate == -1 {
		return false
	}

	targetConnections := slices.Clone(target.connections)
	merged := make([]int, 0, len(targetConnections)+len(candidate.connections))
	workingSize := len(targetConnections)
	for i := 0; i < workingSize-1; i++ {
		merged = append(merged, targetConnections[(connectionPointOnTarget+1+i)%workingSize])
	}
	workingSize = len(candidate.connections)
	for i := 0; i < workingSize-1; i++ {
		merged = append(merged, candidate.connections[(connectionPointOnCandidate+1+i)%workingSize])
	}
	target.connections = merged
	target.removeAdjacentDuplicateConnections()

	for _, id := range candidate.overlappingRegions {
		target.addUniqueOverlap(id)
	}
	target.spanCount += candidate.spanCount
	return true
}
