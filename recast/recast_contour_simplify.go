package recast

// MatchNullRegionEdges adds raw vertices to simplified edges that border the
// null region until no raw vertex deviates from its edge by more than the
// threshold. The threshold is in voxel units.
type MatchNullRegionEdges struct {
	threshold float64
}

func NewMatchNullRegionEdges(threshold float64) *MatchNullRegionEdges {
	return &MatchNullRegionEdges{threshold: max(0, threshold)}
}

func (a *MatchNullRegionEdges) Apply(sourceVerts, resultVerts []int) []int {
	sourceVertCount := len(sourceVerts) / 4
	if sourceVertCount == 0 || len(resultVerts) == 0 {
		return resultVerts
	}
	thresholdSq := a.threshold * a.threshold

	for iResultVertA := 0; iResultVertA < len(resultVerts)/4; {
		iResultVertB := (iResultVertA + 1) % (len(resultVerts) / 4)
		ax := resultVerts[iResultVertA*4]
		az := resultVerts[iResultVertA*4+2]
		iVertASource := resultVerts[iResultVertA*4+3]
		bx := resultVerts[iResultVertB*4]
		bz := resultVerts[iResultVertB*4+2]
		iVertBSource := resultVerts[iResultVertB*4+3]

		iTestVert := (iVertASource + 1) % sourceVertCount
		maxDeviation := 0.0
		iVertToInsert := -1
		if sourceVerts[iTestVert*4+3] == NullRegion {
			for iTestVert != iVertBSource {
				deviation := pointSegmentDistanceSq2D(sourceVerts[iTestVert*4], sourceVerts[iTestVert*4+2], ax, az, bx, bz)
				if deviation > maxDeviation {
					maxDeviation = deviation
					iVertToInsert = iTestVert
				}
				iTestVert = (iTestVert + 1) % sourceVertCount
			}
		}

		if iVertToInsert != -1 && maxDeviation > thresholdSq {
			// Split the edge and test the first half again.
			resultVerts = insertVert(resultVerts, iResultVertA+1,
				sourceVerts[iVertToInsert*4],
				sourceVerts[iVertToInsert*4+1],
				sourceVerts[iVertToInsert*4+2],
				iVertToInsert)
			continue
		}
		iResultVertA++
	}
	return resultVerts
}

// NullRegionMaxEdge splits simplified edges bordering the null region that
// are longer than the maximum edge length, in voxel units. Zero disables it.
type NullRegionMaxEdge struct {
	maxEdgeLength int
}

func NewNullRegionMaxEdge(maxEdgeLength int) *NullRegionMaxEdge {
	return &NullRegionMaxEdge{maxEdgeLength: max(0, maxEdgeLength)}
}

func (a *NullRegionMaxEdge) Apply(sourceVerts, resultVerts []int) []int {
	sourceVertCount := len(sourceVerts) / 4
	if a.maxEdgeLength <= 0 || sourceVertCount == 0 || len(resultVerts) == 0 {
		return resultVerts
	}
	maxEdgeSq := a.maxEdgeLength * a.maxEdgeLength

	for iVertA := 0; iVertA < len(resultVerts)/4; {
		iVertB := (iVertA + 1) % (len(resultVerts) / 4)
		ax := resultVerts[iVertA*4]
		az := resultVerts[iVertA*4+2]
		iVertASource := resultVerts[iVertA*4+3]
		bx := resultVerts[iVertB*4]
		bz := resultVerts[iVertB*4+2]
		iVertBSource := resultVerts[iVertB*4+3]

		iNewVert := -1
		iTestVert := (iVertASource + 1) % sourceVertCount
		if sourceVerts[iTestVert*4+3] == NullRegion {
			dx := bx - ax
			dz := bz - az
			if dx*dx+dz*dz > maxEdgeSq {
				indexDistance := iVertBSource - iVertASource
				if iVertBSource <= iVertASource {
					indexDistance += sourceVertCount
				}
				if indexDistance > 1 {
					iNewVert = (iVertASource + indexDistance/2) % sourceVertCount
				}
			}
		}

		if iNewVert != -1 {
			resultVerts = insertVert(resultVerts, iVertA+1,
				sourceVerts[iNewVert*4],
				sourceVerts[iNewVert*4+1],
				sourceVerts[iNewVert*4+2],
				iNewVert)
			continue
		}
		iVertA++
	}
	return resultVerts
}
