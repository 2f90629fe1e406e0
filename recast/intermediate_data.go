package recast

import "time"

// Undefined is the timing of a stage that did not run.
const Undefined time.Duration = -1

// IntermediateData collects the stage outputs and timings of one
// NavmeshGenerator.Build call.
type IntermediateData struct {
	VoxelizationTime time.Duration
	RegionGenTime    time.Duration
	ContourGenTime   time.Duration
	PolyGenTime      time.Duration
	FinalMeshGenTime time.Duration

	solidHeightfield *SolidHeightfield
	openHeightfield  *OpenHeightfield
	contours         *ContourSet
	polyMesh         *PolyMeshField
}

func NewIntermediateData() *IntermediateData {
	d := &IntermediateData{}
	d.Reset()
	return d
}

// Reset marks every stage as not run and drops the retained data.
func (d *IntermediateData) Reset() {
	d.VoxelizationTime = Undefined
	d.RegionGenTime = Undefined
	d.ContourGenTime = Undefined
	d.PolyGenTime = Undefined
	d.FinalMeshGenTime = Undefined
	d.solidHeightfield = nil
	d.openHeightfield = nil
	d.contours = nil
	d.polyMesh = nil
}

// TotalGenTime is the sum of the stage timings, or Undefined if the final
// stage never completed.
func (d *IntermediateData) TotalGenTime() time.Duration {
	if d.FinalMeshGenTime == Undefined {
		return Undefined
	}
	return d.VoxelizationTime + d.RegionGenTime + d.ContourGenTime + d.PolyGenTime + d.FinalMeshGenTime
}

func (d *IntermediateData) SolidHeightfield() *SolidHeightfield {
	return d.solidHeightfield
}

func (d *IntermediateData) OpenHeightfield() *OpenHeightfield {
	return d.openHeightfield
}

func (d *IntermediateData) Contours() *ContourSet {
	return d.contours
}

func (d *IntermediateData) PolyMesh() *PolyMeshField {
	return d.polyMesh
}
