package recast

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSolidHeightfield = errors.New("solid heightfield generation failed")
	ErrOpenHeightfield  = errors.New("open heightfield generation failed")
	ErrContourSet       = errors.New("contour generation failed")
	ErrPolyMesh         = errors.New("polygon mesh generation failed")
	ErrDetailMesh       = errors.New("detail mesh generation failed")
)

// NavmeshGenerator runs the full pipeline from a triangle soup to a
// triangle navigation mesh.
type NavmeshGenerator struct {
	solidBuilder   *SolidHeightfieldBuilder
	openBuilder    *OpenHeightfieldBuilder
	contourBuilder *ContourSetBuilder
	polyBuilder    *PolyMeshFieldBuilder
	detailBuilder  *DetailMeshBuilder
	log            Logger
}

// NewNavmeshGenerator clamps a copy of cfg and builds the stage builders.
func NewNavmeshGenerator(cfg *Config, log Logger) (*NavmeshGenerator, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	c := *cfg
	c.Clamp()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log = orNop(log)
	vx := c.voxelParams()

	regionAlgorithms := []OpenHeightfieldAlgorithm{
		NewCleanNullRegionBorders(vx.traversableAreaBorderSize > 0),
		NewFilterOutSmallRegions(c.MinUnconnectedRegionSize, c.MergeRegionSize),
	}
	contourAlgorithms := []ContourAlgorithm{
		NewMatchNullRegionEdges(c.EdgeMaxDeviation / c.CellSize),
		NewNullRegionMaxEdge(vx.maxEdgeLength),
	}

	return &NavmeshGenerator{
		solidBuilder: NewSolidHeightfieldBuilder(c.CellSize, c.CellHeight,
			vx.minTraversableHeight, vx.maxTraversableStep, c.MaxTraversableSlope, c.ClipLedges, log),
		openBuilder: NewOpenHeightfieldBuilder(vx.minTraversableHeight, vx.maxTraversableStep,
			c.SmoothingThreshold, vx.traversableAreaBorderSize, c.UseConservativeExpansion, regionAlgorithms, log),
		contourBuilder: NewContourSetBuilder(contourAlgorithms, log),
		polyBuilder:    NewPolyMeshFieldBuilder(c.MaxVertsPerPoly, log),
		detailBuilder:  NewDetailMeshBuilder(c.ContourSampleDistance, c.ContourMaxDeviation, log),
		log:            log,
	}, nil
}

// Build generates the mesh. vertices holds (x, y, z) triples and indices
// holds three vertex indices per triangle. When data is not nil it is reset
// and then filled with the stage outputs and timings.
func (g *NavmeshGenerator) Build(vertices []float64, indices []int, data *IntermediateData) (*TriangleMesh, error) {
	if data != nil {
		data.Reset()
	}

	start := time.Now()
	solidField := g.solidBuilder.Build(vertices, indices)
	if solidField == nil || !solidField.HasSpans() {
		return nil, ErrSolidHeightfield
	}
	if data != nil {
		data.VoxelizationTime = time.Since(start)
		data.solidHeightfield = solidField
	}

	start = time.Now()
	openField := g.openBuilder.Build(solidField, false)
	if openField == nil {
		return nil, ErrOpenHeightfield
	}
	if data != nil {
		data.openHeightfield = openField
	}
	g.openBuilder.GenerateNeighborLinks(openField)
	g.openBuilder.GenerateDistanceField(openField)
	g.openBuilder.BlurDistanceField(openField)
	g.openBuilder.GenerateRegions(openField)
	if data != nil {
		data.RegionGenTime = time.Since(start)
	}

	start = time.Now()
	contours := g.contourBuilder.Build(openField)
	if contours == nil {
		return nil, fmt.Errorf("%w: %d regions", ErrContourSet, openField.RegionCount())
	}
	if data != nil {
		data.ContourGenTime = time.Since(start)
		data.contours = contours
	}

	start = time.Now()
	polyMesh := g.polyBuilder.Build(contours)
	if polyMesh == nil {
		return nil, fmt.Errorf("%w: %d contours", ErrPolyMesh, contours.Size())
	}
	if data != nil {
		data.PolyGenTime = time.Since(start)
		data.polyMesh = polyMesh
	}

	start = time.Now()
	mesh := g.detailBuilder.Build(polyMesh, openField)
	if mesh == nil {
		return nil, fmt.Errorf("%w: %d polygons", ErrDetailMesh, polyMesh.PolyCount())
	}
	if data != nil {
		data.FinalMeshGenTime = time.Since(start)
	}
	g.log.Infof("[NavmeshGenerator][build] generated %d triangles from %d polygons in %d regions",
		mesh.TriangleCount(), polyMesh.PolyCount(), openField.RegionCount()-1)
	return mesh, nil
}
