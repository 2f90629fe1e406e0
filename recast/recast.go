package recast

import (
	"github.com/gorustyt/gonmgen/common"
)

// OpenHeightfieldAlgorithm post-processes the region assignment of a field.
// Implementations log and leave the field untouched on invalid input.
type OpenHeightfieldAlgorithm interface {
	Apply(field *OpenHeightfield, log Logger)
}

// OpenHeightfieldBuilder turns a SolidHeightfield into an OpenHeightfield and
// partitions its spans into regions.
type OpenHeightfieldBuilder struct {
	minTraversableHeight      int
	maxTraversableStep        int
	smoothingThreshold        int
	traversableAreaBorderSize int
	useConservativeExpansion  bool
	regionAlgorithms          []OpenHeightfieldAlgorithm
	log                       Logger
}

// NewOpenHeightfieldBuilder takes every size in voxel units. The smoothing
// threshold is clamped to [0,4].
func NewOpenHeightfieldBuilder(minTraversableHeight, maxTraversableStep, smoothingThreshold,
	traversableAreaBorderSize int, useConservativeExpansion bool,
	regionAlgorithms []OpenHeightfieldAlgorithm, log Logger) *OpenHeightfieldBuilder {
	return &OpenHeightfieldBuilder{
		minTraversableHeight:      max(1, minTraversableHeight),
		maxTraversableStep:        max(0, maxTraversableStep),
		smoothingThreshold:        common.Clamp(smoothingThreshold, 0, 4),
		traversableAreaBorderSize: max(0, traversableAreaBorderSize),
		useConservativeExpansion:  useConservativeExpansion,
		regionAlgorithms:          regionAlgorithms,
		log:                       orNop(log),
	}
}

// Build creates the open spans of every walkable solid span. With
// performFullGeneration the neighbor links, distance field, blur and regions
// are generated as well.
func (b *OpenHeightfieldBuilder) Build(source *SolidHeightfield, performFullGeneration bool) *OpenHeightfield {
	if source == nil {
		b.log.Errorf("[OpenHeightfieldBuilder][build] source field is nil")
		return nil
	}
	result, ok := newOpenHeightfield(source.boundsMin, source.boundsMax, source.cellSize, source.cellHeight)
	if !ok {
		b.log.Errorf("[OpenHeightfieldBuilder][build] invalid source bounds")
		return nil
	}

	for widthIndex := 0; widthIndex < source.width; widthIndex++ {
		for depthIndex := 0; depthIndex < source.depth; depthIndex++ {
			for h := source.FirstSpan(widthIndex, depthIndex); h != NullSpan; h = source.Next(h) {
				span := source.Span(h)
				if !span.Walkable() {
					continue
				}
				floor := span.Max
				ceiling := unboundedHeight
				if span.next != NullSpan {
					ceiling = source.Span(span.next).Min
				}
				if ceiling-floor < 1 {
					continue
				}
				result.addSpan(widthIndex, depthIndex, floor, ceiling-floor)
			}
		}
	}

	if performFullGeneration {
		b.GenerateNeighborLinks(result)
		b.GenerateDistanceField(result)
		b.BlurDistanceField(result)
		b.GenerateRegions(result)
	}
	return result
}

// GenerateNeighborLinks links every span to the first span of each adjacent
// column that an agent can step onto.
func (b *OpenHeightfieldBuilder) GenerateNeighborLinks(field *OpenHeightfield) {
	for h := range field.spans {
		span := &field.spans[h]
		for dir := 0; dir < 4; dir++ {
			nWidth := span.widthIndex + common.GetDirOffsetWidth(dir)
			nDepth := span.depthIndex + common.GetDirOffsetDepth(dir)
			field.setNeighbor(h, dir, NullSpan)
			for n := field.FirstSpan(nWidth, nDepth); n != NullSpan; n = field.Next(n) {
				nSpan := &field.spans[n]
				maxFloor := max(span.Floor, nSpan.Floor)
				minCeiling := min(span.Ceiling(), nSpan.Ceiling())
				if minCeiling-maxFloor >= b.minTraversableHeight &&
					common.Abs(nSpan.Floor-span.Floor) <= b.maxTraversableStep {
					field.setNeighbor(h, dir, n)
					break
				}
			}
		}
	}
}
