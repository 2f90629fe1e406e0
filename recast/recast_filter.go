package recast

import (
	"math"

	"github.com/gorustyt/gonmgen/common"
)

// unboundedHeight stands in for the open space above the top span of a column.
const unboundedHeight = math.MaxInt

// markLowHeightSpans removes the walkable flag from spans which do not have
// enough space above them for the agent to stand there.
func (b *SolidHeightfieldBuilder) markLowHeightSpans(field *SolidHeightfield) {
	field.ForEach(func(widthIndex, depthIndex, handle int) {
		span := field.Span(handle)
		if !span.Walkable() {
			return
		}
		bot := span.Max
		top := unboundedHeight
		if next := span.next; next != NullSpan {
			top = field.Span(next).Min
		}
		if top-bot <= b.minTraversableHeight {
			span.Flags &^= SpanFlagWalkable
		}
	})
}

// markLedgeSpans removes the walkable flag from spans next to a drop that is
// larger than the traversable step. Missing neighbor columns count as drops.
func (b *SolidHeightfieldBuilder) markLedgeSpans(field *SolidHeightfield) {
	maxStep := b.maxTraversableStep
	minHeight := b.minTraversableHeight

	// Decisions are collected first so that clearing one span cannot change
	// the outcome for its neighbors.
	var ledges []int
	field.ForEach(func(widthIndex, depthIndex, handle int) {
		span := field.Span(handle)
		if !span.Walkable() {
			return
		}
		bot := span.Max
		top := unboundedHeight
		if span.next != NullSpan {
			top = field.Span(span.next).Min
		}

		minNeighborDrop := unboundedHeight
		for dir := 0; dir < 4; dir++ {
			nWidth := widthIndex + common.GetDirOffsetWidth(dir)
			nDepth := depthIndex + common.GetDirOffsetDepth(dir)
			if !field.IsInBounds(nWidth, nDepth) {
				minNeighborDrop = min(minNeighborDrop, -maxStep-bot)
				continue
			}

			// From minus infinity to the first span.
			nHandle := field.FirstSpan(nWidth, nDepth)
			nBot := -maxStep
			nTop := unboundedHeight
			if nHandle != NullSpan {
				nTop = field.Span(nHandle).Min
			}
			if min(top, nTop)-max(bot, nBot) > minHeight {
				minNeighborDrop = min(minNeighborDrop, nBot-bot)
			}

			for ; nHandle != NullSpan; nHandle = field.Next(nHandle) {
				nSpan := field.Span(nHandle)
				nBot = nSpan.Max
				nTop = unboundedHeight
				if nSpan.next != NullSpan {
					nTop = field.Span(nSpan.next).Min
				}
				if min(top, nTop)-max(bot, nBot) > minHeight {
					minNeighborDrop = min(minNeighborDrop, nBot-bot)
				}
			}
		}
		if minNeighborDrop < -maxStep {
			ledges = append(ledges, handle)
		}
	})
	for _, handle := range ledges {
		field.Span(handle).Flags &^= SpanFlagWalkable
	}
}
