// Package analyze turns raw OCR block output into structured key-value
// pairs, tables, and signature verdicts with human-review routing.
//
// Every function here is a pure, total transformation of its block input:
// missing fields default, dangling relationship ids are treated as absent,
// and an empty block list yields an empty report. Extractors share only the
// immutable BlockIndex, so they are safe to run concurrently.
package analyze

import (
	"github.com/joseph-ayodele/docextract/internal/entity"
)

// BlockIndex is an arena of blocks keyed by id. Relationships reference
// blocks by id only, so traversal never forms ownership cycles.
type BlockIndex map[string]entity.Block

// NewBlockIndex builds the id lookup in one O(n) pass. Duplicate ids should
// not occur in well-formed input; the last occurrence wins if they do.
func NewBlockIndex(blocks []entity.Block) BlockIndex {
	idx := make(BlockIndex, len(blocks))
	for _, b := range blocks {
		idx[b.ID] = b
	}
	return idx
}

// Lookup returns the block for id, reporting whether it resolves.
func (ix BlockIndex) Lookup(id string) (entity.Block, bool) {
	b, ok := ix[id]
	return b, ok
}
