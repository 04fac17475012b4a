package entity

import (
	"github.com/joseph-ayodele/docextract/constants"
)

// Block is one recognized document element from the OCR provider.
// Fields the provider omitted stay at their zero values; extractors default
// them rather than failing the pass.
type Block struct {
	ID            string              `json:"id"`
	BlockType     constants.BlockType `json:"block_type"`
	Page          int                 `json:"page,omitempty"`
	Confidence    float64             `json:"confidence,omitempty"` // provider scale, 0-100
	Text          string              `json:"text,omitempty"`       // WORD / LINE only
	EntityTypes   []string            `json:"entity_types,omitempty"`
	Relationships []Relationship      `json:"relationships,omitempty"`
	BoundingBox   *BoundingBox        `json:"bounding_box,omitempty"`
	RowIndex      int                 `json:"row_index,omitempty"`    // CELL only
	ColumnIndex   int                 `json:"column_index,omitempty"` // CELL only
}

// Relationship is an edge from one block to others, by id only. Targets may
// be dangling in malformed input; lookups treat those as absent.
type Relationship struct {
	Type constants.RelationshipType `json:"type"`
	IDs  []string                   `json:"ids"`
}

// BoundingBox is a normalized (0-1) rectangle on the page.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// HasEntityType reports whether the block carries the given entity tag.
func (b Block) HasEntityType(t constants.EntityType) bool {
	for _, et := range b.EntityTypes {
		if et == t {
			return true
		}
	}
	return false
}

// PageOrDefault returns the block's page, defaulting to 1 when absent.
func (b Block) PageOrDefault() int {
	if b.Page < 1 {
		return 1
	}
	return b.Page
}
