// Package ingest brings provider block dumps into the pipeline: it decodes
// the provider's native JSON casing into the internal block model and
// watches a drop directory for new dumps.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

// wire types mirror the provider's response casing. Dumps are either a full
// analysis response ({"Blocks": [...]}) or a bare block array.
type wireDump struct {
	Blocks []wireBlock `json:"Blocks"`
}

type wireBlock struct {
	ID            string             `json:"Id"`
	BlockType     string             `json:"BlockType"`
	Page          int                `json:"Page"`
	Confidence    float64            `json:"Confidence"`
	Text          string             `json:"Text"`
	EntityTypes   []string           `json:"EntityTypes"`
	RowIndex      int                `json:"RowIndex"`
	ColumnIndex   int                `json:"ColumnIndex"`
	Relationships []wireRelationship `json:"Relationships"`
	Geometry      *wireGeometry      `json:"Geometry"`
}

type wireRelationship struct {
	Type string   `json:"Type"`
	IDs  []string `json:"Ids"`
}

type wireGeometry struct {
	BoundingBox *wireBoundingBox `json:"BoundingBox"`
}

type wireBoundingBox struct {
	Left   float64 `json:"Left"`
	Top    float64 `json:"Top"`
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
}

// DecodeBlocks reads a block dump. Both the enveloped and the bare-array
// forms are accepted.
func DecodeBlocks(r io.Reader) ([]entity.Block, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read block dump: %w", err)
	}

	var wire []wireBlock
	if err := json.Unmarshal(raw, &wire); err != nil {
		var dump wireDump
		if err := json.Unmarshal(raw, &dump); err != nil {
			return nil, fmt.Errorf("decode block dump: %w", err)
		}
		wire = dump.Blocks
	}

	blocks := make([]entity.Block, 0, len(wire))
	for _, w := range wire {
		blocks = append(blocks, fromWire(w))
	}
	return blocks, nil
}

// DecodeBlocksFile reads a block dump from disk.
func DecodeBlocksFile(path string) ([]entity.Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open block dump: %w", err)
	}
	defer f.Close()
	return DecodeBlocks(f)
}

func fromWire(w wireBlock) entity.Block {
	b := entity.Block{
		ID:          w.ID,
		BlockType:   constants.BlockType(w.BlockType),
		Page:        w.Page,
		Confidence:  w.Confidence,
		Text:        w.Text,
		EntityTypes: w.EntityTypes,
		RowIndex:    w.RowIndex,
		ColumnIndex: w.ColumnIndex,
	}
	for _, rel := range w.Relationships {
		b.Relationships = append(b.Relationships, entity.Relationship{
			Type: constants.RelationshipType(rel.Type),
			IDs:  rel.IDs,
		})
	}
	if w.Geometry != nil && w.Geometry.BoundingBox != nil {
		bb := w.Geometry.BoundingBox
		b.BoundingBox = &entity.BoundingBox{Left: bb.Left, Top: bb.Top, Width: bb.Width, Height: bb.Height}
	}
	return b
}

// FileSource loads blocks from local dump files; it satisfies the
// pipeline's block source contract.
type FileSource struct{}

func (FileSource) Fetch(_ context.Context, source string) ([]entity.Block, error) {
	return DecodeBlocksFile(source)
}
