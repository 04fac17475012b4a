package analyze

import (
	"math"
	"strings"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

// ExtractKeyValues walks KEY-side KEY_VALUE_SET blocks and resolves their
// text through the index. Output order follows the appearance order of KEY
// blocks in the input.
//
// Key text comes from CHILD->WORD traversal; value text from
// VALUE->CHILD->WORD. A key with several VALUE edges has all of them
// concatenated, and the last value block's confidence wins. Pairs with an
// empty trimmed key are not emitted; an empty value is fine.
func ExtractKeyValues(blocks []entity.Block, index BlockIndex) []entity.KeyValuePair {
	pairs := make([]entity.KeyValuePair, 0)
	for _, b := range blocks {
		if b.BlockType != constants.BlockTypeKeyValueSet || !b.HasEntityType(constants.EntityTypeKey) {
			continue
		}

		var key, value strings.Builder
		keyConfidence := b.Confidence
		valueConfidence := 0.0

		for _, rel := range b.Relationships {
			if rel.Type != constants.RelationshipChild {
				continue
			}
			for _, id := range rel.IDs {
				child, ok := index.Lookup(id)
				if ok && child.BlockType == constants.BlockTypeWord {
					key.WriteString(child.Text)
					key.WriteString(" ")
				}
			}
		}

		for _, rel := range b.Relationships {
			if rel.Type != constants.RelationshipValue {
				continue
			}
			for _, id := range rel.IDs {
				valueBlock, ok := index.Lookup(id)
				if !ok {
					// dangling reference: zero confidence, no text
					valueConfidence = 0
					continue
				}
				valueConfidence = valueBlock.Confidence
				for _, vrel := range valueBlock.Relationships {
					if vrel.Type != constants.RelationshipChild {
						continue
					}
					for _, cid := range vrel.IDs {
						word, ok := index.Lookup(cid)
						if ok && word.BlockType == constants.BlockTypeWord {
							value.WriteString(word.Text)
							value.WriteString(" ")
						}
					}
				}
			}
		}

		k := strings.TrimSpace(key.String())
		if k == "" {
			continue
		}
		pairs = append(pairs, entity.KeyValuePair{
			Key:        k,
			Value:      strings.TrimSpace(value.String()),
			Confidence: round3((keyConfidence + valueConfidence) / 2 / 100),
		})
	}
	return pairs
}

func round3(f float64) float64 { return math.Round(f*1000) / 1000 }

func round4(f float64) float64 { return math.Round(f*10000) / 10000 }
