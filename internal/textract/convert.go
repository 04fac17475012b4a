package textract

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

func fromProviderBlocks(in []types.Block) []entity.Block {
	out := make([]entity.Block, 0, len(in))
	for _, b := range in {
		out = append(out, fromProviderBlock(b))
	}
	return out
}

func fromProviderBlock(b types.Block) entity.Block {
	eb := entity.Block{
		ID:          aws.ToString(b.Id),
		BlockType:   constants.BlockType(b.BlockType),
		Page:        int(aws.ToInt32(b.Page)),
		Confidence:  float64(aws.ToFloat32(b.Confidence)),
		Text:        aws.ToString(b.Text),
		RowIndex:    int(aws.ToInt32(b.RowIndex)),
		ColumnIndex: int(aws.ToInt32(b.ColumnIndex)),
	}
	for _, et := range b.EntityTypes {
		eb.EntityTypes = append(eb.EntityTypes, string(et))
	}
	for _, rel := range b.Relationships {
		eb.Relationships = append(eb.Relationships, entity.Relationship{
			Type: constants.RelationshipType(rel.Type),
			IDs:  rel.Ids,
		})
	}
	if b.Geometry != nil && b.Geometry.BoundingBox != nil {
		bb := b.Geometry.BoundingBox
		eb.BoundingBox = &entity.BoundingBox{
			Left:   float64(bb.Left),
			Top:    float64(bb.Top),
			Width:  float64(bb.Width),
			Height: float64(bb.Height),
		}
	}
	return eb
}
