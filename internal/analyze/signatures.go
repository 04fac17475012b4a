package analyze

import (
	"fmt"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

// DefaultConfidenceThreshold is the minimum confidence for a signature to be
// accepted without review. The sole tunable of the extraction core.
const DefaultConfidenceThreshold = 0.85

// invalidFloor is fixed regardless of the configured threshold. A threshold
// configured below it leaves the needs_review band empty; that layering
// matches the source format's documented policy and is kept as-is.
const invalidFloor = 0.50

// SignatureResult groups the signature verdicts of one extraction pass.
type SignatureResult struct {
	Signatures       []entity.Signature
	Count            int
	ValidCount       int
	HumanReviewItems []entity.ReviewItem
}

// EvaluateSignatures applies the layered confidence policy to SIGNATURE
// blocks: confidence >= threshold is valid (inclusive boundary), then
// anything under the 0.50 floor is invalid, and the band between is routed
// to human review with a reason naming both percentages.
func EvaluateSignatures(blocks []entity.Block, threshold float64) SignatureResult {
	res := SignatureResult{
		Signatures:       make([]entity.Signature, 0),
		HumanReviewItems: make([]entity.ReviewItem, 0),
	}

	for _, b := range blocks {
		if b.BlockType != constants.BlockTypeSignature {
			continue
		}
		confidence := b.Confidence / 100

		status := constants.SignatureNeedsReview
		if confidence >= threshold {
			status = constants.SignatureValid
		}
		if confidence < invalidFloor {
			status = constants.SignatureInvalid
		}

		var location entity.Rect
		if b.BoundingBox != nil {
			location = entity.Rect{
				Left:   round4(b.BoundingBox.Left),
				Top:    round4(b.BoundingBox.Top),
				Width:  round4(b.BoundingBox.Width),
				Height: round4(b.BoundingBox.Height),
			}
		}

		sig := entity.Signature{
			ID:         b.ID,
			Page:       b.PageOrDefault(),
			Confidence: round3(confidence),
			Location:   location,
			Status:     status,
		}
		res.Signatures = append(res.Signatures, sig)

		switch status {
		case constants.SignatureValid:
			res.ValidCount++
		case constants.SignatureNeedsReview:
			res.HumanReviewItems = append(res.HumanReviewItems, entity.ReviewItem{
				Type:       "signature",
				ID:         sig.ID,
				Page:       sig.Page,
				Confidence: sig.Confidence,
				Reason:     fmt.Sprintf("Confidence %.0f%% below %.0f%% threshold", confidence*100, threshold*100),
			})
		}
	}

	res.Count = len(res.Signatures)
	return res
}
