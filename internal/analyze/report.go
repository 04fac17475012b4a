package analyze

import (
	"strings"
	"time"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

// Options configures one report build.
type Options struct {
	// Source labels the report (s3 uri, file path, ...).
	Source string
	// Threshold is the signature confidence threshold in [0,1]. Nil means
	// DefaultConfidenceThreshold; an explicit zero is a real threshold that
	// accepts every signature.
	Threshold *float64
	// Now overrides the processed_at clock; nil means time.Now. Tests pin it.
	Now func() time.Time
}

// BuildReport runs all extractors over the block list and assembles the
// terminal report. Deterministic for a fixed clock: the same blocks yield a
// byte-identical report.
func BuildReport(blocks []entity.Block, opts Options) entity.ExtractionReport {
	threshold := DefaultConfidenceThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	index := NewBlockIndex(blocks)
	keyValues := ExtractKeyValues(blocks, index)
	tables := ExtractTables(blocks, index)
	sigs := EvaluateSignatures(blocks, threshold)

	return entity.ExtractionReport{
		Document: entity.DocumentInfo{
			Source:      opts.Source,
			Pages:       CountPages(blocks),
			ProcessedAt: now().UTC().Format(time.RFC3339),
		},
		KeyValues:  keyValues,
		Tables:     tables,
		Signatures: sigs.Signatures,
		Summary: entity.Summary{
			KeyValueCount:   len(keyValues),
			TableCount:      len(tables),
			SignatureCount:  sigs.Count,
			ValidSignatures: sigs.ValidCount,
		},
		HumanReview: entity.HumanReview{
			Required: len(sigs.HumanReviewItems) > 0,
			Items:    sigs.HumanReviewItems,
		},
	}
}

// CountPages counts distinct page numbers across the blocks. A block without
// a page counts as page 1.
func CountPages(blocks []entity.Block) int {
	pages := make(map[int]struct{}, 4)
	for _, b := range blocks {
		pages[b.PageOrDefault()] = struct{}{}
	}
	return len(pages)
}

// PlainText joins the text of LINE blocks in input order, one per line.
// This is the raw-text view of a document, with no structure applied.
func PlainText(blocks []entity.Block) string {
	var sb strings.Builder
	first := true
	for _, b := range blocks {
		if b.BlockType != constants.BlockTypeLine {
			continue
		}
		if !first {
			sb.WriteString("\n")
		}
		sb.WriteString(b.Text)
		first = false
	}
	return sb.String()
}
