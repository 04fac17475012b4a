package analyze

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/entity"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func thresholdOf(v float64) *float64 { return &v }

func sampleBlocks() []entity.Block {
	return []entity.Block{
		{ID: "A", BlockType: constants.BlockTypeKeyValueSet, EntityTypes: []string{"KEY"}, Confidence: 90, Page: 1,
			Relationships: []entity.Relationship{child("B"), valueRel("C")}},
		word("B", "Name"),
		{ID: "C", BlockType: constants.BlockTypeKeyValueSet, Confidence: 80, Relationships: []entity.Relationship{child("D")}},
		word("D", "Alice"),
		{ID: "t1", BlockType: constants.BlockTypeTable, Page: 2, Relationships: []entity.Relationship{child("c1")}},
		cell("c1", 1, 1, "w1"),
		word("w1", "cell"),
		sig("s1", 60),
	}
}

func TestBuildReport_EmptyInput(t *testing.T) {
	report := BuildReport(nil, Options{Source: "empty.pdf", Now: fixedClock})

	if report.Document.Pages != 0 {
		t.Errorf("pages = %d, want 0", report.Document.Pages)
	}
	if len(report.KeyValues) != 0 || len(report.Tables) != 0 || len(report.Signatures) != 0 {
		t.Errorf("expected empty collections: %+v", report)
	}
	if report.Summary != (entity.Summary{}) {
		t.Errorf("summary = %+v, want zeros", report.Summary)
	}
	if report.HumanReview.Required {
		t.Error("human review must not be required for empty input")
	}

	// empty collections serialize as arrays, not null
	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(raw, []byte("null")) {
		t.Errorf("empty report contains null collections: %s", raw)
	}
}

func TestBuildReport_Compose(t *testing.T) {
	report := BuildReport(sampleBlocks(), Options{Source: "s3://docs/contract.pdf", Now: fixedClock})

	if report.Document.Source != "s3://docs/contract.pdf" {
		t.Errorf("source = %q", report.Document.Source)
	}
	// pages: page 1 (several blocks), page 2 (table)
	if report.Document.Pages != 2 {
		t.Errorf("pages = %d, want 2", report.Document.Pages)
	}
	if report.Document.ProcessedAt != "2025-06-01T12:00:00Z" {
		t.Errorf("processed_at = %q", report.Document.ProcessedAt)
	}
	want := entity.Summary{KeyValueCount: 1, TableCount: 1, SignatureCount: 1, ValidSignatures: 0}
	if report.Summary != want {
		t.Errorf("summary = %+v, want %+v", report.Summary, want)
	}
	if !report.HumanReview.Required || len(report.HumanReview.Items) != 1 {
		t.Errorf("human review = %+v, want required with 1 item", report.HumanReview)
	}
}

func TestBuildReport_Idempotent(t *testing.T) {
	blocks := sampleBlocks()
	opts := Options{Source: "x", Threshold: thresholdOf(0.85), Now: fixedClock}

	first, err := json.Marshal(BuildReport(blocks, opts))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(BuildReport(blocks, opts))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("report not byte-identical across runs:\n%s\n%s", first, second)
	}
}

func TestBuildReport_DefaultThreshold(t *testing.T) {
	// 90% is below nothing at the default 0.85, so it is valid.
	report := BuildReport([]entity.Block{sig("s1", 90)}, Options{Now: fixedClock})
	if report.Signatures[0].Status != constants.SignatureValid {
		t.Errorf("status = %q, want valid under default threshold", report.Signatures[0].Status)
	}

	// a stricter explicit threshold flips it to review
	report = BuildReport([]entity.Block{sig("s1", 90)}, Options{Threshold: thresholdOf(0.95), Now: fixedClock})
	if report.Signatures[0].Status != constants.SignatureNeedsReview {
		t.Errorf("status = %q, want needs_review at threshold 0.95", report.Signatures[0].Status)
	}
}

func TestBuildReport_ExplicitZeroThreshold(t *testing.T) {
	// Zero is a real threshold, not "use the default": 60% clears it.
	report := BuildReport([]entity.Block{sig("s1", 60)}, Options{Threshold: thresholdOf(0), Now: fixedClock})
	if report.Signatures[0].Status != constants.SignatureValid {
		t.Errorf("status = %q, want valid at threshold 0", report.Signatures[0].Status)
	}
	if report.HumanReview.Required {
		t.Error("no review expected at threshold 0")
	}

	// Omitting the threshold still means the default.
	report = BuildReport([]entity.Block{sig("s1", 60)}, Options{Now: fixedClock})
	if report.Signatures[0].Status != constants.SignatureNeedsReview {
		t.Errorf("status = %q, want needs_review under the default", report.Signatures[0].Status)
	}
}

func TestCountPages(t *testing.T) {
	blocks := []entity.Block{
		{ID: "a", Page: 1},
		{ID: "b", Page: 3},
		{ID: "c", Page: 3},
		{ID: "d"}, // no page -> counts as page 1
	}
	if got := CountPages(blocks); got != 2 {
		t.Errorf("CountPages = %d, want 2", got)
	}
	if got := CountPages(nil); got != 0 {
		t.Errorf("CountPages(nil) = %d, want 0", got)
	}
}

func TestPlainText(t *testing.T) {
	blocks := []entity.Block{
		{ID: "l1", BlockType: constants.BlockTypeLine, Text: "INVOICE"},
		word("w1", "noise"),
		{ID: "l2", BlockType: constants.BlockTypeLine, Text: "Total: 42.00"},
	}
	if got := PlainText(blocks); got != "INVOICE\nTotal: 42.00" {
		t.Errorf("PlainText = %q", got)
	}
	if got := PlainText(nil); got != "" {
		t.Errorf("PlainText(nil) = %q, want empty", got)
	}
}

func TestUsage_Accumulator(t *testing.T) {
	var u Usage
	u.SetDocumentSize(1536)
	u.SetPages(3)

	if u.SizeBytes != 1536 || u.SizeKB != 1.5 {
		t.Errorf("sizes = %+v", u)
	}
	if u.Pages != 3 || u.ProviderPages != 3 {
		t.Errorf("pages = %+v", u)
	}
}
