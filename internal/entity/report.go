package entity

import (
	"github.com/joseph-ayodele/docextract/constants"
)

// KeyValuePair is one extracted form field. Confidence is on the unit
// interval, rounded to 3 decimals.
type KeyValuePair struct {
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Table is one reconstructed grid. Rows are indexed from the provider's
// row indices; a row with no cells in the source is an empty slice.
type Table struct {
	Page int        `json:"page"`
	Rows [][]string `json:"rows"`
}

// Rect is a bounding box rounded to 4 decimals for report output.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Signature is one detected signature with its confidence verdict.
type Signature struct {
	ID         string                    `json:"id"`
	Page       int                       `json:"page"`
	Confidence float64                   `json:"confidence"`
	Location   Rect                      `json:"location"`
	Status     constants.SignatureStatus `json:"status"`
}

// ReviewItem is one entry routed to a human reviewer.
type ReviewItem struct {
	Type       string  `json:"type"`
	ID         string  `json:"id"`
	Page       int     `json:"page"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// DocumentInfo describes the analyzed document.
type DocumentInfo struct {
	Source      string `json:"source"`
	Pages       int    `json:"pages"`
	ProcessedAt string `json:"processed_at"`
}

// Summary holds the report's headline counts.
type Summary struct {
	KeyValueCount   int `json:"key_value_count"`
	TableCount      int `json:"table_count"`
	SignatureCount  int `json:"signature_count"`
	ValidSignatures int `json:"valid_signatures"`
}

// HumanReview flags the report for manual follow-up.
type HumanReview struct {
	Required bool         `json:"required"`
	Items    []ReviewItem `json:"items"`
}

// ExtractionReport is the terminal artifact of one extraction pass. The
// caller owns it exclusively once returned.
type ExtractionReport struct {
	Document    DocumentInfo   `json:"document"`
	KeyValues   []KeyValuePair `json:"key_values"`
	Tables      []Table        `json:"tables"`
	Signatures  []Signature    `json:"signatures"`
	Summary     Summary        `json:"summary"`
	HumanReview HumanReview    `json:"human_review"`
}
