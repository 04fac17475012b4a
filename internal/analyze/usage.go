package analyze

import "math"

// Usage accumulates per-request document accounting. It is an explicit value
// threaded through the pipeline, never package state, so parallel runs
// cannot interfere.
type Usage struct {
	SizeBytes     int64   `json:"size_bytes"`
	SizeKB        float64 `json:"size_kb"`
	SizeMB        float64 `json:"size_mb"`
	Pages         int     `json:"pages"`
	ProviderPages int     `json:"provider_pages"`
}

// SetDocumentSize records the document size in all units.
func (u *Usage) SetDocumentSize(n int64) {
	u.SizeBytes = n
	u.SizeKB = math.Round(float64(n)/1024*100) / 100
	u.SizeMB = math.Round(float64(n)/(1024*1024)*10000) / 10000
}

// SetPages records the page count, which is also what the provider bills on.
func (u *Usage) SetPages(n int) {
	u.Pages = n
	u.ProviderPages = n
}
