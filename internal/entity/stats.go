package entity

// Stats aggregates work-queue and listing counters for progress reporting.
type Stats struct {
	TotalListings int64 `json:"total_listings"`
	TotalLinks    int64 `json:"total_links"`
	Done          int64 `json:"done"`
	Pending       int64 `json:"pending"`
	Error         int64 `json:"error"`
	Exhausted     int64 `json:"exhausted"`
}

// Progress holds the observational per-keyword/domain checkpoint counters.
// It is informational only and never required for correctness.
type Progress struct {
	Keyword    string `json:"keyword"`
	Domain     string `json:"domain"`
	Discovered int64  `json:"discovered"`
	Processed  int64  `json:"processed"`
	Saved      int64  `json:"saved"`
}

// Page is what an injected fetcher returns for one URL.
type Page struct {
	StatusCode int
	Body       string
}
