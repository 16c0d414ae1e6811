package request

type SubmitLinkRequest struct {
	URL     string `json:"url"`
	Domain  string `json:"domain"`
	Keyword string `json:"keyword"`
}

type SubmitLinkBatchRequest struct {
	URLs    []string `json:"urls"`
	Domain  string   `json:"domain"`
	Keyword string   `json:"keyword"`
}

type ExportRequest struct {
	Format string `json:"format"` // "csv", "json" or "xlsx"
	Limit  int    `json:"limit"`
}

type HarvestRequest struct {
	Domain string `json:"domain"`
}
