package response

type SubmitLinkResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	LinkID  string `json:"link_id"`
}

type SubmitLinkBatchResponse struct {
	Status    string `json:"status"`
	Submitted int    `json:"submitted"`
}

type ExportResponse struct {
	Status string `json:"status"`
	File   string `json:"file"`
}

type HarvestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
