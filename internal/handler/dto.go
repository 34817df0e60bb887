package handler

type DigestResponse struct {
	ID           int64   `json:"id"`
	RunID        string  `json:"run_id"`
	Date         string  `json:"date"`
	Body         string  `json:"body"`
	ModelUsed    string  `json:"model_used"`
	SegmentCount int     `json:"segment_count"`
	SegmentBytes []int64 `json:"segment_bytes"`
	SentCount    int     `json:"sent_count"`
	FailedCount  int     `json:"failed_count"`
	CreatedAt    string  `json:"created_at"`
}

type DigestListItem struct {
	ID           int64  `json:"id"`
	Date         string `json:"date"`
	Preview      string `json:"preview"`
	SegmentCount int    `json:"segment_count"`
	FailedCount  int    `json:"failed_count"`
	CreatedAt    string `json:"created_at"`
}

type DigestsResponse struct {
	Digests []DigestListItem `json:"digests"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}
