package model

import "time"

type Digest struct {
	ID           int64
	RunID        string
	DigestDate   time.Time
	Body         string
	ModelUsed    string
	SegmentCount int
	SegmentBytes []int64
	SentCount    int
	FailedCount  int
	CreatedAt    time.Time
}
