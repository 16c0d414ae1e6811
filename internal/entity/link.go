package entity

import "time"

// LinkStatus is the work-queue state of a crawl target.
type LinkStatus string

const (
	LinkPending   LinkStatus = "pending"
	LinkRetry     LinkStatus = "retry"
	LinkDone      LinkStatus = "done"
	LinkError     LinkStatus = "error"
	LinkExhausted LinkStatus = "exhausted"
)

// Link mirrors the `links` table schema. The ID is a deterministic hash of
// the normalized URL, so the same URL always collapses onto one row.
type Link struct {
	ID        string
	URL       string
	Domain    string
	Keyword   string
	Status    LinkStatus
	Attempts  int
	CreatedAt time.Time
}
