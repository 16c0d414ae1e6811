package repository

import "errors"

var (
	// ErrFetchTimeout signals the fetch exceeded its deadline.
	ErrFetchTimeout = errors.New("fetch timed out")
	// ErrFetchFailed signals a transport error or a non-success status.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrNoListingData signals a valid fetch with no extractable fields.
	ErrNoListingData = errors.New("no extractable listing data")
	// ErrNotFound signals a missing row.
	ErrNotFound = errors.New("record not found")
)
