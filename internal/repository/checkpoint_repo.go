package repository

import (
	"context"

	"github.com/user/listing-harvester/internal/entity"
)

// CheckpointRepository records observational progress counters per
// keyword/domain pair. Callers treat every failure as non-fatal.
type CheckpointRepository interface {
	RecordDiscovered(ctx context.Context, keyword, domain string, n int64) error
	RecordProcessed(ctx context.Context, keyword, domain string, n int64) error
	RecordSaved(ctx context.Context, keyword, domain string, n int64) error
	Progress(ctx context.Context, keyword, domain string) (*entity.Progress, error)
}
