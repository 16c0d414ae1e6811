package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/user/listing-harvester/internal/entity"
)

const checkpointKeyPrefix = "harvest:checkpoint:"

// CheckpointRepoImpl keeps the per-keyword/domain progress counters in Redis
// hashes. The counters are observational only: callers log and swallow any
// error returned here.
type CheckpointRepoImpl struct {
	client *redis.Client
}

// NewCheckpointRepo creates a new instance of CheckpointRepoImpl.
func NewCheckpointRepo(client *redis.Client) *CheckpointRepoImpl {
	return &CheckpointRepoImpl{client: client}
}

func checkpointKey(keyword, domain string) string {
	return fmt.Sprintf("%s%s:%s", checkpointKeyPrefix, domain, keyword)
}

// RecordDiscovered adds to the discovered-links counter.
func (r *CheckpointRepoImpl) RecordDiscovered(ctx context.Context, keyword, domain string, n int64) error {
	return r.client.HIncrBy(ctx, checkpointKey(keyword, domain), "discovered", n).Err()
}

// RecordProcessed adds to the processed-links counter.
func (r *CheckpointRepoImpl) RecordProcessed(ctx context.Context, keyword, domain string, n int64) error {
	return r.client.HIncrBy(ctx, checkpointKey(keyword, domain), "processed", n).Err()
}

// RecordSaved adds to the saved-listings counter.
func (r *CheckpointRepoImpl) RecordSaved(ctx context.Context, keyword, domain string, n int64) error {
	return r.client.HIncrBy(ctx, checkpointKey(keyword, domain), "saved", n).Err()
}

// Progress reads the counters back for one keyword/domain pair. Missing
// fields read as zero.
func (r *CheckpointRepoImpl) Progress(ctx context.Context, keyword, domain string) (*entity.Progress, error) {
	fields, err := r.client.HGetAll(ctx, checkpointKey(keyword, domain)).Result()
	if err != nil {
		return nil, err
	}
	return &entity.Progress{
		Keyword:    keyword,
		Domain:     domain,
		Discovered: parseCounter(fields["discovered"]),
		Processed:  parseCounter(fields["processed"]),
		Saved:      parseCounter(fields["saved"]),
	}, nil
}

func parseCounter(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
