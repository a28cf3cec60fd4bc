package stats

import (
	"context"

	"github.com/pkg/errors"
)

// BatchReader is the storage collaborator. MultiGet resolves every key in a single atomic
// round trip and returns one bucket per key, in key order; a key without data yields an
// empty bucket rather than an error. Implementations must be safe for concurrent use.
type BatchReader interface {
	MultiGet(ctx context.Context, keys []StatKey) ([]DayBucket, error)
}

// Fetch reads all keys with one batch read. On failure it returns a KindStorageFailure
// error and no buckets.
func Fetch(ctx context.Context, reader BatchReader, keys []StatKey) ([]DayBucket, error) {
	if len(keys) == 0 {
		return []DayBucket{}, nil
	}

	buckets, err := reader.MultiGet(ctx, keys)
	if err != nil {
		return nil, storageFailure(err)
	}
	if len(buckets) != len(keys) {
		return nil, storageFailure(errors.Errorf("batch read returned %d buckets for %d keys", len(buckets), len(keys)))
	}

	for i, b := range buckets {
		if b == nil {
			buckets[i] = DayBucket{}
		}
	}
	return buckets, nil
}
