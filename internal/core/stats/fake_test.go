package stats

import (
	"context"
	"sync"
)

// fakeReader serves buckets from an in-memory map keyed by rendered key and records
// every batch it was asked for.
type fakeReader struct {
	mu      sync.Mutex
	data    map[string]DayBucket
	failFor map[string]error
	block   map[string]bool
	batches [][]StatKey
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		data:    map[string]DayBucket{},
		failFor: map[string]error{},
		block:   map[string]bool{},
	}
}

func (f *fakeReader) MultiGet(ctx context.Context, keys []StatKey) ([]DayBucket, error) {
	f.mu.Lock()
	f.batches = append(f.batches, keys)
	var class string
	if len(keys) > 0 {
		class = keys[0].ResponseClass
	}
	err := f.failFor[class]
	block := f.block[class]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	buckets := make([]DayBucket, len(keys))
	for i, k := range keys {
		buckets[i] = DayBucket{}
		for field, value := range f.data[k.Render(":")] {
			buckets[i][field] = value
		}
	}
	return buckets, nil
}

func (f *fakeReader) batchFor(class string) []StatKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.batches {
		if len(b) > 0 && b[0].ResponseClass == class {
			return b
		}
	}
	return nil
}

type readerFunc func(ctx context.Context, keys []StatKey) ([]DayBucket, error)

func (f readerFunc) MultiGet(ctx context.Context, keys []StatKey) ([]DayBucket, error) {
	return f(ctx, keys)
}
