package stats

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"
)

var defaultClasses = []string{"uncached", "cached", "error"}

func newTestService(reader BatchReader) *Service {
	s := NewService(reader, Config{
		Category:        "stats",
		ResponseClasses: defaultClasses,
		DefaultRange:    10 * time.Minute,
		MaxRangeDays:    366,
	})
	s.now = func() time.Time {
		return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	jan1to3 := TimeRange{From: date(2024, 1, 1, 0), To: date(2024, 1, 3, 0)}

	t.Run("EndToEndWithEmptyStorage", func(t *testing.T) {
		reader := newFakeReader()
		s := newTestService(reader)

		g, err := ResolveGranularity(null.String{})
		require.NoError(t, err)

		result, err := s.Run(ctx, Query{
			PathParts:   []string{"keys", "k1"},
			Range:       jan1to3,
			Granularity: g,
		})
		require.NoError(t, err)

		assert.Equal(t, map[string]MergedBucket{
			"uncached": {},
			"cached":   {},
			"error":    {},
		}, result.Map())

		for _, class := range defaultClasses {
			batch := reader.batchFor(class)
			require.Len(t, batch, 3, "expect 3 keys for class %s", class)
			assert.Equal(t, []string{"2024-1-1", "2024-1-2", "2024-1-3"}, []string{batch[0].Date, batch[1].Date, batch[2].Date})
			assert.Equal(t, "stats:minutes:keys:k1:2024-1-1:"+class, batch[0].Render(":"))
		}
	})

	t.Run("MergesEachClassIndependently", func(t *testing.T) {
		reader := newFakeReader()
		reader.data["stats:hours:apis:a1:2024-1-1:cached"] = DayBucket{"1704067200": "2"}
		reader.data["stats:hours:apis:a1:2024-1-3:cached"] = DayBucket{"1704240000": "5"}
		reader.data["stats:hours:apis:a1:2024-1-2:error"] = DayBucket{"1704153600": "1"}
		s := newTestService(reader)

		result, err := s.Run(ctx, Query{
			PathParts:   []string{"apis", "a1"},
			Range:       jan1to3,
			Granularity: GranularityHours,
		})
		require.NoError(t, err)

		cached, ok := result.Get("cached")
		require.True(t, ok)
		assert.Equal(t, MergedBucket{"1704067200": "2", "1704240000": "5"}, cached)

		errored, _ := result.Get("error")
		assert.Equal(t, MergedBucket{"1704153600": "1"}, errored)

		uncached, _ := result.Get("uncached")
		assert.Empty(t, uncached)
	})

	t.Run("KeepsRequestedClassOrder", func(t *testing.T) {
		s := newTestService(newFakeReader())
		result, err := s.Run(ctx, Query{
			PathParts:       []string{"keys", "k1"},
			Range:           jan1to3,
			Granularity:     GranularityMinutes,
			ResponseClasses: []string{"error", "uncached", "error"},
		})
		require.NoError(t, err)
		require.Len(t, result, 2, "expect duplicates to collapse")
		assert.Equal(t, "error", result[0].Class)
		assert.Equal(t, "uncached", result[1].Class)

		b, err := json.Marshal(result)
		require.NoError(t, err)
		assert.Equal(t, `{"error":{},"uncached":{}}`, string(b))
	})

	t.Run("FirstFailureAbortsQuery", func(t *testing.T) {
		cause := errors.New("redis: connection refused")
		reader := newFakeReader()
		reader.failFor["cached"] = cause
		s := newTestService(reader)

		result, err := s.Run(ctx, Query{
			PathParts:   []string{"keys", "k1"},
			Range:       jan1to3,
			Granularity: GranularityMinutes,
		})
		assert.Nil(t, result, "expect no partial mapping")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindStorageFailure))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("FailureCancelsSlowBranches", func(t *testing.T) {
		reader := newFakeReader()
		reader.failFor["error"] = errors.New("boom")
		reader.block["uncached"] = true
		reader.block["cached"] = true
		s := newTestService(reader)

		done := make(chan error, 1)
		go func() {
			_, err := s.Run(ctx, Query{
				PathParts:   []string{"keys", "k1"},
				Range:       jan1to3,
				Granularity: GranularityMinutes,
			})
			done <- err
		}()

		select {
		case err := <-done:
			require.Error(t, err)
			assert.Contains(t, err.Error(), "boom")
		case <-time.After(5 * time.Second):
			t.Fatal("expect Run to return once a branch fails")
		}
	})

	t.Run("HonoursCallerCancellation", func(t *testing.T) {
		reader := newFakeReader()
		for _, c := range defaultClasses {
			reader.block[c] = true
		}
		s := newTestService(reader)

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := s.Run(cctx, Query{PathParts: []string{"keys", "k1"}, Range: jan1to3, Granularity: GranularityMinutes})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("RejectsInvalidGranularityBeforeStorage", func(t *testing.T) {
		reader := newFakeReader()
		s := newTestService(reader)

		_, err := s.Run(ctx, Query{PathParts: []string{"keys", "k1"}, Range: jan1to3, Granularity: "fortnights"})
		assert.True(t, IsKind(err, KindInvalidGranularity))
		assert.Empty(t, reader.batches)
	})

	t.Run("RejectsReversedRange", func(t *testing.T) {
		reader := newFakeReader()
		s := newTestService(reader)

		_, err := s.Run(ctx, Query{
			PathParts:   []string{"keys", "k1"},
			Range:       TimeRange{From: jan1to3.To, To: jan1to3.From},
			Granularity: GranularityMinutes,
		})
		assert.True(t, IsKind(err, KindInvalidTimeRange))
		assert.Empty(t, reader.batches)
	})

	t.Run("SameDayRangeReadsOneKeyPerClass", func(t *testing.T) {
		reader := newFakeReader()
		s := newTestService(reader)

		_, err := s.Run(ctx, Query{
			PathParts:   []string{"keyrings", "r1"},
			Range:       TimeRange{From: date(2024, 1, 2, 11), To: date(2024, 1, 2, 12)},
			Granularity: GranularityMinutes,
		})
		require.NoError(t, err)
		require.Len(t, reader.batches, 3)
		for _, b := range reader.batches {
			assert.Len(t, b, 1)
		}
	})
}

func TestParseTimeRange(t *testing.T) {
	s := newTestService(newFakeReader())
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	t.Run("Defaults", func(t *testing.T) {
		r, err := s.ParseTimeRange(null.String{}, null.String{})
		require.NoError(t, err)
		assert.Equal(t, now, r.To)
		assert.Equal(t, now.Add(-600*time.Second), r.From)
	})

	t.Run("DefaultFromIsRelativeToNow", func(t *testing.T) {
		r, err := s.ParseTimeRange(null.String{}, null.StringFrom(strconv.FormatInt(now.Add(time.Hour).Unix(), 10)))
		require.NoError(t, err)
		assert.Equal(t, now.Add(-600*time.Second), r.From)
	})

	t.Run("DefaultFromAfterExplicitTo", func(t *testing.T) {
		_, err := s.ParseTimeRange(null.String{}, null.StringFrom("1704067200"))
		assert.True(t, IsKind(err, KindInvalidTimeRange), "got %v", err)
	})

	t.Run("Explicit", func(t *testing.T) {
		r, err := s.ParseTimeRange(null.StringFrom("1704067200"), null.StringFrom("1704240000"))
		require.NoError(t, err)
		assert.Equal(t, date(2024, 1, 1, 0), r.From)
		assert.Equal(t, date(2024, 1, 3, 0), r.To)
	})

	t.Run("Invalid", func(t *testing.T) {
		tests := []struct {
			name     string
			from, to null.String
		}{
			{"NotANumber", null.StringFrom("yesterday"), null.String{}},
			{"ToNotANumber", null.String{}, null.StringFrom("1.5")},
			{"Reversed", null.StringFrom("1704240000"), null.StringFrom("1704067200")},
			{"TooWide", null.StringFrom("0"), null.StringFrom("1704067200")},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := s.ParseTimeRange(tt.from, tt.to)
				assert.True(t, IsKind(err, KindInvalidTimeRange), "got %v", err)
			})
		}
	})
}

func TestErrorGatewayError(t *testing.T) {
	ge := invalidGranularity("fortnights").GatewayError()
	assert.Equal(t, 400, ge.StatusCode)
	assert.Equal(t, "INVALID_GRANULARITY", ge.ErrorCode)
	require.NotNil(t, ge.Extras)
	assert.Equal(t, ValidGranularities(), (*ge.Extras)["valid"])

	assert.Equal(t, 503, storageFailure(errors.New("x")).GatewayError().StatusCode)
	assert.Equal(t, 400, invalidTimeRange("bad").GatewayError().StatusCode)
}
