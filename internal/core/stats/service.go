package stats

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gopkg.in/guregu/null.v3"

	"exusiai.dev/gateway-admin/internal/app/appconfig"
	"exusiai.dev/gateway-admin/internal/pkg/observability"
)

type Config struct {
	// Category is the first storage key segment.
	Category string

	// ResponseClasses are queried, in this order, when a Query names none.
	ResponseClasses []string

	// DefaultRange is the distance between the default `from` and `to` bounds.
	DefaultRange time.Duration

	// MaxRangeDays caps the calendar days a query may span; zero disables the cap.
	MaxRangeDays int

	// QueryTimeout bounds Run; zero leaves the deadline to the caller's context.
	QueryTimeout time.Duration
}

func NewConfig(conf *appconfig.Config) Config {
	return Config{
		Category:        conf.StatsCategory,
		ResponseClasses: conf.StatsResponseClasses,
		DefaultRange:    conf.StatsDefaultRange,
		MaxRangeDays:    conf.StatsMaxRangeDays,
		QueryTimeout:    conf.StatsQueryTimeout,
	}
}

type Query struct {
	// PathParts identify the entity, e.g. ["keys", "k_01H..."].
	PathParts []string

	Range       TimeRange
	Granularity Granularity

	// ResponseClasses overrides Config.ResponseClasses when not empty.
	ResponseClasses []string
}

type Service struct {
	reader BatchReader
	conf   Config
	tracer trace.Tracer

	now func() time.Time
}

func NewService(reader BatchReader, conf Config) *Service {
	return &Service{
		reader: reader,
		conf:   conf,
		tracer: otel.Tracer("exusiai.dev/gateway-admin/internal/core/stats"),
		now:    time.Now,
	}
}

// ResponseClasses returns the configured default response classes.
func (s *Service) ResponseClasses() []string {
	return append([]string(nil), s.conf.ResponseClasses...)
}

// ParseTimeRange builds a TimeRange from epoch-second strings. A missing `to` defaults
// to now and a missing `from` to `to` minus the configured default range.
func (s *Service) ParseTimeRange(from, to null.String) (TimeRange, error) {
	var r TimeRange

	if to.Valid {
		t, err := parseEpoch(to.String)
		if err != nil {
			return r, invalidTimeRange("`to` must be epoch seconds, got %q", to.String)
		}
		r.To = t
	} else {
		r.To = s.now().Truncate(time.Second)
	}

	if from.Valid {
		t, err := parseEpoch(from.String)
		if err != nil {
			return r, invalidTimeRange("`from` must be epoch seconds, got %q", from.String)
		}
		r.From = t
	} else {
		r.From = s.now().Truncate(time.Second).Add(-s.conf.DefaultRange)
	}

	return r, s.checkRange(r)
}

func parseEpoch(v string) (time.Time, error) {
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}

func (s *Service) checkRange(r TimeRange) error {
	if r.From.After(r.To) {
		return invalidTimeRange("`from` (%d) lies after `to` (%d)", r.From.Unix(), r.To.Unix())
	}
	if days := WholeDaysBetween(r.To, r.From) + 1; s.conf.MaxRangeDays > 0 && days > s.conf.MaxRangeDays {
		return invalidTimeRange("range spans %d days, at most %d are allowed", days, s.conf.MaxRangeDays)
	}
	return nil
}

// Run builds, fetches and merges the buckets of every response class concurrently. The
// first failing class cancels the others and its error is returned alone; on success
// every requested class appears exactly once, in request order.
func (s *Service) Run(ctx context.Context, q Query) (MergedStats, error) {
	if !q.Granularity.Valid() {
		return nil, s.fail(invalidGranularity(string(q.Granularity)))
	}
	if err := s.checkRange(q.Range); err != nil {
		return nil, s.fail(err)
	}

	classes := q.ResponseClasses
	if len(classes) == 0 {
		classes = s.conf.ResponseClasses
	}
	classes = lo.Uniq(classes)
	pathParts := append([]string{string(q.Granularity)}, q.PathParts...)

	if s.conf.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.conf.QueryTimeout)
		defer cancel()
	}

	ctx, span := s.tracer.Start(ctx, "stats.Run", trace.WithAttributes(
		attribute.String("stats.granularity", string(q.Granularity)),
		attribute.StringSlice("stats.path", q.PathParts),
		attribute.StringSlice("stats.classes", classes),
		attribute.Int("stats.days", WholeDaysBetween(q.Range.To, q.Range.From)+1),
	))
	defer span.End()

	start := time.Now()
	results := make(MergedStats, len(classes))

	eg, egctx := errgroup.WithContext(ctx)
	for i, class := range classes {
		i, class := i, class
		eg.Go(func() error {
			merged, err := s.runClass(egctx, pathParts, class, q.Range)
			if err != nil {
				return err
			}
			results[i] = ClassStats{Class: class, Stats: merged}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, s.fail(err)
	}

	observability.StatsQueryDuration.
		WithLabelValues(string(q.Granularity)).
		Observe(time.Since(start).Seconds())

	return results, nil
}

func (s *Service) runClass(ctx context.Context, pathParts []string, class string, r TimeRange) (MergedBucket, error) {
	keys := BuildKeys(s.conf.Category, pathParts, class, r.From, r.To)
	observability.StatsBatchKeys.WithLabelValues(class).Observe(float64(len(keys)))

	buckets, err := Fetch(ctx, s.reader, keys)
	if err != nil {
		return nil, err
	}

	merged := Merge(buckets, len(keys))
	if len(merged) == 0 {
		return MergedBucket{}, nil
	}
	return merged[0], nil
}

func (s *Service) fail(err error) error {
	kind := "unknown"
	var e *Error
	if errors.As(err, &e) {
		kind = e.Kind.String()
	}
	observability.StatsQueryFailures.WithLabelValues(kind).Inc()

	if l := log.Debug(); l.Enabled() {
		l.Err(err).
			Str("evt.name", "stats.query.failed").
			Str("kind", kind).
			Msg("statistics query failed")
	}
	return err
}
