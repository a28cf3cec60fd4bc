package stats

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"exusiai.dev/gateway-admin/internal/pkg/gwerr"
)

type Kind int

const (
	KindInvalidGranularity Kind = iota + 1
	KindInvalidTimeRange
	KindStorageFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidGranularity:
		return "invalid_granularity"
	case KindInvalidTimeRange:
		return "invalid_time_range"
	case KindStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// Error is the only error type returned by this package. Kind selects which of the
// other fields are meaningful: Requested and Valid for KindInvalidGranularity, Detail
// for KindInvalidTimeRange, Cause for KindStorageFailure.
type Error struct {
	Kind      Kind
	Requested string
	Valid     []Granularity
	Detail    string
	Cause     error
}

var _ gwerr.Convertible = (*Error)(nil)

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidGranularity:
		return fmt.Sprintf("stats: invalid granularity %q, expected one of: %s", e.Requested, joinGranularities(e.Valid))
	case KindInvalidTimeRange:
		return "stats: invalid time range: " + e.Detail
	case KindStorageFailure:
		return fmt.Sprintf("stats: storage failure: %v", e.Cause)
	default:
		return "stats: unknown error"
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// GatewayError maps the error onto the HTTP error surface.
func (e *Error) GatewayError() *gwerr.GatewayError {
	switch e.Kind {
	case KindInvalidGranularity:
		return gwerr.New(fiber.StatusBadRequest, "INVALID_GRANULARITY",
			fmt.Sprintf("invalid granularity %q", e.Requested)).
			WithExtras(gwerr.Extras{"valid": e.Valid})
	case KindInvalidTimeRange:
		return gwerr.New(fiber.StatusBadRequest, "INVALID_TIME_RANGE", "invalid time range: "+e.Detail)
	case KindStorageFailure:
		return gwerr.ErrStorageUnavailable
	default:
		return gwerr.ErrInternalError
	}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func invalidGranularity(requested string) *Error {
	return &Error{
		Kind:      KindInvalidGranularity,
		Requested: requested,
		Valid:     ValidGranularities(),
	}
}

func invalidTimeRange(format string, args ...any) *Error {
	return &Error{
		Kind:   KindInvalidTimeRange,
		Detail: fmt.Sprintf(format, args...),
	}
}

func storageFailure(cause error) *Error {
	var e *Error
	if errors.As(cause, &e) && e.Kind == KindStorageFailure {
		return e
	}
	return &Error{
		Kind:  KindStorageFailure,
		Cause: cause,
	}
}

func joinGranularities(gs []Granularity) string {
	return strings.Join(lo.Map(gs, func(g Granularity, _ int) string {
		return string(g)
	}), ", ")
}
