package stats

import (
	"gopkg.in/guregu/null.v3"
)

type Granularity string

const (
	GranularityMinutes Granularity = "minutes"
	GranularityHours   Granularity = "hours"
	GranularityDays    Granularity = "days"
	GranularityWeeks   Granularity = "weeks"
	GranularityMonths  Granularity = "months"

	DefaultGranularity = GranularityMinutes
)

var granularities = []Granularity{
	GranularityMinutes,
	GranularityHours,
	GranularityDays,
	GranularityWeeks,
	GranularityMonths,
}

// ValidGranularities returns a copy of the accepted granularity set, in ascending unit size.
func ValidGranularities() []Granularity {
	return append([]Granularity(nil), granularities...)
}

func (g Granularity) Valid() bool {
	for _, v := range granularities {
		if g == v {
			return true
		}
	}
	return false
}

// ResolveGranularity validates a caller supplied granularity. An absent value resolves to
// DefaultGranularity; an unknown one fails with KindInvalidGranularity.
func ResolveGranularity(requested null.String) (Granularity, error) {
	if !requested.Valid {
		return DefaultGranularity, nil
	}
	g := Granularity(requested.String)
	if !g.Valid() {
		return "", invalidGranularity(requested.String)
	}
	return g, nil
}
