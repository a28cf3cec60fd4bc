package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	day           = 24 * time.Hour
	secondsPerDay = int64(day / time.Second)
)

func calendarDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// WholeDaysBetween returns the number of UTC calendar days from `from` to `to`,
// ignoring the time of day. It is negative when `to` lies on an earlier day.
func WholeDaysBetween(to, from time.Time) int {
	return int((calendarDay(to).Unix() - calendarDay(from).Unix()) / secondsPerDay)
}

// FormatDate renders the UTC calendar date of t as YEAR-MONTH-DAY without zero padding,
// e.g. 2024-1-3. Keys already written by the gateway use this form.
func FormatDate(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("%d-%d-%d", u.Year(), int(u.Month()), u.Day())
}

// ParseDate reverses FormatDate.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, errors.Errorf("stats: malformed date token %q", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "stats: malformed date token %q", s)
		}
		nums[i] = n
	}
	t := time.Date(nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, time.UTC)
	if FormatDate(t) != s {
		return time.Time{}, errors.Errorf("stats: date token %q is out of range", s)
	}
	return t, nil
}

// BuildKeys returns one key per calendar day from the day of `from` to the day of `to`,
// both inclusive, in ascending date order. It returns nil when to precedes from.
func BuildKeys(category string, pathParts []string, responseClass string, from, to time.Time) []StatKey {
	days := WholeDaysBetween(to, from)
	if days < 0 {
		return nil
	}

	parts := append([]string(nil), pathParts...)
	start := calendarDay(from)

	keys := make([]StatKey, 0, days+1)
	for i := 0; i <= days; i++ {
		keys = append(keys, StatKey{
			Category:      category,
			PathParts:     parts,
			Date:          FormatDate(start.AddDate(0, 0, i)),
			ResponseClass: responseClass,
		})
	}
	return keys
}
