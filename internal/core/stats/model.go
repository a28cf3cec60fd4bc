package stats

import (
	"bytes"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// TimeRange is an inclusive query window. From never lies after To.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// StatKey identifies the bucket of one entity, one calendar day and one response class.
type StatKey struct {
	Category      string
	PathParts     []string
	Date          string
	ResponseClass string
}

// Segments returns the key segments in storage order.
func (k StatKey) Segments() []string {
	segs := make([]string, 0, len(k.PathParts)+3)
	segs = append(segs, k.Category)
	segs = append(segs, k.PathParts...)
	return append(segs, k.Date, k.ResponseClass)
}

func (k StatKey) Render(delim string) string {
	return strings.Join(k.Segments(), delim)
}

// DayBucket is the field→value mapping stored for one StatKey. It is empty, never nil,
// when nothing was recorded for that day.
type DayBucket map[string]string

type MergedBucket map[string]string

type ClassStats struct {
	Class string
	Stats MergedBucket
}

// MergedStats holds one merged bucket per response class, in the order the classes were requested.
type MergedStats []ClassStats

func (s MergedStats) Get(class string) (MergedBucket, bool) {
	for _, cs := range s {
		if cs.Class == class {
			return cs.Stats, true
		}
	}
	return nil, false
}

func (s MergedStats) Map() map[string]MergedBucket {
	m := make(map[string]MergedBucket, len(s))
	for _, cs := range s {
		m[cs.Class] = cs.Stats
	}
	return m
}

// MarshalJSON renders the classes as a single object, keeping the requested class order.
func (s MergedStats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cs := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(cs.Class)
		if err != nil {
			return nil, err
		}
		stats := cs.Stats
		if stats == nil {
			stats = MergedBucket{}
		}
		v, err := json.Marshal(stats)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
