// Package series groups the daily OSA trend into day, ISO-week or month
// buckets and smooths it with a trailing moving average.
package series

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"osa-dashboard/internal/model"
)

type GroupMode string

const (
	ByDay   GroupMode = "day"
	ByWeek  GroupMode = "week"
	ByMonth GroupMode = "month"
)

const dateLayout = "2006-01-02"

var ErrInvalidMode = errors.New("invalid group mode")

func ParseGroupMode(s string) (GroupMode, error) {
	switch m := GroupMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ByDay, ByWeek, ByMonth:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Bucket is one point of a grouped series. Key sorts lexicographically in
// chronological order for every mode.
type Bucket struct {
	Key   string  `json:"date"`
	Value float64 `json:"osa_pct"`
	Count int     `json:"count"`
}

// Group re-keys points by mode and averages the values sharing a key.
// ByDay is the identity: same order, same values, one point per bucket.
func Group(points []model.SeriesPoint, mode GroupMode) []Bucket {
	if len(points) == 0 {
		return []Bucket{}
	}

	if mode == ByDay {
		out := make([]Bucket, len(points))
		for i, p := range points {
			out[i] = Bucket{Key: p.Date, Value: p.Value, Count: 1}
		}
		return out
	}

	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, p := range points {
		key := BucketKey(p.Date, mode)
		sums[key] = sums[key].Add(decimal.NewFromFloat(p.Value))
		counts[key]++
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		n := counts[k]
		mean := sums[k].Div(decimal.NewFromInt(int64(n)))
		out = append(out, Bucket{Key: k, Value: roundDecimal(mean), Count: n})
	}
	return out
}

// BucketKey maps a YYYY-MM-DD date to its bucket. Dates that do not parse
// keep their raw text as key so that no point is lost.
func BucketKey(date string, mode GroupMode) string {
	t, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return date
	}
	switch mode {
	case ByWeek:
		return ISOWeekKey(t)
	case ByMonth:
		return t.Format("2006-01")
	default:
		return t.Format(dateLayout)
	}
}

// ISOWeekKey formats t as YYYY-Www using the ISO week-numbering year, so
// 2024-12-30 belongs to 2025-W01.
func ISOWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// Labels returns the bucket keys in order.
func Labels(buckets []Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Key
	}
	return out
}

// Values returns the bucket values in order.
func Values(buckets []Bucket) []float64 {
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = b.Value
	}
	return out
}
