package loadgen

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrNoOutcomes is returned when aggregation is attempted over zero outcomes.
var ErrNoOutcomes = errors.New("no outcomes to aggregate")

// MetricStats summarizes one timing metric over the outcomes that report it.
// Values are in milliseconds; outcomes without the metric are excluded, not
// counted as zero.
type MetricStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Summary is the aggregate report over all outcomes of one run.
type Summary struct {
	Requests          int     `json:"requests"`
	Succeeded         int     `json:"succeeded"`
	Failed            int     `json:"failed"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	DurationSeconds   float64 `json:"duration"`

	TotalTime       MetricStats `json:"total_time"`
	TimeToFirstByte MetricStats `json:"time_to_first_byte"`
	TimeToLastByte  MetricStats `json:"time_to_last_byte"`

	// Percentiles over total time, in milliseconds.
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`

	StatusCodes map[int]int `json:"status_codes,omitempty"`
}

// Aggregate reduces a completed run's outcomes into a Summary. The span must
// be the wall-clock duration of the whole dispatch, measured from before the
// first worker started to after the last joined; requests/second is derived
// from it, never from summed per-request durations, so the rate reflects
// concurrency.
func Aggregate(outcomes []Outcome, span time.Duration) (*Summary, error) {
	if len(outcomes) == 0 {
		return nil, ErrNoOutcomes
	}
	if span <= 0 {
		return nil, fmt.Errorf("non-positive wall-clock span %v", span)
	}

	summary := &Summary{
		Requests:          len(outcomes),
		RequestsPerSecond: float64(len(outcomes)) / span.Seconds(),
		DurationSeconds:   span.Seconds(),
		StatusCodes:       make(map[int]int),
	}

	totals := make([]float64, 0, len(outcomes))
	firstBytes := make([]float64, 0, len(outcomes))
	lastBytes := make([]float64, 0, len(outcomes))

	for _, out := range outcomes {
		if out.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		if out.StatusCode != nil {
			summary.StatusCodes[*out.StatusCode]++
		}

		totals = append(totals, millis(out.TotalTime))
		if out.TimeToFirstByte != nil {
			firstBytes = append(firstBytes, millis(*out.TimeToFirstByte))
		}
		if out.TimeToLastByte != nil {
			lastBytes = append(lastBytes, millis(*out.TimeToLastByte))
		}
	}

	summary.TotalTime = reduceMetric(totals)
	summary.TimeToFirstByte = reduceMetric(firstBytes)
	summary.TimeToLastByte = reduceMetric(lastBytes)

	sort.Float64s(totals)
	summary.P50 = percentile(totals, 0.5)
	summary.P90 = percentile(totals, 0.90)
	summary.P95 = percentile(totals, 0.95)
	summary.P99 = percentile(totals, 0.99)

	return summary, nil
}

// reduceMetric computes min/max/mean over the values that were reported.
func reduceMetric(values []float64) MetricStats {
	if len(values) == 0 {
		return MetricStats{}
	}

	stats := MetricStats{
		Min:   values[0],
		Max:   values[0],
		Count: len(values),
	}

	var sum float64
	for _, v := range values {
		sum += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Mean = sum / float64(len(values))

	return stats
}

// percentile calculates the percentile value from a sorted slice using
// linear interpolation between the two nearest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	index := float64(len(sorted)-1) * p
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func millis(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
