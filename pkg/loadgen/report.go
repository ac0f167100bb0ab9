package loadgen

import (
	"fmt"
	"sort"
	"strings"
)

// String renders the summary as a fixed-order text report: success count,
// failure count, requests/second, then min/max/mean in seconds for each
// timing metric. Percentiles and the status-code distribution follow the
// stable block. Rounding to two decimals happens only here.
func (s *Summary) String() string {
	var sb strings.Builder

	sb.WriteString("Load Test Summary\n")
	sb.WriteString("=================\n")
	sb.WriteString(fmt.Sprintf("Successful requests:  %d\n", s.Succeeded))
	sb.WriteString(fmt.Sprintf("Failed requests:      %d\n", s.Failed))
	sb.WriteString(fmt.Sprintf("Requests/second:      %.2f\n\n", s.RequestsPerSecond))

	writeMetric(&sb, "Total time", s.TotalTime)
	writeMetric(&sb, "Time to first byte", s.TimeToFirstByte)
	writeMetric(&sb, "Time to last byte", s.TimeToLastByte)

	sb.WriteString("\nTotal time percentiles (s):\n")
	sb.WriteString(fmt.Sprintf("  p50: %.2f  p90: %.2f  p95: %.2f  p99: %.2f\n",
		s.P50/1000, s.P90/1000, s.P95/1000, s.P99/1000))

	if len(s.StatusCodes) > 0 {
		sb.WriteString("\nStatus code distribution:\n")
		codes := make([]int, 0, len(s.StatusCodes))
		for code := range s.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			sb.WriteString(fmt.Sprintf("  %d: %d requests\n", code, s.StatusCodes[code]))
		}
	}

	return sb.String()
}

func writeMetric(sb *strings.Builder, name string, m MetricStats) {
	sb.WriteString(fmt.Sprintf("%s (s):\n", name))
	if m.Count == 0 {
		sb.WriteString("  no data\n")
		return
	}
	sb.WriteString(fmt.Sprintf("  min: %.2f  max: %.2f  mean: %.2f\n",
		m.Min/1000, m.Max/1000, m.Mean/1000))
}
