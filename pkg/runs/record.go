// Package runs executes load runs one at a time and keeps a JSON history of
// their results. The engine itself persists nothing; history is a feature of
// this serving layer.
package runs

import (
	"time"

	"blast/pkg/loadgen"
	"blast/pkg/sysmon"
)

// Record is the stored result of one load run.
type Record struct {
	ID              string           `json:"id"`
	Config          loadgen.Config   `json:"config"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         time.Time        `json:"end_time"`
	DurationSeconds float64          `json:"duration"`
	Summary         *loadgen.Summary `json:"summary,omitempty"`
	Error           string           `json:"error,omitempty"`
	Samples         []sysmon.Sample  `json:"samples,omitempty"`
}
