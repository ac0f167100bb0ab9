package loadgen

import (
	"fmt"
	"time"
)

// Outcome is the immutable record produced by one probe. Exactly one Outcome
// exists per dispatched unit of work, whether the exchange succeeded or
// failed.
//
// TimeToLastByte is measured from the first received body byte, not from
// issue time: it is the body transfer duration, so when both byte timings are
// present TimeToFirstByte+TimeToLastByte equals TotalTime by construction.
// Both byte timings are absent when no body byte was ever received (an empty
// body, or a failure before any data arrived).
type Outcome struct {
	StatusCode      *int
	Error           string
	TotalTime       time.Duration
	TimeToFirstByte *time.Duration
	TimeToLastByte  *time.Duration
}

// Succeeded reports whether the exchange produced a 2xx status.
func (o Outcome) Succeeded() bool {
	return o.StatusCode != nil && *o.StatusCode >= 200 && *o.StatusCode < 300
}

// String renders the terse single-request report form.
func (o Outcome) String() string {
	if o.StatusCode == nil {
		return fmt.Sprintf("failed after %.2fs: %s", o.TotalTime.Seconds(), o.Error)
	}

	s := fmt.Sprintf("status %d in %.2fs", *o.StatusCode, o.TotalTime.Seconds())
	if o.TimeToFirstByte != nil && o.TimeToLastByte != nil {
		s += fmt.Sprintf(" (first byte %.2fs, transfer %.2fs)",
			o.TimeToFirstByte.Seconds(), o.TimeToLastByte.Seconds())
	}
	if o.Error != "" {
		s += fmt.Sprintf(", stream error: %s", o.Error)
	}
	return s
}
