// Package sysmon samples the load generator's own CPU and memory usage so a
// run report can show whether the generating host was the bottleneck.
package sysmon

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Sample is one point-in-time reading of the host's resources.
type Sample struct {
	Timestamp       time.Time `json:"timestamp"`
	CPUPercent      float64   `json:"cpu_percent"`
	MemoryPercent   float64   `json:"memory_percent"`
	MemoryUsedBytes uint64    `json:"memory_used_bytes"`
}

// Sampler polls CPU and memory usage at a fixed interval.
type Sampler struct {
	interval time.Duration
	logger   zerolog.Logger
}

// NewSampler creates a sampler polling at the given interval.
func NewSampler(interval time.Duration, logger zerolog.Logger) *Sampler {
	return &Sampler{interval: interval, logger: logger}
}

// Run collects samples until ctx is cancelled and returns what was gathered.
// A failed reading is logged and skipped; it never aborts the collection.
func (s *Sampler) Run(ctx context.Context) []Sample {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var samples []Sample
	for {
		select {
		case <-ctx.Done():
			return samples
		case <-ticker.C:
			sample, err := s.collect(ctx)
			if err != nil {
				s.logger.Warn().Err(err).Msg("resource sample failed")
				continue
			}
			samples = append(samples, sample)
		}
	}
}

func (s *Sampler) collect(ctx context.Context) (Sample, error) {
	sample := Sample{Timestamp: time.Now()}

	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return Sample{}, err
	}
	if len(percents) > 0 {
		sample.CPUPercent = percents[0]
	}

	memInfo, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Sample{}, err
	}
	sample.MemoryPercent = memInfo.UsedPercent
	sample.MemoryUsedBytes = memInfo.Used

	return sample, nil
}
