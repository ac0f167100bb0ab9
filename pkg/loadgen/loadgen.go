// Package loadgen implements a concurrent HTTP load-generation engine: a
// fixed pool of workers drives a fixed total number of requests against one
// target, each request is instrumented with byte-level timing milestones, and
// the per-request outcomes are reduced into an aggregate summary.
package loadgen

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Run executes one complete load run: validate, dispatch every request
// across the configured worker pool, then aggregate. Per-request failures
// are captured inside their outcomes and never abort the run; only
// configuration and aggregation errors fail the whole operation.
func Run(ctx context.Context, cfg Config, logger zerolog.Logger) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("url", cfg.URL).
		Str("method", cfg.method()).
		Int("requests", cfg.Requests).
		Int("concurrency", cfg.Concurrency).
		Msg("starting load run")

	transport := NewHTTPTransport(time.Duration(cfg.timeoutSeconds())*time.Second, cfg.Concurrency)
	dispatcher := NewDispatcher(NewProber(transport), logger)

	outcomes, span := dispatcher.Run(ctx, cfg)

	summary, err := Aggregate(outcomes, span)
	if err != nil {
		return nil, fmt.Errorf("aggregating run results: %w", err)
	}

	logger.Info().
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Float64("rps", summary.RequestsPerSecond).
		Float64("mean_total_ms", summary.TotalTime.Mean).
		Msg("load run completed")

	return summary, nil
}

// ProbeOnce is the single-request convenience path: it validates the
// configuration, issues exactly one probe, and returns its outcome directly.
func ProbeOnce(ctx context.Context, cfg Config, logger zerolog.Logger) (*Outcome, error) {
	cfg.Requests = 1
	cfg.Concurrency = 1
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("url", cfg.URL).
		Str("method", cfg.method()).
		Msg("probing target")

	transport := NewHTTPTransport(time.Duration(cfg.timeoutSeconds())*time.Second, 1)
	prober := NewProber(transport)

	out := prober.Probe(ctx, Request{
		URL:     cfg.URL,
		Method:  cfg.method(),
		Headers: cfg.Headers,
		Body:    cfg.Body,
	})
	return &out, nil
}
