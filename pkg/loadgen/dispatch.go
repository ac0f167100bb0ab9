package loadgen

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher drives a fixed total number of probes to completion across a
// bounded pool of workers.
type Dispatcher struct {
	prober *Prober
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher issuing probes through the given prober.
func NewDispatcher(prober *Prober, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{prober: prober, logger: logger}
}

// Run issues cfg.Requests probes across cfg.Concurrency workers and returns
// every outcome together with the wall-clock span of the whole dispatch.
//
// The shared remaining-work counter is the only contended state: each worker
// claims one unit with an atomic decrement and appends outcomes to its own
// buffer, and buffers are merged only after every worker has joined.
// Cancelling ctx stops the claim of new units; an uncancelled run always
// produces exactly cfg.Requests outcomes. Outcome order does not match
// dispatch order.
func (d *Dispatcher) Run(ctx context.Context, cfg Config) ([]Outcome, time.Duration) {
	req := Request{
		URL:     cfg.URL,
		Method:  cfg.method(),
		Headers: cfg.Headers,
		Body:    cfg.Body,
	}

	var remaining atomic.Int64
	remaining.Store(int64(cfg.Requests))

	buffers := make([][]Outcome, cfg.Concurrency)
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			var local []Outcome
			for remaining.Add(-1) >= 0 {
				if ctx.Err() != nil {
					break
				}
				local = append(local, d.prober.Probe(ctx, req))
			}
			buffers[workerID] = local
		}(i)
	}
	wg.Wait()
	span := time.Since(start)

	outcomes := make([]Outcome, 0, cfg.Requests)
	for _, b := range buffers {
		outcomes = append(outcomes, b...)
	}

	if len(outcomes) < cfg.Requests {
		d.logger.Warn().
			Int("completed", len(outcomes)).
			Int("requested", cfg.Requests).
			Msg("dispatch cancelled before all work was claimed")
	}

	return outcomes, span
}
