package loadgen

import (
	"context"
	"time"
)

// Prober wraps single transport exchanges with wall-clock instrumentation.
type Prober struct {
	transport Transport
}

// NewProber creates a prober issuing exchanges through the given transport.
func NewProber(transport Transport) *Prober {
	return &Prober{transport: transport}
}

// probeObserver stamps timing milestones as exchange events arrive.
type probeObserver struct {
	issued    time.Time
	firstByte time.Time
	status    *int
	err       error
}

func (p *probeObserver) Status(code int) {
	c := code
	p.status = &c
}

func (p *probeObserver) Chunk(n int) {
	// Only the first chunk sets the first-byte timestamp.
	if p.firstByte.IsZero() {
		p.firstByte = time.Now()
	}
}

func (p *probeObserver) Done() {}

func (p *probeObserver) Error(err error) {
	p.err = err
}

// Probe performs one exchange and returns its Outcome. Response-level
// failures (error status, stream errors, transport errors) never propagate
// to the caller; they are encoded in the returned record.
func (p *Prober) Probe(ctx context.Context, req Request) Outcome {
	obs := &probeObserver{issued: time.Now()}
	p.transport.Exchange(ctx, req, obs)
	completed := time.Now()

	out := Outcome{
		StatusCode: obs.status,
		TotalTime:  completed.Sub(obs.issued),
	}

	if obs.err != nil {
		out.Error = obs.err.Error()
	} else if obs.status == nil {
		out.Error = "exchange ended before a status was received"
	}

	if !obs.firstByte.IsZero() {
		ttfb := obs.firstByte.Sub(obs.issued)
		ttlb := completed.Sub(obs.firstByte)
		out.TimeToFirstByte = &ttfb
		out.TimeToLastByte = &ttlb
	}

	return out
}
