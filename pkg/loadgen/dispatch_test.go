package loadgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestDispatcher(concurrency int) *Dispatcher {
	transport := NewHTTPTransport(5*time.Second, concurrency)
	return NewDispatcher(NewProber(transport), zerolog.Nop())
}

func TestDispatch_ExactRequestCount(t *testing.T) {
	var served atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served.Add(1)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	cfg := Config{URL: server.URL, Requests: 20, Concurrency: 5}
	outcomes, span := newTestDispatcher(cfg.Concurrency).Run(context.Background(), cfg)

	if len(outcomes) != cfg.Requests {
		t.Fatalf("expected %d outcomes, got %d", cfg.Requests, len(outcomes))
	}
	if got := served.Load(); got != int64(cfg.Requests) {
		t.Errorf("expected server to see %d requests, saw %d", cfg.Requests, got)
	}
	if span <= 0 {
		t.Errorf("expected positive wall-clock span, got %v", span)
	}
}

func TestDispatch_ConcurrencyExceedsRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	cfg := Config{URL: server.URL, Requests: 3, Concurrency: 10}
	outcomes, _ := newTestDispatcher(cfg.Concurrency).Run(context.Background(), cfg)

	if len(outcomes) != 3 {
		t.Fatalf("expected exactly 3 outcomes with surplus workers, got %d", len(outcomes))
	}
}

func TestDispatch_AllServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "always down", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := Config{URL: server.URL, Requests: 20, Concurrency: 5}
	outcomes, span := newTestDispatcher(cfg.Concurrency).Run(context.Background(), cfg)

	summary, err := Aggregate(outcomes, span)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}
	if summary.Succeeded != 0 {
		t.Errorf("expected 0 successes, got %d", summary.Succeeded)
	}
	if summary.Failed != 20 {
		t.Errorf("expected 20 failures, got %d", summary.Failed)
	}
}

func TestDispatch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	cfg := Config{URL: url, Requests: 10, Concurrency: 10}
	outcomes, span := newTestDispatcher(cfg.Concurrency).Run(context.Background(), cfg)

	if len(outcomes) != 10 {
		t.Fatalf("expected 10 outcomes, got %d", len(outcomes))
	}
	for i, out := range outcomes {
		if out.Error == "" {
			t.Errorf("outcome %d: expected error message", i)
		}
		if out.StatusCode != nil {
			t.Errorf("outcome %d: expected no status code, got %d", i, *out.StatusCode)
		}
	}

	summary, err := Aggregate(outcomes, span)
	if err != nil {
		t.Fatalf("aggregation failed: %v", err)
	}
	if summary.Failed != 10 {
		t.Errorf("expected 10 failures, got %d", summary.Failed)
	}
}

func TestDispatch_RunsConcurrently(t *testing.T) {
	delay := 50 * time.Millisecond
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	cfg := Config{URL: server.URL, Requests: 10, Concurrency: 10}
	outcomes, span := newTestDispatcher(cfg.Concurrency).Run(context.Background(), cfg)

	if len(outcomes) != 10 {
		t.Fatalf("expected 10 outcomes, got %d", len(outcomes))
	}
	// Ten 50ms requests behind a single thread of execution would take 500ms;
	// ten workers should finish in roughly one delay.
	if span > 6*delay {
		t.Errorf("span %v suggests requests were serialized", span)
	}
}

func TestDispatch_Cancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(60 * time.Millisecond)
		cancel()
	}()

	cfg := Config{URL: server.URL, Requests: 10000, Concurrency: 2}
	done := make(chan struct{})
	var outcomes []Outcome
	go func() {
		outcomes, _ = newTestDispatcher(cfg.Concurrency).Run(ctx, cfg)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch did not stop after cancellation")
	}

	if len(outcomes) >= cfg.Requests {
		t.Errorf("expected cancelled run to stop early, got %d outcomes", len(outcomes))
	}
}
