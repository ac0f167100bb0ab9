package loadgen

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestProber(timeout time.Duration) *Prober {
	return NewProber(NewHTTPTransport(timeout, 1))
}

func TestProbe_DelayedResponse(t *testing.T) {
	delay := 50 * time.Millisecond
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	out := newTestProber(5 * time.Second).Probe(context.Background(), Request{URL: server.URL, Method: "GET"})

	if out.StatusCode == nil || *out.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %v (error %q)", out.StatusCode, out.Error)
	}
	if !out.Succeeded() {
		t.Error("expected outcome to count as success")
	}
	if out.TotalTime < delay-5*time.Millisecond {
		t.Errorf("expected total time around %v, got %v", delay, out.TotalTime)
	}
	if out.TotalTime > time.Second {
		t.Errorf("total time suspiciously large: %v", out.TotalTime)
	}

	if out.TimeToFirstByte == nil || out.TimeToLastByte == nil {
		t.Fatal("expected byte timings to be present for a response with a body")
	}
	if *out.TimeToFirstByte > out.TotalTime {
		t.Errorf("time to first byte %v exceeds total time %v", *out.TimeToFirstByte, out.TotalTime)
	}
	// TTLB is measured from the first byte, so the two segments partition the
	// total exactly.
	if *out.TimeToFirstByte+*out.TimeToLastByte != out.TotalTime {
		t.Errorf("TTFB %v + TTLB %v != total %v",
			*out.TimeToFirstByte, *out.TimeToLastByte, out.TotalTime)
	}
}

func TestProbe_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	out := newTestProber(5 * time.Second).Probe(context.Background(), Request{URL: server.URL, Method: "GET"})

	if out.StatusCode == nil || *out.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status 204, got %v", out.StatusCode)
	}
	if !out.Succeeded() {
		t.Error("expected 204 to count as success")
	}
	if out.Error != "" {
		t.Errorf("expected no error, got %q", out.Error)
	}
	if out.TimeToFirstByte != nil || out.TimeToLastByte != nil {
		t.Error("expected byte timings to be absent when no body byte arrived")
	}
	if out.TotalTime <= 0 {
		t.Errorf("expected positive total time, got %v", out.TotalTime)
	}
}

func TestProbe_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	out := newTestProber(5 * time.Second).Probe(context.Background(), Request{URL: server.URL, Method: "GET"})

	if out.StatusCode == nil || *out.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %v", out.StatusCode)
	}
	if out.Succeeded() {
		t.Error("expected 500 to count as failure")
	}
	if out.Error != "" {
		t.Errorf("a non-2xx status is not a transport error, got %q", out.Error)
	}
}

func TestProbe_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	out := newTestProber(2 * time.Second).Probe(context.Background(), Request{URL: url, Method: "GET"})

	if out.StatusCode != nil {
		t.Errorf("expected no status code, got %d", *out.StatusCode)
	}
	if out.Error == "" {
		t.Error("expected error message for refused connection")
	}
	if out.Succeeded() {
		t.Error("expected refused connection to count as failure")
	}
}

func TestProbe_StreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		panic(http.ErrAbortHandler)
	}))
	defer server.Close()

	out := newTestProber(5 * time.Second).Probe(context.Background(), Request{URL: server.URL, Method: "GET"})

	if out.StatusCode == nil || *out.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 for a stream that errored after headers, got %v", out.StatusCode)
	}
	if out.Error == "" {
		t.Error("expected error message for interrupted body stream")
	}
	if out.TimeToFirstByte == nil {
		t.Error("expected first-byte timing for a stream that delivered data before failing")
	}
}

func TestProbe_SendsBodyAndHeaders(t *testing.T) {
	var gotBody string
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotHeader = r.Header.Get("X-Run-Id")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	out := newTestProber(5 * time.Second).Probe(context.Background(), Request{
		URL:     server.URL,
		Method:  "POST",
		Headers: map[string]string{"X-Run-Id": "run-1"},
		Body:    `{"n":1}`,
	})

	if out.StatusCode == nil || *out.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %v (error %q)", out.StatusCode, out.Error)
	}
	if gotBody != `{"n":1}` {
		t.Errorf("expected request body to reach the target, got %q", gotBody)
	}
	if gotHeader != "run-1" {
		t.Errorf("expected header to reach the target, got %q", gotHeader)
	}
}
