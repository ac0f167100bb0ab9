package loadgen

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

const readChunkSize = 32 * 1024

// Request describes one HTTP exchange to perform.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    string
}

// Observer receives the lifecycle events of one exchange, in order: Status at
// most once (when response headers arrive), Chunk zero or more times, then
// exactly one of Done or Error.
type Observer interface {
	Status(code int)
	Chunk(n int)
	Done()
	Error(err error)
}

// Transport performs a single HTTP exchange and reports progress to an
// Observer. Implementations own connection handling, TLS, and redirects.
type Transport interface {
	Exchange(ctx context.Context, req Request, obs Observer)
}

// HTTPTransport is the net/http backed Transport.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport builds a transport with keep-alive connection pooling
// sized for the given worker count and a per-request timeout.
func NewHTTPTransport(timeout time.Duration, concurrency int) *HTTPTransport {
	transport := &http.Transport{
		MaxIdleConns:        2 * concurrency,
		MaxIdleConnsPerHost: concurrency,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}

	return &HTTPTransport{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

func (t *HTTPTransport) Exchange(ctx context.Context, req Request, obs Observer) {
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		obs.Error(err)
		return
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		obs.Error(err)
		return
	}
	defer resp.Body.Close()

	obs.Status(resp.StatusCode)

	// Read the body to completion in chunks so the observer sees every data
	// milestone and the connection can return to the pool.
	buf := make([]byte, readChunkSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			obs.Chunk(n)
		}
		if err == io.EOF {
			obs.Done()
			return
		}
		if err != nil {
			obs.Error(err)
			return
		}
	}
}
