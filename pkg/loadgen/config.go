package loadgen

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	defaultMethod         = "GET"
	defaultTimeoutSeconds = 30
)

// methods that are accepted by Validate, and whether each permits a body.
var allowedMethods = map[string]bool{
	"GET":     false,
	"HEAD":    false,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"OPTIONS": false,
}

// Config describes one load-generation run.
type Config struct {
	URL         string            `json:"url"`
	Method      string            `json:"method,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        string            `json:"body,omitempty"`
	Requests    int               `json:"requests"`
	Concurrency int               `json:"concurrency"`
	Timeout     int               `json:"timeout,omitempty"` // per-request, in seconds
}

// ConfigError reports the first violation found in a Config. A run is never
// partially started on a configuration error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration before any request is issued.
func (c Config) Validate() error {
	u, err := url.ParseRequestURI(c.URL)
	if err != nil {
		return &ConfigError{Field: "url", Reason: err.Error()}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigError{Field: "url", Reason: fmt.Sprintf("%q is not an absolute http(s) URL", c.URL)}
	}

	method := c.method()
	bodyAllowed, known := allowedMethods[method]
	if !known {
		return &ConfigError{Field: "method", Reason: fmt.Sprintf("unsupported method %q", c.Method)}
	}
	if c.Body != "" && !bodyAllowed {
		return &ConfigError{Field: "body", Reason: fmt.Sprintf("method %s does not permit a request body", method)}
	}

	if c.Requests < 1 {
		return &ConfigError{Field: "requests", Reason: "must be a positive integer"}
	}
	// Concurrency may exceed Requests; surplus workers simply find no work.
	if c.Concurrency < 1 {
		return &ConfigError{Field: "concurrency", Reason: "must be a positive integer"}
	}

	return nil
}

func (c Config) method() string {
	if c.Method == "" {
		return defaultMethod
	}
	return strings.ToUpper(c.Method)
}

func (c Config) timeoutSeconds() int {
	if c.Timeout <= 0 {
		return defaultTimeoutSeconds
	}
	return c.Timeout
}
