// Package http is the fluent client used for outgoing requests, such as
// the image probes.
//
//	resp, err := http.Get(url).
//	    WithContext(ctx).
//	    Header("Accept", "image/*").
//	    Timeout(3 * time.Second).
//	    DiscardBody().
//	    Send()
//	if err == nil && resp.OK() { ... }
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	gohttp "net/http"
	"time"

	"github.com/shashiranjanraj/bloomthread/pkg/logger"
)

// defaultTransport is the pooled transport used in production.
var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        200,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 5 * time.Second,
}

// DefaultClient is shared by every outgoing request. Tests swap its
// Transport to intercept calls:
//
//	http.DefaultClient.Transport = mock
//	defer http.ResetTransport()
var DefaultClient = &gohttp.Client{
	Transport: defaultTransport,
}

// ResetTransport restores the production transport on DefaultClient.
func ResetTransport() {
	DefaultClient.Transport = defaultTransport
}

// Request is a fluent request builder.
type Request struct {
	method    string
	url       string
	headers   map[string]string
	timeout   time.Duration
	retries   int
	retryWait time.Duration
	discard   bool
	ctx       context.Context
}

// Get starts a GET request.
func Get(url string) *Request { return newRequest(gohttp.MethodGet, url) }

func newRequest(method, url string) *Request {
	return &Request{
		method:    method,
		url:       url,
		headers:   map[string]string{"User-Agent": "bloomthread/1"},
		timeout:   30 * time.Second,
		retries:   1,
		retryWait: 500 * time.Millisecond,
		ctx:       context.Background(),
	}
}

// Header sets a request header.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Timeout bounds each attempt, including reading the body.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry sets the total number of attempts and the initial backoff, which
// doubles after every failure. The default is a single attempt.
func (r *Request) Retry(n int, wait time.Duration) *Request {
	r.retries = max(n, 1)
	r.retryWait = wait
	return r
}

// DiscardBody closes the body unread; only status and headers are kept.
func (r *Request) DiscardBody() *Request {
	r.discard = true
	return r
}

// WithContext sets the parent context of every attempt.
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// Send executes the request. A non-2xx status is not an error; only
// transport failures are retried.
func (r *Request) Send() (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= r.retries; attempt++ {
		resp, err := r.do()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt == r.retries {
			break
		}

		backoff := time.Duration(float64(r.retryWait) * math.Pow(2, float64(attempt-1)))
		logger.WithCtx(r.ctx).Warn("http: request failed, retrying",
			"url", r.url, "attempt", attempt, "backoff", backoff, "error", err)
		select {
		case <-r.ctx.Done():
			return nil, fmt.Errorf("http: %s %s: %w", r.method, r.url, r.ctx.Err())
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("http: %s %s failed after %d attempt(s): %w", r.method, r.url, r.retries, lastErr)
}

func (r *Request) do() (*Response, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}
	defer resp.Body.Close()

	out := &Response{StatusCode: resp.StatusCode, Headers: resp.Header}
	if r.discard {
		return out, nil
	}
	if out.Raw, err = io.ReadAll(resp.Body); err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}
	return out, nil
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the body into dest.
func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Header returns a single response header value.
func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}
