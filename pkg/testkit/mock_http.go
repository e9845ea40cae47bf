package testkit

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// MockTransport is an http.RoundTripper that answers outgoing requests
// from the "httprequest" steps of a Scenario:
//
//	mt := testkit.NewMockTransport(scenario)
//	http.DefaultClient.Transport = mt
//	defer http.ResetTransport()
//	// ... run test ...
//	errs := mt.AssertAllCalled()
type MockTransport struct {
	mu          sync.Mutex
	steps       []httpMockEntry
	require     bool
	passthrough http.RoundTripper
}

type httpMockEntry struct {
	step      MockStep
	callCount int
}

// NewMockTransport builds a transport from s. Steps with isMock=false are
// forwarded to http.DefaultTransport.
func NewMockTransport(s *Scenario) *MockTransport {
	mt := &MockTransport{require: s.IsMockRequired, passthrough: http.DefaultTransport}
	for _, step := range s.NetUtilMockStep {
		mt.steps = append(mt.steps, httpMockEntry{step: step})
	}
	return mt
}

// RoundTrip answers req from the first matching step.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	step, ok := mt.match(req.URL.String())
	if !ok {
		if mt.require {
			return nil, fmt.Errorf("testkit: unexpected outgoing HTTP call to %s: no matching mock step", req.URL)
		}
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Status:     "404 Not Found",
			Body:       io.NopCloser(strings.NewReader(`{"error":"no mock configured"}`)),
			Header:     http.Header{"Content-Type": {"application/json"}},
			Request:    req,
		}, nil
	}
	if !step.IsMock {
		return mt.passthrough.RoundTrip(req)
	}

	if d := time.Duration(step.ReturnData.DelayMs) * time.Millisecond; d > 0 {
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(d):
		}
	}
	return buildHTTPResponse(req, step.ReturnData)
}

func (mt *MockTransport) match(url string) (MockStep, bool) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	for i := range mt.steps {
		entry := &mt.steps[i]
		if urlMatches(url, entry.step.MatchURL) {
			entry.callCount++
			return entry.step, true
		}
	}
	return MockStep{}, false
}

// AssertAllCalled reports every isMock=true step that was never triggered.
func (mt *MockTransport) AssertAllCalled() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var errs []error
	for _, e := range mt.steps {
		if e.step.IsMock && e.callCount == 0 {
			errs = append(errs, fmt.Errorf("testkit: mock step matchUrl=%q was never called", e.step.MatchURL))
		}
	}
	return errs
}

// Calls returns how often the step with matchURL was hit.
func (mt *MockTransport) Calls(matchURL string) int {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	n := 0
	for _, e := range mt.steps {
		if e.step.MatchURL == matchURL {
			n += e.callCount
		}
	}
	return n
}

func urlMatches(candidate, pattern string) bool {
	return pattern == "" || strings.HasPrefix(candidate, pattern)
}

func buildHTTPResponse(req *http.Request, rd MockReturnData) (*http.Response, error) {
	code := rd.StatusCode
	if code == 0 {
		code = http.StatusOK
	}

	var body []byte
	if rd.Body != "" {
		decoded, err := base64.StdEncoding.DecodeString(rd.Body)
		if err != nil {
			if decoded, err = base64.RawStdEncoding.DecodeString(rd.Body); err != nil {
				return nil, fmt.Errorf("testkit: base64 decode mock body: %w", err)
			}
		}
		body = decoded
	}

	header := http.Header{"Content-Type": {"application/json"}}
	for k, v := range rd.Headers {
		header.Set(k, v)
	}

	return &http.Response{
		StatusCode:    code,
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
