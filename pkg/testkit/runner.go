package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	bthttp "github.com/shashiranjanraj/bloomthread/pkg/http"
)

// Run executes the scenario at path against handler as a subtest.
//
// Per scenario:
//  1. read the request body file
//  2. install the mock transport on pkg/http's client
//  3. fire the request with httptest
//  4. assert status, headers and JSON body
//  5. verify every mock step was called
func Run(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", path, err)
	}
	t.Run(s.Name, func(t *testing.T) { runScenario(t, handler, s) })
}

// RunDir runs every *.json scenario in dir. Files whose name ends in
// _req.json or _res.json are bodies, not scenarios.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("testkit: no scenario files found in %q", dir)
	}

	for _, path := range entries {
		if strings.HasSuffix(path, "_req.json") || strings.HasSuffix(path, "_res.json") {
			continue
		}
		s, err := LoadScenario(path)
		if err != nil {
			t.Errorf("testkit: load %q: %v", path, err)
			continue
		}
		t.Run(s.Name, func(t *testing.T) { runScenario(t, handler, s) })
	}
}

func runScenario(t *testing.T, handler http.Handler, s *Scenario) {
	t.Helper()

	var body io.Reader
	if p := s.RequestBodyPath(); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("[%s] read request file %q: %v", s.Name, p, err)
		}
		body = bytes.NewReader(data)
	}

	mt := NewMockTransport(s)
	original := bthttp.DefaultClient.Transport
	bthttp.DefaultClient.Transport = mt
	defer func() { bthttp.DefaultClient.Transport = original }()

	req := httptest.NewRequest(strings.ToUpper(s.RequestMethod), s.RequestURL, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)
	AssertHeaders(t, s, rec.Header())

	if p := s.ResponseBodyPath(); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file %q: %v", s.Name, p, err)
		} else {
			AssertJSONBody(t, s, expected, rec.Body.Bytes())
		}
	}

	AssertMocksAllCalled(t, s, mt)
}
