// Package testkit drives HTTP API tests from JSON scenario files.
//
// Each scenario describes:
//   - the request to fire (method, URL, body file, headers)
//   - the expected status code, headers and response body file
//   - mock steps for outgoing HTTP calls made through pkg/http
//
// Scenario files live next to the *_test.go files that run them:
//
//	testdata/
//	  add_to_cart.json        ← scenario
//	  add_to_cart_req.json    ← request body
//	  add_to_cart_res.json    ← expected response body
//
//	func TestAPI(t *testing.T) {
//	    testkit.RunDir(t, handler, "testdata")
//	}
package testkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Scenario is a single API test case loaded from a JSON file.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`   // defaults to GET
	RequestURL      string            `json:"requestUrl"`      // e.g. /api/cart
	RequestFileName string            `json:"requestFileName"` // body file, relative to the scenario
	Headers         map[string]string `json:"headers"`

	ExpectedCode     int               `json:"expectedCode"`
	ExpectedHeaders  map[string]string `json:"expectedHeaders"`  // exact match per header
	ResponseFileName string            `json:"responseFileName"` // expected JSON body

	// IsMockRequired fails any outgoing call with no matching mock step.
	IsMockRequired  bool       `json:"isMockRequired"`
	NetUtilMockStep []MockStep `json:"netUtilMockStep"`

	dir string // directory of the scenario file
}

// MockStep describes one intercepted outgoing call. Only "httprequest"
// steps are understood; others are rejected at load time.
type MockStep struct {
	Method string `json:"method"`

	// IsMock false documents a real dependency: matching requests are
	// passed to the production transport.
	IsMock bool `json:"isMock"`

	// MatchURL is a prefix of the outgoing URL. Empty matches anything.
	MatchURL string `json:"matchUrl"`

	ReturnData MockReturnData `json:"returnData"`
}

// MockReturnData is the synthetic response of a mock step.
type MockReturnData struct {
	StatusCode int               `json:"statusCode"` // defaults to 200
	Headers    map[string]string `json:"headers"`    // Content-Type defaults to application/json
	Body       string            `json:"body"`       // base64-encoded

	// DelayMs holds the response back, honouring the request context, so a
	// scenario can exercise client timeouts.
	DelayMs int `json:"delayMs"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.RequestURL == "" {
		return errors.New("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return errors.New("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	for i, step := range s.NetUtilMockStep {
		if step.Method != "httprequest" {
			return fmt.Errorf("netUtilMockStep[%d].method %q is not supported", i, step.Method)
		}
	}
	return nil
}

func (s *Scenario) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// RequestBodyPath is the absolute request body path, or "".
func (s *Scenario) RequestBodyPath() string { return s.resolve(s.RequestFileName) }

// ResponseBodyPath is the absolute expected-response path, or "".
func (s *Scenario) ResponseBodyPath() string { return s.resolve(s.ResponseFileName) }
