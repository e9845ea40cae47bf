package http

import (
	"context"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReadsStatusHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "image/*", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := Get(srv.URL).Header("Accept", "image/*").Send()
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "application/json", resp.Header("Content-Type"))

	var body struct{ OK bool }
	require.NoError(t, resp.JSON(&body))
	assert.True(t, body.OK)
}

func TestDiscardBody(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		w.WriteHeader(gohttp.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))
	defer srv.Close()

	resp, err := Get(srv.URL).DiscardBody().Send()
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Empty(t, resp.Raw)
}

func TestTimeoutIsAnError(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := Get(srv.URL).Timeout(30 * time.Millisecond).Send()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryOnlyTransportFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		calls.Add(1)
		w.WriteHeader(gohttp.StatusServiceUnavailable)
	}))
	defer srv.Close()

	resp, err := Get(srv.URL).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)
	assert.Equal(t, gohttp.StatusServiceUnavailable, resp.StatusCode)
	assert.EqualValues(t, 1, calls.Load())
}
