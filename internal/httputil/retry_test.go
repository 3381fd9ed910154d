// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	RetryBaseDelay = time.Millisecond
}

// annotateServer answers the first limited calls with 429, then status.
// It records every form body it receives.
type annotateServer struct {
	mu      sync.Mutex
	limited int
	status  int
	bodies  []string
}

func (s *annotateServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.bodies = append(s.bodies, string(data))
	n := len(s.bodies)
	s.mu.Unlock()

	if n <= s.limited {
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}
	w.WriteHeader(s.status)
}

func (s *annotateServer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bodies)
}

func annotateRequest(t *testing.T, endpoint string) *http.Request {
	t.Helper()
	form := url.Values{"text": {"NASA launched a rocket."}}
	req, err := http.NewRequest(http.MethodPost, endpoint+"/annotate", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestDoWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		limited    int
		status     int
		maxRetries int
		wantStatus int
		wantCalls  int
	}{
		{"first attempt succeeds", 0, http.StatusOK, 5, http.StatusOK, 1},
		{"rate limited twice", 2, http.StatusOK, 5, http.StatusOK, 3},
		{"retries exhausted", 10, http.StatusOK, 3, http.StatusTooManyRequests, 4},
		{"zero retries sends once", 10, http.StatusOK, 0, http.StatusTooManyRequests, 1},
		{"negative retries sends once", 10, http.StatusOK, -1, http.StatusTooManyRequests, 1},
		{"server error not retried", 0, http.StatusInternalServerError, 5, http.StatusInternalServerError, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &annotateServer{limited: tt.limited, status: tt.status}
			ts := httptest.NewServer(srv)
			defer ts.Close()

			resp, err := DoWithRetry(context.Background(), ts.Client(), annotateRequest(t, ts.URL), tt.maxRetries)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, srv.calls())
			for _, b := range srv.bodies {
				assert.Equal(t, "text=NASA+launched+a+rocket.", b, "every attempt carries the full form")
			}
		})
	}
}

func TestDoWithRetryContextCancelledDuringBackoff(t *testing.T) {
	ts := httptest.NewServer(&annotateServer{limited: 100, status: http.StatusOK})
	defer ts.Close()

	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := DoWithRetry(ctx, ts.Client(), annotateRequest(t, ts.URL), 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoWithRetryUnreplayableBody(t *testing.T) {
	ts := httptest.NewServer(&annotateServer{limited: 100, status: http.StatusOK})
	defer ts.Close()

	req := annotateRequest(t, ts.URL)
	req.GetBody = nil

	_, err := DoWithRetry(context.Background(), ts.Client(), req, 2)
	assert.ErrorContains(t, err, "not replayable")
}

func TestDoWithRetryTransportErrorNotRetried(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	endpoint := ts.URL
	ts.Close()

	_, err := DoWithRetry(context.Background(), http.DefaultClient, annotateRequest(t, endpoint), 5)
	assert.Error(t, err)
}
