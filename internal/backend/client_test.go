// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChat_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "total sales in 2024?", req["question"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer":"12,345","sql":"SELECT SUM(amount) FROM sales","columns":["total"],"rows":[{"total":12345.0}]}`))
	}))
	defer server.Close()

	client := New(Config{URL: server.URL + "/"})
	p, err := client.Chat(context.Background(), "total sales in 2024?")
	require.NoError(t, err)

	assert.Equal(t, "12,345", p.Answer)
	assert.True(t, p.HasSQL())
	assert.True(t, p.HasTable())
	assert.Equal(t, json.Number("12345.0"), p.Rows[0]["total"])
}

func TestChat_StatusError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"not found", http.StatusNotFound},
		{"bad request", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"detail":"boom"}`))
			}))
			defer server.Close()

			_, err := New(Config{URL: server.URL}).Chat(context.Background(), "q")
			require.Error(t, err)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.Status)
			assert.Contains(t, se.Body, "boom")
			assert.Equal(t, "HTTP "+itoa(tt.status), err.Error())
		})
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestChat_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	_, err := New(Config{URL: server.URL}).Chat(context.Background(), "q")
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestChat_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(Config{URL: url}).Chat(context.Background(), "q")
	assert.True(t, errors.Is(err, ErrRequest))
}

func TestChat_ResponseTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"` + strings.Repeat("x", 200) + `"}`))
	}))
	defer server.Close()

	_, err := New(Config{URL: server.URL, MaxResponseSize: 64}).Chat(context.Background(), "q")
	assert.True(t, errors.Is(err, ErrResponseTooLarge))
}

func TestChat_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := New(Config{URL: server.URL, Timeout: 50 * time.Millisecond}).Chat(context.Background(), "q")
	assert.True(t, errors.Is(err, ErrRequest))
}

func TestChat_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{URL: server.URL}).Chat(ctx, "q")
	assert.True(t, errors.Is(err, ErrRequest))
	assert.True(t, errors.Is(err, context.Canceled), "cause is kept: %v", err)
}

func TestChat_LimiterWaitKeepsCause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{URL: "http://127.0.0.1:1", RatePerSec: 1}).Chat(ctx, "q")
	assert.True(t, errors.Is(err, ErrRequest))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestChat_RateLimiterSpacesRequests(t *testing.T) {
	var count atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.Write([]byte(`{"answer":"ok"}`))
	}))
	defer server.Close()

	client := New(Config{URL: server.URL, RatePerSec: 20})
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.Chat(context.Background(), "q")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), count.Load(), "no request is dropped")
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestClient_Defaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, DefaultURL, c.BaseURL())
	assert.Equal(t, int64(DefaultMaxResponseSize), c.maxResponseSize)
	assert.Equal(t, DefaultHealthTimeout, c.healthTimeout)
	assert.Nil(t, c.limiter)
	assert.Equal(t, time.Duration(0), c.httpClient.Timeout)

	c.SetBaseURL(" http://example.test:9000/ ")
	assert.Equal(t, "http://example.test:9000", c.BaseURL())
}

func TestClient_Reconfigure(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/slow/") {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}
		w.Write([]byte(`{"answer":"` + strings.Repeat("x", 200) + `"}`))
	}))
	defer server.Close()
	defer close(release)

	c := New(Config{URL: "http://127.0.0.1:1"})
	_, err := c.Chat(context.Background(), "q")
	require.Error(t, err)

	c.Reconfigure(Config{
		URL:             server.URL,
		Timeout:         50 * time.Millisecond,
		HealthTimeout:   2 * time.Second,
		MaxResponseSize: 64,
		RatePerSec:      20,
	})
	got := c.Settings()
	assert.Equal(t, server.URL, got.URL)
	assert.Equal(t, 50*time.Millisecond, got.Timeout)
	assert.Equal(t, 2*time.Second, got.HealthTimeout)
	assert.Equal(t, int64(64), got.MaxResponseSize)
	assert.Equal(t, 20.0, got.RatePerSec)
	require.NotNil(t, c.limiter)

	_, err = c.Chat(context.Background(), "q")
	assert.True(t, errors.Is(err, ErrResponseTooLarge), "new size cap applies: %v", err)

	c.SetBaseURL(server.URL + "/slow")
	start := time.Now()
	_, err = c.Chat(context.Background(), "q")
	assert.True(t, errors.Is(err, ErrRequest), "new timeout applies: %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)

	c.Reconfigure(Config{URL: server.URL})
	assert.Equal(t, time.Duration(0), c.Settings().Timeout)
	assert.Nil(t, c.limiter)
}

// =============================================================================
// HEALTH / PROBE TESTS
// =============================================================================

func TestHealthAndProbe(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer healthy.Close()

	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer unhealthy.Close()

	res := Probe(context.Background(), New(Config{URL: healthy.URL}))
	assert.True(t, res.OK())
	assert.Equal(t, HealthOK, res.State)
	assert.Equal(t, healthy.URL, res.URL)
	assert.NoError(t, res.Err)

	res = Probe(context.Background(), New(Config{URL: unhealthy.URL}))
	assert.False(t, res.OK())
	assert.Equal(t, HealthDown, res.State)
	var se *StatusError
	require.True(t, errors.As(res.Err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Status)
}

func TestHealth_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	err := New(Config{URL: server.URL, HealthTimeout: 50 * time.Millisecond}).Health(context.Background())
	assert.True(t, errors.Is(err, ErrRequest))
}

func TestHealthState_String(t *testing.T) {
	assert.Equal(t, "online", HealthOK.String())
	assert.Equal(t, "offline", HealthDown.String())
	assert.Equal(t, "checking", HealthUnknown.String())
}
