package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{Timeout: 5 * time.Second, UserAgent: "medfactors-test/1.0", MaxBytes: 1 << 20}
}

func noSleep(t *testing.T) {
	t.Helper()
	orig := fetchSleepFunc
	fetchSleepFunc = func(time.Duration) {}
	t.Cleanup(func() { fetchSleepFunc = orig })
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "medfactors-test/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", `"v1"`)
		_, _ = fmt.Fprint(w, `[{"id":1}]`)
	}))
	defer server.Close()

	res, err := NewFetcher(testOptions()).Fetch(context.Background(), server.URL+"/factors.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(res.Body))
	assert.Equal(t, "application/json", res.ContentType)
	assert.Equal(t, `"v1"`, res.ETag)
	assert.Equal(t, server.URL+"/factors.json", res.FinalURL)
}

func TestFetch_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("x", 64))
	}))
	defer server.Close()

	opts := testOptions()
	opts.MaxBytes = 16
	_, err := NewFetcher(opts).Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrTooLarge)

	opts.MaxBytes = 64
	res, err := NewFetcher(opts).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, res.Body, 64)
}

func TestFetch_Robots(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		hits.Add(1)
		_, _ = fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	opts := testOptions()
	opts.RespectRobots = true
	f := NewFetcher(opts)

	_, err := f.Fetch(context.Background(), server.URL+"/private/factors.json")
	assert.ErrorIs(t, err, ErrDisallowed)
	assert.Equal(t, int32(0), hits.Load())

	_, err = f.Fetch(context.Background(), server.URL+"/public/factors.json")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, f.robots.Len())
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "OK")
	}))
	defer server.Close()

	res, err := NewFetcher(testOptions()).FetchWithRetry(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(res.Body))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestFetchWithRetry_PermanentFailure(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewFetcher(testOptions()).FetchWithRetry(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, "unexpected status: 404 Not Found", err.Error())
	assert.Equal(t, int32(1), attempts.Load())
}

func TestFetchWithRetry_AllRetriesExhausted(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewFetcher(testOptions()).FetchWithRetry(context.Background(), server.URL)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestIsRetryableFetchError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"503", &StatusError{Code: 503}, true},
		{"500", &StatusError{Code: 500}, true},
		{"429", &StatusError{Code: 429}, true},
		{"404", &StatusError{Code: 404}, false},
		{"403", &StatusError{Code: 403}, false},
		{"disallowed", ErrDisallowed, false},
		{"too large", ErrTooLarge, false},
		{"canceled", fmt.Errorf("fetch: %w", context.Canceled), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableFetchError(tt.err))
		})
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.org/factors.html"))
	assert.True(t, IsRemote("HTTP://example.org"))
	assert.False(t, IsRemote("factors.json"))
	assert.False(t, IsRemote(""))
}

func TestNormalizeUserAgent(t *testing.T) {
	assert.Equal(t, "medfactors", NormalizeUserAgent("medfactors/0.1 (+https://github.com/ppiankov/medfactors)"))
	assert.Equal(t, "", NormalizeUserAgent(""))
}

func TestProxyFor(t *testing.T) {
	proxy := proxyFor("http://proxy:3128", "http://secure-proxy:3128")

	req := httptest.NewRequest(http.MethodGet, "https://example.org/", nil)
	u, err := proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "secure-proxy:3128", u.Host)

	req = httptest.NewRequest(http.MethodGet, "http://example.org/", nil)
	u, err = proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy:3128", u.Host)

	// https falls back to the plain proxy when no https proxy is set
	u, err = proxyFor("http://proxy:3128", "")(httptest.NewRequest(http.MethodGet, "https://example.org/", nil))
	require.NoError(t, err)
	assert.Equal(t, "proxy:3128", u.Host)

	_, err = proxyFor("http://[::1", "")(httptest.NewRequest(http.MethodGet, "http://example.org/", nil))
	assert.Error(t, err)
}
