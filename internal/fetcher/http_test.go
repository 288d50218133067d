package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithTimeout_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "jobscout-test/1.0", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher("jobscout-test/1.0", 5*time.Second)
	res, err := f.FetchWithTimeout(context.Background(), srv.URL, FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "<html>ok</html>", string(res.Body))
}

func TestFetchWithTimeout_NonOKIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	f := NewHTTPFetcher("", time.Second)
	res, err := f.FetchWithTimeout(context.Background(), srv.URL, FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusGone, res.StatusCode)
}

func TestFetchWithTimeout_DeadlineAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher("", 10*time.Second)
	start := time.Now()
	_, err := f.FetchWithTimeout(context.Background(), srv.URL, FetchOptions{Timeout: 50 * time.Millisecond})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchWithTimeout_ExtraHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewHTTPFetcher("", time.Second)
	_, err := f.FetchWithTimeout(context.Background(), srv.URL, FetchOptions{
		Headers: map[string]string{"Accept": "application/json"},
	})
	require.NoError(t, err)
}

func TestProbe_HeadThenGetFallback(t *testing.T) {
	var sawGet bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sawGet = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewHTTPFetcher("", time.Second)
	assert.True(t, f.Probe(context.Background(), srv.URL, time.Second))
	assert.True(t, sawGet)
}

func TestProbe_NotFoundIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewHTTPFetcher("", time.Second)
	assert.False(t, f.Probe(context.Background(), srv.URL, time.Second))
}

func TestProbe_ConnectionRefused(t *testing.T) {
	f := NewHTTPFetcher("", time.Second)
	assert.False(t, f.Probe(context.Background(), "http://127.0.0.1:1/never", 200*time.Millisecond))
}
