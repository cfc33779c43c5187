package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/cc-usage-monitor/internal/data/store"
)

func usageServer(t *testing.T, hits *int32, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestClient_FetchAndCache(t *testing.T) {
	var hits int32
	srv := usageServer(t, &hits, `{"daily_spent": 12.5, "daily_budget": 50}`)
	defer srv.Close()

	c := NewClient(store.NewResponseCache())

	data, err := c.Fetch(context.Background(), srv.URL, "tok")
	require.NoError(t, err)
	assert.Equal(t, 12.5, data["daily_spent"])

	// Second fetch is served from cache.
	_, err = c.Fetch(context.Background(), srv.URL, "tok")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_FetchErrors(t *testing.T) {
	c := NewClient(nil)

	_, err := c.Fetch(context.Background(), "", "tok")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.Fetch(context.Background(), "https://api.example.com", "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	var hits int32
	srv := usageServer(t, &hits, `{}`)
	defer srv.Close()

	_, err = c.Fetch(context.Background(), srv.URL, "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_SingleFlight(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write([]byte(`{"v": 1}`))
	}))
	defer srv.Close()

	c := NewClient(nil)

	var wg sync.WaitGroup
	results := make([]map[string]interface{}, 5)
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Fetch(context.Background(), srv.URL, "tok")
		}(i)
	}

	// Let the callers pile up behind the first request, then release it.
	for atomic.LoadInt32(&hits) == 0 {
		runtime.Gosched()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "concurrent fetches share one request")
	for i, data := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, 1.0, data["v"])
	}
}

func TestClient_TestConnection(t *testing.T) {
	var hits int32
	srv := usageServer(t, &hits, `{"usage": {"daily_spent": 3}, "plan": "pro"}`)
	defer srv.Close()

	c := NewClient(nil)

	result := c.TestConnection(context.Background(), srv.URL, "tok")
	require.True(t, result.Success)
	assert.Equal(t, []string{"plan", "usage", "usage.daily_spent"}, result.FieldKeys)

	result = c.TestConnection(context.Background(), srv.URL, "wrong")
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)

	result = c.TestConnection(context.Background(), "", "tok")
	assert.False(t, result.Success)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "missing config never reaches the network")
}
