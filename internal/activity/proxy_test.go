package activity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/miniapp-template/dashboard/internal/app"
	apperrors "github.com/miniapp-template/dashboard/pkg/errors"
)

func newActivityUpstream(t *testing.T, calls *int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/UserActivity/Get", r.URL.Path)
		require.Equal(t, "Bearer static-token-1234567890", r.Header.Get("Authorization"))
		*calls++

		_ = json.NewEncoder(w).Encode(Response{
			Data: []Activity{
				{ID: 1, UserName: r.URL.Query().Get("userName"), Action: "View"},
			},
			TotalCount: 1,
			Page:       1,
			PageSize:   25,
			TotalPages: 1,
		})
	}))
}

func newTestProxy(t *testing.T, baseURL string) *Proxy {
	t.Helper()

	proxy, err := NewProxy(app.ActivityConfig{
		APIBaseURL:  baseURL,
		StaticToken: "static-token-1234567890",
		CacheTTL:    time.Minute,
	})
	require.NoError(t, err)
	return proxy
}

func TestProxyFetchCachesByFilter(t *testing.T) {
	var calls int
	server := newActivityUpstream(t, &calls)
	defer server.Close()

	proxy := newTestProxy(t, server.URL)
	ctx := context.Background()

	filter := Filter{UserName: "developer@company.com", Page: 1, PageSize: 25}

	first, err := proxy.Fetch(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 1, first.TotalCount)
	require.Equal(t, 1, calls)

	// Identical filter: served from cache, no second upstream call.
	second, err := proxy.Fetch(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, calls)

	// Different filter misses the cache.
	_, err = proxy.Fetch(ctx, Filter{UserName: "developer@company.com", Page: 2, PageSize: 25})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestProxyFetchExpiredEntryRefetches(t *testing.T) {
	var calls int
	server := newActivityUpstream(t, &calls)
	defer server.Close()

	proxy := newTestProxy(t, server.URL)

	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	proxy.cache.now = func() time.Time { return now }

	filter := Filter{UserName: "analyst@company.com"}
	ctx := context.Background()

	_, err := proxy.Fetch(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	now = now.Add(2 * time.Minute)
	_, err = proxy.Fetch(ctx, filter)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestProxyFetchUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "activity api down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	proxy := newTestProxy(t, server.URL)

	_, err := proxy.Fetch(context.Background(), Filter{UserName: "dev"})
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	require.Equal(t, apperrors.ErrUpstream.Code, appErr.Code)
	require.Equal(t, http.StatusBadGateway, appErr.StatusCode)

	// Failures are never cached.
	require.Equal(t, 0, proxy.Cache().Len())
}

func TestProxyRequiresBaseURL(t *testing.T) {
	_, err := NewProxy(app.ActivityConfig{})
	require.Error(t, err)
}
