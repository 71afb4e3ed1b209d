package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/miniapp-template/dashboard/internal/app"
	apperrors "github.com/miniapp-template/dashboard/pkg/errors"
	"github.com/miniapp-template/dashboard/pkg/logger"
	"github.com/miniapp-template/dashboard/pkg/metrics"
)

// Proxy serves user-activity pages from the external company API,
// transparently caching both the bearer token and the query results.
//
// Concurrency: two concurrent misses for the same key may both fetch
// upstream and both write the cache; the last write wins. That is duplicate
// work, not a correctness problem, since cache writes are whole-entry
// replacements.
type Proxy struct {
	baseURL string
	client  *http.Client
	tokens  *TokenManager
	cache   *ResponseCache
	log     *zap.Logger
}

// NewProxy constructs the activity proxy from configuration.
func NewProxy(cfg app.ActivityConfig) (*Proxy, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if base == "" {
		return nil, errors.New("activity proxy: api base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	tokens := NewTokenManager(TokenManagerConfig{
		Endpoint:     cfg.TokenEndpoint,
		StaticToken:  cfg.StaticToken,
		SafetyMargin: cfg.SafetyMargin,
		Timeout:      timeout,
	})

	return &Proxy{
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
		cache:   NewResponseCache(cfg.CacheTTL),
		log:     logger.WithModule("activity"),
	}, nil
}

// Cache exposes the response cache for the scheduled sweep.
func (p *Proxy) Cache() *ResponseCache {
	return p.cache
}

// Tokens exposes the token manager so routes can invalidate on demand.
func (p *Proxy) Tokens() *TokenManager {
	return p.tokens
}

// Fetch returns the activity page for the filter, serving from cache when a
// valid entry exists and fetching upstream otherwise.
func (p *Proxy) Fetch(ctx context.Context, filter Filter) (*Response, error) {
	key := filter.CacheKey()

	if cached, ok := p.cache.Get(key); ok {
		metrics.ActivityCacheHits.WithLabelValues("hit").Inc()
		p.log.Debug("serving cached user activities", zap.String("key", key))
		return cached, nil
	}
	metrics.ActivityCacheHits.WithLabelValues("miss").Inc()

	data, err := p.fetchUpstream(ctx, filter)
	if err != nil {
		return nil, err
	}

	p.cache.Put(key, data)
	return data, nil
}

func (p *Proxy) fetchUpstream(ctx context.Context, filter Filter) (*Response, error) {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := p.baseURL + "/api/UserActivity/Get?" + filterQuery(filter).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "build activity request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	p.log.Debug("fetching user activities upstream", zap.String("url", endpoint))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, apperrors.NewUpstream(resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var data Response
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(fmt.Errorf("decode activity response: %w", err))
	}

	p.log.Debug("fetched user activities", zap.Int("count", len(data.Data)))
	return &data, nil
}

// filterQuery builds the upstream query string, including a parameter only
// when its value is set.
func filterQuery(filter Filter) url.Values {
	query := url.Values{}
	if filter.UserName != "" {
		query.Set("userName", filter.UserName)
	}
	if filter.DateFrom != "" {
		query.Set("dateFrom", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query.Set("dateTo", filter.DateTo)
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(filter.PageSize))
	}
	if filter.SortBy != "" {
		query.Set("sortBy", filter.SortBy)
	}
	if filter.SortDirection != "" {
		query.Set("sortDirection", filter.SortDirection)
	}
	return query
}
