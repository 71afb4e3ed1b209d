package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/miniapp-template/dashboard/pkg/errors"
	"github.com/miniapp-template/dashboard/pkg/logger"
	"github.com/miniapp-template/dashboard/pkg/metrics"
)

const (
	// DefaultSafetyMargin is subtracted from the literal token expiry so a
	// token is never used when it could expire mid-request.
	DefaultSafetyMargin = 60 * time.Second

	// staticTokenTTL is the synthetic expiry applied to a statically
	// configured token, which short-circuits the refresh state machine.
	staticTokenTTL = 24 * time.Hour
)

// ErrTokenAcquisition reports a failed fetch from the token source. There is
// no silent fallback to an unauthenticated call.
var ErrTokenAcquisition = apperrors.New(
	"AUTH_TOKEN_FAILED",
	"Failed to get authentication token from auth service",
	http.StatusBadGateway,
)

// TokenManagerConfig configures a TokenManager.
type TokenManagerConfig struct {
	Endpoint     string
	StaticToken  string
	SafetyMargin time.Duration
	Timeout      time.Duration
	Clock        func() time.Time
}

// TokenManager owns the process-wide bearer token used against the activity
// API. The token moves through NoToken -> Valid -> Expiring -> Invalid based
// on its absolute expiry; within the safety margin of expiry a refresh is
// performed before the token is handed out again. Refreshes are coalesced:
// the mutex is held across the fetch, so concurrent callers share one
// outstanding refresh instead of issuing redundant ones.
type TokenManager struct {
	endpoint string
	static   string
	margin   time.Duration
	client   *http.Client
	now      func() time.Time
	log      *zap.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(cfg TokenManagerConfig) *TokenManager {
	margin := cfg.SafetyMargin
	if margin <= 0 {
		margin = DefaultSafetyMargin
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &TokenManager{
		endpoint: cfg.Endpoint,
		static:   cfg.StaticToken,
		margin:   margin,
		client:   &http.Client{Timeout: timeout},
		now:      now,
		log:      logger.WithModule("activity.token"),
	}
}

// Token returns a bearer token that is valid for at least the safety margin,
// refreshing it from the token source when required.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.now().Before(m.expiresAt.Add(-m.margin)) {
		return m.token, nil
	}

	if m.static != "" {
		m.log.Info("using statically configured activity API token")
		m.token = m.static
		m.expiresAt = m.now().Add(staticTokenTTL)
		return m.token, nil
	}

	token, expiresIn, err := m.fetch(ctx)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		m.token = ""
		m.expiresAt = time.Time{}
		m.log.Error("token refresh failed", zap.Error(err))
		return "", ErrTokenAcquisition.WithInternal(err)
	}

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	m.token = token
	m.expiresAt = m.now().Add(time.Duration(expiresIn) * time.Second)
	m.log.Info("token refreshed", zap.Int("expires_in", expiresIn))
	return m.token, nil
}

// Invalidate discards the cached token so the next caller triggers a refresh.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expiresAt = time.Time{}
}

func (m *TokenManager) fetch(ctx context.Context) (string, int, error) {
	if strings.TrimSpace(m.endpoint) == "" {
		return "", 0, errors.New("token endpoint is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoint, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", 0, fmt.Errorf("token request failed: %d %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", 0, errors.New("token response contained no access_token")
	}

	return payload.AccessToken, payload.ExpiresIn, nil
}
