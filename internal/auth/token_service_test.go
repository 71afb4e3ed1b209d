package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T, clock func() time.Time) *TokenService {
	t.Helper()

	svc, err := NewTokenService(TokenServiceConfig{
		Secret: "test-secret",
		Issuer: "miniapp-auth-service",
		TTL:    time.Hour,
		Clock:  clock,
	})
	require.NoError(t, err)
	return svc
}

func TestTokenServiceIssueAndVerify(t *testing.T) {
	now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, func() time.Time { return now })

	user := MockUser{ID: "user-123", Email: "Developer@Company.com", Name: "Development User", Roles: []string{"user", "developer"}}

	issued, err := svc.Issue(user, "myapp")
	require.NoError(t, err)
	require.Equal(t, "Bearer", issued.TokenType)
	require.Equal(t, 3600, issued.ExpiresIn)
	require.NotEmpty(t, issued.AccessToken)

	claims, err := svc.Verify(issued.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, "developer@company.com", claims.Email)
	require.Equal(t, "myapp", claims.App)
	require.Equal(t, []string{"user", "developer"}, claims.Roles)
}

func TestTokenServiceRejectsExpiredToken(t *testing.T) {
	now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, func() time.Time { return now })

	issued, err := svc.Issue(MockUser{ID: "user-123", Email: "developer@company.com"}, "myapp")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = svc.Verify(issued.AccessToken)
	require.Error(t, err)
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	svc := newTestTokenService(t, nil)

	issued, err := svc.Issue(MockUser{ID: "user-123", Email: "developer@company.com"}, "myapp")
	require.NoError(t, err)

	other, err := NewTokenService(TokenServiceConfig{Secret: "different-secret", Issuer: "miniapp-auth-service"})
	require.NoError(t, err)

	_, err = other.Verify(issued.AccessToken)
	require.Error(t, err)
}

func TestTokenServiceRejectsWrongIssuer(t *testing.T) {
	svc, err := NewTokenService(TokenServiceConfig{Secret: "test-secret", Issuer: "someone-else"})
	require.NoError(t, err)

	issued, err := svc.Issue(MockUser{ID: "user-123", Email: "developer@company.com"}, "myapp")
	require.NoError(t, err)

	verifier := newTestTokenService(t, nil)
	_, err = verifier.Verify(issued.AccessToken)
	require.Error(t, err)
}

func TestTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService(TokenServiceConfig{})
	require.Error(t, err)
}
