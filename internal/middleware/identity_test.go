package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupIdentityRouter(applyDefaults bool, capture *CurrentUser) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Identity(applyDefaults))
	r.GET("/probe", func(c *gin.Context) {
		*capture = UserFromContext(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestIdentityParsesAndEchoesHeaders(t *testing.T) {
	var user CurrentUser
	r := setupIdentityRouter(true, &user)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-User-Id", "user-123")
	req.Header.Set("X-User-Email", "developer@company.com")
	req.Header.Set("X-User-Name", "Development User")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, "user-123", user.ID)
	require.Equal(t, "developer@company.com", user.Email)
	require.Equal(t, "Development User", user.Name)

	require.Equal(t, "user-123", rec.Header().Get("X-User-Id"))
	require.Equal(t, "developer@company.com", rec.Header().Get("X-User-Email"))
	require.Equal(t, "Development User", rec.Header().Get("X-User-Name"))
}

func TestIdentityAppliesDevelopmentDefaults(t *testing.T) {
	var user CurrentUser
	r := setupIdentityRouter(true, &user)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, "defaultuserid", user.ID)
	require.Equal(t, "defaultemail", user.Email)
	require.Equal(t, "defaultusername", user.Name)
	require.Equal(t, "defaultuserid", rec.Header().Get("X-User-Id"))
}

func TestIdentitySkipsDefaultsInProductionPosture(t *testing.T) {
	var user CurrentUser
	r := setupIdentityRouter(false, &user)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Empty(t, user.ID)
	require.Empty(t, user.Email)
	require.Empty(t, rec.Header().Get("X-User-Id"))
}
