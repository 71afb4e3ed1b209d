package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/miniapp-template/dashboard/internal/auth"
	"github.com/miniapp-template/dashboard/internal/middleware"
	appErrors "github.com/miniapp-template/dashboard/pkg/errors"
	"github.com/miniapp-template/dashboard/pkg/logger"
	"github.com/miniapp-template/dashboard/pkg/response"
)

// AuthHandler exposes the mock token endpoints. It simulates the upstream
// auth service contract so the dashboard can run without real SSO.
type AuthHandler struct {
	tokens  *auth.TokenService
	access  *auth.AccessChecker
	appName string
	log     *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(tokens *auth.TokenService, access *auth.AccessChecker, appName string) *AuthHandler {
	return &AuthHandler{
		tokens:  tokens,
		access:  access,
		appName: appName,
		log:     logger.WithModule("auth"),
	}
}

// Token issues a bearer token for the calling identity when the app access
// check passes. Denials answer 403.
func (h *AuthHandler) Token(c *gin.Context) {
	email := c.GetString(middleware.CtxUserEmailKey)
	user := auth.LookupUser(email)

	if !h.access.CheckUserAccess(user.Email, h.appName) {
		response.Error(c, appErrors.New(
			"FORBIDDEN",
			fmt.Sprintf("User %s does not have access to %s", user.Email, h.appName),
			http.StatusForbidden,
		))
		return
	}

	token, err := h.tokens.Issue(user, h.appName)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, "Token generation failed"))
		return
	}

	h.log.Info("token issued", zap.String("email", user.Email), zap.String("app", h.appName))
	c.JSON(http.StatusOK, token)
}

type verifyPayload struct {
	Token string `json:"token"`
}

// Verify introspects a previously issued token.
func (h *AuthHandler) Verify(c *gin.Context) {
	var payload verifyPayload
	if !bindAndValidate(c, &payload) {
		return
	}
	if payload.Token == "" {
		response.Error(c, appErrors.NewBadRequest("Token required"))
		return
	}

	claims, err := h.tokens.Verify(payload.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"valid": false,
			"error": "Invalid token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user": gin.H{
			"id":    claims.UserID,
			"email": claims.Email,
			"name":  claims.Name,
			"roles": claims.Roles,
			"app":   claims.App,
		},
		"expiresAt": claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
	})
}

// UserInfo returns the token subject in Microsoft Graph API format.
func (h *AuthHandler) UserInfo(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		response.Error(c, appErrors.ErrUnauthorized.WithDetails(map[string]any{"message": "Bearer token required"}))
		return
	}

	claims, err := h.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	jobTitle := "User"
	for _, role := range claims.Roles {
		if role == "admin" {
			jobTitle = "Administrator"
			break
		}
	}

	given, surname := splitName(claims.Name)
	c.JSON(http.StatusOK, gin.H{
		"id":                claims.UserID,
		"mail":              claims.Email,
		"userPrincipalName": claims.Email,
		"displayName":       claims.Name,
		"givenName":         given,
		"surname":           surname,
		"jobTitle":          jobTitle,
	})
}

// Logout is a no-op acknowledgement; token invalidation is the upstream
// auth service's concern.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.SuccessMessage(c, http.StatusOK, nil, "Logged out successfully")
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
