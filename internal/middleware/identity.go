package middleware

import (
	"github.com/gin-gonic/gin"
)

// Context keys for the caller identity resolved from upstream headers.
const (
	CtxUserIDKey    = "user_id"
	CtxUserEmailKey = "user_email"
	CtxUserNameKey  = "user_name"
)

// Development fallbacks applied when the upstream proxy did not inject
// identity headers. Never applied in a production posture.
const (
	defaultUserID    = "defaultuserid"
	defaultUserEmail = "defaultemail"
	defaultUserName  = "defaultusername"
)

// CurrentUser is the caller identity as parsed from the X-User-* headers.
type CurrentUser struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// Identity parses the X-User-Id/X-User-Email/X-User-Name headers injected by
// the upstream proxy, stores the caller on the request context and echoes the
// headers on the response. The headers are trusted as already validated
// upstream; this middleware never re-authenticates them.
//
// When applyDefaults is true (development only), absent headers fall back to
// fixed local identities.
func Identity(applyDefaults bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-Id")
		userEmail := c.GetHeader("X-User-Email")
		userName := c.GetHeader("X-User-Name")

		if applyDefaults {
			if userID == "" {
				userID = defaultUserID
			}
			if userEmail == "" {
				userEmail = defaultUserEmail
			}
			if userName == "" {
				userName = defaultUserName
			}
		}

		c.Set(CtxUserIDKey, userID)
		c.Set(CtxUserEmailKey, userEmail)
		c.Set(CtxUserNameKey, userName)

		c.Header("X-User-Id", userID)
		c.Header("X-User-Email", userEmail)
		c.Header("X-User-Name", userName)

		c.Next()
	}
}

// UserFromContext assembles the CurrentUser stored by Identity.
func UserFromContext(c *gin.Context) CurrentUser {
	return CurrentUser{
		ID:          c.GetString(CtxUserIDKey),
		Email:       c.GetString(CtxUserEmailKey),
		Name:        c.GetString(CtxUserNameKey),
		Roles:       []string{"user"},
		Permissions: []string{"read", "write"},
	}
}
