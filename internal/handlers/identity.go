package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/miniapp-template/dashboard/internal/middleware"
	"github.com/miniapp-template/dashboard/pkg/response"
)

// Me returns the caller identity derived from the upstream-injected headers.
func Me(c *gin.Context) {
	response.Success(c, http.StatusOK, middleware.UserFromContext(c))
}
