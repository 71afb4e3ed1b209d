package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/miniapp-template/dashboard/pkg/errors"
	"github.com/miniapp-template/dashboard/pkg/response"
	appValidator "github.com/miniapp-template/dashboard/pkg/validator"
)

// bindAndValidate decodes the JSON body into dest and validates it, writing
// the error response itself when either step fails.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
		return false
	}

	return true
}

func formatValidationError(err error) string {
	if err == nil {
		return "invalid request payload"
	}

	if ve, ok := err.(appValidator.ValidationErrors); ok {
		if len(ve) == 0 {
			return "invalid request payload"
		}
		parts := make([]string, len(ve))
		for i, fe := range ve {
			parts[i] = fe.Field + " is invalid"
		}
		return strings.Join(parts, "; ")
	}

	return err.Error()
}

// requestContext extracts the context passed down to providers and services.
// Handlers constructed without a request (direct calls in tests) get a
// background context instead of a nil dereference.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// parseIntQuery reads an integer query parameter, falling back to def for
// missing or malformed values.
func parseIntQuery(c *gin.Context, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return def
	}
	return value
}
