package response

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/miniapp-template/dashboard/pkg/errors"
	"github.com/miniapp-template/dashboard/pkg/logger"
)

// Response defines the base API payload shared by every endpoint.
type Response struct {
	Success  bool           `json:"success"`
	Data     any            `json:"data,omitempty"`
	Message  string         `json:"message,omitempty"`
	Metadata *Pagination    `json:"metadata,omitempty"`
	Error    string         `json:"error,omitempty"`
	Code     string         `json:"code,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// Pagination describes list metadata. Field names match the frontend grid contract.
type Pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

var productionMode atomic.Bool

// SetProductionMode controls whether 500 responses are sanitized. Called once
// during bootstrap; a production posture must never leak internal error text.
func SetProductionMode(enabled bool) {
	productionMode.Store(enabled)
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessMessage writes a JSON success response with a human-readable message.
func SuccessMessage(c *gin.Context, statusCode int, data any, message string) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SuccessWithMeta writes a JSON success response including pagination metadata.
func SuccessWithMeta(c *gin.Context, statusCode int, data any, meta *Pagination) {
	c.JSON(statusCode, Response{
		Success:  true,
		Data:     data,
		Metadata: meta,
	})
}

// Error is the central error translator: it derives the status code from the
// AppError taxonomy, logs full request context server-side and returns a
// sanitized payload to the client. Authorization headers and request bodies
// are never logged here.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	logger.WithModule("http").Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.String("code", appErr.Code),
		zap.Int("status", status),
		zap.Error(appErr),
	)

	message := appErr.Message
	details := appErr.Details
	if status >= http.StatusInternalServerError && productionMode.Load() {
		message = appErrors.ErrInternalServer.Message
		details = nil
	}

	c.JSON(status, Response{
		Success: false,
		Error:   message,
		Code:    appErr.Code,
		Details: details,
	})
}
