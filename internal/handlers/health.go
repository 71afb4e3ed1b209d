package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health returns a simple status payload useful for readiness checks.
func Health(environment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "API is running",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": environment,
		})
	}
}
