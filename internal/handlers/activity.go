package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/miniapp-template/dashboard/internal/activity"
	"github.com/miniapp-template/dashboard/pkg/response"
)

// Activity handler defaults applied when query parameters are absent.
const (
	defaultActivityPageSize = 25
	defaultActivitySortBy   = "id"
	defaultActivitySortDir  = "desc"
)

// ActivityHandler serves user-activity pages through the caching proxy.
type ActivityHandler struct {
	proxy *activity.Proxy
}

// NewActivityHandler constructs a handler using the provided proxy.
func NewActivityHandler(proxy *activity.Proxy) *ActivityHandler {
	return &ActivityHandler{proxy: proxy}
}

// List proxies an activity query upstream. Query parameters map 1:1 to the
// filter fields; the upstream page payload is relayed unchanged.
func (h *ActivityHandler) List(c *gin.Context) {
	filter := activity.Filter{
		UserName:      c.Query("userName"),
		DateFrom:      c.Query("dateFrom"),
		DateTo:        c.Query("dateTo"),
		Page:          parseIntQuery(c, "page", 1),
		PageSize:      parseIntQuery(c, "pageSize", defaultActivityPageSize),
		SortBy:        c.DefaultQuery("sortBy", defaultActivitySortBy),
		SortDirection: c.DefaultQuery("sortDirection", defaultActivitySortDir),
	}

	data, err := h.proxy.Fetch(requestContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}
