package activity

import "encoding/json"

// Activity is one user-activity record as served by the external company API.
type Activity struct {
	ID           int    `json:"id"`
	UserName     string `json:"userName"`
	ActivityOn   string `json:"activityOn"`
	ActivityAt   string `json:"activityAt"`
	Controller   string `json:"controller"`
	Action       string `json:"action"`
	RequestParam string `json:"requestParam"`
	ActivityIP   string `json:"activityIp"`
	IPCountry    string `json:"ipCountry"`
	TokenID      string `json:"tokenId"`
	UserAgent    string `json:"userAgent"`
}

// Response is the upstream page payload, relayed to the dashboard unchanged.
type Response struct {
	Data       []Activity `json:"data"`
	TotalCount int        `json:"totalCount"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

// Filter describes an activity query. Fields map 1:1 to upstream query
// parameters; zero values are omitted from the outbound request.
type Filter struct {
	UserName      string `json:"userName"`
	DateFrom      string `json:"dateFrom"`
	DateTo        string `json:"dateTo"`
	Page          int    `json:"page"`
	PageSize      int    `json:"pageSize"`
	SortBy        string `json:"sortBy"`
	SortDirection string `json:"sortDirection"`
}

// CacheKey returns the canonical serialization of the filter. Struct field
// order is fixed, so two logically-identical filters always produce the same
// key.
func (f Filter) CacheKey() string {
	raw, _ := json.Marshal(f)
	return string(raw)
}
