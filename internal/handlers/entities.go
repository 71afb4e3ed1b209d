package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/miniapp-template/dashboard/internal/crud"
	"github.com/miniapp-template/dashboard/internal/middleware"
	appErrors "github.com/miniapp-template/dashboard/pkg/errors"
	"github.com/miniapp-template/dashboard/pkg/response"
)

// EntityHandler exposes the CRUD facade over HTTP.
type EntityHandler struct {
	facade *crud.Facade
}

// NewEntityHandler constructs a handler using the provided facade.
func NewEntityHandler(facade *crud.Facade) *EntityHandler {
	return &EntityHandler{facade: facade}
}

type entityPayload struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Status      *string        `json:"status" validate:"omitempty,oneof=active inactive archived"`
	Metadata    map[string]any `json:"metadata"`
}

func (p entityPayload) input() crud.Input {
	return crud.Input{
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Metadata:    p.Metadata,
	}
}

// filterParams assembles the transient query descriptor from request query
// parameters. filters arrives as a JSON-encoded object.
func filterParams(c *gin.Context) crud.FilterParams {
	params := crud.FilterParams{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      parseIntQuery(c, "page", crud.DefaultPage),
		PageSize:  parseIntQuery(c, "pageSize", crud.DefaultPageSize),
	}

	if raw := c.Query("filters"); raw != "" {
		filters := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &filters); err == nil {
			params.Filters = filters
		}
	}

	return params
}

// List returns a filtered, sorted, paginated page of entities.
func (h *EntityHandler) List(c *gin.Context) {
	result, err := h.facade.List(requestContext(c), filterParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := &response.Pagination{
		Page:        result.Page,
		PageSize:    result.PageSize,
		TotalPages:  result.TotalPages,
		TotalItems:  result.TotalItems,
		HasNext:     result.HasNext,
		HasPrevious: result.HasPrevious,
	}
	response.SuccessWithMeta(c, http.StatusOK, result.Items, meta)
}

// Get returns one entity by id.
func (h *EntityHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.NewBadRequest("Entity ID is required"))
		return
	}

	entity, err := h.facade.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, entity)
}

// Create stores a new entity for the calling identity.
func (h *EntityHandler) Create(c *gin.Context) {
	var payload entityPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	if payload.Name == nil || strings.TrimSpace(*payload.Name) == "" {
		response.Error(c, appErrors.NewValidation("Name is required", "name"))
		return
	}

	input := payload.input()
	userID := c.GetString(middleware.CtxUserIDKey)
	input.CreatedBy = userID
	input.UpdatedBy = userID

	entity, err := h.facade.Create(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, entity)
}

// Update applies a partial merge to an existing entity.
func (h *EntityHandler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.NewBadRequest("Entity ID is required"))
		return
	}

	var payload entityPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	input := payload.input()
	input.UpdatedBy = c.GetString(middleware.CtxUserIDKey)

	entity, err := h.facade.Update(requestContext(c), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, entity)
}

// Delete removes one entity; a missing id reports not-found.
func (h *EntityHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.NewBadRequest("Entity ID is required"))
		return
	}

	if err := h.facade.Delete(requestContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, http.StatusOK, nil, "Entity deleted")
}

type bulkDeletePayload struct {
	IDs []string `json:"ids"`
}

// BulkDelete removes a batch of entities; missing ids are not an error.
func (h *EntityHandler) BulkDelete(c *gin.Context) {
	var payload bulkDeletePayload
	if !bindAndValidate(c, &payload) {
		return
	}

	if len(payload.IDs) == 0 {
		response.Error(c, appErrors.NewBadRequest("Array of IDs is required"))
		return
	}

	if err := h.facade.BulkDelete(requestContext(c), payload.IDs); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, http.StatusOK, nil, "Deleted entities")
}

type bulkUpdatePayload struct {
	Updates []bulkUpdateItem `json:"updates"`
}

type bulkUpdateItem struct {
	ID   string        `json:"id"`
	Data entityPayload `json:"data"`
}

// BulkUpdate applies a batch of partial updates sequentially; there is no
// atomicity across the batch and a failure partway returns the error with
// earlier updates left in place.
func (h *EntityHandler) BulkUpdate(c *gin.Context) {
	var payload bulkUpdatePayload
	if !bindAndValidate(c, &payload) {
		return
	}

	if len(payload.Updates) == 0 {
		response.Error(c, appErrors.NewBadRequest("Array of updates is required"))
		return
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	items := make([]crud.BulkItem, 0, len(payload.Updates))
	for _, update := range payload.Updates {
		input := update.Data.input()
		input.UpdatedBy = userID
		items = append(items, crud.BulkItem{ID: update.ID, Data: input})
	}

	results, err := h.facade.BulkUpdate(requestContext(c), items)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, results)
}

// Export returns the filtered raw rows without pagination.
func (h *EntityHandler) Export(c *gin.Context) {
	params := crud.FilterParams{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if raw := c.Query("filters"); raw != "" {
		filters := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &filters); err == nil {
			params.Filters = filters
		}
	}

	items, err := h.facade.Export(requestContext(c), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Import forwards the uploaded payload to the active backend. The embedded
// store reports import as unsupported through the error field.
func (h *EntityHandler) Import(c *gin.Context) {
	result, err := h.facade.Import(requestContext(c), c.Request.Body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
