package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/miniapp-template/dashboard/internal/app"
	"github.com/miniapp-template/dashboard/internal/crud"
	"github.com/miniapp-template/dashboard/internal/middleware"
	"github.com/miniapp-template/dashboard/internal/models"
	"github.com/miniapp-template/dashboard/pkg/response"
)

type envelope struct {
	Success  bool                 `json:"success"`
	Data     json.RawMessage      `json:"data"`
	Message  string               `json:"message"`
	Metadata *response.Pagination `json:"metadata"`
	Error    string               `json:"error"`
	Code     string               `json:"code"`
	Details  map[string]any       `json:"details"`
}

func setupEntityRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Entity{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	facade, err := crud.NewFacade(app.CRUDConfig{UseEmbedded: true}, db)
	require.NoError(t, err)

	handler := NewEntityHandler(facade)

	r := gin.New()
	r.Use(middleware.Identity(true))
	entities := r.Group("/api/entities")
	{
		entities.GET("", handler.List)
		entities.POST("", handler.Create)
		entities.GET("/export", handler.Export)
		entities.POST("/bulk-delete", handler.BulkDelete)
		entities.POST("/bulk-update", handler.BulkUpdate)
		entities.POST("/import", handler.Import)
		entities.GET("/:id", handler.Get)
		entities.PUT("/:id", handler.Update)
		entities.DELETE("/:id", handler.Delete)
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if len(rec.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func createTestEntity(t *testing.T, r *gin.Engine, name string) models.Entity {
	t.Helper()

	rec, env := doJSON(t, r, http.MethodPost, "/api/entities", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code)

	var entity models.Entity
	require.NoError(t, json.Unmarshal(env.Data, &entity))
	return entity
}

func TestCreateEntityRequiresName(t *testing.T) {
	r := setupEntityRouter(t)

	rec, env := doJSON(t, r, http.MethodPost, "/api/entities", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, env.Success)
	require.Equal(t, "VALIDATION_ERROR", env.Code)
	require.Equal(t, "name", env.Details["field"])
}

func TestCreateEntityRejectsUnknownStatus(t *testing.T) {
	r := setupEntityRouter(t)

	rec, env := doJSON(t, r, http.MethodPost, "/api/entities", map[string]any{
		"name":   "Bad Status",
		"status": "bogus",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, env.Success)
}

func TestCreateEntityStampsCallerIdentity(t *testing.T) {
	r := setupEntityRouter(t)

	entity := createTestEntity(t, r, "Owned Thing")
	require.Equal(t, "Owned Thing", entity.Name)
	require.Equal(t, "defaultuserid", entity.CreatedBy)
	require.Equal(t, "defaultuserid", entity.UpdatedBy)
}

func TestGetEntityNotFound(t *testing.T) {
	r := setupEntityRouter(t)

	rec, env := doJSON(t, r, http.MethodGet, "/api/entities/no-such-id", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", env.Code)
}

func TestListEntitiesPaginationEnvelope(t *testing.T) {
	r := setupEntityRouter(t)

	for i := 0; i < 3; i++ {
		createTestEntity(t, r, fmt.Sprintf("Entity %d", i))
	}

	rec, env := doJSON(t, r, http.MethodGet, "/api/entities?pageSize=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)
	require.NotNil(t, env.Metadata)
	require.Equal(t, 3, env.Metadata.TotalItems)
	require.Equal(t, 2, env.Metadata.TotalPages)
	require.True(t, env.Metadata.HasNext)
	require.False(t, env.Metadata.HasPrevious)
}

func TestUpdateEntityPartialMerge(t *testing.T) {
	r := setupEntityRouter(t)

	entity := createTestEntity(t, r, "Original Name")

	rec, env := doJSON(t, r, http.MethodPut, "/api/entities/"+entity.ID, map[string]any{
		"description": "now described",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Entity
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Equal(t, "Original Name", updated.Name)
	require.Equal(t, "now described", updated.Description)
}

func TestDeleteEntity(t *testing.T) {
	r := setupEntityRouter(t)

	entity := createTestEntity(t, r, "Doomed")

	rec, env := doJSON(t, r, http.MethodDelete, "/api/entities/"+entity.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Entity deleted", env.Message)

	rec, _ = doJSON(t, r, http.MethodDelete, "/api/entities/"+entity.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkDeleteRequiresIDs(t *testing.T) {
	r := setupEntityRouter(t)

	rec, env := doJSON(t, r, http.MethodPost, "/api/entities/bulk-delete", map[string]any{"ids": []string{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, env.Success)
}

func TestBulkUpdateAppliesBatch(t *testing.T) {
	r := setupEntityRouter(t)

	first := createTestEntity(t, r, "First")
	second := createTestEntity(t, r, "Second")

	rec, env := doJSON(t, r, http.MethodPost, "/api/entities/bulk-update", map[string]any{
		"updates": []map[string]any{
			{"id": first.ID, "data": map[string]any{"status": models.StatusInactive}},
			{"id": second.ID, "data": map[string]any{"status": models.StatusArchived}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated []models.Entity
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Len(t, updated, 2)
	require.Equal(t, models.StatusInactive, updated[0].Status)
	require.Equal(t, models.StatusArchived, updated[1].Status)
}

func TestExportReturnsRows(t *testing.T) {
	r := setupEntityRouter(t)

	createTestEntity(t, r, "Export Me")

	rec, env := doJSON(t, r, http.MethodGet, "/api/entities/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.Entity
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
}

func TestImportNotSupportedByEmbeddedStore(t *testing.T) {
	r := setupEntityRouter(t)

	rec, env := doJSON(t, r, http.MethodPost, "/api/entities/import", map[string]any{"rows": []any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "IMPORT_NOT_SUPPORTED", env.Code)
}
