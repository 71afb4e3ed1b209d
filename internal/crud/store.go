package crud

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/miniapp-template/dashboard/internal/models"
	apperrors "github.com/miniapp-template/dashboard/pkg/errors"
)

// ErrEntityNotFound indicates the requested entity does not exist.
var ErrEntityNotFound = apperrors.New("NOT_FOUND", "Entity not found", http.StatusNotFound)

// ErrImportNotSupported is returned by the embedded store, which has no import pipeline.
var ErrImportNotSupported = apperrors.New("IMPORT_NOT_SUPPORTED", "Import is not supported by the embedded store", http.StatusBadRequest)

// filterColumns maps caller-supplied filter keys to real columns. Anything
// not listed here is silently dropped rather than reaching the query engine.
var filterColumns = map[string]string{
	"name":      "name",
	"status":    "status",
	"createdBy": "created_by",
	"updatedBy": "updated_by",
}

// sortColumns is the allow-list for ORDER BY targets.
var sortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"status":    "status",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// StoreProvider implements Provider against the embedded SQLite table.
type StoreProvider struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStoreProvider constructs the embedded-store backend.
func NewStoreProvider(db *gorm.DB) (*StoreProvider, error) {
	if db == nil {
		return nil, errors.New("crud store: db is required")
	}
	return &StoreProvider{db: db, now: time.Now}, nil
}

// applyFilters adds search and equality predicates shared by the data and
// count queries so totals always match the returned rows.
func applyFilters(q *gorm.DB, params FilterParams) *gorm.DB {
	if search := strings.TrimSpace(params.Search); search != "" {
		// SQLite LIKE is case-insensitive for ASCII only; documented behaviour.
		pattern := "%" + search + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	for key, value := range params.Filters {
		if value == nil || value == "" {
			continue
		}
		column, ok := filterColumns[key]
		if !ok {
			continue
		}
		q = q.Where(column+" = ?", value)
	}

	return q
}

// List returns a filtered, sorted, paginated page of entities.
func (s *StoreProvider) List(ctx context.Context, params FilterParams) (*Page, error) {
	base := applyFilters(s.db.WithContext(ctx).Model(&models.Entity{}), params)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(err, "count entities")
	}

	order := "updated_at DESC"
	if column, ok := sortColumns[params.SortBy]; ok {
		direction := "ASC"
		if strings.EqualFold(params.SortOrder, "desc") {
			direction = "DESC"
		}
		order = column + " " + direction
	}

	page := params.page()
	pageSize := params.pageSize()

	var items []models.Entity
	err := base.Order(order).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "list entities")
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	return &Page{
		Items:       items,
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		TotalItems:  int(total),
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}, nil
}

// Get fetches one entity by id.
func (s *StoreProvider) Get(ctx context.Context, id string) (*models.Entity, error) {
	var entity models.Entity
	err := s.db.WithContext(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "get entity")
	}
	return &entity, nil
}

// Create inserts a new entity; the store assigns id and timestamps.
func (s *StoreProvider) Create(ctx context.Context, data Input) (*models.Entity, error) {
	now := s.now().UTC()

	entity := models.Entity{
		Name:        "Untitled",
		Description: "",
		Status:      models.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   data.CreatedBy,
		UpdatedBy:   data.UpdatedBy,
	}
	if data.Name != nil {
		entity.Name = *data.Name
	}
	if data.Description != nil {
		entity.Description = *data.Description
	}
	if data.Status != nil {
		entity.Status = *data.Status
	}
	if data.Metadata != nil {
		entity.Metadata = datatypes.JSONMap(data.Metadata)
	}

	if err := s.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, apperrors.Wrap(err, "create entity")
	}
	return &entity, nil
}

// Update applies a partial merge: only present fields are written, the id is
// immutable and updatedAt is always refreshed.
func (s *StoreProvider) Update(ctx context.Context, id string, data Input) (*models.Entity, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": s.now().UTC()}
	if data.Name != nil {
		updates["name"] = *data.Name
	}
	if data.Description != nil {
		updates["description"] = *data.Description
	}
	if data.Status != nil {
		updates["status"] = *data.Status
	}
	if data.Metadata != nil {
		updates["metadata"] = datatypes.JSONMap(data.Metadata)
	}
	if data.UpdatedBy != "" {
		updates["updated_by"] = data.UpdatedBy
	}

	err := s.db.WithContext(ctx).Model(&models.Entity{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "update entity")
	}

	return s.Get(ctx, id)
}

// Delete removes a single entity and reports not-found when nothing matched.
func (s *StoreProvider) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Entity{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Wrap(res.Error, "delete entity")
	}
	if res.RowsAffected == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// BulkDelete removes all listed ids in one statement. Missing ids are not an error.
func (s *StoreProvider) BulkDelete(ctx context.Context, ids []string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Entity{}, "id IN ?", ids).Error; err != nil {
		return apperrors.Wrap(err, "bulk delete entities")
	}
	return nil
}

// BulkUpdate applies each update sequentially. There is no atomicity across
// the batch: a failure partway returns the error and leaves earlier updates
// in place, matching the facade contract.
func (s *StoreProvider) BulkUpdate(ctx context.Context, updates []BulkItem) ([]models.Entity, error) {
	results := make([]models.Entity, 0, len(updates))
	for _, item := range updates {
		entity, err := s.Update(ctx, item.ID, item.Data)
		if err != nil {
			return results, err
		}
		results = append(results, *entity)
	}
	return results, nil
}

// Export returns the filtered raw rows without pagination.
func (s *StoreProvider) Export(ctx context.Context, params FilterParams) ([]models.Entity, error) {
	var items []models.Entity
	err := applyFilters(s.db.WithContext(ctx).Model(&models.Entity{}), params).
		Order("updated_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "export entities")
	}
	return items, nil
}

// Import is not supported by the embedded store.
func (s *StoreProvider) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	return nil, ErrImportNotSupported
}
