package crud

import (
	"context"
	"io"

	"github.com/miniapp-template/dashboard/internal/models"
)

// Default pagination applied when the caller omits page parameters.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// FilterParams is the transient query descriptor built per-request.
// Filters is applied as equality predicates; keys are resolved against an
// allow-list of known columns, never interpolated into SQL.
type FilterParams struct {
	Search    string
	Filters   map[string]any
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

func (p FilterParams) page() int {
	if p.Page < 1 {
		return DefaultPage
	}
	return p.Page
}

func (p FilterParams) pageSize() int {
	if p.PageSize < 1 {
		return DefaultPageSize
	}
	return p.PageSize
}

// Page bundles one page of entities with pagination bookkeeping.
type Page struct {
	Items       []models.Entity
	Page        int
	PageSize    int
	TotalPages  int
	TotalItems  int
	HasNext     bool
	HasPrevious bool
}

// Input carries entity fields for create and update operations. Nil pointers
// mean "field absent": updates merge only the present fields.
type Input struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *string        `json:"status,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedBy   string         `json:"createdBy,omitempty"`
	UpdatedBy   string         `json:"updatedBy,omitempty"`
}

// BulkItem pairs an entity id with its partial update.
type BulkItem struct {
	ID   string `json:"id"`
	Data Input  `json:"data"`
}

// ImportResult reports the outcome of an import operation.
type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// Provider is the pluggable CRUD contract implemented by the embedded store
// and the remote entity API. All operations return tagged results: an
// *errors.AppError describes failures, nothing panics past this boundary.
type Provider interface {
	List(ctx context.Context, params FilterParams) (*Page, error)
	Get(ctx context.Context, id string) (*models.Entity, error)
	Create(ctx context.Context, data Input) (*models.Entity, error)
	Update(ctx context.Context, id string, data Input) (*models.Entity, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) error
	BulkUpdate(ctx context.Context, updates []BulkItem) ([]models.Entity, error)
	Export(ctx context.Context, params FilterParams) ([]models.Entity, error)
	Import(ctx context.Context, r io.Reader) (*ImportResult, error)
}
