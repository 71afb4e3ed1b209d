package crud

import (
	"context"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/miniapp-template/dashboard/internal/app"
	"github.com/miniapp-template/dashboard/internal/models"
	"github.com/miniapp-template/dashboard/pkg/logger"
	"github.com/miniapp-template/dashboard/pkg/metrics"
)

// Facade presents one CRUD contract over an interchangeable backend choice.
// The backend is selected once at construction and held for the process
// lifetime; callers must not assume which backend is active.
type Facade struct {
	provider Provider
	backend  string
}

// NewFacade selects the embedded store or the remote entity API based on
// configuration.
func NewFacade(cfg app.CRUDConfig, db *gorm.DB) (*Facade, error) {
	if cfg.UseEmbedded {
		provider, err := NewStoreProvider(db)
		if err != nil {
			return nil, err
		}
		logger.WithModule("crud").Info("facade initialised", zap.String("backend", "embedded"))
		return &Facade{provider: provider, backend: "embedded"}, nil
	}

	provider, err := NewRemoteProvider(RemoteConfig{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.APIToken,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	logger.WithModule("crud").Info("facade initialised", zap.String("backend", "remote"), zap.String("base_url", cfg.APIBaseURL))
	return &Facade{provider: provider, backend: "remote"}, nil
}

func (f *Facade) observe(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.CrudOperations.WithLabelValues(f.backend, operation, result).Inc()
}

// List returns a filtered, sorted, paginated page of entities.
func (f *Facade) List(ctx context.Context, params FilterParams) (*Page, error) {
	page, err := f.provider.List(ctx, params)
	f.observe("list", err)
	return page, err
}

// Get fetches one entity by id.
func (f *Facade) Get(ctx context.Context, id string) (*models.Entity, error) {
	entity, err := f.provider.Get(ctx, id)
	f.observe("get", err)
	return entity, err
}

// Create stores a new entity.
func (f *Facade) Create(ctx context.Context, data Input) (*models.Entity, error) {
	entity, err := f.provider.Create(ctx, data)
	f.observe("create", err)
	return entity, err
}

// Update applies a partial merge to an existing entity.
func (f *Facade) Update(ctx context.Context, id string, data Input) (*models.Entity, error) {
	entity, err := f.provider.Update(ctx, id, data)
	f.observe("update", err)
	return entity, err
}

// Delete removes one entity.
func (f *Facade) Delete(ctx context.Context, id string) error {
	err := f.provider.Delete(ctx, id)
	f.observe("delete", err)
	return err
}

// BulkDelete removes a batch of ids; missing ids are not an error.
func (f *Facade) BulkDelete(ctx context.Context, ids []string) error {
	err := f.provider.BulkDelete(ctx, ids)
	f.observe("bulk_delete", err)
	return err
}

// BulkUpdate applies updates sequentially without cross-item atomicity.
func (f *Facade) BulkUpdate(ctx context.Context, updates []BulkItem) ([]models.Entity, error) {
	items, err := f.provider.BulkUpdate(ctx, updates)
	f.observe("bulk_update", err)
	return items, err
}

// Export returns the filtered raw rows.
func (f *Facade) Export(ctx context.Context, params FilterParams) ([]models.Entity, error) {
	items, err := f.provider.Export(ctx, params)
	f.observe("export", err)
	return items, err
}

// Import forwards the uploaded payload to the active backend. Backends that
// cannot import report it through the returned error, never by type checks
// at the call site.
func (f *Facade) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	result, err := f.provider.Import(ctx, r)
	f.observe("import", err)
	return result, err
}
