package crud

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/miniapp-template/dashboard/internal/models"
)

func openStoreTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Entity{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func ptr(s string) *string { return &s }

func TestStoreProviderCreateAndGet(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	ctx := context.Background()
	created, err := store.Create(ctx, Input{
		Name:        ptr("Quarterly Report"),
		Description: ptr("Q1 numbers"),
		Status:      ptr(models.StatusInactive),
		Metadata:    map[string]any{"owner": "finance"},
		CreatedBy:   "user-123",
		UpdatedBy:   "user-123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Quarterly Report", created.Name)
	require.Equal(t, models.StatusInactive, created.Status)
	require.Equal(t, "user-123", created.CreatedBy)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "Q1 numbers", got.Description)
	require.Equal(t, "finance", got.Metadata["owner"])
}

func TestStoreProviderCreateDefaults(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	created, err := store.Create(context.Background(), Input{})
	require.NoError(t, err)
	require.Equal(t, "Untitled", created.Name)
	require.Empty(t, created.Description)
	require.Equal(t, models.StatusActive, created.Status)
	require.False(t, created.CreatedAt.IsZero())
}

func TestStoreProviderGetNotFound(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "no-such-id")
	require.ErrorIs(t, err, ErrEntityNotFound)
}

func TestStoreProviderListPagination(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		_, err := store.Create(ctx, Input{Name: ptr(fmt.Sprintf("Entity %02d", i))})
		require.NoError(t, err)
	}

	page, err := store.List(ctx, FilterParams{
		SortBy:    "name",
		SortOrder: "asc",
		Page:      2,
		PageSize:  10,
	})
	require.NoError(t, err)
	require.Equal(t, 25, page.TotalItems)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 10)
	require.True(t, page.HasNext)
	require.True(t, page.HasPrevious)
	require.Equal(t, "Entity 11", page.Items[0].Name)

	last, err := store.List(ctx, FilterParams{SortBy: "name", Page: 3, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, last.Items, 5)
	require.False(t, last.HasNext)
}

func TestStoreProviderListSearchMatchesNameOrDescription(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Create(ctx, Input{Name: ptr("Alpha Report")})
	require.NoError(t, err)
	_, err = store.Create(ctx, Input{Name: ptr("Other"), Description: ptr("mentions alpha inside")})
	require.NoError(t, err)
	_, err = store.Create(ctx, Input{Name: ptr("Unrelated")})
	require.NoError(t, err)

	page, err := store.List(ctx, FilterParams{Search: "alpha"})
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalItems)
}

func TestStoreProviderListFilterAllowList(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Create(ctx, Input{Name: ptr("Active One")})
	require.NoError(t, err)
	_, err = store.Create(ctx, Input{Name: ptr("Old One"), Status: ptr(models.StatusArchived)})
	require.NoError(t, err)

	page, err := store.List(ctx, FilterParams{Filters: map[string]any{"status": models.StatusArchived}})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalItems)
	require.Equal(t, "Old One", page.Items[0].Name)

	// Unknown filter keys are dropped, never interpolated.
	page, err = store.List(ctx, FilterParams{Filters: map[string]any{"status); DROP TABLE entities;--": "x"}})
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalItems)

	// Unknown sort columns fall back to the default order.
	page, err = store.List(ctx, FilterParams{SortBy: "created_at; DROP TABLE entities"})
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalItems)
}

func TestStoreProviderUpdatePartialMerge(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	ctx := context.Background()
	created, err := store.Create(ctx, Input{
		Name:        ptr("Original"),
		Description: ptr("before"),
		CreatedBy:   "user-123",
		UpdatedBy:   "user-123",
	})
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(time.Hour) }

	updated, err := store.Update(ctx, created.ID, Input{
		Description: ptr("after"),
		UpdatedBy:   "admin-456",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "Original", updated.Name)
	require.Equal(t, "after", updated.Description)
	require.Equal(t, "admin-456", updated.UpdatedBy)
	require.Equal(t, "user-123", updated.CreatedBy)
	require.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestStoreProviderUpdateNotFound(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	_, err = store.Update(context.Background(), "missing", Input{Name: ptr("x")})
	require.ErrorIs(t, err, ErrEntityNotFound)
}

func TestStoreProviderDelete(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	ctx := context.Background()
	created, err := store.Create(ctx, Input{Name: ptr("Short Lived")})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))
	require.ErrorIs(t, store.Delete(ctx, created.ID), ErrEntityNotFound)
}

func TestStoreProviderBulkDeleteIgnoresMissing(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	ctx := context.Background()
	first, err := store.Create(ctx, Input{Name: ptr("First")})
	require.NoError(t, err)
	second, err := store.Create(ctx, Input{Name: ptr("Second")})
	require.NoError(t, err)

	require.NoError(t, store.BulkDelete(ctx, []string{first.ID, "does-not-exist"}))

	page, err := store.List(ctx, FilterParams{})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalItems)
	require.Equal(t, second.ID, page.Items[0].ID)
}

func TestStoreProviderBulkUpdateStopsOnMissing(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	ctx := context.Background()
	created, err := store.Create(ctx, Input{Name: ptr("Batch Item")})
	require.NoError(t, err)

	results, err := store.BulkUpdate(ctx, []BulkItem{
		{ID: created.ID, Data: Input{Name: ptr("Renamed")}},
		{ID: "missing", Data: Input{Name: ptr("never applied")}},
	})
	require.ErrorIs(t, err, ErrEntityNotFound)
	require.Len(t, results, 1)
	require.Equal(t, "Renamed", results[0].Name)

	// The first update stays applied; the batch is not atomic.
	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)
}

func TestStoreProviderExportReturnsFilteredRows(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx, Input{Name: ptr(fmt.Sprintf("Row %d", i))})
		require.NoError(t, err)
	}
	_, err = store.Create(ctx, Input{Name: ptr("Hidden"), Status: ptr(models.StatusArchived)})
	require.NoError(t, err)

	rows, err := store.Export(ctx, FilterParams{Filters: map[string]any{"status": models.StatusActive}})
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestStoreProviderImportNotSupported(t *testing.T) {
	store, err := NewStoreProvider(openStoreTestDB(t))
	require.NoError(t, err)

	_, err = store.Import(context.Background(), nil)
	require.ErrorIs(t, err, ErrImportNotSupported)
}
