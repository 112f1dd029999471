package testsupport

import (
	"context"
	"testing"

	"subman/internal/catalog"
	"subman/internal/config"
)

// MustOpenCatalog opens the catalog for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(context.Background(), cfg.CatalogPath())
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
