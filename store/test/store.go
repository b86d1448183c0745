// Package test exercises the store against a real database.
package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sitewizard/sitewizard/internal/profile"
	"github.com/sitewizard/sitewizard/store"
	"github.com/sitewizard/sitewizard/store/db"
)

// NewTestingStore creates a migrated store backed by a throwaway sqlite file.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	dir := t.TempDir()
	testProfile := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   dir,
		DSN:    filepath.Join(dir, "sitewizard_test.db"),
	}

	dbDriver, err := db.NewDBDriver(testProfile)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(dbDriver, testProfile)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		_ = ts.Close()
	})
	return ts
}
