package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// The migration system is intentionally minimal: a fresh database gets the
// full schema from LATEST.sql for its driver. Incremental migrations can be
// added as NN__description.sql files next to it once the schema evolves.
//
// Migration Files:
// - Location: store/migration/{driver}/LATEST.sql
// - LATEST.sql: Full schema for new installations

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the name of the latest schema file.
const LatestSchemaFileName = "LATEST.sql"

// Migrate initializes the database schema if it has not been applied yet.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	filePath := fmt.Sprintf("migration/%s/%s", s.profile.Driver, LatestSchemaFileName)
	buf, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file %q", filePath)
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}

	slog.Info("database schema initialized", slog.String("driver", s.profile.Driver))
	return nil
}
