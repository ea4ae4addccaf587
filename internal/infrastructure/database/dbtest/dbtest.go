// Package dbtest opens throwaway SQLite databases with the full schema applied.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Diampra/octopus-server/internal/infrastructure/database"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	persistence "github.com/Diampra/octopus-server/internal/infrastructure/persistence/database"
)

// New returns an in-memory database private to the test.
func New(t testing.TB) *persistence.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := persistence.NewConnectionWithLogger(persistence.DriverSQLite, dsn,
		persistence.Options{MaxOpenConns: 1}, logging.NewNopLogger())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tc := database.NewTableCreator()
	if err := tc.CreateSchema(context.Background(), db); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}
