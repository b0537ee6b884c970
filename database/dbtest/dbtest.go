// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"

	"studytrack/database"
	"studytrack/logger"
)

// New opens a migrated in-memory SQLite database private to t.
func New(t testing.TB) *database.DbInstance {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1"
	instance, err := database.Open(sqlite.Open(dsn), logger.NewNop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = instance.Close() })
	return instance
}
