package repository

import (
	"testing"

	"gorm.io/gorm"
)

// newTestDB opens an in-memory SQLite database (modernc.org/sqlite) with the
// application schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
