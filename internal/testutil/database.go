// Package testutil provides test fixtures shared by the repository,
// service and handler tests.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/LionelROLLAND/colocatron/internal/database"
)

// NewTestDatabase opens an in-memory sqlite database with the full schema
// applied and closes it when the test finishes. Every call returns a fresh
// database, so tests never see each other's occupants or ledger rows.
func NewTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	return db
}
