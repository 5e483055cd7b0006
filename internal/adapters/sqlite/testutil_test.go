// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Instead, use
// setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/shopfloor/internal/adapters/sqlite"
	"github.com/example/shopfloor/internal/db"
	"github.com/example/shopfloor/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the single shared test database setup function for all repository tests.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// setupSeededDB returns a test database loaded with the demo fixtures:
// PROD-001..005, WC-001..003, BOM-001 and MO-001 in DRAFT.
func setupSeededDB(t *testing.T) *sql.DB {
	t.Helper()
	testDB := setupTestDB(t)
	if err := db.SeedFixtures(testDB); err != nil {
		t.Fatalf("failed to seed fixtures: %v", err)
	}
	return testDB
}

// seedConfirmedOrder confirms MO-001 with one work order per routing step
// (WO-001..003) and its component requirements.
func seedConfirmedOrder(t *testing.T, testDB *sql.DB) {
	t.Helper()

	wos := []*secondary.WorkOrderRecord{
		{ID: "WO-001", OrderID: "MO-001", Number: "MO-001-01", Sequence: 1, Name: "Assembly", WorkCenterID: "WC-001", Status: "PENDING", EstimatedDurationMinutes: 60},
		{ID: "WO-002", OrderID: "MO-001", Number: "MO-001-02", Sequence: 2, Name: "Painting", WorkCenterID: "WC-002", Status: "PENDING", EstimatedDurationMinutes: 30},
		{ID: "WO-003", OrderID: "MO-001", Number: "MO-001-03", Sequence: 3, Name: "Packing", WorkCenterID: "WC-003", Status: "PENDING", EstimatedDurationMinutes: 10},
	}
	reqs := []*secondary.ComponentRequirementRecord{
		{OrderID: "MO-001", ProductID: "PROD-002", QuantityPerUnit: 4, QuantityRequired: 8},
		{OrderID: "MO-001", ProductID: "PROD-003", QuantityPerUnit: 1, QuantityRequired: 2},
	}

	repo := sqlite.NewManufacturingOrderRepository(testDB)
	if err := repo.Confirm(context.Background(), "MO-001", wos, reqs); err != nil {
		t.Fatalf("failed to confirm seed order: %v", err)
	}
}
