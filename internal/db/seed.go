package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeedFixtures populates the database with a small demo factory: a finished
// good with a two-level routing, its raw materials in stock, and one DRAFT
// manufacturing order ready to confirm.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC()

	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer tx.Rollback()

	// Products
	products := []struct {
		id, name, sku, kind, uom string
		stock                    float64
	}{
		{"PROD-001", "Wooden Table", "FG-TABLE-01", "FINISHED_GOOD", "pcs", 0},
		{"PROD-002", "Wooden Leg", "RM-LEG-01", "RAW_MATERIAL", "pcs", 40},
		{"PROD-003", "Table Top", "RM-TOP-01", "RAW_MATERIAL", "pcs", 10},
		{"PROD-004", "Screw", "RM-SCREW-01", "RAW_MATERIAL", "pcs", 500},
		{"PROD-005", "Varnish", "RM-VARNISH-01", "RAW_MATERIAL", "l", 20},
	}
	for _, p := range products {
		if _, err := tx.Exec(
			"INSERT INTO products (id, name, sku, type, unit_of_measure, current_stock, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			p.id, p.name, p.sku, p.kind, p.uom, p.stock, now, now,
		); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
		if p.stock == 0 {
			continue
		}
		if _, err := tx.Exec(
			"INSERT INTO stock_movements (id, product_id, quantity_change, type, reference, notes, created_at) VALUES (?, ?, ?, 'ADJUSTMENT', NULL, 'Opening stock', ?)",
			uuid.NewString(), p.id, p.stock, now,
		); err != nil {
			return fmt.Errorf("seed stock: %w", err)
		}
	}

	// Work centers
	workCenters := []struct {
		id, name, code string
		cost           float64
	}{
		{"WC-001", "Assembly Line", "ASM", 45},
		{"WC-002", "Paint Floor", "PNT", 38.5},
		{"WC-003", "Packaging Line", "PKG", 22},
	}
	for _, wc := range workCenters {
		if _, err := tx.Exec(
			"INSERT INTO work_centers (id, name, code, cost_per_hour, active, created_at) VALUES (?, ?, ?, ?, 1, ?)",
			wc.id, wc.name, wc.code, wc.cost, now,
		); err != nil {
			return fmt.Errorf("seed work centers: %w", err)
		}
	}

	// Bill of materials
	if _, err := tx.Exec(
		"INSERT INTO boms (id, product_id, name, version, active, created_at) VALUES ('BOM-001', 'PROD-001', 'Wooden Table Standard', '1.0', 1, ?)",
		now,
	); err != nil {
		return fmt.Errorf("seed boms: %w", err)
	}
	components := []struct {
		productID string
		qty       float64
	}{
		{"PROD-002", 4},
		{"PROD-003", 1},
		{"PROD-004", 12},
		{"PROD-005", 0.5},
	}
	for _, c := range components {
		if _, err := tx.Exec(
			"INSERT INTO bom_components (bom_id, product_id, quantity_per_unit) VALUES ('BOM-001', ?, ?)",
			c.productID, c.qty,
		); err != nil {
			return fmt.Errorf("seed bom components: %w", err)
		}
	}
	operations := []struct {
		seq             int
		name, wcID      string
		duration, setup int
	}{
		{10, "Assembly", "WC-001", 25, 10},
		{20, "Painting", "WC-002", 15, 0},
		{30, "Packing", "WC-003", 5, 0},
	}
	for _, op := range operations {
		if _, err := tx.Exec(
			"INSERT INTO bom_operations (bom_id, sequence, name, work_center_id, duration_minutes, setup_minutes) VALUES ('BOM-001', ?, ?, ?, ?, ?)",
			op.seq, op.name, op.wcID, op.duration, op.setup,
		); err != nil {
			return fmt.Errorf("seed bom operations: %w", err)
		}
	}

	// A draft order waiting for confirmation
	if _, err := tx.Exec(
		"INSERT INTO manufacturing_orders (id, product_id, bom_id, quantity, status, priority, scheduled_start, created_at, updated_at) VALUES ('MO-001', 'PROD-001', 'BOM-001', 2, 'DRAFT', 'HIGH', ?, ?, ?)",
		now.Format("2006-01-02"), now, now,
	); err != nil {
		return fmt.Errorf("seed manufacturing orders: %w", err)
	}

	return tx.Commit()
}
