package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_order_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_order_events_journal",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_pause_tracking_to_work_orders",
		Up:      migrationV3,
	},
}

// LatestVersion is the schema version of a fully migrated database.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// CurrentVersion returns the highest applied migration, or 0.
func CurrentVersion(db *sql.DB) (int, error) {
	if err := ensureVersionTable(db); err != nil {
		return 0, err
	}
	var v int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return v, nil
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(db *sql.DB) error {
	currentVersion, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func ensureVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

func execAll(tx *sql.Tx, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrationV1 creates the catalog, order and ledger tables as first released,
// before pause tracking and the event journal existed.
func migrationV1(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sku TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL CHECK(type IN ('RAW_MATERIAL', 'FINISHED_GOOD')),
			unit_of_measure TEXT NOT NULL DEFAULT 'pcs',
			current_stock REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS work_centers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			code TEXT NOT NULL UNIQUE,
			cost_per_hour REAL NOT NULL DEFAULT 0,
			active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS boms (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			name TEXT NOT NULL,
			version TEXT NOT NULL DEFAULT '1.0',
			active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (product_id) REFERENCES products(id)
		)`,
		`CREATE TABLE IF NOT EXISTS bom_components (
			bom_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			quantity_per_unit REAL NOT NULL CHECK(quantity_per_unit > 0),
			PRIMARY KEY (bom_id, product_id),
			FOREIGN KEY (bom_id) REFERENCES boms(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id)
		)`,
		`CREATE TABLE IF NOT EXISTS bom_operations (
			bom_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			name TEXT NOT NULL,
			work_center_id TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL CHECK(duration_minutes >= 0),
			setup_minutes INTEGER NOT NULL DEFAULT 0 CHECK(setup_minutes >= 0),
			PRIMARY KEY (bom_id, sequence),
			FOREIGN KEY (bom_id) REFERENCES boms(id) ON DELETE CASCADE,
			FOREIGN KEY (work_center_id) REFERENCES work_centers(id)
		)`,
		`CREATE TABLE IF NOT EXISTS manufacturing_orders (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			bom_id TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK(quantity > 0),
			quantity_produced INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL CHECK(status IN ('DRAFT', 'CONFIRMED', 'IN_PROGRESS', 'COMPLETED', 'CANCELED')) DEFAULT 'DRAFT',
			priority TEXT NOT NULL CHECK(priority IN ('LOW', 'MEDIUM', 'HIGH')) DEFAULT 'MEDIUM',
			scheduled_start TEXT,
			actual_start DATETIME,
			completed_at DATETIME,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (product_id) REFERENCES products(id),
			FOREIGN KEY (bom_id) REFERENCES boms(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_manufacturing_orders_status ON manufacturing_orders(status)`,
		`CREATE TABLE IF NOT EXISTS component_requirements (
			order_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			quantity_per_unit REAL NOT NULL,
			quantity_required REAL NOT NULL,
			quantity_consumed REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (order_id, product_id),
			FOREIGN KEY (order_id) REFERENCES manufacturing_orders(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id)
		)`,
		`CREATE TABLE IF NOT EXISTS work_orders (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			number TEXT NOT NULL UNIQUE,
			sequence INTEGER NOT NULL,
			name TEXT NOT NULL,
			work_center_id TEXT,
			status TEXT NOT NULL CHECK(status IN ('PENDING', 'IN_PROGRESS', 'PAUSED', 'COMPLETED', 'CANCELED')) DEFAULT 'PENDING',
			operator_id TEXT,
			estimated_duration_minutes INTEGER NOT NULL DEFAULT 0,
			actual_duration_minutes INTEGER NOT NULL DEFAULT 0,
			actual_start DATETIME,
			completed_at DATETIME,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (order_id) REFERENCES manufacturing_orders(id) ON DELETE CASCADE,
			FOREIGN KEY (work_center_id) REFERENCES work_centers(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_work_orders_order ON work_orders(order_id, sequence)`,
		`CREATE INDEX IF NOT EXISTS idx_work_orders_status ON work_orders(status)`,
		`CREATE TABLE IF NOT EXISTS stock_movements (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			quantity_change REAL NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('MO_CONSUMPTION', 'MO_PRODUCTION', 'ADJUSTMENT')),
			reference TEXT,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (product_id) REFERENCES products(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_movements_product ON stock_movements(product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_movements_reference ON stock_movements(reference)`,
	)
}

// migrationV2 adds the order event journal.
func migrationV2(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS order_events (
			id TEXT PRIMARY KEY,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			actor_id TEXT,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL,
			from_status TEXT,
			to_status TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_events_entity ON order_events(entity_type, entity_id)`,
	)
}

// migrationV3 adds pause bookkeeping to work orders.
func migrationV3(tx *sql.Tx) error {
	return execAll(tx,
		`ALTER TABLE work_orders ADD COLUMN total_pause_minutes INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE work_orders ADD COLUMN pause_start DATETIME`,
	)
}
