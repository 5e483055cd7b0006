package db

import "database/sql"

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the single source of truth for the database schema. Repository tests
// load it through GetSchemaSQL() instead of declaring their own tables, so a
// column referenced by repository code but missing here fails immediately
// with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	sku TEXT NOT NULL UNIQUE,
	type TEXT NOT NULL CHECK(type IN ('RAW_MATERIAL', 'FINISHED_GOOD')),
	unit_of_measure TEXT NOT NULL DEFAULT 'pcs',
	current_stock REAL NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS work_centers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	code TEXT NOT NULL UNIQUE,
	cost_per_hour REAL NOT NULL DEFAULT 0,
	active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS boms (
	id TEXT PRIMARY KEY,
	product_id TEXT NOT NULL,
	name TEXT NOT NULL,
	version TEXT NOT NULL DEFAULT '1.0',
	active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (product_id) REFERENCES products(id)
);

CREATE TABLE IF NOT EXISTS bom_components (
	bom_id TEXT NOT NULL,
	product_id TEXT NOT NULL,
	quantity_per_unit REAL NOT NULL CHECK(quantity_per_unit > 0),
	PRIMARY KEY (bom_id, product_id),
	FOREIGN KEY (bom_id) REFERENCES boms(id) ON DELETE CASCADE,
	FOREIGN KEY (product_id) REFERENCES products(id)
);

CREATE TABLE IF NOT EXISTS bom_operations (
	bom_id TEXT NOT NULL,
	sequence INTEGER NOT NULL,
	name TEXT NOT NULL,
	work_center_id TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL CHECK(duration_minutes >= 0),
	setup_minutes INTEGER NOT NULL DEFAULT 0 CHECK(setup_minutes >= 0),
	PRIMARY KEY (bom_id, sequence),
	FOREIGN KEY (bom_id) REFERENCES boms(id) ON DELETE CASCADE,
	FOREIGN KEY (work_center_id) REFERENCES work_centers(id)
);

CREATE TABLE IF NOT EXISTS manufacturing_orders (
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
);

CREATE INDEX IF NOT EXISTS idx_manufacturing_orders_status ON manufacturing_orders(status);

CREATE TABLE IF NOT EXISTS component_requirements (
	order_id TEXT NOT NULL,
	product_id TEXT NOT NULL,
	quantity_per_unit REAL NOT NULL,
	quantity_required REAL NOT NULL,
	quantity_consumed REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (order_id, product_id),
	FOREIGN KEY (order_id) REFERENCES manufacturing_orders(id) ON DELETE CASCADE,
	FOREIGN KEY (product_id) REFERENCES products(id)
);

CREATE TABLE IF NOT EXISTS work_orders (
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
	total_pause_minutes INTEGER NOT NULL DEFAULT 0,
	actual_start DATETIME,
	pause_start DATETIME,
	completed_at DATETIME,
	notes TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (order_id) REFERENCES manufacturing_orders(id) ON DELETE CASCADE,
	FOREIGN KEY (work_center_id) REFERENCES work_centers(id)
);

CREATE INDEX IF NOT EXISTS idx_work_orders_order ON work_orders(order_id, sequence);
CREATE INDEX IF NOT EXISTS idx_work_orders_status ON work_orders(status);

CREATE TABLE IF NOT EXISTS stock_movements (
	id TEXT PRIMARY KEY,
	product_id TEXT NOT NULL,
	quantity_change REAL NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('MO_CONSUMPTION', 'MO_PRODUCTION', 'ADJUSTMENT')),
	reference TEXT,
	notes TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (product_id) REFERENCES products(id)
);

CREATE INDEX IF NOT EXISTS idx_stock_movements_product ON stock_movements(product_id);
CREATE INDEX IF NOT EXISTS idx_stock_movements_reference ON stock_movements(reference);

CREATE TABLE IF NOT EXISTS order_events (
	id TEXT PRIMARY KEY,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
	actor_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL,
	from_status TEXT,
	to_status TEXT
);

CREATE INDEX IF NOT EXISTS idx_order_events_entity ON order_events(entity_type, entity_id);
`

// InitSchema creates the schema on a fresh database and runs pending
// migrations on an existing one.
func InitSchema(db *sql.DB) error {
	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db)
	}

	// Fresh install - create the current schema directly and mark every
	// migration as applied.
	if _, err := db.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := ensureVersionTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
