package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "nutrition_schema",
		sql: `
CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL CHECK (btrim(name) <> ''),
	calories DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (calories >= 0),
	protein DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (protein >= 0),
	fat DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (fat >= 0),
	carbs DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (carbs >= 0),
	fiber DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (fiber >= 0),
	sugars DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (sugars >= 0),
	category TEXT NOT NULL DEFAULT '',
	processing_level TEXT NOT NULL DEFAULT '',
	glycemic_index INTEGER CHECK (glycemic_index BETWEEN 0 AND 100),
	region TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS products_name_key ON products (lower(name));
CREATE INDEX IF NOT EXISTS products_category_idx ON products (category);

CREATE TABLE IF NOT EXISTS dishes (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL CHECK (btrim(name) <> ''),
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS dishes_name_key ON dishes (lower(name));

CREATE TABLE IF NOT EXISTS dish_ingredients (
	dish_id UUID NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	product_id UUID NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
	grams DOUBLE PRECISION NOT NULL CHECK (grams > 0),
	PRIMARY KEY (dish_id, position)
);
CREATE INDEX IF NOT EXISTS dish_ingredients_product_idx ON dish_ingredients (product_id);

CREATE TABLE IF NOT EXISTS log_entries (
	id UUID PRIMARY KEY,
	entry_date DATE NOT NULL,
	meal TEXT NOT NULL CHECK (meal IN ('breakfast', 'lunch', 'dinner', 'snack')),
	item_type TEXT NOT NULL CHECK (item_type IN ('product', 'dish')),
	item_id UUID NOT NULL,
	grams DOUBLE PRECISION NOT NULL CHECK (grams > 0),
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS log_entries_date_idx ON log_entries (entry_date);
CREATE INDEX IF NOT EXISTS log_entries_item_idx ON log_entries (item_type, item_id);

CREATE TABLE IF NOT EXISTS profile (
	id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	gender TEXT NOT NULL CHECK (gender IN ('male', 'female')),
	birth_date DATE NOT NULL,
	height_cm DOUBLE PRECISION NOT NULL CHECK (height_cm > 0),
	weight_kg DOUBLE PRECISION NOT NULL CHECK (weight_kg > 0),
	activity_level TEXT NOT NULL,
	goal TEXT NOT NULL,
	body_fat_percent DOUBLE PRECISION CHECK (body_fat_percent > 0 AND body_fat_percent < 100),
	lean_body_mass_kg DOUBLE PRECISION CHECK (lean_body_mass_kg > 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`,
	},
	{
		version: 2,
		name:    "fasting_schema",
		sql: `
CREATE TABLE IF NOT EXISTS fasting_sessions (
	id UUID PRIMARY KEY,
	fasting_type TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	ended_at TIMESTAMPTZ,
	status TEXT NOT NULL CHECK (status IN ('active', 'paused', 'completed', 'cancelled')),
	notes TEXT,
	paused_at TIMESTAMPTZ,
	paused_seconds DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (paused_seconds >= 0),
	duration_hours DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS fasting_sessions_one_open
	ON fasting_sessions ((true)) WHERE status IN ('active', 'paused');
CREATE INDEX IF NOT EXISTS fasting_sessions_started_idx ON fasting_sessions (started_at DESC);

CREATE TABLE IF NOT EXISTS fasting_goals (
	id UUID PRIMARY KEY,
	goal_type TEXT NOT NULL CHECK (goal_type IN ('daily_hours', 'total_hours', 'session_count')),
	target_value DOUBLE PRECISION NOT NULL CHECK (target_value > 0),
	period_start DATE NOT NULL,
	period_end DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (period_end >= period_start)
);
`,
	},
	{
		version: 3,
		name:    "audit_logs",
		sql: `
CREATE TABLE IF NOT EXISTS audit_logs (
	id BIGSERIAL PRIMARY KEY,
	user_id TEXT NOT NULL,
	operation_type TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	resource_id TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL,
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	additional_data JSONB
);
CREATE INDEX IF NOT EXISTS audit_logs_timestamp_idx ON audit_logs (timestamp DESC);
`,
	},
	{
		version: 4,
		name:    "task_statuses",
		sql: `
CREATE TABLE IF NOT EXISTS task_statuses (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	state TEXT NOT NULL CHECK (state IN ('pending', 'running', 'succeeded', 'failed')),
	result JSONB,
	error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS task_statuses_created_idx ON task_statuses (created_at DESC);
`,
	},
	{
		version: 5,
		name:    "log_entry_item_references",
		sql: `
CREATE OR REPLACE FUNCTION log_entries_check_item() RETURNS trigger AS $$
BEGIN
	IF NEW.item_type = 'product' THEN
		PERFORM 1 FROM products WHERE id = NEW.item_id FOR SHARE;
	ELSE
		PERFORM 1 FROM dishes WHERE id = NEW.item_id FOR SHARE;
	END IF;
	IF NOT FOUND THEN
		RAISE EXCEPTION '% % does not exist', NEW.item_type, NEW.item_id
			USING ERRCODE = 'foreign_key_violation', CONSTRAINT = 'log_entries_item_exists';
	END IF;
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS log_entries_item_exists ON log_entries;
CREATE TRIGGER log_entries_item_exists
	BEFORE INSERT OR UPDATE OF item_type, item_id ON log_entries
	FOR EACH ROW EXECUTE FUNCTION log_entries_check_item();

CREATE OR REPLACE FUNCTION log_entries_guard_item_delete() RETURNS trigger AS $$
BEGIN
	IF EXISTS (SELECT 1 FROM log_entries WHERE item_type = TG_ARGV[0] AND item_id = OLD.id) THEN
		RAISE EXCEPTION '% % is referenced by log entries', TG_ARGV[0], OLD.id
			USING ERRCODE = 'foreign_key_violation', CONSTRAINT = 'log_entries_item_referenced';
	END IF;
	RETURN OLD;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS products_log_entry_references ON products;
CREATE TRIGGER products_log_entry_references
	BEFORE DELETE ON products
	FOR EACH ROW EXECUTE FUNCTION log_entries_guard_item_delete('product');

DROP TRIGGER IF EXISTS dishes_log_entry_references ON dishes;
CREATE TRIGGER dishes_log_entry_references
	BEFORE DELETE ON dishes
	FOR EACH ROW EXECUTE FUNCTION log_entries_guard_item_delete('dish');
`,
	},
}

// Open opens a database/sql handle through the lib/pq driver
func Open(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres database: %w", err)
	}
	return db, nil
}

// Migrate applies every pending migration, each in its own transaction
func Migrate(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return err
		}
		logger.Info("applied migration",
			zap.Int("version", m.version),
			zap.String("name", m.name),
		)
	}

	return nil
}

// MigrateURL opens url, migrates and closes the handle
func MigrateURL(ctx context.Context, url string, logger *zap.Logger) error {
	db, err := Open(url)
	if err != nil {
		return err
	}
	defer db.Close()
	return Migrate(ctx, db, logger)
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migrations: %w", err)
	}
	return applied, nil
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.version, m.name); err != nil {
		return fmt.Errorf("record migration %d: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.version, err)
	}
	return nil
}
