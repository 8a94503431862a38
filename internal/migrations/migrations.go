package migrations

import (
	"database/sql"
	"fmt"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Set is a base schema plus the migrations applied on top of it.
// Each SQLite file owned by studentcrud is driven by exactly one Set.
type Set struct {
	Name       string
	Schema     string
	Migrations []Migration
}

// History drives the local activity database
var History = Set{
	Name: "history",
	Schema: `
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		operation TEXT NOT NULL,
		student_id TEXT,
		method TEXT NOT NULL,
		url TEXT NOT NULL,
		status INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
	`,
	Migrations: []Migration{
		{
			Version: 1,
			Name:    "Add student_name column to history",
			Up: `
				ALTER TABLE history ADD COLUMN student_name TEXT;
			`,
			Down: `
				-- SQLite does not support DROP COLUMN on older versions
				-- Leaving column in place for backward compatibility
			`,
		},
		{
			Version: 2,
			Name:    "Add operation index for history filtering",
			Up: `
				CREATE INDEX IF NOT EXISTS idx_history_operation ON history(operation, timestamp DESC);
			`,
			Down: `
				DROP INDEX IF EXISTS idx_history_operation;
			`,
		},
	},
}

// Students drives the mock backend database
var Students = Set{
	Name: "students",
	Schema: `
	CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		fname TEXT NOT NULL DEFAULT '',
		lname TEXT NOT NULL DEFAULT '',
		birthdate TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT ''
	);
	`,
	Migrations: []Migration{
		{
			Version: 1,
			Name:    "Add creation sequence to students",
			Up: `
				ALTER TABLE students ADD COLUMN seq INTEGER NOT NULL DEFAULT 0;
				CREATE INDEX IF NOT EXISTS idx_students_seq ON students(seq);
			`,
			Down: `
				DROP INDEX IF EXISTS idx_students_seq;
			`,
		},
	},
}

// Run executes all pending migrations of set on the database
func Run(db *sql.DB, set Set) error {
	// Initialize schema first to ensure all tables exist
	if _, err := db.Exec(set.Schema); err != nil {
		return fmt.Errorf("failed to initialize %s schema: %w", set.Name, err)
	}

	// Create migrations tracking table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	// Apply pending migrations
	for _, migration := range set.Migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// GetCurrentVersion returns the current database schema version
func GetCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`
		SELECT COALESCE(MAX(version), 0)
		FROM schema_migrations
	`).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return version, nil
}
