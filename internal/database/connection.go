package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Supported database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeMemory   = "memory"
)

// Options selects and locates the SQL backend
type Options struct {
	Type string // sqlite or postgres
	Path string // SQLite file path
	URL  string // Postgres connection URL
}

// Connect establishes a connection to the database and bootstraps the schema
func Connect(opts Options) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch opts.Type {
	case TypeSQLite, "":
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(opts.Path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err = sqlx.Connect("sqlite3", opts.Path+"?_busy_timeout=5000")
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case TypePostgres:
		db, err = sqlx.Connect("postgres", opts.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", opts.Type)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	// Column types differ between the two dialects; the statements are otherwise shared
	dialect := strings.NewReplacer(
		"{{serial}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{timestamp}}", "DATETIME",
	)
	if db.DriverName() == "postgres" {
		dialect = strings.NewReplacer(
			"{{serial}}", "BIGSERIAL PRIMARY KEY",
			"{{timestamp}}", "TIMESTAMPTZ",
		)
	}

	statements := []struct {
		name  string
		query string
	}{
		{"task_events table", `
			CREATE TABLE IF NOT EXISTS task_events (
				id {{serial}},
				user_id TEXT NOT NULL,
				task_name TEXT NOT NULL,
				scheduled_time {{timestamp}} NOT NULL,
				completion_time {{timestamp}},
				completion_status TEXT,
				feedback TEXT,
				created_at {{timestamp}} NOT NULL
			)`},
		{"task_events index", `
			CREATE INDEX IF NOT EXISTS idx_task_events_user_task
			ON task_events (user_id, task_name, completion_status)`},
		{"decision_log table", `
			CREATE TABLE IF NOT EXISTS decision_log (
				id {{serial}},
				user_id TEXT NOT NULL,
				decision_type TEXT NOT NULL,
				reasoning TEXT,
				action_taken TEXT,
				created_at {{timestamp}} NOT NULL
			)`},
		{"preference_profiles table", `
			CREATE TABLE IF NOT EXISTS preference_profiles (
				id {{serial}},
				user_id TEXT NOT NULL UNIQUE,
				preferred_times TEXT,
				task_categories TEXT,
				productivity_patterns TEXT,
				last_updated {{timestamp}} NOT NULL
			)`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(dialect.Replace(stmt.query)); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
	}
	return nil
}

// isUniqueViolation recognises duplicate-key errors from either driver
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
