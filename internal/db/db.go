package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with kisanmitra-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Every pool connection to :memory: is a separate database; keep one.
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    current_topic TEXT,
    conversation_summary TEXT,
    user_location TEXT,
    farm_size TEXT,
    soil_type TEXT,
    farming_experience TEXT,
    preferred_crops TEXT NOT NULL DEFAULT '[]',
    communication_style TEXT NOT NULL DEFAULT 'friendly',
    is_active INTEGER NOT NULL DEFAULT 1,
    last_interaction DATETIME NOT NULL DEFAULT (datetime('now')),
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_active ON sessions(is_active, last_interaction);

CREATE TABLE IF NOT EXISTS turns (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    speaker TEXT NOT NULL CHECK(speaker IN ('user','bot')),
    content TEXT NOT NULL,
    intent TEXT,
    entities TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    FOREIGN KEY(session_id) REFERENCES sessions(session_id)
);

CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, created_at);

CREATE TABLE IF NOT EXISTS user_preferences (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    preference_type TEXT NOT NULL,
    preference_value TEXT NOT NULL,
    confidence REAL NOT NULL DEFAULT 0.5,
    interaction_count INTEGER NOT NULL DEFAULT 1,
    last_updated DATETIME NOT NULL DEFAULT (datetime('now')),
    UNIQUE(user_id, preference_type, preference_value)
);

CREATE INDEX IF NOT EXISTS idx_preferences_user ON user_preferences(user_id, preference_type);

CREATE TABLE IF NOT EXISTS market_prices (
    id TEXT PRIMARY KEY,
    crop TEXT NOT NULL,
    mandi TEXT NOT NULL,
    state TEXT NOT NULL,
    price_per_quintal REAL NOT NULL,
    trend TEXT NOT NULL DEFAULT 'stable' CHECK(trend IN ('rising','falling','stable')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    UNIQUE(crop, mandi)
);

CREATE INDEX IF NOT EXISTS idx_market_crop ON market_prices(crop, state);
`
