package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

// InitDatabase opens the SQLite database at dbPath and creates tables
func InitDatabase(dbPath string) error {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	DB = conn

	log.Printf("Database initialized at: %s", dbPath)
	return nil
}

// Open opens a connection and makes sure the schema exists
func Open(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// in-memory databases are per connection
	if dsn == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := CreateTables(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return conn, nil
}

// CreateTables creates all necessary tables
func CreateTables(conn *sql.DB) error {
	createRemotesTable := `
	CREATE TABLE IF NOT EXISTS presenter_remotes (
		id TEXT PRIMARY KEY,
		mac_address TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL DEFAULT 'next',
		is_active INTEGER NOT NULL DEFAULT 1,
		press_count INTEGER NOT NULL DEFAULT 0,
		last_press DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := conn.Exec(createRemotesTable); err != nil {
		return fmt.Errorf("failed to create presenter_remotes table: %w", err)
	}

	createIndex := `CREATE INDEX IF NOT EXISTS idx_remote_mac ON presenter_remotes(mac_address);`
	if _, err := conn.Exec(createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	createTransitionsTable := `
	CREATE TABLE IF NOT EXISTS transitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		effect TEXT NOT NULL,
		direction TEXT NOT NULL,
		from_index INTEGER NOT NULL,
		to_index INTEGER NOT NULL,
		slide_id TEXT NOT NULL DEFAULT '',
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);`

	if _, err := conn.Exec(createTransitionsTable); err != nil {
		return fmt.Errorf("failed to create transitions table: %w", err)
	}

	createEffectIndex := `CREATE INDEX IF NOT EXISTS idx_transition_effect ON transitions(effect);`
	if _, err := conn.Exec(createEffectIndex); err != nil {
		return fmt.Errorf("failed to create effect index: %w", err)
	}

	log.Println("Database tables created successfully")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
