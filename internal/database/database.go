package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded for a matched entry
const (
	ActionDelete = "DELETE"
	ActionError  = "ERROR"
	ActionSkip   = "SKIP"
)

// RemovalDB manages the SQLite database for removal history
type RemovalDB struct {
	db *sql.DB
}

// Removal is a single removal attempt as reported by the walker
type Removal struct {
	Timestamp    time.Time
	Action       string
	Path         string
	Root         string
	Size         int64
	ErrorMessage string
}

// RemovalRecord is a stored removal attempt
type RemovalRecord struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	Path         string    `json:"path"`
	Directory    string    `json:"directory"`
	Root         string    `json:"root"`
	Size         int64     `json:"size"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// NewRemovalDB creates a new database connection and initializes schema
func NewRemovalDB(dbPath string) (*RemovalDB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Exec rather than Ping so the file is created on first use
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	rdb := &RemovalDB{db: db}
	if err = rdb.initSchema(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *RemovalDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS removals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		directory TEXT NOT NULL,
		root TEXT NOT NULL,
		size INTEGER NOT NULL,
		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_removals_timestamp ON removals(timestamp);
	CREATE INDEX IF NOT EXISTS idx_removals_action ON removals(action);
	CREATE INDEX IF NOT EXISTS idx_removals_path ON removals(path);
	CREATE INDEX IF NOT EXISTS idx_removals_root ON removals(root);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordRemoval inserts a removal attempt into the database
func (d *RemovalDB) RecordRemoval(r Removal) error {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var errMsg *string
	if r.ErrorMessage != "" {
		errMsg = &r.ErrorMessage
	}

	_, err := d.db.Exec(`
	INSERT INTO removals (timestamp, action, path, directory, root, size, error_message)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		ts,
		r.Action,
		r.Path,
		filepath.Dir(r.Path),
		r.Root,
		r.Size,
		errMsg,
	)
	return err
}

// Close closes the database connection
func (d *RemovalDB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (d *RemovalDB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}
