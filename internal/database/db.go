package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection with pooling
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool manages database connection pooling
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool creates a new database connection pool
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// NewDB creates a new database connection with optimized pooling
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ctei_manager.db")
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pool := NewConnectionPool(db, 25, 5, 5*time.Minute)

	database := &DB{
		DB:       db,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized with connection pooling",
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns,
		"max_lifetime", pool.maxLifetime)

	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			abstract TEXT NOT NULL DEFAULT '',
			introduction TEXT NOT NULL DEFAULT '',
			methodology TEXT NOT NULL DEFAULT '',
			keywords TEXT NOT NULL DEFAULT '',
			budget REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'ACTIVE',
			owner_id TEXT NOT NULL,
			progress_percent REAL NOT NULL DEFAULT 0,
			start_date DATETIME,
			end_date DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			category_group TEXT NOT NULL DEFAULT '',
			doi TEXT NOT NULL DEFAULT '',
			journal TEXT NOT NULL DEFAULT '',
			impact_factor REAL NOT NULL DEFAULT 0,
			citation_count INTEGER NOT NULL DEFAULT 0,
			publication_date DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,

		`CREATE TABLE IF NOT EXISTS project_collaborators (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			researcher_id TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'INTERNAL',
			created_at DATETIME NOT NULL,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,

		`CREATE TABLE IF NOT EXISTS score_snapshots (
			id TEXT PRIMARY KEY,
			entity_id TEXT NOT NULL,
			entity_kind TEXT NOT NULL,
			sub_scores TEXT NOT NULL,
			total_score REAL NOT NULL,
			evaluation_category TEXT NOT NULL,
			recommendations TEXT NOT NULL DEFAULT '[]',
			calculated_at DATETIME NOT NULL,
			is_current BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			alert_type TEXT NOT NULL,
			category TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			severity_level INTEGER NOT NULL,
			priority_score INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'ACTIVE',
			title TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			context_data TEXT NOT NULL DEFAULT '{}',
			recommended_actions TEXT NOT NULL DEFAULT '[]',
			detected_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			resolved_at DATETIME,
			acknowledged_at DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS scoring_criteria (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			weight REAL NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		// Indexes for performance
		`CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_products_project ON products(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_collaborators_project ON project_collaborators(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_entity ON score_snapshots(entity_kind, entity_id, is_current)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_calculated ON score_snapshots(calculated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_entity ON alerts(entity_type, entity_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_priority ON alerts(status, priority_score DESC)`,

		// One ACTIVE alert per (entity, type); duplicate inserts from the
		// check-then-insert race fail here and are treated as a no-op.
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_alerts_active
			ON alerts(entity_type, entity_id, alert_type) WHERE status = 'ACTIVE'`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// initPreparedStatements initializes frequently used prepared statements
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"get_current_snapshot": `SELECT id, entity_id, entity_kind, sub_scores, total_score,
			evaluation_category, recommendations, calculated_at, is_current
			FROM score_snapshots WHERE entity_kind = ? AND entity_id = ? AND is_current = TRUE`,

		"find_active_alert": `SELECT id, alert_type, category, entity_type, entity_id,
			severity_level, priority_score, status, title, message, context_data,
			recommended_actions, detected_at, created_at, updated_at, resolved_at, acknowledged_at
			FROM alerts WHERE entity_type = ? AND entity_id = ? AND alert_type = ? AND status = 'ACTIVE'`,

		"get_scoring_weights": `SELECT name, weight FROM scoring_criteria WHERE active = TRUE`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt

		slog.Debug("Prepared statement initialized", "name", name)
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// GetPoolStats returns database connection pool statistics
func (db *DB) GetPoolStats() map[string]interface{} {
	return db.pool.GetStats()
}

// Close closes the database connection and prepared statements
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}

	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
