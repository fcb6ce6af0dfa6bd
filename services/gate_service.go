package services

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"visibility-wizard/config"
)

// ScanGate tracks which clients have already consumed their free scan.
// It is a usage gate, not a security boundary.
type ScanGate interface {
	Consumed(clientKey string) (bool, error)
	MarkConsumed(clientKey string) error
}

// MemoryScanGate keeps the gate in process memory. Used in tests and in
// deployments without a database.
type MemoryScanGate struct {
	mu       sync.RWMutex
	consumed map[string]bool
}

// NewMemoryScanGate creates an in-memory scan gate
func NewMemoryScanGate() *MemoryScanGate {
	return &MemoryScanGate{consumed: make(map[string]bool)}
}

func (g *MemoryScanGate) Consumed(clientKey string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.consumed[clientKey], nil
}

func (g *MemoryScanGate) MarkConsumed(clientKey string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.consumed[clientKey] = true
	return nil
}

// DatabaseScanGate persists the gate in MySQL
type DatabaseScanGate struct {
	db *sql.DB
}

// NewDatabaseScanGate opens the database and ensures the gate table exists
func NewDatabaseScanGate(cfg *config.Config) (*DatabaseScanGate, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection with exponential backoff retry
	deadline := time.Now().Add(60 * time.Second)
	waitInterval := 1 * time.Second
	for {
		if err := db.Ping(); err == nil {
			break
		} else if time.Now().After(deadline) {
			return nil, fmt.Errorf("database unreachable: %w", err)
		} else {
			log.Warnf("Database connection failed, retrying in %v: %v", waitInterval, err)
			time.Sleep(waitInterval)
			waitInterval *= 2
		}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	gate := &DatabaseScanGate{db: db}
	if err := gate.ensureTable(); err != nil {
		return nil, err
	}

	log.Infof("Scan gate connected to %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	return gate, nil
}

// NewDatabaseScanGateFromDB wraps an existing connection. Used in tests.
func NewDatabaseScanGateFromDB(db *sql.DB) *DatabaseScanGate {
	return &DatabaseScanGate{db: db}
}

func (g *DatabaseScanGate) ensureTable() error {
	_, err := g.db.Exec(`CREATE TABLE IF NOT EXISTS free_scans (
		client_key VARCHAR(128) NOT NULL PRIMARY KEY,
		consumed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create free_scans table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (g *DatabaseScanGate) Close() error {
	return g.db.Close()
}

func (g *DatabaseScanGate) Consumed(clientKey string) (bool, error) {
	var count int
	err := g.db.QueryRow("SELECT COUNT(*) FROM free_scans WHERE client_key = ?", clientKey).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query free_scans: %w", err)
	}
	return count > 0, nil
}

func (g *DatabaseScanGate) MarkConsumed(clientKey string) error {
	_, err := g.db.Exec(
		"INSERT INTO free_scans (client_key) VALUES (?) ON DUPLICATE KEY UPDATE consumed_at = consumed_at",
		clientKey)
	if err != nil {
		return fmt.Errorf("failed to mark scan consumed: %w", err)
	}
	return nil
}
