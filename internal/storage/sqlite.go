// Package storage persists applied categorization decisions in SQLite so
// past sessions remain auditable after the accounting API has been updated.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jhalloran/tally/internal/model"
	"github.com/jhalloran/tally/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements service.DecisionStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the decision database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveDecision records one applied categorization.
func (s *SQLiteStore) SaveDecision(ctx context.Context, decision *service.Decision) error {
	if decision == nil {
		return fmt.Errorf("decision is required")
	}
	if decision.ID == "" {
		return fmt.Errorf("decision ID is required")
	}
	if decision.TransactionID == "" {
		return fmt.Errorf("decision transaction ID is required")
	}

	appliedAt := decision.AppliedAt
	if appliedAt.IsZero() {
		appliedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions (
			id, session_id, transaction_id, type, category,
			vendor_name, description, amount, confidence, applied_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		decision.ID,
		decision.SessionID,
		decision.TransactionID,
		string(decision.Type),
		decision.Category,
		decision.VendorName,
		decision.Description,
		decision.Amount,
		decision.Confidence,
		appliedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

const decisionColumns = `id, session_id, transaction_id, type, category,
	vendor_name, description, amount, confidence, applied_at`

// GetDecisionsByDateRange returns decisions applied within [start, end].
func (s *SQLiteStore) GetDecisionsByDateRange(ctx context.Context, start, end time.Time) ([]service.Decision, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date %v is before start date %v", end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+decisionColumns+`
		FROM decisions
		WHERE applied_at >= ? AND applied_at <= ?
		ORDER BY applied_at ASC`,
		start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanDecisions(rows)
}

// GetRecentDecisions returns the most recently applied decisions,
// newest first.
func (s *SQLiteStore) GetRecentDecisions(ctx context.Context, limit int) ([]service.Decision, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+decisionColumns+`
		FROM decisions
		ORDER BY applied_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanDecisions(rows)
}

func scanDecisions(rows *sql.Rows) ([]service.Decision, error) {
	var decisions []service.Decision
	for rows.Next() {
		var d service.Decision
		var decisionType string
		if err := rows.Scan(
			&d.ID,
			&d.SessionID,
			&d.TransactionID,
			&decisionType,
			&d.Category,
			&d.VendorName,
			&d.Description,
			&d.Amount,
			&d.Confidence,
			&d.AppliedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		d.Type = model.TransactionType(decisionType)
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decisions: %w", err)
	}
	return decisions, nil
}
