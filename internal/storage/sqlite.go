// Package storage хранит историю запусков сверки (только сводки, без строк результата).
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"facility-recon/internal/reconcile/model"
)

var ErrNotFound = errors.New("run not found")

// Run: сводка одного запуска.
type Run struct {
	ID              string        `json:"id"`
	CreatedAt       time.Time     `json:"createdAt"`
	MasterSource    string        `json:"masterSource"`
	ReferenceSource string        `json:"referenceSource"`
	Scorer          string        `json:"scorer"`
	Threshold       float64       `json:"threshold"`
	Summary         model.Summary `json:"summary"`
	Duration        time.Duration `json:"duration"`
}

type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		return nil, errors.New("dbPath is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't benefit from multiple connections
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Open: NewSQLiteStorage + Migrate.
func Open(ctx context.Context, dbPath string) (*SQLiteStorage, error) {
	s, err := NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStorage) Close() error { return s.db.Close() }

func (s *SQLiteStorage) SaveRun(ctx context.Context, r Run) error {
	if r.ID == "" {
		return errors.New("run id is empty")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, master_source, reference_source, scorer, threshold,
			total_master, total_reference, exact_count, high_count, low_count, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.UTC(), r.MasterSource, r.ReferenceSource, r.Scorer, r.Threshold,
		r.Summary.TotalMaster, r.Summary.TotalReference, r.Summary.Exact, r.Summary.High, r.Summary.Low,
		r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

const selectRun = `SELECT id, created_at, master_source, reference_source, scorer, threshold,
	total_master, total_reference, exact_count, high_count, low_count, duration_ms FROM runs`

// ListRuns: последние запуски, новые первыми.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectRun+` ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r  Run
		ms int64
	)
	err := sc.Scan(&r.ID, &r.CreatedAt, &r.MasterSource, &r.ReferenceSource, &r.Scorer, &r.Threshold,
		&r.Summary.TotalMaster, &r.Summary.TotalReference, &r.Summary.Exact, &r.Summary.High, &r.Summary.Low, &ms)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	r.Summary.Threshold = r.Threshold
	r.Duration = time.Duration(ms) * time.Millisecond
	return r, nil
}
