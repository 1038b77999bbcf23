package perf

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Archive errors.
var (
	ErrArchiveClosed  = errors.New("perf: archive is closed")
	ErrReportNotFound = errors.New("perf: report not found")
)

// Archive persists generated performance reports to SQLite so report
// history survives process restarts. Live samples are never persisted.
// It is suitable for single-process production use.
type Archive struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewArchive creates a new report archive.
// The path should be a file path (e.g., "./reports.db") or ":memory:"
// for testing.
func NewArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			generated_at TEXT NOT NULL,
			window_ns INTEGER NOT NULL,
			entry_count INTEGER NOT NULL,
			data BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reports_generated_at
		ON reports(generated_at)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &Archive{db: db}, nil
}

// ReportInfo describes one archived report without its entries.
type ReportInfo struct {
	ID          string
	GeneratedAt time.Time
	Window      time.Duration
	EntryCount  int
}

// SaveReport stores one report and returns its archive ID.
func (a *Archive) SaveReport(report PerformanceReport) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return "", ErrArchiveClosed
	}

	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	id := uuid.New().String()
	_, err = a.db.Exec(`
		INSERT INTO reports (id, generated_at, window_ns, entry_count, data)
		VALUES (?, ?, ?, ?, ?)
	`, id, report.GeneratedAt.UTC().Format(time.RFC3339Nano),
		int64(report.Window), len(report.Entries), data)
	if err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return id, nil
}

// GetReport loads one archived report by ID.
func (a *Archive) GetReport(id string) (PerformanceReport, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return PerformanceReport{}, ErrArchiveClosed
	}

	var data []byte
	err := a.db.QueryRow(`
		SELECT data FROM reports WHERE id = ?
	`, id).Scan(&data)

	if err == sql.ErrNoRows {
		return PerformanceReport{}, ErrReportNotFound
	}
	if err != nil {
		return PerformanceReport{}, fmt.Errorf("load report: %w", err)
	}

	var report PerformanceReport
	if err := json.Unmarshal(data, &report); err != nil {
		return PerformanceReport{}, fmt.Errorf("unmarshal report: %w", err)
	}
	return report, nil
}

// ListReports returns archived report metadata, newest first.
// A limit <= 0 returns everything.
func (a *Archive) ListReports(limit int) ([]ReportInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, ErrArchiveClosed
	}

	query := `
		SELECT id, generated_at, window_ns, entry_count
		FROM reports
		ORDER BY generated_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var infos []ReportInfo
	for rows.Next() {
		var info ReportInfo
		var generatedAt string
		var windowNS int64
		if err := rows.Scan(&info.ID, &generatedAt, &windowNS, &info.EntryCount); err != nil {
			return nil, fmt.Errorf("scan report info: %w", err)
		}
		info.GeneratedAt, _ = time.Parse(time.RFC3339Nano, generatedAt)
		info.Window = time.Duration(windowNS)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return infos, nil
}

// Prune deletes reports generated before the cutoff and returns how
// many were removed.
func (a *Archive) Prune(olderThan time.Time) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return 0, ErrArchiveClosed
	}

	res, err := a.db.Exec(`
		DELETE FROM reports WHERE generated_at < ?
	`, olderThan.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune reports: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the archive. Safe to call more than once.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	return a.db.Close()
}
