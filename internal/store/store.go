// Package store persists metric samples in a SQLite database so past
// sessions can be browsed by day. The database lives in the data
// directory, ~/.hwtelemetry by default.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/luki/hwtelemetry/internal/snapshot"
)

const (
	fileName  = "readings.db"
	dayLayout = "2006-01-02"
)

// DiskStore writes and reads metric samples. Rows have the shape
//
//	captured_at (unix ms), day (YYYY-MM-DD local), metric, value
type DiskStore struct {
	db  *sql.DB
	dir string
}

// StoredReading is a single row from the readings table.
type StoredReading struct {
	Time   time.Time
	Metric string
	Value  float64
}

// Open opens (creating if needed) the database in dir.
func Open(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create data dir: %w", err)
	}
	path := filepath.Join(dir, fileName)
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database not responding: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DiskStore{db: db, dir: dir}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS readings (
		captured_at INTEGER NOT NULL,
		day TEXT NOT NULL,
		metric TEXT NOT NULL,
		value REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS readings_day ON readings (day, captured_at);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to migrate readings table: %w", err)
	}
	return nil
}

// Dir returns the data directory.
func (d *DiskStore) Dir() string { return d.dir }

// Write appends a batch of samples captured at t.
func (d *DiskStore) Write(ctx context.Context, samples []snapshot.Sample, t time.Time) error {
	if len(samples) == 0 {
		return nil
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO readings (captured_at, day, metric, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ms := t.UnixMilli()
	day := t.Local().Format(dayLayout)
	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx, ms, day, s.Metric, s.Value); err != nil {
			return fmt.Errorf("insert %s: %w", s.Metric, err)
		}
	}
	return tx.Commit()
}

// WriteSnapshot stores every present reading of snap.
func (d *DiskStore) WriteSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	return d.Write(ctx, snap.Samples(), snap.CapturedAt)
}

// Close closes the database.
func (d *DiskStore) Close() error {
	return d.db.Close()
}

// ListDays returns the days with stored readings (newest first).
func (d *DiskStore) ListDays(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT DISTINCT day FROM readings ORDER BY day DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// LoadDay reads all readings of a day in capture order.
func (d *DiskStore) LoadDay(ctx context.Context, day string) ([]StoredReading, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT captured_at, metric, value FROM readings WHERE day = ? ORDER BY captured_at, rowid`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []StoredReading
	for rows.Next() {
		var ms int64
		var r StoredReading
		if err := rows.Scan(&ms, &r.Metric, &r.Value); err != nil {
			return nil, err
		}
		r.Time = time.UnixMilli(ms)
		readings = append(readings, r)
	}
	return readings, rows.Err()
}
