// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/hypoviz/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Fixed-width timestamps keep created_at ordering lexical.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a snapshot id does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Store wraps SQLite access for saved scenarios.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			stddev REAL NOT NULL,
			alpha REAL NOT NULL,
			null_mean REAL NOT NULL,
			alt_mean REAL NOT NULL,
			type1 REAL,
			type2 REAL,
			power REAL,
			note TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSnapshot stores a scenario and returns its id. A zero CreatedAt is
// stamped with the current time.
func (s *Store) InsertSnapshot(ctx context.Context, snap model.Snapshot) (int64, error) {
	created := snap.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (created_at, stddev, alpha, null_mean, alt_mean, type1, type2, power, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.UTC().Format(timeLayout),
		snap.StdDev,
		snap.Alpha,
		snap.NullMean,
		snap.AltMean,
		nullable(snap.TypeI),
		nullable(snap.TypeII),
		nullable(snap.Power),
		snap.Note,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSnapshots returns the most recent snapshots, newest first. A limit of
// zero or less returns all of them.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, stddev, alpha, null_mean, alt_mean, type1, type2, power, note
		FROM snapshots
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetSnapshot loads a single snapshot by id.
func (s *Store) GetSnapshot(ctx context.Context, id int64) (model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, stddev, alpha, null_mean, alt_mean, type1, type2, power, note
		FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, ErrNotFound
	}
	return snap, err
}

// DeleteSnapshot removes a snapshot by id.
func (s *Store) DeleteSnapshot(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(sc scanner) (model.Snapshot, error) {
	var snap model.Snapshot
	var createdAt string
	var type1, type2, power sql.NullFloat64
	if err := sc.Scan(&snap.ID, &createdAt, &snap.StdDev, &snap.Alpha, &snap.NullMean, &snap.AltMean,
		&type1, &type2, &power, &snap.Note); err != nil {
		return model.Snapshot{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap.CreatedAt = parsed
	snap.TypeI = fromNullable(type1)
	snap.TypeII = fromNullable(type2)
	snap.Power = fromNullable(power)
	return snap, nil
}

// SQLite has no NaN; degenerate probabilities are stored as NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
