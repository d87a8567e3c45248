package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/adaptive-interviewer/internal/interview"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound        = errors.New("interview record not found")
	ErrVersionConflict = errors.New("interview record was modified concurrently")
	ErrDuplicate       = errors.New("candidate already has a record in this batch")
)

const schema = `
CREATE TABLE IF NOT EXISTS interview_records (
	id             TEXT PRIMARY KEY,
	batch_id       TEXT NOT NULL,
	candidate_name TEXT NOT NULL,
	version        INTEGER NOT NULL,
	is_finished    INTEGER NOT NULL DEFAULT 0,
	reset_count    INTEGER NOT NULL DEFAULT 0,
	record_json    TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL,
	UNIQUE (batch_id, candidate_name)
);

CREATE INDEX IF NOT EXISTS idx_interview_records_batch ON interview_records(batch_id);
`

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectColumns = `id, batch_id, candidate_name, version, reset_count, record_json, created_at, updated_at`

// Entry is a stored interview record with its bookkeeping columns.
type Entry struct {
	ID            string
	BatchID       string
	CandidateName string
	Version       int64
	ResetCount    int
	Record        *interview.Record
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Store persists interview records in SQLite. Every write bumps the record
// version; replacements must name the version they were derived from.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens a SQLite database and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores a new record under a fresh id.
func (s *Store) Insert(ctx context.Context, rec *interview.Record) (*Entry, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	now := s.now().UTC()
	entry := &Entry{
		ID:            uuid.New().String(),
		BatchID:       rec.BatchID,
		CandidateName: rec.CandidateName,
		Version:       1,
		Record:        rec,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interview_records (id, batch_id, candidate_name, version, is_finished, reset_count, record_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		entry.ID, entry.BatchID, entry.CandidateName, entry.Version, boolToInt(rec.IsFinished), string(payload),
		formatTime(now), formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicate, rec.BatchID, rec.CandidateName)
		}
		return nil, fmt.Errorf("insert record: %w", err)
	}

	return entry, nil
}

// Get loads a record by id.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM interview_records WHERE id = ?`, id)
	return scanEntry(row)
}

// FindByCandidate loads the record of a candidate within a batch.
func (s *Store) FindByCandidate(ctx context.Context, batchID, candidateName string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM interview_records WHERE batch_id = ? AND candidate_name = ?`,
		batchID, candidateName,
	)
	return scanEntry(row)
}

// ListByBatch returns all records of a batch, oldest first.
func (s *Store) ListByBatch(ctx context.Context, batchID string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM interview_records WHERE batch_id = ? ORDER BY created_at, candidate_name`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return entries, nil
}

// Replace swaps the stored record if it is still at expectedVersion.
func (s *Store) Replace(ctx context.Context, id string, expectedVersion int64, rec *interview.Record) (*Entry, error) {
	return s.update(ctx, id, expectedVersion, rec, false)
}

// Reset replaces the record with a fresh one and counts the reset.
func (s *Store) Reset(ctx context.Context, id string, expectedVersion int64, rec *interview.Record) (*Entry, error) {
	return s.update(ctx, id, expectedVersion, rec, true)
}

func (s *Store) update(ctx context.Context, id string, expectedVersion int64, rec *interview.Record, reset bool) (*Entry, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	increment := 0
	if reset {
		increment = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE interview_records
		 SET version = version + 1, is_finished = ?, reset_count = reset_count + ?, record_json = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		boolToInt(rec.IsFinished), increment, string(payload), formatTime(s.now().UTC()), id, expectedVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}

	row := tx.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM interview_records WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s is at version %d, expected %d", ErrVersionConflict, id, entry.Version, expectedVersion)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return entry, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		entry            Entry
		payload          string
		created, updated string
	)
	err := row.Scan(&entry.ID, &entry.BatchID, &entry.CandidateName, &entry.Version, &entry.ResetCount, &payload, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}

	var rec interview.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("%w: record %s: %v", interview.ErrCorruptRecord, entry.ID, err)
	}
	entry.Record = &rec

	if entry.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if entry.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	return &entry, nil
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
