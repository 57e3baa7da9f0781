package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"tv-notifier/internal/model"
)

// ErrUnavailable reports that the database could not be opened, read or written.
var ErrUnavailable = errors.New("storage unavailable")

// Store is the durable table of known feed events.
type Store struct {
	db *sql.DB
	// mu serializes writers so concurrent jobs don't race for the SQLite write lock.
	mu sync.Mutex
}

// Open creates or opens the events database at path and makes sure the
// schema exists. Safe to call on an existing database.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create database directory: %v", ErrUnavailable, err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrUnavailable, err)
	}

	s := &Store{db: db}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to initialize database: %v", ErrUnavailable, err)
	}

	log.Debug().Str("path", path).Msg("Event store opened")
	return s, nil
}

// initialize creates the database schema
func (s *Store) initialize() error {
	if err := s.db.Ping(); err != nil {
		return err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS events (
		uid TEXT PRIMARY KEY,
		summary TEXT,
		start_date DATE
	);

	CREATE INDEX IF NOT EXISTS idx_events_start_date ON events(start_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// InsertIfAbsent stores ev unless an event with the same UID already exists.
// It reports whether a row was written. A duplicate is not an error.
func (s *Store) InsertIfAbsent(ctx context.Context, ev model.Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO events (uid, summary, start_date)
		VALUES (?, ?, ?)
		ON CONFLICT(uid) DO NOTHING
	`, ev.UID, ev.Summary, model.FormatDate(ev.StartDate))
	if err != nil {
		return false, fmt.Errorf("%w: failed to insert event %s: %v", ErrUnavailable, ev.UID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: failed to read insert result: %v", ErrUnavailable, err)
	}

	return n == 1, nil
}

// QueryByDate returns the events airing on date.
func (s *Store) QueryByDate(ctx context.Context, date time.Time) ([]model.Event, error) {
	return s.query(ctx, `
		SELECT uid, summary, start_date
		FROM events
		WHERE start_date = ?
		ORDER BY uid
	`, model.FormatDate(date))
}

// QueryByDateRange returns the events airing between from and to, both inclusive.
func (s *Store) QueryByDateRange(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	return s.query(ctx, `
		SELECT uid, summary, start_date
		FROM events
		WHERE start_date BETWEEN ? AND ?
		ORDER BY start_date, uid
	`, model.FormatDate(from), model.FormatDate(to))
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: failed to count events: %v", ErrUnavailable, err)
	}
	return n, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query events: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var summary sql.NullString
		var start dateColumn
		if err := rows.Scan(&ev.UID, &summary, &start); err != nil {
			return nil, fmt.Errorf("%w: failed to scan row: %v", ErrUnavailable, err)
		}
		ev.Summary = summary.String
		ev.StartDate = start.t
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read rows: %v", ErrUnavailable, err)
	}

	return events, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// dateColumn scans start_date. The sqlite3 driver hands DATE columns back as
// time.Time when the text parses, and as a string otherwise.
type dateColumn struct {
	t time.Time
}

func (d *dateColumn) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.t = model.DateOf(v)
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		d.t = time.Time{}
	default:
		return fmt.Errorf("unsupported start_date type %T", src)
	}
	return nil
}

func (d *dateColumn) parse(s string) error {
	if len(s) > len(model.DateLayout) {
		s = s[:len(model.DateLayout)]
	}
	t, err := model.ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid start_date %q: %w", s, err)
	}
	d.t = t
	return nil
}
