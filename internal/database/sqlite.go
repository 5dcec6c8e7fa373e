package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hamstercal-go/internal/database/migrations"
	"hamstercal-go/internal/hamstercal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// TimeLayout is how Hamster stores timestamps: naive local wall-clock text.
// It has one-second resolution, so a stored watermark is the captured time
// truncated to the second. Selection is inclusive (end_time >= watermark),
// so facts ending in that second are reselected and their event keys make
// the repeat insert a no-op.
const TimeLayout = "2006-01-02 15:04:05"

// SQLiteDatabase implements hamstercal.Database over a Hamster SQLite file.
type SQLiteDatabase struct {
	db   *sql.DB
	loc  *time.Location
	path string
}

// NewSQLiteDatabase opens the database at path and applies pending
// migrations. path can be a file path or ":memory:". Stored timestamps are
// interpreted in loc; a nil loc means time.Local.
func NewSQLiteDatabase(path string, loc *time.Location) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	s := NewSQLiteDatabaseFromDB(db, loc)
	s.path = path

	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured
// and migrated.
func NewSQLiteDatabaseFromDB(db *sql.DB, loc *time.Location) *SQLiteDatabase {
	if loc == nil {
		loc = time.Local
	}
	return &SQLiteDatabase{
		db:  db,
		loc: loc,
	}
}

// OpenConnection opens and configures a SQLite database connection.
// This is exported for use in tests that need a properly configured connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases coherent and serializes
	// writes to the state row.
	db.SetMaxOpenConns(1)

	// Hamster may hold the file open while we sync.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Sync state

// LoadSyncState returns the google_parameters row, inserting an empty one
// first if the table has none.
func (s *SQLiteDatabase) LoadSyncState(ctx context.Context) (*hamstercal.SyncState, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var token, lastUpdate sql.NullString
	err = tx.QueryRowContext(ctx, selectSyncState).Scan(&token, &lastUpdate)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.ExecContext(ctx, insertSyncState); err != nil {
			return nil, fmt.Errorf("creating sync state: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("committing transaction: %w", err)
		}
		return &hamstercal.SyncState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading sync state: %w", err)
	}

	state := &hamstercal.SyncState{Token: token.String}
	if lastUpdate.Valid {
		state.LastSyncTime, err = s.parseTime(lastUpdate.String)
		if err != nil {
			return nil, fmt.Errorf("parsing last_update: %w", err)
		}
	}
	return state, nil
}

// UpdateToken stores token; an empty token stores NULL.
func (s *SQLiteDatabase) UpdateToken(ctx context.Context, token string) error {
	value := sql.NullString{String: token, Valid: token != ""}
	if _, err := s.db.ExecContext(ctx, updateToken, value); err != nil {
		return fmt.Errorf("updating token: %w", err)
	}
	return nil
}

// UpdateLastSyncTime stores t as wall-clock text in the database location;
// a zero t stores NULL.
func (s *SQLiteDatabase) UpdateLastSyncTime(ctx context.Context, t time.Time) error {
	if _, err := s.db.ExecContext(ctx, updateLastSyncTime, s.formatTime(t)); err != nil {
		return fmt.Errorf("updating last sync time: %w", err)
	}
	return nil
}

// Facts

// SelectFacts returns one record per (fact, tag) pair with an end time on or
// after since, ordered by tag, start time, then fact id.
func (s *SQLiteDatabase) SelectFacts(ctx context.Context, since time.Time) ([]*hamstercal.FactRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectFactsSince, s.formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("querying facts: %w", err)
	}
	defer rows.Close()

	var records []*hamstercal.FactRecord
	for rows.Next() {
		var (
			rec        hamstercal.FactRecord
			start, end string
		)
		if err := rows.Scan(&rec.FactID, &start, &end, &rec.Description, &rec.Tag, &rec.Activity); err != nil {
			return nil, fmt.Errorf("scanning fact: %w", err)
		}
		if rec.StartTime, err = s.parseTime(start); err != nil {
			return nil, fmt.Errorf("parsing start_time of fact %d: %w", rec.FactID, err)
		}
		if rec.EndTime, err = s.parseTime(end); err != nil {
			return nil, fmt.Errorf("parsing end_time of fact %d: %w", rec.FactID, err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating facts: %w", err)
	}

	return records, nil
}

func (s *SQLiteDatabase) formatTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.In(s.loc).Format(TimeLayout), Valid: true}
}

func (s *SQLiteDatabase) parseTime(v string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, v, s.loc)
}

// Schema management

// Migrate applies pending migrations, creating google_parameters if absent.
func (s *SQLiteDatabase) Migrate() error {
	if err := migrations.MigrateUp(s.db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

// CheckMigrations verifies the sync tables are up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// Location returns the zone stored timestamps are interpreted in.
func (s *SQLiteDatabase) Location() *time.Location {
	return s.loc
}

// DB exposes the underlying connection for fixtures.
func (s *SQLiteDatabase) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements hamstercal.Database interface
var _ hamstercal.Database = (*SQLiteDatabase)(nil)
