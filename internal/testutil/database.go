package testutil

import (
	"database/sql"
	"testing"
	"time"

	"hamstercal-go/internal/database"
)

// NewTestDatabase creates a new in-memory SQLite database with the Hamster
// schema and sync migrations applied. Timestamps are stored in UTC.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := sqlDB.Exec(database.HamsterSchema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(sqlDB, time.UTC)
	if err := db.Migrate(); err != nil {
		db.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// Hamster writes fixture rows the way the Hamster applet does.
type Hamster struct {
	t  *testing.T
	db *sql.DB
}

// NewHamster returns a fixture writer for db.
func NewHamster(t *testing.T, db *database.SQLiteDatabase) *Hamster {
	return &Hamster{t: t, db: db.DB()}
}

// AddFact records a completed fact and returns its id. Activities and tags
// are created on first use.
func (h *Hamster) AddFact(activity string, start, end time.Time, description string, tags ...string) int64 {
	h.t.Helper()
	return h.addFact(activity, start, sql.NullString{String: end.UTC().Format(database.TimeLayout), Valid: true}, description, tags)
}

// AddOpenFact records a fact that is still running (no end time).
func (h *Hamster) AddOpenFact(activity string, start time.Time, description string, tags ...string) int64 {
	h.t.Helper()
	return h.addFact(activity, start, sql.NullString{}, description, tags)
}

func (h *Hamster) addFact(activity string, start time.Time, end sql.NullString, description string, tags []string) int64 {
	h.t.Helper()

	activityID := h.findOrCreate("activities", activity)
	res, err := h.db.Exec(
		"INSERT INTO facts (activity_id, start_time, end_time, description) VALUES (?, ?, ?, ?)",
		activityID, start.UTC().Format(database.TimeLayout), end, description)
	if err != nil {
		h.t.Fatalf("inserting fact: %v", err)
	}
	factID, err := res.LastInsertId()
	if err != nil {
		h.t.Fatalf("reading fact id: %v", err)
	}

	for _, tag := range tags {
		tagID := h.findOrCreate("tags", tag)
		if _, err := h.db.Exec("INSERT INTO fact_tags (fact_id, tag_id) VALUES (?, ?)", factID, tagID); err != nil {
			h.t.Fatalf("tagging fact: %v", err)
		}
	}
	return factID
}

func (h *Hamster) findOrCreate(table, name string) int64 {
	h.t.Helper()

	var id int64
	err := h.db.QueryRow("SELECT id FROM "+table+" WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id
	}
	if err != sql.ErrNoRows {
		h.t.Fatalf("looking up %s %q: %v", table, name, err)
	}

	res, err := h.db.Exec("INSERT INTO "+table+" (name) VALUES (?)", name)
	if err != nil {
		h.t.Fatalf("inserting %s %q: %v", table, name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		h.t.Fatalf("reading %s id: %v", table, err)
	}
	return id
}
