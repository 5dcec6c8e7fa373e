package hamstercal

import (
	"context"
	"time"
)

// Database is the local store the sync engine reads facts from and keeps
// its single state row in.
type Database interface {
	// LoadSyncState returns the google_parameters row, inserting an empty
	// row first if none exists. The token is returned as stored (sealed).
	LoadSyncState(ctx context.Context) (*SyncState, error)

	// UpdateToken writes the (sealed) token and commits before returning.
	// An empty token stores NULL.
	UpdateToken(ctx context.Context, token string) error

	// UpdateLastSyncTime writes the watermark and commits before returning.
	// A zero time stores NULL.
	UpdateLastSyncTime(ctx context.Context, t time.Time) error

	// SelectFacts returns every (fact, tag) row whose end time is present and
	// on or after since, ordered by tag then start time. A zero since selects
	// every fact with an end time.
	SelectFacts(ctx context.Context, since time.Time) ([]*FactRecord, error)

	// Close closes the database connection.
	Close() error
}
