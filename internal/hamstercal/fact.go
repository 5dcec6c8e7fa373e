package hamstercal

import "time"

// FactRecord is one (fact, tag) row selected from the Hamster database.
// A fact carrying several tags produces one FactRecord per tag.
type FactRecord struct {
	FactID      int64
	StartTime   time.Time
	EndTime     time.Time
	Description string
	Tag         string // routing label; empty means unroutable
	Activity    string // remote event title
}

// SyncState is the single persisted google_parameters row.
// An empty Token and a zero LastSyncTime mean "absent".
type SyncState struct {
	Token        string
	LastSyncTime time.Time
}

// HasToken reports whether a token has been stored.
func (s *SyncState) HasToken() bool {
	return s.Token != ""
}

// HasLastSyncTime reports whether a watermark has been recorded.
func (s *SyncState) HasLastSyncTime() bool {
	return !s.LastSyncTime.IsZero()
}

// Credentials are the interactive login values. A nil *Credentials means
// "use the stored token".
type Credentials struct {
	User     string
	Password string
}
