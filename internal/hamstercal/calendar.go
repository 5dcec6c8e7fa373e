package hamstercal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventTimeLayout is the local-time format sent to the remote calendar.
// No offset is attached; the wall clock is passed through as recorded.
const EventTimeLayout = "2006-01-02T15:04:05"

// eventKeyNamespace seeds deterministic event keys.
var eventKeyNamespace = uuid.MustParse("6f1c0d8e-2a4b-5c7d-9e0f-1a2b3c4d5e6f")

// Calendar is a remote calendar as listed by a Session.
type Calendar struct {
	ID       string // opaque handle used for inserts
	Title    string
	TimeZone string // IANA zone reported by the remote; empty when unknown
}

// Event is the write-only projection of a FactRecord sent to the remote.
type Event struct {
	Key         string // deterministic client-side id, see EventKey
	Title       string
	Description string
	Start       string // EventTimeLayout
	End         string // EventTimeLayout
}

// Remote is the calendar service the engine authenticates against.
type Remote interface {
	// Login performs the interactive handshake and returns an opaque token.
	Login(ctx context.Context, user, password string) (string, error)

	// ResumeSession rebuilds a session from a stored token without a
	// network round-trip. Token problems surface on first use.
	ResumeSession(ctx context.Context, token string) (Session, error)
}

// Session is an authenticated handle on the remote calendar service.
type Session interface {
	// ListCalendars returns every calendar visible to the session.
	ListCalendars(ctx context.Context) ([]*Calendar, error)

	// InsertEvent creates ev in cal. Implementations that honour client ids
	// return ErrEventExists when ev.Key is already present.
	InsertEvent(ctx context.Context, cal *Calendar, ev *Event) error

	// Close releases resources held by the session.
	Close() error
}

// FormatEventTime renders t in EventTimeLayout using t's own location.
func FormatEventTime(t time.Time) string {
	return t.Format(EventTimeLayout)
}

// EventKey derives a stable id from (activity, tag, start, end). The result is
// 32 lowercase hex characters, which is a valid Google Calendar event id.
func EventKey(rec *FactRecord) string {
	name := strings.Join([]string{
		rec.Activity,
		rec.Tag,
		FormatEventTime(rec.StartTime),
		FormatEventTime(rec.EndTime),
	}, "\x00")
	id := uuid.NewSHA1(eventKeyNamespace, []byte(name))
	return strings.ReplaceAll(id.String(), "-", "")
}

// NewEvent maps a FactRecord to the Event uploaded for it.
func NewEvent(rec *FactRecord) *Event {
	return &Event{
		Key:         EventKey(rec),
		Title:       rec.Activity,
		Description: rec.Description,
		Start:       FormatEventTime(rec.StartTime),
		End:         FormatEventTime(rec.EndTime),
	}
}
