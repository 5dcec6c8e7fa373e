package calendar

import (
	"context"
	"fmt"
	"sync"

	"hamstercal-go/internal/hamstercal"
)

// MemoryRemote is an in-memory implementation of hamstercal.Remote.
// It keeps calendars and inserted events in memory, making it useful for
// testing and dry runs. This implementation is safe for concurrent use.
type MemoryRemote struct {
	mu        sync.RWMutex
	users     map[string]string // user -> password
	tokens    map[string]bool   // issued tokens
	calendars []*hamstercal.Calendar
	events    map[string][]*hamstercal.Event // calendar ID -> events in insert order

	// InsertHook, when set, runs before each insert; a non-nil error fails it.
	InsertHook func(cal *hamstercal.Calendar, ev *hamstercal.Event) error

	logins int
}

var _ hamstercal.Remote = (*MemoryRemote)(nil)

// NewMemoryRemote creates a MemoryRemote holding calendars with the given titles.
// Calendar IDs are assigned in order as "cal-1", "cal-2", ...
func NewMemoryRemote(titles ...string) *MemoryRemote {
	m := &MemoryRemote{
		users:  make(map[string]string),
		tokens: make(map[string]bool),
		events: make(map[string][]*hamstercal.Event),
	}
	for _, title := range titles {
		m.AddCalendar(title)
	}
	return m
}

// AddCalendar adds a calendar and returns it. Titles need not be unique.
func (m *MemoryRemote) AddCalendar(title string) *hamstercal.Calendar {
	m.mu.Lock()
	defer m.mu.Unlock()

	cal := &hamstercal.Calendar{ID: fmt.Sprintf("cal-%d", len(m.calendars)+1), Title: title}
	m.calendars = append(m.calendars, cal)
	return cal
}

// AddUser registers credentials accepted by Login.
func (m *MemoryRemote) AddUser(user, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user] = password
}

// IssueToken registers a token accepted by ResumeSession without a login.
func (m *MemoryRemote) IssueToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = true
}

// RevokeToken invalidates a token; sessions using it fail with ErrUnauthorized.
func (m *MemoryRemote) RevokeToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
}

// Logins returns how many successful logins have been performed.
func (m *MemoryRemote) Logins() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logins
}

// Events returns a copy of the events inserted into the calendar with id.
func (m *MemoryRemote) Events(calendarID string) []*hamstercal.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*hamstercal.Event(nil), m.events[calendarID]...)
}

// EventCount returns the number of events across all calendars.
func (m *MemoryRemote) EventCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, evs := range m.events {
		n += len(evs)
	}
	return n
}

// Login checks the credentials and issues a token. With no users
// registered, any credentials are accepted.
func (m *MemoryRemote) Login(_ context.Context, user, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if want, ok := m.users[user]; len(m.users) > 0 && (!ok || want != password) {
		return "", &RemoteError{Class: "BadAuthentication", Message: "invalid user or password", Err: hamstercal.ErrUnauthorized}
	}
	m.logins++
	token := fmt.Sprintf("memory-token-%s-%d", user, m.logins)
	m.tokens[token] = true
	return token, nil
}

// ResumeSession returns a session bound to token. The token is checked on use.
func (m *MemoryRemote) ResumeSession(_ context.Context, token string) (hamstercal.Session, error) {
	return &memorySession{remote: m, token: token}, nil
}

type memorySession struct {
	remote *MemoryRemote
	token  string
}

func (s *memorySession) authorized() error {
	if !s.remote.tokens[s.token] {
		return &RemoteError{Class: "TokenRevoked", Message: "token is not valid", Err: hamstercal.ErrUnauthorized}
	}
	return nil
}

func (s *memorySession) ListCalendars(_ context.Context) ([]*hamstercal.Calendar, error) {
	s.remote.mu.RLock()
	defer s.remote.mu.RUnlock()

	if err := s.authorized(); err != nil {
		return nil, err
	}
	out := make([]*hamstercal.Calendar, len(s.remote.calendars))
	for i, cal := range s.remote.calendars {
		c := *cal
		out[i] = &c
	}
	return out, nil
}

func (s *memorySession) InsertEvent(_ context.Context, cal *hamstercal.Calendar, ev *hamstercal.Event) error {
	s.remote.mu.Lock()
	defer s.remote.mu.Unlock()

	if err := s.authorized(); err != nil {
		return err
	}
	if s.remote.InsertHook != nil {
		if err := s.remote.InsertHook(cal, ev); err != nil {
			return err
		}
	}
	for _, existing := range s.remote.events[cal.ID] {
		if ev.Key != "" && existing.Key == ev.Key {
			return fmt.Errorf("event %s in %s: %w", ev.Key, cal.ID, hamstercal.ErrEventExists)
		}
	}
	e := *ev
	s.remote.events[cal.ID] = append(s.remote.events[cal.ID], &e)
	return nil
}

func (s *memorySession) Close() error { return nil }
