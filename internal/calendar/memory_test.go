package calendar

import (
	"errors"
	"testing"

	"hamstercal-go/internal/hamstercal"
)

func TestMemoryRemote_Login(t *testing.T) {
	remote := NewMemoryRemote("work")
	remote.AddUser("alice", "secret")

	tests := []struct {
		name     string
		user     string
		password string
		wantErr  bool
	}{
		{name: "valid credentials", user: "alice", password: "secret"},
		{name: "wrong password", user: "alice", password: "nope", wantErr: true},
		{name: "unknown user", user: "bob", password: "secret", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := remote.Login(t.Context(), tt.user, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, hamstercal.ErrUnauthorized) {
					t.Errorf("Login() error = %v, want ErrUnauthorized", err)
				}
				var rerr *RemoteError
				if !errors.As(err, &rerr) || rerr.ErrorClass() != "BadAuthentication" {
					t.Errorf("Login() error class = %v, want BadAuthentication", err)
				}
				return
			}
			if token == "" {
				t.Error("Login() returned empty token")
			}
		})
	}

	if got := remote.Logins(); got != 1 {
		t.Errorf("Logins() = %d, want 1", got)
	}
}

func TestMemoryRemote_SessionUsesToken(t *testing.T) {
	remote := NewMemoryRemote("work", "home")
	remote.AddUser("alice", "secret")

	token, err := remote.Login(t.Context(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	session, err := remote.ResumeSession(t.Context(), token)
	if err != nil {
		t.Fatalf("ResumeSession() error = %v", err)
	}
	defer session.Close()

	cals, err := session.ListCalendars(t.Context())
	if err != nil {
		t.Fatalf("ListCalendars() error = %v", err)
	}
	if len(cals) != 2 {
		t.Fatalf("ListCalendars() returned %d calendars, want 2", len(cals))
	}
	if cals[0].ID != "cal-1" || cals[1].ID != "cal-2" {
		t.Errorf("calendar IDs = %q, %q, want cal-1, cal-2", cals[0].ID, cals[1].ID)
	}

	remote.RevokeToken(token)
	if _, err := session.ListCalendars(t.Context()); !errors.Is(err, hamstercal.ErrUnauthorized) {
		t.Errorf("ListCalendars() after revoke error = %v, want ErrUnauthorized", err)
	}
}

func TestMemoryRemote_ResumeUnknownToken(t *testing.T) {
	remote := NewMemoryRemote("work")

	session, err := remote.ResumeSession(t.Context(), "never-issued")
	if err != nil {
		t.Fatalf("ResumeSession() error = %v, want lazy failure", err)
	}
	if _, err := session.ListCalendars(t.Context()); !errors.Is(err, hamstercal.ErrUnauthorized) {
		t.Errorf("ListCalendars() error = %v, want ErrUnauthorized", err)
	}
}

func TestMemoryRemote_InsertEvent(t *testing.T) {
	remote := NewMemoryRemote("work")
	remote.IssueToken("tok")
	session, _ := remote.ResumeSession(t.Context(), "tok")
	cal := &hamstercal.Calendar{ID: "cal-1", Title: "work"}
	ev := &hamstercal.Event{Key: "k1", Title: "standup", Start: "2024-01-01T09:00:00", End: "2024-01-01T10:00:00"}

	if err := session.InsertEvent(t.Context(), cal, ev); err != nil {
		t.Fatalf("InsertEvent() error = %v", err)
	}

	t.Run("duplicate key rejected", func(t *testing.T) {
		err := session.InsertEvent(t.Context(), cal, ev)
		if !errors.Is(err, hamstercal.ErrEventExists) {
			t.Errorf("InsertEvent() error = %v, want ErrEventExists", err)
		}
	})

	t.Run("hook failure", func(t *testing.T) {
		boom := errors.New("boom")
		remote.InsertHook = func(*hamstercal.Calendar, *hamstercal.Event) error { return boom }
		defer func() { remote.InsertHook = nil }()

		err := session.InsertEvent(t.Context(), cal, &hamstercal.Event{Key: "k2"})
		if !errors.Is(err, boom) {
			t.Errorf("InsertEvent() error = %v, want %v", err, boom)
		}
	})

	events := remote.Events("cal-1")
	if len(events) != 1 || events[0].Title != "standup" {
		t.Errorf("Events() = %v, want one standup event", events)
	}
	if got := remote.EventCount(); got != 1 {
		t.Errorf("EventCount() = %d, want 1", got)
	}
}

func TestMemoryRemote_LoginWithoutUsers(t *testing.T) {
	remote := NewMemoryRemote("work")

	token, err := remote.Login(t.Context(), "anyone", "anything")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	session, _ := remote.ResumeSession(t.Context(), token)
	if _, err := session.ListCalendars(t.Context()); err != nil {
		t.Errorf("ListCalendars() error = %v", err)
	}
}
