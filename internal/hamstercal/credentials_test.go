package hamstercal_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hamstercal-go/internal/calendar"
	"hamstercal-go/internal/hamstercal"
	"hamstercal-go/internal/testutil"
)

// countingDatabase records writes to the state row.
type countingDatabase struct {
	hamstercal.Database
	tokenWrites int
	timeWrites  int
}

func (c *countingDatabase) UpdateToken(ctx context.Context, token string) error {
	c.tokenWrites++
	return c.Database.UpdateToken(ctx, token)
}

func (c *countingDatabase) UpdateLastSyncTime(ctx context.Context, t time.Time) error {
	c.timeWrites++
	return c.Database.UpdateLastSyncTime(ctx, t)
}

func newCredentialStore(t *testing.T) (*hamstercal.CredentialStore, *countingDatabase, *calendar.MemoryRemote) {
	t.Helper()
	db := &countingDatabase{Database: testutil.NewTestDatabase(t)}
	remote := testutil.NewTestRemote("work")
	store := hamstercal.NewCredentialStore(db, testutil.NewTestSealer(), remote, hamstercal.NewNopLogger())
	return store, db, remote
}

func TestCredentialStore_Get(t *testing.T) {
	t.Parallel()
	store, db, _ := newCredentialStore(t)
	ctx := t.Context()

	for i := 0; i < 3; i++ {
		state, err := store.Get(ctx)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if state.HasToken() || state.HasLastSyncTime() {
			t.Errorf("Get() = %+v, want empty state", state)
		}
	}

	if db.tokenWrites != 0 || db.timeWrites != 0 {
		t.Errorf("Get() performed %d token and %d time writes, want none", db.tokenWrites, db.timeWrites)
	}
}

func TestCredentialStore_SetToken(t *testing.T) {
	t.Parallel()
	store, db, _ := newCredentialStore(t)
	ctx := t.Context()

	if err := store.SetToken(ctx, "tok-1"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	raw, err := db.LoadSyncState(ctx)
	if err != nil {
		t.Fatalf("LoadSyncState() error = %v", err)
	}
	if raw.Token == "tok-1" || !strings.HasSuffix(raw.Token, "tok-1") {
		t.Errorf("stored token = %q, want sealed form of tok-1", raw.Token)
	}

	state, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if state.Token != "tok-1" {
		t.Errorf("Get().Token = %q, want %q", state.Token, "tok-1")
	}

	t.Run("same value is not rewritten", func(t *testing.T) {
		before := db.tokenWrites
		if err := store.SetToken(ctx, "tok-1"); err != nil {
			t.Fatalf("SetToken() error = %v", err)
		}
		if db.tokenWrites != before {
			t.Errorf("tokenWrites = %d, want %d", db.tokenWrites, before)
		}
	})

	t.Run("empty value clears", func(t *testing.T) {
		if err := store.SetToken(ctx, ""); err != nil {
			t.Fatalf("SetToken() error = %v", err)
		}
		state, err := store.Get(ctx)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if state.HasToken() {
			t.Errorf("Get().Token = %q, want empty", state.Token)
		}
	})
}

func TestCredentialStore_SetLastSyncTime(t *testing.T) {
	t.Parallel()
	store, db, _ := newCredentialStore(t)
	ctx := t.Context()
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	if err := store.SetLastSyncTime(ctx, ts); err != nil {
		t.Fatalf("SetLastSyncTime() error = %v", err)
	}
	if err := store.SetLastSyncTime(ctx, ts); err != nil {
		t.Fatalf("SetLastSyncTime() error = %v", err)
	}
	if db.timeWrites != 1 {
		t.Errorf("timeWrites = %d, want 1", db.timeWrites)
	}

	state, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !state.LastSyncTime.Equal(ts) {
		t.Errorf("LastSyncTime = %v, want %v", state.LastSyncTime, ts)
	}

	if err := store.SetLastSyncTime(ctx, time.Time{}); err != nil {
		t.Fatalf("SetLastSyncTime(zero) error = %v", err)
	}
	state, err = store.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if state.HasLastSyncTime() {
		t.Errorf("LastSyncTime = %v, want cleared", state.LastSyncTime)
	}
}

func TestCredentialStore_Authenticate(t *testing.T) {
	t.Run("login stores token", func(t *testing.T) {
		t.Parallel()
		store, _, remote := newCredentialStore(t)
		ctx := t.Context()

		session, err := store.Authenticate(ctx, &hamstercal.Credentials{User: "user", Password: "password"})
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		defer session.Close()

		if remote.Logins() != 1 {
			t.Errorf("Logins() = %d, want 1", remote.Logins())
		}
		state, err := store.Get(ctx)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !state.HasToken() {
			t.Error("token not stored after login")
		}
		if _, err := session.ListCalendars(ctx); err != nil {
			t.Errorf("ListCalendars() error = %v", err)
		}
	})

	t.Run("stored token skips login", func(t *testing.T) {
		t.Parallel()
		store, _, remote := newCredentialStore(t)
		ctx := t.Context()
		remote.IssueToken("stored")
		if err := store.SetToken(ctx, "stored"); err != nil {
			t.Fatalf("SetToken() error = %v", err)
		}

		session, err := store.Authenticate(ctx, nil)
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if _, err := session.ListCalendars(ctx); err != nil {
			t.Errorf("ListCalendars() error = %v", err)
		}
		if remote.Logins() != 0 {
			t.Errorf("Logins() = %d, want 0", remote.Logins())
		}
	})

	t.Run("no token and no credentials", func(t *testing.T) {
		t.Parallel()
		store, _, _ := newCredentialStore(t)

		_, err := store.Authenticate(t.Context(), nil)
		var aerr *hamstercal.AuthenticationError
		if !errors.As(err, &aerr) {
			t.Fatalf("Authenticate() error = %v, want *AuthenticationError", err)
		}
		if !errors.Is(err, hamstercal.ErrCredentialsRequired) {
			t.Errorf("Authenticate() error = %v, want ErrCredentialsRequired", err)
		}
	})

	t.Run("rejected credentials", func(t *testing.T) {
		t.Parallel()
		store, db, _ := newCredentialStore(t)
		ctx := t.Context()

		_, err := store.Authenticate(ctx, &hamstercal.Credentials{User: "user", Password: "wrong"})
		var aerr *hamstercal.AuthenticationError
		if !errors.As(err, &aerr) {
			t.Fatalf("Authenticate() error = %v, want *AuthenticationError", err)
		}
		if aerr.Class != "BadAuthentication" {
			t.Errorf("Class = %q, want BadAuthentication", aerr.Class)
		}
		if db.tokenWrites != 0 {
			t.Errorf("tokenWrites = %d, want 0", db.tokenWrites)
		}
	})
}
