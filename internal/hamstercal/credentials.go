package hamstercal

import (
	"context"
	"fmt"
	"time"
)

// CredentialStore owns the only write path to the persisted SyncState.
// Writes commit before returning; the store assumes a single writer.
type CredentialStore struct {
	database Database
	sealer   TokenSealer
	remote   Remote
	logger   Logger
}

// NewCredentialStore creates a CredentialStore over the given collaborators.
func NewCredentialStore(database Database, sealer TokenSealer, remote Remote, logger Logger) *CredentialStore {
	return &CredentialStore{
		database: database,
		sealer:   sealer,
		remote:   remote,
		logger:   logger,
	}
}

// Get returns the current state with the token opened, creating the
// state row on first access.
func (c *CredentialStore) Get(ctx context.Context) (*SyncState, error) {
	stored, err := c.database.LoadSyncState(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sync state: %w", err)
	}

	state := &SyncState{LastSyncTime: stored.LastSyncTime}
	if stored.HasToken() {
		token, err := c.sealer.Open(stored.Token)
		if err != nil {
			return nil, fmt.Errorf("opening stored token: %w", err)
		}
		state.Token = token
	}
	return state, nil
}

// SetToken persists token unless it equals the stored value.
func (c *CredentialStore) SetToken(ctx context.Context, token string) error {
	current, err := c.Get(ctx)
	if err != nil {
		return err
	}
	if current.Token == token {
		return nil
	}

	sealed := ""
	if token != "" {
		sealed, err = c.sealer.Seal(token)
		if err != nil {
			return fmt.Errorf("sealing token: %w", err)
		}
	}
	if err := c.database.UpdateToken(ctx, sealed); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	c.logger.Info("token stored")
	return nil
}

// SetLastSyncTime persists t unless it equals the stored watermark.
// A zero t clears the watermark.
func (c *CredentialStore) SetLastSyncTime(ctx context.Context, t time.Time) error {
	current, err := c.database.LoadSyncState(ctx)
	if err != nil {
		return fmt.Errorf("loading sync state: %w", err)
	}
	if current.LastSyncTime.Equal(t) {
		return nil
	}

	if err := c.database.UpdateLastSyncTime(ctx, t); err != nil {
		return fmt.Errorf("storing last sync time: %w", err)
	}

	c.logger.Info("watermark updated", "last_sync_time", t)
	return nil
}

// Authenticate returns a session on the remote.
//
// With creds, it always performs the login handshake and stores the issued
// token before resuming a session from it. Without creds, the stored token
// is used directly; if none is stored the call fails with
// ErrCredentialsRequired. Handshake failures become *AuthenticationError.
func (c *CredentialStore) Authenticate(ctx context.Context, creds *Credentials) (Session, error) {
	state, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}

	token := state.Token
	if creds != nil {
		c.logger.Info("logging in", "user", creds.User)
		token, err = c.remote.Login(ctx, creds.User, creds.Password)
		if err != nil {
			return nil, newAuthenticationError(err)
		}
		if err := c.SetToken(ctx, token); err != nil {
			return nil, err
		}
	} else if token == "" {
		return nil, newAuthenticationError(ErrCredentialsRequired)
	}

	session, err := c.remote.ResumeSession(ctx, token)
	if err != nil {
		return nil, newAuthenticationError(err)
	}
	return session, nil
}
