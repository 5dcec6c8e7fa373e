package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"hamstercal-go/internal/calendar"
	"hamstercal-go/internal/config"
	"hamstercal-go/internal/database"
	"hamstercal-go/internal/encryption"
	"hamstercal-go/internal/hamstercal"
	"hamstercal-go/internal/journal"
	"hamstercal-go/internal/watch"
)

// ErrJournalDisabled is returned by History when no journal is configured.
var ErrJournalDisabled = errors.New("no journal configured")

// App is the application layer between the CLI and SyncService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw CLI values, and manages the DB lifecycle on Close.
type App struct {
	cfg         *config.Config
	db          *database.SQLiteDatabase
	remote      hamstercal.Remote
	journal     hamstercal.Journal
	credentials *hamstercal.CredentialStore
	service     *hamstercal.SyncService
	clock       hamstercal.Clock
	logger      *slog.Logger
	logCloser   io.Closer
	op          *Operation
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "sync", "status").
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	clock := hamstercal.RealClock{}
	op := NewOperation(operation, clock.Now())

	logger, logCloser, err := newLogger(cfg.LogDir, cfg.Log, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		logCloser.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	sealer, err := encryption.NewSealerFromConfig(cfg.Token)
	if err != nil {
		db.Close()
		logCloser.Close()
		return nil, fmt.Errorf("creating token sealer: %w", err)
	}

	remote, err := calendar.NewRemoteFromConfig(cfg.Calendar)
	if err != nil {
		db.Close()
		logCloser.Close()
		return nil, fmt.Errorf("creating calendar remote: %w", err)
	}

	j, err := journal.NewJournalFromConfig(ctx, cfg.Journal)
	if err != nil {
		db.Close()
		logCloser.Close()
		return nil, fmt.Errorf("creating journal: %w", err)
	}

	adapter := &slogAdapter{l: logger}
	credentials := hamstercal.NewCredentialStore(db, sealer, remote, adapter)
	svc := hamstercal.NewSyncService(credentials, db, j, adapter, clock, hamstercal.UUIDGenerator{})

	logger.Debug("operation started", "operation", operation, "database", db.Path())

	return &App{
		cfg:         cfg,
		db:          db,
		remote:      remote,
		journal:     j,
		credentials: credentials,
		service:     svc,
		clock:       clock,
		logger:      logger,
		logCloser:   logCloser,
		op:          op,
	}, nil
}

// Sync runs one sync. creds may be nil to use the stored token.
// A non-nil error is fatal; partial failures are reported through
// report.Err().
func (a *App) Sync(ctx context.Context, creds *hamstercal.Credentials) (*hamstercal.SyncReport, error) {
	report, err := a.service.Run(ctx, creds)
	if err != nil {
		a.op.Fail()
		a.logger.Error("sync failed", "error", err)
		return report, err
	}
	if report.Err() != nil {
		a.op.Fail()
	}
	return report, nil
}

// Status describes the persisted sync state.
type Status struct {
	DatabasePath string
	HasToken     bool
	LastSyncTime time.Time // zero when never synced
	Pending      int       // records the next sync would select
	SchemaErr    error     // nil when migrations are current
}

// Status reports the stored token, watermark, and pending record count.
func (a *App) Status(ctx context.Context) (*Status, error) {
	state, err := a.credentials.Get(ctx)
	if err != nil {
		a.op.Fail()
		return nil, err
	}
	pending, err := a.service.Pending(ctx)
	if err != nil {
		a.op.Fail()
		return nil, err
	}
	return &Status{
		DatabasePath: a.db.Path(),
		HasToken:     state.HasToken(),
		LastSyncTime: state.LastSyncTime,
		Pending:      len(pending),
		SchemaErr:    a.db.CheckMigrations(),
	}, nil
}

// ResetWatermark clears the watermark when since is empty, forcing a full
// resync, or sets it to the time since describes. It returns the stored value.
func (a *App) ResetWatermark(ctx context.Context, since string) (time.Time, error) {
	var t time.Time
	if since != "" {
		var err error
		t, err = parseSince(since, a.clock.Now().In(a.db.Location()), a.db.Location())
		if err != nil {
			a.op.Fail()
			return time.Time{}, err
		}
	}
	if err := a.credentials.SetLastSyncTime(ctx, t); err != nil {
		a.op.Fail()
		return time.Time{}, err
	}
	a.logger.Info("watermark reset", "last_sync_time", t)
	return t, nil
}

// History returns up to limit journaled reports, newest first.
// A limit of zero or less returns every report.
func (a *App) History(ctx context.Context, limit int) ([]*hamstercal.SyncReport, error) {
	if a.journal == nil {
		return nil, ErrJournalDisabled
	}

	ids, err := a.journal.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	slices.Reverse(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	reports := make([]*hamstercal.SyncReport, 0, len(ids))
	for _, id := range ids {
		var buf bytes.Buffer
		if err := a.journal.GetReport(ctx, id, &buf); err != nil {
			return nil, fmt.Errorf("reading report %s: %w", id, err)
		}
		var report hamstercal.SyncReport
		if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
			return nil, fmt.Errorf("decoding report %s: %w", id, err)
		}
		reports = append(reports, &report)
	}
	return reports, nil
}

// Watch syncs once and then again after each debounced change to the
// database file, until ctx is cancelled or a sync fails fatally. creds, if
// given, are used for the first sync only; later syncs use the stored token.
// onReport, if set, is called after every sync.
func (a *App) Watch(ctx context.Context, creds *hamstercal.Credentials, onReport func(*hamstercal.SyncReport)) error {
	if a.cfg.Database.Type == "memory" {
		return fmt.Errorf("watch requires a sqlite database file")
	}

	debounce, err := a.cfg.Watch.DebounceDuration()
	if err != nil {
		return err
	}

	w, err := watch.NewWatcher(a.db.Path(), debounce, &slogAdapter{l: a.logger})
	if err != nil {
		return err
	}

	first := creds
	return w.Run(ctx, func(ctx context.Context) error {
		report, err := a.Sync(ctx, first)
		first = nil
		if err != nil {
			return err
		}
		if onReport != nil {
			onReport(report)
		}
		return nil
	})
}

// Close logs the outcome of the operation and closes all resources.
func (a *App) Close() error {
	var firstErr error

	a.logger.Debug("operation finished",
		"operation", a.op.Name,
		"status", a.op.Status,
		"elapsed", a.clock.Now().Sub(a.op.StartedAt))

	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logCloser != nil {
		a.logCloser.Close()
	}

	return firstErr
}

// Operation returns the operation this App was created for.
func (a *App) Operation() *Operation {
	return a.op
}

// InitKeys generates the age identity used to seal the stored token and
// returns its public recipient.
func InitKeys(cfg *config.Config) (string, error) {
	if cfg.Token.IdentityPath == "" {
		return "", fmt.Errorf("token.identity_path is not set")
	}
	return encryption.NewAgeSealer(cfg.Token).Setup()
}
