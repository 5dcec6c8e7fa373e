package hamstercal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SyncService is the top-level driver of an incremental sync run:
// authenticate, capture now, select, route, upload, and advance the
// watermark only when every upload succeeded.
//
// Runs are sequential and the service assumes it is the only writer of the
// state row; overlapping runs can race on the watermark.
type SyncService struct {
	credentials *CredentialStore
	database    Database
	journal     Journal
	logger      Logger
	clock       Clock
	idgen       IDGenerator
}

// NewSyncService creates a new SyncService with the provided dependencies.
// journal may be nil, in which case reports are not archived.
func NewSyncService(credentials *CredentialStore, database Database, journal Journal, logger Logger, clock Clock, idgen IDGenerator) *SyncService {
	return &SyncService{
		credentials: credentials,
		database:    database,
		journal:     journal,
		logger:      logger,
		clock:       clock,
		idgen:       idgen,
	}
}

// Credentials returns the store the service authenticates through.
func (s *SyncService) Credentials() *CredentialStore {
	return s.credentials
}

// Run performs one sync. A non-nil error is fatal (*AuthenticationError,
// *SelectionError, or a failure to list calendars or store the watermark)
// and leaves the watermark untouched. Per-record upload failures are
// reported in the returned SyncReport; check report.Err().
func (s *SyncService) Run(ctx context.Context, creds *Credentials) (*SyncReport, error) {
	session, err := s.credentials.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	state, err := s.credentials.Get(ctx)
	if err != nil {
		return nil, err
	}

	// now is captured once, before selection, and is the only value the
	// watermark may advance to for this batch.
	now := s.clock.Now()
	report := &SyncReport{
		RunID:       newRunID(now, s.idgen.New()),
		StartedAt:   now,
		Since:       state.LastSyncTime,
		CapturedNow: now,
	}

	records, err := s.database.SelectFacts(ctx, state.LastSyncTime)
	if err != nil {
		return nil, &SelectionError{Err: err}
	}
	report.Selected = len(records)
	s.logger.Info("facts selected", "count", len(records), "since", state.LastSyncTime)

	calendars, err := session.ListCalendars(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, newAuthenticationError(err)
		}
		return nil, fmt.Errorf("listing remote calendars: %w", err)
	}

	routing := RouteRecords(records, calendars)
	report.SkippedUnroutable = len(routing.Unroutable)
	for _, rec := range routing.Unroutable {
		summary := summarize(rec)
		report.Unroutable = append(report.Unroutable, &summary)
		s.logger.Warn("fact unroutable", "fact_id", rec.FactID, "tag", rec.Tag, "activity", rec.Activity)
	}

	for _, route := range routing.Routes {
		for _, rec := range route.Records {
			err := s.upload(ctx, session, route.Calendar, rec)
			switch {
			case err == nil:
				report.Uploaded++
			case errors.Is(err, ErrEventExists):
				report.Existing++
				s.logger.Debug("event already present", "fact_id", rec.FactID, "calendar", route.Calendar.Title)
			default:
				var uerr *UploadError
				if !errors.As(err, &uerr) {
					uerr = &UploadError{Record: rec, Calendar: route.Calendar.Title, Err: err}
				}
				report.addFailure(uerr)
				s.logger.Error("upload failed",
					"fact_id", rec.FactID,
					"tag", rec.Tag,
					"activity", rec.Activity,
					"calendar", route.Calendar.Title,
					"error", uerr.Err)
			}
		}
	}

	if report.Failed == 0 {
		if err := s.credentials.SetLastSyncTime(ctx, now); err != nil {
			return report, err
		}
		report.WatermarkAdvanced = true
	}

	s.logger.Info("sync complete",
		"uploaded", report.Uploaded,
		"existing", report.Existing,
		"skipped_unroutable", report.SkippedUnroutable,
		"failed", report.Failed)

	s.archive(ctx, report)
	return report, nil
}

// newRunID builds a sortable run id from the capture time and a short suffix.
func newRunID(now time.Time, id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return now.UTC().Format("20060102T150405Z") + "-" + id
}

// upload inserts one record into cal. ErrEventExists is returned unwrapped
// so the caller can count it as already synced.
func (s *SyncService) upload(ctx context.Context, session Session, cal *Calendar, rec *FactRecord) error {
	ev := NewEvent(rec)
	if err := session.InsertEvent(ctx, cal, ev); err != nil {
		if errors.Is(err, ErrEventExists) {
			return ErrEventExists
		}
		return &UploadError{Record: rec, Calendar: cal.Title, Err: err}
	}
	s.logger.Debug("event uploaded", "fact_id", rec.FactID, "calendar", cal.Title, "key", ev.Key)
	return nil
}

// Pending returns the records the next run would select.
func (s *SyncService) Pending(ctx context.Context) ([]*FactRecord, error) {
	state, err := s.credentials.Get(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.database.SelectFacts(ctx, state.LastSyncTime)
	if err != nil {
		return nil, &SelectionError{Err: err}
	}
	return records, nil
}

// archive writes the report to the journal. Failures are logged only.
func (s *SyncService) archive(ctx context.Context, report *SyncReport) {
	if s.journal == nil {
		return
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		s.logger.Warn("encoding report failed", "run_id", report.RunID, "error", err)
		return
	}
	if err := s.journal.PutReport(ctx, report.RunID, bytes.NewReader(data), int64(len(data))); err != nil {
		s.logger.Warn("journaling report failed", "run_id", report.RunID, "error", err)
	}
}
