package hamstercal

import "time"

// SyncReport summarizes one run.
type SyncReport struct {
	RunID             string           `json:"run_id"`
	StartedAt         time.Time        `json:"started_at"`
	Since             time.Time        `json:"since,omitzero"`
	CapturedNow       time.Time        `json:"captured_now"`
	Selected          int              `json:"selected"`
	Uploaded          int              `json:"uploaded"`
	Existing          int              `json:"existing"`
	SkippedUnroutable int              `json:"skipped_unroutable"`
	Failed            int              `json:"failed"`
	WatermarkAdvanced bool             `json:"watermark_advanced"`
	Failures          []*UploadFailure `json:"failures,omitempty"`
	Unroutable        []*FactSummary   `json:"unroutable,omitempty"`
}

// FactSummary identifies a record in a report.
type FactSummary struct {
	FactID    int64     `json:"fact_id"`
	Tag       string    `json:"tag"`
	Activity  string    `json:"activity"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// UploadFailure is the journaled form of an UploadError.
type UploadFailure struct {
	FactSummary
	Calendar string `json:"calendar"`
	Error    string `json:"error"`
}

func summarize(rec *FactRecord) FactSummary {
	return FactSummary{
		FactID:    rec.FactID,
		Tag:       rec.Tag,
		Activity:  rec.Activity,
		StartTime: rec.StartTime,
		EndTime:   rec.EndTime,
	}
}

func (r *SyncReport) addFailure(uerr *UploadError) {
	r.Failed++
	r.Failures = append(r.Failures, &UploadFailure{
		FactSummary: summarize(uerr.Record),
		Calendar:    uerr.Calendar,
		Error:       uerr.Err.Error(),
	})
}

// Err returns a *PartialFailureError when any upload failed, nil otherwise.
func (r *SyncReport) Err() error {
	if r.Failed == 0 {
		return nil
	}
	return &PartialFailureError{Failed: r.Failed, Total: r.Uploaded + r.Existing + r.Failed}
}
