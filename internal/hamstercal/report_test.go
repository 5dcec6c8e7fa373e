package hamstercal_test

import (
	"errors"
	"testing"

	"hamstercal-go/internal/hamstercal"
)

func TestSyncReport_Err(t *testing.T) {
	tests := []struct {
		name    string
		report  hamstercal.SyncReport
		wantErr bool
	}{
		{name: "all uploaded", report: hamstercal.SyncReport{Uploaded: 3}},
		{name: "existing counts as success", report: hamstercal.SyncReport{Uploaded: 1, Existing: 2}},
		{name: "nothing selected", report: hamstercal.SyncReport{}},
		{name: "one failure", report: hamstercal.SyncReport{Uploaded: 2, Failed: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.report.Err()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Err() = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var perr *hamstercal.PartialFailureError
			if !errors.As(err, &perr) {
				t.Fatalf("Err() = %T, want *PartialFailureError", err)
			}
			if perr.Failed != 1 || perr.Total != 3 {
				t.Errorf("PartialFailureError = %+v, want Failed 1 Total 3", perr)
			}
		})
	}
}
