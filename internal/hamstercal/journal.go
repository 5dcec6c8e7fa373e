package hamstercal

import (
	"context"
	"io"
)

// Journal archives run reports so failed uploads can be inspected after the fact.
type Journal interface {
	// PutReport stores the encoded report for runID.
	// size is the number of bytes that will be read from r.
	PutReport(ctx context.Context, runID string, r io.Reader, size int64) error

	// GetReport writes the stored report for runID to w.
	GetReport(ctx context.Context, runID string, w io.Writer) error

	// ListReports returns stored run IDs in ascending order.
	ListReports(ctx context.Context) ([]string, error)
}
