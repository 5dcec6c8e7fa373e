package journal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"hamstercal-go/internal/hamstercal"
)

// MemoryJournal is an in-memory implementation of the Journal interface.
// It is useful for testing and is safe for concurrent use.
type MemoryJournal struct {
	reports map[string][]byte // runID -> encoded report
	mu      sync.RWMutex
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{reports: make(map[string][]byte)}
}

// PutReport stores the report for runID, replacing any earlier one.
func (m *MemoryJournal) PutReport(_ context.Context, runID string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports[runID] = data
	return nil
}

// GetReport writes the report for runID to w.
func (m *MemoryJournal) GetReport(_ context.Context, runID string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.reports[runID]
	if !ok {
		return fmt.Errorf("report not found: %s", runID)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ListReports returns the stored run IDs in ascending order.
func (m *MemoryJournal) ListReports(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.reports))
	for id := range m.reports {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Compile-time check that MemoryJournal implements hamstercal.Journal interface
var _ hamstercal.Journal = (*MemoryJournal)(nil)
