package journal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"hamstercal-go/internal/hamstercal"
)

const reportExt = ".json"

// FileSystemJournal stores reports as files:
//
//	<root>/
//	  reports/
//	    <runID>.json
type FileSystemJournal struct {
	root       string
	reportsDir string
}

// NewFileSystemJournal creates a journal rooted at the given path.
func NewFileSystemJournal(root string) (*FileSystemJournal, error) {
	reportsDir := filepath.Join(root, "reports")
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	return &FileSystemJournal{
		root:       root,
		reportsDir: reportsDir,
	}, nil
}

func (j *FileSystemJournal) reportPath(runID string) (string, error) {
	if runID == "" || strings.ContainsAny(runID, `/\`) || strings.HasPrefix(runID, ".") {
		return "", fmt.Errorf("invalid run id: %q", runID)
	}
	return filepath.Join(j.reportsDir, runID+reportExt), nil
}

// PutReport stores the report for runID using an atomic write.
func (j *FileSystemJournal) PutReport(_ context.Context, runID string, r io.Reader, size int64) error {
	destPath, err := j.reportPath(runID)
	if err != nil {
		return err
	}
	return writeFile(destPath, r, size)
}

// GetReport writes the report for runID to w.
func (j *FileSystemJournal) GetReport(_ context.Context, runID string, w io.Writer) error {
	srcPath, err := j.reportPath(runID)
	if err != nil {
		return err
	}

	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("report not found: %s", runID)
		}
		return fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	return nil
}

// ListReports returns the stored run IDs in ascending order.
func (j *FileSystemJournal) ListReports(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(j.reportsDir)
	if err != nil {
		return nil, fmt.Errorf("reading reports directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, reportExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, reportExt))
	}
	slices.Sort(ids)
	return ids, nil
}

// writeFile writes data from r to destPath via a temp file and rename.
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemJournal implements hamstercal.Journal interface
var _ hamstercal.Journal = (*FileSystemJournal)(nil)
