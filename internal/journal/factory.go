package journal

import (
	"context"
	"fmt"

	"hamstercal-go/internal/config"
	"hamstercal-go/internal/hamstercal"
)

// NewJournalFromConfig creates a Journal implementation based on the journal
// config type. An empty type disables the journal and returns nil.
func NewJournalFromConfig(ctx context.Context, cfg config.JournalConfig) (hamstercal.Journal, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "memory":
		return NewMemoryJournal(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem journal requires fs_root to be set")
		}
		j, err := NewFileSystemJournal(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 journal requires s3_bucket to be set")
		}
		j, err := NewS3Journal(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}
