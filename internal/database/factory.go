package database

import (
	"fmt"
	"time"

	"hamstercal-go/internal/config"
)

// NewDatabaseFromConfig creates a SQLiteDatabase based on the database config type.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (*SQLiteDatabase, error) {
	loc, err := LoadLocation(cfg.Location)
	if err != nil {
		return nil, err
	}

	switch cfg.Type {
	case "sqlite", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("path required for sqlite database")
		}
		return NewSQLiteDatabase(cfg.Path, loc)
	case "memory":
		db, err := NewSQLiteDatabase(":memory:", loc)
		if err != nil {
			return nil, err
		}
		if _, err := db.db.Exec(HamsterSchema); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying hamster schema: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// LoadLocation resolves the zone Hamster's naive timestamps are recorded in.
// An empty name means the local zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading location %q: %w", name, err)
	}
	return loc, nil
}
