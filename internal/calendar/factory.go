package calendar

import (
	"fmt"

	"hamstercal-go/internal/config"
	"hamstercal-go/internal/hamstercal"
)

// NewRemoteFromConfig creates a Remote implementation based on the calendar config type.
func NewRemoteFromConfig(cfg config.CalendarConfig) (hamstercal.Remote, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryRemote(cfg.Calendars...), nil
	case "google", "":
		if cfg.ClientID == "" {
			return nil, fmt.Errorf("google calendar requires client_id to be set")
		}
		return NewGoogleRemote(cfg), nil
	default:
		return nil, fmt.Errorf("unknown calendar type: %s", cfg.Type)
	}
}
