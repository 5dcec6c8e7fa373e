package encryption

import (
	"fmt"

	"hamstercal-go/internal/config"
	"hamstercal-go/internal/hamstercal"
)

// NewSealerFromConfig creates a TokenSealer based on the configuration type.
func NewSealerFromConfig(cfg config.TokenConfig) (hamstercal.TokenSealer, error) {
	switch cfg.Type {
	case "none", "":
		return PlainSealer{}, nil
	case "age":
		if cfg.IdentityPath == "" {
			return nil, fmt.Errorf("age token sealing requires identity_path to be set")
		}
		return NewAgeSealer(cfg), nil
	case "test":
		return NewTestSealer(), nil
	default:
		return nil, fmt.Errorf("unknown token sealing type: %q", cfg.Type)
	}
}
