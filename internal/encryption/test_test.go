package encryption

import (
	"testing"

	"hamstercal-go/internal/config"
)

func TestTestSealer_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewTestSealer()
	sealed, err := s.Seal("token-1")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if sealed == "token-1" {
		t.Error("sealed value is identical to plaintext")
	}

	opened, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if opened != "token-1" {
		t.Errorf("Open() = %q, want %q", opened, "token-1")
	}
}

func TestTestSealer_OpenInvalid(t *testing.T) {
	t.Parallel()

	if _, err := NewTestSealer().Open("not-sealed"); err == nil {
		t.Error("Open() of an unsealed value should return error")
	}
}

func TestNewSealerFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.TokenConfig
		wantErr bool
	}{
		{name: "default is plain", cfg: config.TokenConfig{}},
		{name: "none", cfg: config.TokenConfig{Type: "none"}},
		{name: "test", cfg: config.TokenConfig{Type: "test"}},
		{name: "age", cfg: config.TokenConfig{Type: "age", IdentityPath: "/tmp/x.age"}},
		{name: "age without identity path", cfg: config.TokenConfig{Type: "age"}, wantErr: true},
		{name: "unknown", cfg: config.TokenConfig{Type: "rot13"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSealerFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSealerFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got == nil {
				t.Error("NewSealerFromConfig() returned nil sealer")
			}
		})
	}
}
