package main

import (
	"errors"
	"fmt"
	"testing"

	"hamstercal-go/internal/hamstercal"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "authentication", err: &hamstercal.AuthenticationError{Class: "BadAuthentication", Err: hamstercal.ErrUnauthorized}, want: 2},
		{name: "wrapped authentication", err: fmt.Errorf("sync: %w", &hamstercal.AuthenticationError{Err: hamstercal.ErrCredentialsRequired}), want: 2},
		{name: "selection", err: &hamstercal.SelectionError{Err: errors.New("locked")}, want: 3},
		{name: "partial failure", err: &hamstercal.PartialFailureError{Failed: 1, Total: 2}, want: 1},
		{name: "other", err: errors.New("boom"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCredentialsFromArgs(t *testing.T) {
	creds, err := credentialsFromArgs(nil)
	if err != nil || creds != nil {
		t.Errorf("credentialsFromArgs(nil) = %v, %v, want nil, nil", creds, err)
	}

	creds, err = credentialsFromArgs([]string{"alice", "secret"})
	if err != nil {
		t.Fatalf("credentialsFromArgs() error = %v", err)
	}
	if creds.User != "alice" || creds.Password != "secret" {
		t.Errorf("credentialsFromArgs() = %+v", creds)
	}
}
