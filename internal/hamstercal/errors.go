package hamstercal

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialsRequired is returned when no token is stored and no
	// credentials were supplied.
	ErrCredentialsRequired = errors.New("no stored token: user and password required")

	// ErrUnauthorized marks remote rejections of a token or session.
	ErrUnauthorized = errors.New("remote rejected credentials")

	// ErrEventExists marks an insert whose event key the remote already holds.
	ErrEventExists = errors.New("event already exists")
)

// classifier is implemented by remote errors that carry a class name.
type classifier interface {
	ErrorClass() string
}

// errorClass names the kind of a remote error for reporting.
func errorClass(err error) string {
	var c classifier
	if errors.As(err, &c) {
		return c.ErrorClass()
	}
	return fmt.Sprintf("%T", err)
}

// AuthenticationError reports a failed login or token handshake.
// It is fatal for the run and never retried automatically.
type AuthenticationError struct {
	Class   string
	Message string
	Err     error
}

func newAuthenticationError(err error) *AuthenticationError {
	return &AuthenticationError{Class: errorClass(err), Message: err.Error(), Err: err}
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (%s): %s", e.Class, e.Message)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// SelectionError reports that the local store could not be read.
type SelectionError struct {
	Err error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("selecting facts: %v", e.Err)
}

func (e *SelectionError) Unwrap() error { return e.Err }

// UploadError reports a single failed insert. It does not stop the batch.
type UploadError struct {
	Record   *FactRecord
	Calendar string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("uploading fact %d (tag %q, activity %q) to calendar %q: %v",
		e.Record.FactID, e.Record.Tag, e.Record.Activity, e.Calendar, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// PartialFailureError is returned by SyncReport.Err when uploads failed.
type PartialFailureError struct {
	Failed int
	Total  int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d of %d uploads failed; watermark not advanced", e.Failed, e.Total)
}
