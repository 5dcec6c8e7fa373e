package calendar

import "fmt"

// RemoteError carries the class and message of a remote failure.
type RemoteError struct {
	Class   string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ErrorClass names the kind of failure for reports.
func (e *RemoteError) ErrorClass() string { return e.Class }
