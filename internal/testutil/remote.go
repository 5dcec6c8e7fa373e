package testutil

import (
	"hamstercal-go/internal/calendar"
	"hamstercal-go/internal/journal"
)

// NewTestRemote creates an in-memory remote holding calendars with the
// given titles and accepting the user "user" with password "password".
func NewTestRemote(titles ...string) *calendar.MemoryRemote {
	remote := calendar.NewMemoryRemote(titles...)
	remote.AddUser("user", "password")
	return remote
}

// NewTestJournal creates a new in-memory journal for testing.
func NewTestJournal() *journal.MemoryJournal {
	return journal.NewMemoryJournal()
}
