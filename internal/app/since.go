package app

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// sinceLayouts are tried in order before natural-language parsing.
var sinceLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var sinceParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseSince turns a reset --since value into a time. It accepts RFC3339,
// naive dates and datetimes (interpreted in loc), and English expressions
// such as "yesterday" or "last monday 9am" relative to now.
func parseSince(value string, now time.Time, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range sinceLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	r, err := sinceParser.Parse(value, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", value, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("cannot understand time %q", value)
	}
	return r.Time, nil
}
