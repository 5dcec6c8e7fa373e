package hamstercal_test

import (
	"regexp"
	"testing"
	"time"

	"hamstercal-go/internal/hamstercal"
)

func TestEventKey(t *testing.T) {
	base := &hamstercal.FactRecord{
		FactID:    1,
		StartTime: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Tag:       "work",
		Activity:  "standup",
	}
	key := hamstercal.EventKey(base)

	if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(key) {
		t.Errorf("EventKey() = %q, want 32 lowercase hex characters", key)
	}

	t.Run("stable across fact ids and descriptions", func(t *testing.T) {
		other := *base
		other.FactID = 99
		other.Description = "changed"
		if got := hamstercal.EventKey(&other); got != key {
			t.Errorf("EventKey() = %q, want %q", got, key)
		}
	})

	changes := map[string]func(r *hamstercal.FactRecord){
		"activity": func(r *hamstercal.FactRecord) { r.Activity = "retro" },
		"tag":      func(r *hamstercal.FactRecord) { r.Tag = "home" },
		"start":    func(r *hamstercal.FactRecord) { r.StartTime = r.StartTime.Add(time.Minute) },
		"end":      func(r *hamstercal.FactRecord) { r.EndTime = r.EndTime.Add(time.Minute) },
	}
	for name, change := range changes {
		t.Run("differs by "+name, func(t *testing.T) {
			other := *base
			change(&other)
			if got := hamstercal.EventKey(&other); got == key {
				t.Errorf("EventKey() unchanged after changing %s", name)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	madrid := time.FixedZone("CET", 3600)
	rec := &hamstercal.FactRecord{
		FactID:      7,
		StartTime:   time.Date(2024, 1, 1, 9, 0, 0, 0, madrid),
		EndTime:     time.Date(2024, 1, 1, 10, 15, 30, 0, madrid),
		Description: "daily sync",
		Tag:         "work",
		Activity:    "standup",
	}

	ev := hamstercal.NewEvent(rec)
	if ev.Title != "standup" {
		t.Errorf("Title = %q, want %q", ev.Title, "standup")
	}
	if ev.Description != "daily sync" {
		t.Errorf("Description = %q, want %q", ev.Description, "daily sync")
	}
	if ev.Start != "2024-01-01T09:00:00" {
		t.Errorf("Start = %q, want wall-clock time without offset", ev.Start)
	}
	if ev.End != "2024-01-01T10:15:30" {
		t.Errorf("End = %q, want %q", ev.End, "2024-01-01T10:15:30")
	}
	if ev.Key != hamstercal.EventKey(rec) {
		t.Errorf("Key = %q, want EventKey()", ev.Key)
	}
}
