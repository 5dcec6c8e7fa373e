package app

import (
	"testing"
	"time"
)

func TestNewOperation(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	op := NewOperation("sync", now)

	if op.Name != "sync" {
		t.Errorf("Name = %q, want %q", op.Name, "sync")
	}
	if op.ID != "20240115T093000Z" {
		t.Errorf("ID = %q, want %q", op.ID, "20240115T093000Z")
	}
	if op.Status != "success" {
		t.Errorf("Status = %q, want %q", op.Status, "success")
	}
	if !op.StartedAt.Equal(now) {
		t.Errorf("StartedAt = %v, want %v", op.StartedAt, now)
	}
}

func TestOperation_Fail(t *testing.T) {
	op := NewOperation("sync", time.Now())
	if !op.Succeeded() {
		t.Fatal("Succeeded() = false before Fail()")
	}
	op.Fail()
	if op.Succeeded() {
		t.Error("Succeeded() = true after Fail()")
	}
	if op.Status != "error" {
		t.Errorf("Status = %q, want %q", op.Status, "error")
	}
}
