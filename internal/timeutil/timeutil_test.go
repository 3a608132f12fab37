package timeutil

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	input := time.Date(2026, 3, 1, 14, 37, 9, 123, time.Local)
	got := StartOfDay(input)

	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("unexpected date: %v", got)
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
}

func TestEndOfDay(t *testing.T) {
	t.Parallel()

	input := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	got := EndOfDay(input)

	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("expected same day, got %v", got)
	}
	if got.Hour() != 23 || got.Minute() != 59 || got.Second() != 59 {
		t.Fatalf("expected last moment of day, got %v", got)
	}
}

func TestParseDay(t *testing.T) {
	t.Parallel()

	got, err := ParseDay("2026-03-05")
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	if got.Day() != 5 || got.Month() != time.March || got.Location() != time.Local {
		t.Fatalf("unexpected day: %v", got)
	}
	if _, err := ParseDay("05.03.2026"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}
