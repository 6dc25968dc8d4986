package utils

import (
	"testing"
	"time"
)

func TestNewToken(t *testing.T) {
	a, err := NewToken(InvitationTokenBytes)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if len(a) != 2*InvitationTokenBytes {
		t.Errorf("len = %d, want %d", len(a), 2*InvitationTokenBytes)
	}
	b, _ := NewToken(0)
	if a == b {
		t.Error("two tokens must differ")
	}
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	a := time.Date(2024, time.March, 30, 0, 0, 0, 0, loc)
	b := time.Date(2024, time.April, 1, 0, 0, 0, 0, loc)
	if got := DaysBetween(a, b); got != 2 {
		t.Errorf("DaysBetween = %d, want 2", got)
	}
	if got := DaysBetween(b, a); got != -2 {
		t.Errorf("DaysBetween reversed = %d, want -2", got)
	}
}

func TestDayComparisons(t *testing.T) {
	morning := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, time.May, 1, 22, 0, 0, 0, time.UTC)
	next := time.Date(2024, time.May, 2, 1, 0, 0, 0, time.UTC)
	if !SameDay(morning, evening) {
		t.Error("same calendar day expected")
	}
	if !DayBefore(evening, next) || DayAfter(evening, next) || !DayAfter(next, morning) {
		t.Error("day ordering is wrong")
	}
	if HasTimeOfDay(StartOfDay(evening)) {
		t.Error("StartOfDay must be midnight")
	}
	if got := EndOfDay(morning); got.Day() != 1 || got.Hour() != 23 {
		t.Errorf("EndOfDay = %v", got)
	}
}
