package domain

import (
	"fmt"
	"testing"
	"time"
)

func TestParseClock_RoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m += 7 {
			in := fmt.Sprintf("%02d:%02d", h, m)
			got, err := ParseClock(in)
			if err != nil {
				t.Fatalf("ParseClock(%q): %v", in, err)
			}
			if got != in {
				t.Fatalf("ParseClock(%q) = %q", in, got)
			}
		}
	}
	// Unpadded input normalizes.
	got, err := ParseClock("9:5")
	if err != nil {
		t.Fatalf("ParseClock(9:5): %v", err)
	}
	if got != "09:05" {
		t.Fatalf("want 09:05, got %s", got)
	}
}

func TestParseClock_Rejects(t *testing.T) {
	for _, in := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:34:56", "12.34", "-1:30"} {
		if _, err := ParseClock(in); err == nil {
			t.Fatalf("ParseClock(%q) accepted", in)
		}
	}
}

func TestParsePlanItems(t *testing.T) {
	items := ParsePlanItems("08:00 Item A; Item B; 23:59 Item C")
	want := []PlanItem{
		{Time: "08:00", Text: "Item A"},
		{Text: "Item B"},
		{Time: "23:59", Text: "Item C"},
	}
	if len(items) != len(want) {
		t.Fatalf("want %d items, got %d", len(want), len(items))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("item %d: want %+v, got %+v", i, want[i], items[i])
		}
	}
}

func TestParsePlanItems_BadPrefixKeptAsText(t *testing.T) {
	items := ParsePlanItems("25:00 too late; 8:00 short prefix; ;  ")
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d: %+v", len(items), items)
	}
	for _, it := range items {
		if it.Time != "" {
			t.Fatalf("expected untimed item, got %+v", it)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("12.05.2025")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Day() != 12 || d.Month() != time.May || d.Year() != 2025 {
		t.Fatalf("wrong date: %v", d)
	}
	if _, err := ParseDate("2025-05-12"); err == nil {
		t.Fatal("ISO date accepted")
	}
	if _, err := ParseDate("31.02.2025"); err == nil {
		t.Fatal("impossible date accepted")
	}
}

func TestDayName(t *testing.T) {
	if got := DayName(time.Monday); got != "Monday" {
		t.Fatalf("Monday: got %s", got)
	}
	if got := DayName(time.Sunday); got != "Sunday" {
		t.Fatalf("Sunday: got %s", got)
	}
}

func TestLocalNow_InvalidZoneFallsBack(t *testing.T) {
	now := time.Date(2025, time.May, 5, 12, 0, 0, 0, time.UTC)
	got := LocalNow(now, "Nowhere/Invalid", "Asia/Irkutsk")
	if got.Format("15:04") != "20:00" { // Irkutsk is UTC+8
		t.Fatalf("fallback zone not applied: %v", got)
	}
}

func TestFormatPlanLine(t *testing.T) {
	if got := FormatPlanLine(PlanItem{Time: "09:00", Text: "run"}); got != "09:00 — run" {
		t.Fatalf("timed: %q", got)
	}
	if got := FormatPlanLine(PlanItem{Text: "read"}); got != "read" {
		t.Fatalf("untimed: %q", got)
	}
}
