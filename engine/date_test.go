package engine_test

import (
	"testing"
	"time"

	"github.com/warp/leave-engine/engine"
)

func TestDate_Normalization_ComparableAsMapKey(t *testing.T) {
	// GIVEN: The same calendar date seen at different clock times and zones
	// WHEN: Converted to Date
	// THEN: All collapse to the same value, usable as a map key

	loc := time.FixedZone("UTC+8", 8*3600)
	a := engine.DateOf(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC))
	b := engine.DateOf(time.Date(2024, time.March, 4, 23, 59, 59, 0, time.UTC))
	c := engine.DateOf(time.Date(2024, time.March, 4, 10, 30, 0, 0, loc))

	if a != b || a != c {
		t.Errorf("expected one value, got %s / %s / %s", a, b, c)
	}
	if a != engine.NewDate(2024, time.March, 4) {
		t.Errorf("DateOf and NewDate disagree: %s", a)
	}
}

func TestDate_ParseAndString_RoundTrip(t *testing.T) {
	d, err := engine.ParseDate("2024-03-04")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2024-03-04" {
		t.Errorf("round trip broke: %s", d)
	}

	if _, err := engine.ParseDate("04/03/2024"); err == nil {
		t.Error("expected parse failure for a non-ISO date")
	}
}

func TestDaysBetween_Signed(t *testing.T) {
	from := engine.NewDate(2024, time.January, 1)
	to := engine.NewDate(2024, time.January, 4)

	if got := engine.DaysBetween(from, to); got != 3 {
		t.Errorf("forward: expected 3, got %d", got)
	}
	if got := engine.DaysBetween(to, from); got != -3 {
		t.Errorf("backward: expected -3, got %d", got)
	}
	if got := engine.DaysBetween(from, from); got != 0 {
		t.Errorf("same day: expected 0, got %d", got)
	}
}

func TestDatesInRange_InclusiveAscending(t *testing.T) {
	from := engine.NewDate(2024, time.February, 27)
	to := engine.NewDate(2024, time.March, 2) // crosses a leap-year Feb 29

	dates := engine.DatesInRange(from, to)
	if len(dates) != 5 {
		t.Fatalf("expected 5 dates, got %d", len(dates))
	}
	if dates[0] != from || dates[len(dates)-1] != to {
		t.Errorf("range endpoints wrong: %s .. %s", dates[0], dates[len(dates)-1])
	}
	if dates[2].String() != "2024-02-29" {
		t.Errorf("expected the leap day in the middle, got %s", dates[2])
	}

	if got := engine.DatesInRange(to, from); got != nil {
		t.Errorf("inverted range should be empty, got %v", got)
	}
}
