package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/leave-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// weekReport builds a report over Mon 2024-03-04 .. Fri 2024-03-08 with all
// five days working, under an annual-leave style policy.
func weekReport(t *testing.T) *engine.EligibilityReport {
	t.Helper()
	from := date(2024, time.March, 4)
	to := date(2024, time.March, 8)

	var facts []engine.DateFact
	for _, d := range engine.DatesInRange(from, to) {
		facts = append(facts, workingDay(d))
	}

	policy := dayByDayPolicy(true)
	return engine.NewReport(policy, from, to, engine.Evaluate(policy, facts))
}

func totalDays(t *testing.T, r *engine.EligibilityReport) string {
	t.Helper()
	return r.TotalDays().String()
}

// =============================================================================
// DEFAULT COMPOSITION
// =============================================================================

func TestReport_Defaults_FullWeekIncluded(t *testing.T) {
	// GIVEN: Five working days under a day-by-day policy
	// WHEN: The report is built
	// THEN: Every day defaults to included FullDay, total 5

	report := weekReport(t)

	for _, row := range report.Rows() {
		if !row.Entry.Included {
			t.Errorf("%s: expected included by default", row.Date)
		}
		if row.Entry.Session != engine.SessionFullDay {
			t.Errorf("%s: expected FullDay default, got %s", row.Date, row.Entry.Session)
		}
	}
	if got := totalDays(t, report); got != "5" {
		t.Errorf("expected 5 days, got %s", got)
	}
}

func TestReport_ExcludedDate_DefaultsToNotIncluded(t *testing.T) {
	// GIVEN: A range containing a public holiday under a day-by-day policy
	// WHEN: The report is built
	// THEN: The holiday is not included and contributes nothing

	from := date(2024, time.March, 4)
	to := date(2024, time.March, 6)
	facts := []engine.DateFact{
		workingDay(from),
		holiday(date(2024, time.March, 5), "Founding Day"),
		workingDay(to),
	}
	policy := dayByDayPolicy(true)
	report := engine.NewReport(policy, from, to, engine.Evaluate(policy, facts))

	row, ok := report.Row(date(2024, time.March, 5))
	if !ok {
		t.Fatal("holiday row missing")
	}
	if row.Entry.Included {
		t.Error("excluded date must not default to included")
	}
	if got := totalDays(t, report); got != "2" {
		t.Errorf("expected 2 days, got %s", got)
	}
}

// =============================================================================
// TOGGLING
// =============================================================================

func TestReport_Toggle_RoundTripRestoresTotal(t *testing.T) {
	// GIVEN: A full default week totalling 5
	// WHEN: One day is toggled out and back in
	// THEN: The total returns to exactly its prior value

	report := weekReport(t)
	target := date(2024, time.March, 6)

	if err := report.ToggleInclusion(target); err != nil {
		t.Fatalf("toggle out: %v", err)
	}
	if got := totalDays(t, report); got != "4" {
		t.Errorf("after toggle out: expected 4, got %s", got)
	}

	if err := report.ToggleInclusion(target); err != nil {
		t.Fatalf("toggle in: %v", err)
	}
	if got := totalDays(t, report); got != "5" {
		t.Errorf("after toggle back: expected 5, got %s", got)
	}
}

func TestReport_Toggle_UnselectableDateRejected(t *testing.T) {
	// GIVEN: A holiday with no eligible session
	// WHEN: The caller tries to force it in
	// THEN: NotSelectableError, and the report is unchanged

	from := date(2024, time.March, 4)
	to := date(2024, time.March, 5)
	facts := []engine.DateFact{
		workingDay(from),
		holiday(to, "Founding Day"),
	}
	policy := dayByDayPolicy(true)
	report := engine.NewReport(policy, from, to, engine.Evaluate(policy, facts))

	err := report.ToggleInclusion(to)
	if err == nil {
		t.Fatal("expected error toggling an unselectable date")
	}
	var nse *engine.NotSelectableError
	if !errors.As(err, &nse) {
		t.Fatalf("expected NotSelectableError, got %T: %v", err, err)
	}
	if !errors.Is(err, engine.ErrDateNotSelectable) {
		t.Error("NotSelectableError must unwrap to ErrDateNotSelectable")
	}
	if got := totalDays(t, report); got != "1" {
		t.Errorf("failed toggle must not change state: expected 1, got %s", got)
	}
}

func TestReport_Toggle_OutsideRangeRejected(t *testing.T) {
	// GIVEN: A Mon..Fri report
	// WHEN: A date outside the range is toggled
	// THEN: ErrDateOutsideReport

	report := weekReport(t)
	err := report.ToggleInclusion(date(2024, time.April, 1))
	if !errors.Is(err, engine.ErrDateOutsideReport) {
		t.Fatalf("expected ErrDateOutsideReport, got %v", err)
	}
}

// =============================================================================
// SESSION SELECTION
// =============================================================================

func TestReport_SetSession_HalfDayChangesTotal(t *testing.T) {
	// GIVEN: A 2-day default selection
	// WHEN: One day switches to a half session
	// THEN: The total drops by exactly 0.5

	from := date(2024, time.March, 4)
	to := date(2024, time.March, 5)
	facts := []engine.DateFact{workingDay(from), workingDay(to)}
	policy := dayByDayPolicy(true)
	report := engine.NewReport(policy, from, to, engine.Evaluate(policy, facts))

	if err := report.SetSession(to, engine.SessionFirstHalf); err != nil {
		t.Fatalf("set session: %v", err)
	}
	if got := totalDays(t, report); got != "1.5" {
		t.Errorf("expected 1.5, got %s", got)
	}
}

func TestReport_SetSession_IneligibleRejected(t *testing.T) {
	// GIVEN: A full-day-only policy
	// WHEN: A half session is assigned
	// THEN: InvalidSessionError naming the eligible set, state unchanged

	from := date(2024, time.March, 4)
	facts := []engine.DateFact{workingDay(from)}
	policy := dayByDayPolicy(false)
	report := engine.NewReport(policy, from, from, engine.Evaluate(policy, facts))

	err := report.SetSession(from, engine.SessionFirstHalf)
	var ise *engine.InvalidSessionError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InvalidSessionError, got %T: %v", err, err)
	}
	if !errors.Is(err, engine.ErrInvalidSession) {
		t.Error("InvalidSessionError must unwrap to ErrInvalidSession")
	}

	row, _ := report.Row(from)
	if row.Entry.Session != engine.SessionFullDay {
		t.Errorf("failed assignment must not change the session, got %s", row.Entry.Session)
	}
}

// =============================================================================
// REBUILD SEMANTICS
// =============================================================================

func TestReport_Rebuild_DiscardsOverrides(t *testing.T) {
	// GIVEN: A report with a toggled-out day and a half session
	// WHEN: Rebuilt from fresh verdicts (policy or range changed)
	// THEN: Every entry is back at its default; no override survives

	report := weekReport(t)
	if err := report.ToggleInclusion(date(2024, time.March, 5)); err != nil {
		t.Fatal(err)
	}
	if err := report.SetSession(date(2024, time.March, 6), engine.SessionSecondHalf); err != nil {
		t.Fatal(err)
	}

	var facts []engine.DateFact
	for _, d := range engine.DatesInRange(report.DateFrom, report.DateTo) {
		facts = append(facts, workingDay(d))
	}
	report.RebuildFromVerdicts(engine.Evaluate(report.Policy, facts))

	for _, row := range report.Rows() {
		if !row.Entry.Included || row.Entry.Session != engine.SessionFullDay {
			t.Errorf("%s: override survived rebuild: %+v", row.Date, row.Entry)
		}
	}
	if got := totalDays(t, report); got != "5" {
		t.Errorf("expected 5 after rebuild, got %s", got)
	}
}

// =============================================================================
// AGGREGATION
// =============================================================================

func TestReport_IncludedSessions_AscendingAndFiltered(t *testing.T) {
	// GIVEN: A week with one day toggled out and one on a half
	// WHEN: IncludedSessions is read
	// THEN: Only included dates appear, in ascending order

	report := weekReport(t)
	if err := report.ToggleInclusion(date(2024, time.March, 6)); err != nil {
		t.Fatal(err)
	}
	if err := report.SetSession(date(2024, time.March, 8), engine.SessionFirstHalf); err != nil {
		t.Fatal(err)
	}

	included := report.IncludedSessions()
	if len(included) != 4 {
		t.Fatalf("expected 4 included dates, got %d", len(included))
	}
	for i := 1; i < len(included); i++ {
		if !included[i-1].Date.Before(included[i].Date) {
			t.Errorf("dates out of order: %s before %s", included[i-1].Date, included[i].Date)
		}
	}
	last := included[len(included)-1]
	if last.Session != engine.SessionFirstHalf {
		t.Errorf("expected the half override on %s, got %s", last.Date, last.Session)
	}
}

func TestReport_TotalDays_MatchesIncludedWeights(t *testing.T) {
	// GIVEN: Any report state
	// WHEN: TotalDays is compared against the sum over IncludedSessions
	// THEN: They agree exactly

	report := weekReport(t)
	if err := report.SetSession(date(2024, time.March, 4), engine.SessionSecondHalf); err != nil {
		t.Fatal(err)
	}
	if err := report.ToggleInclusion(date(2024, time.March, 7)); err != nil {
		t.Fatal(err)
	}

	sum := engine.SessionNone.Weight() // zero
	for _, ds := range report.IncludedSessions() {
		sum = sum.Add(ds.Session.Weight())
	}
	if !report.TotalDays().Equal(sum) {
		t.Errorf("TotalDays %s != sum of included weights %s", report.TotalDays(), sum)
	}
}
