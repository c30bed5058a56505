/*
report.go - Selection state layered over eligibility verdicts

PURPOSE:
  Holds the user's current per-date choices (include/exclude, session) on top
  of the evaluator's defaults, and derives the effective day count from them.

LIFECYCLE:
  created   on (policy, range) change, from fresh verdicts
  mutated   in place as the user toggles inclusion or picks sessions
  discarded on any policy or range change - always rebuilt, never patched,
            so a half-day choice valid under one leave type can never leak
            into another

CONSISTENCY INVARIANT:
  included == true  =>  session is eligible for that date

  Every mutation either preserves the invariant or is rejected before any
  state changes. A report observed violating it is a defect, not a
  recoverable runtime state, so the internal check panics.

SEE ALSO:
  - evaluate.go: Produces the verdicts this report is built from
  - validate.go: Consumes the report at submit time
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SELECTION ENTRY - User-controlled state for one date
// =============================================================================

// SelectionEntry is the user's choice for one date. Defaults derive from the
// verdict: included unless auto-excluded, FullDay when eligible, otherwise
// the sole eligible session.
type SelectionEntry struct {
	Included bool
	Session  Session
}

func defaultEntry(v DateVerdict) SelectionEntry {
	return SelectionEntry{
		Included: !v.DefaultExcluded && v.Selectable(),
		Session:  v.DefaultSession(),
	}
}

// =============================================================================
// ELIGIBILITY REPORT - Ordered (date, verdict, selection) rows
// =============================================================================

// ReportRow is one date's verdict paired with its current selection.
type ReportRow struct {
	Date    Date
	Verdict DateVerdict
	Entry   SelectionEntry
}

// EligibilityReport is the aggregate selection state for one (policy, range)
// pair. Each pair owns its own instance; no state is shared across leave
// types or ranges.
type EligibilityReport struct {
	Policy   PolicyDescriptor
	DateFrom Date
	DateTo   Date

	rows  []ReportRow
	index map[Date]int
}

// NewReport builds a report from verdicts with every entry at its default.
func NewReport(policy PolicyDescriptor, from, to Date, verdicts []DateVerdict) *EligibilityReport {
	r := &EligibilityReport{
		Policy:   policy,
		DateFrom: from,
		DateTo:   to,
	}
	r.RebuildFromVerdicts(verdicts)
	return r
}

// Rows returns the ordered rows. The slice is a copy; mutate through
// ToggleInclusion and SetSession only.
func (r *EligibilityReport) Rows() []ReportRow {
	rows := make([]ReportRow, len(r.rows))
	copy(rows, r.rows)
	return rows
}

// Row returns the row for a date, if the date is in range.
func (r *EligibilityReport) Row(date Date) (ReportRow, bool) {
	i, ok := r.index[date]
	if !ok {
		return ReportRow{}, false
	}
	return r.rows[i], true
}

// =============================================================================
// MUTATIONS
// =============================================================================

// ToggleInclusion flips the included flag for a date. A date with no
// eligible session can never be force-included.
func (r *EligibilityReport) ToggleInclusion(date Date) error {
	i, ok := r.index[date]
	if !ok {
		return fmt.Errorf("toggle %s: %w", date, ErrDateOutsideReport)
	}
	row := &r.rows[i]
	if !row.Verdict.Selectable() {
		return &NotSelectableError{Date: date, Reason: row.Verdict.Reason}
	}
	row.Entry.Included = !row.Entry.Included
	r.assertConsistent()
	return nil
}

// SetSession assigns a session to a date. The session must be eligible for
// that date under the current verdicts; assigning a session does not
// implicitly include an excluded date.
func (r *EligibilityReport) SetSession(date Date, session Session) error {
	i, ok := r.index[date]
	if !ok {
		return fmt.Errorf("set session %s: %w", date, ErrDateOutsideReport)
	}
	row := &r.rows[i]
	if !ContainsSession(row.Verdict.EligibleSessions, session) {
		return &InvalidSessionError{
			Date:     date,
			Session:  session,
			Eligible: row.Verdict.EligibleSessions,
		}
	}
	row.Entry.Session = session
	r.assertConsistent()
	return nil
}

// RebuildFromVerdicts resets every entry to the verdict defaults, discarding
// all manual overrides. Called whenever policy or range changes: old choices
// are invalid by design once eligibility may have narrowed.
func (r *EligibilityReport) RebuildFromVerdicts(verdicts []DateVerdict) {
	r.rows = make([]ReportRow, len(verdicts))
	r.index = make(map[Date]int, len(verdicts))
	for i, v := range verdicts {
		r.rows[i] = ReportRow{Date: v.Date, Verdict: v, Entry: defaultEntry(v)}
		r.index[v.Date] = i
	}
	r.assertConsistent()
}

// assertConsistent enforces included => eligible session. Violations are
// engine defects: fail loudly instead of producing a bad day count.
func (r *EligibilityReport) assertConsistent() {
	for i := range r.rows {
		row := &r.rows[i]
		if row.Entry.Included && !ContainsSession(row.Verdict.EligibleSessions, row.Entry.Session) {
			panic(fmt.Sprintf("engine: included date %s carries ineligible session %s",
				row.Date, row.Entry.Session))
		}
	}
}

// =============================================================================
// DAY-COUNT AGGREGATION
// =============================================================================

// TotalDays sums the session weight of every included date. O(n) over the
// range, which is bounded by the policy cap or a practical UI limit.
func (r *EligibilityReport) TotalDays() decimal.Decimal {
	total := decimal.Zero
	for _, row := range r.rows {
		if row.Entry.Included {
			total = total.Add(row.Entry.Session.Weight())
		}
	}
	return total
}

// IncludedSessions returns (date, session) for every included date in
// ascending date order.
func (r *EligibilityReport) IncludedSessions() []DateSession {
	var included []DateSession
	for _, row := range r.rows {
		if row.Entry.Included {
			included = append(included, DateSession{Date: row.Date, Session: row.Entry.Session})
		}
	}
	return included
}
