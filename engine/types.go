/*
Package engine implements the leave eligibility and date composition core.

PURPOSE:
  Given a leave type's policy and a candidate date range, the engine decides
  per calendar date whether that date is selectable, which session granularity
  applies (full day / half day / none), how many effective leave-days the
  current selection totals, and whether the aggregate selection is
  submittable. Policy is supplied, never computed; backend facts arrive as
  already-parsed records; nothing is persisted here.

KEY CONCEPTS IN THIS FILE (types.go):
  - Session: The portion of a day consumed (full day, first half, second half)
  - TypeOfDay: Backend-observed classification of a calendar date
  - DateFact: Read-only snapshot of a date's status and prior leave usage
  - PolicyDescriptor: The leave-type policy supplied by the caller
  - DateVerdict: The derived per-date eligibility decision

DESIGN PRINCIPLES:
  1. Purity: Evaluation is a total, deterministic function of its inputs
  2. Precision: Day weights use decimal.Decimal so 0.5-day math is exact
  3. Rebuild, don't patch: A policy or range change discards derived state

SEE ALSO:
  - evaluate.go: Per-date eligibility rules
  - report.go: Selection state and day-count aggregation
  - validate.go: Pre-submit checks and the submission payload
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SESSION - Portion of a day consumed by leave
// =============================================================================

type Session string

const (
	SessionNone       Session = "none"
	SessionFullDay    Session = "full_day"
	SessionFirstHalf  Session = "first_half"
	SessionSecondHalf Session = "second_half"
)

var (
	weightFull = decimal.NewFromInt(1)
	weightHalf = decimal.NewFromFloat(0.5)
)

// Weight returns the effective leave-day cost of the session.
// FullDay counts 1.0, either half counts 0.5, None counts 0.
func (s Session) Weight() decimal.Decimal {
	switch s {
	case SessionFullDay:
		return weightFull
	case SessionFirstHalf, SessionSecondHalf:
		return weightHalf
	default:
		return decimal.Zero
	}
}

// IsHalf reports whether the session consumes half a day.
func (s Session) IsHalf() bool {
	return s == SessionFirstHalf || s == SessionSecondHalf
}

// ContainsSession reports whether the session appears in the set.
func ContainsSession(set []Session, s Session) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

// =============================================================================
// TYPE OF DAY - Backend classification of a calendar date
// =============================================================================

type TypeOfDay string

const (
	DayWorking       TypeOfDay = "working"
	DayRestDay       TypeOfDay = "rest_day"
	DayOffDay        TypeOfDay = "off_day"
	DayPublicHoliday TypeOfDay = "public_holiday"
	DayUnspecified   TypeOfDay = "unspecified"
)

// IsSpecial reports whether the day is a rest day, off day or public holiday.
// Special days are auto-excluded under day-by-day policies but kept under
// consecutive-day policies (see evaluate.go).
func (t TypeOfDay) IsSpecial() bool {
	return t == DayRestDay || t == DayOffDay || t == DayPublicHoliday
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type LeaveTypeID string

// =============================================================================
// DATE FACT - Externally supplied snapshot of one calendar date
// =============================================================================

// ExistingLeave describes an application that already consumes a date.
// Only the first overlapping application is relevant to eligibility.
type ExistingLeave struct {
	LeaveCode      string
	Session        Session
	ApprovalStatus string
}

// DateFact is the backend-observed truth about one calendar date.
// Facts are read-only for the duration of an evaluation pass; a newer
// fetch produces a whole new slice, never an in-place mutation.
type DateFact struct {
	Date        Date
	TypeOfDay   TypeOfDay
	HolidayName string // present only for public holidays

	// Sessions the backend offers for this date. A set containing only
	// SessionNone means the date cannot be used at all.
	AvailableSessions []Session

	// Non-nil when another application already consumes this date.
	ExistingLeave *ExistingLeave
}

// Usable reports whether the backend offers any real session for the date.
func (f DateFact) Usable() bool {
	for _, s := range f.AvailableSessions {
		if s != SessionNone {
			return true
		}
	}
	return false
}

// =============================================================================
// POLICY DESCRIPTOR - The leave-type policy, supplied per evaluation
// =============================================================================

// PolicyDescriptor carries the policy dimensions of one leave type.
// It is immutable for the duration of an evaluation; when the user switches
// leave type, a fresh descriptor arrives and all derived state is rebuilt.
type PolicyDescriptor struct {
	LeaveTypeID LeaveTypeID

	// An unbroken date run once started (e.g., maternity leave).
	RequiresConsecutiveDays bool

	AllowsHalfDay      bool
	RequiresAttachment bool
	AllowsBackdate     bool

	// Upper bound on TotalDays per application. Nil means uncapped.
	MaxDaysPerApplication *decimal.Decimal

	// Minimum days between submission and the leave start date.
	NoticeLeadDays int

	// Free-text policy note for display.
	Note string
}

// MaxDays builds the optional per-application cap.
func MaxDays(days float64) *decimal.Decimal {
	d := decimal.NewFromFloat(days)
	return &d
}

// =============================================================================
// DATE VERDICT - Derived eligibility decision for one date
// =============================================================================

type ExclusionReason string

const (
	ReasonNone             ExclusionReason = "none"
	ReasonHasExistingLeave ExclusionReason = "has_existing_leave"
	ReasonSpecialDay       ExclusionReason = "special_day"
	ReasonNoSessionOffered ExclusionReason = "no_session_offered"
)

// DateVerdict is the evaluator's decision for a single date. Verdicts are
// recomputed whenever the policy or fact set changes and are never mutated
// by user interaction; user choices live in SelectionEntry.
type DateVerdict struct {
	Date             Date
	DefaultExcluded  bool
	Reason           ExclusionReason
	EligibleSessions []Session
}

// Selectable reports whether the user can include this date at all.
func (v DateVerdict) Selectable() bool {
	return len(v.EligibleSessions) > 0
}

// DefaultSession returns the session a fresh selection starts with:
// FullDay when eligible, otherwise the first eligible session,
// SessionNone when the date offers nothing.
func (v DateVerdict) DefaultSession() Session {
	if ContainsSession(v.EligibleSessions, SessionFullDay) {
		return SessionFullDay
	}
	if len(v.EligibleSessions) > 0 {
		return v.EligibleSessions[0]
	}
	return SessionNone
}

// =============================================================================
// SUBMISSION PAYLOAD - Output of a successful validation
// =============================================================================

// DateSession pairs one included date with its chosen session.
type DateSession struct {
	Date    Date
	Session Session
}

// SubmissionPayload is the submission-ready shape of a validated selection.
// It is produced only by Validator.Validate; building one directly from
// selection state bypasses the pre-submit checks and is a caller defect.
type SubmissionPayload struct {
	LeaveTypeID  LeaveTypeID
	DateFrom     Date
	DateTo       Date
	TotalDays    decimal.Decimal
	Reason       string
	DateSessions []DateSession // ascending date order, included dates only
	Attachments  []string      // opaque references
}
