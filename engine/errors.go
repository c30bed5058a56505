/*
errors.go - Centralized error types for the eligibility engine

PURPOSE:
  All error types in one place for consistency and discoverability.

ERROR CATEGORIES:
  1. Input errors - Caller misuse (invalid session, unknown date, bad range).
     Fail fast, synchronously, before any state mutation.
  2. Policy-violation errors - Expected, user-facing submission rejections.
     Collected as a list by the validator, never raised one at a time.
  3. Transient errors - The backend fact or policy fetch failed. Retryable,
     carries no judgment about the user's selection.

USAGE:
  Callers branch on category, not on individual codes:

    if engine.IsPolicyViolation(err) {
        // render the full rejection list
    } else if engine.IsRetryable(err) {
        // offer a retry
    }

SEE ALSO:
  - validate.go: Builds RejectionError
  - report.go: Returns input errors on invalid mutations
*/
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidSession is returned when a session is assigned to a date
	// whose verdict does not allow it.
	ErrInvalidSession = errors.New("session not eligible for date")

	// ErrDateNotSelectable is returned when toggling a date that offers no
	// eligible session. Such a date can never be force-included.
	ErrDateNotSelectable = errors.New("date has no eligible session")

	// ErrDateOutsideReport is returned when a mutation names a date that is
	// not part of the current report's range.
	ErrDateOutsideReport = errors.New("date not in report range")

	// ErrInvalidRange is returned when a range ends before it starts.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrFactsUnavailable is returned when the backend fact or policy fetch
	// failed or timed out. Retryable.
	ErrFactsUnavailable = errors.New("date facts unavailable")

	// ErrSubmissionRejected is the sentinel behind RejectionError.
	ErrSubmissionRejected = errors.New("submission rejected")

	// ErrPolicyNotFound is returned when a referenced leave type doesn't exist.
	ErrPolicyNotFound = errors.New("leave type policy not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidSessionError reports an attempt to assign an ineligible session.
type InvalidSessionError struct {
	Date     Date
	Session  Session
	Eligible []Session
}

func (e *InvalidSessionError) Error() string {
	return fmt.Sprintf("session %s not eligible for %s (eligible: %v)",
		e.Session, e.Date, e.Eligible)
}

func (e *InvalidSessionError) Unwrap() error {
	return ErrInvalidSession
}

// NotSelectableError reports a toggle on a date with no eligible session.
type NotSelectableError struct {
	Date   Date
	Reason ExclusionReason
}

func (e *NotSelectableError) Error() string {
	return fmt.Sprintf("date %s cannot be selected (%s)", e.Date, e.Reason)
}

func (e *NotSelectableError) Unwrap() error {
	return ErrDateNotSelectable
}

// FactsUnavailableError wraps a failed backend fetch with its cause.
type FactsUnavailableError struct {
	Op    string // "facts" or "policy"
	Cause error
}

func (e *FactsUnavailableError) Error() string {
	return fmt.Sprintf("%s fetch failed: %v", e.Op, e.Cause)
}

func (e *FactsUnavailableError) Unwrap() error {
	return ErrFactsUnavailable
}

// =============================================================================
// REJECTION - Collected policy violations from the validator
// =============================================================================

type RejectionCode string

const (
	RejectEmptySelection     RejectionCode = "empty_selection"
	RejectInvalidRange       RejectionCode = "invalid_range"
	RejectNoticePolicy       RejectionCode = "notice_policy_violation"
	RejectBackdateNotAllowed RejectionCode = "backdate_not_allowed"
	RejectExceedsMaxDays     RejectionCode = "exceeds_max_days"
	RejectDuplicateLeave     RejectionCode = "duplicate_leave_detected"
	RejectAttachmentRequired RejectionCode = "attachment_required"
)

// Rejection is one policy violation found at submit time.
// Only the fields relevant to the code are populated.
type Rejection struct {
	Code         RejectionCode
	Date         Date   // duplicate_leave_detected
	LeaveCode    string // duplicate_leave_detected
	RequiredDays int    // notice_policy_violation
	Message      string
}

// RejectionError carries every violation found in one validation pass so the
// caller can surface them together in a single summary.
type RejectionError struct {
	Rejections []Rejection
}

func (e *RejectionError) Error() string {
	codes := make([]string, len(e.Rejections))
	for i, r := range e.Rejections {
		codes[i] = string(r.Code)
	}
	return "submission rejected: " + strings.Join(codes, ", ")
}

func (e *RejectionError) Unwrap() error {
	return ErrSubmissionRejected
}

// Has reports whether the rejection list contains the given code.
func (e *RejectionError) Has(code RejectionCode) bool {
	for _, r := range e.Rejections {
		if r.Code == code {
			return true
		}
	}
	return false
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsPolicyViolation returns true for expected, user-facing rejections.
func IsPolicyViolation(err error) bool {
	return errors.Is(err, ErrSubmissionRejected)
}

// IsRetryable returns true if the operation might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrFactsUnavailable)
}

// IsInputError returns true if the error is due to caller misuse.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidSession) ||
		errors.Is(err, ErrDateNotSelectable) ||
		errors.Is(err, ErrDateOutsideReport) ||
		errors.Is(err, ErrInvalidRange)
}
