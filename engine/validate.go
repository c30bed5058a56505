/*
validate.go - Pre-submit checks and submission payload construction

PURPOSE:
  Re-checks the aggregate selection against policy and against the latest
  backend facts, and produces either a submission-ready payload or the full
  list of violations.

ALL CHECKS RUN:
  Checks are evaluated without short-circuiting so the caller can show every
  violation at once instead of drip-feeding them across retries.

CHECKS:
  empty_selection           at least one included date
  invalid_range             dateTo >= dateFrom
  backdate_not_allowed      dateFrom < today needs AllowsBackdate
  notice_policy_violation   daysBetween(today, dateFrom) >= NoticeLeadDays
  exceeds_max_days          totalDays <= MaxDaysPerApplication (when set)
  duplicate_leave_detected  fresh facts show no existing leave on any
                            included date; the whole submission is rejected,
                            the date is never silently dropped
  attachment_required       RequiresAttachment needs at least one reference

TRANSIENT FAILURE:
  A failed fact re-fetch is not a policy violation. It surfaces as a
  FactsUnavailableError (retryable) and says nothing about the selection.

SEE ALSO:
  - errors.go: Rejection and RejectionError
  - facts.go: FactSource used for the duplicate re-check
*/
package engine

import (
	"context"
	"fmt"
)

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator runs the pre-submit checks. Facts supplies the latest per-date
// truth for the duplicate-leave re-check; a concurrent submission elsewhere
// may have consumed a date since the report was built.
type Validator struct {
	Facts FactSource
}

// Validate checks the report against policy and the freshest facts.
// On success it returns the payload; on policy violations it returns a
// *RejectionError carrying every violation; on a failed fact fetch it
// returns a retryable *FactsUnavailableError.
func (v *Validator) Validate(
	ctx context.Context,
	policy PolicyDescriptor,
	report *EligibilityReport,
	today Date,
	reason string,
	attachments []string,
) (*SubmissionPayload, error) {
	included := report.IncludedSessions()

	var rejections []Rejection

	// Non-empty selection
	if len(included) == 0 {
		rejections = append(rejections, Rejection{
			Code:    RejectEmptySelection,
			Message: "no dates selected",
		})
	}

	// Range sanity
	if report.DateTo.Before(report.DateFrom) {
		rejections = append(rejections, Rejection{
			Code:    RejectInvalidRange,
			Message: fmt.Sprintf("range ends %s before it starts %s", report.DateTo, report.DateFrom),
		})
	}

	// Backdating and notice period, both anchored on the range start
	rejections = append(rejections, checkLeadTime(policy, report.DateFrom, today)...)

	// Maximum-days cap
	if policy.MaxDaysPerApplication != nil {
		total := report.TotalDays()
		if total.GreaterThan(*policy.MaxDaysPerApplication) {
			rejections = append(rejections, Rejection{
				Code:    RejectExceedsMaxDays,
				Message: fmt.Sprintf("%s days selected, policy allows %s", total, policy.MaxDaysPerApplication),
			})
		}
	}

	// Duplicate-leave re-check against the latest facts
	duplicates, err := v.checkDuplicates(ctx, report, included)
	if err != nil {
		return nil, err
	}
	rejections = append(rejections, duplicates...)

	// Attachment requirement
	if policy.RequiresAttachment && len(attachments) == 0 {
		rejections = append(rejections, Rejection{
			Code:    RejectAttachmentRequired,
			Message: "this leave type requires a supporting attachment",
		})
	}

	if len(rejections) > 0 {
		return nil, &RejectionError{Rejections: rejections}
	}

	return &SubmissionPayload{
		LeaveTypeID:  policy.LeaveTypeID,
		DateFrom:     report.DateFrom,
		DateTo:       report.DateTo,
		TotalDays:    report.TotalDays(),
		Reason:       reason,
		DateSessions: included,
		Attachments:  attachments,
	}, nil
}

// checkLeadTime covers backdating and the notice period. Backdated ranges
// are allowed only when policy permits them; future ranges must respect the
// minimum lead. The boundary is inclusive: a lead of exactly NoticeLeadDays
// passes.
func checkLeadTime(policy PolicyDescriptor, dateFrom, today Date) []Rejection {
	if dateFrom.Before(today) {
		if policy.AllowsBackdate {
			return nil
		}
		return []Rejection{{
			Code:    RejectBackdateNotAllowed,
			Message: fmt.Sprintf("leave starting %s is in the past", dateFrom),
		}}
	}

	if policy.NoticeLeadDays > 0 {
		lead := DaysBetween(today, dateFrom)
		if lead < policy.NoticeLeadDays {
			return []Rejection{{
				Code:         RejectNoticePolicy,
				RequiredDays: policy.NoticeLeadDays,
				Message: fmt.Sprintf("%d days notice given, policy requires %d",
					lead, policy.NoticeLeadDays),
			}}
		}
	}
	return nil
}

// checkDuplicates re-fetches facts for the report range and rejects any
// included date that now carries an existing application.
func (v *Validator) checkDuplicates(
	ctx context.Context,
	report *EligibilityReport,
	included []DateSession,
) ([]Rejection, error) {
	if len(included) == 0 {
		return nil, nil
	}

	facts, err := v.Facts.FactsInRange(ctx, report.DateFrom, report.DateTo)
	if err != nil {
		return nil, &FactsUnavailableError{Op: "facts", Cause: err}
	}

	existing := make(map[Date]*ExistingLeave, len(facts))
	for _, fact := range facts {
		if fact.ExistingLeave != nil {
			existing[fact.Date] = fact.ExistingLeave
		}
	}

	var rejections []Rejection
	for _, ds := range included {
		if conflict, ok := existing[ds.Date]; ok {
			rejections = append(rejections, Rejection{
				Code:      RejectDuplicateLeave,
				Date:      ds.Date,
				LeaveCode: conflict.LeaveCode,
				Message:   fmt.Sprintf("%s is already covered by %s", ds.Date, conflict.LeaveCode),
			})
		}
	}
	return rejections, nil
}
