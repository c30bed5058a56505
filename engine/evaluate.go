/*
evaluate.go - Per-date eligibility rules

PURPOSE:
  Combines one DateFact with the PolicyDescriptor to produce a DateVerdict.
  The decisions form an ordered rule list with explicit precedence so each
  rule is independently testable instead of living in nested branches.

RULE PRECEDENCE (first match wins):
  1. Date offers no real session        -> excluded, no_session_offered
  2. Date already consumed by leave     -> excluded, has_existing_leave
  3. Consecutive-day policy             -> included; special days stay in
  4. Day-by-day policy                  -> special days excluded, otherwise
                                           included with offered sessions

THE CONSECUTIVE-DAY ASYMMETRY:
  Consecutive leave types (maternity, long medical) must not let a public
  holiday silently break the run, so rule 3 keeps special days selectable.
  Day-by-day leave types (annual, casual) should never auto-select a day the
  employee didn't ask for, so rule 4 excludes them. The two policy modes
  deliberately diverge here.

SIDE EFFECTS:
  None. Evaluate is pure and deterministic: identical inputs always yield
  identical verdicts, with no clock or randomness involved.

SEE ALSO:
  - report.go: Layers user selection state over these verdicts
*/
package engine

// =============================================================================
// EVALUATOR
// =============================================================================

// Evaluate produces one DateVerdict per input fact, order-preserving.
// It is total over well-formed input and never fails.
func Evaluate(policy PolicyDescriptor, facts []DateFact) []DateVerdict {
	verdicts := make([]DateVerdict, len(facts))
	for i, fact := range facts {
		verdicts[i] = evaluateDate(policy, fact)
	}
	return verdicts
}

// eligibilityRule decides one date. ok=false passes to the next rule.
type eligibilityRule func(PolicyDescriptor, DateFact) (DateVerdict, bool)

// Ordered by precedence; ruleDayByDay always matches.
var eligibilityRules = []eligibilityRule{
	ruleNoSessionOffered,
	ruleExistingLeave,
	ruleConsecutivePolicy,
	ruleDayByDay,
}

func evaluateDate(policy PolicyDescriptor, fact DateFact) DateVerdict {
	for _, rule := range eligibilityRules {
		if verdict, ok := rule(policy, fact); ok {
			return verdict
		}
	}
	// Unreachable: ruleDayByDay is a catch-all.
	return DateVerdict{Date: fact.Date, DefaultExcluded: true, Reason: ReasonNoSessionOffered}
}

// =============================================================================
// RULES
// =============================================================================

// ruleNoSessionOffered excludes dates the backend offers nothing for.
func ruleNoSessionOffered(_ PolicyDescriptor, fact DateFact) (DateVerdict, bool) {
	if fact.Usable() {
		return DateVerdict{}, false
	}
	return DateVerdict{
		Date:            fact.Date,
		DefaultExcluded: true,
		Reason:          ReasonNoSessionOffered,
	}, true
}

// ruleExistingLeave excludes dates already consumed by another application.
// This holds under every policy: a consumed date can never be re-selected.
func ruleExistingLeave(_ PolicyDescriptor, fact DateFact) (DateVerdict, bool) {
	if fact.ExistingLeave == nil {
		return DateVerdict{}, false
	}
	return DateVerdict{
		Date:            fact.Date,
		DefaultExcluded: true,
		Reason:          ReasonHasExistingLeave,
	}, true
}

// ruleConsecutivePolicy keeps every remaining date in the run. Rest days and
// public holidays are NOT excluded: the policy's intent is an unbroken span,
// so only actually-unavailable or already-used dates drop out (rules 1-2).
func ruleConsecutivePolicy(policy PolicyDescriptor, fact DateFact) (DateVerdict, bool) {
	if !policy.RequiresConsecutiveDays {
		return DateVerdict{}, false
	}
	sessions := []Session{SessionFullDay}
	if policy.AllowsHalfDay {
		for _, half := range []Session{SessionFirstHalf, SessionSecondHalf} {
			if ContainsSession(fact.AvailableSessions, half) {
				sessions = append(sessions, half)
			}
		}
	}
	return DateVerdict{
		Date:             fact.Date,
		DefaultExcluded:  false,
		Reason:           ReasonNone,
		EligibleSessions: sessions,
	}, true
}

// ruleDayByDay handles non-consecutive policies: special days are excluded,
// working days get the offered sessions gated by the half-day flag.
func ruleDayByDay(policy PolicyDescriptor, fact DateFact) (DateVerdict, bool) {
	if fact.TypeOfDay.IsSpecial() {
		return DateVerdict{
			Date:            fact.Date,
			DefaultExcluded: true,
			Reason:          ReasonSpecialDay,
		}, true
	}

	var sessions []Session
	for _, s := range []Session{SessionFullDay, SessionFirstHalf, SessionSecondHalf} {
		if !ContainsSession(fact.AvailableSessions, s) {
			continue
		}
		if s.IsHalf() && !policy.AllowsHalfDay {
			continue
		}
		sessions = append(sessions, s)
	}

	// Offered sessions and the half-day gate can cancel each other out
	// (e.g., the date offers only halves under a full-day-only policy).
	// A date with zero eligible sessions must not default to included.
	if len(sessions) == 0 {
		return DateVerdict{
			Date:            fact.Date,
			DefaultExcluded: true,
			Reason:          ReasonNoSessionOffered,
		}, true
	}

	return DateVerdict{
		Date:             fact.Date,
		DefaultExcluded:  false,
		Reason:           ReasonNone,
		EligibleSessions: sessions,
	}, true
}
