/*
Package leavetype provides ready-to-use policy descriptors for common leave
types.

PURPOSE:
  Convenience constructors that bundle the policy dimensions the way typical
  HR configurations combine them. These are starting points: real deployments
  fetch descriptors from the backend, and the factory package decodes those.

AVAILABLE POLICIES:
  AnnualLeave:    Day-by-day with half days, modest per-application cap
  CasualLeave:    Short-notice day-by-day leave with a small cap
  MedicalLeave:   Consecutive run, attachment required, backdating allowed
  MaternityLeave: Long consecutive run with a notice period, no cap
  UnpaidLeave:    Day-by-day full days only, longer notice

SEE ALSO:
  - engine/types.go: PolicyDescriptor definition
  - factory/policy.go: JSON-based descriptor decoding
*/
package leavetype

import "github.com/warp/leave-engine/engine"

// =============================================================================
// COMMON LEAVE-TYPE POLICIES
// =============================================================================

// AnnualLeave returns a typical annual/vacation policy: picked day by day,
// half days allowed, no notice requirement.
func AnnualLeave(id engine.LeaveTypeID) engine.PolicyDescriptor {
	return engine.PolicyDescriptor{
		LeaveTypeID:           id,
		AllowsHalfDay:         true,
		MaxDaysPerApplication: engine.MaxDays(14),
		Note:                  "Annual leave. Weekends and public holidays are not deducted.",
	}
}

// CasualLeave returns a short-leave policy with a small cap and a short
// notice period.
func CasualLeave(id engine.LeaveTypeID) engine.PolicyDescriptor {
	return engine.PolicyDescriptor{
		LeaveTypeID:           id,
		AllowsHalfDay:         true,
		MaxDaysPerApplication: engine.MaxDays(3),
		NoticeLeadDays:        2,
		Note:                  "Casual leave, maximum 3 days per application with 2 days notice.",
	}
}

// MedicalLeave returns a sick-leave policy: an unbroken run that may start
// in the past, with a medical certificate attached.
func MedicalLeave(id engine.LeaveTypeID) engine.PolicyDescriptor {
	return engine.PolicyDescriptor{
		LeaveTypeID:             id,
		RequiresConsecutiveDays: true,
		RequiresAttachment:      true,
		AllowsBackdate:          true,
		Note:                    "Medical leave. Attach a medical certificate.",
	}
}

// MaternityLeave returns a long consecutive-run policy. Rest days and public
// holidays inside the run stay selected; the run must not have gaps.
func MaternityLeave(id engine.LeaveTypeID) engine.PolicyDescriptor {
	return engine.PolicyDescriptor{
		LeaveTypeID:             id,
		RequiresConsecutiveDays: true,
		RequiresAttachment:      true,
		NoticeLeadDays:          30,
		Note:                    "Maternity leave. The full period counts, including rest days.",
	}
}

// UnpaidLeave returns a full-day-only policy with a longer notice period.
func UnpaidLeave(id engine.LeaveTypeID) engine.PolicyDescriptor {
	return engine.PolicyDescriptor{
		LeaveTypeID:    id,
		NoticeLeadDays: 7,
		Note:           "Unpaid leave, full days only, 7 days notice.",
	}
}

// Catalog returns one of each built-in policy, keyed by conventional codes.
// Used for seeding dev databases and demos.
func Catalog() []engine.PolicyDescriptor {
	return []engine.PolicyDescriptor{
		AnnualLeave("AL"),
		CasualLeave("CL"),
		MedicalLeave("ML"),
		MaternityLeave("MAT"),
		UnpaidLeave("UL"),
	}
}
