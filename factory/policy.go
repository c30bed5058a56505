/*
Package factory converts backend wire shapes into engine types.

PURPOSE:
  The backend speaks JSON with integer session codes and string day types;
  the engine speaks typed values. This package owns that translation so the
  engine never sees a wire format.

WIRE SCHEMA (policy):
  {
    "leave_type_id": "AL",
    "requires_consecutive_days": false,
    "allows_half_day": true,
    "requires_attachment": false,
    "allows_backdate": false,
    "max_days_per_application": 14,
    "notice_lead_days": 0,
    "note": "Annual leave"
  }

WIRE SCHEMA (calendar day):
  {
    "date": "2024-03-04",
    "type_of_day": "working",
    "holiday_name": "",
    "available_sessions": [1, 2, 3],
    "existing_leave_applications": [
      {"leave_code": "ML", "session": 1, "approval_status": "approved"}
    ]
  }

SESSION CODES:
  0 = none, 1 = full day, 2 = first half, 3 = second half.
  Only the first entry of existing_leave_applications is consumed.

SEE ALSO:
  - engine/types.go: Target types
  - api/dto.go: Response-side shapes
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/engine"
)

// =============================================================================
// SESSION AND DAY-TYPE CODES
// =============================================================================

var sessionByCode = map[int]engine.Session{
	0: engine.SessionNone,
	1: engine.SessionFullDay,
	2: engine.SessionFirstHalf,
	3: engine.SessionSecondHalf,
}

var codeBySession = map[engine.Session]int{
	engine.SessionNone:       0,
	engine.SessionFullDay:    1,
	engine.SessionFirstHalf:  2,
	engine.SessionSecondHalf: 3,
}

// SessionFromCode maps a wire session code to an engine session.
func SessionFromCode(code int) (engine.Session, error) {
	s, ok := sessionByCode[code]
	if !ok {
		return engine.SessionNone, fmt.Errorf("unknown session code %d", code)
	}
	return s, nil
}

// SessionCode maps an engine session to its wire code.
func SessionCode(s engine.Session) int {
	return codeBySession[s]
}

var dayTypes = map[string]engine.TypeOfDay{
	"working":        engine.DayWorking,
	"rest_day":       engine.DayRestDay,
	"off_day":        engine.DayOffDay,
	"public_holiday": engine.DayPublicHoliday,
	"unspecified":    engine.DayUnspecified,
}

// DayTypeFromString maps a wire day type. Unknown values decode as
// unspecified rather than failing: the backend adds categories faster than
// clients update.
func DayTypeFromString(s string) engine.TypeOfDay {
	if t, ok := dayTypes[s]; ok {
		return t
	}
	return engine.DayUnspecified
}

// =============================================================================
// POLICY DECODING
// =============================================================================

// PolicyJSON is the wire representation of a leave-type policy.
type PolicyJSON struct {
	LeaveTypeID             string   `json:"leave_type_id"`
	RequiresConsecutiveDays bool     `json:"requires_consecutive_days"`
	AllowsHalfDay           bool     `json:"allows_half_day"`
	RequiresAttachment      bool     `json:"requires_attachment"`
	AllowsBackdate          bool     `json:"allows_backdate"`
	MaxDaysPerApplication   *float64 `json:"max_days_per_application,omitempty"`
	NoticeLeadDays          int      `json:"notice_lead_days"`
	Note                    string   `json:"note,omitempty"`
}

// ParsePolicy decodes a policy JSON document.
func ParsePolicy(data []byte) (engine.PolicyDescriptor, error) {
	var pj PolicyJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return engine.PolicyDescriptor{}, fmt.Errorf("parse policy: %w", err)
	}
	return PolicyFromJSON(pj)
}

// PolicyFromJSON converts the wire shape into a descriptor.
func PolicyFromJSON(pj PolicyJSON) (engine.PolicyDescriptor, error) {
	if pj.LeaveTypeID == "" {
		return engine.PolicyDescriptor{}, fmt.Errorf("policy missing leave_type_id")
	}
	if pj.NoticeLeadDays < 0 {
		return engine.PolicyDescriptor{}, fmt.Errorf("policy %s: negative notice_lead_days", pj.LeaveTypeID)
	}

	policy := engine.PolicyDescriptor{
		LeaveTypeID:             engine.LeaveTypeID(pj.LeaveTypeID),
		RequiresConsecutiveDays: pj.RequiresConsecutiveDays,
		AllowsHalfDay:           pj.AllowsHalfDay,
		RequiresAttachment:      pj.RequiresAttachment,
		AllowsBackdate:          pj.AllowsBackdate,
		NoticeLeadDays:          pj.NoticeLeadDays,
		Note:                    pj.Note,
	}
	if pj.MaxDaysPerApplication != nil {
		max := decimal.NewFromFloat(*pj.MaxDaysPerApplication)
		if max.LessThanOrEqual(decimal.Zero) {
			return engine.PolicyDescriptor{}, fmt.Errorf("policy %s: non-positive max_days_per_application", pj.LeaveTypeID)
		}
		policy.MaxDaysPerApplication = &max
	}
	return policy, nil
}

// PolicyToJSON converts a descriptor back to the wire shape.
func PolicyToJSON(policy engine.PolicyDescriptor) PolicyJSON {
	pj := PolicyJSON{
		LeaveTypeID:             string(policy.LeaveTypeID),
		RequiresConsecutiveDays: policy.RequiresConsecutiveDays,
		AllowsHalfDay:           policy.AllowsHalfDay,
		RequiresAttachment:      policy.RequiresAttachment,
		AllowsBackdate:          policy.AllowsBackdate,
		NoticeLeadDays:          policy.NoticeLeadDays,
		Note:                    policy.Note,
	}
	if policy.MaxDaysPerApplication != nil {
		max, _ := policy.MaxDaysPerApplication.Float64()
		pj.MaxDaysPerApplication = &max
	}
	return pj
}

// =============================================================================
// CALENDAR DAY DECODING
// =============================================================================

// DayRecordJSON is the wire representation of one calendar date.
type DayRecordJSON struct {
	Date                      string              `json:"date"`
	TypeOfDay                 string              `json:"type_of_day"`
	HolidayName               string              `json:"holiday_name,omitempty"`
	AvailableSessions         []int               `json:"available_sessions"`
	ExistingLeaveApplications []ExistingLeaveJSON `json:"existing_leave_applications,omitempty"`
}

// ExistingLeaveJSON is one overlapping application on a date.
type ExistingLeaveJSON struct {
	LeaveCode      string `json:"leave_code"`
	Session        int    `json:"session"`
	ApprovalStatus string `json:"approval_status"`
}

// FactFromJSON converts a wire day record into a DateFact. Only the first
// existing application is consumed.
func FactFromJSON(dj DayRecordJSON) (engine.DateFact, error) {
	date, err := engine.ParseDate(dj.Date)
	if err != nil {
		return engine.DateFact{}, err
	}

	sessions := make([]engine.Session, 0, len(dj.AvailableSessions))
	for _, code := range dj.AvailableSessions {
		s, err := SessionFromCode(code)
		if err != nil {
			return engine.DateFact{}, fmt.Errorf("day %s: %w", dj.Date, err)
		}
		sessions = append(sessions, s)
	}
	if len(sessions) == 0 {
		sessions = []engine.Session{engine.SessionNone}
	}

	fact := engine.DateFact{
		Date:              date,
		TypeOfDay:         DayTypeFromString(dj.TypeOfDay),
		HolidayName:       dj.HolidayName,
		AvailableSessions: sessions,
	}

	if len(dj.ExistingLeaveApplications) > 0 {
		first := dj.ExistingLeaveApplications[0]
		session, err := SessionFromCode(first.Session)
		if err != nil {
			return engine.DateFact{}, fmt.Errorf("day %s existing leave: %w", dj.Date, err)
		}
		fact.ExistingLeave = &engine.ExistingLeave{
			LeaveCode:      first.LeaveCode,
			Session:        session,
			ApprovalStatus: first.ApprovalStatus,
		}
	}

	return fact, nil
}

// FactsFromJSON converts a list of wire day records, preserving order.
func FactsFromJSON(records []DayRecordJSON) ([]engine.DateFact, error) {
	facts := make([]engine.DateFact, len(records))
	for i, record := range records {
		fact, err := FactFromJSON(record)
		if err != nil {
			return nil, err
		}
		facts[i] = fact
	}
	return facts, nil
}
