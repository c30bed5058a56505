/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

SESSIONS ON THE WIRE:
  Sessions travel as integer codes (0=none, 1=full day, 2=first half,
  3=second half), decoded through the factory package. Day types travel
  as their string names.

TYPES:
  Leave types:
    LeaveTypeDTO (wraps factory.PolicyJSON), CreateLeaveTypeRequest

  Calendar:
    CalendarDayDTO

  Eligibility:
    EligibilityReportDTO, ReportRowDTO

  Applications:
    SubmitApplicationRequest, SessionOverrideDTO, ApplicationDTO,
    RejectionDTO, RejectedResponse

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PolicyJSON and session codes
*/
package api

import (
	"github.com/warp/leave-engine/factory"
)

// =============================================================================
// LEAVE TYPES
// =============================================================================

// LeaveTypeDTO represents a leave-type policy in API responses.
type LeaveTypeDTO struct {
	ID     string             `json:"id"`
	Policy factory.PolicyJSON `json:"policy"`
}

// CreateLeaveTypeRequest is the request to create or replace a leave type.
type CreateLeaveTypeRequest struct {
	Policy factory.PolicyJSON `json:"policy"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// CalendarDayDTO represents one calendar date in API responses.
type CalendarDayDTO struct {
	Date              string            `json:"date"`
	TypeOfDay         string            `json:"type_of_day"`
	HolidayName       string            `json:"holiday_name,omitempty"`
	AvailableSessions []int             `json:"available_sessions"`
	ExistingLeave     *ExistingLeaveDTO `json:"existing_leave,omitempty"`
}

// ExistingLeaveDTO is an already-consumed slot visible on a calendar date.
type ExistingLeaveDTO struct {
	LeaveCode      string `json:"leave_code"`
	Session        int    `json:"session"`
	ApprovalStatus string `json:"approval_status"`
}

// AddHolidayRequest marks a date as a public holiday.
type AddHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// =============================================================================
// ELIGIBILITY
// =============================================================================

// ReportRowDTO is one date of an eligibility report: the engine's verdict
// plus the default selection state.
type ReportRowDTO struct {
	Date             string `json:"date"`
	Included         bool   `json:"included"`
	Session          int    `json:"session"`
	Excluded         bool   `json:"excluded"`
	ExclusionReason  string `json:"exclusion_reason,omitempty"`
	EligibleSessions []int  `json:"eligible_sessions"`
}

// EligibilityReportDTO is the full default composition for a range.
type EligibilityReportDTO struct {
	LeaveTypeID string         `json:"leave_type_id"`
	DateFrom    string         `json:"date_from"`
	DateTo      string         `json:"date_to"`
	TotalDays   string         `json:"total_days"`
	Rows        []ReportRowDTO `json:"rows"`
}

// =============================================================================
// APPLICATIONS
// =============================================================================

// SessionOverrideDTO changes the session choice for one report date.
type SessionOverrideDTO struct {
	Date    string `json:"date"`
	Session int    `json:"session"`
}

// SubmitApplicationRequest is the request to submit a leave application.
// Toggles and session overrides are applied on top of the default
// composition for the range before validation.
type SubmitApplicationRequest struct {
	LeaveTypeID      string               `json:"leave_type_id"`
	DateFrom         string               `json:"date_from"`
	DateTo           string               `json:"date_to"`
	Reason           string               `json:"reason,omitempty"`
	Attachments      []string             `json:"attachments,omitempty"`
	ToggleDates      []string             `json:"toggle_dates,omitempty"`
	SessionOverrides []SessionOverrideDTO `json:"session_overrides,omitempty"`
}

// ApplicationDTO represents a stored application in API responses.
type ApplicationDTO struct {
	ID             string `json:"id"`
	LeaveTypeID    string `json:"leave_type_id"`
	DateFrom       string `json:"date_from"`
	DateTo         string `json:"date_to"`
	TotalDays      string `json:"total_days"`
	Reason         string `json:"reason,omitempty"`
	ApprovalStatus string `json:"approval_status"`
	CreatedAt      string `json:"created_at"`
}

// RejectionDTO is one policy violation found at submit time.
type RejectionDTO struct {
	Code         string `json:"code"`
	Date         string `json:"date,omitempty"`
	LeaveCode    string `json:"leave_code,omitempty"`
	RequiredDays int    `json:"required_days,omitempty"`
	Message      string `json:"message,omitempty"`
}

// RejectedResponse carries every violation of a rejected submission.
type RejectedResponse struct {
	Error      string         `json:"error"`
	Rejections []RejectionDTO `json:"rejections"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
