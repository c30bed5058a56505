/*
handlers.go - HTTP API handlers for the leave eligibility engine

PURPOSE:
  Exposes the eligibility engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Leave types:
    GET    /api/leave-types            List all leave types
    POST   /api/leave-types            Create/replace a leave type
    GET    /api/leave-types/{id}       Get one leave type

  Calendar:
    GET    /api/calendar               Day facts for a range (?from=&to=)
    POST   /api/calendar/holidays      Add a public holiday

  Eligibility:
    GET    /api/eligibility            Default composition for a range
                                       (?leave_type=&from=&to=)

  Applications:
    GET    /api/applications           List stored applications
    POST   /api/applications           Validate and store a submission

REQUEST FLOW (submit):
  1. Parse HTTP request
  2. Build the eligibility report for the range
  3. Apply the caller's toggles and session overrides
  4. Run the validator (re-fetches facts for the duplicate check)
  5. Persist on success, 422 with the full rejection list otherwise

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (bad dates, unknown sessions, bad overrides)
  - 404: Leave type not found
  - 422: Policy violations (all of them, not just the first)
  - 503: Fact source unavailable (retryable)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - engine/validate.go: The checks behind the 422 responses
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/leave-engine/engine"
	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	builder   *engine.Builder
	validator *engine.Validator

	// now is swappable in tests; defaults to engine.Today.
	now func() engine.Date
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:     store,
		builder:   &engine.Builder{Facts: store},
		validator: &engine.Validator{Facts: store},
		now:       engine.Today,
	}
}

// =============================================================================
// LEAVE TYPE HANDLERS
// =============================================================================

// ListLeaveTypes returns all leave types.
func (h *Handler) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Store.ListPolicies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave types", err)
		return
	}

	dtos := make([]LeaveTypeDTO, len(policies))
	for i, p := range policies {
		dtos[i] = LeaveTypeDTO{
			ID:     string(p.LeaveTypeID),
			Policy: factory.PolicyToJSON(p),
		}
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetLeaveType returns a single leave type.
func (h *Handler) GetLeaveType(w http.ResponseWriter, r *http.Request) {
	id := engine.LeaveTypeID(chi.URLParam(r, "id"))

	policy, err := h.Store.PolicyFor(r.Context(), id)
	if errors.Is(err, engine.ErrPolicyNotFound) {
		writeError(w, http.StatusNotFound, "Leave type not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get leave type", err)
		return
	}

	writeJSON(w, http.StatusOK, LeaveTypeDTO{
		ID:     string(policy.LeaveTypeID),
		Policy: factory.PolicyToJSON(policy),
	})
}

// CreateLeaveType creates or replaces a leave type.
func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	policy, err := factory.PolicyFromJSON(req.Policy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy", err)
		return
	}

	if err := h.Store.SavePolicy(r.Context(), policy); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save leave type", err)
		return
	}

	writeJSON(w, http.StatusCreated, LeaveTypeDTO{
		ID:     string(policy.LeaveTypeID),
		Policy: factory.PolicyToJSON(policy),
	})
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetCalendar returns day facts for a date range.
// GET /api/calendar?from=2024-03-01&to=2024-03-31
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	facts, err := h.Store.FactsInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Calendar unavailable", err)
		return
	}

	dtos := make([]CalendarDayDTO, len(facts))
	for i, f := range facts {
		dtos[i] = toCalendarDayDTO(f)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// AddHoliday marks a date as a public holiday.
func (h *Handler) AddHoliday(w http.ResponseWriter, r *http.Request) {
	var req AddHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	if err := h.Store.AddHoliday(r.Context(), date, req.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add holiday", err)
		return
	}

	writeJSON(w, http.StatusCreated, CalendarDayDTO{
		Date:              date.String(),
		TypeOfDay:         string(engine.DayPublicHoliday),
		HolidayName:       req.Name,
		AvailableSessions: []int{factory.SessionCode(engine.SessionNone)},
	})
}

// =============================================================================
// ELIGIBILITY HANDLERS
// =============================================================================

// GetEligibility returns the default composition for a leave type and range.
// GET /api/eligibility?leave_type=AL&from=2024-03-04&to=2024-03-08
func (h *Handler) GetEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	policy, ok := h.lookupPolicy(w, r, r.URL.Query().Get("leave_type"))
	if !ok {
		return
	}

	report, err := h.builder.Build(ctx, policy, from, to)
	if err != nil {
		writeBuildError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// =============================================================================
// APPLICATION HANDLERS
// =============================================================================

// ListApplications returns stored applications, newest first.
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListApplications(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list applications", err)
		return
	}

	dtos := make([]ApplicationDTO, len(records))
	for i, rec := range records {
		dtos[i] = ApplicationDTO{
			ID:             rec.ID,
			LeaveTypeID:    string(rec.Payload.LeaveTypeID),
			DateFrom:       rec.Payload.DateFrom.String(),
			DateTo:         rec.Payload.DateTo.String(),
			TotalDays:      rec.Payload.TotalDays.String(),
			Reason:         rec.Payload.Reason,
			ApprovalStatus: rec.ApprovalStatus,
			CreatedAt:      rec.CreatedAt.Format(time.RFC3339),
		}
	}

	writeJSON(w, http.StatusOK, dtos)
}

// SubmitApplication validates a composed selection and stores it.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SubmitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	from, err := engine.ParseDate(req.DateFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date_from", err)
		return
	}
	to, err := engine.ParseDate(req.DateTo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date_to", err)
		return
	}

	policy, ok := h.lookupPolicy(w, r, req.LeaveTypeID)
	if !ok {
		return
	}

	report, err := h.builder.Build(ctx, policy, from, to)
	if err != nil {
		writeBuildError(w, err)
		return
	}

	if !h.applyOverrides(w, report, req) {
		return
	}

	payload, err := h.validator.Validate(ctx, policy, report, h.now(), req.Reason, req.Attachments)
	if err != nil {
		var rejErr *engine.RejectionError
		if errors.As(err, &rejErr) {
			writeJSON(w, http.StatusUnprocessableEntity, toRejectedResponse(rejErr))
			return
		}
		if engine.IsRetryable(err) {
			writeError(w, http.StatusServiceUnavailable, "Calendar unavailable, retry later", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Validation failed", err)
		return
	}

	id, err := h.Store.SaveApplication(ctx, *payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save application", err)
		return
	}

	writeJSON(w, http.StatusCreated, ApplicationDTO{
		ID:             id,
		LeaveTypeID:    string(payload.LeaveTypeID),
		DateFrom:       payload.DateFrom.String(),
		DateTo:         payload.DateTo.String(),
		TotalDays:      payload.TotalDays.String(),
		Reason:         payload.Reason,
		ApprovalStatus: "pending",
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}

// applyOverrides replays the caller's toggles and session choices onto the
// freshly built report. Writes the HTTP error itself and returns false when
// an override is invalid.
func (h *Handler) applyOverrides(w http.ResponseWriter, report *engine.EligibilityReport, req SubmitApplicationRequest) bool {
	for _, dateStr := range req.ToggleDates {
		date, err := engine.ParseDate(dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid toggle date", err)
			return false
		}
		if err := report.ToggleInclusion(date); err != nil {
			writeError(w, http.StatusBadRequest, "Cannot toggle date", err)
			return false
		}
	}

	for _, override := range req.SessionOverrides {
		date, err := engine.ParseDate(override.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid override date", err)
			return false
		}
		session, err := factory.SessionFromCode(override.Session)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid session code", err)
			return false
		}
		if err := report.SetSession(date, session); err != nil {
			writeError(w, http.StatusBadRequest, "Cannot set session", err)
			return false
		}
	}

	return true
}

// =============================================================================
// HELPERS
// =============================================================================

// lookupPolicy resolves a leave-type ID, writing the HTTP error itself.
func (h *Handler) lookupPolicy(w http.ResponseWriter, r *http.Request, id string) (engine.PolicyDescriptor, bool) {
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing leave type", nil)
		return engine.PolicyDescriptor{}, false
	}

	policy, err := h.Store.PolicyFor(r.Context(), engine.LeaveTypeID(id))
	if errors.Is(err, engine.ErrPolicyNotFound) {
		writeError(w, http.StatusNotFound, "Leave type not found", nil)
		return engine.PolicyDescriptor{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get leave type", err)
		return engine.PolicyDescriptor{}, false
	}
	return policy, true
}

// parseRange reads ?from= and ?to=, writing the HTTP error itself.
func parseRange(w http.ResponseWriter, r *http.Request) (engine.Date, engine.Date, bool) {
	from, err := engine.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return engine.Date{}, engine.Date{}, false
	}
	to, err := engine.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", err)
		return engine.Date{}, engine.Date{}, false
	}
	return from, to, true
}

func writeBuildError(w http.ResponseWriter, err error) {
	switch {
	case engine.IsInputError(err):
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
	case engine.IsRetryable(err):
		writeError(w, http.StatusServiceUnavailable, "Calendar unavailable, retry later", err)
	default:
		writeError(w, http.StatusInternalServerError, "Failed to build eligibility report", err)
	}
}

func toCalendarDayDTO(f engine.DateFact) CalendarDayDTO {
	sessions := make([]int, len(f.AvailableSessions))
	for i, s := range f.AvailableSessions {
		sessions[i] = factory.SessionCode(s)
	}
	dto := CalendarDayDTO{
		Date:              f.Date.String(),
		TypeOfDay:         string(f.TypeOfDay),
		HolidayName:       f.HolidayName,
		AvailableSessions: sessions,
	}
	if f.ExistingLeave != nil {
		dto.ExistingLeave = &ExistingLeaveDTO{
			LeaveCode:      f.ExistingLeave.LeaveCode,
			Session:        factory.SessionCode(f.ExistingLeave.Session),
			ApprovalStatus: f.ExistingLeave.ApprovalStatus,
		}
	}
	return dto
}

func toReportDTO(report *engine.EligibilityReport) EligibilityReportDTO {
	rows := report.Rows()
	dtos := make([]ReportRowDTO, len(rows))
	for i, row := range rows {
		eligible := make([]int, len(row.Verdict.EligibleSessions))
		for j, s := range row.Verdict.EligibleSessions {
			eligible[j] = factory.SessionCode(s)
		}
		reason := ""
		if row.Verdict.Reason != engine.ReasonNone {
			reason = string(row.Verdict.Reason)
		}
		dtos[i] = ReportRowDTO{
			Date:             row.Date.String(),
			Included:         row.Entry.Included,
			Session:          factory.SessionCode(row.Entry.Session),
			Excluded:         row.Verdict.DefaultExcluded,
			ExclusionReason:  reason,
			EligibleSessions: eligible,
		}
	}
	return EligibilityReportDTO{
		LeaveTypeID: string(report.Policy.LeaveTypeID),
		DateFrom:    report.DateFrom.String(),
		DateTo:      report.DateTo.String(),
		TotalDays:   report.TotalDays().String(),
		Rows:        dtos,
	}
}

func toRejectedResponse(err *engine.RejectionError) RejectedResponse {
	dtos := make([]RejectionDTO, len(err.Rejections))
	for i, rej := range err.Rejections {
		dto := RejectionDTO{
			Code:         string(rej.Code),
			LeaveCode:    rej.LeaveCode,
			RequiredDays: rej.RequiredDays,
			Message:      rej.Message,
		}
		if !rej.Date.IsZero() {
			dto.Date = rej.Date.String()
		}
		dtos[i] = dto
	}
	return RejectedResponse{
		Error:      "Submission rejected",
		Rejections: dtos,
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
