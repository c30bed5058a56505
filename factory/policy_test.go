package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/engine"
	"github.com/warp/leave-engine/factory"
)

// =============================================================================
// SESSION CODES
// =============================================================================

func TestSessionCodes_RoundTrip(t *testing.T) {
	for code := 0; code <= 3; code++ {
		session, err := factory.SessionFromCode(code)
		require.NoError(t, err)
		assert.Equal(t, code, factory.SessionCode(session))
	}

	_, err := factory.SessionFromCode(7)
	assert.Error(t, err)
}

func TestDayTypeFromString_UnknownIsUnspecified(t *testing.T) {
	assert.Equal(t, engine.DayWorking, factory.DayTypeFromString("working"))
	assert.Equal(t, engine.DayPublicHoliday, factory.DayTypeFromString("public_holiday"))
	// Forward compatibility: new backend categories must not fail decoding.
	assert.Equal(t, engine.DayUnspecified, factory.DayTypeFromString("company_retreat"))
}

// =============================================================================
// POLICY DECODING
// =============================================================================

func TestParsePolicy_FullDocument(t *testing.T) {
	raw := []byte(`{
		"leave_type_id": "CL",
		"allows_half_day": true,
		"max_days_per_application": 3,
		"notice_lead_days": 2,
		"note": "Casual leave"
	}`)

	policy, err := factory.ParsePolicy(raw)
	require.NoError(t, err)

	assert.Equal(t, engine.LeaveTypeID("CL"), policy.LeaveTypeID)
	assert.False(t, policy.RequiresConsecutiveDays)
	assert.True(t, policy.AllowsHalfDay)
	assert.Equal(t, 2, policy.NoticeLeadDays)
	require.NotNil(t, policy.MaxDaysPerApplication)
	assert.Equal(t, "3", policy.MaxDaysPerApplication.String())
}

func TestPolicyFromJSON_Rejections(t *testing.T) {
	cases := []struct {
		name string
		pj   factory.PolicyJSON
	}{
		{"missing id", factory.PolicyJSON{NoticeLeadDays: 1}},
		{"negative notice", factory.PolicyJSON{LeaveTypeID: "AL", NoticeLeadDays: -1}},
		{"zero cap", factory.PolicyJSON{LeaveTypeID: "AL", MaxDaysPerApplication: floatPtr(0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := factory.PolicyFromJSON(tc.pj)
			assert.Error(t, err)
		})
	}
}

func TestPolicyToJSON_RoundTrip(t *testing.T) {
	policy := engine.PolicyDescriptor{
		LeaveTypeID:             "MAT",
		RequiresConsecutiveDays: true,
		RequiresAttachment:      true,
		NoticeLeadDays:          30,
		Note:                    "Maternity leave",
	}

	decoded, err := factory.PolicyFromJSON(factory.PolicyToJSON(policy))
	require.NoError(t, err)
	assert.Equal(t, policy, decoded)
}

// =============================================================================
// CALENDAR DAY DECODING
// =============================================================================

func TestFactFromJSON_WorkingDayWithExistingLeave(t *testing.T) {
	record := factory.DayRecordJSON{
		Date:              "2024-03-04",
		TypeOfDay:         "working",
		AvailableSessions: []int{1, 2, 3},
		ExistingLeaveApplications: []factory.ExistingLeaveJSON{
			{LeaveCode: "ML", Session: 1, ApprovalStatus: "approved"},
			{LeaveCode: "AL", Session: 2, ApprovalStatus: "pending"}, // ignored
		},
	}

	fact, err := factory.FactFromJSON(record)
	require.NoError(t, err)

	assert.Equal(t, engine.NewDate(2024, time.March, 4), fact.Date)
	assert.Equal(t, engine.DayWorking, fact.TypeOfDay)
	assert.Len(t, fact.AvailableSessions, 3)
	require.NotNil(t, fact.ExistingLeave)
	assert.Equal(t, "ML", fact.ExistingLeave.LeaveCode)
	assert.Equal(t, engine.SessionFullDay, fact.ExistingLeave.Session)
}

func TestFactFromJSON_EmptySessionsDecodeAsNone(t *testing.T) {
	record := factory.DayRecordJSON{
		Date:      "2024-05-01",
		TypeOfDay: "public_holiday",
	}

	fact, err := factory.FactFromJSON(record)
	require.NoError(t, err)

	assert.Equal(t, []engine.Session{engine.SessionNone}, fact.AvailableSessions)
	assert.False(t, fact.Usable())
}

func TestFactFromJSON_BadInput(t *testing.T) {
	_, err := factory.FactFromJSON(factory.DayRecordJSON{Date: "not-a-date", TypeOfDay: "working"})
	assert.Error(t, err)

	_, err = factory.FactFromJSON(factory.DayRecordJSON{
		Date: "2024-03-04", TypeOfDay: "working", AvailableSessions: []int{9},
	})
	assert.Error(t, err)
}

func TestFactsFromJSON_PreservesOrder(t *testing.T) {
	records := []factory.DayRecordJSON{
		{Date: "2024-03-04", TypeOfDay: "working", AvailableSessions: []int{1}},
		{Date: "2024-03-05", TypeOfDay: "rest_day"},
	}

	facts, err := factory.FactsFromJSON(records)
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.True(t, facts[0].Date.Before(facts[1].Date))
}

func floatPtr(f float64) *float64 { return &f }
