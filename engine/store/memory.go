// Package store provides in-memory collaborator implementations for tests
// and development.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/warp/leave-engine/engine"
)

// =============================================================================
// MEMORY - In-memory FactSource / PolicySource / application sink
// =============================================================================

// Memory holds calendar facts, leave-type policies and submitted
// applications in maps. Dates without an explicit fact synthesize a default:
// working weekdays offering every session, weekends as rest days offering
// none. Saved applications are reflected back as existing leave in later
// fact reads, which makes duplicate detection observable without a backend.
type Memory struct {
	mu           sync.RWMutex
	facts        map[engine.Date]engine.DateFact
	policies     map[engine.LeaveTypeID]engine.PolicyDescriptor
	applications []Application
}

// Application is a stored submission.
type Application struct {
	ID      string
	Payload engine.SubmissionPayload
	Status  string
}

func NewMemory() *Memory {
	return &Memory{
		facts:    make(map[engine.Date]engine.DateFact),
		policies: make(map[engine.LeaveTypeID]engine.PolicyDescriptor),
	}
}

// =============================================================================
// CALENDAR FACTS
// =============================================================================

// SetFact records the fact for one date, replacing any previous value.
func (m *Memory) SetFact(fact engine.DateFact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facts[fact.Date] = fact
}

// SetHoliday marks a date as a named public holiday offering no sessions.
func (m *Memory) SetHoliday(date engine.Date, name string) {
	m.SetFact(engine.DateFact{
		Date:              date,
		TypeOfDay:         engine.DayPublicHoliday,
		HolidayName:       name,
		AvailableSessions: []engine.Session{engine.SessionNone},
	})
}

// SetExistingLeave marks a date as consumed by another application.
// The date keeps its current (or default) day type and sessions.
func (m *Memory) SetExistingLeave(date engine.Date, leaveCode string, session engine.Session, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fact, ok := m.facts[date]
	if !ok {
		fact = defaultFact(date)
	}
	fact.ExistingLeave = &engine.ExistingLeave{
		LeaveCode:      leaveCode,
		Session:        session,
		ApprovalStatus: status,
	}
	m.facts[date] = fact
}

// FactsInRange returns one fact per date in [from, to], ascending.
func (m *Memory) FactsInRange(_ context.Context, from, to engine.Date) ([]engine.DateFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var facts []engine.DateFact
	for _, date := range engine.DatesInRange(from, to) {
		if fact, ok := m.facts[date]; ok {
			facts = append(facts, fact)
			continue
		}
		facts = append(facts, defaultFact(date))
	}
	return facts, nil
}

func defaultFact(date engine.Date) engine.DateFact {
	if date.IsWeekend() {
		return engine.DateFact{
			Date:              date,
			TypeOfDay:         engine.DayRestDay,
			AvailableSessions: []engine.Session{engine.SessionNone},
		}
	}
	return engine.DateFact{
		Date:      date,
		TypeOfDay: engine.DayWorking,
		AvailableSessions: []engine.Session{
			engine.SessionFullDay,
			engine.SessionFirstHalf,
			engine.SessionSecondHalf,
		},
	}
}

// =============================================================================
// POLICIES
// =============================================================================

// SetPolicy registers a leave-type policy.
func (m *Memory) SetPolicy(policy engine.PolicyDescriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[policy.LeaveTypeID] = policy
}

// PolicyFor looks up the policy for a leave type.
func (m *Memory) PolicyFor(_ context.Context, id engine.LeaveTypeID) (engine.PolicyDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	policy, ok := m.policies[id]
	if !ok {
		return engine.PolicyDescriptor{}, engine.ErrPolicyNotFound
	}
	return policy, nil
}

// Policies returns every registered policy.
func (m *Memory) Policies(_ context.Context) ([]engine.PolicyDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	policies := make([]engine.PolicyDescriptor, 0, len(m.policies))
	for _, p := range m.policies {
		policies = append(policies, p)
	}
	return policies, nil
}

// =============================================================================
// APPLICATIONS
// =============================================================================

// SaveApplication stores a validated payload and marks each of its dates as
// consumed, so subsequent fact reads surface the conflict.
func (m *Memory) SaveApplication(_ context.Context, payload engine.SubmissionPayload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.applications = append(m.applications, Application{
		ID:      id,
		Payload: payload,
		Status:  "pending",
	})

	for _, ds := range payload.DateSessions {
		fact, ok := m.facts[ds.Date]
		if !ok {
			fact = defaultFact(ds.Date)
		}
		fact.ExistingLeave = &engine.ExistingLeave{
			LeaveCode:      string(payload.LeaveTypeID),
			Session:        ds.Session,
			ApprovalStatus: "pending",
		}
		m.facts[ds.Date] = fact
	}

	return id, nil
}

// Applications returns stored submissions in insertion order.
func (m *Memory) Applications() []Application {
	m.mu.RLock()
	defer m.mu.RUnlock()
	apps := make([]Application, len(m.applications))
	copy(apps, m.applications)
	return apps
}
