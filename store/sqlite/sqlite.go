/*
Package sqlite provides a SQLite-backed calendar and application store.

PURPOSE:
  Implements the engine's collaborator interfaces (FactSource, PolicySource)
  and persists accepted submissions. Once an application is saved, its dates
  surface as existing leave in subsequent fact reads, which is what makes the
  validator's duplicate re-check meaningful across concurrent submissions.

INTERFACES IMPLEMENTED:
  engine.FactSource:   FactsInRange
  engine.PolicySource: PolicyFor

KEY TABLES:
  leave_types:      Policy descriptors per leave type
  calendar_days:    Day classification and holiday names
  day_sessions:     Sessions offered per date
  applications:     Accepted submissions
  application_days: Per-date (date, session) rows of each application

DEFAULTS:
  Dates with no calendar_days row synthesize a default: working weekdays
  offering every session, weekends as rest days offering none. Seeded
  holidays and explicit day rows override the default.

WAL MODE:
  Opened with WAL for better read concurrency, same as the rest of our
  SQLite usage. Use ":memory:" for tests.

SEE ALSO:
  - engine/facts.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/engine"
)

// Store implements the engine collaborator interfaces on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (and migrates) a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Leave-type policies
	CREATE TABLE IF NOT EXISTS leave_types (
		id TEXT PRIMARY KEY,
		requires_consecutive_days INTEGER NOT NULL DEFAULT 0,
		allows_half_day INTEGER NOT NULL DEFAULT 0,
		requires_attachment INTEGER NOT NULL DEFAULT 0,
		allows_backdate INTEGER NOT NULL DEFAULT 0,
		max_days_per_application TEXT,
		notice_lead_days INTEGER NOT NULL DEFAULT 0,
		note TEXT NOT NULL DEFAULT ''
	);

	-- Calendar day classification (holidays, off days, overrides)
	CREATE TABLE IF NOT EXISTS calendar_days (
		date TEXT PRIMARY KEY,
		type_of_day TEXT NOT NULL,
		holiday_name TEXT NOT NULL DEFAULT ''
	);

	-- Sessions offered per date (only for dates with a calendar_days row)
	CREATE TABLE IF NOT EXISTS day_sessions (
		date TEXT NOT NULL,
		session TEXT NOT NULL,
		PRIMARY KEY (date, session)
	);

	-- Accepted submissions
	CREATE TABLE IF NOT EXISTS applications (
		id TEXT PRIMARY KEY,
		leave_type_id TEXT NOT NULL,
		date_from TEXT NOT NULL,
		date_to TEXT NOT NULL,
		total_days TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		approval_status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL
	);

	-- Per-date rows of each application; the duplicate-leave lookup path
	CREATE TABLE IF NOT EXISTS application_days (
		application_id TEXT NOT NULL REFERENCES applications(id),
		date TEXT NOT NULL,
		session TEXT NOT NULL,
		PRIMARY KEY (application_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_application_days_date
		ON application_days(date);
	CREATE INDEX IF NOT EXISTS idx_applications_range
		ON applications(date_from, date_to);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

// SavePolicy upserts a leave-type policy.
func (s *Store) SavePolicy(ctx context.Context, policy engine.PolicyDescriptor) error {
	var maxDays sql.NullString
	if policy.MaxDaysPerApplication != nil {
		maxDays = sql.NullString{String: policy.MaxDaysPerApplication.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_types
			(id, requires_consecutive_days, allows_half_day, requires_attachment,
			 allows_backdate, max_days_per_application, notice_lead_days, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			requires_consecutive_days = excluded.requires_consecutive_days,
			allows_half_day = excluded.allows_half_day,
			requires_attachment = excluded.requires_attachment,
			allows_backdate = excluded.allows_backdate,
			max_days_per_application = excluded.max_days_per_application,
			notice_lead_days = excluded.notice_lead_days,
			note = excluded.note`,
		string(policy.LeaveTypeID),
		policy.RequiresConsecutiveDays, policy.AllowsHalfDay,
		policy.RequiresAttachment, policy.AllowsBackdate,
		maxDays, policy.NoticeLeadDays, policy.Note,
	)
	if err != nil {
		return fmt.Errorf("save policy %s: %w", policy.LeaveTypeID, err)
	}
	return nil
}

// PolicyFor returns the policy for a leave type.
func (s *Store) PolicyFor(ctx context.Context, id engine.LeaveTypeID) (engine.PolicyDescriptor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, requires_consecutive_days, allows_half_day, requires_attachment,
		       allows_backdate, max_days_per_application, notice_lead_days, note
		FROM leave_types WHERE id = ?`, string(id))

	policy, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return engine.PolicyDescriptor{}, engine.ErrPolicyNotFound
	}
	if err != nil {
		return engine.PolicyDescriptor{}, fmt.Errorf("load policy %s: %w", id, err)
	}
	return policy, nil
}

// ListPolicies returns every stored policy, ordered by leave type.
func (s *Store) ListPolicies(ctx context.Context) ([]engine.PolicyDescriptor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, requires_consecutive_days, allows_half_day, requires_attachment,
		       allows_backdate, max_days_per_application, notice_lead_days, note
		FROM leave_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	defer rows.Close()

	var policies []engine.PolicyDescriptor
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("list policies: %w", err)
		}
		policies = append(policies, policy)
	}
	return policies, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (engine.PolicyDescriptor, error) {
	var (
		policy  engine.PolicyDescriptor
		id      string
		maxDays sql.NullString
	)
	err := row.Scan(&id, &policy.RequiresConsecutiveDays, &policy.AllowsHalfDay,
		&policy.RequiresAttachment, &policy.AllowsBackdate,
		&maxDays, &policy.NoticeLeadDays, &policy.Note)
	if err != nil {
		return engine.PolicyDescriptor{}, err
	}
	policy.LeaveTypeID = engine.LeaveTypeID(id)
	if maxDays.Valid {
		max, err := decimal.NewFromString(maxDays.String)
		if err != nil {
			return engine.PolicyDescriptor{}, fmt.Errorf("policy %s: bad max_days %q", id, maxDays.String)
		}
		policy.MaxDaysPerApplication = &max
	}
	return policy, nil
}

// =============================================================================
// CALENDAR
// =============================================================================

// SetDay records the classification and offered sessions for one date,
// replacing any previous row.
func (s *Store) SetDay(ctx context.Context, date engine.Date, dayType engine.TypeOfDay, holidayName string, sessions []engine.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO calendar_days (date, type_of_day, holiday_name)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			type_of_day = excluded.type_of_day,
			holiday_name = excluded.holiday_name`,
		date.String(), string(dayType), holidayName); err != nil {
		return fmt.Errorf("set day %s: %w", date, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM day_sessions WHERE date = ?`, date.String()); err != nil {
		return fmt.Errorf("set day %s: %w", date, err)
	}
	for _, session := range sessions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO day_sessions (date, session) VALUES (?, ?)`,
			date.String(), string(session)); err != nil {
			return fmt.Errorf("set day %s: %w", date, err)
		}
	}

	return tx.Commit()
}

// AddHoliday marks a date as a named public holiday offering no sessions.
func (s *Store) AddHoliday(ctx context.Context, date engine.Date, name string) error {
	return s.SetDay(ctx, date, engine.DayPublicHoliday, name, []engine.Session{engine.SessionNone})
}

// FactsInRange returns one fact per date in [from, to], ascending.
// Implements engine.FactSource.
func (s *Store) FactsInRange(ctx context.Context, from, to engine.Date) ([]engine.DateFact, error) {
	days, err := s.loadCalendarDays(ctx, from, to)
	if err != nil {
		return nil, err
	}
	sessions, err := s.loadDaySessions(ctx, from, to)
	if err != nil {
		return nil, err
	}
	existing, err := s.loadExistingLeave(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var facts []engine.DateFact
	for _, date := range engine.DatesInRange(from, to) {
		fact, ok := days[date]
		if ok {
			fact.AvailableSessions = sessions[date]
			if len(fact.AvailableSessions) == 0 {
				fact.AvailableSessions = []engine.Session{engine.SessionNone}
			}
		} else {
			fact = defaultFact(date)
		}
		fact.ExistingLeave = existing[date]
		facts = append(facts, fact)
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

func (s *Store) loadCalendarDays(ctx context.Context, from, to engine.Date) (map[engine.Date]engine.DateFact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, type_of_day, holiday_name
		FROM calendar_days WHERE date >= ? AND date <= ?`,
		from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("load calendar days: %w", err)
	}
	defer rows.Close()

	days := make(map[engine.Date]engine.DateFact)
	for rows.Next() {
		var dateStr, dayType, holidayName string
		if err := rows.Scan(&dateStr, &dayType, &holidayName); err != nil {
			return nil, fmt.Errorf("load calendar days: %w", err)
		}
		date, err := engine.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("load calendar days: %w", err)
		}
		days[date] = engine.DateFact{
			Date:        date,
			TypeOfDay:   engine.TypeOfDay(dayType),
			HolidayName: holidayName,
		}
	}
	return days, rows.Err()
}

func (s *Store) loadDaySessions(ctx context.Context, from, to engine.Date) (map[engine.Date][]engine.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, session FROM day_sessions
		WHERE date >= ? AND date <= ? ORDER BY date, session`,
		from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("load day sessions: %w", err)
	}
	defer rows.Close()

	sessions := make(map[engine.Date][]engine.Session)
	for rows.Next() {
		var dateStr, session string
		if err := rows.Scan(&dateStr, &session); err != nil {
			return nil, fmt.Errorf("load day sessions: %w", err)
		}
		date, err := engine.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("load day sessions: %w", err)
		}
		sessions[date] = append(sessions[date], engine.Session(session))
	}
	return sessions, rows.Err()
}

// loadExistingLeave maps each consumed date in range to its earliest
// application. Only the first overlapping application matters to the engine.
func (s *Store) loadExistingLeave(ctx context.Context, from, to engine.Date) (map[engine.Date]*engine.ExistingLeave, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ad.date, a.leave_type_id, ad.session, a.approval_status
		FROM application_days ad
		JOIN applications a ON a.id = ad.application_id
		WHERE ad.date >= ? AND ad.date <= ?
		ORDER BY ad.date, a.created_at`,
		from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("load existing leave: %w", err)
	}
	defer rows.Close()

	existing := make(map[engine.Date]*engine.ExistingLeave)
	for rows.Next() {
		var dateStr, leaveCode, session, status string
		if err := rows.Scan(&dateStr, &leaveCode, &session, &status); err != nil {
			return nil, fmt.Errorf("load existing leave: %w", err)
		}
		date, err := engine.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("load existing leave: %w", err)
		}
		if _, ok := existing[date]; ok {
			continue // keep the earliest application per date
		}
		existing[date] = &engine.ExistingLeave{
			LeaveCode:      leaveCode,
			Session:        engine.Session(session),
			ApprovalStatus: status,
		}
	}
	return existing, rows.Err()
}

// =============================================================================
// APPLICATIONS
// =============================================================================

// ApplicationRecord is a stored submission with its identifier.
type ApplicationRecord struct {
	ID             string
	Payload        engine.SubmissionPayload
	ApprovalStatus string
	CreatedAt      time.Time
}

// SaveApplication persists a validated payload atomically and returns the
// application ID. The payload's dates become existing leave for every
// subsequent FactsInRange call.
func (s *Store) SaveApplication(ctx context.Context, payload engine.SubmissionPayload) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO applications
			(id, leave_type_id, date_from, date_to, total_days, reason, approval_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)`,
		id, string(payload.LeaveTypeID),
		payload.DateFrom.String(), payload.DateTo.String(),
		payload.TotalDays.String(), payload.Reason,
		now.Format(time.RFC3339Nano)); err != nil {
		return "", fmt.Errorf("save application: %w", err)
	}

	for _, ds := range payload.DateSessions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO application_days (application_id, date, session)
			VALUES (?, ?, ?)`,
			id, ds.Date.String(), string(ds.Session)); err != nil {
			return "", fmt.Errorf("save application day %s: %w", ds.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save application: %w", err)
	}
	return id, nil
}

// ListApplications returns stored submissions, newest first.
func (s *Store) ListApplications(ctx context.Context) ([]ApplicationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, leave_type_id, date_from, date_to, total_days, reason, approval_status, created_at
		FROM applications ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var records []ApplicationRecord
	for rows.Next() {
		var (
			rec                       ApplicationRecord
			leaveType, fromStr, toStr string
			totalStr, createdStr      string
		)
		if err := rows.Scan(&rec.ID, &leaveType, &fromStr, &toStr,
			&totalStr, &rec.Payload.Reason, &rec.ApprovalStatus, &createdStr); err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		rec.Payload.LeaveTypeID = engine.LeaveTypeID(leaveType)
		if rec.Payload.DateFrom, err = engine.ParseDate(fromStr); err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		if rec.Payload.DateTo, err = engine.ParseDate(toStr); err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		if rec.Payload.TotalDays, err = decimal.NewFromString(totalStr); err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr); err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// SEEDING
// =============================================================================

// SeedCalendar writes explicit day rows for [from, to]: weekdays working
// with every session, weekends as rest days. Holidays are layered on top
// with AddHoliday. Intended for dev databases and demos.
func (s *Store) SeedCalendar(ctx context.Context, from, to engine.Date) error {
	for _, date := range engine.DatesInRange(from, to) {
		fact := defaultFact(date)
		if err := s.SetDay(ctx, date, fact.TypeOfDay, "", fact.AvailableSessions); err != nil {
			return fmt.Errorf("seed calendar: %w", err)
		}
	}
	return nil
}

// SeedPolicies stores the given descriptors, replacing existing ones.
func (s *Store) SeedPolicies(ctx context.Context, policies []engine.PolicyDescriptor) error {
	for _, policy := range policies {
		if err := s.SavePolicy(ctx, policy); err != nil {
			return err
		}
	}
	return nil
}
