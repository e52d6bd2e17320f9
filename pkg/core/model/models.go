package model

import "time"

// ShiftType identifies the kind of shift being worked
type ShiftType string

const (
	ShiftRegular ShiftType = "regular"
	ShiftOnCall  ShiftType = "on_call"
)

func (s ShiftType) IsValid() bool {
	return s == ShiftRegular || s == ShiftOnCall
}

// ScheduleStatus is the lifecycle state of a schedule
type ScheduleStatus string

const (
	ScheduleDraft     ScheduleStatus = "draft"
	SchedulePublished ScheduleStatus = "published"
)

func (s ScheduleStatus) IsValid() bool {
	return s == ScheduleDraft || s == SchedulePublished
}

// PreferenceStatus is the lifecycle state of a staff preference
type PreferenceStatus string

const (
	PreferenceDraft     PreferenceStatus = "draft"
	PreferenceSubmitted PreferenceStatus = "submitted"
)

func (s PreferenceStatus) IsValid() bool {
	return s == PreferenceDraft || s == PreferenceSubmitted
}

// PreferenceType classifies what a staff member said about a date
type PreferenceType string

const (
	PreferenceAvailable   PreferenceType = "available"
	PreferenceUnavailable PreferenceType = "unavailable"
	PreferencePreferred   PreferenceType = "preferred"
)

func (p PreferenceType) IsValid() bool {
	return p == PreferenceAvailable || p == PreferenceUnavailable || p == PreferencePreferred
}

// StaffMember represents a schedulable member of staff
type StaffMember struct {
	ID           int
	FirstName    string
	LastName     string
	Active       bool
	StaffGroupID *int // nil if not in a workload group
	RoleGroupID  *int // nil if not in a specialty group
}

func (m StaffMember) DisplayName() string {
	return m.FirstName + " " + m.LastName
}

// Role represents a schedulable skill or position (e.g. "MRI Technician")
type Role struct {
	ID          int
	Name        string
	RoleGroupID *int
}

// RoleGroup is an informational grouping of roles (e.g. "Radiologists")
type RoleGroup struct {
	ID   int
	Name string
}

// StaffGroup is a workload policy bound to a set of staff members
type StaffGroup struct {
	ID                      int
	Name                    string
	MaxConsecutiveDays      *int // nil means no cap
	RequiresRestAfterOnCall bool
}

// Competency records a staff member's qualification for a role
type Competency struct {
	StaffMemberID    int
	RoleID           int
	ProficiencyLevel int     // 1-5
	CertifiedDate    *string // date, nil if unknown
	ExpiryDate       *string // date, nil if the certification never expires
}

// Schedule is a named date range that assignments belong to.
// Dates use the YYYY-MM-DD wire format of the store.
type Schedule struct {
	ID          int
	Name        string
	StartDate   string
	EndDate     string
	Status      ScheduleStatus
	PublishedAt *time.Time
}

// ScheduleAssignment is a committed staff-to-shift assignment.
// Assignments are never mutated in place; corrections are delete and recreate.
type ScheduleAssignment struct {
	ID            int
	ScheduleID    int
	StaffMemberID int
	RoleID        int
	ShiftDate     string
	ShiftType     ShiftType
	StartTime     string // HH:MM
	EndTime       string // HH:MM; earlier than StartTime means the shift wraps past midnight
}

// StaffPreference is a staff member's statement about a date in a schedule.
// Only submitted preferences are visible to planning.
type StaffPreference struct {
	ID             int
	StaffMemberID  int
	ScheduleID     int
	PreferredDate  string
	RoleID         *int       // nil matches any role
	ShiftType      *ShiftType // nil matches any shift type
	PreferenceType PreferenceType
	Priority       int // 1-5, default 3
	Status         PreferenceStatus
	Notes          string
	SubmittedAt    *time.Time
}

// Matches reports whether this preference applies to the given role and
// shift type. An unset role or shift type matches anything.
func (p StaffPreference) Matches(roleID int, shiftType ShiftType) bool {
	if p.RoleID != nil && *p.RoleID != roleID {
		return false
	}
	if p.ShiftType != nil && *p.ShiftType != shiftType {
		return false
	}
	return true
}

// Slot is a single coverage requirement to be filled by exactly one staff member
type Slot struct {
	ScheduleID int
	Date       string
	RoleID     int
	ShiftType  ShiftType
	StartTime  string
	EndTime    string
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ParseDate parses a YYYY-MM-DD date into a UTC midnight time.Time
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// FormatDate renders a time.Time back into the YYYY-MM-DD wire format
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseClock parses an HH:MM or HH:MM:SS time of day into minutes since midnight
func ParseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		// The store may hand back seconds as well
		t, err = time.Parse("15:04:05", s)
		if err != nil {
			return 0, err
		}
	}
	return t.Hour()*60 + t.Minute(), nil
}
