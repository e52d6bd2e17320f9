package engine

import (
	"fmt"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
)

// AssignmentCandidate is a proposed staff-to-shift assignment under evaluation
type AssignmentCandidate struct {
	ScheduleID    int
	StaffMemberID int
	RoleID        int
	ShiftDate     string
	ShiftType     model.ShiftType
	StartTime     string
	EndTime       string
}

type unavailabilityKey struct {
	staffMemberID int
	scheduleID    int
	date          string
}

// Evaluator runs the hard-constraint chain against candidate assignments.
// It holds immutable reference data loaded once per planning pass; the
// mutable part of an evaluation is the RosterView passed into Evaluate.
type Evaluator struct {
	schedules    map[int]model.Schedule
	staff        map[int]model.StaffMember
	roles        map[int]model.Role
	groups       map[int]model.StaffGroup
	competencies *CompetencyIndex

	// Submitted unavailability preferences indexed by staff member, schedule and date
	unavailable map[unavailabilityKey][]model.StaffPreference
}

// EvaluatorInput carries the reference data an Evaluator is built from.
// Preferences must already be filtered to submitted status; draft preferences
// are invisible to the engine.
type EvaluatorInput struct {
	Schedules    []model.Schedule
	Staff        []model.StaffMember
	Roles        []model.Role
	StaffGroups  []model.StaffGroup
	Competencies *CompetencyIndex
	Preferences  []model.StaffPreference
}

// NewEvaluator builds an Evaluator from reference data
func NewEvaluator(in EvaluatorInput) *Evaluator {
	e := &Evaluator{
		schedules:    make(map[int]model.Schedule, len(in.Schedules)),
		staff:        make(map[int]model.StaffMember, len(in.Staff)),
		roles:        make(map[int]model.Role, len(in.Roles)),
		groups:       make(map[int]model.StaffGroup, len(in.StaffGroups)),
		competencies: in.Competencies,
		unavailable:  make(map[unavailabilityKey][]model.StaffPreference),
	}

	for _, s := range in.Schedules {
		e.schedules[s.ID] = s
	}
	for _, m := range in.Staff {
		e.staff[m.ID] = m
	}
	for _, r := range in.Roles {
		e.roles[r.ID] = r
	}
	for _, g := range in.StaffGroups {
		e.groups[g.ID] = g
	}
	for _, p := range in.Preferences {
		if p.Status != model.PreferenceSubmitted || p.PreferenceType != model.PreferenceUnavailable {
			continue
		}
		key := unavailabilityKey{staffMemberID: p.StaffMemberID, scheduleID: p.ScheduleID, date: p.PreferredDate}
		e.unavailable[key] = append(e.unavailable[key], p)
	}

	return e
}

// Evaluate runs the hard-constraint checks in a fixed order, short-circuiting
// on the first failure (later checks are more expensive). A nil violation
// means the candidate is accepted. The error return is reserved for malformed
// input (unparseable dates or times), which is an internal fault rather than
// a constraint rejection.
//
// Check order: referential validity, schedule editability, competency,
// hard unavailability, double-booking, consecutive-days cap, rest after
// on-call. Both the planner and the manual assignment gate go through this
// single chain, so rejection reasons are identical on both paths.
func (e *Evaluator) Evaluate(c AssignmentCandidate, roster *RosterView) (*ConstraintViolation, error) {
	if !c.ShiftType.IsValid() {
		return nil, fmt.Errorf("invalid shift type %q", c.ShiftType)
	}

	// 1. Referential validity and schedule status
	schedule, ok := e.schedules[c.ScheduleID]
	if !ok {
		return ScheduleNotFound(c.ScheduleID), nil
	}
	if schedule.Status != model.ScheduleDraft {
		return ScheduleNotEditable(schedule), nil
	}
	member, ok := e.staff[c.StaffMemberID]
	if !ok {
		return violationf(ViolationNotFound, "staff member %d does not exist", c.StaffMemberID), nil
	}
	if !member.Active {
		return violationf(ViolationNotFound, "staff member %d is inactive", c.StaffMemberID), nil
	}
	role, ok := e.roles[c.RoleID]
	if !ok {
		return violationf(ViolationNotFound, "role %d does not exist", c.RoleID), nil
	}

	// 2. Competency
	if !e.competencies.IsQualified(c.StaffMemberID, c.RoleID) {
		return violationf(ViolationLacksCompetency, "%s holds no valid competency for %s", member.DisplayName(), role.Name), nil
	}

	// 3. Hard unavailability
	key := unavailabilityKey{staffMemberID: c.StaffMemberID, scheduleID: c.ScheduleID, date: c.ShiftDate}
	for _, pref := range e.unavailable[key] {
		if pref.Matches(c.RoleID, c.ShiftType) {
			return violationf(ViolationMarkedUnavailable, "%s is marked unavailable on %s", member.DisplayName(), c.ShiftDate), nil
		}
	}

	// 4. Double-booking
	conflict, err := roster.FindOverlap(c.StaffMemberID, c.ShiftDate, c.StartTime, c.EndTime)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return violationf(ViolationTimeConflict, "%s already works %s-%s on %s", member.DisplayName(), conflict.StartTime, conflict.EndTime, conflict.ShiftDate), nil
	}

	// Workload rules only apply when the staff member belongs to a staff group
	group, hasGroup := e.memberGroup(member)
	if !hasGroup {
		return nil, nil
	}

	// 5. Consecutive-days cap
	if group.MaxConsecutiveDays != nil {
		run, err := roster.ConsecutiveRunWith(c.StaffMemberID, c.ScheduleID, c.ShiftDate)
		if err != nil {
			return nil, err
		}
		if run > *group.MaxConsecutiveDays {
			return violationf(ViolationConsecutiveDaysExceeded, "%s would work %d consecutive days (cap %d)", member.DisplayName(), run, *group.MaxConsecutiveDays), nil
		}
	}

	// 6. Mandatory rest after on-call
	if group.RequiresRestAfterOnCall {
		day, err := model.ParseDate(c.ShiftDate)
		if err != nil {
			return nil, fmt.Errorf("invalid shift date %q: %w", c.ShiftDate, err)
		}
		previous := model.FormatDate(day.AddDate(0, 0, -1))
		onCall, err := roster.OnCallEndingOn(c.StaffMemberID, previous)
		if err != nil {
			return nil, err
		}
		if onCall != nil {
			return violationf(ViolationRestRequiredAfterOnCall, "%s must rest on %s after on-call ending %s", member.DisplayName(), c.ShiftDate, previous), nil
		}
	}

	return nil, nil
}

// RoleName returns the role's name, or empty if the role is unknown
func (e *Evaluator) RoleName(roleID int) string {
	return e.roles[roleID].Name
}

func (e *Evaluator) memberGroup(member model.StaffMember) (model.StaffGroup, bool) {
	if member.StaffGroupID == nil {
		return model.StaffGroup{}, false
	}
	group, ok := e.groups[*member.StaffGroupID]
	return group, ok
}
