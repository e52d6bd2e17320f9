package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
)

func intPtr(n int) *int { return &n }

// testEvaluator builds an evaluator over a small clinic: Maya and Tomas are
// technicians capped at two consecutive days, Priya is a doctor who must rest
// after on-call, and Jon is inactive. Maya and Tomas hold the MRI competency,
// Priya holds the on-call one.
func testEvaluator(t *testing.T, preferences []model.StaffPreference) *Evaluator {
	t.Helper()
	return NewEvaluator(EvaluatorInput{
		Schedules: []model.Schedule{
			{ID: 1, Name: "January rota", StartDate: "2024-01-01", EndDate: "2024-01-14", Status: model.ScheduleDraft},
			{ID: 2, Name: "December rota", StartDate: "2023-12-01", EndDate: "2023-12-31", Status: model.SchedulePublished},
		},
		Staff: []model.StaffMember{
			{ID: 1, FirstName: "Maya", LastName: "Okafor", Active: true, StaffGroupID: intPtr(2)},
			{ID: 2, FirstName: "Tomas", LastName: "Lindqvist", Active: true, StaffGroupID: intPtr(2)},
			{ID: 3, FirstName: "Priya", LastName: "Raman", Active: true, StaffGroupID: intPtr(1)},
			{ID: 4, FirstName: "Jon", LastName: "Berg", Active: false, StaffGroupID: intPtr(2)},
			{ID: 5, FirstName: "Sam", LastName: "Free", Active: true},
		},
		Roles: []model.Role{
			{ID: 1, Name: "MRI Technician"},
			{ID: 2, Name: "CT Technician"},
			{ID: 3, Name: "On-Call Radiologist"},
		},
		StaffGroups: []model.StaffGroup{
			{ID: 1, Name: "Doctors", RequiresRestAfterOnCall: true},
			{ID: 2, Name: "Technicians", MaxConsecutiveDays: intPtr(2)},
		},
		Competencies: BuildCompetencyIndex([]model.Competency{
			{StaffMemberID: 1, RoleID: 1, ProficiencyLevel: 4},
			{StaffMemberID: 2, RoleID: 1, ProficiencyLevel: 5},
			{StaffMemberID: 3, RoleID: 3, ProficiencyLevel: 5},
			{StaffMemberID: 4, RoleID: 1, ProficiencyLevel: 3},
			{StaffMemberID: 5, RoleID: 1, ProficiencyLevel: 3},
		}, mustDate(t, "2024-01-01")),
		Preferences: preferences,
	})
}

func mriCandidate(staffID int, date string) AssignmentCandidate {
	return AssignmentCandidate{
		ScheduleID:    1,
		StaffMemberID: staffID,
		RoleID:        1,
		ShiftDate:     date,
		ShiftType:     model.ShiftRegular,
		StartTime:     "09:00",
		EndTime:       "17:00",
	}
}

func TestEvaluate_AcceptsQualifiedCandidate(t *testing.T) {
	e := testEvaluator(t, nil)

	violation, err := e.Evaluate(mriCandidate(1, "2024-01-05"), NewRosterView(nil))
	assert.NoError(t, err)
	assert.Nil(t, violation)
}

func TestEvaluate_UnknownSchedule(t *testing.T) {
	e := testEvaluator(t, nil)

	c := mriCandidate(1, "2024-01-05")
	c.ScheduleID = 99
	violation, err := e.Evaluate(c, NewRosterView(nil))
	assert.NoError(t, err)
	assert.NotNil(t, violation)
	assert.Equal(t, ViolationNotFound, violation.Kind)
}

func TestEvaluate_PublishedScheduleNotEditable(t *testing.T) {
	e := testEvaluator(t, nil)

	c := mriCandidate(1, "2023-12-05")
	c.ScheduleID = 2
	violation, err := e.Evaluate(c, NewRosterView(nil))
	assert.NoError(t, err)
	assert.NotNil(t, violation)
	assert.Equal(t, ViolationScheduleNotEditable, violation.Kind)
}

func TestEvaluate_InactiveStaffRejected(t *testing.T) {
	e := testEvaluator(t, nil)

	violation, err := e.Evaluate(mriCandidate(4, "2024-01-05"), NewRosterView(nil))
	assert.NoError(t, err)
	assert.NotNil(t, violation)
	assert.Equal(t, ViolationNotFound, violation.Kind)
}

func TestEvaluate_LacksCompetency(t *testing.T) {
	e := testEvaluator(t, nil)

	c := mriCandidate(1, "2024-01-05")
	c.RoleID = 3 // Maya holds no on-call competency
	violation, err := e.Evaluate(c, NewRosterView(nil))
	assert.NoError(t, err)
	assert.NotNil(t, violation)
	assert.Equal(t, ViolationLacksCompetency, violation.Kind)
}

func TestEvaluate_MarkedUnavailable(t *testing.T) {
	e := testEvaluator(t, []model.StaffPreference{
		// Blanket unavailability: no role, no shift type
		{ID: 1, StaffMemberID: 1, ScheduleID: 1, PreferredDate: "2024-01-05",
			PreferenceType: model.PreferenceUnavailable, Priority: 3, Status: model.PreferenceSubmitted},
	})

	violation, err := e.Evaluate(mriCandidate(1, "2024-01-05"), NewRosterView(nil))
	assert.NoError(t, err)
	assert.NotNil(t, violation)
	assert.Equal(t, ViolationMarkedUnavailable, violation.Kind)

	// A different date is unaffected
	violation, err = e.Evaluate(mriCandidate(1, "2024-01-06"), NewRosterView(nil))
	assert.NoError(t, err)
	assert.Nil(t, violation)
}

func TestEvaluate_RoleScopedUnavailabilityOnlyVetoesThatRole(t *testing.T) {
	e := testEvaluator(t, []model.StaffPreference{
		{ID: 1, StaffMemberID: 2, ScheduleID: 1, PreferredDate: "2024-01-05", RoleID: intPtr(3),
			PreferenceType: model.PreferenceUnavailable, Priority: 3, Status: model.PreferenceSubmitted},
	})

	// Tomas said he can't do on-call on the 5th; MRI work is still fine
	violation, err := e.Evaluate(mriCandidate(2, "2024-01-05"), NewRosterView(nil))
	assert.NoError(t, err)
	assert.Nil(t, violation)
}

func TestEvaluate_DraftUnavailabilityIsInvisible(t *testing.T) {
	e := testEvaluator(t, []model.StaffPreference{
		{ID: 1, StaffMemberID: 1, ScheduleID: 1, PreferredDate: "2024-01-05",
			PreferenceType: model.PreferenceUnavailable, Priority: 3, Status: model.PreferenceDraft},
	})

	violation, err := e.Evaluate(mriCandidate(1, "2024-01-05"), NewRosterView(nil))
	assert.NoError(t, err)
	assert.Nil(t, violation, "Draft preferences must not constrain planning")
}

func TestEvaluate_TimeConflictAcrossMidnight(t *testing.T) {
	e := testEvaluator(t, nil)
	roster := NewRosterView([]model.ScheduleAssignment{
		{ID: 1, ScheduleID: 2, StaffMemberID: 1, ShiftDate: "2024-01-04", ShiftType: model.ShiftOnCall, StartTime: "18:00", EndTime: "08:00"},
	})

	// The existing overnight shift belongs to another schedule but still blocks
	c := mriCandidate(1, "2024-01-05")
	c.StartTime = "07:00"
	c.EndTime = "15:00"
	violation, err := e.Evaluate(c, roster)
	assert.NoError(t, err)
	assert.NotNil(t, violation)
	assert.Equal(t, ViolationTimeConflict, violation.Kind)
}

func TestEvaluate_ConsecutiveDaysCap(t *testing.T) {
	e := testEvaluator(t, nil)
	roster := NewRosterView([]model.ScheduleAssignment{
		{ID: 1, ScheduleID: 1, StaffMemberID: 1, ShiftDate: "2024-01-02", ShiftType: model.ShiftRegular, StartTime: "09:00", EndTime: "17:00"},
		{ID: 2, ScheduleID: 1, StaffMemberID: 1, ShiftDate: "2024-01-03", ShiftType: model.ShiftRegular, StartTime: "09:00", EndTime: "17:00"},
	})

	// A third consecutive day breaks the technicians' cap of two
	violation, err := e.Evaluate(mriCandidate(1, "2024-01-04"), roster)
	assert.NoError(t, err)
	assert.NotNil(t, violation)
	assert.Equal(t, ViolationConsecutiveDaysExceeded, violation.Kind)

	// A day with a gap before it starts a new run
	violation, err = e.Evaluate(mriCandidate(1, "2024-01-05"), roster)
	assert.NoError(t, err)
	assert.Nil(t, violation)
}

func TestEvaluate_RestRequiredAfterOnCall(t *testing.T) {
	e := testEvaluator(t, nil)
	roster := NewRosterView([]model.ScheduleAssignment{
		// Priya's on-call dated the 5th wraps and ends the morning of the 6th
		{ID: 1, ScheduleID: 1, StaffMemberID: 3, ShiftDate: "2024-01-05", ShiftType: model.ShiftOnCall, StartTime: "20:00", EndTime: "08:00"},
	})

	c := AssignmentCandidate{
		ScheduleID: 1, StaffMemberID: 3, RoleID: 3, ShiftDate: "2024-01-07",
		ShiftType: model.ShiftOnCall, StartTime: "20:00", EndTime: "08:00",
	}
	violation, err := e.Evaluate(c, roster)
	assert.NoError(t, err)
	assert.NotNil(t, violation, "The day after the on-call ends is a mandatory rest day")
	assert.Equal(t, ViolationRestRequiredAfterOnCall, violation.Kind)

	c.ShiftDate = "2024-01-08"
	violation, err = e.Evaluate(c, roster)
	assert.NoError(t, err)
	assert.Nil(t, violation, "Two days after the on-call ended is allowed again")
}

func TestEvaluate_NoStaffGroupSkipsWorkloadRules(t *testing.T) {
	e := testEvaluator(t, nil)
	roster := NewRosterView([]model.ScheduleAssignment{
		{ID: 1, ScheduleID: 1, StaffMemberID: 5, ShiftDate: "2024-01-02", ShiftType: model.ShiftRegular, StartTime: "09:00", EndTime: "17:00"},
		{ID: 2, ScheduleID: 1, StaffMemberID: 5, ShiftDate: "2024-01-03", ShiftType: model.ShiftRegular, StartTime: "09:00", EndTime: "17:00"},
		{ID: 3, ScheduleID: 1, StaffMemberID: 5, ShiftDate: "2024-01-04", ShiftType: model.ShiftRegular, StartTime: "09:00", EndTime: "17:00"},
	})

	violation, err := e.Evaluate(mriCandidate(5, "2024-01-05"), roster)
	assert.NoError(t, err)
	assert.Nil(t, violation, "Without a staff group no consecutive-days cap applies")
}

func TestEvaluate_CompetencyCheckedBeforeUnavailability(t *testing.T) {
	e := testEvaluator(t, []model.StaffPreference{
		{ID: 1, StaffMemberID: 1, ScheduleID: 1, PreferredDate: "2024-01-05",
			PreferenceType: model.PreferenceUnavailable, Priority: 3, Status: model.PreferenceSubmitted},
	})

	// Maya is both unqualified for on-call and unavailable; the chain
	// short-circuits on the earlier check
	c := mriCandidate(1, "2024-01-05")
	c.RoleID = 3
	violation, err := e.Evaluate(c, NewRosterView(nil))
	assert.NoError(t, err)
	assert.NotNil(t, violation)
	assert.Equal(t, ViolationLacksCompetency, violation.Kind)
}

func TestEvaluate_InvalidShiftTypeIsAnError(t *testing.T) {
	e := testEvaluator(t, nil)

	c := mriCandidate(1, "2024-01-05")
	c.ShiftType = "night"
	_, err := e.Evaluate(c, NewRosterView(nil))
	assert.Error(t, err, "Malformed input is an internal fault, not a constraint rejection")
}
