package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
)

// plannerInput wires a minimal two-person department: staff 1 is qualified
// for MRI and CT, staff 2 for MRI only. No workload groups, so only
// competency, unavailability and double-booking apply.
func plannerInput(t *testing.T, slots []model.Slot, preferences []model.StaffPreference, existing []model.ScheduleAssignment) PlanInput {
	t.Helper()
	staff := []model.StaffMember{
		{ID: 1, FirstName: "Maya", LastName: "Okafor", Active: true},
		{ID: 2, FirstName: "Tomas", LastName: "Lindqvist", Active: true},
		{ID: 3, FirstName: "Jon", LastName: "Berg", Active: false},
	}
	evaluator := NewEvaluator(EvaluatorInput{
		Schedules: []model.Schedule{
			{ID: 1, Name: "January rota", StartDate: "2024-01-01", EndDate: "2024-01-14", Status: model.ScheduleDraft},
		},
		Staff: staff,
		Roles: []model.Role{
			{ID: 1, Name: "MRI Technician"},
			{ID: 2, Name: "CT Technician"},
		},
		Competencies: BuildCompetencyIndex([]model.Competency{
			{StaffMemberID: 1, RoleID: 1, ProficiencyLevel: 4},
			{StaffMemberID: 1, RoleID: 2, ProficiencyLevel: 4},
			{StaffMemberID: 2, RoleID: 1, ProficiencyLevel: 5},
			{StaffMemberID: 3, RoleID: 1, ProficiencyLevel: 5},
		}, mustDate(t, "2024-01-01")),
		Preferences: preferences,
	})
	return PlanInput{
		Schedule:  model.Schedule{ID: 1, Name: "January rota", StartDate: "2024-01-01", EndDate: "2024-01-14", Status: model.ScheduleDraft},
		Slots:     slots,
		Staff:     staff,
		Evaluator: evaluator,
		Scorer:    NewPreferenceScorer(preferences, DefaultScorerWeights()),
		Roster:    NewRosterView(existing),
	}
}

func daySlot(date string, roleID int) model.Slot {
	return model.Slot{
		ScheduleID: 1,
		Date:       date,
		RoleID:     roleID,
		ShiftType:  model.ShiftRegular,
		StartTime:  "09:00",
		EndTime:    "17:00",
	}
}

func TestPlan_AssignsPreferredStaff(t *testing.T) {
	prefs := []model.StaffPreference{
		{ID: 1, StaffMemberID: 2, ScheduleID: 1, PreferredDate: "2024-01-05",
			PreferenceType: model.PreferencePreferred, Priority: 5, Status: model.PreferenceSubmitted},
	}
	in := plannerInput(t, []model.Slot{daySlot("2024-01-05", 1)}, prefs, nil)

	outcome, err := Plan(context.Background(), in)
	assert.NoError(t, err)
	assert.Len(t, outcome.Filled, 1)
	assert.Empty(t, outcome.Unfilled)
	assert.Equal(t, 2, outcome.Filled[0].StaffMemberID, "The staff member who asked for the date should get it")
	assert.Equal(t, -5, outcome.TotalCost)
	assert.False(t, outcome.Canceled)
}

func TestPlan_ScarcestSlotFilledFirst(t *testing.T) {
	// Both slots run at the same time, so one person cannot take both.
	// Only staff 1 can do CT; if the MRI slot were filled first it would take
	// staff 1 (lowest ID on a cost tie) and leave CT unfillable.
	slots := []model.Slot{
		daySlot("2024-01-05", 1),
		daySlot("2024-01-05", 2),
	}
	in := plannerInput(t, slots, nil, nil)

	outcome, err := Plan(context.Background(), in)
	assert.NoError(t, err)
	assert.Len(t, outcome.Filled, 2)
	assert.Empty(t, outcome.Unfilled)

	byRole := map[int]int{}
	for _, a := range outcome.Filled {
		byRole[a.RoleID] = a.StaffMemberID
	}
	assert.Equal(t, 1, byRole[2], "The CT slot only staff 1 can fill must go to staff 1")
	assert.Equal(t, 2, byRole[1], "The MRI slot then falls to staff 2")
}

func TestPlan_UnfilledWhenNoCandidatePasses(t *testing.T) {
	prefs := []model.StaffPreference{
		{ID: 1, StaffMemberID: 1, ScheduleID: 1, PreferredDate: "2024-01-05",
			PreferenceType: model.PreferenceUnavailable, Priority: 3, Status: model.PreferenceSubmitted},
		{ID: 2, StaffMemberID: 2, ScheduleID: 1, PreferredDate: "2024-01-05",
			PreferenceType: model.PreferenceUnavailable, Priority: 3, Status: model.PreferenceSubmitted},
	}
	in := plannerInput(t, []model.Slot{daySlot("2024-01-05", 1)}, prefs, nil)

	outcome, err := Plan(context.Background(), in)
	assert.NoError(t, err, "An unfillable slot is a reportable outcome, not a failure")
	assert.Empty(t, outcome.Filled)
	assert.Len(t, outcome.Unfilled, 1)
	assert.Equal(t, "MRI Technician", outcome.Unfilled[0].RoleName)
}

func TestPlan_LoadBalanceTieBreak(t *testing.T) {
	existing := []model.ScheduleAssignment{
		{ID: 1, ScheduleID: 1, StaffMemberID: 1, ShiftDate: "2024-01-02", ShiftType: model.ShiftRegular, StartTime: "09:00", EndTime: "17:00"},
	}
	in := plannerInput(t, []model.Slot{daySlot("2024-01-05", 1)}, nil, existing)

	outcome, err := Plan(context.Background(), in)
	assert.NoError(t, err)
	assert.Len(t, outcome.Filled, 1)
	assert.Equal(t, 2, outcome.Filled[0].StaffMemberID, "On equal cost the less-loaded staff member wins")
}

func TestPlan_LowestIDWinsFinalTieBreak(t *testing.T) {
	in := plannerInput(t, []model.Slot{daySlot("2024-01-05", 1)}, nil, nil)

	outcome, err := Plan(context.Background(), in)
	assert.NoError(t, err)
	assert.Len(t, outcome.Filled, 1)
	assert.Equal(t, 1, outcome.Filled[0].StaffMemberID)
}

func TestPlan_CommitBeforeNextSlot(t *testing.T) {
	// Two identical overlapping slots: the second decision must see the first
	// winner already on the roster and pick someone else
	slots := []model.Slot{
		daySlot("2024-01-05", 1),
		daySlot("2024-01-05", 1),
	}
	in := plannerInput(t, slots, nil, nil)

	outcome, err := Plan(context.Background(), in)
	assert.NoError(t, err)
	assert.Len(t, outcome.Filled, 2)
	assert.NotEqual(t, outcome.Filled[0].StaffMemberID, outcome.Filled[1].StaffMemberID)
}

func TestPlan_DeterministicForIdenticalInputs(t *testing.T) {
	slots := []model.Slot{
		daySlot("2024-01-03", 1),
		daySlot("2024-01-04", 1),
		daySlot("2024-01-05", 2),
	}
	prefs := []model.StaffPreference{
		{ID: 1, StaffMemberID: 2, ScheduleID: 1, PreferredDate: "2024-01-04",
			PreferenceType: model.PreferencePreferred, Priority: 2, Status: model.PreferenceSubmitted},
	}

	first, err := Plan(context.Background(), plannerInput(t, slots, prefs, nil))
	assert.NoError(t, err)
	second, err := Plan(context.Background(), plannerInput(t, slots, prefs, nil))
	assert.NoError(t, err)

	assert.Equal(t, first, second, "Two passes over identical inputs must produce identical plans")
}

func TestPlan_CancellationReturnsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slots := []model.Slot{
		daySlot("2024-01-03", 1),
		daySlot("2024-01-04", 1),
	}
	in := plannerInput(t, slots, nil, nil)

	outcome, err := Plan(ctx, in)
	assert.NoError(t, err, "Cancellation is not an error; the partial outcome reports it")
	assert.True(t, outcome.Canceled)
	assert.Empty(t, outcome.Filled)
	assert.Len(t, outcome.Unfilled, 2, "Slots not reached are reported unfilled")
}

func TestPlan_InactiveStaffNeverConsidered(t *testing.T) {
	// Staff 3 is inactive; qualification alone must not bring them back
	in := plannerInput(t, []model.Slot{daySlot("2024-01-05", 1)}, nil, nil)

	outcome, err := Plan(context.Background(), in)
	assert.NoError(t, err)
	for _, a := range outcome.Filled {
		assert.NotEqual(t, 3, a.StaffMemberID)
	}
}
