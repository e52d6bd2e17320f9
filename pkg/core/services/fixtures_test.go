package services

import (
	"context"
	"time"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
	"github.com/oakfieldhealth/staff-rota/pkg/db"
)

// fakeStore is an in-memory stand-in for the postgres store. Writes are
// recorded so tests can assert exactly what was persisted.
type fakeStore struct {
	schedules    []model.Schedule
	staff        []model.StaffMember
	roles        []model.Role
	groups       []model.StaffGroup
	competencies []model.Competency
	preferences  []model.StaffPreference
	assignments  []model.ScheduleAssignment

	insertedBatches [][]model.ScheduleAssignment
	inserted        []model.ScheduleAssignment
	submitted       []int
	lockCount       int
	releaseCount    int
	submitErr       error
}

func (f *fakeStore) GetSchedules(ctx context.Context) ([]model.Schedule, error) {
	return f.schedules, nil
}

func (f *fakeStore) GetStaffMembers(ctx context.Context) ([]model.StaffMember, error) {
	return f.staff, nil
}

func (f *fakeStore) GetRoles(ctx context.Context) ([]model.Role, error) {
	return f.roles, nil
}

func (f *fakeStore) GetStaffGroups(ctx context.Context) ([]model.StaffGroup, error) {
	return f.groups, nil
}

func (f *fakeStore) GetStaffCompetencies(ctx context.Context) ([]model.Competency, error) {
	return f.competencies, nil
}

func (f *fakeStore) GetSubmittedPreferences(ctx context.Context, scheduleID int) ([]model.StaffPreference, error) {
	var out []model.StaffPreference
	for _, p := range f.preferences {
		if p.ScheduleID == scheduleID && p.Status == model.PreferenceSubmitted {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAssignmentsInWindow(ctx context.Context, startDate, endDate string) ([]model.ScheduleAssignment, error) {
	var out []model.ScheduleAssignment
	for _, a := range f.assignments {
		if a.ShiftDate >= startDate && a.ShiftDate <= endDate {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) CountScheduleAssignments(ctx context.Context, scheduleID int) (int, error) {
	count := 0
	for _, a := range f.assignments {
		if a.ScheduleID == scheduleID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) AcquireScheduleLock(ctx context.Context, scheduleID int) (func(), error) {
	f.lockCount++
	return func() { f.releaseCount++ }, nil
}

func (f *fakeStore) InsertAssignments(ctx context.Context, assignments []model.ScheduleAssignment) error {
	f.insertedBatches = append(f.insertedBatches, assignments)
	f.assignments = append(f.assignments, assignments...)
	return nil
}

func (f *fakeStore) InsertAssignment(ctx context.Context, a model.ScheduleAssignment) (*model.ScheduleAssignment, error) {
	a.ID = len(f.assignments) + 1
	f.inserted = append(f.inserted, a)
	f.assignments = append(f.assignments, a)
	return &a, nil
}

func (f *fakeStore) GetPreferencesByIDs(ctx context.Context, ids []int) ([]model.StaffPreference, error) {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.StaffPreference
	for _, p := range f.preferences {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// MarkPreferencesSubmitted mirrors the guarded update of the real store:
// unless every listed row is still draft and owned, nothing changes.
func (f *fakeStore) MarkPreferencesSubmitted(ctx context.Context, ids []int, staffMemberID int, at time.Time) ([]model.StaffPreference, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}

	var matched []int
	for i, p := range f.preferences {
		for _, id := range ids {
			if p.ID == id && p.StaffMemberID == staffMemberID && p.Status == model.PreferenceDraft {
				matched = append(matched, i)
			}
		}
	}
	if len(matched) != len(ids) {
		return nil, db.ErrPreferenceConflict
	}

	var updated []model.StaffPreference
	for _, i := range matched {
		f.preferences[i].Status = model.PreferenceSubmitted
		stamp := at
		f.preferences[i].SubmittedAt = &stamp
		f.submitted = append(f.submitted, f.preferences[i].ID)
		updated = append(updated, f.preferences[i])
	}
	return updated, nil
}

func intPtr(n int) *int { return &n }

// clinicStore is a draft schedule with two MRI-qualified technicians and one
// configured slot's worth of demand
func clinicStore() *fakeStore {
	return &fakeStore{
		schedules: []model.Schedule{
			{ID: 1, Name: "January rota", StartDate: "2024-01-01", EndDate: "2024-01-14", Status: model.ScheduleDraft},
			{ID: 2, Name: "December rota", StartDate: "2023-12-01", EndDate: "2023-12-31", Status: model.SchedulePublished},
		},
		staff: []model.StaffMember{
			{ID: 1, FirstName: "Maya", LastName: "Okafor", Active: true},
			{ID: 2, FirstName: "Tomas", LastName: "Lindqvist", Active: true},
		},
		roles: []model.Role{
			{ID: 1, Name: "MRI Technician"},
		},
		competencies: []model.Competency{
			{StaffMemberID: 1, RoleID: 1, ProficiencyLevel: 4},
			{StaffMemberID: 2, RoleID: 1, ProficiencyLevel: 5},
		},
	}
}
