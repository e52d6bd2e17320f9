package db

import (
	"context"
	"time"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
)

// ReferenceStore reads the reference data a planning pass or a manual
// assignment check loads once up front. Assignments are read over a date
// window rather than per schedule because double-booking and rest rules
// apply across every schedule that overlaps the dates under evaluation.
type ReferenceStore interface {
	GetSchedules(ctx context.Context) ([]model.Schedule, error)
	GetStaffMembers(ctx context.Context) ([]model.StaffMember, error)
	GetRoles(ctx context.Context) ([]model.Role, error)
	GetStaffGroups(ctx context.Context) ([]model.StaffGroup, error)
	GetStaffCompetencies(ctx context.Context) ([]model.Competency, error)
	GetSubmittedPreferences(ctx context.Context, scheduleID int) ([]model.StaffPreference, error)
	GetAssignmentsInWindow(ctx context.Context, startDate, endDate string) ([]model.ScheduleAssignment, error)
}

// ScheduleListStore supports the read-only schedule listing. Assignment
// counts go by schedule ID, not by date window, so rows dated outside the
// schedule's own range still count.
type ScheduleListStore interface {
	GetSchedules(ctx context.Context) ([]model.Schedule, error)
	CountScheduleAssignments(ctx context.Context, scheduleID int) (int, error)
}

// ScheduleLocker serializes scheduling writers on one schedule. The returned
// release function must be called when the pass or check-and-insert is done.
type ScheduleLocker interface {
	AcquireScheduleLock(ctx context.Context, scheduleID int) (release func(), err error)
}

// PlanStore is everything a planning pass needs
type PlanStore interface {
	ReferenceStore
	ScheduleLocker
	InsertAssignments(ctx context.Context, assignments []model.ScheduleAssignment) error
}

// AssignmentStore is everything the manual assignment gate needs
type AssignmentStore interface {
	ReferenceStore
	ScheduleLocker
	InsertAssignment(ctx context.Context, assignment model.ScheduleAssignment) (*model.ScheduleAssignment, error)
}

// PreferenceStore supports the bulk preference submission operation.
// MarkPreferencesSubmitted must be transactional: either every listed
// preference transitions draft to submitted for the given owner, or the call
// fails with ErrPreferenceConflict and no row changes.
type PreferenceStore interface {
	GetPreferencesByIDs(ctx context.Context, ids []int) ([]model.StaffPreference, error)
	MarkPreferencesSubmitted(ctx context.Context, ids []int, staffMemberID int, at time.Time) ([]model.StaffPreference, error)
}
