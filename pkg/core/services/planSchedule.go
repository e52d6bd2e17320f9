package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oakfieldhealth/staff-rota/pkg/core/engine"
	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
	"github.com/oakfieldhealth/staff-rota/pkg/db"
)

// PlanScheduleResult contains the outcome of one planning pass
type PlanScheduleResult struct {
	// PlanID identifies this planning run in logs and output
	PlanID string

	ScheduleID   int
	ScheduleName string

	// Violation is set instead of plan output when the schedule is missing
	// or not editable
	Violation *engine.ConstraintViolation

	Filled    []model.ScheduleAssignment
	Unfilled  []engine.SlotRef
	TotalCost int

	// Canceled reports that the pass stopped early at a slot boundary;
	// Filled still holds the slots committed before the stop
	Canceled bool

	// Committed is false for dry runs and rejected passes
	Committed bool
}

// PlanSchedule runs a full planning pass for a draft schedule over the given
// slots and persists the filled assignments unless dryRun is set.
//
// The per-schedule lock is held for the whole pass so a concurrent manual
// assignment or second pass cannot slip a conflicting row in between the
// snapshot read and the insert. All inputs are loaded once under the lock;
// the engine itself performs no I/O.
func PlanSchedule(
	ctx context.Context,
	store db.PlanStore,
	logger *zap.Logger,
	scheduleID int,
	slots []model.Slot,
	weights engine.ScorerWeights,
	dryRun bool,
) (*PlanScheduleResult, error) {
	result := &PlanScheduleResult{
		PlanID:     uuid.NewString(),
		ScheduleID: scheduleID,
	}

	logger.Debug("Starting planning pass",
		zap.String("plan_id", result.PlanID),
		zap.Int("schedule_id", scheduleID),
		zap.Int("slot_count", len(slots)),
		zap.Bool("dry_run", dryRun))

	release, err := store.AcquireScheduleLock(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire schedule lock: %w", err)
	}
	defer release()

	inputs, err := loadEngineInputs(ctx, store, scheduleID, time.Now())
	if err != nil {
		return nil, err
	}
	if inputs.violation != nil {
		result.Violation = inputs.violation
		return result, nil
	}
	result.ScheduleName = inputs.schedule.Name

	logger.Debug("Loaded planning inputs",
		zap.Int("staff", len(inputs.staff)),
		zap.Int("roster_assignments", len(inputs.assignments)),
		zap.Int("preferences", len(inputs.preferences)))

	outcome, err := engine.Plan(ctx, engine.PlanInput{
		Schedule:  *inputs.schedule,
		Slots:     slots,
		Staff:     inputs.staff,
		Evaluator: inputs.evaluator,
		Scorer:    engine.NewPreferenceScorer(inputs.preferences, weights),
		Roster:    inputs.roster,
	})
	if err != nil {
		return nil, fmt.Errorf("planning pass failed: %w", err)
	}

	result.Filled = outcome.Filled
	result.Unfilled = outcome.Unfilled
	result.TotalCost = outcome.TotalCost
	result.Canceled = outcome.Canceled

	logger.Info("Planning pass finished",
		zap.String("plan_id", result.PlanID),
		zap.Int("filled", len(outcome.Filled)),
		zap.Int("unfilled", len(outcome.Unfilled)),
		zap.Int("total_cost", outcome.TotalCost),
		zap.Bool("canceled", outcome.Canceled))

	if dryRun || len(outcome.Filled) == 0 {
		return result, nil
	}

	if err := store.InsertAssignments(ctx, outcome.Filled); err != nil {
		return nil, fmt.Errorf("failed to persist assignments: %w", err)
	}
	result.Committed = true

	return result, nil
}

// engineInputs bundles everything loaded for one evaluation context
type engineInputs struct {
	schedule    *model.Schedule
	violation   *engine.ConstraintViolation
	staff       []model.StaffMember
	preferences []model.StaffPreference
	assignments []model.ScheduleAssignment
	evaluator   *engine.Evaluator
	roster      *engine.RosterView
}

// loadEngineInputs reads the reference snapshot for one schedule: all
// schedules (for referential checks), staff, roles, groups, competencies,
// the schedule's submitted preferences, and every assignment in the
// schedule's date window padded so cross-midnight overlap and
// rest-after-on-call see the adjacent days. Extra dates widen the window
// when a candidate falls outside the schedule's own range.
func loadEngineInputs(ctx context.Context, store db.ReferenceStore, scheduleID int, asOf time.Time, extraDates ...string) (*engineInputs, error) {
	schedules, err := store.GetSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedules: %w", err)
	}

	var schedule *model.Schedule
	for i := range schedules {
		if schedules[i].ID == scheduleID {
			schedule = &schedules[i]
			break
		}
	}
	if schedule == nil {
		return &engineInputs{violation: engine.ScheduleNotFound(scheduleID)}, nil
	}
	if schedule.Status != model.ScheduleDraft {
		return &engineInputs{violation: engine.ScheduleNotEditable(*schedule)}, nil
	}

	staff, err := store.GetStaffMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff members: %w", err)
	}
	roles, err := store.GetRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}
	groups, err := store.GetStaffGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff groups: %w", err)
	}
	competencies, err := store.GetStaffCompetencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch competencies: %w", err)
	}
	preferences, err := store.GetSubmittedPreferences(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preferences: %w", err)
	}

	windowStart, windowEnd, err := paddedWindow(schedule.StartDate, schedule.EndDate, extraDates...)
	if err != nil {
		return nil, err
	}
	assignments, err := store.GetAssignmentsInWindow(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster assignments: %w", err)
	}

	evaluator := engine.NewEvaluator(engine.EvaluatorInput{
		Schedules:    schedules,
		Staff:        staff,
		Roles:        roles,
		StaffGroups:  groups,
		Competencies: engine.BuildCompetencyIndex(competencies, asOf),
		Preferences:  preferences,
	})

	return &engineInputs{
		schedule:    schedule,
		staff:       staff,
		preferences: preferences,
		assignments: assignments,
		evaluator:   evaluator,
		roster:      engine.NewRosterView(assignments),
	}, nil
}

// paddedWindow widens a date range so boundary candidates see their
// neighbors, stretching first to cover any extra dates. The start pad is two
// days: a wrapped on-call dated D ends on D+1, so one dated two days before
// the window still forces rest on the window's first day.
func paddedWindow(startDate, endDate string, extraDates ...string) (string, string, error) {
	start, err := model.ParseDate(startDate)
	if err != nil {
		return "", "", fmt.Errorf("invalid schedule start date %q: %w", startDate, err)
	}
	end, err := model.ParseDate(endDate)
	if err != nil {
		return "", "", fmt.Errorf("invalid schedule end date %q: %w", endDate, err)
	}
	for _, extra := range extraDates {
		d, err := model.ParseDate(extra)
		if err != nil {
			return "", "", fmt.Errorf("invalid date %q: %w", extra, err)
		}
		if d.Before(start) {
			start = d
		}
		if d.After(end) {
			end = d
		}
	}
	return model.FormatDate(start.AddDate(0, 0, -2)), model.FormatDate(end.AddDate(0, 0, 1)), nil
}
