package services

import (
	"context"
	"fmt"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/oakfieldhealth/staff-rota/internal/config"
	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
	"github.com/oakfieldhealth/staff-rota/pkg/db"
)

// ExpandCoverageRules turns configured coverage rules into concrete shift
// slots over a schedule's date range. Each rule is a recurrence (rrule) plus
// a role, shift type and time window; every occurrence inside the range
// becomes one slot. The engine never invents coverage needs, so this is the
// only place slots come from in the CLI.
func ExpandCoverageRules(rules []config.CoverageRule, schedule model.Schedule, roles []model.Role) ([]model.Slot, error) {
	start, err := model.ParseDate(schedule.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule start date %q: %w", schedule.StartDate, err)
	}
	end, err := model.ParseDate(schedule.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule end date %q: %w", schedule.EndDate, err)
	}

	rolesByName := make(map[string]model.Role, len(roles))
	for _, role := range roles {
		rolesByName[role.Name] = role
	}

	var slots []model.Slot
	for i, cr := range rules {
		role, ok := rolesByName[cr.Role]
		if !ok {
			return nil, fmt.Errorf("coverage rule %d references unknown role %q", i, cr.Role)
		}

		rule, err := rrule.StrToRRule(cr.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for coverage rule %d: %w", i, err)
		}
		rule.DTStart(start)

		for _, occurrence := range rule.Between(start, end, true) {
			slots = append(slots, model.Slot{
				ScheduleID: schedule.ID,
				Date:       model.FormatDate(occurrence),
				RoleID:     role.ID,
				ShiftType:  model.ShiftType(cr.ShiftType),
				StartTime:  cr.StartTime,
				EndTime:    cr.EndTime,
			})
		}
	}

	return slots, nil
}

// ScheduleSummary is one row of the schedule listing
type ScheduleSummary struct {
	Schedule        model.Schedule
	AssignmentCount int
}

// ListSchedules returns every schedule with its committed assignment count
func ListSchedules(ctx context.Context, store db.ScheduleListStore, logger *zap.Logger) ([]ScheduleSummary, error) {
	schedules, err := store.GetSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedules: %w", err)
	}
	logger.Debug("Found schedules", zap.Int("count", len(schedules)))

	summaries := make([]ScheduleSummary, 0, len(schedules))
	for _, s := range schedules {
		count, err := store.CountScheduleAssignments(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count assignments for schedule %d: %w", s.ID, err)
		}
		summaries = append(summaries, ScheduleSummary{Schedule: s, AssignmentCount: count})
	}

	return summaries, nil
}
