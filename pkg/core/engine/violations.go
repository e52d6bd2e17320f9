package engine

import (
	"fmt"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
)

// ViolationKind identifies which hard constraint a candidate assignment broke
type ViolationKind string

const (
	// ViolationNotFound means a referenced entity (schedule, staff member, role) does not exist
	ViolationNotFound ViolationKind = "not_found"

	// ViolationScheduleNotEditable means the schedule is not in draft status
	ViolationScheduleNotEditable ViolationKind = "schedule_not_editable"

	// ViolationLacksCompetency means the staff member holds no valid competency for the role
	ViolationLacksCompetency ViolationKind = "lacks_competency"

	// ViolationMarkedUnavailable means a submitted preference marks the staff member unavailable
	ViolationMarkedUnavailable ViolationKind = "marked_unavailable"

	// ViolationTimeConflict means the candidate's time window overlaps an existing assignment
	ViolationTimeConflict ViolationKind = "time_conflict"

	// ViolationConsecutiveDaysExceeded means the candidate would break the staff group's
	// maximum run of consecutive working days
	ViolationConsecutiveDaysExceeded ViolationKind = "consecutive_days_exceeded"

	// ViolationRestRequiredAfterOnCall means the staff member worked on-call the previous
	// day and their staff group mandates a rest day
	ViolationRestRequiredAfterOnCall ViolationKind = "rest_required_after_on_call"
)

// ConstraintViolation describes why a candidate assignment was rejected.
// Violations are routine outcomes the caller branches on, not Go errors.
type ConstraintViolation struct {
	Kind        ViolationKind
	Description string
}

func violationf(kind ViolationKind, format string, args ...any) *ConstraintViolation {
	return &ConstraintViolation{
		Kind:        kind,
		Description: fmt.Sprintf(format, args...),
	}
}

// ScheduleNotFound is the rejection for a schedule ID that resolves to
// nothing. Shared so the planner service and the evaluator word it the same.
func ScheduleNotFound(scheduleID int) *ConstraintViolation {
	return violationf(ViolationNotFound, "schedule %d does not exist", scheduleID)
}

// ScheduleNotEditable is the rejection for a schedule outside draft status
func ScheduleNotEditable(s model.Schedule) *ConstraintViolation {
	return violationf(ViolationScheduleNotEditable, "schedule %d is %s and no longer accepts assignments", s.ID, s.Status)
}
