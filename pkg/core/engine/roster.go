package engine

import (
	"fmt"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
)

const minutesPerDay = 24 * 60

// RosterView is a read-only snapshot of committed assignments, indexed per
// staff member. It is an explicit value rather than ambient state: the planner
// owns a mutable copy during one pass, the manual gate builds one under the
// schedule lock. It must contain assignments from every schedule overlapping
// the dates being evaluated, since double-booking and rest rules cross
// schedule boundaries.
type RosterView struct {
	byStaff map[int][]model.ScheduleAssignment
}

// NewRosterView builds a roster snapshot from committed assignments
func NewRosterView(assignments []model.ScheduleAssignment) *RosterView {
	r := &RosterView{byStaff: make(map[int][]model.ScheduleAssignment)}
	for _, a := range assignments {
		r.Add(a)
	}
	return r
}

// Add commits an assignment into the view. Used by the planner so that each
// slot decision sees the slots already filled in the same pass.
func (r *RosterView) Add(a model.ScheduleAssignment) {
	r.byStaff[a.StaffMemberID] = append(r.byStaff[a.StaffMemberID], a)
}

// AssignmentsFor returns the staff member's assignments in the snapshot
func (r *RosterView) AssignmentsFor(staffMemberID int) []model.ScheduleAssignment {
	return r.byStaff[staffMemberID]
}

// ScheduleAssignmentCount counts the staff member's assignments within one
// schedule. Used by the planner's load-balancing tie-break.
func (r *RosterView) ScheduleAssignmentCount(staffMemberID, scheduleID int) int {
	count := 0
	for _, a := range r.byStaff[staffMemberID] {
		if a.ScheduleID == scheduleID {
			count++
		}
	}
	return count
}

// absoluteInterval converts a shift on a calendar date into an absolute
// half-open minute interval. An end time earlier than the start time means
// the shift wraps past midnight into the next calendar day.
func absoluteInterval(date, startTime, endTime string) (int64, int64, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid shift date %q: %w", date, err)
	}
	start, err := model.ParseClock(startTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start time %q: %w", startTime, err)
	}
	end, err := model.ParseClock(endTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end time %q: %w", endTime, err)
	}

	base := day.Unix() / 60
	absStart := base + int64(start)
	absEnd := base + int64(end)
	if end < start {
		absEnd += minutesPerDay
	}
	return absStart, absEnd, nil
}

// FindOverlap returns the first existing assignment for the staff member whose
// time interval intersects [startTime, endTime) on the given date, or nil if
// none does. Wrap-past-midnight shifts are compared on the absolute timeline,
// so an overnight on-call collides with a shift starting the next morning.
func (r *RosterView) FindOverlap(staffMemberID int, date, startTime, endTime string) (*model.ScheduleAssignment, error) {
	candStart, candEnd, err := absoluteInterval(date, startTime, endTime)
	if err != nil {
		return nil, err
	}

	for i := range r.byStaff[staffMemberID] {
		a := r.byStaff[staffMemberID][i]
		aStart, aEnd, err := absoluteInterval(a.ShiftDate, a.StartTime, a.EndTime)
		if err != nil {
			return nil, err
		}
		if candStart < aEnd && aStart < candEnd {
			return &a, nil
		}
	}
	return nil, nil
}

// ConsecutiveRunWith computes the length of the maximal run of consecutive
// calendar days worked within one schedule, assuming the candidate date is
// added to the staff member's existing assignment dates.
func (r *RosterView) ConsecutiveRunWith(staffMemberID, scheduleID int, candidateDate string) (int, error) {
	day, err := model.ParseDate(candidateDate)
	if err != nil {
		return 0, fmt.Errorf("invalid candidate date %q: %w", candidateDate, err)
	}

	worked := make(map[string]bool)
	for _, a := range r.byStaff[staffMemberID] {
		if a.ScheduleID == scheduleID {
			worked[a.ShiftDate] = true
		}
	}

	run := 1
	for d := day.AddDate(0, 0, -1); worked[model.FormatDate(d)]; d = d.AddDate(0, 0, -1) {
		run++
	}
	for d := day.AddDate(0, 0, 1); worked[model.FormatDate(d)]; d = d.AddDate(0, 0, 1) {
		run++
	}
	return run, nil
}

// OnCallEndingOn returns an on-call assignment for the staff member whose
// shift ends on the given calendar day, or nil. An overnight on-call dated D
// with a wrapped end time ends on D+1.
func (r *RosterView) OnCallEndingOn(staffMemberID int, date string) (*model.ScheduleAssignment, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	target := model.FormatDate(day)

	for i := range r.byStaff[staffMemberID] {
		a := r.byStaff[staffMemberID][i]
		if a.ShiftType != model.ShiftOnCall {
			continue
		}
		endDay, err := shiftEndDay(a)
		if err != nil {
			return nil, err
		}
		if endDay == target {
			return &a, nil
		}
	}
	return nil, nil
}

func shiftEndDay(a model.ScheduleAssignment) (string, error) {
	day, err := model.ParseDate(a.ShiftDate)
	if err != nil {
		return "", fmt.Errorf("invalid shift date %q: %w", a.ShiftDate, err)
	}
	start, err := model.ParseClock(a.StartTime)
	if err != nil {
		return "", fmt.Errorf("invalid start time %q: %w", a.StartTime, err)
	}
	end, err := model.ParseClock(a.EndTime)
	if err != nil {
		return "", fmt.Errorf("invalid end time %q: %w", a.EndTime, err)
	}
	if end < start {
		day = day.AddDate(0, 0, 1)
	}
	return model.FormatDate(day), nil
}
