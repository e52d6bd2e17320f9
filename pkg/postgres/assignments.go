package postgres

import (
	"context"
	"fmt"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
)

// GetAssignmentsInWindow retrieves every committed assignment whose shift
// date falls inside [startDate, endDate], across all schedules. Callers pad
// the window by a day so wrap-past-midnight and rest rules see neighbors.
func (db *DB) GetAssignmentsInWindow(ctx context.Context, startDate, endDate string) ([]model.ScheduleAssignment, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, schedule_id, user_id, role_id,
		       to_char(shift_date, 'YYYY-MM-DD'),
		       shift_type,
		       to_char(start_time, 'HH24:MI'),
		       to_char(end_time, 'HH24:MI')
		FROM schedule_assignments
		WHERE shift_date BETWEEN $1::date AND $2::date
		ORDER BY id
	`, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.ScheduleAssignment
	for rows.Next() {
		var a model.ScheduleAssignment
		var shiftType string
		if err := rows.Scan(&a.ID, &a.ScheduleID, &a.StaffMemberID, &a.RoleID, &a.ShiftDate, &shiftType, &a.StartTime, &a.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.ShiftType = model.ShiftType(shiftType)
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}
	return assignments, nil
}

// CountScheduleAssignments counts the committed assignments attached to one
// schedule, regardless of their dates
func (db *DB) CountScheduleAssignments(ctx context.Context, scheduleID int) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM schedule_assignments WHERE schedule_id = $1
	`, scheduleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return count, nil
}

// InsertAssignments persists a batch of planner-produced assignments in one
// transaction
func (db *DB) InsertAssignments(ctx context.Context, assignments []model.ScheduleAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range assignments {
		_, err := tx.Exec(ctx, `
			INSERT INTO schedule_assignments (schedule_id, user_id, role_id, shift_date, shift_type, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, a.ScheduleID, a.StaffMemberID, a.RoleID, a.ShiftDate, string(a.ShiftType), a.StartTime, a.EndTime)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit assignments: %w", err)
	}
	return nil
}

// InsertAssignment persists one manually gated assignment and returns it
// with its generated ID
func (db *DB) InsertAssignment(ctx context.Context, a model.ScheduleAssignment) (*model.ScheduleAssignment, error) {
	err := db.pool.QueryRow(ctx, `
		INSERT INTO schedule_assignments (schedule_id, user_id, role_id, shift_date, shift_type, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, a.ScheduleID, a.StaffMemberID, a.RoleID, a.ShiftDate, string(a.ShiftType), a.StartTime, a.EndTime).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert assignment: %w", err)
	}
	return &a, nil
}
