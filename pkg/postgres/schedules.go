package postgres

import (
	"context"
	"fmt"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
)

// GetSchedules retrieves all schedules
func (db *DB) GetSchedules(ctx context.Context) ([]model.Schedule, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, name,
		       to_char(start_date, 'YYYY-MM-DD'),
		       to_char(end_date, 'YYYY-MM-DD'),
		       status, published_at
		FROM schedules
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []model.Schedule
	for rows.Next() {
		var s model.Schedule
		var status string
		if err := rows.Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &status, &s.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		s.Status = model.ScheduleStatus(status)
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}
	return schedules, nil
}
