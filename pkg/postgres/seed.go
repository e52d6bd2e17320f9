package postgres

import (
	"context"
	"fmt"
)

// SeedDemoData loads a small demonstration dataset: two role groups, three
// roles, two staff groups (one with a two-day consecutive cap, one mandating
// rest after on-call), five staff members with competencies, one draft
// schedule and a handful of submitted preferences. Intended for local
// evaluation of the planner, not for production use.
func (d *DB) SeedDemoData(ctx context.Context) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	statements := []string{
		`INSERT INTO role_groups (name, description) VALUES
			('Radiologists', 'Imaging specialists'),
			('Nursing', 'Ward and theatre nursing')`,
		`INSERT INTO roles (name, description, role_group_id) VALUES
			('MRI Technician', 'Operates MRI scanners', 1),
			('CT Technician', 'Operates CT scanners', 1),
			('On-Call Radiologist', 'Overnight reporting cover', 1)`,
		`INSERT INTO staff_groups (name, description, max_consecutive_days, requires_day_off_after_oncall) VALUES
			('Doctors', 'Senior clinical staff', NULL, TRUE),
			('Technicians', 'Imaging technicians', 2, FALSE)`,
		`INSERT INTO users (email, password_hash, first_name, last_name, user_type, is_active) VALUES
			('admin@example.org', 'x', 'Ada', 'Adminson', 'admin', TRUE),
			('maya@example.org', 'x', 'Maya', 'Okafor', 'staff', TRUE),
			('tomas@example.org', 'x', 'Tomas', 'Lindqvist', 'staff', TRUE),
			('priya@example.org', 'x', 'Priya', 'Raman', 'staff', TRUE),
			('jon@example.org', 'x', 'Jon', 'Berg', 'staff', FALSE)`,
		`INSERT INTO user_staff_groups (user_id, staff_group_id) VALUES
			(2, 2), (3, 2), (4, 1)`,
		`INSERT INTO user_role_groups (user_id, role_group_id) VALUES
			(2, 1), (3, 1), (4, 1)`,
		`INSERT INTO staff_competencies (user_id, role_id, proficiency_level, certified_date, expiry_date) VALUES
			(2, 1, 4, '2023-01-10', NULL),
			(2, 2, 3, '2023-01-10', NULL),
			(3, 1, 5, '2022-06-01', NULL),
			(4, 3, 5, '2021-03-15', NULL),
			(5, 1, 2, '2020-01-01', '2021-01-01')`,
		`INSERT INTO schedules (name, start_date, end_date, status, created_by_user_id) VALUES
			('January rota', '2024-01-01', '2024-01-14', 'draft', 1)`,
		`INSERT INTO staff_preferences (user_id, schedule_id, preferred_date, role_id, shift_type, preference_type, priority, status, submitted_at) VALUES
			(2, 1, '2024-01-02', 1, NULL, 'preferred', 5, 'submitted', NOW()),
			(3, 1, '2024-01-05', NULL, NULL, 'unavailable', 3, 'submitted', NOW()),
			(4, 1, '2024-01-03', NULL, NULL, 'available', 3, 'submitted', NOW()),
			(2, 1, '2024-01-09', NULL, NULL, 'preferred', 2, 'draft', NULL)`,
	}

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit demo data: %w", err)
	}
	return nil
}
