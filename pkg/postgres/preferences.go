package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
	"github.com/oakfieldhealth/staff-rota/pkg/db"
)

const preferenceColumns = `
	id, user_id, schedule_id,
	to_char(preferred_date, 'YYYY-MM-DD'),
	role_id, shift_type, preference_type, priority, status,
	COALESCE(notes, ''), submitted_at
`

func scanPreference(row interface{ Scan(...any) error }) (model.StaffPreference, error) {
	var p model.StaffPreference
	var shiftType *string
	var prefType, status string
	err := row.Scan(&p.ID, &p.StaffMemberID, &p.ScheduleID, &p.PreferredDate,
		&p.RoleID, &shiftType, &prefType, &p.Priority, &status, &p.Notes, &p.SubmittedAt)
	if err != nil {
		return model.StaffPreference{}, err
	}
	if shiftType != nil {
		st := model.ShiftType(*shiftType)
		p.ShiftType = &st
	}
	p.PreferenceType = model.PreferenceType(prefType)
	p.Status = model.PreferenceStatus(status)
	return p, nil
}

// GetSubmittedPreferences retrieves the submitted preferences for one
// schedule. Draft preferences stay invisible to planning.
func (d *DB) GetSubmittedPreferences(ctx context.Context, scheduleID int) ([]model.StaffPreference, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+preferenceColumns+`
		FROM staff_preferences
		WHERE schedule_id = $1 AND status = 'submitted'
		ORDER BY id
	`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var prefs []model.StaffPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preferences: %w", err)
	}
	return prefs, nil
}

// GetPreferencesByIDs retrieves preferences by ID, in any status
func (d *DB) GetPreferencesByIDs(ctx context.Context, ids []int) ([]model.StaffPreference, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+preferenceColumns+`
		FROM staff_preferences
		WHERE id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var prefs []model.StaffPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preferences: %w", err)
	}
	return prefs, nil
}

// MarkPreferencesSubmitted transitions the listed draft preferences to
// submitted for the given owner, stamping the submission time. The update is
// guarded: unless every listed row matched (still draft, still owned), the
// transaction rolls back and ErrPreferenceConflict is returned, leaving all
// rows untouched.
func (d *DB) MarkPreferencesSubmitted(ctx context.Context, ids []int, staffMemberID int, at time.Time) ([]model.StaffPreference, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		UPDATE staff_preferences
		SET status = 'submitted', submitted_at = $3, updated_at = NOW()
		WHERE id = ANY($1) AND user_id = $2 AND status = 'draft'
		RETURNING `+preferenceColumns+`
	`, ids, staffMemberID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	var updated []model.StaffPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan updated preference: %w", err)
		}
		updated = append(updated, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating updated preferences: %w", err)
	}

	if len(updated) != len(ids) {
		// Deliberate rollback via the deferred handler
		return nil, db.ErrPreferenceConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit preference submission: %w", err)
	}
	return updated, nil
}
