package postgres

import (
	"context"
	"fmt"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
)

// GetStaffMembers retrieves all users with their workload and specialty
// group memberships resolved. The join tables allow several rows per user
// even though the engine works with a single governing staff group; if
// duplicates exist the strictest group wins (smallest consecutive-days cap,
// then the one mandating rest), so bad data can only over-constrain.
func (db *DB) GetStaffMembers(ctx context.Context) ([]model.StaffMember, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, first_name, last_name, is_active
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var staff []model.StaffMember
	index := make(map[int]int)
	for rows.Next() {
		var m model.StaffMember
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Active); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		index[m.ID] = len(staff)
		staff = append(staff, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	if err := db.resolveStaffGroups(ctx, staff, index); err != nil {
		return nil, err
	}
	if err := db.resolveRoleGroups(ctx, staff, index); err != nil {
		return nil, err
	}

	return staff, nil
}

type staffGroupChoice struct {
	groupID      int
	cap          *int
	requiresRest bool
}

// stricterThan prefers a defined consecutive-days cap over none and a
// smaller cap over a larger one, then the rest-after-on-call mandate
func (c staffGroupChoice) stricterThan(other staffGroupChoice) bool {
	switch {
	case c.cap != nil && other.cap == nil:
		return true
	case c.cap == nil && other.cap != nil:
		return false
	case c.cap != nil && other.cap != nil && *c.cap != *other.cap:
		return *c.cap < *other.cap
	default:
		return c.requiresRest && !other.requiresRest
	}
}

func (db *DB) resolveStaffGroups(ctx context.Context, staff []model.StaffMember, index map[int]int) error {
	rows, err := db.pool.Query(ctx, `
		SELECT usg.user_id, sg.id, sg.max_consecutive_days, sg.requires_day_off_after_oncall
		FROM user_staff_groups usg
		JOIN staff_groups sg ON sg.id = usg.staff_group_id
		ORDER BY usg.user_id, sg.id
	`)
	if err != nil {
		return fmt.Errorf("failed to query staff group memberships: %w", err)
	}
	defer rows.Close()

	chosen := make(map[int]staffGroupChoice)
	for rows.Next() {
		var userID int
		var choice staffGroupChoice
		if err := rows.Scan(&userID, &choice.groupID, &choice.cap, &choice.requiresRest); err != nil {
			return fmt.Errorf("failed to scan staff group membership: %w", err)
		}
		if current, ok := chosen[userID]; !ok || choice.stricterThan(current) {
			chosen[userID] = choice
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating staff group memberships: %w", err)
	}

	for userID, choice := range chosen {
		if i, ok := index[userID]; ok {
			groupID := choice.groupID
			staff[i].StaffGroupID = &groupID
		}
	}
	return nil
}

func (db *DB) resolveRoleGroups(ctx context.Context, staff []model.StaffMember, index map[int]int) error {
	rows, err := db.pool.Query(ctx, `
		SELECT DISTINCT ON (user_id) user_id, role_group_id
		FROM user_role_groups
		ORDER BY user_id, role_group_id
	`)
	if err != nil {
		return fmt.Errorf("failed to query role group memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, roleGroupID int
		if err := rows.Scan(&userID, &roleGroupID); err != nil {
			return fmt.Errorf("failed to scan role group membership: %w", err)
		}
		if i, ok := index[userID]; ok {
			id := roleGroupID
			staff[i].RoleGroupID = &id
		}
	}
	return rows.Err()
}

// GetStaffGroups retrieves all staff groups (workload policies)
func (db *DB) GetStaffGroups(ctx context.Context) ([]model.StaffGroup, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, name, max_consecutive_days, requires_day_off_after_oncall
		FROM staff_groups
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff groups: %w", err)
	}
	defer rows.Close()

	var groups []model.StaffGroup
	for rows.Next() {
		var g model.StaffGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.MaxConsecutiveDays, &g.RequiresRestAfterOnCall); err != nil {
			return nil, fmt.Errorf("failed to scan staff group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff groups: %w", err)
	}
	return groups, nil
}

// GetRoles retrieves all schedulable roles
func (db *DB) GetRoles(ctx context.Context) ([]model.Role, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, name, role_group_id
		FROM roles
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var r model.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.RoleGroupID); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roles: %w", err)
	}
	return roles, nil
}

// GetStaffCompetencies retrieves all competency records
func (db *DB) GetStaffCompetencies(ctx context.Context) ([]model.Competency, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT user_id, role_id, proficiency_level,
		       to_char(certified_date, 'YYYY-MM-DD'),
		       to_char(expiry_date, 'YYYY-MM-DD')
		FROM staff_competencies
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query competencies: %w", err)
	}
	defer rows.Close()

	var competencies []model.Competency
	for rows.Next() {
		var c model.Competency
		if err := rows.Scan(&c.StaffMemberID, &c.RoleID, &c.ProficiencyLevel, &c.CertifiedDate, &c.ExpiryDate); err != nil {
			return nil, fmt.Errorf("failed to scan competency: %w", err)
		}
		competencies = append(competencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competencies: %w", err)
	}
	return competencies, nil
}
