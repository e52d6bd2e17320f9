package engine

import (
	"time"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
)

type competencyKey struct {
	staffMemberID int
	roleID        int
}

type competencyEntry struct {
	proficiencyLevel int
}

// CompetencyIndex answers qualification queries for (staff member, role) pairs.
// It is built once per planning pass from raw competency rows; absence of an
// entry is a valid "not qualified" answer, not a fault.
type CompetencyIndex struct {
	entries map[competencyKey]competencyEntry
}

// BuildCompetencyIndex builds the index from competency rows, judged at the
// reference date asOf. A row is valid if its expiry date is unset or asOf is
// on or before it (date granularity).
//
// The schema does not enforce one row per (staff member, role). If duplicates
// exist, the valid row with the highest proficiency level wins; rows that have
// expired never qualify regardless of proficiency.
func BuildCompetencyIndex(rows []model.Competency, asOf time.Time) *CompetencyIndex {
	idx := &CompetencyIndex{
		entries: make(map[competencyKey]competencyEntry, len(rows)),
	}

	day := asOf.UTC().Truncate(24 * time.Hour)

	for _, row := range rows {
		if !competencyValidAt(row, day) {
			continue
		}

		key := competencyKey{staffMemberID: row.StaffMemberID, roleID: row.RoleID}
		if existing, ok := idx.entries[key]; ok && existing.proficiencyLevel >= row.ProficiencyLevel {
			continue
		}
		idx.entries[key] = competencyEntry{proficiencyLevel: row.ProficiencyLevel}
	}

	return idx
}

func competencyValidAt(row model.Competency, day time.Time) bool {
	if row.ExpiryDate == nil {
		return true
	}
	expiry, err := model.ParseDate(*row.ExpiryDate)
	if err != nil {
		// Unparseable expiry dates are treated as expired rather than
		// letting a malformed row grant an open-ended qualification
		return false
	}
	return !day.After(expiry)
}

// IsQualified reports whether the staff member holds a currently valid
// competency for the role
func (idx *CompetencyIndex) IsQualified(staffMemberID, roleID int) bool {
	_, ok := idx.entries[competencyKey{staffMemberID: staffMemberID, roleID: roleID}]
	return ok
}

// Proficiency returns the proficiency level for a qualified pair.
// The second return is false if the staff member is not qualified.
func (idx *CompetencyIndex) Proficiency(staffMemberID, roleID int) (int, bool) {
	entry, ok := idx.entries[competencyKey{staffMemberID: staffMemberID, roleID: roleID}]
	if !ok {
		return 0, false
	}
	return entry.proficiencyLevel, true
}
