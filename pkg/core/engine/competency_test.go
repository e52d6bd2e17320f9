package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
)

func strPtr(s string) *string { return &s }

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	assert.NoError(t, err)
	return d
}

func TestBuildCompetencyIndex_NoExpiryAlwaysValid(t *testing.T) {
	rows := []model.Competency{
		{StaffMemberID: 1, RoleID: 1, ProficiencyLevel: 3, ExpiryDate: nil},
	}

	idx := BuildCompetencyIndex(rows, mustDate(t, "2030-12-31"))

	assert.True(t, idx.IsQualified(1, 1))
	assert.False(t, idx.IsQualified(1, 2), "Should not be qualified for a role with no row")
	assert.False(t, idx.IsQualified(2, 1), "Should not be qualified for a different staff member")
}

func TestBuildCompetencyIndex_ExpiryBoundary(t *testing.T) {
	rows := []model.Competency{
		{StaffMemberID: 1, RoleID: 1, ProficiencyLevel: 3, ExpiryDate: strPtr("2024-06-30")},
	}

	onExpiry := BuildCompetencyIndex(rows, mustDate(t, "2024-06-30"))
	assert.True(t, onExpiry.IsQualified(1, 1), "Should still be qualified on the expiry date itself")

	dayAfter := BuildCompetencyIndex(rows, mustDate(t, "2024-07-01"))
	assert.False(t, dayAfter.IsQualified(1, 1), "Should be expired the day after the expiry date")
}

func TestBuildCompetencyIndex_DuplicateRowsHighestProficiencyWins(t *testing.T) {
	rows := []model.Competency{
		{StaffMemberID: 1, RoleID: 1, ProficiencyLevel: 2},
		{StaffMemberID: 1, RoleID: 1, ProficiencyLevel: 4},
		// Expired row with a higher level must not win
		{StaffMemberID: 1, RoleID: 1, ProficiencyLevel: 5, ExpiryDate: strPtr("2020-01-01")},
	}

	idx := BuildCompetencyIndex(rows, mustDate(t, "2024-01-01"))

	level, ok := idx.Proficiency(1, 1)
	assert.True(t, ok)
	assert.Equal(t, 4, level, "Highest valid proficiency should win among duplicates")
}

func TestBuildCompetencyIndex_MalformedExpiryTreatedAsExpired(t *testing.T) {
	rows := []model.Competency{
		{StaffMemberID: 1, RoleID: 1, ProficiencyLevel: 5, ExpiryDate: strPtr("not-a-date")},
	}

	idx := BuildCompetencyIndex(rows, mustDate(t, "2024-01-01"))

	assert.False(t, idx.IsQualified(1, 1), "A malformed expiry date must not grant an open-ended qualification")
}
