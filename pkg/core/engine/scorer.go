package engine

import "github.com/oakfieldhealth/staff-rota/pkg/core/model"

// ScorerWeights are the tunable parameters of the preference scorer
type ScorerWeights struct {
	// Preferred scales the reward for matching a preferred preference.
	// The reward is Preferred * priority, subtracted from the cost.
	Preferred int

	// NoPreferencePenalty is added when a staff member has no preference at
	// all covering the candidate's date, biasing the planner toward staff who
	// asked to work first.
	NoPreferencePenalty int
}

// DefaultScorerWeights returns the stock weights
func DefaultScorerWeights() ScorerWeights {
	return ScorerWeights{Preferred: 1, NoPreferencePenalty: 1}
}

type preferenceKey struct {
	staffMemberID int
	scheduleID    int
	date          string
}

// PreferenceScorer computes the soft cost of a candidate assignment from
// submitted staff preferences. Lower cost is better. Unavailability never
// reaches the scorer; it is excluded as a hard constraint by the Evaluator.
type PreferenceScorer struct {
	weights ScorerWeights
	prefs   map[preferenceKey][]model.StaffPreference
}

// NewPreferenceScorer indexes submitted preferences for scoring.
// Draft preferences and unavailability entries are ignored.
func NewPreferenceScorer(preferences []model.StaffPreference, weights ScorerWeights) *PreferenceScorer {
	s := &PreferenceScorer{
		weights: weights,
		prefs:   make(map[preferenceKey][]model.StaffPreference),
	}
	for _, p := range preferences {
		if p.Status != model.PreferenceSubmitted || p.PreferenceType == model.PreferenceUnavailable {
			continue
		}
		key := preferenceKey{staffMemberID: p.StaffMemberID, scheduleID: p.ScheduleID, date: p.PreferredDate}
		s.prefs[key] = append(s.prefs[key], p)
	}
	return s
}

// Score returns the soft cost contribution of assigning the candidate.
// Each matching preferred preference subtracts its priority (stronger
// preferences win harder); available preferences are neutral; a staff member
// with no preference for the date pays the no-preference penalty.
func (s *PreferenceScorer) Score(c AssignmentCandidate) int {
	key := preferenceKey{staffMemberID: c.StaffMemberID, scheduleID: c.ScheduleID, date: c.ShiftDate}

	cost := 0
	matched := false
	for _, p := range s.prefs[key] {
		if !p.Matches(c.RoleID, c.ShiftType) {
			continue
		}
		matched = true
		if p.PreferenceType == model.PreferencePreferred {
			cost -= s.weights.Preferred * p.Priority
		}
	}

	if !matched {
		cost += s.weights.NoPreferencePenalty
	}
	return cost
}
