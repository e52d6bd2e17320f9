package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
	"github.com/oakfieldhealth/staff-rota/pkg/db"
)

// SubmissionFailureReason says why a preference ID was rejected
type SubmissionFailureReason string

const (
	SubmissionNotFound     SubmissionFailureReason = "not_found"
	SubmissionNotOwned     SubmissionFailureReason = "not_owned"
	SubmissionNotDraft     SubmissionFailureReason = "not_draft"
	SubmissionStateChanged SubmissionFailureReason = "state_changed"
)

// PreferenceFailure is one invalid ID within a submission attempt
type PreferenceFailure struct {
	PreferenceID int
	Reason       SubmissionFailureReason
}

// SubmissionError explains why a bulk submission was refused in full.
// Submission is all-or-nothing: a single invalid ID means zero rows change.
type SubmissionError struct {
	Failures []PreferenceFailure
}

func (e *SubmissionError) Summary() string {
	return fmt.Sprintf("%d of the requested preferences could not be submitted", len(e.Failures))
}

// SubmitPreferencesResult carries either the submitted preferences or the
// reason the whole submission was refused
type SubmitPreferencesResult struct {
	Preferences []model.StaffPreference
	Failure     *SubmissionError
}

// SubmitPreferences transitions a staff member's draft preferences to
// submitted, stamping the submission time. Every listed ID must exist,
// belong to the requesting staff member, and be in draft status; otherwise
// nothing changes. The store-level guarded update keeps the transition safe
// against a concurrent submission of the same rows.
func SubmitPreferences(
	ctx context.Context,
	store db.PreferenceStore,
	logger *zap.Logger,
	ids []int,
	staffMemberID int,
) (*SubmitPreferencesResult, error) {
	if len(ids) == 0 {
		return &SubmitPreferencesResult{Preferences: []model.StaffPreference{}}, nil
	}
	ids = dedupeIDs(ids)

	logger.Debug("Submitting preferences",
		zap.Int("staff_member_id", staffMemberID),
		zap.Ints("preference_ids", ids))

	prefs, err := store.GetPreferencesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preferences: %w", err)
	}

	byID := make(map[int]model.StaffPreference, len(prefs))
	for _, p := range prefs {
		byID[p.ID] = p
	}

	var failures []PreferenceFailure
	for _, id := range ids {
		pref, ok := byID[id]
		switch {
		case !ok:
			failures = append(failures, PreferenceFailure{PreferenceID: id, Reason: SubmissionNotFound})
		case pref.StaffMemberID != staffMemberID:
			failures = append(failures, PreferenceFailure{PreferenceID: id, Reason: SubmissionNotOwned})
		case pref.Status != model.PreferenceDraft:
			failures = append(failures, PreferenceFailure{PreferenceID: id, Reason: SubmissionNotDraft})
		}
	}
	if len(failures) > 0 {
		logger.Info("Preference submission refused",
			zap.Int("staff_member_id", staffMemberID),
			zap.Int("failed_ids", len(failures)))
		return &SubmitPreferencesResult{Failure: &SubmissionError{Failures: failures}}, nil
	}

	submitted, err := store.MarkPreferencesSubmitted(ctx, ids, staffMemberID, time.Now())
	if errors.Is(err, db.ErrPreferenceConflict) {
		// Another writer changed one of the rows between our read and the
		// guarded update; the store rolled everything back
		failure := &SubmissionError{}
		for _, id := range ids {
			failure.Failures = append(failure.Failures, PreferenceFailure{PreferenceID: id, Reason: SubmissionStateChanged})
		}
		return &SubmitPreferencesResult{Failure: failure}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to submit preferences: %w", err)
	}

	logger.Info("Preferences submitted",
		zap.Int("staff_member_id", staffMemberID),
		zap.Int("count", len(submitted)))

	return &SubmitPreferencesResult{Preferences: submitted}, nil
}

func dedupeIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
