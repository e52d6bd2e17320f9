package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oakfieldhealth/staff-rota/pkg/core/engine"
	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
	"github.com/oakfieldhealth/staff-rota/pkg/db"
)

// CreateAssignmentResult carries either the persisted assignment or the
// constraint violation that rejected it
type CreateAssignmentResult struct {
	Assignment *model.ScheduleAssignment
	Violation  *engine.ConstraintViolation
}

// Accepted reports whether the candidate passed the constraint chain
func (r *CreateAssignmentResult) Accepted() bool {
	return r.Violation == nil
}

// CreateAssignment is the manual assignment gate: it validates a single
// proposed assignment against the full constraint chain and persists it on
// acceptance. It runs the exact same evaluator as the planner against the
// same kind of roster snapshot, so an admin placing an assignment by hand
// gets identical rejection reasons to a planning pass for the same candidate.
func CreateAssignment(
	ctx context.Context,
	store db.AssignmentStore,
	logger *zap.Logger,
	candidate engine.AssignmentCandidate,
) (*CreateAssignmentResult, error) {
	logger.Debug("Validating manual assignment",
		zap.Int("schedule_id", candidate.ScheduleID),
		zap.Int("staff_member_id", candidate.StaffMemberID),
		zap.Int("role_id", candidate.RoleID),
		zap.String("shift_date", candidate.ShiftDate))

	release, err := store.AcquireScheduleLock(ctx, candidate.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire schedule lock: %w", err)
	}
	defer release()

	inputs, err := loadEngineInputs(ctx, store, candidate.ScheduleID, time.Now(), candidate.ShiftDate)
	if err != nil {
		return nil, err
	}
	if inputs.violation != nil {
		logger.Info("Manual assignment rejected",
			zap.String("kind", string(inputs.violation.Kind)),
			zap.String("reason", inputs.violation.Description))
		return &CreateAssignmentResult{Violation: inputs.violation}, nil
	}

	violation, err := inputs.evaluator.Evaluate(candidate, inputs.roster)
	if err != nil {
		return nil, fmt.Errorf("constraint evaluation failed: %w", err)
	}
	if violation != nil {
		logger.Info("Manual assignment rejected",
			zap.String("kind", string(violation.Kind)),
			zap.String("reason", violation.Description))
		return &CreateAssignmentResult{Violation: violation}, nil
	}

	inserted, err := store.InsertAssignment(ctx, model.ScheduleAssignment{
		ScheduleID:    candidate.ScheduleID,
		StaffMemberID: candidate.StaffMemberID,
		RoleID:        candidate.RoleID,
		ShiftDate:     candidate.ShiftDate,
		ShiftType:     candidate.ShiftType,
		StartTime:     candidate.StartTime,
		EndTime:       candidate.EndTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist assignment: %w", err)
	}

	logger.Info("Manual assignment accepted",
		zap.Int("assignment_id", inserted.ID),
		zap.Int("staff_member_id", inserted.StaffMemberID),
		zap.String("shift_date", inserted.ShiftDate))

	return &CreateAssignmentResult{Assignment: inserted}, nil
}
