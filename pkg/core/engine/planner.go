package engine

import (
	"context"
	"sort"

	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
)

// PlanInput carries everything one planning pass needs. Inputs are loaded
// once before the pass starts; the planner performs no I/O.
type PlanInput struct {
	// Schedule being planned. Must be in draft status.
	Schedule model.Schedule

	// Slots are the coverage requirements to fill. The engine does not invent
	// coverage needs; slots are produced by the caller.
	Slots []model.Slot

	// Staff considered for assignment. Inactive members are skipped.
	Staff []model.StaffMember

	// Evaluator runs the hard-constraint chain for every candidate.
	Evaluator *Evaluator

	// Scorer ranks otherwise-valid candidates by preference cost.
	Scorer *PreferenceScorer

	// Roster is the snapshot of already-committed assignments. The planner
	// owns it for the duration of the pass and commits winners into it so
	// later slots see earlier decisions.
	Roster *RosterView
}

// SlotRef identifies a slot in a plan outcome
type SlotRef struct {
	Date      string
	RoleID    int
	RoleName  string
	ShiftType model.ShiftType
	StartTime string
	EndTime   string
}

// PlanOutcome is the result of one planning pass. Unfilled slots are a
// normal outcome, not a failure.
type PlanOutcome struct {
	Filled    []model.ScheduleAssignment
	Unfilled  []SlotRef
	TotalCost int

	// Canceled is true if the pass stopped early because the context was
	// canceled. Slots filled before the cancellation are still valid.
	Canceled bool
}

type orderedSlot struct {
	slot           model.Slot
	candidateCount int
	roleName       string
}

// Plan fills slots greedily: scarcest slots first, cheapest accepted
// candidate per slot, each winner committed into the roster before the next
// slot is considered. The ordering and the tie-break chain make the result
// deterministic for identical inputs, which is what makes the plan auditable.
// This is a heuristic, not a constraint solver; it trades optimality for
// explainability.
//
// The pass is single-threaded on purpose: commit-before-next-slot is part of
// the correctness contract, and parallel slot assignment would change results.
func Plan(ctx context.Context, in PlanInput) (*PlanOutcome, error) {
	ordered, err := orderSlotsByScarcity(in)
	if err != nil {
		return nil, err
	}

	outcome := &PlanOutcome{
		Filled:   []model.ScheduleAssignment{},
		Unfilled: []SlotRef{},
	}

	for i, os := range ordered {
		// Cancellation checkpoint: between slots the roster is consistent,
		// so a partial result is returnable as-is
		if ctx.Err() != nil {
			outcome.Canceled = true
			for _, rest := range ordered[i:] {
				outcome.Unfilled = append(outcome.Unfilled, slotRef(rest))
			}
			return outcome, nil
		}

		winner, cost, err := pickCandidate(in, os.slot)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			outcome.Unfilled = append(outcome.Unfilled, slotRef(os))
			continue
		}

		assignment := model.ScheduleAssignment{
			ScheduleID:    os.slot.ScheduleID,
			StaffMemberID: winner.ID,
			RoleID:        os.slot.RoleID,
			ShiftDate:     os.slot.Date,
			ShiftType:     os.slot.ShiftType,
			StartTime:     os.slot.StartTime,
			EndTime:       os.slot.EndTime,
		}
		in.Roster.Add(assignment)
		outcome.Filled = append(outcome.Filled, assignment)
		outcome.TotalCost += cost
	}

	return outcome, nil
}

// orderSlotsByScarcity sorts slots so that the ones with the fewest
// qualified-and-available candidates are filled first. Candidate counts are
// taken against the roster as it stands before the pass. Ties break by date,
// role name, shift type and start time so the order is total.
func orderSlotsByScarcity(in PlanInput) ([]orderedSlot, error) {
	ordered := make([]orderedSlot, 0, len(in.Slots))

	for _, slot := range in.Slots {
		count := 0
		for _, member := range in.Staff {
			if !member.Active {
				continue
			}
			violation, err := in.Evaluator.Evaluate(candidateFor(slot, member.ID), in.Roster)
			if err != nil {
				return nil, err
			}
			if violation == nil {
				count++
			}
		}
		ordered = append(ordered, orderedSlot{
			slot:           slot,
			candidateCount: count,
			roleName:       in.Evaluator.RoleName(slot.RoleID),
		})
	}

	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.candidateCount != b.candidateCount {
			return a.candidateCount < b.candidateCount
		}
		if a.slot.Date != b.slot.Date {
			return a.slot.Date < b.slot.Date
		}
		if a.roleName != b.roleName {
			return a.roleName < b.roleName
		}
		if a.slot.ShiftType != b.slot.ShiftType {
			return a.slot.ShiftType < b.slot.ShiftType
		}
		return a.slot.StartTime < b.slot.StartTime
	})

	return ordered, nil
}

// pickCandidate finds the accepted staff member with the lowest preference
// cost for the slot. Ties break by fewest assignments in this schedule so
// far (load balancing), then by staff member ID. Staff are visited in ID
// order, so keeping the first of equal candidates applies the final tie-break.
func pickCandidate(in PlanInput, slot model.Slot) (*model.StaffMember, int, error) {
	staff := make([]model.StaffMember, 0, len(in.Staff))
	for _, m := range in.Staff {
		if m.Active {
			staff = append(staff, m)
		}
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].ID < staff[j].ID })

	var winner *model.StaffMember
	bestCost := 0
	bestLoad := 0

	for i := range staff {
		member := staff[i]
		violation, err := in.Evaluator.Evaluate(candidateFor(slot, member.ID), in.Roster)
		if err != nil {
			return nil, 0, err
		}
		if violation != nil {
			continue
		}

		cost := in.Scorer.Score(candidateFor(slot, member.ID))
		load := in.Roster.ScheduleAssignmentCount(member.ID, slot.ScheduleID)

		if winner == nil || cost < bestCost || (cost == bestCost && load < bestLoad) {
			winner = &staff[i]
			bestCost = cost
			bestLoad = load
		}
	}

	if winner == nil {
		return nil, 0, nil
	}
	return winner, bestCost, nil
}

func candidateFor(slot model.Slot, staffMemberID int) AssignmentCandidate {
	return AssignmentCandidate{
		ScheduleID:    slot.ScheduleID,
		StaffMemberID: staffMemberID,
		RoleID:        slot.RoleID,
		ShiftDate:     slot.Date,
		ShiftType:     slot.ShiftType,
		StartTime:     slot.StartTime,
		EndTime:       slot.EndTime,
	}
}

func slotRef(os orderedSlot) SlotRef {
	return SlotRef{
		Date:      os.slot.Date,
		RoleID:    os.slot.RoleID,
		RoleName:  os.roleName,
		ShiftType: os.slot.ShiftType,
		StartTime: os.slot.StartTime,
		EndTime:   os.slot.EndTime,
	}
}
