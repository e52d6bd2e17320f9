package commands

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oakfieldhealth/staff-rota/pkg/core/engine"
	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
	"github.com/oakfieldhealth/staff-rota/pkg/core/services"
)

var validate = validator.New()

// CreateAssignmentCmd creates the createAssignment command
func CreateAssignmentCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createAssignment <schedule_id> <staff_id> <role_id> <shift_date>",
		Short: "Manually assign a staff member to a shift",
		Long:  "Validate one proposed assignment against the full constraint chain and save it on acceptance. Rejections match what a planning pass would report for the same candidate.",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduleID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("schedule_id must be a number: %w", err)
			}
			staffID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("staff_id must be a number: %w", err)
			}
			roleID, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("role_id must be a number: %w", err)
			}
			shiftDate := args[3]

			shiftType, _ := cmd.Flags().GetString("shift-type")
			startTime, _ := cmd.Flags().GetString("start")
			endTime, _ := cmd.Flags().GetString("end")

			if !model.ShiftType(shiftType).IsValid() {
				return fmt.Errorf("invalid shift type %q (want regular or on_call)", shiftType)
			}
			if err := validate.Var(shiftDate, "datetime=2006-01-02"); err != nil {
				return fmt.Errorf("shift_date must be YYYY-MM-DD: %w", err)
			}
			if err := validate.Var(startTime, "datetime=15:04"); err != nil {
				return fmt.Errorf("start time must be HH:MM: %w", err)
			}
			if err := validate.Var(endTime, "datetime=15:04"); err != nil {
				return fmt.Errorf("end time must be HH:MM: %w", err)
			}

			app.Logger.Debug("createAssignment command",
				zap.Int("schedule_id", scheduleID),
				zap.Int("staff_id", staffID),
				zap.Int("role_id", roleID),
				zap.String("shift_date", shiftDate))

			result, err := services.CreateAssignment(app.Ctx, app.Database, app.Logger, engine.AssignmentCandidate{
				ScheduleID:    scheduleID,
				StaffMemberID: staffID,
				RoleID:        roleID,
				ShiftDate:     shiftDate,
				ShiftType:     model.ShiftType(shiftType),
				StartTime:     startTime,
				EndTime:       endTime,
			})
			if err != nil {
				return fmt.Errorf("assignment failed: %w", err)
			}

			if !result.Accepted() {
				fmt.Printf("\n❌ Assignment rejected (%s)\n", result.Violation.Kind)
				fmt.Printf("   %s\n\n", result.Violation.Description)
				return nil
			}

			a := result.Assignment
			fmt.Printf("\n✅ Assignment saved!\n\n")
			fmt.Printf("Assignment ID: %d\n", a.ID)
			fmt.Printf("Schedule:      %d\n", a.ScheduleID)
			fmt.Printf("Staff Member:  %d\n", a.StaffMemberID)
			fmt.Printf("Shift:         %s %s-%s (%s)\n\n", a.ShiftDate, a.StartTime, a.EndTime, a.ShiftType)

			return nil
		},
	}

	cmd.Flags().String("shift-type", "regular", "Shift type (regular or on_call)")
	cmd.Flags().String("start", "09:00", "Shift start time (HH:MM)")
	cmd.Flags().String("end", "17:00", "Shift end time (HH:MM)")

	return cmd
}
