package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oakfieldhealth/staff-rota/pkg/core/engine"
	"github.com/oakfieldhealth/staff-rota/pkg/core/model"
	"github.com/oakfieldhealth/staff-rota/pkg/core/services"
)

// PlanScheduleCmd creates the planSchedule command
func PlanScheduleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "planSchedule",
		Short: "Run a planning pass over a draft schedule",
		Long:  "Expand the configured coverage rules over the schedule's date range and assign staff to each slot, cheapest candidate first",
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduleID, _ := cmd.Flags().GetInt("schedule")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			app.Logger.Debug("planSchedule command",
				zap.Int("schedule_id", scheduleID),
				zap.Bool("dry_run", dryRun))

			// Slot expansion needs the schedule's date range and the role
			// catalog up front. If the schedule is missing the service reports
			// it the same way it reports every other rejection.
			roles, err := app.Database.GetRoles(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch roles: %w", err)
			}
			roleNames := make(map[int]string, len(roles))
			for _, r := range roles {
				roleNames[r.ID] = r.Name
			}

			schedules, err := app.Database.GetSchedules(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch schedules: %w", err)
			}
			var slots []model.Slot
			for _, s := range schedules {
				if s.ID != scheduleID {
					continue
				}
				slots, err = services.ExpandCoverageRules(app.Cfg.CoverageRules, s, roles)
				if err != nil {
					return fmt.Errorf("failed to expand coverage rules: %w", err)
				}
				break
			}

			result, err := services.PlanSchedule(
				app.Ctx,
				app.Database,
				app.Logger,
				scheduleID,
				slots,
				scorerWeights(app),
				dryRun,
			)
			if err != nil {
				return fmt.Errorf("planning failed: %w", err)
			}

			if result.Violation != nil {
				fmt.Printf("\n❌ %s\n\n", result.Violation.Description)
				return nil
			}

			fmt.Printf("\n🗓  Planning Results\n\n")
			fmt.Printf("Plan ID:    %s\n", result.PlanID)
			fmt.Printf("Schedule:   %s (#%d)\n", result.ScheduleName, result.ScheduleID)
			fmt.Printf("Slots:      %d\n", len(result.Filled)+len(result.Unfilled))
			fmt.Printf("Total Cost: %d\n", result.TotalCost)
			switch {
			case result.Canceled:
				fmt.Printf("Mode:       ⚠️  INTERRUPTED (stopped at a slot boundary)\n")
			case dryRun:
				fmt.Printf("Mode:       🧪 DRY RUN (not saved)\n")
			case result.Committed:
				fmt.Printf("Mode:       ✅ SAVED\n")
			default:
				fmt.Printf("Mode:       nothing to save\n")
			}
			fmt.Println()

			if len(result.Filled) > 0 {
				fmt.Printf("Filled slots (%d):\n", len(result.Filled))
				for _, a := range result.Filled {
					fmt.Printf("  ✓ %s  %-22s %s-%s  staff #%d\n",
						a.ShiftDate, roleNames[a.RoleID], a.StartTime, a.EndTime, a.StaffMemberID)
				}
				fmt.Println()
			}

			if len(result.Unfilled) > 0 {
				fmt.Printf("⚠️  Unfilled slots (%d):\n", len(result.Unfilled))
				for _, s := range result.Unfilled {
					fmt.Printf("  ✗ %s  %-22s %s-%s\n",
						s.Date, s.RoleName, s.StartTime, s.EndTime)
				}
				fmt.Println()
				fmt.Println("💡 Unfilled slots had no staff member passing every constraint.")
			}

			if dryRun {
				fmt.Println("💡 This was a dry run. Use without --dry-run to save assignments.")
			}

			return nil
		},
	}

	cmd.Flags().Int("schedule", 0, "Schedule ID to plan")
	cmd.MarkFlagRequired("schedule")
	cmd.Flags().Bool("dry-run", false, "Run without saving to database")

	return cmd
}

// scorerWeights maps the planner config onto engine weights, keeping the
// engine defaults where the config leaves a weight unset
func scorerWeights(app *AppContext) engine.ScorerWeights {
	weights := engine.DefaultScorerWeights()
	if app.Cfg.Planner.PreferredWeight > 0 {
		weights.Preferred = app.Cfg.Planner.PreferredWeight
	}
	if app.Cfg.Planner.NoPreferencePenalty > 0 {
		weights.NoPreferencePenalty = app.Cfg.Planner.NoPreferencePenalty
	}
	return weights
}
