package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oakfieldhealth/staff-rota/pkg/core/services"
)

// SubmitPreferencesCmd creates the submitPreferences command
func SubmitPreferencesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submitPreferences <staff_id> <preference_ids>",
		Short: "Submit a staff member's draft preferences",
		Long:  "Transition a comma-separated list of draft preference IDs to submitted. The submission is all or nothing: one invalid ID and no rows change.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			staffID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("staff_id must be a number: %w", err)
			}

			var ids []int
			for _, part := range strings.Split(args[1], ",") {
				id, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					return fmt.Errorf("preference_ids must be comma-separated numbers: %w", err)
				}
				ids = append(ids, id)
			}

			app.Logger.Debug("submitPreferences command",
				zap.Int("staff_id", staffID),
				zap.Ints("preference_ids", ids))

			result, err := services.SubmitPreferences(app.Ctx, app.Database, app.Logger, ids, staffID)
			if err != nil {
				return fmt.Errorf("submission failed: %w", err)
			}

			if result.Failure != nil {
				fmt.Printf("\n❌ %s\n\n", result.Failure.Summary())
				for _, f := range result.Failure.Failures {
					fmt.Printf("  ✗ preference %d: %s\n", f.PreferenceID, f.Reason)
				}
				fmt.Println()
				fmt.Println("💡 Nothing was submitted. Fix the listed IDs and try again.")
				return nil
			}

			fmt.Printf("\n✅ Submitted %d preferences\n\n", len(result.Preferences))
			for _, p := range result.Preferences {
				fmt.Printf("  ✓ #%d %s on %s (priority %d)\n", p.ID, p.PreferenceType, p.PreferredDate, p.Priority)
			}
			fmt.Println()

			return nil
		},
	}
}
