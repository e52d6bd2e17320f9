package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakfieldhealth/staff-rota/pkg/core/services"
)

// ListSchedulesCmd creates the listSchedules command
func ListSchedulesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listSchedules",
		Short: "List all schedules with their assignment counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := services.ListSchedules(app.Ctx, app.Database, app.Logger)
			if err != nil {
				return fmt.Errorf("failed to list schedules: %w", err)
			}

			fmt.Printf("\nFound %d schedules:\n\n", len(summaries))
			for _, s := range summaries {
				status := string(s.Schedule.Status)
				if s.Schedule.PublishedAt != nil {
					status = fmt.Sprintf("%s %s", status, s.Schedule.PublishedAt.Format("2006-01-02"))
				}
				fmt.Printf("- #%d %s  %s to %s  [%s]  %d assignments\n",
					s.Schedule.ID,
					s.Schedule.Name,
					s.Schedule.StartDate,
					s.Schedule.EndDate,
					status,
					s.AssignmentCount,
				)
			}
			fmt.Println()

			return nil
		},
	}
}
