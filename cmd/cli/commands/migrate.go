package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Info("Running migrations")
			if err := app.Database.RunMigrations(app.Ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("\n✅ Database schema is up to date")
			return nil
		},
	}
}

// SeedCmd creates the seed command
func SeedCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a small demonstration dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Info("Seeding demo data")
			if err := app.Database.SeedDemoData(app.Ctx); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			fmt.Println("\n✅ Demo data loaded")
			fmt.Println("💡 Try: cli planSchedule --schedule 1 --dry-run")
			return nil
		},
	}
}
