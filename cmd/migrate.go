package cmd

import (
	"fmt"

	"car-rental/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, _, err := a.openRepository()
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.Migrate(ctx, db, a.log)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			a.log.Info("Migrations done", zap.Int("applied", applied))
			return nil
		},
	}
}
