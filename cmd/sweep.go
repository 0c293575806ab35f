package cmd

import (
	"context"

	"car-rental/internal/usecase"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSweepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired pending rentals and old sessions once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, repo, err := a.openRepository()
			if err != nil {
				return err
			}
			defer db.Close()

			// Sweeping never talks to the payment processor
			service := usecase.NewService(repo, usecase.Deps{}, a.config, a.log)

			return runSweep(ctx, service, a.log)
		},
	}
}

// runSweep deletes rentals whose checkout expired and sessions long past
// their expiry. Both steps run even if the first fails.
func runSweep(ctx context.Context, service *usecase.Service, log *zap.Logger) error {
	removed, rentalErr := service.Rental.SweepStalePending(ctx)
	if rentalErr != nil {
		log.Error("Failed to sweep pending rentals", zap.Error(rentalErr))
	}

	sessions, sessionErr := service.Auth.CleanExpiredSessions(ctx)
	if sessionErr != nil {
		log.Error("Failed to clean expired sessions", zap.Error(sessionErr))
	}

	log.Info("Sweep finished",
		zap.Int("rentals_removed", removed),
		zap.Int64("sessions_removed", sessions),
	)

	if rentalErr != nil {
		return rentalErr
	}
	return sessionErr
}
