package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"car-rental/internal/data/repository"
	"car-rental/pkg/database"
	"car-rental/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand needs once the root has loaded it.
type app struct {
	config *utils.Config
	log    *zap.Logger
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "carrental",
		Short:         "Car rental booking backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newMigrateCmd(a))
	root.AddCommand(newSweepCmd(a))

	return root
}

func (a *app) load() error {
	config, err := utils.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}

	a.config = config
	a.log = logger
	return nil
}

// openRepository connects to Postgres. The caller closes the returned pool.
func (a *app) openRepository() (database.PgxIface, *repository.Repository, error) {
	db, err := database.InitDB(a.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	a.log.Info("Database connected successfully",
		zap.String("host", a.config.Database.Host),
		zap.String("name", a.config.Database.Name),
	)

	return db, repository.NewRepository(db, a.log), nil
}
