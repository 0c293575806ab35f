package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"car-rental/internal/gateway"
	"car-rental/internal/usecase"
	"car-rental/internal/wire"
	"car-rental/pkg/cache"
	"car-rental/pkg/database"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// callbackTokenTTL matches the longest checkout session the processor allows.
const callbackTokenTTL = 24 * time.Hour

const shutdownTimeout = 15 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the pending-rental sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")

	return cmd
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.log.Info("Starting application",
		zap.String("app", a.config.App.Name),
		zap.String("port", a.config.App.Port),
		zap.Bool("debug", a.config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, repo, err := a.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		applied, err := database.Migrate(ctx, db, a.log)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		a.log.Info("Migrations done", zap.Int("applied", applied))
	}

	carCache, err := cache.New(a.config.Redis.URL, a.config.Redis.CacheTTL, a.log)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer carCache.Close()

	server := wire.Wiring(repo, a.deps(carCache), a.config, a.log)

	go a.sweepLoop(ctx, server.Service)

	return APIServer(ctx, server.Router, a.config.App.Port, a.log)
}

func (a *app) deps(carCache cache.Cache) usecase.Deps {
	payment := a.config.Payment

	stripeGateway := gateway.NewStripeGateway(gateway.StripeConfig{
		SecretKey:     payment.StripeSecret,
		WebhookSecret: payment.StripeWebhookSecret,
		Timeout:       payment.GatewayTimeout,
		MaxRetries:    payment.GatewayMaxRetries,
	}, a.log)

	deps := usecase.Deps{
		Gateway: stripeGateway,
		Cache:   carCache,
		Signer:  utils.NewCallbackSigner(payment.CallbackSecret, callbackTokenTTL),
	}

	// Without a secret the webhook endpoint stays disabled
	if payment.StripeWebhookSecret != "" {
		deps.Webhooks = stripeGateway
	} else {
		a.log.Warn("STRIPE_WEBHOOK_SECRET not set, webhook endpoint disabled")
	}

	if !deps.Signer.Enabled() {
		a.log.Warn("CALLBACK_SECRET not set, checkout callbacks are unauthenticated")
	}

	return deps
}

func (a *app) sweepLoop(ctx context.Context, service *usecase.Service) {
	interval := a.config.Payment.SweepInterval
	if interval <= 0 {
		a.log.Info("Pending rental sweeper disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// errors are already logged per step
			_ = runSweep(ctx, service, a.log)
		}
	}
}

// APIServer serves route on port until ctx is cancelled, then drains
// in-flight requests.
func APIServer(ctx context.Context, route *chi.Mux, port string, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           route,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
