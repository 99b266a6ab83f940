package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	assignmentUsecases "mentora/internal/application/assignment/usecases"
	creditServices "mentora/internal/application/credit/services"
	"mentora/internal/infrastructure/config"
	"mentora/internal/infrastructure/database"
	"mentora/internal/infrastructure/entitlement"
	"mentora/internal/infrastructure/notification"
	"mentora/internal/infrastructure/repository"
	"mentora/internal/infrastructure/scheduler"
	"mentora/internal/shared/logger"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the renewal sweep worker",
		RunE:  run,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config directory")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	db := database.Get()

	accountRepo := repository.NewCreditAccountRepository(db, log)
	assignmentRepo := repository.NewCreditAssignmentRepository(db, log)

	ledger := creditServices.NewLedger(accountRepo, log)
	entitlementService := entitlement.NewService(db, log)
	notifier := notification.NewEmailNotifier(&cfg.Notification, log)

	assignUC := assignmentUsecases.NewAssignCreditUseCase(assignmentRepo, ledger, entitlementService, log)
	renewUC := assignmentUsecases.NewRenewAssignmentsUseCase(
		assignmentRepo, ledger, entitlementService, assignUC, cfg.Sweep.Lookahead(), log)
	renewUC.SetNotifier(notifier)

	sweeper := scheduler.NewRenewalScheduler(renewUC, cfg.Sweep.Interval, log)
	sweeper.Start(context.Background())

	log.Infow("renewal worker started",
		"interval", cfg.Sweep.Interval.String(),
		"lookahead_days", cfg.Sweep.LookaheadDays)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Infow("shutting down", "signal", sig.String())
	sweeper.Stop()

	log.Infow("renewal worker stopped")
	return nil
}
