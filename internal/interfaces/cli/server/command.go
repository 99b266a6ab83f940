package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	assignmentUsecases "mentora/internal/application/assignment/usecases"
	creditServices "mentora/internal/application/credit/services"
	creditUsecases "mentora/internal/application/credit/usecases"
	pricingUsecases "mentora/internal/application/pricing/usecases"
	recurringUsecases "mentora/internal/application/recurring/usecases"
	"mentora/internal/infrastructure/auth"
	"mentora/internal/infrastructure/cache"
	"mentora/internal/infrastructure/config"
	"mentora/internal/infrastructure/database"
	"mentora/internal/infrastructure/entitlement"
	"mentora/internal/infrastructure/notification"
	"mentora/internal/infrastructure/repository"
	httpInterface "mentora/internal/interfaces/http"
	"mentora/internal/interfaces/http/handlers"
	"mentora/internal/shared/logger"
)

var configPath string

// NewCommand creates the server command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the credit engine HTTP server",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config directory")

	return cmd
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

	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(database.Get()); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	db := database.Get()

	redisClient := cache.NewRedisClient(&cfg.Redis)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := cache.Ping(pingCtx, redisClient); err != nil {
		log.Warnw("redis unavailable, plan cache disabled", "error", err)
		redisClient = nil
	}
	cancelPing()

	// Repositories
	accountRepo := repository.NewCreditAccountRepository(db, log)
	assignmentRepo := repository.NewCreditAssignmentRepository(db, log)
	historyRepo := repository.NewPurchaseHistoryRepository(db, log)
	subscriptionRepo := repository.NewRecurringSubscriptionRepository(db, log)
	planRepo := repository.NewCreditPlanRepository(db, log)

	// Services
	ledger := creditServices.NewLedger(accountRepo, log)
	entitlementService := entitlement.NewService(db, log)
	planResolver := cache.NewCachedPlanResolver(redisClient, planRepo, &cfg.Pricing, log)
	notifier := notification.NewEmailNotifier(&cfg.Notification, log)

	// Use cases
	assignUC := assignmentUsecases.NewAssignCreditUseCase(assignmentRepo, ledger, entitlementService, log)
	cancelRenewalUC := assignmentUsecases.NewCancelAutoRenewalUseCase(assignmentRepo, log)
	getActiveUC := assignmentUsecases.NewGetActiveAssignmentUseCase(assignmentRepo, log)
	listAssignmentsUC := assignmentUsecases.NewGetAdvisorAssignmentsUseCase(assignmentRepo, log)
	renewUC := assignmentUsecases.NewRenewAssignmentsUseCase(
		assignmentRepo, ledger, entitlementService, assignUC, cfg.Sweep.Lookahead(), log)
	renewUC.SetNotifier(notifier)

	getBalanceUC := creditUsecases.NewGetBalanceUseCase(accountRepo, log)
	listHistoryUC := creditUsecases.NewListPurchaseHistoryUseCase(historyRepo, log)
	addCreditsUC := creditUsecases.NewAddCreditsUseCase(ledger, log)
	recordPurchaseUC := creditUsecases.NewRecordPurchaseUseCase(historyRepo, ledger, log)

	createSubUC := recurringUsecases.NewCreateSubscriptionUseCase(subscriptionRepo, planRepo, log)
	billingCycleUC := recurringUsecases.NewProcessBillingCycleUseCase(subscriptionRepo, historyRepo, ledger, log)
	billingCycleUC.SetNotifier(notifier)
	billingFailureUC := recurringUsecases.NewHandleBillingFailureUseCase(subscriptionRepo, historyRepo, log)
	billingFailureUC.SetNotifier(notifier)
	cancelSubUC := recurringUsecases.NewCancelSubscriptionUseCase(subscriptionRepo, log)
	listSubsUC := recurringUsecases.NewListSubscriptionsUseCase(subscriptionRepo, log)

	getCatalogUC := pricingUsecases.NewGetCatalogUseCase(planResolver, log)

	// HTTP surface
	jwtService := auth.NewJWTService(&cfg.Auth)
	router := httpInterface.NewRouter(
		cfg.Server.Mode,
		jwtService,
		handlers.NewAssignmentHandler(assignUC, cancelRenewalUC, getActiveUC, listAssignmentsUC, log),
		handlers.NewCreditHandler(getBalanceUC, listHistoryUC, addCreditsUC, log),
		handlers.NewWebhookHandler(recordPurchaseUC, createSubUC, billingCycleUC, billingFailureUC, cancelSubUC, log),
		handlers.NewCatalogHandler(getCatalogUC, listSubsUC, log),
		handlers.NewAdminHandler(renewUC, planRepo, log),
		log,
	)

	srv := &http.Server{
		Addr:              cfg.Server.GetAddr(),
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Infow("server stopped")
	return nil
}
