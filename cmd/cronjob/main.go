package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"propertypay-backend/internal/config"
	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/gateway"
	"propertypay-backend/internal/jobs"
	"propertypay-backend/internal/logger"
	"propertypay-backend/internal/repository/postgres"
	"propertypay-backend/internal/scheduler"
	"propertypay-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'collect-due-payments', 'all-daily')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting PropertyPay Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Gateway Adapters
	registry := gateway.NewRegistry()
	paystack := gateway.NewPaystackGateway(cfg.Providers.Paystack.BaseURL, cfg.Providers.Paystack.SecretKey, cfg.ProviderTimeout())
	registry.Register(domain.PaymentMethodMobileMoney, paystack)
	registry.Register(domain.PaymentMethodCard, paystack)
	registry.Register(domain.PaymentMethodQR, paystack)
	registry.Register(domain.PaymentMethodUSSD, paystack)
	bank := gateway.NewBankTransferGateway(cfg.Providers.BankPartner.BaseURL, cfg.Providers.BankPartner.SecretKey, cfg.ProviderTimeout())
	registry.Register(domain.PaymentMethodBankTransfer, bank)

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email.APIKey, cfg.Email.From, cfg.Email.FromName)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	paymentSvc := service.NewPaymentService(store.PaymentRepository, store.ScheduleRepository, registry, emailSvc, noteSvc)
	recurringSvc := service.NewRecurringService(store.ScheduleRepository, paymentSvc)

	jobServices := &jobs.Services{
		Email:         emailSvc,
		Payments:      paymentSvc,
		Recurring:     recurringSvc,
		Notifications: noteSvc,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "collect-due-payments":
		jobRunner.CollectDuePayments()
	case "send-payment-reminders":
		jobRunner.SendPaymentReminders()
	case "reconcile-pending-payments":
		jobRunner.ReconcilePendingPayments()
	case "all-daily":
		jobRunner.RunAllDailyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - collect-due-payments\n")
		fmt.Printf("  - send-payment-reminders\n")
		fmt.Printf("  - reconcile-pending-payments\n")
		fmt.Printf("  - all-daily\n")
		os.Exit(1)
	}
}
