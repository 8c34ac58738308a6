package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	httpapi "propertypay-backend/internal/api/http"
	"propertypay-backend/internal/config"
	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/gateway"
	"propertypay-backend/internal/logger"
	"propertypay-backend/internal/repository/postgres"
	"propertypay-backend/internal/security"
	"propertypay-backend/internal/service"
	"propertypay-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting PropertyPay Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
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

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.API.TokenSecret)

	// Initialize Storage Service
	attachmentStorage, err := storage.NewLocalStorageService(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize attachment storage", "error", err)
		log.Fatalf("Failed to initialize attachment storage: %v", err)
	}
	logger.Info("Attachment storage ready", "upload_dir", cfg.Storage.UploadDir)

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
	depositSvc := service.NewDepositService(store.DepositRepository, emailSvc, noteSvc)
	recurringSvc := service.NewRecurringService(store.ScheduleRepository, paymentSvc)

	// Build route table
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Payments:      paymentSvc,
		Deposits:      depositSvc,
		Recurring:     recurringSvc,
		Notifications: noteSvc,
		Attachments:   attachmentStorage,
		Tokens:        tokenManager,
		MaxFileSizeMB: cfg.Storage.MaxFileSize,
	})

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
