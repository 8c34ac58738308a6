package jobs

import (
	"database/sql"

	"propertypay-backend/internal/config"
	"propertypay-backend/internal/logger"
	"propertypay-backend/internal/repository/postgres"
	"propertypay-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	db       *sql.DB
	store    *postgres.Store
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email         service.EmailService
	Payments      service.PaymentService
	Recurring     service.RecurringService
	Notifications service.NotificationService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(db *sql.DB, store *postgres.Store, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		db:       db,
		store:    store,
		services: services,
		config:   cfg,
	}
}

// Config exposes the loaded configuration for the scheduler wiring.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllDailyJobs runs every daily job once (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() {
	jr.CollectDuePayments()
	jr.SendPaymentReminders()
	jr.ReconcilePendingPayments()
}
