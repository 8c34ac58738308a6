package postgres

import (
	"database/sql"

	"propertypay-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.PaymentRepository
	repository.DepositRepository
	repository.ScheduleRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		PaymentRepository:      NewPaymentRepository(db),
		DepositRepository:      NewDepositRepository(db),
		ScheduleRepository:     NewScheduleRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
