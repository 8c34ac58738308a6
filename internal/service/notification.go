package service

import (
	"context"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) Notify(ctx context.Context, tenantID, title, message string, attributes map[string]string) error {
	note := &domain.Notification{
		TenantID:   tenantID,
		Title:      title,
		Message:    message,
		Attributes: attributes,
	}
	return s.noteRepo.Create(ctx, note)
}

func (s *notificationService) GetNotifications(ctx context.Context, tenantID string, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, tenantID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, tenantID string, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, tenantID)
}
