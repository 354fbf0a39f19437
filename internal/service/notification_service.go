package service

import (
	"pawhome/internal/models"
	"pawhome/internal/repository"
)

// NotificationService is the outbox the workflow fans out to. Delivery is
// at-most-once: rows are appended here and only ever mutated to flip read.
type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Enqueue(userID uint, notifType, message, link string) error {
	return s.repo.Create(&models.Notification{
		UserID:  userID,
		Type:    notifType,
		Message: message,
		Link:    link,
	})
}
