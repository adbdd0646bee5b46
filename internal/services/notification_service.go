package services

import (
	"fmt"

	"github.com/containrrr/shoutrrr"
	"gorm.io/gorm"

	"github.com/comunavision/backend/internal/logger"
	"github.com/comunavision/backend/internal/models"
)

// NotificationService records in-app notifications and broadcasts them to
// any configured shoutrrr destinations (Discord, Telegram, SMTP, ...).
type NotificationService struct {
	DB   *gorm.DB
	URLs []string
}

// NewNotificationService returns a NotificationService. urls may be empty,
// in which case only in-app notifications are written.
func NewNotificationService(db *gorm.DB, urls []string) *NotificationService {
	return &NotificationService{DB: db, URLs: urls}
}

// Notify stores an in-app notification and fans it out externally. External
// delivery is best-effort and never blocks the caller's request.
func (s *NotificationService) Notify(nType models.NotificationType, title, message string) {
	notification := models.Notification{
		Type:    nType,
		Title:   title,
		Message: message,
	}
	if err := s.DB.Create(&notification).Error; err != nil {
		logger.Log().WithError(err).Warn("store notification")
	}

	if len(s.URLs) == 0 {
		return
	}
	go s.sendExternal(title, message)
}

func (s *NotificationService) sendExternal(title, message string) {
	body := fmt.Sprintf("%s\n%s", title, message)
	for _, url := range s.URLs {
		if err := shoutrrr.Send(url, body); err != nil {
			logger.WithFields(map[string]interface{}{"error": err.Error()}).
				Warn("external notification failed")
		}
	}
}

// List returns notifications newest first, optionally only unread ones.
func (s *NotificationService) List(unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	q := s.DB.Order("created_at desc")
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	err := q.Find(&notifications).Error
	return notifications, err
}

// MarkAsRead flags one notification as read.
func (s *NotificationService) MarkAsRead(id uint) error {
	return s.DB.Model(&models.Notification{}).Where("id = ?", id).Update("read", true).Error
}

// MarkAllAsRead flags every unread notification as read.
func (s *NotificationService) MarkAllAsRead() error {
	return s.DB.Model(&models.Notification{}).Where("read = ?", false).Update("read", true).Error
}
