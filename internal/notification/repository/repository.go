package repository

import (
	"time"

	"propdesk-backend/internal/notification/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository defines storage operations for the notification feed
type NotificationRepository interface {
	Create(notification *domain.Notification) error
	FindRecent(limit, offset int) ([]*domain.Notification, error)
	CountUnread() (int64, error)
	MarkRead(id string) error
	MarkAllRead() error
}

type gormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new GORM-based NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) Create(notification *domain.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	notification.CreatedAt = time.Now()
	return r.db.Create(notification).Error
}

func (r *gormNotificationRepository) FindRecent(limit, offset int) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error
	return notifications, err
}

func (r *gormNotificationRepository) CountUnread() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).Where("read = ?", false).Count(&count).Error
	return count, err
}

func (r *gormNotificationRepository) MarkRead(id string) error {
	return r.db.Model(&domain.Notification{}).Where("id = ?", id).Update("read", true).Error
}

func (r *gormNotificationRepository) MarkAllRead() error {
	return r.db.Model(&domain.Notification{}).Where("read = ?", false).Update("read", true).Error
}
