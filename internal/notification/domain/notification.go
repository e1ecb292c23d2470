package domain

import "time"

type NotificationType string

const (
	NotificationInfo    NotificationType = "INFO"
	NotificationSuccess NotificationType = "SUCCESS"
	NotificationWarning NotificationType = "WARNING"
	NotificationError   NotificationType = "ERROR"
)

// Notification is an in-app feed entry produced by the sync engine,
// the lead inbox poller and other background services
type Notification struct {
	ID         string           `json:"id" gorm:"primaryKey"`
	Type       NotificationType `json:"type" gorm:"index"`
	Title      string           `json:"title"`
	Message    string           `json:"message" gorm:"type:text"`
	PropertyID string           `json:"propertyId,omitempty" gorm:"index"`
	Read       bool             `json:"read" gorm:"index"`
	CreatedAt  time.Time        `json:"createdAt"`
}
