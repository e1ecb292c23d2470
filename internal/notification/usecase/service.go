package usecase

import (
	"context"
	"log"

	authrepo "propdesk-backend/internal/auth/repository"
	"propdesk-backend/internal/notification/domain"
	"propdesk-backend/internal/notification/repository"
	"propdesk-backend/pkg/fcm"
)

// NotificationService writes feed entries and pushes ERROR-level
// events to registered devices
type NotificationService struct {
	repo      repository.NotificationRepository
	tokenRepo authrepo.DeviceTokenRepository
	fcmClient *fcm.Client
}

func NewNotificationService(repo repository.NotificationRepository, tokenRepo authrepo.DeviceTokenRepository, fcmClient *fcm.Client) *NotificationService {
	return &NotificationService{
		repo:      repo,
		tokenRepo: tokenRepo,
		fcmClient: fcmClient,
	}
}

// Notify records a notification and, for errors, fans it out as a push
// notification so agents see sync failures without opening the app
func (s *NotificationService) Notify(notifType domain.NotificationType, title, message, propertyID string) {
	notification := &domain.Notification{
		Type:       notifType,
		Title:      title,
		Message:    message,
		PropertyID: propertyID,
	}
	if err := s.repo.Create(notification); err != nil {
		log.Printf("[Notification] Failed to save notification: %v", err)
		return
	}

	if notifType != domain.NotificationError || s.fcmClient == nil || s.tokenRepo == nil {
		return
	}

	go func() {
		tokens, err := s.tokenRepo.GetAllTokens()
		if err != nil {
			log.Printf("[FCM] Error loading device tokens: %v", err)
			return
		}
		if len(tokens) == 0 {
			log.Printf("[FCM] No device tokens registered, skipping push")
			return
		}

		var tokenStrings []string
		for _, t := range tokens {
			tokenStrings = append(tokenStrings, t.Token)
		}

		failedTokens, err := s.fcmClient.SendToDevices(context.Background(), tokenStrings, fcm.PushMessage{
			Title: title,
			Body:  message,
			Data: map[string]string{
				"type":           string(notifType),
				"notificationId": notification.ID,
				"propertyId":     propertyID,
			},
		})
		if err != nil {
			log.Printf("[FCM] Error sending notifications: %v", err)
			return
		}

		if len(failedTokens) > 0 {
			log.Printf("[FCM] Cleaning up %d failed tokens", len(failedTokens))
			for _, token := range failedTokens {
				s.tokenRepo.DeleteToken(token)
			}
		}
	}()
}

// Feed returns recent notifications plus the unread count
func (s *NotificationService) Feed(limit, offset int) ([]*domain.Notification, int64, error) {
	notifications, err := s.repo.FindRecent(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread()
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

func (s *NotificationService) MarkRead(id string) error {
	return s.repo.MarkRead(id)
}

func (s *NotificationService) MarkAllRead() error {
	return s.repo.MarkAllRead()
}
