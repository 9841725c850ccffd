package services

import (
	"context"

	"github.com/yeremiapane/startup-platform/hub"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/repositories"
	"github.com/yeremiapane/startup-platform/utils"
)

// Broadcaster pushes real-time events to connected clients.
type Broadcaster interface {
	Publish(destination string, payload interface{})
	SendToUser(userID, destination string, payload interface{})
}

type NotificationService struct {
	repo        repositories.NotificationRepository
	broadcaster Broadcaster
}

func NewNotificationService(repo repositories.NotificationRepository, broadcaster Broadcaster) *NotificationService {
	return &NotificationService{repo: repo, broadcaster: broadcaster}
}

// Create stores the notification and pushes it to the user's queue.
func (s *NotificationService) Create(ctx context.Context, userID string, kind models.NotificationType, title, message, referenceID string) (*models.Notification, error) {
	if userID == "" {
		return nil, utils.NewValidationError("User ID is required")
	}
	if !kind.Valid() {
		return nil, utils.NewValidationError("Invalid notification type")
	}

	notification := &models.Notification{
		UserID:      userID,
		Type:        kind,
		Title:       title,
		Message:     message,
		ReferenceID: referenceID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, utils.NewInternalError("create notification", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.SendToUser(userID, hub.UserNotifications, notification)
	}
	return notification, nil
}

func (s *NotificationService) NotifyOfferReceived(ctx context.Context, startupOwnerID, investorName, startupName, offerID string) error {
	_, err := s.Create(ctx, startupOwnerID, models.NotificationOfferReceived,
		"New Investment Offer",
		investorName+" has made an investment offer for "+startupName,
		offerID)
	return err
}

func (s *NotificationService) NotifyOfferAccepted(ctx context.Context, investorID, startupName, offerID string) error {
	_, err := s.Create(ctx, investorID, models.NotificationOfferAccepted,
		"Offer Accepted",
		"Your investment offer for "+startupName+" has been accepted!",
		offerID)
	return err
}

func (s *NotificationService) NotifyOfferRejected(ctx context.Context, investorID, startupName, offerID string) error {
	_, err := s.Create(ctx, investorID, models.NotificationOfferRejected,
		"Offer Rejected",
		"Your investment offer for "+startupName+" has been rejected.",
		offerID)
	return err
}

func (s *NotificationService) NotifyNewMessage(ctx context.Context, recipientID, senderName, conversationID string) error {
	_, err := s.Create(ctx, recipientID, models.NotificationMessageReceived,
		"New Message",
		"You have a new message from "+senderName,
		conversationID)
	return err
}

// List returns every notification of the user, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("list notifications", err)
	}
	return notifications, nil
}

func (s *NotificationService) ListPaged(ctx context.Context, userID string, req utils.PageRequest) (utils.Page[models.Notification], error) {
	rows, total, err := s.repo.FindByUserPaged(ctx, userID, req)
	if err != nil {
		return utils.Page[models.Notification]{}, utils.NewInternalError("page notifications", err)
	}
	return utils.NewPage(rows, req, total), nil
}

func (s *NotificationService) ListUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.repo.FindUnread(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("list unread notifications", err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, utils.NewInternalError("count unread notifications", err)
	}
	return count, nil
}

// MarkAsRead is idempotent. It fails with NotFound unless the notification belongs to userID.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID string) error {
	ok, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		return utils.NewInternalError("mark notification read", err)
	}
	if !ok {
		return utils.NewNotFoundError("Notification not found")
	}
	return nil
}

// MarkAllAsRead returns how many notifications changed state.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, utils.NewInternalError("mark all notifications read", err)
	}
	return n, nil
}
