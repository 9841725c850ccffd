package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/startup-platform/hub"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/repositories"
	"github.com/yeremiapane/startup-platform/utils"
)

// Chat event kinds published on conversation topics.
const (
	ChatMessage = "CHAT"
	ChatJoin    = "JOIN"
	ChatLeave   = "LEAVE"
	ChatTyping  = "TYPING"
	ChatRead    = "READ"
)

// ChatEvent is a presence or read-receipt signal for a conversation.
type ChatEvent struct {
	Type           string    `json:"type"`
	ConversationID string    `json:"conversationId"`
	UserID         string    `json:"userId"`
	MarkedCount    int64     `json:"markedCount,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// TypingEvent is published on a conversation's typing topic. IsTyping is
// always present so clients see both start and stop.
type TypingEvent struct {
	Type           string    `json:"type"`
	ConversationID string    `json:"conversationId"`
	UserID         string    `json:"userId"`
	IsTyping       bool      `json:"isTyping"`
	Timestamp      time.Time `json:"timestamp"`
}

type MessagingService struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	users         repositories.UserRepository
	notifications *NotificationService
	email         *EmailService
	broadcaster   Broadcaster
	dispatcher    *Dispatcher
}

func NewMessagingService(
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	users repositories.UserRepository,
	notifications *NotificationService,
	email *EmailService,
	broadcaster Broadcaster,
	dispatcher *Dispatcher,
) *MessagingService {
	return &MessagingService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		notifications: notifications,
		email:         email,
		broadcaster:   broadcaster,
		dispatcher:    dispatcher,
	}
}

// GetOrCreateConversation returns the single conversation between two users,
// in whichever order they are given.
func (s *MessagingService) GetOrCreateConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	if userA == "" || userB == "" {
		return nil, utils.NewValidationError("Both participant IDs are required")
	}
	if userA == userB {
		return nil, utils.NewValidationError("Cannot start a conversation with yourself")
	}

	existing, err := s.conversations.FindByParticipants(ctx, userA, userB)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewInternalError("find conversation", err)
	}

	first, second := userA, userB
	if second < first {
		first, second = second, first
	}
	conversation := &models.Conversation{Participant1ID: first, Participant2ID: second}
	err = s.conversations.Create(ctx, conversation)
	if errors.Is(err, repositories.ErrDuplicate) {
		// Lost a race with a concurrent create for the same pair.
		existing, err = s.conversations.FindByParticipants(ctx, userA, userB)
		if err != nil {
			return nil, utils.NewInternalError("find conversation", err)
		}
		return existing, nil
	}
	if err != nil {
		return nil, utils.NewInternalError("create conversation", err)
	}
	return conversation, nil
}

func (s *MessagingService) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	conversation, err := s.conversations.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewNotFoundError("Conversation not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("find conversation", err)
	}
	return conversation, nil
}

func (s *MessagingService) GetConversationsByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	conversations, err := s.conversations.FindByUserID(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("list conversations", err)
	}
	return conversations, nil
}

// RequireParticipant loads the conversation and checks that actor may see it.
func (s *MessagingService) RequireParticipant(ctx context.Context, actor Actor, conversationID string) (*models.Conversation, error) {
	conversation, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !conversation.HasParticipant(actor.UserID) {
		return nil, utils.NewForbiddenError("Not a participant of this conversation")
	}
	return conversation, nil
}

// CanAccessConversation backs the WebSocket subscription check.
func (s *MessagingService) CanAccessConversation(ctx context.Context, userID, conversationID string) bool {
	conversation, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return false
	}
	return conversation.HasParticipant(userID)
}

func (s *MessagingService) SendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	if conversationID == "" {
		return nil, utils.NewValidationError("Conversation ID is required")
	}
	if senderID == "" {
		return nil, utils.NewValidationError("Sender ID is required")
	}
	content = utils.SanitizeText(content)
	if content == "" {
		return nil, utils.NewValidationError("Message content is required")
	}

	conversation, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, utils.NewForbiddenError("Sender is not a participant of this conversation")
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		IsRead:         false,
	}
	if err := s.messages.Append(ctx, message); err != nil {
		return nil, utils.NewInternalError("send message", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.Publish(hub.ConversationTopic(conversationID), message)
		s.broadcaster.Publish(hub.TopicMessages, message)
	}
	s.announceMessage(*message, conversation.OtherParticipant(senderID))
	return message, nil
}

func (s *MessagingService) GetMessages(ctx context.Context, conversationID string, req utils.PageRequest) (utils.Page[models.Message], error) {
	rows, total, err := s.messages.FindByConversation(ctx, conversationID, req)
	if err != nil {
		return utils.Page[models.Message]{}, utils.NewInternalError("list messages", err)
	}
	return utils.NewPage(rows, req, total), nil
}

func (s *MessagingService) GetUnreadMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	messages, err := s.messages.FindUnread(ctx, conversationID)
	if err != nil {
		return nil, utils.NewInternalError("list unread messages", err)
	}
	return messages, nil
}

func (s *MessagingService) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	message, err := s.messages.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewNotFoundError("Message not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("find message", err)
	}
	return message, nil
}

// MarkMessageAsRead is idempotent.
func (s *MessagingService) MarkMessageAsRead(ctx context.Context, id string) error {
	if _, err := s.GetMessage(ctx, id); err != nil {
		return err
	}
	if err := s.messages.MarkAsRead(ctx, id); err != nil {
		return utils.NewInternalError("mark message read", err)
	}
	return nil
}

// MarkConversationAsRead returns how many messages changed state.
func (s *MessagingService) MarkConversationAsRead(ctx context.Context, conversationID string) (int64, error) {
	n, err := s.messages.MarkConversationAsRead(ctx, conversationID)
	if err != nil {
		return 0, utils.NewInternalError("mark conversation read", err)
	}
	return n, nil
}

// DeleteMessage reports false when no message had that id.
func (s *MessagingService) DeleteMessage(ctx context.Context, id string) (bool, error) {
	ok, err := s.messages.Delete(ctx, id)
	if err != nil {
		return false, utils.NewInternalError("delete message", err)
	}
	return ok, nil
}

// Join, Leave, Typing and MarkRead are the WebSocket chat signals. The
// caller must already be a participant.

func (s *MessagingService) Join(ctx context.Context, userID, conversationID string) error {
	return s.signal(ctx, userID, conversationID, hub.ConversationTopic(conversationID), ChatEvent{Type: ChatJoin})
}

func (s *MessagingService) Leave(ctx context.Context, userID, conversationID string) error {
	return s.signal(ctx, userID, conversationID, hub.ConversationTopic(conversationID), ChatEvent{Type: ChatLeave})
}

func (s *MessagingService) Typing(ctx context.Context, userID, conversationID string, isTyping bool) error {
	if _, err := s.RequireParticipant(ctx, Actor{UserID: userID}, conversationID); err != nil {
		return err
	}
	s.publish(hub.TypingTopic(conversationID), TypingEvent{
		Type:           ChatTyping,
		ConversationID: conversationID,
		UserID:         userID,
		IsTyping:       isTyping,
		Timestamp:      time.Now(),
	})
	return nil
}

// MarkRead marks the conversation read and publishes a read receipt.
func (s *MessagingService) MarkRead(ctx context.Context, userID, conversationID string) error {
	if _, err := s.RequireParticipant(ctx, Actor{UserID: userID}, conversationID); err != nil {
		return err
	}
	n, err := s.MarkConversationAsRead(ctx, conversationID)
	if err != nil {
		return err
	}
	s.publish(hub.ReadReceiptTopic(conversationID), ChatEvent{
		Type:           ChatRead,
		ConversationID: conversationID,
		UserID:         userID,
		MarkedCount:    n,
		Timestamp:      time.Now(),
	})
	return nil
}

func (s *MessagingService) signal(ctx context.Context, userID, conversationID, topic string, event ChatEvent) error {
	if _, err := s.RequireParticipant(ctx, Actor{UserID: userID}, conversationID); err != nil {
		return err
	}
	event.ConversationID = conversationID
	event.UserID = userID
	event.Timestamp = time.Now()
	s.publish(topic, event)
	return nil
}

func (s *MessagingService) publish(topic string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(topic, payload)
	}
}

func (s *MessagingService) announceMessage(message models.Message, recipientID string) {
	s.dispatcher.Enqueue(Task{
		Name: "notification.new_message",
		Run: func(ctx context.Context) error {
			return s.notifications.NotifyNewMessage(ctx, recipientID, s.senderName(ctx, message.SenderID), message.ConversationID)
		},
	})
	s.dispatcher.Enqueue(Task{
		Name: "email.new_message",
		Run: func(ctx context.Context) error {
			recipient, err := s.users.FindByID(ctx, recipientID)
			if err != nil {
				return lookupFailure(err)
			}
			return s.email.SendNewMessage(ctx, recipient.Email, s.senderName(ctx, message.SenderID))
		},
	})
}

func (s *MessagingService) senderName(ctx context.Context, senderID string) string {
	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			utils.ErrorLogger.WithFields(logrus.Fields{"sender_id": senderID}).WithError(err).Error("lookup sender")
		}
		return "Someone"
	}
	return sender.FullName()
}
