package repositories

import (
	"context"
	"time"

	"github.com/yeremiapane/startup-platform/models"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	FindByID(ctx context.Context, id string) (*models.Conversation, error)
	// FindByParticipants matches the pair in either order.
	FindByParticipants(ctx context.Context, userA, userB string) (*models.Conversation, error)
	// FindByUserID returns the user's conversations, most recently active first.
	FindByUserID(ctx context.Context, userID string) ([]models.Conversation, error)
}

type gormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

func (r *gormConversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	if conversation.LastMessageAt.IsZero() {
		conversation.LastMessageAt = time.Now()
	}
	return translate(r.db.WithContext(ctx).Create(conversation).Error, "create conversation")
}

func (r *gormConversationRepository) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&conversation).Error; err != nil {
		return nil, translate(err, "find conversation")
	}
	return &conversation, nil
}

func (r *gormConversationRepository) FindByParticipants(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Where("(participant1_id = ? AND participant2_id = ?) OR (participant1_id = ? AND participant2_id = ?)",
			userA, userB, userB, userA).
		First(&conversation).Error
	if err != nil {
		return nil, translate(err, "find conversation by participants")
	}
	return &conversation, nil
}

func (r *gormConversationRepository) FindByUserID(ctx context.Context, userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Where("participant1_id = ? OR participant2_id = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&conversations).Error
	return conversations, translate(err, "find conversations by user")
}
