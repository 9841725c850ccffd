package repositories

import (
	"context"

	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/utils"
	"gorm.io/gorm"
)

type MessageRepository interface {
	// Append stores message and moves the conversation's lastMessageAt to the
	// message's creation time, in one transaction.
	Append(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	// FindByConversation pages over a conversation's messages, newest first.
	FindByConversation(ctx context.Context, conversationID string, req utils.PageRequest) ([]models.Message, int64, error)
	FindUnread(ctx context.Context, conversationID string) ([]models.Message, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkConversationAsRead(ctx context.Context, conversationID string) (int64, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Append(ctx context.Context, message *models.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Updates(map[string]interface{}{
				"last_message_at": message.CreatedAt,
				"updated_at":      message.CreatedAt,
			}).Error
	})
	return translate(err, "append message")
}

func (r *gormMessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error; err != nil {
		return nil, translate(err, "find message")
	}
	return &message, nil
}

func (r *gormMessageRepository) FindByConversation(ctx context.Context, conversationID string, req utils.PageRequest) ([]models.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Message{}).Where("conversation_id = ?", conversationID)
	return findPage[models.Message](query, req, "created_at DESC", "find messages")
}

func (r *gormMessageRepository) FindUnread(ctx context.Context, conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND is_read = ?", conversationID, false).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, translate(err, "find unread messages")
}

func (r *gormMessageRepository) MarkAsRead(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Update("is_read", true).Error
	return translate(err, "mark message read")
}

func (r *gormMessageRepository) MarkConversationAsRead(ctx context.Context, conversationID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND is_read = ?", conversationID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, translate(res.Error, "mark conversation read")
	}
	return res.RowsAffected, nil
}

func (r *gormMessageRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Message{})
	if res.Error != nil {
		return false, translate(res.Error, "delete message")
	}
	return res.RowsAffected > 0, nil
}
