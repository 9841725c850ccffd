package repositories

import (
	"context"

	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/utils"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByUser(ctx context.Context, userID string) ([]models.Notification, error)
	FindByUserPaged(ctx context.Context, userID string, req utils.PageRequest) ([]models.Notification, int64, error)
	FindUnread(ctx context.Context, userID string) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkAsRead reports false when no notification with id belongs to userID.
	MarkAsRead(ctx context.Context, id, userID string) (bool, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
}

type gormNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return translate(r.db.WithContext(ctx).Create(notification).Error, "create notification")
}

func (r *gormNotificationRepository) FindByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error
	return notifications, translate(err, "find notifications")
}

func (r *gormNotificationRepository) FindByUserPaged(ctx context.Context, userID string, req utils.PageRequest) ([]models.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	return findPage[models.Notification](query, req, "created_at DESC", "page notifications")
}

func (r *gormNotificationRepository) FindUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, translate(err, "find unread notifications")
}

func (r *gormNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, translate(err, "count unread notifications")
}

func (r *gormNotificationRepository) MarkAsRead(ctx context.Context, id, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
		return false, translate(err, "find notification")
	}
	if count == 0 {
		return false, nil
	}
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Update("is_read", true).Error
	return true, translate(err, "mark notification read")
}

func (r *gormNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, translate(res.Error, "mark all notifications read")
	}
	return res.RowsAffected, nil
}
