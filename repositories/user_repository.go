package repositories

import (
	"context"
	"strings"

	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/utils"
	"gorm.io/gorm"
)

// UserFilter narrows user listings. Zero values match everything.
type UserFilter struct {
	Role   models.UserRole
	Status models.UserStatus
	Search string
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	List(ctx context.Context, filter UserFilter, req utils.PageRequest) ([]models.User, int64, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) (bool, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "create user")
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "find user by id", "id = ?", id)
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "find user by email", "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *gormUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.first(ctx, "find user by google id", "google_id = ?", googleID)
}

func (r *gormUserRepository) first(ctx context.Context, op string, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, translate(err, op)
	}
	return &user, nil
}

func (r *gormUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, translate(err, "find users")
}

func (r *gormUserRepository) List(ctx context.Context, filter UserFilter, req utils.PageRequest) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("user_role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}
	return findPage[models.User](query, req, "created_at DESC", "list users")
}

func (r *gormUserRepository) Save(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error, "save user")
}

func (r *gormUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return false, translate(res.Error, "delete user")
	}
	return res.RowsAffected > 0, nil
}
