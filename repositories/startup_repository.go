package repositories

import (
	"context"

	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/utils"
	"gorm.io/gorm"
)

type StartupRepository interface {
	Create(ctx context.Context, startup *models.Startup) error
	FindByID(ctx context.Context, id string) (*models.Startup, error)
	FindByUserID(ctx context.Context, userID string) ([]models.Startup, error)
	FindAll(ctx context.Context) ([]models.Startup, error)
	// List pages over all startups, or only those in status when it is non-empty.
	List(ctx context.Context, status models.StartupStatus, req utils.PageRequest) ([]models.Startup, int64, error)
	Save(ctx context.Context, startup *models.Startup) error
	Delete(ctx context.Context, id string) (bool, error)
}

type gormStartupRepository struct {
	db *gorm.DB
}

func NewStartupRepository(db *gorm.DB) StartupRepository {
	return &gormStartupRepository{db: db}
}

func (r *gormStartupRepository) Create(ctx context.Context, startup *models.Startup) error {
	return translate(r.db.WithContext(ctx).Create(startup).Error, "create startup")
}

func (r *gormStartupRepository) FindByID(ctx context.Context, id string) (*models.Startup, error) {
	var startup models.Startup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&startup).Error; err != nil {
		return nil, translate(err, "find startup")
	}
	return &startup, nil
}

func (r *gormStartupRepository) FindByUserID(ctx context.Context, userID string) ([]models.Startup, error) {
	var startups []models.Startup
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&startups).Error
	return startups, translate(err, "find startups by user")
}

func (r *gormStartupRepository) FindAll(ctx context.Context) ([]models.Startup, error) {
	var startups []models.Startup
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&startups).Error
	return startups, translate(err, "find startups")
}

func (r *gormStartupRepository) List(ctx context.Context, status models.StartupStatus, req utils.PageRequest) ([]models.Startup, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Startup{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return findPage[models.Startup](query, req, "created_at DESC", "list startups")
}

func (r *gormStartupRepository) Save(ctx context.Context, startup *models.Startup) error {
	return translate(r.db.WithContext(ctx).Save(startup).Error, "save startup")
}

func (r *gormStartupRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Startup{})
	if res.Error != nil {
		return false, translate(res.Error, "delete startup")
	}
	return res.RowsAffected > 0, nil
}
