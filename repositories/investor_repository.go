package repositories

import (
	"context"

	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/utils"
	"gorm.io/gorm"
)

type InvestorRepository interface {
	Create(ctx context.Context, investor *models.Investor) error
	FindByID(ctx context.Context, id string) (*models.Investor, error)
	FindByUserID(ctx context.Context, userID string) (*models.Investor, error)
	FindAll(ctx context.Context) ([]models.Investor, error)
	List(ctx context.Context, status models.InvestorStatus, req utils.PageRequest) ([]models.Investor, int64, error)
	Save(ctx context.Context, investor *models.Investor) error
	Delete(ctx context.Context, id string) (bool, error)
}

type gormInvestorRepository struct {
	db *gorm.DB
}

func NewInvestorRepository(db *gorm.DB) InvestorRepository {
	return &gormInvestorRepository{db: db}
}

func (r *gormInvestorRepository) Create(ctx context.Context, investor *models.Investor) error {
	return translate(r.db.WithContext(ctx).Create(investor).Error, "create investor")
}

func (r *gormInvestorRepository) FindByID(ctx context.Context, id string) (*models.Investor, error) {
	var investor models.Investor
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&investor).Error; err != nil {
		return nil, translate(err, "find investor")
	}
	return &investor, nil
}

func (r *gormInvestorRepository) FindByUserID(ctx context.Context, userID string) (*models.Investor, error) {
	var investor models.Investor
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&investor).Error; err != nil {
		return nil, translate(err, "find investor by user")
	}
	return &investor, nil
}

func (r *gormInvestorRepository) FindAll(ctx context.Context) ([]models.Investor, error) {
	var investors []models.Investor
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&investors).Error
	return investors, translate(err, "find investors")
}

func (r *gormInvestorRepository) List(ctx context.Context, status models.InvestorStatus, req utils.PageRequest) ([]models.Investor, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Investor{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return findPage[models.Investor](query, req, "created_at DESC", "list investors")
}

func (r *gormInvestorRepository) Save(ctx context.Context, investor *models.Investor) error {
	return translate(r.db.WithContext(ctx).Save(investor).Error, "save investor")
}

func (r *gormInvestorRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Investor{})
	if res.Error != nil {
		return false, translate(res.Error, "delete investor")
	}
	return res.RowsAffected > 0, nil
}
