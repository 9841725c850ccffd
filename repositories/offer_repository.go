package repositories

import (
	"context"
	"time"

	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/utils"
	"gorm.io/gorm"
)

type OfferRepository interface {
	Create(ctx context.Context, offer *models.InvestmentOffer) error
	FindByID(ctx context.Context, id string) (*models.InvestmentOffer, error)
	FindByIdeaID(ctx context.Context, ideaID string) ([]models.InvestmentOffer, error)
	FindByInvestorID(ctx context.Context, investorID string) ([]models.InvestmentOffer, error)
	FindAll(ctx context.Context) ([]models.InvestmentOffer, error)
	// List pages over all offers, or only those in status when it is non-empty.
	List(ctx context.Context, status models.OfferStatus, req utils.PageRequest) ([]models.InvestmentOffer, int64, error)
	// UpdateTerms writes the editable fields of a PENDING offer whose version
	// still matches and bumps offer.Version. When nothing is written it returns
	// ErrNotFound, ErrNotPending or ErrStale depending on the current row.
	UpdateTerms(ctx context.Context, offer *models.InvestmentOffer) error
	// Transition moves the offer from one status to another in a single
	// conditional UPDATE. It reports false when the offer was not in from.
	Transition(ctx context.Context, id string, from, to models.OfferStatus) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type gormOfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &gormOfferRepository{db: db}
}

func (r *gormOfferRepository) Create(ctx context.Context, offer *models.InvestmentOffer) error {
	return translate(r.db.WithContext(ctx).Create(offer).Error, "create offer")
}

func (r *gormOfferRepository) FindByID(ctx context.Context, id string) (*models.InvestmentOffer, error) {
	var offer models.InvestmentOffer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error; err != nil {
		return nil, translate(err, "find offer")
	}
	return &offer, nil
}

func (r *gormOfferRepository) FindByIdeaID(ctx context.Context, ideaID string) ([]models.InvestmentOffer, error) {
	var offers []models.InvestmentOffer
	err := r.db.WithContext(ctx).Where("idea_id = ?", ideaID).Order("created_at DESC").Find(&offers).Error
	return offers, translate(err, "find offers by idea")
}

func (r *gormOfferRepository) FindByInvestorID(ctx context.Context, investorID string) ([]models.InvestmentOffer, error) {
	var offers []models.InvestmentOffer
	err := r.db.WithContext(ctx).Where("investor_id = ?", investorID).Order("created_at DESC").Find(&offers).Error
	return offers, translate(err, "find offers by investor")
}

func (r *gormOfferRepository) FindAll(ctx context.Context) ([]models.InvestmentOffer, error) {
	var offers []models.InvestmentOffer
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&offers).Error
	return offers, translate(err, "find offers")
}

func (r *gormOfferRepository) List(ctx context.Context, status models.OfferStatus, req utils.PageRequest) ([]models.InvestmentOffer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvestmentOffer{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return findPage[models.InvestmentOffer](query, req, "created_at DESC", "list offers")
}

func (r *gormOfferRepository) UpdateTerms(ctx context.Context, offer *models.InvestmentOffer) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.InvestmentOffer{}).
		Where("id = ? AND version = ? AND status = ?", offer.ID, offer.Version, models.OfferPending).
		Updates(map[string]interface{}{
			"offered_amount":    offer.OfferedAmount,
			"equity_percentage": offer.EquityPercentage,
			"valuation":         offer.Valuation,
			"message":           offer.Message,
			"expires_at":        offer.ExpiresAt,
			"version":           offer.Version + 1,
			"updated_at":        now,
		})
	if res.Error != nil {
		return translate(res.Error, "update offer")
	}
	if res.RowsAffected == 0 {
		return r.whyNotUpdated(ctx, offer.ID)
	}
	offer.Version++
	offer.UpdatedAt = now
	return nil
}

func (r *gormOfferRepository) whyNotUpdated(ctx context.Context, id string) error {
	var current models.InvestmentOffer
	err := r.db.WithContext(ctx).Select("status").Where("id = ?", id).First(&current).Error
	switch {
	case err != nil:
		return translate(err, "reload offer")
	case current.Status != models.OfferPending:
		return ErrNotPending
	default:
		return ErrStale
	}
}

func (r *gormOfferRepository) Transition(ctx context.Context, id string, from, to models.OfferStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.InvestmentOffer{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, translate(res.Error, "transition offer")
	}
	return res.RowsAffected == 1, nil
}

func (r *gormOfferRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InvestmentOffer{})
	if res.Error != nil {
		return false, translate(res.Error, "delete offer")
	}
	return res.RowsAffected > 0, nil
}
