package services

import (
	"context"
	"errors"

	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/repositories"
	"github.com/yeremiapane/startup-platform/utils"
)

type InvestorService struct {
	repo repositories.InvestorRepository
}

func NewInvestorService(repo repositories.InvestorRepository) *InvestorService {
	return &InvestorService{repo: repo}
}

func (s *InvestorService) found(investor *models.Investor, err error) (*models.Investor, error) {
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewNotFoundError("Investor not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("find investor", err)
	}
	return investor, nil
}

func (s *InvestorService) Get(ctx context.Context, id string) (*models.Investor, error) {
	return s.found(s.repo.FindByID(ctx, id))
}

func (s *InvestorService) GetByUser(ctx context.Context, userID string) (*models.Investor, error) {
	return s.found(s.repo.FindByUserID(ctx, userID))
}

func (s *InvestorService) List(ctx context.Context, status models.InvestorStatus, req utils.PageRequest) (utils.Page[models.Investor], error) {
	rows, total, err := s.repo.List(ctx, status, req)
	if err != nil {
		return utils.Page[models.Investor]{}, utils.NewInternalError("list investors", err)
	}
	return utils.NewPage(rows, req, total), nil
}

// Create stores an investor profile; each user may have at most one.
func (s *InvestorService) Create(ctx context.Context, actor Actor, investor *models.Investor) error {
	investor.ID = ""
	if investor.UserID == "" {
		investor.UserID = actor.UserID
	}
	if investor.UserID == "" {
		return utils.NewValidationError("User ID is required")
	}
	if !actor.CanActFor(investor.UserID) {
		return utils.NewForbiddenError("Cannot create an investor profile for another user")
	}
	if investor.Status == "" {
		investor.Status = models.InvestorActive
	}
	if err := validateInvestor(investor); err != nil {
		return err
	}

	err := s.repo.Create(ctx, investor)
	if errors.Is(err, repositories.ErrDuplicate) {
		return utils.NewConflictError("Investor profile already exists for this user")
	}
	if err != nil {
		return utils.NewInternalError("create investor", err)
	}
	return nil
}

func (s *InvestorService) Update(ctx context.Context, actor Actor, id string, patch models.InvestorPatch) (*models.Investor, error) {
	investor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(investor.UserID) {
		return nil, utils.NewForbiddenError("Only the owner can update this investor profile")
	}

	patch.InvestmentBudget.Apply(&investor.InvestmentBudget)
	patch.InvestmentStage.Apply(&investor.InvestmentStage)
	patch.SectorsInterested.Apply(&investor.SectorsInterested)
	patch.MinTicketSize.Apply(&investor.MinTicketSize)
	patch.MaxTicketSize.Apply(&investor.MaxTicketSize)
	patch.PortfolioCompanies.Apply(&investor.PortfolioCompanies)
	patch.Status.Apply(&investor.Status)

	if err := validateInvestor(investor); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, investor); err != nil {
		return nil, utils.NewInternalError("update investor", err)
	}
	return investor, nil
}

func (s *InvestorService) Delete(ctx context.Context, actor Actor, id string) error {
	investor, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanActFor(investor.UserID) {
		return utils.NewForbiddenError("Only the owner can delete this investor profile")
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return utils.NewInternalError("delete investor", err)
	}
	return nil
}

func validateInvestor(investor *models.Investor) error {
	if !investor.Status.Valid() {
		return utils.NewValidationError("Invalid investor status")
	}
	if investor.InvestmentBudget.IsNegative() || investor.MinTicketSize.IsNegative() || investor.MaxTicketSize.IsNegative() {
		return utils.NewValidationError("Amounts must not be negative")
	}
	if investor.MaxTicketSize.IsPositive() && investor.MinTicketSize.GreaterThan(investor.MaxTicketSize) {
		return utils.NewValidationError("Minimum ticket size cannot exceed maximum ticket size")
	}
	investor.SectorsInterested = utils.SanitizeText(investor.SectorsInterested)
	investor.PortfolioCompanies = utils.SanitizeText(investor.PortfolioCompanies)
	return nil
}
