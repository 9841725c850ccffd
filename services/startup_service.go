package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/repositories"
	"github.com/yeremiapane/startup-platform/utils"
)

type StartupService struct {
	repo repositories.StartupRepository
}

func NewStartupService(repo repositories.StartupRepository) *StartupService {
	return &StartupService{repo: repo}
}

func (s *StartupService) Get(ctx context.Context, id string) (*models.Startup, error) {
	startup, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewNotFoundError("Startup not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("find startup", err)
	}
	return startup, nil
}

func (s *StartupService) ListByUser(ctx context.Context, userID string) ([]models.Startup, error) {
	startups, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("list startups by user", err)
	}
	return startups, nil
}

// List pages over startups, optionally restricted to one status.
func (s *StartupService) List(ctx context.Context, status models.StartupStatus, req utils.PageRequest) (utils.Page[models.Startup], error) {
	rows, total, err := s.repo.List(ctx, status, req)
	if err != nil {
		return utils.Page[models.Startup]{}, utils.NewInternalError("list startups", err)
	}
	return utils.NewPage(rows, req, total), nil
}

func (s *StartupService) Create(ctx context.Context, actor Actor, startup *models.Startup) error {
	startup.ID = ""
	startup.CompanyName = utils.SanitizeText(startup.CompanyName)
	if startup.CompanyName == "" {
		return utils.NewValidationError("Company name is required")
	}
	if startup.UserID == "" {
		startup.UserID = actor.UserID
	}
	if startup.UserID == "" {
		return utils.NewValidationError("User ID is required")
	}
	if !actor.CanActFor(startup.UserID) {
		return utils.NewForbiddenError("Cannot create a startup for another user")
	}
	if startup.Status == "" {
		startup.Status = models.StartupDraft
	}
	if err := validateStartup(startup); err != nil {
		return err
	}
	startup.Description = utils.SanitizeRichText(startup.Description)

	if err := s.repo.Create(ctx, startup); err != nil {
		return utils.NewInternalError("create startup", err)
	}
	return nil
}

func (s *StartupService) Update(ctx context.Context, actor Actor, id string, patch models.StartupPatch) (*models.Startup, error) {
	startup, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(startup.UserID) {
		return nil, utils.NewForbiddenError("Only the owner can update this startup")
	}

	patch.CompanyName.Apply(&startup.CompanyName)
	patch.Description.Apply(&startup.Description)
	patch.Stage.Apply(&startup.Stage)
	patch.FundingGoal.Apply(&startup.FundingGoal)
	patch.CurrentFunding.Apply(&startup.CurrentFunding)
	patch.Website.Apply(&startup.Website)
	patch.LinkedinURL.Apply(&startup.LinkedinURL)
	patch.PitchDeckURL.Apply(&startup.PitchDeckURL)
	patch.Status.Apply(&startup.Status)

	startup.CompanyName = utils.SanitizeText(startup.CompanyName)
	if startup.CompanyName == "" {
		return nil, utils.NewValidationError("Company name is required")
	}
	if err := validateStartup(startup); err != nil {
		return nil, err
	}
	startup.Description = utils.SanitizeRichText(startup.Description)

	if err := s.repo.Save(ctx, startup); err != nil {
		return nil, utils.NewInternalError("update startup", err)
	}
	return startup, nil
}

// SetStatus is the admin moderation path.
func (s *StartupService) SetStatus(ctx context.Context, id string, status models.StartupStatus) (*models.Startup, error) {
	if !status.Valid() {
		return nil, utils.NewValidationError("Invalid status")
	}
	return s.Update(ctx, Actor{Role: models.RoleAdmin}, id, models.StartupPatch{Status: models.Some(status)})
}

func (s *StartupService) Delete(ctx context.Context, actor Actor, id string) error {
	startup, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanActFor(startup.UserID) {
		return utils.NewForbiddenError("Only the owner can delete this startup")
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return utils.NewInternalError("delete startup", err)
	}
	return nil
}

func validateStartup(startup *models.Startup) error {
	if startup.Stage != "" {
		startup.Stage = models.StartupStage(strings.ToUpper(string(startup.Stage)))
		if !startup.Stage.Valid() {
			return utils.NewValidationError("Invalid startup stage")
		}
	}
	if !startup.Status.Valid() {
		return utils.NewValidationError("Invalid startup status")
	}
	if startup.FundingGoal.IsNegative() || startup.CurrentFunding.IsNegative() {
		return utils.NewValidationError("Funding amounts must not be negative")
	}
	return nil
}

// FundingProgress is currentFunding as a percentage of fundingGoal, 2dp.
func FundingProgress(startup *models.Startup) decimal.Decimal {
	if !startup.FundingGoal.IsPositive() {
		return decimal.Zero
	}
	return startup.CurrentFunding.Mul(decimal.NewFromInt(100)).Div(startup.FundingGoal).Round(2)
}
