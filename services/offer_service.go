package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/repositories"
	"github.com/yeremiapane/startup-platform/utils"
)

// CreateOfferInput is the body of a new investment offer.
type CreateOfferInput struct {
	InvestorID       string           `json:"investorId"`
	IdeaID           string           `json:"ideaId"`
	OfferedAmount    *decimal.Decimal `json:"offeredAmount"`
	EquityPercentage *decimal.Decimal `json:"equityPercentage"`
	Valuation        *decimal.Decimal `json:"valuation"`
	Message          string           `json:"message"`
	ExpiresAt        *time.Time       `json:"expiresAt"`
}

type OfferService struct {
	offers        repositories.OfferRepository
	startups      repositories.StartupRepository
	users         repositories.UserRepository
	notifications *NotificationService
	email         *EmailService
	dispatcher    *Dispatcher
}

func NewOfferService(
	offers repositories.OfferRepository,
	startups repositories.StartupRepository,
	users repositories.UserRepository,
	notifications *NotificationService,
	email *EmailService,
	dispatcher *Dispatcher,
) *OfferService {
	return &OfferService{
		offers:        offers,
		startups:      startups,
		users:         users,
		notifications: notifications,
		email:         email,
		dispatcher:    dispatcher,
	}
}

var hundred = decimal.NewFromInt(100)

func (s *OfferService) Create(ctx context.Context, actor Actor, in CreateOfferInput) (*models.InvestmentOffer, error) {
	if in.InvestorID == "" {
		in.InvestorID = actor.UserID
	}
	if in.InvestorID == "" || in.IdeaID == "" {
		return nil, utils.NewValidationError("Investor ID and Idea ID are required")
	}
	if in.OfferedAmount == nil || in.EquityPercentage == nil {
		return nil, utils.NewValidationError("Offered amount and equity percentage are required")
	}
	if !in.OfferedAmount.IsPositive() {
		return nil, utils.NewValidationError("Offered amount must be positive")
	}
	if !in.EquityPercentage.IsPositive() || in.EquityPercentage.GreaterThan(hundred) {
		return nil, utils.NewValidationError("Equity percentage must be greater than 0 and at most 100")
	}
	if in.Valuation != nil && in.Valuation.IsNegative() {
		return nil, utils.NewValidationError("Valuation must not be negative")
	}
	if !actor.CanActFor(in.InvestorID) {
		return nil, utils.NewForbiddenError("Cannot make an offer on behalf of another investor")
	}

	startup, err := s.startups.FindByID(ctx, in.IdeaID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewNotFoundError("Startup not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("find startup", err)
	}

	offer := &models.InvestmentOffer{
		InvestorID:       in.InvestorID,
		IdeaID:           in.IdeaID,
		OfferedAmount:    *in.OfferedAmount,
		EquityPercentage: *in.EquityPercentage,
		Valuation:        in.Valuation,
		Message:          utils.SanitizeText(in.Message),
		Status:           models.OfferPending,
		ExpiresAt:        in.ExpiresAt,
	}
	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, utils.NewInternalError("create offer", err)
	}

	s.announceReceived(*offer, *startup)
	return offer, nil
}

func (s *OfferService) Get(ctx context.Context, id string) (*models.InvestmentOffer, error) {
	offer, err := s.offers.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewNotFoundError("Investment offer not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("find offer", err)
	}
	return offer, nil
}

func (s *OfferService) ListByIdea(ctx context.Context, ideaID string) ([]models.InvestmentOffer, error) {
	offers, err := s.offers.FindByIdeaID(ctx, ideaID)
	if err != nil {
		return nil, utils.NewInternalError("list offers by idea", err)
	}
	return offers, nil
}

func (s *OfferService) ListByInvestor(ctx context.Context, investorID string) ([]models.InvestmentOffer, error) {
	offers, err := s.offers.FindByInvestorID(ctx, investorID)
	if err != nil {
		return nil, utils.NewInternalError("list offers by investor", err)
	}
	return offers, nil
}

func (s *OfferService) ListByStatus(ctx context.Context, status models.OfferStatus, req utils.PageRequest) (utils.Page[models.InvestmentOffer], error) {
	rows, total, err := s.offers.List(ctx, status, req)
	if err != nil {
		return utils.Page[models.InvestmentOffer]{}, utils.NewInternalError("list offers", err)
	}
	return utils.NewPage(rows, req, total), nil
}

// Update edits the terms of a pending offer.
func (s *OfferService) Update(ctx context.Context, actor Actor, id string, patch models.OfferPatch) (*models.InvestmentOffer, error) {
	offer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(offer.InvestorID) {
		return nil, utils.NewForbiddenError("Only the investor who made the offer can update it")
	}
	if offer.Status != models.OfferPending {
		return nil, utils.NewConflictError("Only pending offers can be updated")
	}

	patch.OfferedAmount.Apply(&offer.OfferedAmount)
	patch.EquityPercentage.Apply(&offer.EquityPercentage)
	patch.Valuation.ApplyPtr(&offer.Valuation)
	patch.Message.Apply(&offer.Message)
	patch.ExpiresAt.ApplyPtr(&offer.ExpiresAt)

	if !offer.OfferedAmount.IsPositive() {
		return nil, utils.NewValidationError("Offered amount must be positive")
	}
	if !offer.EquityPercentage.IsPositive() || offer.EquityPercentage.GreaterThan(hundred) {
		return nil, utils.NewValidationError("Equity percentage must be greater than 0 and at most 100")
	}
	offer.Message = utils.SanitizeText(offer.Message)

	err = s.offers.UpdateTerms(ctx, offer)
	switch {
	case errors.Is(err, repositories.ErrStale):
		return nil, utils.NewConflictError("Offer was modified concurrently, reload and retry")
	case errors.Is(err, repositories.ErrNotPending):
		return nil, utils.NewConflictError("Only pending offers can be updated")
	case errors.Is(err, repositories.ErrNotFound):
		return nil, utils.NewNotFoundError("Investment offer not found")
	case err != nil:
		return nil, utils.NewInternalError("update offer", err)
	}
	return offer, nil
}

func (s *OfferService) Accept(ctx context.Context, actor Actor, id string) (*models.InvestmentOffer, error) {
	return s.transition(ctx, actor, id, models.OfferAccepted)
}

func (s *OfferService) Reject(ctx context.Context, actor Actor, id string) (*models.InvestmentOffer, error) {
	return s.transition(ctx, actor, id, models.OfferRejected)
}

// transition moves a pending offer to a terminal status. The repository
// update is conditional on PENDING, so of two racing calls exactly one wins.
func (s *OfferService) transition(ctx context.Context, actor Actor, id string, to models.OfferStatus) (*models.InvestmentOffer, error) {
	offer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	startup, err := s.startups.FindByID(ctx, offer.IdeaID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewInternalError("find startup", err)
	}
	owner := ""
	if startup != nil {
		owner = startup.UserID
	}
	if !actor.CanActFor(owner) {
		return nil, utils.NewForbiddenError("Only the startup owner can respond to this offer")
	}

	if offer.Status != models.OfferPending {
		return nil, utils.NewConflictError("Offer is already " + string(offer.Status))
	}
	ok, err := s.offers.Transition(ctx, id, models.OfferPending, to)
	if err != nil {
		return nil, utils.NewInternalError("transition offer", err)
	}
	if !ok {
		return nil, utils.NewConflictError("Offer is no longer pending")
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.announceDecision(*updated, startup)
	return updated, nil
}

// Delete removes an offer in any state.
func (s *OfferService) Delete(ctx context.Context, actor Actor, id string) error {
	offer, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanActFor(offer.InvestorID) {
		return utils.NewForbiddenError("Only the investor who made the offer can delete it")
	}
	ok, err := s.offers.Delete(ctx, id)
	if err != nil {
		return utils.NewInternalError("delete offer", err)
	}
	if !ok {
		return utils.NewNotFoundError("Investment offer not found")
	}
	return nil
}

func (s *OfferService) announceReceived(offer models.InvestmentOffer, startup models.Startup) {
	s.dispatcher.Enqueue(Task{
		Name: "notification.offer_received",
		Run: func(ctx context.Context) error {
			investorName := s.displayName(ctx, offer.InvestorID, "An investor")
			return s.notifications.NotifyOfferReceived(ctx, startup.UserID, investorName, startup.CompanyName, offer.ID)
		},
	})
	s.dispatcher.Enqueue(Task{
		Name: "email.offer_received",
		Run: func(ctx context.Context) error {
			owner, err := s.users.FindByID(ctx, startup.UserID)
			if err != nil {
				return lookupFailure(err)
			}
			investorName := s.displayName(ctx, offer.InvestorID, "An investor")
			return s.email.SendOfferReceived(ctx, owner.Email, investorName, startup.CompanyName, offer.OfferedAmount)
		},
	})
}

func (s *OfferService) announceDecision(offer models.InvestmentOffer, startup *models.Startup) {
	startupName := "Unknown Startup"
	if startup != nil {
		startupName = startup.CompanyName
	}

	s.dispatcher.Enqueue(Task{
		Name: "notification.offer_decision",
		Run: func(ctx context.Context) error {
			if offer.Status == models.OfferAccepted {
				return s.notifications.NotifyOfferAccepted(ctx, offer.InvestorID, startupName, offer.ID)
			}
			return s.notifications.NotifyOfferRejected(ctx, offer.InvestorID, startupName, offer.ID)
		},
	})
	s.dispatcher.Enqueue(Task{
		Name: "email.offer_decision",
		Run: func(ctx context.Context) error {
			investor, err := s.users.FindByID(ctx, offer.InvestorID)
			if err != nil {
				return lookupFailure(err)
			}
			if offer.Status == models.OfferAccepted {
				return s.email.SendOfferAccepted(ctx, investor.Email, startupName, offer.OfferedAmount)
			}
			return s.email.SendOfferRejected(ctx, investor.Email, startupName, offer.OfferedAmount)
		},
	})
}

func (s *OfferService) displayName(ctx context.Context, userID, fallback string) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			utils.ErrorLogger.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Error("lookup display name")
		}
		return fallback
	}
	return user.FullName()
}

// lookupFailure makes a missing row permanent; other errors are retried.
func lookupFailure(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return permanent(err)
	}
	return err
}
