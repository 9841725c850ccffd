package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/repositories"
	"github.com/yeremiapane/startup-platform/utils"
)

type DashboardStats struct {
	TotalUsers         int64            `json:"totalUsers"`
	ActiveUsers        int64            `json:"activeUsers"`
	TotalStartups      int64            `json:"totalStartups"`
	PublishedStartups  int64            `json:"publishedStartups"`
	TotalInvestors     int64            `json:"totalInvestors"`
	ActiveInvestors    int64            `json:"activeInvestors"`
	TotalOffers        int64            `json:"totalOffers"`
	PendingOffers      int64            `json:"pendingOffers"`
	AcceptedOffers     int64            `json:"acceptedOffers"`
	TotalFundingGoal   decimal.Decimal  `json:"totalFundingGoal"`
	TotalFundingRaised decimal.Decimal  `json:"totalFundingRaised"`
	UsersByRole        map[string]int64 `json:"usersByRole"`
	StartupsByStage    map[string]int64 `json:"startupsByStage"`
	OffersByStatus     map[string]int64 `json:"offersByStatus"`
}

// ManagedUser is a user row enriched for the admin user list.
type ManagedUser struct {
	ID                string            `json:"id"`
	Email             string            `json:"email"`
	FirstName         string            `json:"firstName"`
	LastName          string            `json:"lastName"`
	ProfilePictureURL string            `json:"profilePictureUrl"`
	UserRole          models.UserRole   `json:"userRole"`
	Status            models.UserStatus `json:"status"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	StartupName       string            `json:"startupName,omitempty"`
	InvestorCompany   string            `json:"investorCompany,omitempty"`
}

// ActivityEntry is one row of the admin activity feed.
type ActivityEntry map[string]interface{}

type AdminService struct {
	users     *UserService
	startups  *StartupService
	investors *InvestorService
	offers    *OfferService

	userRepo     repositories.UserRepository
	startupRepo  repositories.StartupRepository
	investorRepo repositories.InvestorRepository
	offerRepo    repositories.OfferRepository
}

func NewAdminService(
	users *UserService,
	startups *StartupService,
	investors *InvestorService,
	offers *OfferService,
	userRepo repositories.UserRepository,
	startupRepo repositories.StartupRepository,
	investorRepo repositories.InvestorRepository,
	offerRepo repositories.OfferRepository,
) *AdminService {
	return &AdminService{
		users:        users,
		startups:     startups,
		investors:    investors,
		offers:       offers,
		userRepo:     userRepo,
		startupRepo:  startupRepo,
		investorRepo: investorRepo,
		offerRepo:    offerRepo,
	}
}

func (s *AdminService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("load users", err)
	}
	startups, err := s.startupRepo.FindAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("load startups", err)
	}
	investors, err := s.investorRepo.FindAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("load investors", err)
	}
	offers, err := s.offerRepo.FindAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("load offers", err)
	}

	stats := &DashboardStats{
		TotalUsers:         int64(len(users)),
		TotalStartups:      int64(len(startups)),
		TotalInvestors:     int64(len(investors)),
		TotalOffers:        int64(len(offers)),
		TotalFundingGoal:   decimal.Zero,
		TotalFundingRaised: decimal.Zero,
		UsersByRole: map[string]int64{
			string(models.RoleAdmin):    0,
			string(models.RoleStartup):  0,
			string(models.RoleInvestor): 0,
		},
		StartupsByStage: map[string]int64{},
		OffersByStatus: map[string]int64{
			string(models.OfferPending):  0,
			string(models.OfferAccepted): 0,
			string(models.OfferRejected): 0,
		},
	}

	for _, u := range users {
		stats.UsersByRole[string(u.UserRole)]++
		if u.Status == models.UserActive {
			stats.ActiveUsers++
		}
	}
	for _, st := range startups {
		stats.TotalFundingGoal = stats.TotalFundingGoal.Add(st.FundingGoal)
		stats.TotalFundingRaised = stats.TotalFundingRaised.Add(st.CurrentFunding)
		if st.Status == models.StartupPublished {
			stats.PublishedStartups++
		}
		if st.Stage != "" {
			stats.StartupsByStage[string(st.Stage)]++
		}
	}
	for _, inv := range investors {
		if inv.Status == models.InvestorActive {
			stats.ActiveInvestors++
		}
	}
	for _, o := range offers {
		stats.OffersByStatus[string(o.Status)]++
	}
	stats.PendingOffers = stats.OffersByStatus[string(models.OfferPending)]
	stats.AcceptedOffers = stats.OffersByStatus[string(models.OfferAccepted)]
	return stats, nil
}

// ListUsers ignores role or status values it cannot parse.
func (s *AdminService) ListUsers(ctx context.Context, role, status, search string, req utils.PageRequest) (utils.Page[ManagedUser], error) {
	var filter repositories.UserFilter
	if r, ok := models.ParseUserRole(role); ok {
		filter.Role = r
	}
	if st, ok := models.ParseUserStatus(status); ok {
		filter.Status = st
	}
	filter.Search = search

	page, err := s.users.List(ctx, filter, req)
	if err != nil {
		return utils.Page[ManagedUser]{}, err
	}
	content := make([]ManagedUser, 0, len(page.Content))
	for i := range page.Content {
		content = append(content, s.manage(ctx, &page.Content[i]))
	}
	return utils.NewPage(content, req, page.TotalElements), nil
}

func (s *AdminService) GetUser(ctx context.Context, id string) (*ManagedUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	managed := s.manage(ctx, user)
	return &managed, nil
}

func (s *AdminService) SetUserStatus(ctx context.Context, id, status string) (*ManagedUser, error) {
	parsed, ok := models.ParseUserStatus(status)
	if !ok {
		return nil, utils.NewValidationError("Invalid status")
	}
	user, err := s.users.SetStatus(ctx, id, parsed)
	if err != nil {
		return nil, err
	}
	managed := s.manage(ctx, user)
	return &managed, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	return s.users.HardDelete(ctx, id)
}

func (s *AdminService) ListStartups(ctx context.Context, status string, req utils.PageRequest) (utils.Page[models.Startup], error) {
	parsed, ok := models.ParseStartupStatus(status)
	if !ok {
		parsed = ""
	}
	return s.startups.List(ctx, parsed, req)
}

func (s *AdminService) SetStartupStatus(ctx context.Context, id, status string) (*models.Startup, error) {
	parsed, ok := models.ParseStartupStatus(status)
	if !ok {
		return nil, utils.NewValidationError("Invalid status")
	}
	return s.startups.SetStatus(ctx, id, parsed)
}

func (s *AdminService) ListInvestors(ctx context.Context, status string, req utils.PageRequest) (utils.Page[models.Investor], error) {
	parsed, ok := models.ParseInvestorStatus(status)
	if !ok {
		parsed = ""
	}
	return s.investors.List(ctx, parsed, req)
}

func (s *AdminService) ListOffers(ctx context.Context, status string, req utils.PageRequest) (utils.Page[models.InvestmentOffer], error) {
	parsed, ok := models.ParseOfferStatus(status)
	if !ok {
		parsed = ""
	}
	return s.offers.ListByStatus(ctx, parsed, req)
}

// ActivityLog has no backing audit table yet, so it is always empty.
func (s *AdminService) ActivityLog(ctx context.Context, kind string, req utils.PageRequest) utils.Page[ActivityEntry] {
	return utils.NewPage([]ActivityEntry{}, req, 0)
}

func (s *AdminService) manage(ctx context.Context, user *models.User) ManagedUser {
	managed := ManagedUser{
		ID:                user.ID,
		Email:             user.Email,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		ProfilePictureURL: user.ProfilePictureURL,
		UserRole:          user.UserRole,
		Status:            user.Status,
		CreatedAt:         user.CreatedAt,
		UpdatedAt:         user.UpdatedAt,
	}
	switch user.UserRole {
	case models.RoleStartup:
		if startups, err := s.startupRepo.FindByUserID(ctx, user.ID); err == nil && len(startups) > 0 {
			managed.StartupName = startups[0].CompanyName
		}
	case models.RoleInvestor:
		if _, err := s.investorRepo.FindByUserID(ctx, user.ID); err == nil {
			managed.InvestorCompany = "Investor Profile"
		}
	}
	return managed
}
