package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/utils"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "password123"

// SeedOptions controls first-run data. Both parts are skipped when empty.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	DemoData      bool
}

type demoAccount struct {
	user     models.User
	startup  *models.Startup
	investor *models.Investor
}

var demoAccounts = []demoAccount{
	{user: models.User{Email: "admin@startup.io", FirstName: "Admin", LastName: "User", UserRole: models.RoleAdmin}},
	{
		user: models.User{Email: "john@techstartup.io", FirstName: "John", LastName: "Founder", UserRole: models.RoleStartup},
		startup: &models.Startup{
			CompanyName:    "TechVenture AI",
			Description:    "AI-powered customer service automation platform.",
			Stage:          models.StageSeed,
			FundingGoal:    decimal.NewFromInt(500000),
			CurrentFunding: decimal.NewFromInt(125000),
			Website:        "https://techventure.ai",
			Status:         models.StartupPublished,
		},
	},
	{
		user: models.User{Email: "sarah@greentech.io", FirstName: "Sarah", LastName: "Green", UserRole: models.RoleStartup},
		startup: &models.Startup{
			CompanyName:    "EcoSolutions",
			Description:    "Sustainable packaging for e-commerce.",
			Stage:          models.StageSeriesA,
			FundingGoal:    decimal.NewFromInt(750000),
			CurrentFunding: decimal.NewFromInt(200000),
			Website:        "https://ecosolutions.green",
			Status:         models.StartupPublished,
		},
	},
	{
		user: models.User{Email: "mike@healthapp.io", FirstName: "Mike", LastName: "Health", UserRole: models.RoleStartup},
		startup: &models.Startup{
			CompanyName:    "HealthTrack Pro",
			Description:    "Health monitoring app with wearable integration.",
			Stage:          models.StageIdea,
			FundingGoal:    decimal.NewFromInt(1000000),
			CurrentFunding: decimal.NewFromInt(350000),
			Website:        "https://healthtrackpro.com",
			Status:         models.StartupPublished,
		},
	},
	{
		user: models.User{Email: "investor@venture.capital", FirstName: "Victoria", LastName: "Capital", UserRole: models.RoleInvestor},
		investor: &models.Investor{
			InvestmentBudget:   decimal.NewFromInt(5000000),
			InvestmentStage:    "Seed, Series A",
			SectorsInterested:  "Technology, AI/ML, SaaS",
			MinTicketSize:      decimal.NewFromInt(50000),
			MaxTicketSize:      decimal.NewFromInt(500000),
			PortfolioCompanies: "TechCorp, AI Labs",
		},
	},
	{
		user: models.User{Email: "angel@investments.co", FirstName: "Alex", LastName: "Angel", UserRole: models.RoleInvestor},
		investor: &models.Investor{
			InvestmentBudget:   decimal.NewFromInt(2000000),
			InvestmentStage:    "Pre-seed, Seed",
			SectorsInterested:  "Healthcare, Green Tech",
			MinTicketSize:      decimal.NewFromInt(25000),
			MaxTicketSize:      decimal.NewFromInt(250000),
			PortfolioCompanies: "HealthFirst, GreenEnergy",
		},
	},
}

// Seeder creates the bootstrap admin and optional demo accounts. Accounts
// that already exist are left untouched, so it is safe on every start.
type Seeder struct {
	users     *UserService
	startups  *StartupService
	investors *InvestorService
}

func NewSeeder(users *UserService, startups *StartupService, investors *InvestorService) *Seeder {
	return &Seeder{users: users, startups: startups, investors: investors}
}

func (s *Seeder) Run(ctx context.Context, opts SeedOptions) error {
	if opts.AdminEmail != "" {
		if err := s.seedAdmin(ctx, opts.AdminEmail, opts.AdminPassword); err != nil {
			return err
		}
	}
	if !opts.DemoData {
		return nil
	}

	hash, err := hashPassword(DemoPassword)
	if err != nil {
		return err
	}
	created := 0
	for _, demo := range demoAccounts {
		ok, err := s.seedDemo(ctx, demo, hash)
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	utils.InfoLogger.WithField("accounts", created).Info("Demo data loaded")
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context, email, password string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if existing.UserRole != models.RoleAdmin {
			utils.InfoLogger.WithField("email", existing.Email).Warn("ADMIN_EMAIL belongs to a non-admin account, not promoting it")
		}
		return nil
	}
	if !utils.IsNotFound(err) {
		return err
	}
	if len(password) < 8 {
		return utils.NewValidationError("ADMIN_PASSWORD must be at least 8 characters")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        email,
		FirstName:    "Admin",
		LastName:     "User",
		PasswordHash: hash,
		UserRole:     models.RoleAdmin,
		Status:       models.UserActive,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	utils.InfoLogger.WithFields(logrus.Fields{"user_id": admin.ID, "email": admin.Email}).Info("Bootstrap admin created")
	return nil
}

func (s *Seeder) seedDemo(ctx context.Context, demo demoAccount, hash string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, demo.user.Email)
	if err == nil {
		return false, nil
	}
	if !utils.IsNotFound(err) {
		return false, err
	}

	user := demo.user
	user.PasswordHash = hash
	user.Status = models.UserActive
	if err := s.users.Create(ctx, &user); err != nil {
		return false, err
	}
	owner := Actor{UserID: user.ID, Role: user.UserRole}

	if demo.startup != nil {
		startup := *demo.startup
		if err := s.startups.Create(ctx, owner, &startup); err != nil {
			return false, err
		}
	}
	if demo.investor != nil {
		investor := *demo.investor
		investor.Status = models.InvestorActive
		if err := s.investors.Create(ctx, owner, &investor); err != nil {
			return false, err
		}
	}
	return true, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", utils.NewInternalError("hash password", err)
	}
	return string(hashed), nil
}
