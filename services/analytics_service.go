package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/repositories"
	"github.com/yeremiapane/startup-platform/utils"
)

type PlatformStats struct {
	TotalStartups       int64           `json:"totalStartups"`
	TotalInvestors      int64           `json:"totalInvestors"`
	TotalOffers         int64           `json:"totalOffers"`
	TotalFundingRaised  decimal.Decimal `json:"totalFundingRaised"`
	AcceptedOffersCount int64           `json:"acceptedOffersCount"`
	AverageOfferAmount  decimal.Decimal `json:"averageOfferAmount"`
	ActiveUsers         int64           `json:"activeUsers"`
}

type InvestmentTrend struct {
	Month         int             `json:"month"`
	MonthName     string          `json:"monthName"`
	Year          int             `json:"year"`
	OfferCount    int64           `json:"offerCount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	AcceptedCount int64           `json:"acceptedCount"`
}

type StageDistribution struct {
	Stage          models.StartupStage `json:"stage"`
	StartupCount   int64               `json:"startupCount"`
	AverageFunding decimal.Decimal     `json:"averageFunding"`
	TotalFunding   decimal.Decimal     `json:"totalFunding"`
	Percentage     float64             `json:"percentage"`
}

type SectorDistribution struct {
	Sector     string  `json:"sector"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type TopStartup struct {
	ID              string              `json:"id"`
	CompanyName     string              `json:"companyName"`
	Stage           models.StartupStage `json:"stage"`
	CurrentFunding  decimal.Decimal     `json:"currentFunding"`
	FundingGoal     decimal.Decimal     `json:"fundingGoal"`
	FundingProgress decimal.Decimal     `json:"fundingProgress"`
	OfferCount      int                 `json:"offerCount"`
}

type TopInvestor struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	Name              string          `json:"name"`
	TotalInvested     decimal.Decimal `json:"totalInvested"`
	OffersMade        int             `json:"offersMade"`
	OffersAccepted    int             `json:"offersAccepted"`
	SectorsInterested []string        `json:"sectorsInterested"`
}

// AnalyticsService recomputes every figure on read from full table scans.
type AnalyticsService struct {
	startups  repositories.StartupRepository
	investors repositories.InvestorRepository
	offers    repositories.OfferRepository
	users     repositories.UserRepository
	now       func() time.Time
}

func NewAnalyticsService(
	startups repositories.StartupRepository,
	investors repositories.InvestorRepository,
	offers repositories.OfferRepository,
	users repositories.UserRepository,
) *AnalyticsService {
	return &AnalyticsService{startups: startups, investors: investors, offers: offers, users: users, now: time.Now}
}

const (
	DefaultTrendMonths = 12
	MaxTrendMonths     = 60
	DefaultTopLimit    = 10
	MaxTopLimit        = 100
)

func (s *AnalyticsService) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	startups, investors, offers, users, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	stats := &PlatformStats{
		TotalStartups:      int64(len(startups)),
		TotalInvestors:     int64(len(investors)),
		TotalOffers:        int64(len(offers)),
		TotalFundingRaised: decimal.Zero,
		AverageOfferAmount: decimal.Zero,
	}
	for _, st := range startups {
		stats.TotalFundingRaised = stats.TotalFundingRaised.Add(st.CurrentFunding)
	}
	total := decimal.Zero
	for _, o := range offers {
		total = total.Add(o.OfferedAmount)
		if o.Status == models.OfferAccepted {
			stats.AcceptedOffersCount++
		}
	}
	if len(offers) > 0 {
		stats.AverageOfferAmount = total.Div(decimal.NewFromInt(int64(len(offers)))).Round(2)
	}
	for _, u := range users {
		if u.Status == models.UserActive {
			stats.ActiveUsers++
		}
	}
	return stats, nil
}

// InvestmentTrends buckets offers by creation month, oldest month first,
// ending with the current month.
func (s *AnalyticsService) InvestmentTrends(ctx context.Context, months int) ([]InvestmentTrend, error) {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	if months > MaxTrendMonths {
		months = MaxTrendMonths
	}
	offers, err := s.offers.FindAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("load offers", err)
	}

	now := s.now()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	trends := make([]InvestmentTrend, 0, months)
	for i := months - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		trend := InvestmentTrend{
			Month:       int(start.Month()),
			MonthName:   start.Month().String()[:3],
			Year:        start.Year(),
			TotalAmount: decimal.Zero,
		}
		for _, o := range offers {
			created := o.CreatedAt.In(now.Location())
			if created.Before(start) || !created.Before(end) {
				continue
			}
			trend.OfferCount++
			trend.TotalAmount = trend.TotalAmount.Add(o.OfferedAmount)
			if o.Status == models.OfferAccepted {
				trend.AcceptedCount++
			}
		}
		trends = append(trends, trend)
	}
	return trends, nil
}

func (s *AnalyticsService) StageDistribution(ctx context.Context) ([]StageDistribution, error) {
	startups, err := s.startups.FindAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("load startups", err)
	}

	byStage := make(map[models.StartupStage]*StageDistribution)
	for _, st := range startups {
		if st.Stage == "" {
			continue
		}
		d, ok := byStage[st.Stage]
		if !ok {
			d = &StageDistribution{Stage: st.Stage, TotalFunding: decimal.Zero}
			byStage[st.Stage] = d
		}
		d.StartupCount++
		d.TotalFunding = d.TotalFunding.Add(st.CurrentFunding)
	}

	out := make([]StageDistribution, 0, len(byStage))
	for _, d := range byStage {
		d.AverageFunding = d.TotalFunding.Div(decimal.NewFromInt(d.StartupCount)).Round(2)
		d.Percentage = percentage(d.StartupCount, int64(len(startups)))
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartupCount != out[j].StartupCount {
			return out[i].StartupCount > out[j].StartupCount
		}
		return out[i].Stage < out[j].Stage
	})
	return out, nil
}

// SectorDistribution counts the comma separated sectors investors list.
func (s *AnalyticsService) SectorDistribution(ctx context.Context) ([]SectorDistribution, error) {
	investors, err := s.investors.FindAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("load investors", err)
	}

	counts := make(map[string]int64)
	var total int64
	for i := range investors {
		for _, sector := range investors[i].Sectors() {
			counts[sector]++
			total++
		}
	}

	out := make([]SectorDistribution, 0, len(counts))
	for sector, n := range counts {
		out = append(out, SectorDistribution{Sector: sector, Count: n, Percentage: percentage(n, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Sector < out[j].Sector
	})
	return out, nil
}

// TopStartups ranks published startups by current funding.
func (s *AnalyticsService) TopStartups(ctx context.Context, limit int) ([]TopStartup, error) {
	limit = clampLimit(limit)
	startups, err := s.startups.FindAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("load startups", err)
	}
	offers, err := s.offers.FindAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("load offers", err)
	}
	offerCount := make(map[string]int)
	for _, o := range offers {
		offerCount[o.IdeaID]++
	}

	published := make([]models.Startup, 0, len(startups))
	for _, st := range startups {
		if st.Status == models.StartupPublished {
			published = append(published, st)
		}
	}
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].CurrentFunding.GreaterThan(published[j].CurrentFunding)
	})
	if len(published) > limit {
		published = published[:limit]
	}

	out := make([]TopStartup, 0, len(published))
	for i := range published {
		st := &published[i]
		out = append(out, TopStartup{
			ID:              st.ID,
			CompanyName:     st.CompanyName,
			Stage:           st.Stage,
			CurrentFunding:  st.CurrentFunding,
			FundingGoal:     st.FundingGoal,
			FundingProgress: FundingProgress(st),
			OfferCount:      offerCount[st.ID],
		})
	}
	return out, nil
}

// TopInvestors ranks investors by the total of their accepted offers.
func (s *AnalyticsService) TopInvestors(ctx context.Context, limit int) ([]TopInvestor, error) {
	limit = clampLimit(limit)
	investors, err := s.investors.FindAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("load investors", err)
	}
	offers, err := s.offers.FindAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("load offers", err)
	}
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, utils.NewInternalError("load users", err)
	}

	names := make(map[string]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].FullName()
	}
	byInvestor := make(map[string][]models.InvestmentOffer)
	for _, o := range offers {
		byInvestor[o.InvestorID] = append(byInvestor[o.InvestorID], o)
	}

	out := make([]TopInvestor, 0, len(investors))
	for i := range investors {
		inv := &investors[i]
		top := TopInvestor{
			ID:                inv.ID,
			UserID:            inv.UserID,
			Name:              names[inv.UserID],
			TotalInvested:     decimal.Zero,
			SectorsInterested: inv.Sectors(),
		}
		for _, o := range byInvestor[inv.UserID] {
			top.OffersMade++
			if o.Status == models.OfferAccepted {
				top.OffersAccepted++
				top.TotalInvested = top.TotalInvested.Add(o.OfferedAmount)
			}
		}
		out = append(out, top)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalInvested.GreaterThan(out[j].TotalInvested)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *AnalyticsService) scan(ctx context.Context) ([]models.Startup, []models.Investor, []models.InvestmentOffer, []models.User, error) {
	startups, err := s.startups.FindAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, utils.NewInternalError("load startups", err)
	}
	investors, err := s.investors.FindAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, utils.NewInternalError("load investors", err)
	}
	offers, err := s.offers.FindAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, utils.NewInternalError("load offers", err)
	}
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, utils.NewInternalError("load users", err)
	}
	return startups, investors, offers, users, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultTopLimit
	}
	if limit > MaxTopLimit {
		return MaxTopLimit
	}
	return limit
}

// percentage is part/total*100 rounded to 2dp; 0 when total is 0.
func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	p, _ := decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(total)).Round(2).Float64()
	return p
}
