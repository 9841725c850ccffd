package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Investor struct {
	Base
	UserID             string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
	InvestmentBudget   decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0" json:"investmentBudget"`
	InvestmentStage    string          `gorm:"type:varchar(255)" json:"investmentStage"`
	SectorsInterested  string          `gorm:"type:text" json:"sectorsInterested"`
	MinTicketSize      decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0" json:"minTicketSize"`
	MaxTicketSize      decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0" json:"maxTicketSize"`
	PortfolioCompanies string          `gorm:"type:text" json:"portfolioCompanies"`
	Status             InvestorStatus  `gorm:"type:varchar(20);index;not null;default:ACTIVE" json:"status"`
}

// Sectors splits SectorsInterested on commas, dropping blanks.
func (i *Investor) Sectors() []string {
	var out []string
	for _, s := range strings.Split(i.SectorsInterested, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type InvestorPatch struct {
	InvestmentBudget   Optional[decimal.Decimal] `json:"investmentBudget"`
	InvestmentStage    Optional[string]          `json:"investmentStage"`
	SectorsInterested  Optional[string]          `json:"sectorsInterested"`
	MinTicketSize      Optional[decimal.Decimal] `json:"minTicketSize"`
	MaxTicketSize      Optional[decimal.Decimal] `json:"maxTicketSize"`
	PortfolioCompanies Optional[string]          `json:"portfolioCompanies"`
	Status             Optional[InvestorStatus]  `json:"status"`
}
