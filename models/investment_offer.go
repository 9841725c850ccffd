package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvestmentOffer struct {
	Base
	InvestorID       string           `gorm:"type:varchar(36);index;not null" json:"investorId"`
	IdeaID           string           `gorm:"type:varchar(36);index;not null" json:"ideaId"`
	OfferedAmount    decimal.Decimal  `gorm:"type:decimal(19,2);not null" json:"offeredAmount"`
	EquityPercentage decimal.Decimal  `gorm:"type:decimal(5,2);not null" json:"equityPercentage"`
	Valuation        *decimal.Decimal `gorm:"type:decimal(19,2)" json:"valuation,omitempty"`
	Message          string           `gorm:"type:text" json:"message"`
	Status           OfferStatus      `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	ExpiresAt        *time.Time       `json:"expiresAt,omitempty"`
	Version          int              `gorm:"not null;default:0" json:"version"`
}

type OfferPatch struct {
	OfferedAmount    Optional[decimal.Decimal] `json:"offeredAmount"`
	EquityPercentage Optional[decimal.Decimal] `json:"equityPercentage"`
	Valuation        Optional[decimal.Decimal] `json:"valuation"`
	Message          Optional[string]          `json:"message"`
	ExpiresAt        Optional[time.Time]       `json:"expiresAt"`
}
