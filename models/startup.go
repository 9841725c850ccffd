package models

import "github.com/shopspring/decimal"

type Startup struct {
	Base
	UserID         string          `gorm:"type:varchar(36);index;not null" json:"userId"`
	CompanyName    string          `gorm:"type:varchar(255);not null" json:"companyName"`
	Description    string          `gorm:"type:text" json:"description"`
	Stage          StartupStage    `gorm:"type:varchar(20);index" json:"stage"`
	FundingGoal    decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0" json:"fundingGoal"`
	CurrentFunding decimal.Decimal `gorm:"type:decimal(19,2);not null;default:0" json:"currentFunding"`
	Website        string          `gorm:"type:varchar(500)" json:"website"`
	LinkedinURL    string          `gorm:"type:varchar(500)" json:"linkedinUrl"`
	PitchDeckURL   string          `gorm:"type:varchar(500)" json:"pitchDeckUrl"`
	Status         StartupStatus   `gorm:"type:varchar(20);index;not null;default:DRAFT" json:"status"`
}

type StartupPatch struct {
	CompanyName    Optional[string]          `json:"companyName"`
	Description    Optional[string]          `json:"description"`
	Stage          Optional[StartupStage]    `json:"stage"`
	FundingGoal    Optional[decimal.Decimal] `json:"fundingGoal"`
	CurrentFunding Optional[decimal.Decimal] `json:"currentFunding"`
	Website        Optional[string]          `json:"website"`
	LinkedinURL    Optional[string]          `json:"linkedinUrl"`
	PitchDeckURL   Optional[string]          `json:"pitchDeckUrl"`
	Status         Optional[StartupStatus]   `json:"status"`
}
