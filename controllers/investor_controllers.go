package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/startup-platform/middlewares"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/utils"
)

type InvestorController struct {
	investors *services.InvestorService
}

func NewInvestorController(investors *services.InvestorService) *InvestorController {
	return &InvestorController{investors: investors}
}

type investorRequest struct {
	UserID             string                `json:"userId"`
	InvestmentBudget   decimal.Decimal       `json:"investmentBudget"`
	InvestmentStage    string                `json:"investmentStage"`
	SectorsInterested  string                `json:"sectorsInterested"`
	MinTicketSize      decimal.Decimal       `json:"minTicketSize"`
	MaxTicketSize      decimal.Decimal       `json:"maxTicketSize"`
	PortfolioCompanies string                `json:"portfolioCompanies"`
	Status             models.InvestorStatus `json:"status"`
}

func (ic *InvestorController) ListInvestors(c *gin.Context) {
	ic.list(c, "")
}

func (ic *InvestorController) ListInvestorsByStatus(c *gin.Context) {
	status, ok := models.ParseInvestorStatus(c.Param("status"))
	if !ok {
		utils.RespondAppError(c, utils.NewValidationError("Invalid investor status"))
		return
	}
	ic.list(c, status)
}

func (ic *InvestorController) list(c *gin.Context, status models.InvestorStatus) {
	page, err := ic.investors.List(c.Request.Context(), status, utils.ParsePageRequest(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investors retrieved", page)
}

func (ic *InvestorController) GetInvestor(c *gin.Context) {
	investor, err := ic.investors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investor retrieved", investor)
}

// GetInvestorByUser returns the single profile owned by :userId
func (ic *InvestorController) GetInvestorByUser(c *gin.Context) {
	investor, err := ic.investors.GetByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investor retrieved", investor)
}

func (ic *InvestorController) CreateInvestor(c *gin.Context) {
	var req investorRequest
	if !bindJSON(c, &req, "Invalid investor payload") {
		return
	}

	investor := &models.Investor{
		UserID:             req.UserID,
		InvestmentBudget:   req.InvestmentBudget,
		InvestmentStage:    req.InvestmentStage,
		SectorsInterested:  req.SectorsInterested,
		MinTicketSize:      req.MinTicketSize,
		MaxTicketSize:      req.MaxTicketSize,
		PortfolioCompanies: req.PortfolioCompanies,
		Status:             req.Status,
	}
	if err := ic.investors.Create(c.Request.Context(), middlewares.CurrentActor(c), investor); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Investor created", investor)
}

func (ic *InvestorController) UpdateInvestor(c *gin.Context) {
	var patch models.InvestorPatch
	if !bindJSON(c, &patch, "Invalid investor payload") {
		return
	}
	investor, err := ic.investors.Update(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id"), patch)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investor updated", investor)
}

func (ic *InvestorController) DeleteInvestor(c *gin.Context) {
	if err := ic.investors.Delete(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id")); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investor deleted", nil)
}
