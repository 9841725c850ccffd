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

type StartupController struct {
	startups *services.StartupService
}

func NewStartupController(startups *services.StartupService) *StartupController {
	return &StartupController{startups: startups}
}

type startupRequest struct {
	UserID         string               `json:"userId"`
	CompanyName    string               `json:"companyName"`
	Description    string               `json:"description"`
	Stage          models.StartupStage  `json:"stage"`
	FundingGoal    decimal.Decimal      `json:"fundingGoal"`
	CurrentFunding decimal.Decimal      `json:"currentFunding"`
	Website        string               `json:"website"`
	LinkedinURL    string               `json:"linkedinUrl"`
	PitchDeckURL   string               `json:"pitchDeckUrl"`
	Status         models.StartupStatus `json:"status"`
}

// ListStartups pages over startups, optionally by ?status=
func (sc *StartupController) ListStartups(c *gin.Context) {
	var status models.StartupStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := models.ParseStartupStatus(raw)
		if !ok {
			utils.RespondAppError(c, utils.NewValidationError("Invalid startup status"))
			return
		}
		status = parsed
	}
	sc.list(c, status)
}

func (sc *StartupController) ListStartupsByStatus(c *gin.Context) {
	status, ok := models.ParseStartupStatus(c.Param("status"))
	if !ok {
		utils.RespondAppError(c, utils.NewValidationError("Invalid startup status"))
		return
	}
	sc.list(c, status)
}

func (sc *StartupController) list(c *gin.Context, status models.StartupStatus) {
	page, err := sc.startups.List(c.Request.Context(), status, utils.ParsePageRequest(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Startups retrieved", page)
}

func (sc *StartupController) GetStartup(c *gin.Context) {
	startup, err := sc.startups.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Startup retrieved", startup)
}

func (sc *StartupController) ListStartupsByUser(c *gin.Context) {
	startups, err := sc.startups.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Startups retrieved", startups)
}

func (sc *StartupController) CreateStartup(c *gin.Context) {
	var req startupRequest
	if !bindJSON(c, &req, "Invalid startup payload") {
		return
	}

	startup := &models.Startup{
		UserID:         req.UserID,
		CompanyName:    req.CompanyName,
		Description:    req.Description,
		Stage:          req.Stage,
		FundingGoal:    req.FundingGoal,
		CurrentFunding: req.CurrentFunding,
		Website:        req.Website,
		LinkedinURL:    req.LinkedinURL,
		PitchDeckURL:   req.PitchDeckURL,
		Status:         req.Status,
	}
	if err := sc.startups.Create(c.Request.Context(), middlewares.CurrentActor(c), startup); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Startup created", startup)
}

func (sc *StartupController) UpdateStartup(c *gin.Context) {
	var patch models.StartupPatch
	if !bindJSON(c, &patch, "Invalid startup payload") {
		return
	}
	startup, err := sc.startups.Update(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id"), patch)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Startup updated", startup)
}

func (sc *StartupController) DeleteStartup(c *gin.Context) {
	if err := sc.startups.Delete(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id")); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Startup deleted", nil)
}
