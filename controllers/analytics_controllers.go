package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/utils"
)

type AnalyticsController struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics}
}

// intQuery returns def when the parameter is missing or not a number.
func intQuery(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

func (ac *AnalyticsController) PlatformStats(c *gin.Context) {
	stats, err := ac.analytics.PlatformStats(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Platform stats retrieved", stats)
}

// InvestmentTrends covers the last ?months= calendar months
func (ac *AnalyticsController) InvestmentTrends(c *gin.Context) {
	trends, err := ac.analytics.InvestmentTrends(c.Request.Context(), intQuery(c, "months", services.DefaultTrendMonths))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investment trends retrieved", trends)
}

func (ac *AnalyticsController) StageDistribution(c *gin.Context) {
	dist, err := ac.analytics.StageDistribution(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Stage distribution retrieved", dist)
}

func (ac *AnalyticsController) SectorDistribution(c *gin.Context) {
	dist, err := ac.analytics.SectorDistribution(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Sector distribution retrieved", dist)
}

func (ac *AnalyticsController) TopStartups(c *gin.Context) {
	top, err := ac.analytics.TopStartups(c.Request.Context(), intQuery(c, "limit", services.DefaultTopLimit))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Top startups retrieved", top)
}

func (ac *AnalyticsController) TopInvestors(c *gin.Context) {
	top, err := ac.analytics.TopInvestors(c.Request.Context(), intQuery(c, "limit", services.DefaultTopLimit))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Top investors retrieved", top)
}
