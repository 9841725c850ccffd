package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/utils"
)

// AdminController is mounted behind RequireRole(ADMIN).
type AdminController struct {
	admin *services.AdminService
}

func NewAdminController(admin *services.AdminService) *AdminController {
	return &AdminController{admin: admin}
}

// GetDashboardStats returns platform counters for the admin dashboard
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.admin.DashboardStats(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Dashboard stats retrieved", stats)
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	page, err := ac.admin.ListUsers(c.Request.Context(), c.Query("role"), c.Query("status"), c.Query("search"), utils.ParsePageRequest(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Users retrieved", page)
}

func (ac *AdminController) GetUser(c *gin.Context) {
	user, err := ac.admin.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "User retrieved", user)
}

// UpdateUserStatus takes {"status": "..."}
func (ac *AdminController) UpdateUserStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if !bindJSON(c, &req, "Status is required") {
		return
	}
	user, err := ac.admin.SetUserStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "User status updated", user)
}

// DeleteUser removes the row permanently
func (ac *AdminController) DeleteUser(c *gin.Context) {
	if err := ac.admin.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "User deleted", nil)
}

func (ac *AdminController) ListStartups(c *gin.Context) {
	page, err := ac.admin.ListStartups(c.Request.Context(), c.Query("status"), utils.ParsePageRequest(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Startups retrieved", page)
}

func (ac *AdminController) UpdateStartupStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if !bindJSON(c, &req, "Status is required") {
		return
	}
	startup, err := ac.admin.SetStartupStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Startup status updated", startup)
}

func (ac *AdminController) ListInvestors(c *gin.Context) {
	page, err := ac.admin.ListInvestors(c.Request.Context(), c.Query("status"), utils.ParsePageRequest(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investors retrieved", page)
}

func (ac *AdminController) ListOffers(c *gin.Context) {
	page, err := ac.admin.ListOffers(c.Request.Context(), c.Query("status"), utils.ParsePageRequest(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Investment offers retrieved", page)
}

func (ac *AdminController) ActivityLog(c *gin.Context) {
	respondOK(c, "Activity retrieved", ac.admin.ActivityLog(c.Request.Context(), c.Query("type"), utils.ParsePageRequest(c)))
}
