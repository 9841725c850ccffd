package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/utils"
)

// bindJSON decodes the body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondAppError(c, utils.NewValidationError(message))
		return false
	}
	return true
}

func respondOK(c *gin.Context, message string, data interface{}) {
	utils.RespondJSON(c, http.StatusOK, message, data)
}
