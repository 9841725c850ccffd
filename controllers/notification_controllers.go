package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/middlewares"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/utils"
)

// NotificationController only ever serves the caller's own notifications.
type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

func (nc *NotificationController) GetNotifications(c *gin.Context) {
	list, err := nc.notifications.List(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Notifications retrieved", list)
}

func (nc *NotificationController) GetNotificationsPaged(c *gin.Context) {
	page, err := nc.notifications.ListPaged(c.Request.Context(), middlewares.CurrentUserID(c), utils.ParsePageRequest(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Notifications retrieved", page)
}

func (nc *NotificationController) GetUnreadNotifications(c *gin.Context) {
	list, err := nc.notifications.ListUnread(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Unread notifications retrieved", list)
}

func (nc *NotificationController) GetUnreadCount(c *gin.Context) {
	n, err := nc.notifications.UnreadCount(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Unread count", gin.H{"count": n})
}

func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	if err := nc.notifications.MarkAsRead(c.Request.Context(), c.Param("id"), middlewares.CurrentUserID(c)); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Notification marked as read", gin.H{"success": true})
}

func (nc *NotificationController) MarkAllAsRead(c *gin.Context) {
	n, err := nc.notifications.MarkAllAsRead(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Notifications marked as read", gin.H{"markedCount": n})
}
