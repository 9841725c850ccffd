package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/middlewares"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/utils"
)

type MessageController struct {
	messaging *services.MessagingService
}

func NewMessageController(messaging *services.MessagingService) *MessageController {
	return &MessageController{messaging: messaging}
}

// GetOrCreateConversation between ?user1Id= and ?user2Id=
func (mc *MessageController) GetOrCreateConversation(c *gin.Context) {
	actor := middlewares.CurrentActor(c)
	user1, user2 := c.Query("user1Id"), c.Query("user2Id")
	if !actor.IsAdmin() && actor.UserID != user1 && actor.UserID != user2 {
		utils.RespondAppError(c, utils.NewForbiddenError("You can only open your own conversations"))
		return
	}

	conversation, err := mc.messaging.GetOrCreateConversation(c.Request.Context(), user1, user2)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Conversation ready", conversation)
}

func (mc *MessageController) GetConversation(c *gin.Context) {
	conversation, err := mc.messaging.RequireParticipant(c.Request.Context(), middlewares.CurrentActor(c), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Conversation retrieved", conversation)
}

func (mc *MessageController) ListConversationsByUser(c *gin.Context) {
	userID := c.Param("userId")
	if !middlewares.CurrentActor(c).CanActFor(userID) {
		utils.RespondAppError(c, utils.NewForbiddenError("You can only list your own conversations"))
		return
	}
	conversations, err := mc.messaging.GetConversationsByUser(c.Request.Context(), userID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Conversations retrieved", conversations)
}

// SendMessage posts as the authenticated user; senderId may be omitted.
func (mc *MessageController) SendMessage(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversationId"`
		SenderID       string `json:"senderId"`
		Content        string `json:"content"`
	}
	if !bindJSON(c, &req, "Invalid message payload") {
		return
	}

	actor := middlewares.CurrentActor(c)
	if req.SenderID == "" {
		req.SenderID = actor.UserID
	}
	if req.SenderID != actor.UserID && !actor.IsAdmin() {
		utils.RespondAppError(c, utils.NewForbiddenError("You can only send messages as yourself"))
		return
	}

	message, err := mc.messaging.SendMessage(c.Request.Context(), req.ConversationID, req.SenderID, req.Content)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Message sent", message)
}

// GetMessages pages a conversation, newest first
func (mc *MessageController) GetMessages(c *gin.Context) {
	conversationID := c.Param("conversationId")
	if _, err := mc.messaging.RequireParticipant(c.Request.Context(), middlewares.CurrentActor(c), conversationID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	page, err := mc.messaging.GetMessages(c.Request.Context(), conversationID, utils.ParsePageRequest(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Messages retrieved", page)
}

func (mc *MessageController) GetUnreadMessages(c *gin.Context) {
	conversationID := c.Param("conversationId")
	if _, err := mc.messaging.RequireParticipant(c.Request.Context(), middlewares.CurrentActor(c), conversationID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	messages, err := mc.messaging.GetUnreadMessages(c.Request.Context(), conversationID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Unread messages retrieved", messages)
}

// MarkMessageAsRead takes a message id
func (mc *MessageController) MarkMessageAsRead(c *gin.Context) {
	ctx := c.Request.Context()
	message, err := mc.messaging.GetMessage(ctx, c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if _, err := mc.messaging.RequireParticipant(ctx, middlewares.CurrentActor(c), message.ConversationID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := mc.messaging.MarkMessageAsRead(ctx, message.ID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Message marked as read", gin.H{"success": true})
}

// MarkConversationAsRead takes a conversation id
func (mc *MessageController) MarkConversationAsRead(c *gin.Context) {
	ctx := c.Request.Context()
	conversationID := c.Param("id")
	if _, err := mc.messaging.RequireParticipant(ctx, middlewares.CurrentActor(c), conversationID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	n, err := mc.messaging.MarkConversationAsRead(ctx, conversationID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Conversation marked as read", gin.H{"markedCount": n})
}

// DeleteMessage answers 204, or 404 when the id is unknown
func (mc *MessageController) DeleteMessage(c *gin.Context) {
	ctx := c.Request.Context()
	message, err := mc.messaging.GetMessage(ctx, c.Param("messageId"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if !middlewares.CurrentActor(c).CanActFor(message.SenderID) {
		utils.RespondAppError(c, utils.NewForbiddenError("You can only delete your own messages"))
		return
	}
	deleted, err := mc.messaging.DeleteMessage(ctx, message.ID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if !deleted {
		utils.RespondAppError(c, utils.NewNotFoundError("Message not found"))
		return
	}
	c.Status(http.StatusNoContent)
}
