package controllers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/startup-platform/hub"
	"github.com/yeremiapane/startup-platform/middlewares"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/utils"
)

// ChatController serves the STOMP chat socket.
type ChatController struct {
	hub       *hub.Hub
	messaging *services.MessagingService
	users     *services.UserService
}

func NewChatController(h *hub.Hub, messaging *services.MessagingService, users *services.UserService) *ChatController {
	cc := &ChatController{hub: h, messaging: messaging, users: users}

	h.Handle("/app/chat.send", cc.send)
	h.Handle("/app/chat.send/{id}", cc.send)
	h.Handle("/app/chat.join/{id}", func(ctx context.Context, userID, conversationID string, _ []byte) error {
		return messaging.Join(ctx, userID, conversationID)
	})
	h.Handle("/app/chat.leave/{id}", func(ctx context.Context, userID, conversationID string, _ []byte) error {
		return messaging.Leave(ctx, userID, conversationID)
	})
	h.Handle("/app/chat.typing/{id}", cc.typing)
	h.Handle("/app/chat.read/{id}", func(ctx context.Context, userID, conversationID string, _ []byte) error {
		return messaging.MarkRead(ctx, userID, conversationID)
	})
	h.SetAuthorizer(cc.authorize)
	return cc
}

// Connect takes the user from the token, never from the frames.
func (cc *ChatController) Connect(c *gin.Context) {
	userID := middlewares.CurrentUserID(c)
	if err := cc.hub.ServeWS(c.Writer, c.Request, userID); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Warn("WebSocket upgrade failed")
	}
}

type chatMessage struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}

func (cc *ChatController) send(ctx context.Context, userID, conversationID string, body []byte) error {
	var msg chatMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return utils.NewValidationError("Invalid message payload")
	}
	if conversationID == "" {
		conversationID = msg.ConversationID
	}
	_, err := cc.messaging.SendMessage(ctx, conversationID, userID, msg.Content)
	return err
}

func (cc *ChatController) typing(ctx context.Context, userID, conversationID string, body []byte) error {
	var signal struct {
		IsTyping *bool `json:"isTyping"`
		Typing   *bool `json:"typing"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &signal); err != nil {
			return utils.NewValidationError("Invalid typing payload")
		}
	}
	isTyping := true
	switch {
	case signal.IsTyping != nil:
		isTyping = *signal.IsTyping
	case signal.Typing != nil:
		isTyping = *signal.Typing
	}
	return cc.messaging.Typing(ctx, userID, conversationID, isTyping)
}

// authorize gates SUBSCRIBE.
func (cc *ChatController) authorize(ctx context.Context, userID, destination string) bool {
	switch {
	case strings.HasPrefix(destination, "/user/queue/"):
		return true
	case destination == hub.TopicMessages:
		user, err := cc.users.GetByID(ctx, userID)
		return err == nil && user.UserRole == models.RoleAdmin
	}

	rest, ok := strings.CutPrefix(destination, hub.ConversationTopic(""))
	if !ok {
		return false
	}
	conversationID, suffix, _ := strings.Cut(rest, "/")
	if conversationID == "" || (suffix != "" && suffix != "typing" && suffix != "read") {
		return false
	}
	return cc.messaging.CanAccessConversation(ctx, userID, conversationID)
}
