package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/startup-platform/hub"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/utils"
)

func TestGetOrCreateConversationIsSymmetric(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.user(t, "a@example.com", models.RoleStartup)
	b := h.user(t, "b@example.com", models.RoleInvestor)

	ab, err := h.messaging.GetOrCreateConversation(ctx, a.ID, b.ID)
	require.NoError(t, err)
	ba, err := h.messaging.GetOrCreateConversation(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, ab.ID, ba.ID)

	_, err = h.messaging.GetOrCreateConversation(ctx, a.ID, a.ID)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	_, err = h.messaging.GetOrCreateConversation(ctx, "", b.ID)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.user(t, "a@example.com", models.RoleStartup)
	b := h.user(t, "b@example.com", models.RoleInvestor)
	conv, err := h.messaging.GetOrCreateConversation(ctx, a.ID, b.ID)
	require.NoError(t, err)

	msg, err := h.messaging.SendMessage(ctx, conv.ID, a.ID, "  hello <script>alert(1)</script>there ")
	require.NoError(t, err)
	assert.False(t, msg.IsRead)
	assert.Equal(t, "hello there", msg.Content)

	updated, err := h.messaging.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.False(t, updated.LastMessageAt.Before(msg.CreatedAt))

	assert.Len(t, h.broadcaster.to(hub.ConversationTopic(conv.ID)), 1)
	assert.Len(t, h.broadcaster.to(hub.TopicMessages), 1)

	h.dispatcher.Wait()
	notes, err := h.notifications.List(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationMessageReceived, notes[0].Type)
	assert.Equal(t, conv.ID, notes[0].ReferenceID)
	assert.Contains(t, h.mailer.subjects(), "New Message from Test STARTUP")

	mine, err := h.notifications.List(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestSendMessageValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.user(t, "a@example.com", models.RoleStartup)
	b := h.user(t, "b@example.com", models.RoleInvestor)
	outsider := h.user(t, "c@example.com", models.RoleInvestor)
	conv, err := h.messaging.GetOrCreateConversation(ctx, a.ID, b.ID)
	require.NoError(t, err)

	tests := []struct {
		name           string
		conversationID string
		senderID       string
		content        string
		kind           utils.ErrorKind
	}{
		{"empty content", conv.ID, a.ID, "   ", utils.KindValidation},
		{"markup only", conv.ID, a.ID, "<b></b>", utils.KindValidation},
		{"missing conversation id", "", a.ID, "hi", utils.KindValidation},
		{"missing sender", conv.ID, "", "hi", utils.KindValidation},
		{"unknown conversation", "nope", a.ID, "hi", utils.KindNotFound},
		{"not a participant", conv.ID, outsider.ID, "hi", utils.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.messaging.SendMessage(ctx, tt.conversationID, tt.senderID, tt.content)
			assert.Equal(t, tt.kind, utils.KindOf(err))
		})
	}
}

func TestMarkConversationAsReadClearsUnread(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.user(t, "a@example.com", models.RoleStartup)
	b := h.user(t, "b@example.com", models.RoleInvestor)
	conv, err := h.messaging.GetOrCreateConversation(ctx, a.ID, b.ID)
	require.NoError(t, err)

	for _, text := range []string{"one", "two", "three"} {
		_, err := h.messaging.SendMessage(ctx, conv.ID, b.ID, text)
		require.NoError(t, err)
	}
	unread, err := h.messaging.GetUnreadMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, unread, 3)

	n, err := h.messaging.MarkConversationAsRead(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	unread, err = h.messaging.GetUnreadMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, unread)

	n, err = h.messaging.MarkConversationAsRead(ctx, conv.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMarkMessageAsReadAndDelete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.user(t, "a@example.com", models.RoleStartup)
	b := h.user(t, "b@example.com", models.RoleInvestor)
	conv, err := h.messaging.GetOrCreateConversation(ctx, a.ID, b.ID)
	require.NoError(t, err)
	msg, err := h.messaging.SendMessage(ctx, conv.ID, a.ID, "hi")
	require.NoError(t, err)

	require.NoError(t, h.messaging.MarkMessageAsRead(ctx, msg.ID))
	require.NoError(t, h.messaging.MarkMessageAsRead(ctx, msg.ID))
	assert.True(t, utils.IsNotFound(h.messaging.MarkMessageAsRead(ctx, "missing")))

	ok, err := h.messaging.DeleteMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = h.messaging.DeleteMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConversationsByUser(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	u1 := h.user(t, "u1@example.com", models.RoleStartup)
	u2 := h.user(t, "u2@example.com", models.RoleInvestor)
	u3 := h.user(t, "u3@example.com", models.RoleInvestor)
	u4 := h.user(t, "u4@example.com", models.RoleInvestor)

	_, err := h.messaging.GetOrCreateConversation(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	_, err = h.messaging.GetOrCreateConversation(ctx, u1.ID, u3.ID)
	require.NoError(t, err)

	list, err := h.messaging.GetConversationsByUser(ctx, u1.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = h.messaging.GetConversationsByUser(ctx, u4.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetMessagesPagination(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.user(t, "a@example.com", models.RoleStartup)
	b := h.user(t, "b@example.com", models.RoleInvestor)
	conv, err := h.messaging.GetOrCreateConversation(ctx, a.ID, b.ID)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := h.messaging.SendMessage(ctx, conv.ID, a.ID, "message")
		require.NoError(t, err)
	}

	page, err := h.messaging.GetMessages(ctx, conv.ID, utils.NewPageRequest(0, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Content, 3)
	assert.True(t, page.First)
	assert.False(t, page.Last)

	page, err = h.messaging.GetMessages(ctx, conv.ID, utils.NewPageRequest(1, 3))
	require.NoError(t, err)
	assert.Len(t, page.Content, 2)
	assert.True(t, page.Last)
}

func TestChatSignalsRequireParticipant(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.user(t, "a@example.com", models.RoleStartup)
	b := h.user(t, "b@example.com", models.RoleInvestor)
	outsider := h.user(t, "c@example.com", models.RoleInvestor)
	conv, err := h.messaging.GetOrCreateConversation(ctx, a.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, h.messaging.Typing(ctx, a.ID, conv.ID, true))
	require.NoError(t, h.messaging.Typing(ctx, a.ID, conv.ID, false))
	events := h.broadcaster.to(hub.TypingTopic(conv.ID))
	require.Len(t, events, 2)
	event := events[0].Payload.(TypingEvent)
	assert.Equal(t, ChatTyping, event.Type)
	assert.Equal(t, a.ID, event.UserID)
	assert.True(t, event.IsTyping)

	stopped, err := json.Marshal(events[1].Payload)
	require.NoError(t, err)
	assert.Contains(t, string(stopped), `"isTyping":false`)

	require.NoError(t, h.messaging.Join(ctx, b.ID, conv.ID))
	assert.Len(t, h.broadcaster.to(hub.ConversationTopic(conv.ID)), 1)

	_, err = h.messaging.SendMessage(ctx, conv.ID, a.ID, "read me")
	require.NoError(t, err)
	require.NoError(t, h.messaging.MarkRead(ctx, b.ID, conv.ID))
	receipts := h.broadcaster.to(hub.ReadReceiptTopic(conv.ID))
	require.Len(t, receipts, 1)
	assert.Equal(t, int64(1), receipts[0].Payload.(ChatEvent).MarkedCount)

	err = h.messaging.Leave(ctx, outsider.ID, conv.ID)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
	assert.False(t, h.messaging.CanAccessConversation(ctx, outsider.ID, conv.ID))
	assert.True(t, h.messaging.CanAccessConversation(ctx, a.ID, conv.ID))
}
