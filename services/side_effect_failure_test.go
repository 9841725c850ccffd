package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/startup-platform/metrics"
	"github.com/yeremiapane/startup-platform/models"
)

func taskCount(task, outcome string) float64 {
	return testutil.ToFloat64(metrics.DispatchTasks.WithLabelValues(task, outcome))
}

func TestOfferSucceedsWhileEmailRetries(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	f := newOfferFixture(t, h)

	retries := taskCount("email.offer_received", "retry")
	h.mailer.failNext(1)

	offer := f.offer(t, h)
	assert.Equal(t, models.OfferPending, offer.Status)

	h.dispatcher.Wait()
	assert.Equal(t, 2, h.mailer.attemptCount())
	assert.Equal(t, retries+1, taskCount("email.offer_received", "retry"))
	assert.Equal(t, []string{"New Investment Offer for Acme Robotics"}, h.mailer.subjects())

	stored, err := h.offers.Get(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferPending, stored.Status)
}

func TestOfferAcceptSucceedsWhenEmailNeverSends(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	f := newOfferFixture(t, h)
	offer := f.offer(t, h)
	h.dispatcher.Wait()

	failed := taskCount("email.offer_decision", "failed")
	before := h.mailer.attemptCount()
	h.mailer.failNext(100)

	accepted, err := h.offers.Accept(ctx, actorOf(f.founder), offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferAccepted, accepted.Status)

	h.dispatcher.Wait()
	assert.Equal(t, before+3, h.mailer.attemptCount(), "every attempt is used")
	assert.Equal(t, failed+1, taskCount("email.offer_decision", "failed"))

	notes, err := h.notifications.List(ctx, f.investor.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationOfferAccepted, notes[0].Type)
}

func TestOfferSucceedsWhenNotificationCannotBeStored(t *testing.T) {
	h := newHarness(t)
	f := newOfferFixture(t, h)
	require.NoError(t, h.db.Migrator().DropTable(&models.Notification{}))

	failed := taskCount("notification.offer_received", "failed")
	offer := f.offer(t, h)
	assert.Equal(t, models.OfferPending, offer.Status)

	h.dispatcher.Wait()
	assert.Equal(t, failed+1, taskCount("notification.offer_received", "failed"))
	assert.Equal(t, []string{"New Investment Offer for Acme Robotics"}, h.mailer.subjects())
}

func TestMessageSendSucceedsWhenEmailNeverSends(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.user(t, "a@example.com", models.RoleStartup)
	b := h.user(t, "b@example.com", models.RoleInvestor)
	conv, err := h.messaging.GetOrCreateConversation(ctx, a.ID, b.ID)
	require.NoError(t, err)

	failed := taskCount("email.new_message", "failed")
	h.mailer.failNext(100)

	message, err := h.messaging.SendMessage(ctx, conv.ID, a.ID, "still delivered")
	require.NoError(t, err)
	assert.Equal(t, "still delivered", message.Content)

	h.dispatcher.Wait()
	assert.Equal(t, failed+1, taskCount("email.new_message", "failed"))
	assert.Empty(t, h.mailer.subjects())

	unread, err := h.notifications.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
