package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestConversationFindByParticipantsEitherOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(setupTestDB(t))

	conv := &models.Conversation{Participant1ID: "u1", Participant2ID: "u2"}
	require.NoError(t, repo.Create(ctx, conv))

	found, err := repo.FindByParticipants(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, found.ID)

	found, err = repo.FindByParticipants(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, found.ID)

	_, err = repo.FindByParticipants(ctx, "u1", "u3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConversationFindByUserIDOrdersByActivity(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(setupTestDB(t))

	older := &models.Conversation{Participant1ID: "u1", Participant2ID: "u2", LastMessageAt: time.Now().Add(-time.Hour)}
	newer := &models.Conversation{Participant1ID: "u3", Participant2ID: "u1", LastMessageAt: time.Now()}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	list, err = repo.FindByUserID(ctx, "u4")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMessageAppendPaginationAndReadState(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	conversations := NewConversationRepository(db)
	messages := NewMessageRepository(db)

	conv := &models.Conversation{Participant1ID: "u1", Participant2ID: "u2", LastMessageAt: time.Now().Add(-time.Hour)}
	require.NoError(t, conversations.Create(ctx, conv))

	var last *models.Message
	for i := 0; i < 5; i++ {
		last = &models.Message{ConversationID: conv.ID, SenderID: "u1", Content: fmt.Sprintf("message %d", i)}
		require.NoError(t, messages.Append(ctx, last))
	}

	reloaded, err := conversations.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.LastMessageAt.Before(last.CreatedAt))

	page, total, err := messages.FindByConversation(ctx, conv.ID, utils.NewPageRequest(0, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 3)
	assert.Equal(t, "message 4", page[0].Content)

	unread, err := messages.FindUnread(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, unread, 5)

	require.NoError(t, messages.MarkAsRead(ctx, unread[0].ID))
	require.NoError(t, messages.MarkAsRead(ctx, unread[0].ID))

	updated, err := messages.MarkConversationAsRead(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated)

	unread, err = messages.FindUnread(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, unread)

	deleted, err := messages.Delete(ctx, last.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = messages.Delete(ctx, last.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestOfferTransitionIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewOfferRepository(setupTestDB(t))

	offer := &models.InvestmentOffer{
		InvestorID:       "inv",
		IdeaID:           "idea",
		OfferedAmount:    decimal.NewFromInt(100000),
		EquityPercentage: decimal.NewFromInt(10),
		Status:           models.OfferPending,
	}
	require.NoError(t, repo.Create(ctx, offer))

	ok, err := repo.Transition(ctx, offer.ID, models.OfferPending, models.OfferAccepted)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Transition(ctx, offer.ID, models.OfferPending, models.OfferRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferAccepted, stored.Status)
	assert.Equal(t, 1, stored.Version)
}

func TestOfferUpdateTermsChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewOfferRepository(setupTestDB(t))

	offer := &models.InvestmentOffer{
		InvestorID:       "inv",
		IdeaID:           "idea",
		OfferedAmount:    decimal.NewFromInt(100000),
		EquityPercentage: decimal.NewFromInt(10),
		Status:           models.OfferPending,
	}
	require.NoError(t, repo.Create(ctx, offer))

	stale := *offer
	offer.Message = "revised"
	require.NoError(t, repo.UpdateTerms(ctx, offer))
	assert.Equal(t, 1, offer.Version)

	stale.Message = "lost update"
	assert.ErrorIs(t, repo.UpdateTerms(ctx, &stale), ErrStale)

	stored, err := repo.FindByID(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, "revised", stored.Message)

	ok, err := repo.Transition(ctx, offer.ID, models.OfferPending, models.OfferRejected)
	require.NoError(t, err)
	require.True(t, ok)
	decided := *stored
	assert.ErrorIs(t, repo.UpdateTerms(ctx, &decided), ErrNotPending)

	missing := models.InvestmentOffer{Base: models.Base{ID: "missing"}}
	assert.ErrorIs(t, repo.UpdateTerms(ctx, &missing), ErrNotFound)
}

func TestUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@example.com", UserRole: models.RoleStartup, Status: models.UserActive}))
	err := repo.Create(ctx, &models.User{Email: "a@example.com", UserRole: models.RoleInvestor, Status: models.UserActive})
	assert.ErrorIs(t, err, ErrDuplicate)

	users, total, err := repo.List(ctx, UserFilter{Search: "A@EXAMPLE"}, utils.NewPageRequest(0, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, users, 1)
}

func TestNotificationMarkAsReadScopedToOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(setupTestDB(t))

	n := &models.Notification{UserID: "u1", Type: models.NotificationSystem, Title: "t", Message: "m"}
	require.NoError(t, repo.Create(ctx, n))

	ok, err := repo.MarkAsRead(ctx, n.ID, "someone-else")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.MarkAsRead(ctx, n.ID, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestNotificationMarkAllAsReadIsSingleUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectExec("UPDATE `notifications` SET `is_read`=.+ WHERE user_id = \\? AND is_read = \\?").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.MarkAllAsRead(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationCountUnreadQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `notifications` WHERE user_id = \\? AND is_read = \\?").
		WithArgs("user-1", false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountUnread(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
