package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/repositories"
	"github.com/yeremiapane/startup-platform/storage"
	"github.com/yeremiapane/startup-platform/utils"
)

type published struct {
	UserID      string
	Destination string
	Payload     interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []published
}

func (b *recordingBroadcaster) Publish(destination string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, published{Destination: destination, Payload: payload})
}

func (b *recordingBroadcaster) SendToUser(userID, destination string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, published{UserID: userID, Destination: destination, Payload: payload})
}

func (b *recordingBroadcaster) to(destination string) []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []published
	for _, e := range b.events {
		if e.Destination == destination {
			out = append(out, e)
		}
	}
	return out
}

type sentMail struct {
	To, Subject, Body string
}

type recordingMailer struct {
	mu       sync.Mutex
	sent     []sentMail
	failures int
	attempts int
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.failures > 0 {
		m.failures--
		return fmt.Errorf("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// failNext makes the next n sends fail.
func (m *recordingMailer) failNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

func (m *recordingMailer) attemptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

func (m *recordingMailer) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, s := range m.sent {
		out = append(out, s.Subject)
	}
	return out
}

type harness struct {
	db          *gorm.DB
	dispatcher  *Dispatcher
	broadcaster *recordingBroadcaster
	mailer      *recordingMailer
	tokens      *utils.TokenManager

	users         *UserService
	startups      *StartupService
	investors     *InvestorService
	offers        *OfferService
	notifications *NotificationService
	messaging     *MessagingService
	analytics     *AnalyticsService
	admin         *AdminService
	auth          *AuthService
	files         *FileService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	utils.InitLogger("error", "text")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	h := &harness{
		db:          db,
		dispatcher:  NewDispatcher(2, 64, 3).WithBackoff(time.Millisecond),
		broadcaster: &recordingBroadcaster{},
		mailer:      &recordingMailer{},
		tokens:      utils.NewTokenManager("test-secret", time.Hour, 24*time.Hour),
	}
	h.dispatcher.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.dispatcher.Stop(ctx)
	})

	userRepo := repositories.NewUserRepository(db)
	startupRepo := repositories.NewStartupRepository(db)
	investorRepo := repositories.NewInvestorRepository(db)
	offerRepo := repositories.NewOfferRepository(db)
	email := NewEmailService(h.mailer, "http://localhost:3000")

	h.users = NewUserService(userRepo)
	h.startups = NewStartupService(startupRepo)
	h.investors = NewInvestorService(investorRepo)
	h.notifications = NewNotificationService(repositories.NewNotificationRepository(db), h.broadcaster)
	h.offers = NewOfferService(offerRepo, startupRepo, userRepo, h.notifications, email, h.dispatcher)
	h.messaging = NewMessagingService(
		repositories.NewConversationRepository(db),
		repositories.NewMessageRepository(db),
		userRepo, h.notifications, email, h.broadcaster, h.dispatcher)
	h.analytics = NewAnalyticsService(startupRepo, investorRepo, offerRepo, userRepo)
	h.admin = NewAdminService(h.users, h.startups, h.investors, h.offers, userRepo, startupRepo, investorRepo, offerRepo)
	h.auth = NewAuthService(h.users, h.tokens, email, h.dispatcher)
	h.files = NewFileService(repositories.NewFileRepository(db), store)
	return h
}

func (h *harness) user(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{Email: email, FirstName: "Test", LastName: string(role), UserRole: role}
	require.NoError(t, h.users.Create(context.Background(), u))
	return u
}

func actorOf(u *models.User) Actor {
	return Actor{UserID: u.ID, Role: u.UserRole}
}
