package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/startup-platform/config"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/storage"
	"github.com/yeremiapane/startup-platform/utils"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	deps   *Deps
	engine *gin.Engine
}

func testConfig() *config.Config {
	return &config.Config{
		GinMode:             gin.TestMode,
		JWTSecret:           "router-test-secret",
		AccessTTL:           time.Hour,
		RefreshTTL:          24 * time.Hour,
		FrontendURL:         "http://localhost:3000",
		CookieHashKey:       "0123456789abcdef0123456789abcdef",
		CORSAllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitRPS:        1000,
		RateLimitBurst:      1000,
		DispatchWorkers:     2,
		DispatchQueueSize:   64,
		DispatchMaxAttempts: 2,
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
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

	deps := NewDeps(testConfig(), db, services.LogMailer{}, store)
	deps.Dispatcher.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		deps.Dispatcher.Stop(ctx)
	})
	return &testApp{deps: deps, engine: SetupRouter(deps)}
}

// user stores an active user and returns it with a signed access token.
func (a *testApp) user(t *testing.T, email string, role models.UserRole) (*models.User, string) {
	t.Helper()
	u := &models.User{Email: email, FirstName: "Test", LastName: string(role), UserRole: role}
	require.NoError(t, a.deps.Users.Create(context.Background(), u))
	token, err := a.deps.Tokens.GenerateAccessToken(u.ID, u.Email, string(u.UserRole))
	require.NoError(t, err)
	return u, token
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "UP", health["status"])
	assert.Equal(t, "1.0.0", health["version"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = app.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "startup_platform_http_requests_total")
}

func TestAuthEndpoints(t *testing.T) {
	app := newTestApp(t)

	register := map[string]string{
		"email":     "founder@example.com",
		"password":  "supersecret",
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"userRole":  "STARTUP",
	}
	w := app.do(t, http.MethodPost, "/api/auth/register", "", register)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered services.AuthResult
	decode(t, w, &registered)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)

	w = app.do(t, http.MethodPost, "/api/auth/register", "", register)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already registered", decode(t, w, nil).Message)

	w = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "founder@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode(t, w, nil).Message)

	w = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "founder@example.com", "password": "supersecret"})
	require.Equal(t, http.StatusOK, w.Code)
	var login services.AuthResult
	decode(t, w, &login)

	w = app.do(t, http.MethodGet, "/api/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decode(t, w, &me)
	assert.Equal(t, "founder@example.com", me.Email)

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/auth/me", "not-a-jwt", nil).Code)

	w = app.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": login.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	var refreshed services.AuthResult
	decode(t, w, &refreshed)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not a refresh token.
	w = app.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": login.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginIsStrictlyRateLimited(t *testing.T) {
	app := newTestApp(t)
	body := map[string]string{"email": "nobody@example.com", "password": "whatever1"}
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/api/auth/login", "", body).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, app.do(t, http.MethodPost, "/api/auth/login", "", body).Code)
}

func TestGoogleLoginDisabledWithoutCredentials(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/api/auth/google/login", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app := newTestApp(t)
	_, startupToken := app.user(t, "s@example.com", models.RoleStartup)
	_, adminToken := app.user(t, "admin@example.com", models.RoleAdmin)

	w := app.do(t, http.MethodGet, "/api/admin/dashboard/stats", startupToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodGet, "/api/admin/dashboard/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats services.DashboardStats
	decode(t, w, &stats)
	assert.EqualValues(t, 2, stats.TotalUsers)

	w = app.do(t, http.MethodPost, "/api/users", startupToken, map[string]string{"email": "x@example.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.do(t, http.MethodPost, "/api/users", adminToken, map[string]string{"email": "x@example.com", "userRole": "INVESTOR"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUserUpdateRules(t *testing.T) {
	app := newTestApp(t)
	self, token := app.user(t, "self@example.com", models.RoleStartup)
	other, _ := app.user(t, "other@example.com", models.RoleStartup)

	w := app.do(t, http.MethodPut, "/api/users/"+self.ID, token, map[string]string{"firstName": "Grace"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.User
	decode(t, w, &updated)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, models.RoleStartup, updated.UserRole)

	w = app.do(t, http.MethodPut, "/api/users/"+self.ID, token, map[string]string{"userRole": "ADMIN"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPut, "/api/users/"+other.ID, token, map[string]string{"firstName": "Mallory"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodGet, "/api/users/email/other@example.com", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodGet, "/api/users/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOfferLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	founder, founderToken := app.user(t, "founder@example.com", models.RoleStartup)
	investor, investorToken := app.user(t, "investor@example.com", models.RoleInvestor)

	w := app.do(t, http.MethodPost, "/api/startups", founderToken, map[string]interface{}{
		"companyName": "Acme",
		"stage":       "seed",
		"fundingGoal": 500000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var startup models.Startup
	decode(t, w, &startup)
	assert.Equal(t, founder.ID, startup.UserID)
	assert.Equal(t, models.StageSeed, startup.Stage)

	w = app.do(t, http.MethodPost, "/api/investment-offers", investorToken, map[string]interface{}{
		"ideaId":           startup.ID,
		"offeredAmount":    100000,
		"equityPercentage": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var offer models.InvestmentOffer
	decode(t, w, &offer)
	assert.Equal(t, investor.ID, offer.InvestorID)
	assert.Equal(t, models.OfferPending, offer.Status)

	// Only the startup owner responds to an offer.
	w = app.do(t, http.MethodPut, "/api/investment-offers/"+offer.ID+"/accept", investorToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPut, "/api/investment-offers/"+offer.ID+"/accept", founderToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &offer)
	assert.Equal(t, models.OfferAccepted, offer.Status)

	w = app.do(t, http.MethodPut, "/api/investment-offers/"+offer.ID+"/reject", founderToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(t, http.MethodGet, "/api/investment-offers/status/accepted", investorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page utils.Page[models.InvestmentOffer]
	decode(t, w, &page)
	assert.EqualValues(t, 1, page.TotalElements)

	app.deps.Dispatcher.Wait()
	w = app.do(t, http.MethodGet, "/api/notifications/unread", investorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notifications []models.Notification
	decode(t, w, &notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationOfferAccepted, notifications[0].Type)
	assert.Equal(t, offer.ID, notifications[0].ReferenceID)

	w = app.do(t, http.MethodPut, "/api/notifications/read-all", investorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var marked struct {
		MarkedCount int64 `json:"markedCount"`
	}
	decode(t, w, &marked)
	assert.EqualValues(t, 1, marked.MarkedCount)

	w = app.do(t, http.MethodGet, "/api/notifications/unread-count", investorToken, nil)
	var count struct {
		Count int64 `json:"count"`
	}
	decode(t, w, &count)
	assert.Zero(t, count.Count)
}

func TestMessagingOverHTTP(t *testing.T) {
	app := newTestApp(t)
	alice, aliceToken := app.user(t, "alice@example.com", models.RoleStartup)
	bob, bobToken := app.user(t, "bob@example.com", models.RoleInvestor)
	_, eveToken := app.user(t, "eve@example.com", models.RoleInvestor)

	path := fmt.Sprintf("/api/messages/conversations?user1Id=%s&user2Id=%s", alice.ID, bob.ID)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPost, path, eveToken, nil).Code)

	w := app.do(t, http.MethodPost, path, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var conversation models.Conversation
	decode(t, w, &conversation)

	reversed := fmt.Sprintf("/api/messages/conversations?user1Id=%s&user2Id=%s", bob.ID, alice.ID)
	var again models.Conversation
	decode(t, app.do(t, http.MethodPost, reversed, bobToken, nil), &again)
	assert.Equal(t, conversation.ID, again.ID)

	for i := 0; i < 5; i++ {
		w = app.do(t, http.MethodPost, "/api/messages", aliceToken, map[string]string{
			"conversationId": conversation.ID,
			"content":        fmt.Sprintf("hello %d", i),
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = app.do(t, http.MethodPost, "/api/messages", aliceToken, map[string]string{
		"conversationId": conversation.ID,
		"senderId":       bob.ID,
		"content":        "spoofed",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodGet, "/api/messages/"+conversation.ID+"?page=0&size=3", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page utils.Page[models.Message]
	decode(t, w, &page)
	assert.EqualValues(t, 5, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Content, 3)

	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodGet, "/api/messages/"+conversation.ID, eveToken, nil).Code)

	w = app.do(t, http.MethodPut, "/api/messages/"+page.Content[0].ID+"/read", bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPut, "/api/messages/"+conversation.ID+"/read-all", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var marked struct {
		MarkedCount int64 `json:"markedCount"`
	}
	decode(t, w, &marked)
	assert.EqualValues(t, 4, marked.MarkedCount)

	var unread []models.Message
	decode(t, app.do(t, http.MethodGet, "/api/messages/"+conversation.ID+"/unread", bobToken, nil), &unread)
	assert.Empty(t, unread)

	messageID := page.Content[0].ID
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodDelete, "/api/messages/"+messageID, bobToken, nil).Code)
	w = app.do(t, http.MethodDelete, "/api/messages/"+messageID, aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = app.do(t, http.MethodDelete, "/api/messages/"+messageID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var byUser []models.Conversation
	decode(t, app.do(t, http.MethodGet, "/api/messages/conversations/user/"+alice.ID, aliceToken, nil), &byUser)
	assert.Len(t, byUser, 1)
}

func multipartUpload(t *testing.T, fileType, name, contentType string, body []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("fileType", fileType))
	require.NoError(t, mw.WriteField("referenceId", "ref-1"))

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestFileUploadAndDownload(t *testing.T) {
	app := newTestApp(t)
	_, ownerToken := app.user(t, "owner@example.com", models.RoleStartup)
	_, otherToken := app.user(t, "other@example.com", models.RoleStartup)

	content := []byte("%PDF-1.4 pitch deck")
	body, contentType := multipartUpload(t, "PITCH_DECK", "deck.pdf", "application/pdf", content)
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var upload models.FileUpload
	decode(t, w, &upload)
	assert.Equal(t, "deck.pdf", upload.OriginalFileName)

	w = app.do(t, http.MethodGet, "/api/files/"+upload.ID+"/download", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="deck.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, content, w.Body.Bytes())

	var byRef []models.FileUpload
	decode(t, app.do(t, http.MethodGet, "/api/files/by-reference/ref-1/type/pitch_deck", ownerToken, nil), &byRef)
	assert.Len(t, byRef, 1)

	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodDelete, "/api/files/"+upload.ID, otherToken, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodDelete, "/api/files/"+upload.ID, ownerToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/files/"+upload.ID, ownerToken, nil).Code)
}

func TestFileUploadRejectsWrongType(t *testing.T) {
	app := newTestApp(t)
	_, token := app.user(t, "owner@example.com", models.RoleStartup)

	body, contentType := multipartUpload(t, "PROFILE_PHOTO", "notes.txt", "text/plain", []byte("hi"))
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decode(t, w, nil).Status)
}

func TestAnalyticsEndpoints(t *testing.T) {
	app := newTestApp(t)
	_, token := app.user(t, "viewer@example.com", models.RoleInvestor)

	for _, path := range []string{
		"/api/analytics/platform-stats",
		"/api/analytics/investment-trends?months=3",
		"/api/analytics/stage-distribution",
		"/api/analytics/sector-distribution",
		"/api/analytics/top-startups?limit=5",
		"/api/analytics/top-investors",
	} {
		w := app.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"), path)
	}

	var trends []services.InvestmentTrend
	decode(t, app.do(t, http.MethodGet, "/api/analytics/investment-trends?months=3", token, nil), &trends)
	assert.Len(t, trends, 3)
}

func TestBootstrapAdminReachesAdminRoutes(t *testing.T) {
	app := newTestApp(t)
	seed := services.SeedOptions{AdminEmail: "root@example.com", AdminPassword: "bootstrap-pass"}
	require.NoError(t, services.NewSeeder(app.deps.Users, app.deps.Startups, app.deps.Investors).Run(context.Background(), seed))

	w := app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "root@example.com", "password": "bootstrap-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login services.AuthResult
	decode(t, w, &login)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/admin/dashboard/stats", login.AccessToken, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/analytics/platform-stats", login.AccessToken, nil).Code)
}
