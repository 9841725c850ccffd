package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/config"
	"github.com/yeremiapane/startup-platform/controllers"
	"github.com/yeremiapane/startup-platform/hub"
	"github.com/yeremiapane/startup-platform/metrics"
	"github.com/yeremiapane/startup-platform/middlewares"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/repositories"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/storage"
	"github.com/yeremiapane/startup-platform/utils"
	"gorm.io/gorm"
)

// Deps is the wired service graph behind the HTTP layer.
type Deps struct {
	Config     *config.Config
	Tokens     *utils.TokenManager
	Hub        *hub.Hub
	Dispatcher *services.Dispatcher
	Google     *services.GoogleOAuth

	Auth          *services.AuthService
	Users         *services.UserService
	Startups      *services.StartupService
	Investors     *services.InvestorService
	Offers        *services.OfferService
	Messaging     *services.MessagingService
	Notifications *services.NotificationService
	Files         *services.FileService
	Admin         *services.AdminService
	Analytics     *services.AnalyticsService
}

// NewDeps builds repositories and services over db. The dispatcher is
// returned unstarted.
func NewDeps(cfg *config.Config, db *gorm.DB, mailer services.Mailer, store *storage.Local) *Deps {
	userRepo := repositories.NewUserRepository(db)
	startupRepo := repositories.NewStartupRepository(db)
	investorRepo := repositories.NewInvestorRepository(db)
	offerRepo := repositories.NewOfferRepository(db)

	d := &Deps{
		Config:     cfg,
		Tokens:     utils.NewTokenManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL),
		Hub:        hub.New(),
		Dispatcher: services.NewDispatcher(cfg.DispatchWorkers, cfg.DispatchQueueSize, cfg.DispatchMaxAttempts).
			WithBackoff(cfg.DispatchRetryBackoff).
			WithTaskTimeout(cfg.DispatchTaskTimeout),
		Google:     services.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.CookieHashKey),
	}
	email := services.NewEmailService(mailer, cfg.FrontendURL)

	d.Users = services.NewUserService(userRepo)
	d.Startups = services.NewStartupService(startupRepo)
	d.Investors = services.NewInvestorService(investorRepo)
	d.Notifications = services.NewNotificationService(repositories.NewNotificationRepository(db), d.Hub)
	d.Offers = services.NewOfferService(offerRepo, startupRepo, userRepo, d.Notifications, email, d.Dispatcher)
	d.Messaging = services.NewMessagingService(
		repositories.NewConversationRepository(db),
		repositories.NewMessageRepository(db),
		userRepo, d.Notifications, email, d.Hub, d.Dispatcher)
	d.Files = services.NewFileService(repositories.NewFileRepository(db), store)
	d.Auth = services.NewAuthService(d.Users, d.Tokens, email, d.Dispatcher)
	d.Admin = services.NewAdminService(d.Users, d.Startups, d.Investors, d.Offers, userRepo, startupRepo, investorRepo, offerRepo)
	d.Analytics = services.NewAnalyticsService(startupRepo, investorRepo, offerRepo, userRepo)
	return d
}

func SetupRouter(d *Deps) *gin.Engine {
	cfg := d.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.MetricsMiddleware())
	r.Use(middlewares.SecurityHeaders(cfg.GinMode == gin.ReleaseMode))
	r.Use(middlewares.CORSMiddlewares(cfg.CORSAllowedOrigins))
	r.Use(middlewares.NewRateLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitBurst).RateLimit())
	r.Use(middlewares.MaxBodySize(services.MaxDocumentSize + 1<<20))

	authCtrl := controllers.NewAuthController(d.Auth, d.Google, cfg.FrontendURL, cfg.GinMode == gin.ReleaseMode)
	userCtrl := controllers.NewUserController(d.Users)
	startupCtrl := controllers.NewStartupController(d.Startups)
	investorCtrl := controllers.NewInvestorController(d.Investors)
	offerCtrl := controllers.NewOfferController(d.Offers)
	messageCtrl := controllers.NewMessageController(d.Messaging)
	chatCtrl := controllers.NewChatController(d.Hub, d.Messaging, d.Users)
	notifCtrl := controllers.NewNotificationController(d.Notifications)
	fileCtrl := controllers.NewFileController(d.Files)
	adminCtrl := controllers.NewAdminController(d.Admin)
	analyticsCtrl := controllers.NewAnalyticsController(d.Analytics)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(d.Tokens), chatCtrl.Connect)

	api := r.Group("/api")
	api.GET("/health", controllers.Health)

	strict := middlewares.NewStrictRateLimiter().RateLimit()
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", strict, authCtrl.Login)
		authGroup.POST("/register", strict, authCtrl.Register)
		authGroup.POST("/refresh", authCtrl.Refresh)
		authGroup.GET("/google/login", authCtrl.GoogleLogin)
		authGroup.GET("/google/callback", authCtrl.GoogleCallback)
		authGroup.GET("/me", middlewares.AuthMiddleware(d.Tokens), authCtrl.Me)
	}

	secured := api.Group("")
	secured.Use(middlewares.AuthMiddleware(d.Tokens))

	users := secured.Group("/users")
	{
		users.GET("", userCtrl.ListUsers)
		users.GET("/:id", userCtrl.GetUser)
		users.GET("/email/:email", userCtrl.GetUserByEmail)
		users.POST("", middlewares.RequireRole(models.RoleAdmin), userCtrl.CreateUser)
		users.PUT("/:id", userCtrl.UpdateUser)
		users.DELETE("/:id", userCtrl.DeleteUser)
	}

	startups := secured.Group("/startups")
	{
		startups.GET("", startupCtrl.ListStartups)
		startups.GET("/:id", startupCtrl.GetStartup)
		startups.GET("/user/:userId", startupCtrl.ListStartupsByUser)
		startups.GET("/status/:status", startupCtrl.ListStartupsByStatus)
		startups.POST("", startupCtrl.CreateStartup)
		startups.PUT("/:id", startupCtrl.UpdateStartup)
		startups.DELETE("/:id", startupCtrl.DeleteStartup)
	}

	investors := secured.Group("/investors")
	{
		investors.GET("", investorCtrl.ListInvestors)
		investors.GET("/:id", investorCtrl.GetInvestor)
		investors.GET("/user/:userId", investorCtrl.GetInvestorByUser)
		investors.GET("/status/:status", investorCtrl.ListInvestorsByStatus)
		investors.POST("", investorCtrl.CreateInvestor)
		investors.PUT("/:id", investorCtrl.UpdateInvestor)
		investors.DELETE("/:id", investorCtrl.DeleteInvestor)
	}

	offers := secured.Group("/investment-offers")
	{
		offers.GET("/:id", offerCtrl.GetOffer)
		offers.GET("/idea/:ideaId", offerCtrl.ListOffersByIdea)
		offers.GET("/investor/:investorId", offerCtrl.ListOffersByInvestor)
		offers.GET("/status/:status", offerCtrl.ListOffersByStatus)
		offers.POST("", offerCtrl.CreateOffer)
		offers.PUT("/:id", offerCtrl.UpdateOffer)
		offers.PUT("/:id/accept", offerCtrl.AcceptOffer)
		offers.PUT("/:id/reject", offerCtrl.RejectOffer)
		offers.DELETE("/:id", offerCtrl.DeleteOffer)
	}

	// PUT /:id/read takes a message id, PUT /:id/read-all a conversation id.
	messages := secured.Group("/messages")
	{
		messages.POST("/conversations", messageCtrl.GetOrCreateConversation)
		messages.GET("/conversations/:id", messageCtrl.GetConversation)
		messages.GET("/conversations/user/:userId", messageCtrl.ListConversationsByUser)
		messages.POST("", messageCtrl.SendMessage)
		messages.GET("/:conversationId", messageCtrl.GetMessages)
		messages.GET("/:conversationId/unread", messageCtrl.GetUnreadMessages)
		messages.PUT("/:id/read", messageCtrl.MarkMessageAsRead)
		messages.PUT("/:id/read-all", messageCtrl.MarkConversationAsRead)
		messages.DELETE("/:messageId", messageCtrl.DeleteMessage)
	}

	notifications := secured.Group("/notifications")
	{
		notifications.GET("", notifCtrl.GetNotifications)
		notifications.GET("/paged", notifCtrl.GetNotificationsPaged)
		notifications.GET("/unread", notifCtrl.GetUnreadNotifications)
		notifications.GET("/unread-count", notifCtrl.GetUnreadCount)
		notifications.PUT("/read-all", notifCtrl.MarkAllAsRead)
		notifications.PUT("/:id/read", notifCtrl.MarkAsRead)
	}

	files := secured.Group("/files")
	{
		files.POST("/upload", fileCtrl.UploadFile)
		files.GET("/my-files", fileCtrl.ListMyFiles)
		files.GET("/by-reference/:ref", fileCtrl.ListByReference)
		files.GET("/by-reference/:ref/type/:type", fileCtrl.ListByReferenceAndType)
		files.GET("/:id", fileCtrl.GetFile)
		files.GET("/:id/download", fileCtrl.DownloadFile)
		files.DELETE("/:id", fileCtrl.DeleteFile)
	}

	admin := secured.Group("/admin")
	admin.Use(middlewares.RequireRole(models.RoleAdmin))
	{
		admin.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
		admin.GET("/users", adminCtrl.ListUsers)
		admin.GET("/users/:id", adminCtrl.GetUser)
		admin.PUT("/users/:id/status", adminCtrl.UpdateUserStatus)
		admin.DELETE("/users/:id", adminCtrl.DeleteUser)
		admin.GET("/startups", adminCtrl.ListStartups)
		admin.PUT("/startups/:id/status", adminCtrl.UpdateStartupStatus)
		admin.GET("/investors", adminCtrl.ListInvestors)
		admin.GET("/offers", adminCtrl.ListOffers)
		admin.GET("/activity", adminCtrl.ActivityLog)
	}

	analytics := secured.Group("/analytics")
	{
		analytics.GET("/platform-stats", analyticsCtrl.PlatformStats)
		analytics.GET("/investment-trends", analyticsCtrl.InvestmentTrends)
		analytics.GET("/stage-distribution", analyticsCtrl.StageDistribution)
		analytics.GET("/sector-distribution", analyticsCtrl.SectorDistribution)
		analytics.GET("/top-startups", analyticsCtrl.TopStartups)
		analytics.GET("/top-investors", analyticsCtrl.TopInvestors)
	}

	return r
}
