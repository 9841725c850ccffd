package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/config"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/router"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/storage"
	"github.com/yeremiapane/startup-platform/utils"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	autoMigrate(db)

	store, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to prepare upload directory: %v", err)
	}

	deps := router.NewDeps(cfg, db, newMailer(cfg), store)
	seed := services.SeedOptions{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword, DemoData: cfg.SeedDemoData}
	if err := services.NewSeeder(deps.Users, deps.Startups, deps.Investors).Run(context.Background(), seed); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed data: %v", err)
	}
	deps.Dispatcher.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("HTTP shutdown: %v", err)
	}
	if err := deps.Dispatcher.Stop(ctx); err != nil {
		utils.ErrorLogger.Printf("Dispatcher shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	utils.InfoLogger.Println("Server stopped")
}

func autoMigrate(db *gorm.DB) {
	if err := db.AutoMigrate(models.All()...); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}

// newMailer logs emails instead of sending them unless MAIL_ENABLED is set.
func newMailer(cfg *config.Config) services.Mailer {
	if !cfg.MailEnabled {
		return services.LogMailer{}
	}
	return &services.SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
}
