package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"web-requests/config"
	"web-requests/controllers"
	"web-requests/middleware"
	"web-requests/routes"
	"web-requests/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, logWriter := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := services.OpenRecordStore(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to open record store: %v", err)
	}
	lock, err := services.NewWriteLock(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to set up write lock: %v", err)
	}

	// Create upload and report directories if not exists
	for _, dir := range []string{cfg.Uploads.Path, cfg.Reports.Dir} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			log.Printf("Warning: Failed to create directory %s: %v", dir, err)
		}
	}

	attachments := services.NewLocalAttachmentStore(cfg.Uploads.Path)
	requests := services.NewRequestService(store, attachments, services.RequestServiceOptions{
		Lock:        lock,
		Notifier:    services.NewNotifier(cfg),
		Departments: cfg.Departments,
		Prefix:      cfg.Uploads.Prefix,
		MaxAttempts: cfg.Store.MaxAttempts,
	})
	reports := services.NewReportService(
		store,
		services.NewChartGenerator(),
		services.NewReportRenderer(cfg.Reports.TemplatePath),
		cfg.Reports.Dir,
	)
	ctl := controllers.NewController(requests, reports, attachments)

	// Set Gin mode
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logWriter
	gin.DefaultErrorWriter = logWriter

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	routes.SetupRoutes(router, ctl, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: graceful shutdown failed: %v", err)
		}
	}()

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	if cfg.IsProduction() {
		log.Printf("🏭 Running in production mode")
	} else {
		log.Printf("🔧 Running in development mode")
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("❌ Failed to start server:", err)
	}
	log.Printf("Server stopped")
}
