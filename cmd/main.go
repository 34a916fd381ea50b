package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/learnloop/learnloop-backend/internal/catalog"
	"github.com/learnloop/learnloop-backend/internal/content"
	"github.com/learnloop/learnloop-backend/internal/data/db"
	"github.com/learnloop/learnloop-backend/internal/handlers"
	"github.com/learnloop/learnloop-backend/internal/middleware"
	"github.com/learnloop/learnloop-backend/internal/platform/logger"
	"github.com/learnloop/learnloop-backend/internal/progress"
	"github.com/learnloop/learnloop-backend/internal/server"
	"github.com/learnloop/learnloop-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Error("Auto migration failed", "error", err)
		os.Exit(1)
	}
	conn := dbService.DB()

	// Catalog
	log.Info("Loading course catalog...")
	registry, err := catalog.New(log)
	if err != nil {
		log.Error("Catalog load failed", "error", err)
		os.Exit(1)
	}
	if valid, results := catalog.ValidateAll(registry.AllCourses()); !valid {
		for _, res := range results {
			for _, e := range res.Errors {
				log.Warn("Catalog validation error", "courseId", res.CourseID, "error", e)
			}
		}
	}

	// Content store
	log.Info("Seeding content store...")
	if err := content.Seed(ctx, conn, registry.AllCourses(), catalog.SupportedLocales, log); err != nil {
		log.Error("Content seeding failed", "error", err)
		os.Exit(1)
	}
	store := content.NewStore(conn, log)
	if rdb, err := content.NewRedisClient(); err != nil {
		log.Warn("Redis unavailable, serving content uncached", "error", err)
	} else {
		ttl := utils.GetEnvAsInt("CONTENT_CACHE_TTL_SECONDS", 600, log)
		store = content.NewCachedStore(store, rdb, time.Duration(ttl)*time.Second, log)
	}
	contentService := content.NewService(store, log)

	// Progress
	baseLocale := utils.GetEnv("BASE_LOCALE", "en", log)
	snapshotStore := progress.NewGormSnapshotStore(conn, log)
	tracker := progress.NewTracker(registry, content.NewLocaleBound(store, baseLocale), snapshotStore, log)
	tracker.Load(ctx)

	// Handlers
	log.Info("Setting up handlers from main...")
	catalogHandler := handlers.NewCatalogHandler(registry)
	contentHandler := handlers.NewContentHandler(store, contentService)
	progressHandler := handlers.NewProgressHandler(tracker)

	// Router
	log.Info("Setting up router from main...")
	origins := strings.Split(utils.GetEnv("CORS_ORIGINS", "http://localhost:3000", log), ",")
	router := server.NewRouter(server.RouterConfig{
		CatalogHandler:  catalogHandler,
		ContentHandler:  contentHandler,
		ProgressHandler: progressHandler,
		RequestLogger:   middleware.NewRequestLogger(log),
		AllowOrigins:    origins,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
