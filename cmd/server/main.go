// Package main is the entry point of the content hub API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contenthub/internal/config"
	"contenthub/internal/handler"
	"contenthub/internal/jobs"
	"contenthub/internal/middleware"
	"contenthub/internal/pipeline"
	"contenthub/internal/repository"
	"contenthub/internal/service"
	"contenthub/pkg/database"
	"contenthub/pkg/es"
	"contenthub/pkg/kafka"
	"contenthub/pkg/log"
	"contenthub/pkg/storage"
	"contenthub/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

func main() {
	// 1. config and logging
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("logger initialised")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. databases and external services
	database.InitSQL(cfg.Database)
	if err := repository.AutoMigrateAccounts(database.DB); err != nil {
		log.Fatal("failed to migrate account tables", err)
	}
	database.InitRedis(cfg.Database.Redis)

	store, err := openTreeStore(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to open tree store", err)
	}
	defer func() {
		if err := database.CloseMongo(); err != nil {
			log.Error("failed to close mongodb", err)
		}
	}()

	objects, err := storage.InitMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal("failed to initialise object storage", err)
	}

	var fullText service.FullTextSearcher
	var index *es.Index
	if cfg.Elasticsearch.Enabled {
		if err := es.InitES(cfg.Elasticsearch); err != nil {
			log.Fatal("failed to initialise elasticsearch", err)
		}
		index = es.NewIndex(es.ESClient, cfg.Elasticsearch.IndexName)
		fullText = service.NewFullTextSearcher(index, cfg.Content.Search.MaxLimit)
	}

	var events service.EventPublisher = service.NoopPublisher{}
	if cfg.Kafka.Enabled {
		publisher := kafka.NewPublisher(cfg.Kafka)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("failed to close kafka producer", err)
			}
		}()
		events = publisher

		if index != nil {
			processor := pipeline.NewIndexProcessor(store, index)
			go kafka.StartConsumer(ctx, cfg.Kafka, processor, database.RDB)
		} else {
			log.Warnf("kafka is enabled without elasticsearch, tree events are produced but not indexed")
		}
	}

	// 3. repositories and services
	userRepo := repository.NewUserRepository(database.DB)
	blacklist := repository.NewTokenBlacklist(database.RDB)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)

	userService := service.NewUserService(userRepo, blacklist, jwtManager)
	adminService := service.NewAdminService(userRepo)
	pathService := service.NewPathService(store)
	categoryService := service.NewCategoryService(store, events, cfg.Content.Cascade.Transactional)
	contentService := service.NewContentService(store, events)
	searchService := service.NewSearchService(store, cfg.Content.Search.MaxLimit)
	imageService := service.NewImageService(repository.NewImageRepository(database.DB), objects)
	settingService := service.NewSettingService(
		repository.NewSettingRepository(database.DB),
		repository.NewSettingCache(database.RDB),
		store,
	)

	if b := cfg.Bootstrap; b.AdminEmail != "" {
		if err := userService.EnsureAdmin(ctx, b.AdminEmail, b.AdminName, b.AdminPassword); err != nil {
			log.Fatal("failed to create bootstrap admin", err)
		}
	}

	// 4. background jobs
	runner := jobs.NewRunner(ctx, jobs.NewOrphanSweeper(store, events, cfg.Jobs.OrphanSweepSchedule))
	if err := runner.Start(); err != nil {
		log.Fatal("failed to start background jobs", err)
	}
	defer runner.Stop()

	// 5. router
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	limiter := middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst, cfg.RateLimit.TTL)
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.SecurityHeaders(), limiter.Middleware())

	routes := &handler.Router{
		Content:      handler.NewContentHandler(pathService, categoryService, contentService),
		Search:       handler.NewSearchHandler(searchService, fullText),
		Auth:         handler.NewAuthHandler(userService),
		User:         handler.NewUserHandler(userService),
		Admin:        handler.NewAdminHandler(adminService),
		Image:        handler.NewImageHandler(imageService),
		Setting:      handler.NewSettingHandler(settingService),
		RequireAuth:  middleware.AuthMiddleware(jwtManager, userService, blacklist),
		OptionalAuth: middleware.OptionalAuthMiddleware(jwtManager, userService, blacklist),
	}
	routes.Register(r.Group("/api/v1"))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	// 6. serve with graceful shutdown
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: corsHandler.Handler(r),
	}

	go func() {
		log.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received, stopping server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown failed: %v", err)
	}

	// stops the kafka consumer, the rate limiter cleanup and running jobs
	cancel()
	log.Info("server stopped")
}

// openTreeStore returns the category/content store for the configured driver.
func openTreeStore(ctx context.Context, cfg config.DatabaseConfig) (repository.TreeStore, error) {
	if cfg.Driver != "mongo" {
		if err := repository.AutoMigrateTree(database.DB); err != nil {
			return nil, fmt.Errorf("migrate tree tables: %w", err)
		}
		return repository.NewGormTreeStore(database.DB), nil
	}

	if err := database.InitMongo(cfg.Mongo); err != nil {
		return nil, err
	}
	if err := repository.EnsureMongoIndexes(ctx, database.MongoDB); err != nil {
		return nil, fmt.Errorf("create mongodb indexes: %w", err)
	}
	return repository.NewMongoTreeStore(database.MongoClient, database.MongoDB, cfg.Mongo.Transactions), nil
}
