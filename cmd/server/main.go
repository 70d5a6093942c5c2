// Package main runs the survey HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/survey-app/backend/config"
	"github.com/survey-app/backend/internal/auth"
	"github.com/survey-app/backend/internal/categories"
	"github.com/survey-app/backend/internal/exports"
	"github.com/survey-app/backend/internal/middleware"
	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/internal/realtime"
	"github.com/survey-app/backend/internal/responses"
	"github.com/survey-app/backend/internal/seed"
	"github.com/survey-app/backend/internal/stats"
	"github.com/survey-app/backend/internal/surveys"
	"github.com/survey-app/backend/internal/users"
	"github.com/survey-app/backend/internal/worker"
	"github.com/survey-app/backend/pkg/queue"
	"github.com/survey-app/backend/pkg/redis"
	"github.com/survey-app/backend/pkg/response"
	"github.com/survey-app/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer st.close()

	// Optional infrastructure. Interfaces stay nil when a backend is not configured.
	var (
		rdb        *redis.Client
		jobQueue   *queue.Queue
		enqueuer   exports.Enqueuer
		objects    exports.ObjectStore
		scoreboard responses.Scoreboard
		cache      stats.Cache
		publisher  realtime.Publisher
		subscriber realtime.Subscriber
	)
	if cfg.Redis.Enabled() {
		rdb, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()

		leaderboard := stats.NewLeaderboard(rdb.Client)
		scoreboard, cache = leaderboard, leaderboard
		pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
		publisher, subscriber = pubsub, pubsub
		jobQueue = queue.NewQueue(rdb.Client, logger)
		enqueuer = jobQueue
	} else {
		logger.Info("redis not configured; leaderboard cache, cross-instance events and exports disabled")
	}

	if cfg.AWS.Region != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			objects = s3Client
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	validate := func(token string) (middleware.Principal, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return middleware.Principal{}, err
		}
		return middleware.Principal{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}, nil
	}

	hub := realtime.NewHub(logger, publisher, subscriber)

	userService := users.NewService(st.users)
	authService := auth.NewService(st.users, userService, jwtService)
	surveyService := surveys.NewService(st.surveys)
	responseService := responses.NewService(st.responses, st.surveys, st.users, scoreboard, hub, logger)
	statsService := stats.NewService(st.stats, cache, logger)
	exportService := exports.NewService(st.exports, st.surveys, st.responses, enqueuer, objects, logger)
	surveyService.SetLeaderboard(statsService, logger)
	userService.SetLeaderboard(statsService, logger)

	if cfg.Seed.Enabled {
		if err := seed.Run(ctx, userService, st.categories, logger); err != nil {
			logger.Fatal("seed", zap.Error(err))
		}
	}
	if err := statsService.RebuildCache(ctx); err != nil {
		logger.Warn("leaderboard rebuild failed", zap.Error(err))
	}

	authHandler := auth.NewHandler(authService)
	userHandler := users.NewHandler(userService)
	categoryHandler := categories.NewHandler(st.categories)
	surveyHandler := surveys.NewHandler(surveyService)
	responseHandler := responses.NewHandler(responseService)
	statsHandler := stats.NewHandler(statsService)
	exportHandler := exports.NewHandler(exportService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok", "driver": cfg.Database.Driver}
		if rdb != nil {
			body["redis"] = rdb.Healthy(c.Request.Context())
		}
		response.OK(c, body)
	})

	// Auth (public)
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	admin := middleware.RequireRole(models.RoleAdmin)
	selfOrAdmin := middleware.RequireSelfOrAdmin("userId")

	api := router.Group("/api")
	api.Use(middleware.JWT(validate))
	{
		api.GET("/categories", categoryHandler.List)
		api.POST("/categories", admin, categoryHandler.Create)

		api.GET("/surveys", surveyHandler.List)
		api.GET("/surveys/category/:categoryId", surveyHandler.ListByCategory)
		api.GET("/surveys/:id", surveyHandler.Get)
		api.POST("/surveys", admin, surveyHandler.Create)
		api.PUT("/surveys/:id", admin, surveyHandler.Update)
		api.DELETE("/surveys/:id", admin, surveyHandler.Delete)

		api.POST("/surveys/:id/submit", responseHandler.Submit)
		api.GET("/surveys/:id/user/:userId/completed", selfOrAdmin, responseHandler.HasCompleted)
		api.GET("/surveys/:id/responses", admin, responseHandler.ListDetails)
		api.GET("/surveys/responses/user/:userId", selfOrAdmin, responseHandler.ListByUser)
		api.POST("/surveys/:id/responses/export", admin, exportHandler.Request)
		api.GET("/exports/:id", admin, exportHandler.Get)

		api.GET("/surveys/user-stats/:userId", selfOrAdmin, statsHandler.UserSurveyStats)
		api.GET("/surveys/stats/categories", statsHandler.CategoryStats)
		api.GET("/surveys/stats/:userId", selfOrAdmin, statsHandler.Dashboard)
		api.GET("/rankings", statsHandler.Rankings)
		api.GET("/rankings/top", statsHandler.Top)
		api.GET("/rankings/me", statsHandler.Me)

		api.POST("/users", admin, userHandler.Create)
		api.GET("/users", admin, userHandler.List)
		api.GET("/users/me", userHandler.Me)
		api.GET("/users/:id", userHandler.GetByID)

		api.GET("/admin/users", admin, userHandler.AdminList)
		api.GET("/admin/users/profiles", admin, userHandler.Profiles)
		api.PUT("/admin/users/:id", admin, userHandler.AdminUpdate)
		api.DELETE("/admin/users/:id", admin, userHandler.AdminDelete)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, validate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (response CSV exports)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if exportService.Enabled() {
		processor := worker.NewExportProcessor(exportService, jobQueue, logger)
		go processor.Run(workerCtx)
		logger.Info("export worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
