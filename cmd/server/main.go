package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/vibecoder/backend/config"
	"github.com/vibecoder/backend/internal/auth"
	"github.com/vibecoder/backend/internal/cache"
	"github.com/vibecoder/backend/internal/database"
	"github.com/vibecoder/backend/internal/handlers"
	"github.com/vibecoder/backend/internal/middleware"
	"github.com/vibecoder/backend/internal/moderation"
	"github.com/vibecoder/backend/internal/moderator"
	"github.com/vibecoder/backend/internal/repository"
	"github.com/vibecoder/backend/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	if level, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("Unknown log level, using info", "level", cfg.Server.LogLevel)
	}
	log.SetReportTimestamp(true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db.DB); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	// Connect to Redis. Everything degrades to in-process without it.
	var (
		policyCache moderation.PolicyCache
		sharedLimit middleware.ActionLimiter
		redisClient *cache.RedisClient
	)
	redisClient, err = cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Moderation.PolicyCacheTTL)
	if err != nil {
		log.Warn("Failed to connect to Redis, running without shared cache", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		policyCache = redisClient
		sharedLimit = redisClient
	}

	// Repositories
	modRepo := repository.NewModerationRepository(db)
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Moderation policy must exist before the first request is served.
	policy := moderation.NewPolicyStore(modRepo, policyCache)
	if err := policy.EnsureSeeded(ctx); err != nil {
		log.Fatal("Failed to seed moderation settings", "error", err)
	}
	if _, err := policy.ReconcileBaseline(ctx); err != nil {
		log.Fatal("Failed to reconcile baseline keywords", "error", err)
	}
	settings, err := policy.GetSettings(ctx)
	if err != nil {
		log.Fatal("Moderation settings unavailable", "error", err)
	}
	log.Info("Moderation policy loaded", "keywords", len(settings.BlockedKeywords), "threshold", settings.AutoHideReportThreshold)

	// Admin feed: Redis pub/sub when shared, the local hub otherwise.
	hub := websocket.NewHub(redisClient)
	go hub.Run(ctx)

	var publisher moderation.ActionPublisher = hub
	if redisClient != nil {
		publisher = redisClient
	}
	auditLog := moderation.NewAuditLog(modRepo, publisher, nil)
	adminService := moderation.NewAdminService(policy, auditLog)

	systemUser, err := userRepo.EnsureSystemUser(ctx, cfg.Moderation.SystemUserEmail, cfg.Moderation.SystemNickname)
	if err != nil {
		log.Fatal("Failed to ensure moderation system user", "error", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimitPerSec, sharedLimit)
	rateLimiter.Cleanup(ctx, 5*time.Minute)

	// Handlers
	gate := adminService.Gate()
	authHandler := handlers.NewAuthHandler(userRepo, jwtService, gate)
	projectHandler := handlers.NewProjectHandler(projectRepo, userRepo, gate)
	commentHandler := handlers.NewCommentHandler(commentRepo, projectRepo, userRepo, gate)
	bot := moderator.NewBot(reportRepo, policy, auditLog, systemUser.ID)
	reportHandler := handlers.NewReportHandler(reportRepo, projectRepo, commentRepo, userRepo, bot)
	adminHandler := handlers.NewAdminHandler(adminService, projectRepo, commentRepo, userRepo, reportRepo)
	wsHandler := websocket.NewHandler(hub, auditLog, cfg.CORS.AllowedOrigins)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	public := router.Group("/api")
	{
		public.GET("/projects", projectHandler.ListProjects)
		public.GET("/projects/:id", projectHandler.GetProject)
		public.GET("/projects/:id/comments", commentHandler.ListComments)
	}

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtService))
	{
		api.GET("/me", authHandler.GetMe)
		api.PUT("/me", authHandler.UpdateMe)
		api.GET("/me/projects", projectHandler.MyProjects)

		api.POST("/projects", middleware.RateLimitMiddleware(rateLimiter, "create_project"), projectHandler.CreateProject)
		api.POST("/projects/:id/like", projectHandler.LikeProject)
		api.DELETE("/projects/:id/like", projectHandler.UnlikeProject)
		api.POST("/projects/:id/comments", middleware.RateLimitMiddleware(rateLimiter, "create_comment"), commentHandler.CreateComment)

		api.POST("/projects/:id/report", middleware.RateLimitMiddleware(rateLimiter, "report"), reportHandler.ReportProject)
		api.POST("/comments/:id/report", middleware.RateLimitMiddleware(rateLimiter, "report"), reportHandler.ReportComment)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/moderation/policy", adminHandler.GetPolicy)
		admin.PUT("/moderation/policy", adminHandler.UpdatePolicy)
		admin.POST("/moderation/check", adminHandler.CheckText)
		admin.GET("/logs", adminHandler.ListLogs)

		admin.GET("/reports", adminHandler.ListReports)
		admin.PATCH("/reports/:id", adminHandler.UpdateReport)

		admin.POST("/projects/:id/hide", adminHandler.HideProject)
		admin.POST("/projects/:id/restore", adminHandler.RestoreProject)
		admin.POST("/projects/:id/delete", adminHandler.DeleteProject)
		admin.POST("/comments/:id/hide", adminHandler.HideComment)
		admin.POST("/comments/:id/restore", adminHandler.RestoreComment)
		admin.POST("/users/:id/limit", adminHandler.LimitUser)
		admin.POST("/users/:id/unlimit", adminHandler.UnlimitUser)

		admin.GET("/ws", wsHandler.HandleWebSocket)
		admin.GET("/ws/status", wsHandler.Status)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting server", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}

// requestLogger logs each request through the structured logger
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
