package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/eduquest/eduquest-api/internal/config"
	"github.com/eduquest/eduquest-api/internal/domain/auth"
	"github.com/eduquest/eduquest-api/internal/domain/event"
	"github.com/eduquest/eduquest-api/internal/domain/feed"
	"github.com/eduquest/eduquest-api/internal/domain/job"
	"github.com/eduquest/eduquest-api/internal/domain/shop"
	syncDomain "github.com/eduquest/eduquest-api/internal/domain/sync"
	"github.com/eduquest/eduquest-api/internal/domain/user"
	"github.com/eduquest/eduquest-api/internal/domain/xp"
	"github.com/eduquest/eduquest-api/internal/middleware"
	"github.com/eduquest/eduquest-api/internal/pkg/audit"
	"github.com/eduquest/eduquest-api/internal/pkg/bakalari"
	"github.com/eduquest/eduquest-api/internal/pkg/database"
	"github.com/eduquest/eduquest-api/internal/pkg/jwt"
	"github.com/eduquest/eduquest-api/internal/pkg/logger"
	pkgresponse "github.com/eduquest/eduquest-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting EduQuest API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	auditSink := audit.NewDBSink(db)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	xpRepo := xp.NewRepository(db)
	shopRepo := shop.NewRepository(db)
	jobRepo := job.NewRepository(db)
	eventRepo := event.NewRepository(db)
	syncRepo := syncDomain.NewRepository(db)

	// ---------- Live feed ----------
	feedHub := feed.NewHub(redis)
	go feedHub.Run()
	defer feedHub.Stop()

	// ---------- Services ----------
	authService := auth.NewService(userRepo, jwtService)
	userService := user.NewService(userRepo)
	xpService := xp.NewService(db, xpRepo, userRepo, auditSink, cfg.DailyXPBudget)
	shopService := shop.NewService(db, shopRepo, userRepo, auditSink, cfg.PurchaseDedupWindow)
	jobService := job.NewService(db, jobRepo, xpRepo, shopRepo, userRepo, auditSink)
	eventService := event.NewService(db, eventRepo, xpRepo, userRepo, auditSink)

	xpService.SetFeedPublisher(feedHub)
	shopService.SetFeedPublisher(feedHub)
	jobService.SetFeedPublisher(feedHub)
	eventService.SetFeedPublisher(feedHub)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	xpHandler := xp.NewHandler(xpService)
	shopHandler := shop.NewHandler(shopService)
	jobHandler := job.NewHandler(jobService)
	eventHandler := event.NewHandler(eventService)
	feedHandler := feed.NewHandler(feedHub, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(redis, cfg.RateLimitPerMinute))

	// WebSocket endpoint (before Compress)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(feedHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/users", userHandler.Routes(authMiddleware, middleware.RequireTeacher()))
		r.Mount("/xp", xpHandler.Routes(authMiddleware))
		r.Mount("/shop", shopHandler.Routes(authMiddleware))
		r.Mount("/jobs", jobHandler.Routes(authMiddleware))
		r.Mount("/events", eventHandler.Routes(authMiddleware))

		if cfg.BakalariSyncEnabled {
			client := bakalari.NewClient(bakalari.Config{
				BaseURL:  cfg.BakalariBaseURL,
				Username: cfg.BakalariUsername,
				Password: cfg.BakalariPassword,
				Timeout:  time.Duration(cfg.BakalariTimeoutSeconds) * time.Second,
			})
			syncService := syncDomain.NewService(db, syncRepo, userRepo, client, auditSink)
			syncHandler := syncDomain.NewHandler(syncService)
			r.Mount("/sync", syncHandler.Routes(authMiddleware))
		}
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
