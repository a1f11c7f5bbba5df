package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rosterup/platform/internal/auth"
	"github.com/rosterup/platform/internal/handler"
	"github.com/rosterup/platform/internal/infra"
	"github.com/rosterup/platform/internal/repository"
	"github.com/rosterup/platform/internal/service"
	"github.com/rosterup/platform/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	adminExpiry, err := time.ParseDuration(cfg.JWTAdminExpiry)
	if err != nil {
		return fmt.Errorf("parse admin JWT expiry: %w", err)
	}
	shareLinkTTL, err := time.ParseDuration(cfg.ShareLinkTTL)
	if err != nil {
		return fmt.Errorf("parse share link TTL: %w", err)
	}
	coachSessionTTL, err := time.ParseDuration(cfg.CoachSessionTTL)
	if err != nil {
		return fmt.Errorf("parse coach session TTL: %w", err)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, adminExpiry)

	// Repositories
	registrationRepo := repository.NewRegistrationRepository()
	tokenRepo := repository.NewShareTokenRepository()
	eventRepo := repository.NewEventRepository()
	notificationRepo := repository.NewNotificationRepository()
	userRepo := repository.NewUserRepository()

	// Services
	sessionSvc := service.NewSessionService(pool, userRepo, coachSessionTTL)
	registrationSvc := service.NewRegistrationService(
		pool, registrationRepo, eventRepo, notificationRepo, tokenRepo,
		cfg.ReviewAllowReversal, logger)
	shareSvc := service.NewShareLinkService(pool, tokenRepo, registrationRepo, eventRepo, logger)

	// Object store
	objectStore, err := storage.NewS3Store(ctx, storage.S3Config{
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretKey,
		Endpoint:        cfg.S3Endpoint,
		PublicBaseURL:   cfg.UploadPublicURL,
	})
	if err != nil {
		return fmt.Errorf("init object store: %w", err)
	}

	// Handlers
	registrationHandler := handler.NewRegistrationHandler(registrationSvc)
	shareHandler := handler.NewShareLinkHandler(shareSvc)
	portalHandler := handler.NewPortalHandler(registrationSvc, shareLinkTTL)
	eventHandler := handler.NewEventHandler(pool, eventRepo)
	uploadHandler := handler.NewUploadHandler(objectStore)

	// Session guard: one routing table gates every route.
	guard := auth.NewGuard(auth.DefaultGuardRules(), jwtMgr, sessionSvc, sessionSvc, logger)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(cfg.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)
	r.Use(guard.Middleware)

	// Public (guard allow-list)
	r.Get("/health", handler.HealthHandler(pool))
	r.Route("/player-share", func(r chi.Router) {
		r.Get("/{token}", shareHandler.Get)
		r.Put("/{token}", shareHandler.Put)
	})

	// Admin
	r.Route("/registrations", func(r chi.Router) {
		r.Get("/{eventID}", registrationHandler.ListByEvent)
		r.Post("/{eventID}", registrationHandler.Create)
		r.Post("/{id}/review", registrationHandler.Review)
	})
	r.Route("/admin/events", func(r chi.Router) {
		r.Get("/", eventHandler.List)
		r.Post("/", eventHandler.Create)
		r.Get("/{id}", eventHandler.Get)
		r.Get("/{id}/settings", eventHandler.GetSettings)
		r.Put("/{id}/settings", eventHandler.UpsertSettings)
	})
	r.Post("/uploads", uploadHandler.Upload)

	// Coach portal
	r.Route("/api/portal", func(r chi.Router) {
		r.Route("/registrations", func(r chi.Router) {
			r.Get("/", portalHandler.List)
			r.Post("/", portalHandler.Create)
			r.Put("/{id}", portalHandler.Update)
			r.Post("/{id}/submit", portalHandler.Submit)
			r.Post("/{id}/cancel", portalHandler.Cancel)
			r.Post("/{id}/share-links", portalHandler.MintShareLink)
		})
		r.Get("/notifications", portalHandler.Notifications)
		r.Post("/notifications/read", portalHandler.MarkNotificationRead)
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
