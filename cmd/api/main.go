// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imadgeboyega/fitbuddy-backend/internal/auth"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/database"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/logging"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/utils"
	"github.com/imadgeboyega/fitbuddy-backend/internal/config"
	"github.com/imadgeboyega/fitbuddy-backend/internal/gym"
	"github.com/imadgeboyega/fitbuddy-backend/internal/matching"
	"github.com/imadgeboyega/fitbuddy-backend/internal/notification"
	"github.com/imadgeboyega/fitbuddy-backend/internal/presence"
	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

var startTime = time.Now()

func main() {
	// 1. Load environment variables
	envErr := godotenv.Load()

	// 2. Load configuration
	cfg := config.Load()
	logger := logging.New(cfg.Environment)
	slog.SetDefault(logger)

	if envErr != nil {
		logger.Warn("no .env file found, using environment variables", slog.Any("error", envErr))
	}

	// 3. Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Connect to PostgreSQL
	db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	// 5. Run database migrations
	if cfg.RunMigrations {
		version, err := database.RunMigrations(db.DB)
		if err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database migrations completed", slog.Uint64("version", uint64(version)))
	}

	// 6. Connect to Redis (optional)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("continuing without Redis", slog.Any("error", err))
		} else {
			defer redisClient.Close()
			logger.Info("connected to Redis")
		}
	}

	// 7. Presence and realtime
	var presenceStore presence.Store
	if redisClient != nil {
		presenceStore = presence.NewRedisStore(redisClient, cfg.PresenceTTL)
		logger.Info("using Redis presence store")
	} else {
		presenceStore = presence.NewMemoryStore()
		logger.Warn("using in-memory presence store (single instance only)")
	}
	hub := presence.NewHub(presenceStore, logger)
	go hub.Run(ctx)

	// 8. Auth
	authService := auth.NewService(auth.NewPostgresRepository(db), &auth.Config{
		JWTSecret:         cfg.JWTSecret,
		Issuer:            cfg.JWTIssuer,
		AccessTokenExpiry: cfg.AccessTokenExpiry,
		BCryptCost:        cfg.BCryptCost,
	})
	authMiddleware := auth.NewMiddleware(authService)

	// 9. Profiles
	profileRepo := profile.NewPostgresRepository(db)
	var uploader profile.ImageUploader
	if cfg.UseS3 {
		sess, err := profile.NewS3Session(cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey)
		if err != nil {
			logger.Warn("profile image uploads disabled", slog.Any("error", err))
		} else {
			uploader = profile.NewS3ImageUploader(sess, cfg.S3Bucket, cfg.S3PublicBaseURL, cfg.UploadURLExpiry)
			logger.Info("using S3 for profile images", slog.String("bucket", cfg.S3Bucket))
		}
	}
	profileService := profile.NewService(profileRepo, uploader, cfg.Matching.MaxDistanceKm, logger)

	// 10. Notifications
	notifier := notification.NewService(notification.Config{
		Recipients: profileRepo,
		Presence:   presenceStore,
		Realtime:   hub,
		Email:      newEmailService(cfg, logger),
		SMS:        newSMSService(cfg, logger),
		Push:       newPushService(ctx, cfg, logger),
		Channels: notification.Channels{
			Email: cfg.EnableEmailNotifications,
			Push:  cfg.EnablePushNotifications,
			SMS:   cfg.EnableSMSNotifications,
		},
		AppURL: cfg.BaseURL,
		Logger: logger,
	})

	// 11. Matching
	matchService := matching.NewService(matching.NewPostgresRepository(db), profileRepo, notifier, cfg.Matching, logger)
	matching.NewScheduler(matchService, logger, time.Hour).Start(ctx)

	// 12. Gyms
	gymService := gym.NewService(gym.NewPostgresRepository(db), profileRepo, cfg.Matching.MaxDistanceKm, logger)

	// 13. Routes
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", healthCheck(hub))
	r.Handle("/metrics", promhttp.Handler())

	auth.RegisterRoutes(r, auth.NewHandler(authService, logger))
	profile.RegisterRoutes(r, profile.NewHandler(profileService, logger, cfg.Matching.NearbyUsersKm, cfg.Matching.NearbyInstructorsKm), authMiddleware)
	matching.RegisterRoutes(r, matching.NewHandler(matchService, logger, cfg.Matching.SuggestionDistanceKm), authMiddleware)
	gym.RegisterRoutes(r, gym.NewHandler(gymService, logger, cfg.Matching.NearbyGymsKm), authMiddleware)
	presence.RegisterRoutes(r, presence.NewHandler(hub, presenceStore, logger), authMiddleware)

	// 14. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", srv.Addr), slog.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
		return
	}
	logger.Info("server exited gracefully")
}

func newEmailService(cfg *config.Config, logger *slog.Logger) notification.EmailService {
	switch cfg.EmailProvider {
	case "sendgrid":
		svc, err := notification.NewSendGridEmailService(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
		if err == nil {
			logger.Info("using SendGrid for email")
			return svc
		}
		logger.Warn("SendGrid unavailable, using mock email", slog.Any("error", err))
	case "smtp":
		svc, err := notification.NewSMTPEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom, cfg.EmailFromName)
		if err == nil {
			logger.Info("using SMTP for email", slog.String("host", cfg.SMTPHost))
			return svc
		}
		logger.Warn("SMTP unavailable, using mock email", slog.Any("error", err))
	}
	return notification.NewMockEmailService(logger)
}

func newSMSService(cfg *config.Config, logger *slog.Logger) notification.SMSService {
	if cfg.SMSProvider == "twilio" {
		svc, err := notification.NewTwilioSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
		if err == nil {
			logger.Info("using Twilio for SMS")
			return svc
		}
		logger.Warn("Twilio unavailable, using mock SMS", slog.Any("error", err))
	}
	return notification.NewMockSMSService(logger)
}

func newPushService(ctx context.Context, cfg *config.Config, logger *slog.Logger) notification.PushService {
	if cfg.PushProvider == "fcm" {
		svc, err := notification.NewFCMPushService(ctx, cfg.FirebaseCredentialsFile, cfg.FirebaseCredentialsJSON, logger)
		if err == nil {
			logger.Info("using FCM for push")
			return svc
		}
		logger.Warn("FCM unavailable, using mock push", slog.Any("error", err))
	}
	return notification.NewMockPushService(logger)
}

func healthCheck(hub *presence.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.SuccessResponse(w, map[string]interface{}{
			"status":      "healthy",
			"uptime":      time.Since(startTime).Round(time.Second).String(),
			"connections": hub.ActiveConnections(),
		}, http.StatusOK)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
