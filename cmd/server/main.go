package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/journal-backend/internal/config"
	"github.com/AnshRaj112/journal-backend/internal/database"
	"github.com/AnshRaj112/journal-backend/internal/logging"
	"github.com/AnshRaj112/journal-backend/internal/middleware"
	"github.com/AnshRaj112/journal-backend/internal/routes"
	"github.com/AnshRaj112/journal-backend/internal/services"
	"github.com/AnshRaj112/journal-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {
	// Load env; a missing .env is fine when the platform supplies the environment
	_ = godotenv.Load()

	cfg := config.Load()

	logging.Init(cfg.IsProduction(), cfg.DebugLog)
	defer logging.Sync()
	log := logging.Log

	// Check encryption key (warn if not set, but don't fail)
	if cfg.EncryptionKey == "" {
		log.Warn("ENCRYPTION_KEY not set. Recovery email encryption will not work.")
		log.Warn("Generate a key with: openssl rand -base64 32")
	} else if _, err := utils.GetEncryptionKey(); err != nil {
		log.Warn("ENCRYPTION_KEY is invalid; recovery email encryption will not work", zap.Error(err))
	}

	log.Info("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.DisconnectPostgres()

	log.Info("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer database.DisconnectRedis()

	log.Info("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer database.Disconnect()

	if err := services.EnsureJournalIndexes(context.Background()); err != nil {
		log.Warn("Failed to ensure MongoDB journal indexes", zap.Error(err))
	} else {
		log.Info("MongoDB journal indexes ensured")
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: security headers + per-IP and login rate limiting.
	// Non-production: Redis-based rate limit only.
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Info("Production security enabled (security headers, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r)

	log.Info("Journal backend running", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
