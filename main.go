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

	"github.com/isdelr/circuitgen-be/internal/ai"
	"github.com/isdelr/circuitgen-be/internal/api"
	"github.com/isdelr/circuitgen-be/internal/auth"
	"github.com/isdelr/circuitgen-be/internal/cache"
	"github.com/isdelr/circuitgen-be/internal/config"
	"github.com/isdelr/circuitgen-be/internal/database"
	"github.com/isdelr/circuitgen-be/internal/logger"
	"github.com/isdelr/circuitgen-be/internal/media"
	"github.com/isdelr/circuitgen-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logFormat := cfg.Logging.Format
	if cfg.IsProduction() {
		logFormat = "json"
	}
	logger.Init(cfg.Logging.Level, logFormat)

	// Set up database
	db, err := database.New(cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get database handle")
	}
	defer sqlDB.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Share-link cache is optional
	var circuitCache cache.CircuitCache = cache.Noop{}
	if cfg.Cache.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.Connect(ctx, cfg.Cache.RedisURL)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, circuit cache disabled")
		} else {
			defer client.Close()
			circuitCache = cache.NewRedisCache(client, cfg.Cache.TTL)
			log.Info().Dur("ttl", cfg.Cache.TTL).Msg("Circuit cache enabled")
		}
	}

	images, err := media.NewImageHost(cfg.Upload)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image host")
	}
	if !cfg.Upload.Enabled() {
		log.Warn().Msg("Cloudinary credentials missing, image upload disabled")
	}

	// Set up services
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userService, err := services.NewUserService(db, hasher)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize user service")
	}
	circuitService := services.NewCircuitService(db, circuitCache)
	componentService := services.NewComponentService(db)
	courseService := services.NewCourseService(db)
	gateway := ai.New(cfg.AI)

	if cfg.Auth.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD not set, admin password checks will always fail")
	}

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Config:     cfg,
		Tokens:     tokens,
		Users:      userService,
		Circuits:   circuitService,
		Components: componentService,
		Courses:    courseService,
		Generator:  gateway,
		Images:     images,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("model", cfg.AI.Model).Strs("origins", cfg.Origins()).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
