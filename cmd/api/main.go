package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"echoo/config"
	_ "echoo/docs"
	"echoo/internal/adapters/auth"
	"echoo/internal/adapters/fotoowl"
	"echoo/internal/adapters/instagram"
	"echoo/internal/adapters/selfie"
	"echoo/internal/delivery/http/controllers"
	delivery "echoo/internal/delivery/http"
	"echoo/internal/delivery/http/middleware"
	"echoo/internal/domain"
	"echoo/internal/repository/postgres"
	"echoo/internal/services"
)

// @title Echoo API
// @version 1.0
// @description Event photo matching backend.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.basic BasicAuth
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	regRepo := postgres.NewRegistrationRepository(db)
	imageRepo := postgres.NewImageRepository(db)
	mappingRepo := postgres.NewRegionMappingRepository(db)
	instaRepo := postgres.NewInstaPostRepository(db)

	httpClient := &http.Client{}
	provider := fotoowl.NewClient(cfg.FotoOwlBaseURL, httpClient, cfg.FotoOwlRequestTimeout, cfg.FotoOwlListTimeout, logger)
	selfies := selfie.NewHTTPFetcher(httpClient, cfg.SelfieDownloadTimeout)
	hasher := auth.NewBcryptHasher(12)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	// Without an API key the service skips post enrichment entirely.
	var postFetcher domain.PostFetcher
	if cfg.InstaFetchKey != "" {
		postFetcher = instagram.NewClient(cfg.InstaFetchKey, httpClient, cfg.InstaFetchTimeout)
	}

	userSvc := services.NewUserService(userRepo, instaRepo, hasher, issuer, cfg.TokenExpiry, postFetcher, logger)
	eventSvc := services.NewEventService(eventRepo)
	imageSvc := services.NewImageService(imageRepo)
	mappingSvc := services.NewMappingService(mappingRepo, logger)
	regSvc := services.NewRegistrationService(userRepo, eventRepo, regRepo, imageRepo, provider, selfies, logger)

	router := delivery.NewRouter(delivery.Controllers{
		Auth:         controllers.NewAuthController(logger, userSvc),
		Profile:      controllers.NewProfileController(logger, userSvc),
		Registration: controllers.NewRegistrationController(logger, regSvc),
		Event:        controllers.NewEventController(logger, eventSvc),
		Image:        controllers.NewImageController(logger, imageSvc),
		Mapping:      controllers.NewMappingController(logger, mappingSvc),
	}, verifier, cfg.InternalUsername, cfg.InternalPassword)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.Logging(logger, router))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
