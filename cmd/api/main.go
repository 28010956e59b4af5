package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/wanderlust-backend/api/controllers"
	"github.com/angelmondragon/wanderlust-backend/api/routes"
	"github.com/angelmondragon/wanderlust-backend/internal/auth"
	"github.com/angelmondragon/wanderlust-backend/internal/listings"
	"github.com/angelmondragon/wanderlust-backend/internal/reviews"
	"github.com/angelmondragon/wanderlust-backend/internal/users"
	"github.com/angelmondragon/wanderlust-backend/internal/wishlist"
	"github.com/angelmondragon/wanderlust-backend/pkg/auth/session"
	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	"github.com/angelmondragon/wanderlust-backend/pkg/db"
	"github.com/angelmondragon/wanderlust-backend/pkg/events"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/maps"
	"github.com/angelmondragon/wanderlust-backend/pkg/metrics"
	"github.com/angelmondragon/wanderlust-backend/pkg/migrate"
	"github.com/angelmondragon/wanderlust-backend/pkg/redis"
	"github.com/angelmondragon/wanderlust-backend/pkg/storage/s3"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var dbClient *db.Client
	if cfg.FeatureFlags.UseSQLite {
		dbClient, err = db.NewSQLite(ctx, cfg.DB, logg)
	} else {
		dbClient, err = db.New(ctx, cfg.DB, logg)
	}
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	// A nil client still satisfies the geocoder and reports a dependency error.
	geocoder, err := maps.NewClient(cfg.GoogleMaps.APIKey, maps.WithBaseURL(cfg.GoogleMaps.BaseURL))
	if err != nil {
		logg.Warn(ctx, "google maps disabled: "+err.Error())
		geocoder = nil
	}

	images, err := s3.NewClient(ctx, cfg.Storage, logg)
	if err != nil {
		return err
	}

	publisher, err := events.New(cfg.NATS, logg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	gormDB := dbClient.DB()
	wishlistRepo := wishlist.NewRepository(gormDB)
	listingCache := listings.NewRedisCache(redisClient, cfg.Cache.ListingTTL)

	listingService, err := listings.NewService(listings.ServiceParams{
		Repo:      listings.NewRepository(gormDB),
		Tx:        dbClient,
		Geocoder:  geocoder,
		Images:    images,
		Likes:     wishlistRepo,
		Publisher: publisher,
		Cache:     listingCache,
		Metrics:   appMetrics,
		Logger:    logg,

		ResizeParam: cfg.Storage.ResizeParam,
	})
	if err != nil {
		return err
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:    wishlistRepo,
		Tx:      dbClient,
		Metrics: appMetrics,
		Logger:  logg,
	})
	if err != nil {
		return err
	}

	reviewService, err := reviews.NewService(reviews.NewRepository(gormDB), listingCache)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(gormDB),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(routes.RouterParams{
		Config:   cfg,
		Logger:   logg,
		Sessions: sessionManager,
		Limiter:  redisClient,
		Metrics:  appMetrics,
		Pingers: map[string]controllers.Pinger{
			"db":      dbClient,
			"redis":   redisClient,
			"storage": images,
		},
		Listings: listingService,
		Wishlist: wishlistService,
		Reviews:  reviewService,
		Auth:     authService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-serveErr
}
