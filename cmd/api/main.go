package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/technova/storefront-backend/api/controllers"
	"github.com/technova/storefront-backend/api/routes"
	authsvc "github.com/technova/storefront-backend/internal/auth"
	cartsvc "github.com/technova/storefront-backend/internal/cart"
	catalogsvc "github.com/technova/storefront-backend/internal/catalog"
	checkoutsvc "github.com/technova/storefront-backend/internal/checkout"
	comparisonsvc "github.com/technova/storefront-backend/internal/comparison"
	orderssvc "github.com/technova/storefront-backend/internal/orders"
	reviewssvc "github.com/technova/storefront-backend/internal/reviews"
	userssvc "github.com/technova/storefront-backend/internal/users"
	wishlistsvc "github.com/technova/storefront-backend/internal/wishlist"
	"github.com/technova/storefront-backend/pkg/auth/session"
	"github.com/technova/storefront-backend/pkg/config"
	"github.com/technova/storefront-backend/pkg/db"
	"github.com/technova/storefront-backend/pkg/logger"
	"github.com/technova/storefront-backend/pkg/metrics"
	"github.com/technova/storefront-backend/pkg/migrate"
	"github.com/technova/storefront-backend/pkg/outbox"
	"github.com/technova/storefront-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient, redisClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	readiness := map[string]controllers.Pinger{
		"postgres": dbClient,
		"redis":    redisClient,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, sessionManager, httpMetrics, registry, readiness, svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error during shutdown", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
) (routes.Services, error) {
	catalogRepo := catalogsvc.NewRepository(dbClient.DB())
	usersRepo := userssvc.NewRepository(dbClient.DB())
	ordersRepo := orderssvc.NewRepository(dbClient.DB())
	wishlistRepo := wishlistsvc.NewRepository(dbClient.DB())
	reviewsRepo := reviewssvc.NewRepository(dbClient.DB())
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	catalogService, err := catalogsvc.NewService(catalogRepo, cfg.Catalog.MaxPrice)
	if err != nil {
		return routes.Services{}, err
	}

	cartPersister, err := cartsvc.NewRedisPersister(redisClient, cfg.Session.CartTTL)
	if err != nil {
		return routes.Services{}, err
	}
	cartService, err := cartsvc.NewService(catalogRepo, cartPersister)
	if err != nil {
		return routes.Services{}, err
	}

	comparisonPersister, err := comparisonsvc.NewRedisPersister(redisClient, cfg.Session.ComparisonTTL)
	if err != nil {
		return routes.Services{}, err
	}
	comparisonService, err := comparisonsvc.NewService(catalogRepo, comparisonPersister)
	if err != nil {
		return routes.Services{}, err
	}

	checkoutService, err := checkoutsvc.NewService(dbClient, cartPersister, catalogRepo, outboxSvc, cfg.Checkout, logg)
	if err != nil {
		return routes.Services{}, err
	}

	ordersService, err := orderssvc.NewService(ordersRepo, dbClient, catalogRepo, outboxSvc)
	if err != nil {
		return routes.Services{}, err
	}

	wishlistService, err := wishlistsvc.NewService(wishlistRepo, catalogRepo)
	if err != nil {
		return routes.Services{}, err
	}

	reviewsService, err := reviewssvc.NewService(reviewsRepo, dbClient, catalogRepo, usersRepo)
	if err != nil {
		return routes.Services{}, err
	}

	usersService, err := userssvc.NewService(usersRepo)
	if err != nil {
		return routes.Services{}, err
	}

	authService, err := authsvc.NewService(
		usersRepo,
		sessionManager,
		redisClient,
		cfg.JWT,
		cfg.Password,
		cfg.AuthRateLimit,
		logg,
	)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Catalog:    catalogService,
		Cart:       cartService,
		Comparison: comparisonService,
		Checkout:   checkoutService,
		Orders:     ordersService,
		Wishlist:   wishlistService,
		Reviews:    reviewsService,
		Users:      usersService,
		Auth:       authService,
	}, nil
}
