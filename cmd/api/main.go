package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/circleats/donation-service/internal/api/http"
	"github.com/circleats/donation-service/internal/api/http/handlers"
	"github.com/circleats/donation-service/internal/auth"
	"github.com/circleats/donation-service/internal/config"
	"github.com/circleats/donation-service/internal/events"
	"github.com/circleats/donation-service/internal/geocode"
	"github.com/circleats/donation-service/internal/observability"
	"github.com/circleats/donation-service/internal/persistence"
	"github.com/circleats/donation-service/internal/repository"
	"github.com/circleats/donation-service/internal/service"
	"github.com/circleats/donation-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	donationRepo := repository.NewDonationRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	geocoder := geocode.NewCachedGeocoder(
		geocode.NewClient(cfg.Geocoder),
		redis.Client,
		cfg.Geocoder.CacheTTL(),
		logger,
	)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	donationService := service.NewDonationService(service.DonationDependencies{
		DonationRepo:     donationRepo,
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		Geocoder:         geocoder,
		Dispatcher:       dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Donations:      handlers.NewDonationsHandler(donationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
