package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/gym-portal/internal/api/http"
	"github.com/spec-kit/gym-portal/internal/api/http/handlers"
	"github.com/spec-kit/gym-portal/internal/auth"
	"github.com/spec-kit/gym-portal/internal/config"
	"github.com/spec-kit/gym-portal/internal/events"
	"github.com/spec-kit/gym-portal/internal/observability"
	"github.com/spec-kit/gym-portal/internal/persistence"
	"github.com/spec-kit/gym-portal/internal/repository"
	"github.com/spec-kit/gym-portal/internal/service"
	"github.com/spec-kit/gym-portal/internal/session"
	"github.com/spec-kit/gym-portal/internal/worker"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if pg.Pool == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.Pool
	userRepo := repository.NewUserRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	planRepo := repository.NewPlanRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	tokenRepo := repository.NewSessionTokenRepository(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	stopNotifications := worker.StartNotificationWorker(notifications)
	defer stopNotifications()

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:         userRepo,
		ProfileRepo:      profileRepo,
		SessionTokenRepo: tokenRepo,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	subscriptionService := service.NewSubscriptionService(service.SubscriptionDependencies{
		PlanRepo:         planRepo,
		SubscriptionRepo: subscriptionRepo,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	shopService := service.NewShopService(service.ShopDependencies{
		ProductRepo: productRepo,
		OrderRepo:   orderRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	attendanceService := service.NewAttendanceService(service.AttendanceDependencies{
		AttendanceRepo:   attendanceRepo,
		SubscriptionRepo: subscriptionRepo,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	memberService := service.NewMemberService(memberRepo, nil)

	sessions := auth.NewRegistry(
		service.NewSessionClientFactory(authService, subscriptionRepo, dispatcher, logger),
		auth.RegistryOptions{
			IdleTTL:       cfg.Session.IdleTTL,
			SweepInterval: cfg.Session.SweepInterval,
			Store:         session.Options{OpTimeout: cfg.Session.OpTimeout},
		},
		logger,
		metrics,
	)
	go sessions.Run(ctx)

	authLimiter := auth.NewRateLimiter(auth.RateLimiterConfig{
		PerMinute:       cfg.RateLimit.AuthPerMinute,
		Burst:           cfg.RateLimit.AuthBurst,
		CleanupInterval: cfg.RateLimit.IdleTTL,
	}, logger)
	defer authLimiter.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:    handlers.NewAuthHandler(authService, metrics, logger),
		Catalog: handlers.NewCatalogHandler(subscriptionService, shopService),
		Member: handlers.NewMemberHandler(handlers.MemberHandlerDeps{
			Auth:          authService,
			Subscriptions: subscriptionService,
			Attendance:    attendanceService,
			Shop:          shopService,
		}),
		Cart:  handlers.NewCartHandler(shopService),
		Admin: handlers.NewAdminHandler(memberService, attendanceService, shopService),
		Sessions: auth.NewSessionMiddleware(sessions, auth.SessionMiddlewareConfig{
			CookieName:   cfg.Session.CookieName,
			CookieSecure: cfg.Session.CookieSecure,
			CookieMaxAge: cfg.Session.IdleTTL,
			ReadyWait:    cfg.Session.ReadyWait,
		}),
		Guards:      auth.NewGuards(metrics),
		AuthLimiter: authLimiter,
		Gatherer:    registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
