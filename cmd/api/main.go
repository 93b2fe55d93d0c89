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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yoshiakiban-byte/bottle-amigo/api/routes"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/amigos"
	authsvc "github.com/yoshiakiban-byte/bottle-amigo/internal/auth"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/inventory"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/memos"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/notifications"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/posts"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/sessions"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/shares"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/staff"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/users"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/venues"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/config"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/logger"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/metrics"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/migrate"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	svcs, err := buildServices(cfg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			httpMetrics,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			svcs,
		),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client) (routes.Services, error) {
	gdb := dbClient.DB()

	notificationsRepo := notifications.NewRepository(gdb)
	fanout, err := notifications.NewFanout(notificationsRepo)
	if err != nil {
		return routes.Services{}, err
	}
	notificationsSvc, err := notifications.NewService(notificationsRepo)
	if err != nil {
		return routes.Services{}, err
	}

	usersRepo := users.NewRepository(gdb)
	staffRepo := staff.NewRepository(gdb)

	authService, err := authsvc.NewService(usersRepo, staffRepo, cfg.JWT, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}
	staffSvc, err := staff.NewService(staffRepo, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}
	venuesSvc, err := venues.NewService(venues.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}
	inventorySvc, err := inventory.NewService(inventory.NewRepository(gdb), dbClient, fanout)
	if err != nil {
		return routes.Services{}, err
	}
	sessionsSvc, err := sessions.NewService(sessions.NewRepository(gdb), dbClient, fanout)
	if err != nil {
		return routes.Services{}, err
	}
	amigosSvc, err := amigos.NewService(amigos.NewRepository(gdb), dbClient, cfg.AmigoQR.TokenTTL)
	if err != nil {
		return routes.Services{}, err
	}
	sharesSvc, err := shares.NewService(shares.NewRepository(gdb), dbClient, fanout)
	if err != nil {
		return routes.Services{}, err
	}
	postsSvc, err := posts.NewService(posts.NewRepository(gdb), dbClient, fanout)
	if err != nil {
		return routes.Services{}, err
	}
	memosSvc, err := memos.NewService(memos.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:          authService,
		Venues:        venuesSvc,
		Inventory:     inventorySvc,
		Sessions:      sessionsSvc,
		Amigos:        amigosSvc,
		Shares:        sharesSvc,
		Posts:         postsSvc,
		Memos:         memosSvc,
		Staff:         staffSvc,
		Notifications: notificationsSvc,
	}, nil
}
