package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"osa-dashboard/internal/charting"
	"osa-dashboard/internal/handler"
	"osa-dashboard/internal/middleware"
	"osa-dashboard/internal/repository"
	"osa-dashboard/internal/series"
	"osa-dashboard/internal/service"
	"osa-dashboard/internal/ws"
	"osa-dashboard/pkg/config"
	"osa-dashboard/pkg/jwt"
	applog "osa-dashboard/pkg/logger"
	"osa-dashboard/pkg/osaapi"
)

const maxUploadSize = 20 << 20

func main() {
	// 1. Load config
	cfg := config.Load()

	zlog, err := applog.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.JWTSecret == "" && cfg.IsProduction() {
		zlog.Warn("JWT_SECRET is not set, using the built-in default")
	}
	jwt.SetSecretKey(cfg.JWTSecret)

	// 2. Upstream API
	api, err := osaapi.Connect(cfg.APIBaseURL, cfg.APITimeout)
	if err != nil {
		zlog.Fatal("invalid upstream api url", zap.Error(err))
	}
	zlog.Info("using upstream api", zap.String("base_url", api.BaseURL()), zap.Duration("timeout", cfg.APITimeout))

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	authRepo := repository.NewAuthRepo(api)
	kpiRepo := repository.NewKPIRepo(api)
	measurementRepo := repository.NewMeasurementRepo(api)
	storeRepo := repository.NewStoreRepo(api)
	importRepo := repository.NewImportRepo(api)

	defaults := service.VisualOptions{
		GroupBy:           series.GroupMode(cfg.DefaultGroupBy),
		ShowMovingAverage: cfg.DefaultShowMA,
		Target:            cfg.DefaultTarget,
	}
	dashLog := zlog.Named("dashboard")
	newDashboard := func(sessionID uuid.UUID) *service.Dashboard {
		renderer := charting.NewLiveRenderer(wsHub, sessionID.String())
		return service.NewDashboard(kpiRepo, renderer, defaults, cfg.MovingAvgWindow, dashLog.With(zap.String("session_id", sessionID.String())))
	}

	sessions := service.NewSessionStore(cfg.IdleTimeout, zlog.Named("sessions"))
	sessions.OnRemove(func(s *service.Session) { wsHub.CloseTopic(s.ID.String()) })

	authService := service.NewAuthService(authRepo, sessions, newDashboard, wsHub, zlog.Named("auth"))
	storeService := service.NewStoreService(storeRepo)
	measurementService := service.NewMeasurementService(measurementRepo)
	importService := service.NewImportService(importRepo, zlog.Named("import"))

	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Dashboard:    handler.NewDashboardHandler(),
		Measurements: handler.NewMeasurementHandler(measurementService),
		Stores:       handler.NewStoreHandler(storeService),
		Import:       handler.NewImportHandler(importService),
		Health:       handler.NewHealthHandler(api.BaseURL(), sessions.Len),
		WS:           handler.NewWSHandler(wsHub),
	}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "OSA Dashboard v1.0",
		BodyLimit: maxUploadSize,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 6. Routes
	handler.RegisterRoutes(app, handlers, middleware.RequireAuth(authService))

	// 7. Session sweeper
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.RunSweeper(ctx, time.Minute)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	cancel()
	if err := app.Shutdown(); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}
	wsHub.Stop()

	zlog.Info("server exited")
}
