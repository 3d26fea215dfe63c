package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/truckmitra/backend/api/handler"
	"github.com/truckmitra/backend/internal/bootstrap"
	"github.com/truckmitra/backend/internal/config"
	"github.com/truckmitra/backend/internal/infrastructure/monitor"
	"github.com/truckmitra/backend/internal/middleware"
	"github.com/truckmitra/backend/internal/router"
	"github.com/truckmitra/backend/internal/services"
	"github.com/truckmitra/backend/internal/services/lifecycle"
	"github.com/truckmitra/backend/internal/token"
	"github.com/truckmitra/backend/pkg/httpcontext"
	"github.com/truckmitra/backend/pkg/logger"
	authUC "github.com/truckmitra/backend/usecase/auth"
	loadUC "github.com/truckmitra/backend/usecase/load"
	marketUC "github.com/truckmitra/backend/usecase/marketplace"
	statsUC "github.com/truckmitra/backend/usecase/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	stores, err := bootstrap.OpenStores(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("store initialization failed", zap.Error(err))
	}

	mon := monitor.New(10*time.Second, zapLogger, stores.Checks...)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	issuer := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL)
	authUseCase := authUC.New(stores.Users, stores.Sessions, issuer, zapLogger)
	loadUseCase := loadUC.New(stores.Loads, stores.Users, zapLogger)
	marketUseCase := marketUC.New(stores.Loads)
	statsUseCase := statsUC.New(stores.Loads, zapLogger)

	if err := statsUseCase.Refresh(appCtx); err != nil {
		zapLogger.Warn("initial stats refresh failed", zap.Error(err))
	}

	scheduler := services.NewScheduler(zapLogger)
	if err := scheduler.Add(services.RefreshStats(statsUseCase, cfg.Stats.Schedule)); err != nil {
		zapLogger.Fatal("invalid stats schedule", zap.Error(err))
	}
	if stores.MemorySessions != nil {
		if err := scheduler.Add(services.PurgeSessions(stores.MemorySessions, cfg.Session.PurgeSchedule, zapLogger)); err != nil {
			zapLogger.Fatal("invalid session purge schedule", zap.Error(err))
		}
	}
	scheduler.Start()
	manager.Register("scheduler", scheduler.Stop)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		User:   apiHandler.NewUserHandler(authUseCase, ctxAdapter, zapLogger),
		Load:   apiHandler.NewLoadHandler(loadUseCase, marketUseCase, ctxAdapter, zapLogger),
		Stats:  apiHandler.NewStatsHandler(statsUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.BearerAuth(authUseCase, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware)

	handler := middleware.Recover(zapLogger)(middleware.AccessLog(zapLogger)(r.Handler))

	server := &fasthttp.Server{
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
