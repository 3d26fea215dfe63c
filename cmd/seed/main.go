// Command seed registers demo users from a JSON file, skipping emails that already exist.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/truckmitra/backend/internal/bootstrap"
	"github.com/truckmitra/backend/internal/config"
	"github.com/truckmitra/backend/internal/services/lifecycle"
	"github.com/truckmitra/backend/internal/token"
	"github.com/truckmitra/backend/pkg/logger"
	authUC "github.com/truckmitra/backend/usecase/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	file := flag.String("file", cfg.Seed.File, "path to the users JSON file")
	password := flag.String("password", cfg.Seed.DefaultPassword, "password for entries without one")
	flag.Parse()

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	regs, err := readSeedFile(*file, *password)
	if err != nil {
		zapLogger.Fatal("invalid seed file", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	defer func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			zapLogger.Error("shutdown error", zap.Error(err))
		}
	}()

	// Sessions are never created while seeding.
	cfg.Session.Driver = config.SessionMemory

	stores, err := bootstrap.OpenStores(ctx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Error("store initialization failed", zap.Error(err))
		return
	}

	issuer := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL)
	auth := authUC.New(stores.Users, stores.Sessions, issuer, zapLogger)

	created, err := auth.Seed(ctx, regs)
	if err != nil {
		zapLogger.Error("seeding failed", zap.Int("created", created), zap.Error(err))
		return
	}
	zapLogger.Info("seeding finished",
		zap.Int("created", created),
		zap.Int("skipped", len(regs)-created),
		zap.String("store", cfg.Store.Driver),
	)
}
