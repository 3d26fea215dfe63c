// Package bootstrap opens the storage backends selected by configuration and
// registers their shutdown hooks.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/truckmitra/backend/internal/config"
	"github.com/truckmitra/backend/internal/infrastructure/monitor"
	mongoInfra "github.com/truckmitra/backend/internal/infrastructure/mongo"
	pgInfra "github.com/truckmitra/backend/internal/infrastructure/postgres"
	redisInfra "github.com/truckmitra/backend/internal/infrastructure/redis"
	"github.com/truckmitra/backend/internal/services/lifecycle"
	"github.com/truckmitra/backend/repository"
	boltRepo "github.com/truckmitra/backend/repository/bolt"
	"github.com/truckmitra/backend/repository/memory"
	mongoRepo "github.com/truckmitra/backend/repository/mongo"
	pgRepo "github.com/truckmitra/backend/repository/postgres"
	redisRepo "github.com/truckmitra/backend/repository/redis"
)

// Stores bundles the repositories the use cases depend on.
type Stores struct {
	Loads    repository.LoadRepository
	Users    repository.UserRepository
	Sessions repository.SessionRepository

	// MemorySessions is set when sessions live in process and need sweeping.
	MemorySessions *memory.SessionRepository

	Checks []monitor.Check
}

// OpenStores connects the load/user store and the session store named in cfg.
func OpenStores(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	stores := &Stores{}

	if err := openRecords(ctx, cfg, manager, logger, stores); err != nil {
		return nil, err
	}
	if err := openSessions(ctx, cfg, manager, stores); err != nil {
		return nil, err
	}

	stores.Checks = append(stores.Checks,
		monitor.Check{Name: cfg.Store.Driver, Target: stores.Loads},
		monitor.Check{Name: "sessions-" + cfg.Session.Driver, Target: stores.Sessions},
	)
	logger.Info("stores ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("sessions", cfg.Session.Driver),
	)
	return stores, nil
}

func openRecords(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger, stores *Stores) error {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		stores.Loads = memory.NewLoadRepository()
		stores.Users = memory.NewUserRepository()

	case config.StorePostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		manager.Register("postgres", func(context.Context) error {
			pgInfra.Close(pool, logger)
			return nil
		})
		stores.Loads = pgRepo.NewLoadRepository(pool)
		stores.Users = pgRepo.NewUserRepository(pool)

	case config.StoreMongo:
		client, db, err := mongoInfra.Connect(ctx, cfg.Mongo, logger)
		if err != nil {
			return err
		}
		manager.Register("mongo", func(ctx context.Context) error {
			return mongoInfra.Disconnect(ctx, client, logger)
		})
		if err := mongoRepo.EnsureIndexes(ctx, db); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		stores.Loads = mongoRepo.NewLoadRepository(db)
		stores.Users = mongoRepo.NewUserRepository(db)

	case config.StoreBolt:
		db, err := boltRepo.Open(cfg.Bolt.Path)
		if err != nil {
			return err
		}
		manager.Register("bolt", func(context.Context) error {
			return db.Close()
		})
		stores.Loads = boltRepo.NewLoadRepository(db)
		stores.Users = boltRepo.NewUserRepository(db)

	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	return nil
}

func openSessions(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, stores *Stores) error {
	switch cfg.Session.Driver {
	case config.SessionRedis:
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		manager.Register("redis", func(context.Context) error {
			return client.Close()
		})
		stores.Sessions = redisRepo.NewSessionRepository(client, cfg.JWT.AccessTTL)

	case config.SessionMemory:
		sessions := memory.NewSessionRepository(cfg.JWT.AccessTTL)
		stores.MemorySessions = sessions
		stores.Sessions = sessions

	default:
		return fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
	}
	return nil
}
