package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-api/internal/api/http"
	"github.com/spec-kit/ticket-api/internal/api/http/handlers"
	"github.com/spec-kit/ticket-api/internal/auth"
	"github.com/spec-kit/ticket-api/internal/config"
	"github.com/spec-kit/ticket-api/internal/events"
	"github.com/spec-kit/ticket-api/internal/observability"
	"github.com/spec-kit/ticket-api/internal/persistence"
	"github.com/spec-kit/ticket-api/internal/repository"
	"github.com/spec-kit/ticket-api/internal/service"
	"github.com/spec-kit/ticket-api/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open ticket store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer store.close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var publisher events.Publisher
	dependencies := store.dependencies
	if redis.Configured() {
		publisher = events.NewRedisPublisher(redis.Client, cfg.Redis.EventsChannel)
		dependencies = append(dependencies, handlers.Dependency{Name: "redis", Pinger: redis})
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, publisher, logger).RegisterHandlers()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: store.tickets,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	var authMiddleware *auth.AuthMiddleware
	if cfg.Auth.Enabled() {
		authMiddleware = auth.NewAuthMiddleware(auth.NewTokenManager(cfg.Auth.JWTSecret, 0))
		logger.Info("bearer token auth enabled for mutating routes")
	}

	app := httptransport.NewApp(cfg.App, logger, metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Tickets:        handlers.NewTicketsHandler(ticketService, validation.NewTicketValidator(nil)),
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies...),
		Docs:           handlers.NewDocsHandler(),
		Metrics:        metrics,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

type ticketStore struct {
	tickets      repository.TicketRepository
	dependencies []handlers.Dependency
	close        func()
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ticketStore, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		if mongo.Client == nil {
			return nil, fmt.Errorf("store driver %q requires MONGO_URI", cfg.Store.Driver)
		}
		repo := repository.NewMongoTicketRepository(mongo.Collection(cfg.Mongo.Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			mongo.Close()
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return &ticketStore{
			tickets:      repo,
			dependencies: []handlers.Dependency{{Name: "mongo", Pinger: mongo}},
			close:        mongo.Close,
		}, nil

	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if pg.PoolHandle() == nil {
			return nil, fmt.Errorf("store driver %q requires POSTGRES_DSN", cfg.Store.Driver)
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return &ticketStore{
			tickets:      repository.NewPostgresTicketRepository(pg.PoolHandle()),
			dependencies: []handlers.Dependency{{Name: "postgres", Pinger: pg}},
			close:        pg.Close,
		}, nil

	default:
		logger.Warn("using in-memory ticket store; data is lost on restart")
		return &ticketStore{
			tickets: repository.NewMemoryTicketRepository(),
			close:   func() {},
		}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
