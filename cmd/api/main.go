// @title                       SwiftLogistics Order API
// @version                     1.0
// @description                 Credential and order management for the SwiftLogistics delivery backend.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/swiftlogistics/order-api/internal/api"
	"github.com/swiftlogistics/order-api/internal/api/handler"
	"github.com/swiftlogistics/order-api/internal/core/service"
	"github.com/swiftlogistics/order-api/internal/infrastructure/config"
	mongostore "github.com/swiftlogistics/order-api/internal/infrastructure/db/mongo"
	"github.com/swiftlogistics/order-api/internal/infrastructure/db/postgres"
	redisstore "github.com/swiftlogistics/order-api/internal/infrastructure/db/redis"
	"github.com/swiftlogistics/order-api/internal/infrastructure/eventsink"
	"github.com/swiftlogistics/order-api/internal/infrastructure/queue"
	"github.com/swiftlogistics/order-api/internal/jobs"
	"github.com/swiftlogistics/order-api/pkg/logger"
)

const serviceName = "order-api"

func main() {
	if err := run(); err != nil {
		log := logger.Get()
		log.Fatal().Err(err).Msg("order api terminated")
	}
}

func run() error {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: serviceName})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty || cfg.IsDevelopment(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	// --- Stores ---
	pg, err := postgres.Connect(ctx, postgres.Config{
		DSN:          cfg.Postgres.URL,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer closeWith(log, "postgres", pg.Close)

	if cfg.Postgres.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		log.Info().Msg("postgres schema migrated")
	}

	mongoClient, mongoDB, err := mongostore.Connect(ctx, mongostore.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     serviceName,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return err
	}
	defer closeWith(log, "mongodb", func() error { return mongoClient.Disconnect(context.Background()) })

	eventLog := mongostore.NewEventLog(mongoDB)
	if err := eventLog.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return err
	}
	defer closeWith(log, "redis", rdb.Close)

	// --- Services ---
	publisher := eventsink.NewFanout(logger.Component("eventsink"), eventLog, redisstore.NewEventBus(rdb))

	authSvc := service.NewAuthService(postgres.NewUserRepository(pg.DB), service.AuthConfig{
		JWTSecret:        cfg.Auth.JWTSecret,
		TokenTTL:         cfg.Auth.TokenTTL,
		BcryptCost:       cfg.Auth.BcryptCost,
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
	}, logger.Component("auth"))

	orderRepo := postgres.NewOrderRepository(pg.DB)
	orderSvc := service.NewOrderService(orderRepo, publisher, logger.Component("orders"))
	deliverySvc := service.NewDeliveryService(
		orderRepo,
		postgres.NewDeliveryUpdateRepository(pg.DB),
		redisstore.NewDedupChecker(rdb),
		publisher,
		logger.Component("delivery"),
	)

	// --- Background workers ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	dispatcher := queue.NewDispatcher(cfg.Dispatcher.Workers, deliverySvc, logger.Component("dispatcher"))
	dispatcher.Start(workerCtx)

	statsJob := jobs.NewOrderStatsJob(orderSvc, cfg.Jobs.StatsSchedule, log)
	if err := statsJob.Start(); err != nil {
		dispatcher.Stop()
		return err
	}

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Auth:     authSvc,
		Orders:   orderSvc,
		Delivery: deliverySvc,
		Queue:    dispatcher,
		Events:   eventLog,
		Health: map[string]handler.Check{
			"postgres": pg.Ping,
			"mongodb":  mongostore.Ping(mongoDB),
			"redis":    redisstore.Ping(rdb),
		},
		Logger: logger.Component("http"),
	})

	serverErr := make(chan error, 1)
	go func() {
		addr := net.JoinHostPort("", cfg.Port)
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	statsJob.Stop()
	dispatcher.Stop()
	cancelWorkers()

	log.Info().Msg("order api stopped")
	return nil
}

func closeWith(log zerolog.Logger, name string, fn func() error) {
	if err := fn(); err != nil {
		log.Error().Err(err).Str("store", name).Msg("close store")
	}
}
