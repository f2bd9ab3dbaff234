package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/financial-statements-engine/internal/api"
	cachememory "github.com/sheikh-saqib/financial-statements-engine/internal/cache/memory"
	cacheredis "github.com/sheikh-saqib/financial-statements-engine/internal/cache/redis"
	"github.com/sheikh-saqib/financial-statements-engine/internal/config"
	"github.com/sheikh-saqib/financial-statements-engine/internal/events/kafka"
	"github.com/sheikh-saqib/financial-statements-engine/internal/ledger"
	"github.com/sheikh-saqib/financial-statements-engine/internal/logger"
	"github.com/sheikh-saqib/financial-statements-engine/internal/statement"
	"github.com/sheikh-saqib/financial-statements-engine/internal/storage/file"
	"github.com/sheikh-saqib/financial-statements-engine/internal/storage/memory"
	"github.com/sheikh-saqib/financial-statements-engine/internal/storage/postgres"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := openStores(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStores()

	engine := &statement.Engine{
		BudgetOrigin:      cfg.Engine.BudgetOrigin,
		NormalizeFallback: cfg.Engine.NormalizeFallback,
	}
	opts := []ledger.Option{ledger.WithLogger(log)}

	switch cfg.Cache.Driver {
	case "memory":
		opts = append(opts, ledger.WithCache(cachememory.New(), cfg.Cache.TTL))
	case "redis":
		rc := cacheredis.NewCache(cfg.Cache.RedisAddrs, cfg.Cache.RedisPassword, cfg.Cache.RedisCluster)
		if err := rc.Ping(ctx); err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rc.Close()
		opts = append(opts, ledger.WithCache(rc, cfg.Cache.TTL))
	}
	log.Info("report cache configured",
		zap.String("driver", cfg.Cache.Driver),
		zap.Duration("ttl", cfg.Cache.TTL))

	var publisher *kafka.Publisher
	if cfg.Kafka.Enabled() {
		publisher = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.InvalidationTopic)
		defer publisher.Close()
		opts = append(opts, ledger.WithPublisher(publisher))
	}

	svc := ledger.NewLedger(stores, engine, opts...)

	if cfg.Kafka.Enabled() {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.InvalidationTopic, cfg.Kafka.GroupID, svc, log)
		defer consumer.Close()
		go func() {
			log.Info("invalidation consumer started",
				zap.Strings("brokers", cfg.Kafka.Brokers),
				zap.String("topic", cfg.Kafka.InvalidationTopic))
			if err := consumer.Run(ctx); err != nil {
				log.Error("invalidation consumer stopped", zap.Error(err))
			}
		}()
	}

	r := api.SetupRoutes(api.NewHandler(svc, log), log, cfg.HTTP.RequestTimeout)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func openStores(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (ledger.Stores, func(), error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return ledger.Stores{}, nil, err
		}
		store := postgres.NewPostgresStore(db)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return ledger.Stores{}, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("connected to database")
		return ledger.Stores{Entries: store, Structures: store, Mappings: store}, func() { db.Close() }, nil

	default:
		if cfg.Fixture != "" {
			store, err := file.Open(cfg.Fixture)
			if err != nil {
				return ledger.Stores{}, nil, err
			}
			log.Info("memory store seeded from fixture",
				zap.String("fixture", cfg.Fixture),
				zap.String("scope", store.Scope))
			return ledger.Stores{Entries: store, Structures: store, Mappings: store}, func() {}, nil
		}
		store := memory.NewMemoryStore()
		return ledger.Stores{Entries: store, Structures: store, Mappings: store}, func() {}, nil
	}
}
