package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wayfare/backend/internal/api"
	"github.com/wayfare/backend/internal/audit"
	"github.com/wayfare/backend/internal/config"
	"github.com/wayfare/backend/internal/logger"
	"github.com/wayfare/backend/internal/rideshare"
	"github.com/wayfare/backend/internal/snapshot"
	"github.com/wayfare/backend/internal/store"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, os.Stdout)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── PostgreSQL ────────────────────────────────────────────
	var tables store.Tables
	if cfg.PostgresDSN != "" {
		pool, err := store.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connect", err)
			os.Exit(1)
		}
		defer pool.Close()
		pgStore := store.NewPostgresStore(pool)
		if err := pgStore.Migrate(ctx); err != nil {
			log.Error("postgres migrate", err)
			os.Exit(1)
		}
		tables = pgStore.Tables()
		log.Info("using postgres store")
	} else {
		tables = store.NewMemoryStore().Tables()
		log.Warn("POSTGRES_DSN not set, using in-memory store")
	}

	// ── Redis ────────────────────────────────────────────────
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Error("redis connect", err)
			os.Exit(1)
		}
		defer rdb.Close()
		tables = tables.WithCache(rdb, cfg.CacheTTL)
	}

	// ── MongoDB ──────────────────────────────────────────────
	var (
		sinks      []audit.Recorder
		auditStore *store.AuditStore
	)
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Error("mongo connect", err)
			os.Exit(1)
		}
		defer mongoClient.Disconnect(context.Background())
		auditStore = store.NewAuditStore(mongoClient.Database(cfg.MongoDB))
		if err := auditStore.EnsureIndexes(ctx); err != nil {
			log.Warn("mongo audit index", "error", err.Error())
		}
		sinks = append(sinks, auditStore)
	}

	// ── RabbitMQ ─────────────────────────────────────────────
	if cfg.RabbitMQURL != "" {
		pub, err := audit.NewPublisher(ctx, cfg.RabbitMQURL, cfg.RabbitExchange, log)
		if err != nil {
			log.Error("rabbitmq connect", err)
			os.Exit(1)
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}

	recorder := audit.Multi(log, sinks...)
	services := rideshare.New(tables, recorder)

	deps := api.Deps{
		Services:    services,
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
	}
	if auditStore != nil {
		deps.Audit = auditStore
	}

	// ── MinIO ────────────────────────────────────────────────
	if cfg.MinioEndpoint != "" {
		snapshots, err := store.NewSnapshotStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			log.Error("minio connect", err)
			os.Exit(1)
		}
		deps.Snapshots = snapshot.NewService(services, snapshots)
	}

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.Info("listening", "port", cfg.Port, "audit_sinks", recorder.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error("shutdown", err)
	}
}
