package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/turnoshq/turnos-api/internal/api"
	"github.com/turnoshq/turnos-api/internal/appointment"
	"github.com/turnoshq/turnos-api/internal/auth"
	"github.com/turnoshq/turnos-api/internal/config"
	"github.com/turnoshq/turnos-api/internal/db"
	"github.com/turnoshq/turnos-api/internal/lock"
	"github.com/turnoshq/turnos-api/internal/logger"
	"github.com/turnoshq/turnos-api/internal/metrics"
	"github.com/turnoshq/turnos-api/internal/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("version", cfg.Version),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbCtx, cancelDB := context.WithTimeout(rootCtx, 10*time.Second)
	database, dialect, err := db.Open(dbCtx, cfg.DatabaseURL)
	cancelDB()
	if err != nil {
		zlog.Fatal("database connection error", zap.Error(err))
	}
	defer database.Close()
	zlog.Info("connected to database", zap.String("dialect", string(dialect)))

	migrateCtx, cancelMigrate := context.WithTimeout(rootCtx, 10*time.Second)
	err = db.Migrate(migrateCtx, database, dialect)
	cancelMigrate()
	if err != nil {
		zlog.Fatal("migration error", zap.Error(err))
	}

	routerCfg := api.RouterConfig{
		DB:      database,
		Limiter: ratelimit.NewLimiter(cfg.RateLimitWindow, cfg.RateLimitMax),
		Logger:  zlog,
		Env:     cfg.Env,
		Version: cfg.Version,
	}

	// Without Redis the in-process guard serializes bookings, which is
	// strict as long as one instance owns the database.
	var guard lock.DayLocker = lock.NewLocalDayLocker()
	if cfg.RedisAddr != "" {
		rdb, err := lock.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			zlog.Fatal("redis connection error", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				zlog.Warn("error closing redis", zap.Error(err))
			}
		}()
		guard = lock.NewRedisDayLocker(rdb, cfg.LockTTL)
		routerCfg.Redis = rdb
		zlog.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	if cfg.RequireAuth {
		routerCfg.Verifier = auth.NewVerifier(cfg.JWTSecret)
	}
	if cfg.MetricsEnabled {
		routerCfg.Metrics = metrics.New("turnos-api")
	}

	repo := appointment.NewSQLRepository(database, dialect)
	routerCfg.Service = appointment.NewService(repo, guard, zlog)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(routerCfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		zlog.Info("shutting down api-server")
	case err := <-errCh:
		zlog.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown error", zap.Error(err))
	}
}
