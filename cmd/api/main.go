package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/profitcalc/profitcalc-backend/config"
	"github.com/profitcalc/profitcalc-backend/internal/auth"
	"github.com/profitcalc/profitcalc-backend/internal/bootstrap"
	"github.com/profitcalc/profitcalc-backend/internal/db"
	"github.com/profitcalc/profitcalc-backend/internal/logger"
	"github.com/profitcalc/profitcalc-backend/internal/recon"
)

const serviceName = "profitcalc-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.Database)
	if err != nil {
		zl.Fatal("open database", "error", err)
	}
	defer database.Close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	} else {
		zl.Info("REDIS_ADDR not set, summary cache disabled")
	}

	authClient, err := auth.InitializeFirebase(cfg.Auth)
	if err != nil {
		zl.Fatal("init firebase", "error", err)
	}
	if authClient == nil {
		zl.Warn("firebase credentials not configured, trusting X-User-Id header")
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	router, wiring := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		DB:          database.SQL,
		Redis:       redisClient,
		AuthClient:  authClient,
		CacheTTL:    time.Duration(cfg.Redis.SummaryTTLSeconds) * time.Second,
		Log:         zl,
	})

	reconciler := recon.NewReconciler(wiring.ProjectRepo, wiring.Aggregator, zl)
	if err := reconciler.Start(cfg.App.ReconcileSpec); err != nil {
		zl.Fatal("start reconciler", "error", err)
	}
	defer reconciler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zl.Info("listening", "port", cfg.Server.Port, "env", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", "error", err)
	}
}
