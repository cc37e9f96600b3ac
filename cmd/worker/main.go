// The worker runs maintenance commands outside the API process.
// Currently the only command is "reconcile", a one-shot sweep that
// recomputes totals for every project whose stored values drifted.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/profitcalc/profitcalc-backend/config"
	"github.com/profitcalc/profitcalc-backend/internal/db"
	"github.com/profitcalc/profitcalc-backend/internal/logger"
	"github.com/profitcalc/profitcalc-backend/internal/projects/repository"
	"github.com/profitcalc/profitcalc-backend/internal/projects/service"
	"github.com/profitcalc/profitcalc-backend/internal/recon"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker reconcile")
	}

	switch os.Args[1] {
	case "reconcile":
		runReconcile()
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runReconcile() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	database, err := db.Open(ctx, cfg.Database)
	if err != nil {
		zl.Fatal("open database", "error", err)
	}
	defer database.Close()

	projectRepo := repository.NewProjectRepository(database.SQL)
	agg := service.NewAggregator(projectRepo)

	fixed, err := recon.NewReconciler(projectRepo, agg, zl).RunOnce(ctx)
	if err != nil {
		zl.Fatal("reconcile", "error", err)
	}
	zl.Info("reconcile complete", "repaired", fixed)
}
