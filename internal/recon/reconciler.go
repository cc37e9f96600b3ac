// Package recon restores totals consistency in the background. A
// mutation whose recompute step failed leaves stale totals behind;
// the reconciler sweeps those up on a cron schedule so drift never
// outlives the next run.
package recon

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/profitcalc/profitcalc-backend/internal/logger"
	"github.com/profitcalc/profitcalc-backend/internal/projects/service"
)

// StaleSource lists projects whose stored totals no longer match the
// live aggregate.
type StaleSource interface {
	StaleProjectIDs(ctx context.Context) ([]string, error)
}

type Reconciler struct {
	projects StaleSource
	agg      *service.Aggregator
	log      *logger.Logger
	cron     *cron.Cron
}

func NewReconciler(projects StaleSource, agg *service.Aggregator, log *logger.Logger) *Reconciler {
	return &Reconciler{projects: projects, agg: agg, log: log}
}

// Start schedules the sweep with the given cron spec (six fields,
// seconds first). An empty spec disables the job.
func (r *Reconciler) Start(spec string) error {
	if spec == "" {
		r.log.Info("totals reconciliation disabled")
		return nil
	}

	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		fixed, err := r.RunOnce(ctx)
		if err != nil {
			r.log.Error("totals reconciliation failed", "error", err)
			return
		}
		if fixed > 0 {
			r.log.Info("totals reconciliation repaired projects", "count", fixed)
		}
	})
	if err != nil {
		return err
	}

	r.cron = c
	c.Start()
	r.log.Info("totals reconciliation scheduled", "spec", spec)
	return nil
}

func (r *Reconciler) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

// RunOnce sweeps every stale project through the aggregator and
// returns how many it repaired. A single failed recompute does not
// stop the sweep.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	ids, err := r.projects.StaleProjectIDs(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, id := range ids {
		if _, err := r.agg.RecomputeTotals(ctx, id); err != nil {
			r.log.Warn("reconcile recompute failed", "project_id", id, "error", err)
			continue
		}
		fixed++
	}
	return fixed, nil
}
