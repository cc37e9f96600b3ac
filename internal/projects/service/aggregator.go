package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
)

// TotalsStore is the slice of the project repository the aggregator
// consumes.
type TotalsStore interface {
	RecomputeTotals(ctx context.Context, projectID string) (*domain.Totals, error)
}

// Aggregator recomputes and persists a project's derived financial
// fields. The store performs the aggregate and the write in a single
// atomic statement, so either both fields are rewritten or neither.
// The aggregator never retries; callers decide how to report failure.
type Aggregator struct {
	projects TotalsStore
}

func NewAggregator(projects TotalsStore) *Aggregator {
	return &Aggregator{projects: projects}
}

// RecomputeTotals re-derives total_cost and profit for the project
// from its current cost rows and selling price. Idempotent: running
// it twice with no intervening mutation writes identical values.
func (a *Aggregator) RecomputeTotals(ctx context.Context, projectID string) (*domain.Totals, error) {
	totals, err := a.projects.RecomputeTotals(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("recompute totals for project %s: %w", projectID, err)
	}
	return totals, nil
}
