package recon

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitcalc/profitcalc-backend/internal/logger"
	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
	"github.com/profitcalc/profitcalc-backend/internal/projects/service"
)

type fakeTotals struct {
	stale    []string
	listErr  error
	failFor  map[string]error
	repaired []string
}

func (f *fakeTotals) StaleProjectIDs(_ context.Context) ([]string, error) {
	return f.stale, f.listErr
}

func (f *fakeTotals) RecomputeTotals(_ context.Context, projectID string) (*domain.Totals, error) {
	if err, ok := f.failFor[projectID]; ok {
		return nil, err
	}
	f.repaired = append(f.repaired, projectID)
	return &domain.Totals{TotalCost: decimal.NewFromInt(10), Profit: decimal.NewFromInt(5)}, nil
}

func newTestReconciler(f *fakeTotals) *Reconciler {
	return NewReconciler(f, service.NewAggregator(f), logger.NewNop())
}

func TestRunOnce_RepairsAllStaleProjects(t *testing.T) {
	f := &fakeTotals{stale: []string{"p1", "p2", "p3"}}
	r := newTestReconciler(f)

	fixed, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, fixed)
	assert.Equal(t, []string{"p1", "p2", "p3"}, f.repaired)
}

func TestRunOnce_NothingStale(t *testing.T) {
	f := &fakeTotals{}
	r := newTestReconciler(f)

	fixed, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, fixed)
}

func TestRunOnce_ContinuesPastFailures(t *testing.T) {
	f := &fakeTotals{
		stale: []string{"p1", "p2", "p3"},
		failFor: map[string]error{
			"p2": errors.New("connection reset"),
		},
	}
	r := newTestReconciler(f)

	fixed, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fixed)
	assert.Equal(t, []string{"p1", "p3"}, f.repaired)
}

func TestRunOnce_ListFailureAborts(t *testing.T) {
	f := &fakeTotals{listErr: errors.New("db down")}
	r := newTestReconciler(f)

	_, err := r.RunOnce(context.Background())
	require.Error(t, err)
	assert.Empty(t, f.repaired)
}

func TestStart_EmptySpecDisables(t *testing.T) {
	r := newTestReconciler(&fakeTotals{})
	require.NoError(t, r.Start(""))
	r.Stop()
}

func TestStart_RejectsMalformedSpec(t *testing.T) {
	r := newTestReconciler(&fakeTotals{})
	assert.Error(t, r.Start("not a cron spec"))
}
