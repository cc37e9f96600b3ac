package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitcalc/profitcalc-backend/internal/logger"
	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
)

// fakeStore backs ProjectStore, CostStore and TotalsStore with maps,
// mirroring the repository's semantics closely enough for the façade's
// ordering and warning behaviour to be observable.
type fakeStore struct {
	projects map[string]*domain.Project
	costs    map[string][]domain.CostItem

	recomputeErr   error
	recomputeCalls []string
	writes         int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[string]*domain.Project),
		costs:    make(map[string][]domain.CostItem),
	}
}

func (f *fakeStore) seedProject(userID string, sellingPrice string) *domain.Project {
	p := &domain.Project{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     "Garden bench",
		Quantity: 1,
	}
	if sellingPrice != "" {
		p.SellingPrice = decimal.NewNullDecimal(decimal.RequireFromString(sellingPrice))
	}
	f.projects[p.ID] = p
	return p
}

func (f *fakeStore) Create(_ context.Context, userID string, in domain.CreateProjectInput) (*domain.Project, error) {
	f.writes++
	p := &domain.Project{ID: uuid.NewString(), UserID: userID, Name: in.Name, Description: in.Description, Quantity: 1}
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeStore) List(_ context.Context, userID string) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range f.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetOwned(_ context.Context, userID, projectID string) (*domain.Project, error) {
	p, ok := f.projects[projectID]
	if !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) Rename(_ context.Context, userID, projectID, newName string, description *string) (*domain.Project, error) {
	p, err := f.GetOwned(context.Background(), userID, projectID)
	if err != nil {
		return nil, err
	}
	f.writes++
	f.projects[projectID].Name = newName
	f.projects[projectID].Description = description
	p.Name, p.Description = newName, description
	return p, nil
}

func (f *fakeStore) SetFavorite(_ context.Context, userID, projectID string, favorite bool) error {
	if _, err := f.GetOwned(context.Background(), userID, projectID); err != nil {
		return err
	}
	f.writes++
	f.projects[projectID].IsFavorite = favorite
	return nil
}

func (f *fakeStore) UpdateSellingPrice(_ context.Context, userID, projectID string, price decimal.Decimal) error {
	if _, err := f.GetOwned(context.Background(), userID, projectID); err != nil {
		return err
	}
	f.writes++
	f.projects[projectID].SellingPrice = decimal.NewNullDecimal(price)
	return nil
}

func (f *fakeStore) UpdateQuantity(_ context.Context, userID, projectID string, quantity int) error {
	if _, err := f.GetOwned(context.Background(), userID, projectID); err != nil {
		return err
	}
	f.writes++
	f.projects[projectID].Quantity = quantity
	return nil
}

func (f *fakeStore) DeleteCascade(_ context.Context, projectID string) error {
	if _, ok := f.projects[projectID]; !ok {
		return domain.ErrNotFound
	}
	f.writes++
	delete(f.costs, projectID)
	delete(f.projects, projectID)
	return nil
}

func (f *fakeStore) ListByProject(_ context.Context, projectID string) ([]domain.CostItem, error) {
	return f.costs[projectID], nil
}

func (f *fakeStore) Insert(_ context.Context, projectID, userID string, in domain.CostInput) (*domain.CostItem, error) {
	if _, ok := f.projects[projectID]; !ok {
		return nil, domain.ErrNotFound
	}
	f.writes++
	c := domain.CostItem{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    userID,
		Name:      in.Name,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Category:  in.Category,
	}
	f.costs[projectID] = append(f.costs[projectID], c)
	return &c, nil
}

func (f *fakeStore) Update(_ context.Context, projectID, costID string, in domain.CostInput) (*domain.CostItem, error) {
	for i, c := range f.costs[projectID] {
		if c.ID == costID {
			f.writes++
			c.Name, c.Quantity, c.UnitPrice, c.Category = in.Name, in.Quantity, in.UnitPrice, in.Category
			f.costs[projectID][i] = c
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, projectID, costID string) error {
	for i, c := range f.costs[projectID] {
		if c.ID == costID {
			f.writes++
			f.costs[projectID] = append(f.costs[projectID][:i], f.costs[projectID][i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// RecomputeTotals mirrors the single-statement recompute: it rewrites
// both derived fields from the live cost rows.
func (f *fakeStore) RecomputeTotals(_ context.Context, projectID string) (*domain.Totals, error) {
	f.recomputeCalls = append(f.recomputeCalls, projectID)
	if f.recomputeErr != nil {
		return nil, f.recomputeErr
	}
	p, ok := f.projects[projectID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	t := domain.ComputeTotals(f.costs[projectID], p.SellingPrice)
	p.TotalCost, p.Profit = t.TotalCost, t.Profit
	return &t, nil
}

// memCache is an always-working in-process SummaryCache.
type memCache struct {
	entries     map[string]*domain.ProjectWithCosts
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*domain.ProjectWithCosts)}
}

func (m *memCache) Get(_ context.Context, projectID string) (*domain.ProjectWithCosts, bool) {
	p, ok := m.entries[projectID]
	return p, ok
}

func (m *memCache) Set(_ context.Context, p *domain.ProjectWithCosts) {
	m.entries[p.ID] = p
}

func (m *memCache) Invalidate(_ context.Context, projectID string) {
	m.invalidated = append(m.invalidated, projectID)
	delete(m.entries, projectID)
}

func newTestService(store *fakeStore, cache SummaryCache) *ProjectService {
	return NewProjectService(store, store, NewAggregator(store), cache, logger.NewNop())
}

func costIn(name, qty, price string, cat domain.Category) domain.CostInput {
	return domain.CostInput{
		Name:      name,
		Quantity:  decimal.RequireFromString(qty),
		UnitPrice: decimal.RequireFromString(price),
		Category:  cat,
	}
}

func TestCreateCost_RecomputesTotals(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	p := store.seedProject("u1", "100")

	_, out, err := svc.CreateCost(ctx, "u1", p.ID, costIn("Boards", "3", "10", domain.CategoryMaterials))
	require.NoError(t, err)
	require.NotNil(t, out.Totals)
	assert.Empty(t, out.Warnings)
	assert.True(t, out.Totals.TotalCost.Equal(decimal.NewFromInt(30)))
	assert.True(t, out.Totals.Profit.Equal(decimal.NewFromInt(70)))

	_, out, err = svc.CreateCost(ctx, "u1", p.ID, costIn("Screws", "1", "20", domain.CategoryMaterials))
	require.NoError(t, err)
	assert.True(t, out.Totals.TotalCost.Equal(decimal.NewFromInt(50)))
	assert.True(t, out.Totals.Profit.Equal(decimal.NewFromInt(50)))

	assert.True(t, store.projects[p.ID].TotalCost.Equal(decimal.NewFromInt(50)))
}

func TestDeleteCost_RecomputesTotals(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	p := store.seedProject("u1", "100")
	c, _, err := svc.CreateCost(ctx, "u1", p.ID, costIn("Boards", "3", "10", domain.CategoryMaterials))
	require.NoError(t, err)

	out, err := svc.DeleteCost(ctx, "u1", p.ID, c.ID)
	require.NoError(t, err)
	require.NotNil(t, out.Totals)
	assert.True(t, out.Totals.TotalCost.IsZero())
	assert.True(t, out.Totals.Profit.Equal(decimal.NewFromInt(100)))
}

func TestSetSellingPrice_RefreshesProfit(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	p := store.seedProject("u1", "")
	_, _, err := svc.CreateCost(ctx, "u1", p.ID, costIn("Boards", "5", "10", domain.CategoryMaterials))
	require.NoError(t, err)

	out, err := svc.SetSellingPrice(ctx, "u1", p.ID, decimal.NewFromInt(80))
	require.NoError(t, err)
	require.NotNil(t, out.Totals)
	assert.True(t, out.Totals.Profit.Equal(decimal.NewFromInt(30)))
}

func TestValidationShortCircuits(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	p := store.seedProject("u1", "100")

	t.Run("negative unit price never reaches the store", func(t *testing.T) {
		before := store.writes
		_, _, err := svc.CreateCost(ctx, "u1", p.ID, costIn("Boards", "1", "-5", domain.CategoryMaterials))
		ve, ok := domain.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "unit_price")
		assert.Equal(t, before, store.writes)
		assert.Empty(t, store.recomputeCalls)
	})

	t.Run("quantity below the floor leaves state unchanged", func(t *testing.T) {
		before := store.writes
		_, err := svc.SetQuantity(ctx, "u1", p.ID, 0)
		ve, ok := domain.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "quantity")
		assert.Equal(t, before, store.writes)
		assert.Equal(t, 1, store.projects[p.ID].Quantity)
	})

	t.Run("negative selling price rejected", func(t *testing.T) {
		_, err := svc.SetSellingPrice(ctx, "u1", p.ID, decimal.NewFromInt(-1))
		ve, ok := domain.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "selling_price")
	})

	t.Run("short project name rejected", func(t *testing.T) {
		_, err := svc.CreateProject(ctx, "u1", domain.CreateProjectInput{Name: "ab"})
		ve, ok := domain.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "name")
	})
}

func TestFailedRecomputeSurfacesAsWarning(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	p := store.seedProject("u1", "100")
	store.recomputeErr = fmt.Errorf("connection reset")

	c, out, err := svc.CreateCost(ctx, "u1", p.ID, costIn("Boards", "3", "10", domain.CategoryMaterials))
	require.NoError(t, err, "the write itself succeeded, so the mutation must not fail")
	require.NotNil(t, c)
	assert.Nil(t, out.Totals)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "stale")

	// The cost row is in place; only the derived pair lags behind.
	require.Len(t, store.costs[p.ID], 1)
	assert.True(t, store.projects[p.ID].TotalCost.IsZero())

	// The next successful mutation heals the drift.
	store.recomputeErr = nil
	out, err = svc.SetQuantity(ctx, "u1", p.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, out.Totals)
	assert.True(t, out.Totals.TotalCost.Equal(decimal.NewFromInt(30)))
}

func TestOwnershipGates(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	p := store.seedProject("u1", "100")

	_, _, err := svc.CreateCost(ctx, "intruder", p.ID, costIn("Boards", "1", "1", domain.CategoryOther))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.DeleteProject(ctx, "intruder", p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, store.projects, p.ID)

	_, err = svc.GetProject(ctx, "intruder", p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteProject_CascadesAndInvalidates(t *testing.T) {
	store := newFakeStore()
	cache := newMemCache()
	svc := newTestService(store, cache)
	ctx := context.Background()

	p := store.seedProject("u1", "100")
	_, _, err := svc.CreateCost(ctx, "u1", p.ID, costIn("Boards", "3", "10", domain.CategoryMaterials))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProject(ctx, "u1", p.ID))
	assert.NotContains(t, store.projects, p.ID)
	assert.Empty(t, store.costs[p.ID])
	assert.Contains(t, cache.invalidated, p.ID)
}

func TestGetProject_CacheRoundTrip(t *testing.T) {
	store := newFakeStore()
	cache := newMemCache()
	svc := newTestService(store, cache)
	ctx := context.Background()

	p := store.seedProject("u1", "100")

	first, err := svc.GetProject(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.Contains(t, cache.entries, p.ID)

	// Second read comes from the cache; mutate the store to prove it.
	store.projects[p.ID].Name = "changed underneath"
	second, err := svc.GetProject(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)

	// A cached entry never leaks across owners.
	_, err = svc.GetProject(ctx, "stranger", p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMutationsInvalidateCache(t *testing.T) {
	store := newFakeStore()
	cache := newMemCache()
	svc := newTestService(store, cache)
	ctx := context.Background()

	p := store.seedProject("u1", "100")
	_, err := svc.GetProject(ctx, "u1", p.ID)
	require.NoError(t, err)

	_, _, err = svc.CreateCost(ctx, "u1", p.ID, costIn("Boards", "3", "10", domain.CategoryMaterials))
	require.NoError(t, err)
	assert.NotContains(t, cache.entries, p.ID)

	fresh, err := svc.GetProject(ctx, "u1", p.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Costs, 1)
	assert.True(t, fresh.TotalCost.Equal(decimal.NewFromInt(30)))
}

func TestAggregator_WrapsUnexpectedErrors(t *testing.T) {
	store := newFakeStore()
	agg := NewAggregator(store)
	ctx := context.Background()

	p := store.seedProject("u1", "100")

	t.Run("idempotent with no intervening mutation", func(t *testing.T) {
		first, err := agg.RecomputeTotals(ctx, p.ID)
		require.NoError(t, err)
		second, err := agg.RecomputeTotals(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, first.TotalCost.Equal(second.TotalCost))
		assert.True(t, first.Profit.Equal(second.Profit))
	})

	t.Run("not found passes through unwrapped", func(t *testing.T) {
		_, err := agg.RecomputeTotals(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("storage errors carry the project id", func(t *testing.T) {
		store.recomputeErr = errors.New("boom")
		defer func() { store.recomputeErr = nil }()
		_, err := agg.RecomputeTotals(ctx, p.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), p.ID)
	})
}
