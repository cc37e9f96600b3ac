package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/profitcalc/profitcalc-backend/internal/logger"
	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
)

// ProjectStore is the slice of the project repository the service
// consumes.
type ProjectStore interface {
	Create(ctx context.Context, userID string, in domain.CreateProjectInput) (*domain.Project, error)
	List(ctx context.Context, userID string) ([]domain.Project, error)
	GetOwned(ctx context.Context, userID, projectID string) (*domain.Project, error)
	Rename(ctx context.Context, userID, projectID, newName string, description *string) (*domain.Project, error)
	SetFavorite(ctx context.Context, userID, projectID string, favorite bool) error
	UpdateSellingPrice(ctx context.Context, userID, projectID string, price decimal.Decimal) error
	UpdateQuantity(ctx context.Context, userID, projectID string, quantity int) error
	DeleteCascade(ctx context.Context, projectID string) error
}

// CostStore is the slice of the cost repository the service consumes.
type CostStore interface {
	ListByProject(ctx context.Context, projectID string) ([]domain.CostItem, error)
	Insert(ctx context.Context, projectID, userID string, in domain.CostInput) (*domain.CostItem, error)
	Update(ctx context.Context, projectID, costID string, in domain.CostInput) (*domain.CostItem, error)
	Delete(ctx context.Context, projectID, costID string) error
}

// SummaryCache invalidates and serves cached project detail views.
// Implementations must treat every failure as a miss.
type SummaryCache interface {
	Get(ctx context.Context, projectID string) (*domain.ProjectWithCosts, bool)
	Set(ctx context.Context, p *domain.ProjectWithCosts)
	Invalidate(ctx context.Context, projectID string)
}

// ProjectService is the mutation façade over projects and their cost
// line items. Every mutation follows the same two-phase pattern:
// write, then recompute totals. A failed recompute is logged and
// surfaced as a warning but does not undo the write nor change the
// reported outcome of the mutation.
type ProjectService struct {
	projects ProjectStore
	costs    CostStore
	agg      *Aggregator
	cache    SummaryCache
	log      *logger.Logger
}

func NewProjectService(projects ProjectStore, costs CostStore, agg *Aggregator, cache SummaryCache, log *logger.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		costs:    costs,
		agg:      agg,
		cache:    cache,
		log:      log,
	}
}

// MutationOutcome reports the side effects of a successful mutation:
// the fresh totals when the recompute succeeded, or a warning when it
// did not.
type MutationOutcome struct {
	Totals   *domain.Totals `json:"totals,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// finishMutation runs phase two: recompute totals and drop the cached
// view. Called only after the triggering write succeeded.
func (s *ProjectService) finishMutation(ctx context.Context, projectID string) MutationOutcome {
	var out MutationOutcome

	totals, err := s.agg.RecomputeTotals(ctx, projectID)
	if err != nil {
		s.log.Error("totals recompute failed after mutation",
			"project_id", projectID, "error", err)
		out.Warnings = append(out.Warnings,
			"stored totals could not be recomputed and may be stale")
	} else {
		out.Totals = totals
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, projectID)
	}
	return out
}

// CreateProject creates an empty project; totals start at zero.
func (s *ProjectService) CreateProject(ctx context.Context, userID string, in domain.CreateProjectInput) (*domain.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.projects.Create(ctx, userID, in)
}

// ListProjects returns the caller's projects.
func (s *ProjectService) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.projects.List(ctx, userID)
}

// GetProject returns a project with its cost line items, serving from
// the summary cache when possible.
func (s *ProjectService) GetProject(ctx context.Context, userID, projectID string) (*domain.ProjectWithCosts, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, projectID); ok {
			if cached.UserID != userID {
				return nil, domain.ErrNotFound
			}
			return cached, nil
		}
	}

	p, err := s.projects.GetOwned(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	costs, err := s.costs.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	pwc := &domain.ProjectWithCosts{Project: *p, Costs: costs}
	if s.cache != nil {
		s.cache.Set(ctx, pwc)
	}
	return pwc, nil
}

// RenameProject updates a project's name and description.
func (s *ProjectService) RenameProject(ctx context.Context, userID, projectID string, in domain.CreateProjectInput) (*domain.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.projects.Rename(ctx, userID, projectID, in.Name, in.Description)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, projectID)
	}
	return p, nil
}

// SetFavorite toggles the favorite flag.
func (s *ProjectService) SetFavorite(ctx context.Context, userID, projectID string, favorite bool) error {
	if err := s.projects.SetFavorite(ctx, userID, projectID, favorite); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, projectID)
	}
	return nil
}

// DeleteProject removes a project and all its cost line items.
func (s *ProjectService) DeleteProject(ctx context.Context, userID, projectID string) error {
	// Ownership gate; admins go through the admin service instead.
	if _, err := s.projects.GetOwned(ctx, userID, projectID); err != nil {
		return err
	}
	if err := s.projects.DeleteCascade(ctx, projectID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, projectID)
	}
	return nil
}

// CreateCost adds a cost line item and recomputes the totals.
func (s *ProjectService) CreateCost(ctx context.Context, userID, projectID string, in domain.CostInput) (*domain.CostItem, MutationOutcome, error) {
	if err := in.Validate(); err != nil {
		return nil, MutationOutcome{}, err
	}
	if _, err := s.projects.GetOwned(ctx, userID, projectID); err != nil {
		return nil, MutationOutcome{}, err
	}

	cost, err := s.costs.Insert(ctx, projectID, userID, in)
	if err != nil {
		return nil, MutationOutcome{}, err
	}
	return cost, s.finishMutation(ctx, projectID), nil
}

// UpdateCost overwrites a cost line item and recomputes the totals.
func (s *ProjectService) UpdateCost(ctx context.Context, userID, projectID, costID string, in domain.CostInput) (*domain.CostItem, MutationOutcome, error) {
	if err := in.Validate(); err != nil {
		return nil, MutationOutcome{}, err
	}
	if _, err := s.projects.GetOwned(ctx, userID, projectID); err != nil {
		return nil, MutationOutcome{}, err
	}

	cost, err := s.costs.Update(ctx, projectID, costID, in)
	if err != nil {
		return nil, MutationOutcome{}, err
	}
	return cost, s.finishMutation(ctx, projectID), nil
}

// DeleteCost removes a cost line item and recomputes the totals.
func (s *ProjectService) DeleteCost(ctx context.Context, userID, projectID, costID string) (MutationOutcome, error) {
	if _, err := s.projects.GetOwned(ctx, userID, projectID); err != nil {
		return MutationOutcome{}, err
	}
	if err := s.costs.Delete(ctx, projectID, costID); err != nil {
		return MutationOutcome{}, err
	}
	return s.finishMutation(ctx, projectID), nil
}

// SetSellingPrice updates the selling price and recomputes the totals.
func (s *ProjectService) SetSellingPrice(ctx context.Context, userID, projectID string, price decimal.Decimal) (MutationOutcome, error) {
	if err := domain.ValidateSellingPrice(price); err != nil {
		return MutationOutcome{}, err
	}
	if err := s.projects.UpdateSellingPrice(ctx, userID, projectID, price); err != nil {
		return MutationOutcome{}, err
	}
	return s.finishMutation(ctx, projectID), nil
}

// SetQuantity updates the number of sellable units. Totals do not
// depend on it, but the recompute keeps the mutation path uniform and
// heals any drift left by an earlier failed recompute.
func (s *ProjectService) SetQuantity(ctx context.Context, userID, projectID string, quantity int) (MutationOutcome, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return MutationOutcome{}, err
	}
	if err := s.projects.UpdateQuantity(ctx, userID, projectID, quantity); err != nil {
		return MutationOutcome{}, err
	}
	return s.finishMutation(ctx, projectID), nil
}
