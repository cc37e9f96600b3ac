// Package admin exposes the role-gated management surface: user and
// role listings plus project maintenance across all tenants. Route
// gating happens in the auth middleware; this service assumes the
// caller already holds the capability.
package admin

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/profitcalc/profitcalc-backend/internal/logger"
	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
	"github.com/profitcalc/profitcalc-backend/internal/projects/repository"
	"github.com/profitcalc/profitcalc-backend/internal/projects/service"
	"github.com/profitcalc/profitcalc-backend/internal/users"
)

type Service struct {
	users    *users.Repo
	projects *repository.ProjectRepository
	costs    *repository.CostRepository
	agg      *service.Aggregator
	cache    service.SummaryCache
	log      *logger.Logger
}

func NewService(userRepo *users.Repo, projectRepo *repository.ProjectRepository, costRepo *repository.CostRepository, agg *service.Aggregator, cache service.SummaryCache, log *logger.Logger) *Service {
	return &Service{
		users:    userRepo,
		projects: projectRepo,
		costs:    costRepo,
		agg:      agg,
		cache:    cache,
		log:      log,
	}
}

// ListUsers returns every registered user with their role.
func (s *Service) ListUsers(ctx context.Context) ([]users.User, error) {
	return s.users.List(ctx)
}

// ChangeUserRole upserts the target user's role.
func (s *Service) ChangeUserRole(ctx context.Context, userID string, role users.Role) error {
	return s.users.SetRole(ctx, userID, role)
}

// ListUserProjects returns every project of the target user.
func (s *Service) ListUserProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.projects.List(ctx, userID)
}

// ListProjectCosts returns the cost line items of any project.
func (s *Service) ListProjectCosts(ctx context.Context, projectID string) ([]domain.CostItem, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.costs.ListByProject(ctx, projectID)
}

// UpdateProjectInput patches project fields; nil leaves a field
// untouched.
type UpdateProjectInput struct {
	Name         *string
	Description  *string
	SellingPrice *decimal.Decimal
}

func (in UpdateProjectInput) validate() error {
	ve := domain.NewValidationError()
	if in.Name != nil && len(strings.TrimSpace(*in.Name)) < 3 {
		ve.Add("name", "name must be at least 3 characters")
	}
	if in.SellingPrice != nil && in.SellingPrice.IsNegative() {
		ve.Add("selling_price", "selling price cannot be negative")
	}
	return ve.ErrOrNil()
}

// UpdateProject patches any project's fields. A selling price change
// runs the aggregator afterwards, same contract as owner mutations:
// a failed recompute is a warning, not a failure.
func (s *Service) UpdateProject(ctx context.Context, projectID string, in UpdateProjectInput) (*domain.Project, []string, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	p, err := s.projects.AdminUpdate(ctx, projectID, in.Name, in.Description, in.SellingPrice)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	if in.SellingPrice != nil {
		if totals, err := s.agg.RecomputeTotals(ctx, projectID); err != nil {
			s.log.Error("totals recompute failed after admin update",
				"project_id", projectID, "error", err)
			warnings = append(warnings, "stored totals could not be recomputed and may be stale")
		} else {
			p.TotalCost = totals.TotalCost
			p.Profit = totals.Profit
		}
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, projectID)
	}
	return p, warnings, nil
}

// DeleteProject removes any project and its cost line items.
func (s *Service) DeleteProject(ctx context.Context, projectID string) error {
	if err := s.projects.DeleteCascade(ctx, projectID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, projectID)
	}
	return nil
}

// DeleteUserProjects removes every project of the target user.
func (s *Service) DeleteUserProjects(ctx context.Context, userID string) (int, error) {
	projects, err := s.projects.List(ctx, userID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, p := range projects {
		if err := s.DeleteProject(ctx, p.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
