package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
)

// ProjectRepository provides persistence operations for projects.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectCols = `id::text, user_id::text, name, description, selling_price, quantity, total_cost, profit, is_favorite, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description,
		&p.SellingPrice, &p.Quantity, &p.TotalCost, &p.Profit,
		&p.IsFavorite, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a new project for the given user. Totals start at
// zero; the aggregator owns them from here on.
func (r *ProjectRepository) Create(ctx context.Context, userID string, in domain.CreateProjectInput) (*domain.Project, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}

	const q = `
INSERT INTO projects (user_id, name, description)
VALUES ($1::uuid, $2, $3)
RETURNING ` + projectCols + `;
`
	return scanProject(r.db.QueryRowContext(ctx, q, userID, in.Name, in.Description))
}

// List returns all projects for the given user, newest first.
func (r *ProjectRepository) List(ctx context.Context, userID string) ([]domain.Project, error) {
	const q = `
SELECT ` + projectCols + `
FROM projects
WHERE user_id = $1::uuid
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetOwned fetches a project scoped to its owner.
func (r *ProjectRepository) GetOwned(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	const q = `
SELECT ` + projectCols + `
FROM projects
WHERE user_id = $1::uuid AND id = $2::uuid;
`
	return scanProject(r.db.QueryRowContext(ctx, q, userID, projectID))
}

// Get fetches a project with no ownership scoping. Admin use only.
func (r *ProjectRepository) Get(ctx context.Context, projectID string) (*domain.Project, error) {
	const q = `
SELECT ` + projectCols + `
FROM projects
WHERE id = $1::uuid;
`
	return scanProject(r.db.QueryRowContext(ctx, q, projectID))
}

// Rename updates the project's name and description.
func (r *ProjectRepository) Rename(ctx context.Context, userID, projectID, newName string, description *string) (*domain.Project, error) {
	const q = `
UPDATE projects
SET name = $3, description = $4, updated_at = now()
WHERE user_id = $1::uuid AND id = $2::uuid
RETURNING ` + projectCols + `;
`
	return scanProject(r.db.QueryRowContext(ctx, q, userID, projectID, newName, description))
}

// SetFavorite toggles the favorite flag.
func (r *ProjectRepository) SetFavorite(ctx context.Context, userID, projectID string, favorite bool) error {
	const q = `
UPDATE projects
SET is_favorite = $3, updated_at = now()
WHERE user_id = $1::uuid AND id = $2::uuid;
`
	res, err := r.db.ExecContext(ctx, q, userID, projectID, favorite)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateSellingPrice writes the selling price only. Totals are stale
// until the aggregator's next run.
func (r *ProjectRepository) UpdateSellingPrice(ctx context.Context, userID, projectID string, price decimal.Decimal) error {
	const q = `
UPDATE projects
SET selling_price = $3, updated_at = now()
WHERE user_id = $1::uuid AND id = $2::uuid;
`
	res, err := r.db.ExecContext(ctx, q, userID, projectID, price)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateQuantity writes the unit count only.
func (r *ProjectRepository) UpdateQuantity(ctx context.Context, userID, projectID string, quantity int) error {
	const q = `
UPDATE projects
SET quantity = $3, updated_at = now()
WHERE user_id = $1::uuid AND id = $2::uuid;
`
	res, err := r.db.ExecContext(ctx, q, userID, projectID, quantity)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// RecomputeTotals rewrites total_cost and profit from the live cost
// rows in a single statement. The database-side aggregate makes the
// read and the write atomic, so concurrent mutations can never leave
// a partially written pair and the last writer always reflects the
// full cost set.
func (r *ProjectRepository) RecomputeTotals(ctx context.Context, projectID string) (*domain.Totals, error) {
	const q = `
UPDATE projects p
SET total_cost = c.total,
    profit     = COALESCE(p.selling_price, 0) - c.total,
    updated_at = now()
FROM (
    SELECT COALESCE(SUM(quantity * unit_price), 0) AS total
    FROM project_costs
    WHERE project_id = $1::uuid
) c
WHERE p.id = $1::uuid
RETURNING p.total_cost, p.profit;
`
	var t domain.Totals
	err := r.db.QueryRowContext(ctx, q, projectID).Scan(&t.TotalCost, &t.Profit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// AdminUpdate patches project fields with no ownership scoping.
// Nil fields are left untouched. Admin use only; a selling price
// change still goes through the aggregator afterwards.
func (r *ProjectRepository) AdminUpdate(ctx context.Context, projectID string, name, description *string, sellingPrice *decimal.Decimal) (*domain.Project, error) {
	const q = `
UPDATE projects
SET name          = COALESCE($2, name),
    description   = COALESCE($3, description),
    selling_price = COALESCE($4, selling_price),
    updated_at    = now()
WHERE id = $1::uuid
RETURNING ` + projectCols + `;
`
	return scanProject(r.db.QueryRowContext(ctx, q, projectID, name, description, sellingPrice))
}

// DeleteCascade removes a project and all of its cost line items,
// children first, in one transaction.
func (r *ProjectRepository) DeleteCascade(ctx context.Context, projectID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM project_costs WHERE project_id = $1::uuid;`, projectID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1::uuid;`, projectID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}

	return tx.Commit()
}

// StaleProjectIDs returns projects whose stored totals no longer match
// the live aggregate over their cost rows. Feeds the reconciliation
// job. The aggregate is rounded to the totals columns' scale before
// comparing, otherwise fractional quantities would flag healthy
// projects forever: quantity carries 4 decimal places, so the live sum
// can hold more precision than total_cost ever stores.
func (r *ProjectRepository) StaleProjectIDs(ctx context.Context) ([]string, error) {
	const q = `
SELECT p.id::text
FROM projects p
LEFT JOIN (
    SELECT project_id, COALESCE(SUM(quantity * unit_price), 0) AS total
    FROM project_costs
    GROUP BY project_id
) c ON c.project_id = p.id
WHERE p.total_cost <> ROUND(COALESCE(c.total, 0), 2)
   OR p.profit <> ROUND(COALESCE(p.selling_price, 0) - COALESCE(c.total, 0), 2);
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
