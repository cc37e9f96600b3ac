package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
)

// foreignKeyViolation is the Postgres error code raised when a cost
// row references a project that no longer exists.
const foreignKeyViolation = "23503"

// CostRepository provides persistence operations for cost line items.
type CostRepository struct {
	db *sql.DB
}

// NewCostRepository creates a new cost repository.
func NewCostRepository(db *sql.DB) *CostRepository {
	return &CostRepository{db: db}
}

const costCols = `id::text, project_id::text, user_id::text, name, description, quantity, unit_price, category, created_at`

func scanCost(row rowScanner) (*domain.CostItem, error) {
	var c domain.CostItem
	err := row.Scan(
		&c.ID, &c.ProjectID, &c.UserID, &c.Name, &c.Description,
		&c.Quantity, &c.UnitPrice, &c.Category, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByProject returns all cost line items of a project, newest first.
func (r *CostRepository) ListByProject(ctx context.Context, projectID string) ([]domain.CostItem, error) {
	const q = `
SELECT ` + costCols + `
FROM project_costs
WHERE project_id = $1::uuid
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.CostItem, 0, 16)
	for rows.Next() {
		c, err := scanCost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Insert adds a cost line item to a project.
func (r *CostRepository) Insert(ctx context.Context, projectID, userID string, in domain.CostInput) (*domain.CostItem, error) {
	const q = `
INSERT INTO project_costs (project_id, user_id, name, description, quantity, unit_price, category)
VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)
RETURNING ` + costCols + `;
`
	c, err := scanCost(r.db.QueryRowContext(ctx, q,
		projectID, userID, in.Name, in.Description, in.Quantity, in.UnitPrice, in.Category))
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Update overwrites a cost line item's editable fields. The row must
// belong to the given project.
func (r *CostRepository) Update(ctx context.Context, projectID, costID string, in domain.CostInput) (*domain.CostItem, error) {
	const q = `
UPDATE project_costs
SET name = $3, description = $4, quantity = $5, unit_price = $6, category = $7
WHERE id = $1::uuid AND project_id = $2::uuid
RETURNING ` + costCols + `;
`
	return scanCost(r.db.QueryRowContext(ctx, q,
		costID, projectID, in.Name, in.Description, in.Quantity, in.UnitPrice, in.Category))
}

// Delete removes a single cost line item from a project.
func (r *CostRepository) Delete(ctx context.Context, projectID, costID string) error {
	const q = `
DELETE FROM project_costs
WHERE id = $1::uuid AND project_id = $2::uuid;
`
	res, err := r.db.ExecContext(ctx, q, costID, projectID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
