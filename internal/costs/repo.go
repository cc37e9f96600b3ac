// Package costs implements reusable cost templates: saved
// name/price/category triples a user can pre-fill new cost line items
// from. Templates play no part in aggregation.
package costs

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
)

type ReusableCost struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Category  domain.Category `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
}

type Input struct {
	Name      string
	UnitPrice decimal.Decimal
	Category  domain.Category
}

func (in Input) Validate() error {
	ve := domain.NewValidationError()
	if strings.TrimSpace(in.Name) == "" {
		ve.Add("name", "name is required")
	}
	if in.UnitPrice.IsNegative() {
		ve.Add("unit_price", "unit price cannot be negative")
	}
	if !in.Category.Valid() {
		ve.Add("category", "category is required")
	}
	return ve.ErrOrNil()
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const cols = `id::text, user_id::text, name, unit_price, category, created_at`

// Create inserts a reusable cost for the given user.
func (r *Repo) Create(ctx context.Context, userID string, in Input) (*ReusableCost, error) {
	const q = `
INSERT INTO reusable_costs (user_id, name, unit_price, category)
VALUES ($1::uuid, $2, $3, $4)
RETURNING ` + cols + `;
`
	var rc ReusableCost
	err := r.db.QueryRowContext(ctx, q, userID, in.Name, in.UnitPrice, in.Category).
		Scan(&rc.ID, &rc.UserID, &rc.Name, &rc.UnitPrice, &rc.Category, &rc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// List returns the user's reusable costs, newest first.
func (r *Repo) List(ctx context.Context, userID string) ([]ReusableCost, error) {
	const q = `
SELECT ` + cols + `
FROM reusable_costs
WHERE user_id = $1::uuid
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ReusableCost, 0, 16)
	for rows.Next() {
		var rc ReusableCost
		if err := rows.Scan(&rc.ID, &rc.UserID, &rc.Name, &rc.UnitPrice, &rc.Category, &rc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// Delete removes one of the user's reusable costs.
func (r *Repo) Delete(ctx context.Context, userID, costID string) error {
	const q = `
DELETE FROM reusable_costs
WHERE user_id = $1::uuid AND id = $2::uuid;
`
	res, err := r.db.ExecContext(ctx, q, userID, costID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
