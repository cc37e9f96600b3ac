package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a tracked job with its denormalized financial totals.
// TotalCost and Profit are derived from the cost line items and the
// selling price; they are rewritten by the aggregator after every
// mutation and must never be set directly by callers.
type Project struct {
	ID           string              `json:"id"`
	UserID       string              `json:"user_id"`
	Name         string              `json:"name"`
	Description  *string             `json:"description"`
	SellingPrice decimal.NullDecimal `json:"selling_price"`
	Quantity     int                 `json:"quantity"`
	TotalCost    decimal.Decimal     `json:"total_cost"`
	Profit       decimal.Decimal     `json:"profit"`
	IsFavorite   bool                `json:"is_favorite"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// CostItem is one cost line attached to a project.
type CostItem struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Category    Category        `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ExtendedCost is quantity × unit price for this line.
func (c CostItem) ExtendedCost() decimal.Decimal {
	return c.Quantity.Mul(c.UnitPrice)
}

// ProjectWithCosts is the detail view: a project plus its cost lines.
type ProjectWithCosts struct {
	Project
	Costs []CostItem `json:"costs"`
}

// Totals carries the pair of derived fields the aggregator writes.
type Totals struct {
	TotalCost decimal.Decimal `json:"total_cost"`
	Profit    decimal.Decimal `json:"profit"`
}

// SumCosts computes the total cost of a set of line items. The empty
// set sums to zero.
func SumCosts(items []CostItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.ExtendedCost())
	}
	return total
}

// ComputeTotals derives both totals from a set of cost items and a
// selling price. An unset selling price counts as zero for the profit
// calculation.
func ComputeTotals(items []CostItem, sellingPrice decimal.NullDecimal) Totals {
	totalCost := SumCosts(items)
	price := decimal.Zero
	if sellingPrice.Valid {
		price = sellingPrice.Decimal
	}
	return Totals{
		TotalCost: totalCost,
		Profit:    price.Sub(totalCost),
	}
}
