// Package finance holds the stateless display calculations derived
// from a project's stored totals. Nothing here touches persistence;
// the same inputs always produce the same outputs.
package finance

import (
	"github.com/shopspring/decimal"

	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
)

var hundred = decimal.NewFromInt(100)

// Breakdown is the per-unit profitability view of a project. Pointer
// fields are nil when the underlying value is undefined, e.g. margin
// without a positive selling price.
type Breakdown struct {
	TotalCost     decimal.Decimal  `json:"total_cost"`
	Quantity      int              `json:"quantity"`
	CostPerUnit   decimal.Decimal  `json:"cost_per_unit"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit"`
	TotalProfit   *decimal.Decimal `json:"total_profit"`
	ProfitPerUnit *decimal.Decimal `json:"profit_per_unit"`
	ProfitMargin  *decimal.Decimal `json:"profit_margin"`
	IsProfitable  bool             `json:"is_profitable"`
}

// CostPerUnit is total cost spread across the project's units.
// Quantity >= 1 is enforced upstream, so division is always defined.
func CostPerUnit(totalCost decimal.Decimal, quantity int) decimal.Decimal {
	return totalCost.Div(decimal.NewFromInt(int64(quantity)))
}

// ProfitMargin is profit as a percentage of the selling price. It is
// undefined (ok == false) unless the selling price is positive.
func ProfitMargin(profit, sellingPrice decimal.Decimal) (decimal.Decimal, bool) {
	if sellingPrice.Sign() <= 0 {
		return decimal.Zero, false
	}
	return profit.Div(sellingPrice).Mul(hundred), true
}

// ProfitPerUnit is the per-unit selling price minus the per-unit cost.
func ProfitPerUnit(sellingPrice decimal.Decimal, quantity int, costPerUnit decimal.Decimal) decimal.Decimal {
	return sellingPrice.Div(decimal.NewFromInt(int64(quantity))).Sub(costPerUnit)
}

// Compute builds the full breakdown for a project. With no selling
// price set, only the cost side is defined.
func Compute(p domain.Project) Breakdown {
	quantity := p.Quantity
	if quantity < 1 {
		quantity = 1
	}

	b := Breakdown{
		TotalCost:   p.TotalCost,
		Quantity:    quantity,
		CostPerUnit: CostPerUnit(p.TotalCost, quantity),
	}

	if !p.SellingPrice.Valid {
		return b
	}

	price := p.SellingPrice.Decimal
	b.SellingPrice = &price

	pricePerUnit := price.Div(decimal.NewFromInt(int64(quantity)))
	b.PricePerUnit = &pricePerUnit

	profit := price.Sub(p.TotalCost)
	b.TotalProfit = &profit
	b.IsProfitable = profit.Sign() > 0

	profitPerUnit := ProfitPerUnit(price, quantity, b.CostPerUnit)
	b.ProfitPerUnit = &profitPerUnit

	if margin, ok := ProfitMargin(profit, price); ok {
		b.ProfitMargin = &margin
	}

	return b
}
