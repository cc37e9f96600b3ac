package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CreateProjectInput carries the fields for a new project.
type CreateProjectInput struct {
	Name        string
	Description *string
}

func (in CreateProjectInput) Validate() error {
	ve := NewValidationError()
	if len(strings.TrimSpace(in.Name)) < 3 {
		ve.Add("name", "name must be at least 3 characters")
	}
	return ve.ErrOrNil()
}

// CostInput carries the fields for a new or updated cost line item.
type CostInput struct {
	Name        string
	Description *string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Category    Category
}

func (in CostInput) Validate() error {
	ve := NewValidationError()
	if strings.TrimSpace(in.Name) == "" {
		ve.Add("name", "name is required")
	}
	if in.Quantity.IsNegative() {
		ve.Add("quantity", "quantity cannot be negative")
	}
	if in.UnitPrice.IsNegative() {
		ve.Add("unit_price", "unit price cannot be negative")
	}
	if !in.Category.Valid() {
		ve.Add("category", "category is required")
	}
	return ve.ErrOrNil()
}

// ValidateSellingPrice rejects negative selling prices.
func ValidateSellingPrice(price decimal.Decimal) error {
	ve := NewValidationError()
	if price.IsNegative() {
		ve.Add("selling_price", "selling price cannot be negative")
	}
	return ve.ErrOrNil()
}

// ValidateQuantity enforces the quantity floor: a project always
// represents at least one sellable unit.
func ValidateQuantity(quantity int) error {
	ve := NewValidationError()
	if quantity < 1 {
		ve.Add("quantity", "quantity must be at least 1")
	}
	return ve.ErrOrNil()
}
