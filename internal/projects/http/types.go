package http

import (
	"github.com/shopspring/decimal"
)

// apiResponse is the envelope every operation returns to the caller.
type apiResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message,omitempty"`
	Data        any                 `json:"data,omitempty"`
	FieldErrors map[string][]string `json:"field_errors,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
}

type createProjectReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type favoriteReq struct {
	IsFavorite bool `json:"is_favorite"`
}

type costReq struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Category    string          `json:"category"`
}

type sellingPriceReq struct {
	SellingPrice decimal.Decimal `json:"selling_price"`
}

type quantityReq struct {
	Quantity int `json:"quantity"`
}
