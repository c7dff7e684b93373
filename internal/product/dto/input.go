package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	CategoryID    string
	Name          string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Stock         int
}

// UpdateProductInput changes catalog fields only. Stock is owned by the inventory ledger.
type UpdateProductInput struct {
	ID            string
	CategoryID    string
	Name          string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
}
