package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNonPositivePrice  = errors.New("price must be greater than zero")
	ErrNegativeDiscount  = errors.New("discount price must not be negative")
	ErrDiscountNotLower  = errors.New("discount price must be lower than the regular price")
	ErrNegativeStock     = errors.New("stock must not be negative")
	ErrMissingName       = errors.New("name is required")
	ErrMissingCategoryID = errors.New("category is required")
)

// Product fields that carry invariants (price, discount, stock) are only set through
// NewProduct and SetPricing, so no code path can build a persistable product that
// violates them.
type Product struct {
	BaseModel
	CategoryID    string           `db:"category_id" json:"category_id"`
	Name          string           `db:"name" json:"name"`
	Price         decimal.Decimal  `db:"price" json:"price"`
	Stock         int              `db:"stock" json:"stock"`
	DiscountPrice *decimal.Decimal `db:"discount_price" json:"discount_price"` // Nullable
}

func NewProduct(name, categoryID string, price decimal.Decimal, discount *decimal.Decimal, stock int) (*Product, error) {
	if name == "" {
		return nil, ErrMissingName
	}
	if categoryID == "" {
		return nil, ErrMissingCategoryID
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}

	now := time.Now().UTC()
	p := &Product{
		BaseModel:  BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CategoryID: categoryID,
		Name:       name,
		Stock:      stock,
	}
	if err := p.SetPricing(price, discount); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPricing replaces list and discount price together after validating them.
// On error the product is left unchanged.
func (p *Product) SetPricing(price decimal.Decimal, discount *decimal.Decimal) error {
	if err := ValidatePricing(price, discount); err != nil {
		return err
	}
	p.Price = price.Round(2)
	if discount != nil {
		d := discount.Round(2)
		p.DiscountPrice = &d
	} else {
		p.DiscountPrice = nil
	}
	return nil
}

func ValidatePricing(price decimal.Decimal, discount *decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrNonPositivePrice
	}
	if discount == nil {
		return nil
	}
	if discount.IsNegative() {
		return ErrNegativeDiscount
	}
	if discount.GreaterThanOrEqual(price) {
		return ErrDiscountNotLower
	}
	return nil
}
