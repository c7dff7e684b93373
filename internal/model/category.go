package model

import "github.com/shopspring/decimal"

type Category struct {
	BaseModel
	ParentID *string    `db:"parent_id" json:"parent_id"` // Nullable
	Name     string     `db:"name" json:"name"`
	Children []Category `db:"-" json:"children,omitempty"` // For tree structure, not in DB
}

// CategoryPriceSummary aggregates list prices over a category and all its descendants.
type CategoryPriceSummary struct {
	CategoryID       string          `json:"category_id"`
	AveragePrice     decimal.Decimal `json:"average_price"`
	ProductsCount    int             `json:"products_count"`
	SubcategoryCount int             `json:"subcategory_count"`
}
