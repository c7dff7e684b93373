package dto

type ProductFilters struct {
	CategoryID  string `json:"category_id,omitempty"`
	SearchQuery string `json:"search_query,omitempty"` // Matched against the product name
	InStockOnly bool   `json:"in_stock_only,omitempty"`
	SortBy      string `json:"sort_by,omitempty"`    // name, price, created_at
	SortOrder   string `json:"sort_order,omitempty"` // asc, desc
	Page        int    `json:"page,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}
