package dto

type CategoryFilters struct {
	ParentID *string // Nil means ignore, empty string means root categories
	Page     int
	PageSize int
}
