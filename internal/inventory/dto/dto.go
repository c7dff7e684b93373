package dto

import "time"

type MovementFilters struct {
	ProductID     string
	ReferenceType string
	ReferenceID   string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
}
