package dto

type NotificationFilters struct {
	UserID   string
	Page     int
	PageSize int
}
