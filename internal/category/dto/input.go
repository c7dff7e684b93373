package dto

type CreateCategoryInput struct {
	ParentID *string
	Name     string
}

type UpdateCategoryInput struct {
	ID       string
	ParentID *string // Nil moves the category to the root
	Name     string
}
