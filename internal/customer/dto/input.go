package dto

import "github.com/fekuna/omnipos-order-service/internal/auth"

type EnsureCustomerInput struct {
	ID    string
	Email string
	Name  string
	Role  string
}

type UpdatePhoneInput struct {
	ID          string
	PhoneNumber string
}

// FromPrincipal builds the ensure input for an authenticated caller.
func FromPrincipal(p auth.Principal) *EnsureCustomerInput {
	return &EnsureCustomerInput{ID: p.UserID, Email: p.Email, Name: p.Name, Role: p.Role.String()}
}
