package model

type Customer struct {
	BaseModel
	Email       string  `db:"email" json:"email"`
	PhoneNumber *string `db:"phone_number" json:"phone_number"`
	Name        string  `db:"name" json:"name"`
	Role        string  `db:"role" json:"role"`
}

// DisplayName is what notifications greet the customer with.
func (c *Customer) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.PhoneNumber != nil && *c.PhoneNumber != "" {
		return *c.PhoneNumber
	}
	return c.Email
}
