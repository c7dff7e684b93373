package auth

import (
	"fmt"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
)

type Role int

const (
	RoleCustomer Role = iota + 1
	RoleAdmin
)

func ParseRole(s string) (Role, error) {
	switch s {
	case "customer":
		return RoleCustomer, nil
	case "admin":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("unknown role %q: %w", s, apperror.ErrUnauthenticated)
}

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleAdmin:
		return "admin"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

type Action int

const (
	ActionBrowseCatalog Action = iota + 1
	ActionManageCatalog
	ActionManageInventory
	ActionPlaceOrder
	ActionViewOwnOrders
	ActionViewAllOrders
	ActionApproveOrder
	ActionCancelOrder
	ActionManageProfile
)

// Authorize decides whether p may perform a. Every role lists its actions explicitly.
func Authorize(p Principal, a Action) error {
	var allowed bool
	switch p.Role {
	case RoleAdmin:
		switch a {
		case ActionBrowseCatalog, ActionManageCatalog, ActionManageInventory,
			ActionPlaceOrder, ActionViewOwnOrders, ActionViewAllOrders,
			ActionApproveOrder, ActionCancelOrder, ActionManageProfile:
			allowed = true
		}
	case RoleCustomer:
		switch a {
		case ActionBrowseCatalog, ActionPlaceOrder, ActionViewOwnOrders, ActionManageProfile:
			allowed = true
		case ActionManageCatalog, ActionManageInventory, ActionViewAllOrders,
			ActionApproveOrder, ActionCancelOrder:
			allowed = false
		}
	}
	if !allowed {
		return fmt.Errorf("%s may not perform action %d: %w", p.Role, a, apperror.ErrForbidden)
	}
	return nil
}
