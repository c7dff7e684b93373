package customer

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/customer/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
)

type UseCase interface {
	// EnsureCustomer records the caller the first time they are seen and refreshes their
	// identity claims afterwards.
	EnsureCustomer(ctx context.Context, input *dto.EnsureCustomerInput) (*model.Customer, error)
	GetProfile(ctx context.Context, id string) (*model.Customer, error)
	UpdatePhone(ctx context.Context, input *dto.UpdatePhoneInput) (*model.Customer, error)
}
