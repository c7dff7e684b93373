package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/customer"
	"github.com/fekuna/omnipos-order-service/internal/customer/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"go.uber.org/zap"
)

const maxPhoneLength = 15

var phonePattern = regexp.MustCompile(`^\+?[0-9]+$`)

type customerUseCase struct {
	repo   customer.Repository
	logger logger.ZapLogger
}

func NewCustomerUseCase(repo customer.Repository, log logger.ZapLogger) customer.UseCase {
	return &customerUseCase{repo: repo, logger: log}
}

func (uc *customerUseCase) EnsureCustomer(ctx context.Context, input *dto.EnsureCustomerInput) (*model.Customer, error) {
	if input.ID == "" {
		return nil, apperror.Validation("id", "customer id is required")
	}
	role := input.Role
	if role == "" {
		role = "customer"
	}

	now := time.Now().UTC()
	c := &model.Customer{
		BaseModel: model.BaseModel{ID: input.ID, CreatedAt: now, UpdatedAt: now},
		Email:     strings.TrimSpace(input.Email),
		Name:      strings.TrimSpace(input.Name),
		Role:      role,
	}
	if err := uc.repo.Upsert(ctx, c); err != nil {
		uc.logger.Error("failed to ensure customer", zap.String("customer_id", input.ID), zap.Error(err))
		return nil, err
	}
	return uc.repo.FindByID(ctx, input.ID)
}

func (uc *customerUseCase) GetProfile(ctx context.Context, id string) (*model.Customer, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *customerUseCase) UpdatePhone(ctx context.Context, input *dto.UpdatePhoneInput) (*model.Customer, error) {
	phone := strings.ReplaceAll(strings.TrimSpace(input.PhoneNumber), " ", "")
	switch {
	case phone == "":
		return nil, apperror.Validation("phone_number", "phone number is required")
	case len(phone) > maxPhoneLength:
		return nil, apperror.Validation("phone_number", "phone number must be at most 15 characters")
	case !phonePattern.MatchString(phone):
		return nil, apperror.Validation("phone_number", "phone number may only contain digits and a leading +")
	}

	if err := uc.repo.UpdatePhone(ctx, input.ID, phone, time.Now().UTC()); err != nil {
		return nil, err
	}
	return uc.repo.FindByID(ctx, input.ID)
}
