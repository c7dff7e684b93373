package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/customer"
	"github.com/fekuna/omnipos-order-service/internal/customer/dto"
	"github.com/fekuna/omnipos-order-service/internal/customer/repository"
	"github.com/fekuna/omnipos-order-service/pkg/database/sqlite"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) customer.UseCase {
	t.Helper()
	db, err := sqlite.OpenMigrated(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCustomerUseCase(repository.NewSQLRepository(db), logger.NewNop())
}

func TestEnsureCustomer(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()

	c, err := uc.EnsureCustomer(ctx, &dto.EnsureCustomerInput{ID: "sub-1", Email: " amina@example.com ", Name: "Amina"})
	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", c.Email)
	assert.Equal(t, "customer", c.Role)
	assert.Nil(t, c.PhoneNumber)
	created := c.CreatedAt

	_, err = uc.UpdatePhone(ctx, &dto.UpdatePhoneInput{ID: "sub-1", PhoneNumber: "+254712345678"})
	require.NoError(t, err)

	c, err = uc.EnsureCustomer(ctx, &dto.EnsureCustomerInput{ID: "sub-1", Email: "amina@shop.io", Name: "Amina W", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "amina@shop.io", c.Email)
	assert.Equal(t, "Amina W", c.Name)
	assert.Equal(t, "admin", c.Role)
	require.NotNil(t, c.PhoneNumber)
	assert.Equal(t, "+254712345678", *c.PhoneNumber)
	assert.True(t, created.Equal(c.CreatedAt))

	_, err = uc.EnsureCustomer(ctx, &dto.EnsureCustomerInput{})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdatePhone(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()
	_, err := uc.EnsureCustomer(ctx, &dto.EnsureCustomerInput{ID: "sub-1", Email: "a@example.com"})
	require.NoError(t, err)

	c, err := uc.UpdatePhone(ctx, &dto.UpdatePhoneInput{ID: "sub-1", PhoneNumber: " 123 456 789 "})
	require.NoError(t, err)
	require.NotNil(t, c.PhoneNumber)
	assert.Equal(t, "123456789", *c.PhoneNumber)

	for _, phone := range []string{"", "   ", "+1234567890123456", "07-12-34", "abc"} {
		_, err := uc.UpdatePhone(ctx, &dto.UpdatePhoneInput{ID: "sub-1", PhoneNumber: phone})
		assert.ErrorIs(t, err, apperror.ErrValidation, phone)
	}

	c, err = uc.GetProfile(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "123456789", *c.PhoneNumber)

	_, err = uc.UpdatePhone(ctx, &dto.UpdatePhoneInput{ID: "nobody", PhoneNumber: "123"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = uc.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
