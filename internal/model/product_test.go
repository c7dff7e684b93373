package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestNewProduct(t *testing.T) {
	p, err := NewProduct("Kettle", "cat-1", dec("100.00"), ptr(dec("80.00")), 5)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.Price.Equal(dec("100")))
	require.NotNil(t, p.DiscountPrice)
	assert.True(t, p.DiscountPrice.Equal(dec("80")))
	assert.Equal(t, 5, p.Stock)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestNewProduct_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		prodName string
		category string
		price    decimal.Decimal
		discount *decimal.Decimal
		stock    int
		want     error
	}{
		{"missing name", "", "c", dec("1"), nil, 0, ErrMissingName},
		{"missing category", "n", "", dec("1"), nil, 0, ErrMissingCategoryID},
		{"negative stock", "n", "c", dec("1"), nil, -1, ErrNegativeStock},
		{"zero price", "n", "c", dec("0"), nil, 0, ErrNonPositivePrice},
		{"discount equal to price", "n", "c", dec("10"), ptr(dec("10")), 0, ErrDiscountNotLower},
		{"discount above price", "n", "c", dec("10"), ptr(dec("12")), 0, ErrDiscountNotLower},
		{"negative discount", "n", "c", dec("10"), ptr(dec("-1")), 0, ErrNegativeDiscount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.prodName, tt.category, tt.price, tt.discount, tt.stock)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, p)
		})
	}
}

func TestSetPricing_LeavesProductUnchangedOnError(t *testing.T) {
	p, err := NewProduct("Kettle", "cat-1", dec("100"), nil, 1)
	require.NoError(t, err)

	err = p.SetPricing(dec("50"), ptr(dec("60")))
	assert.ErrorIs(t, err, ErrDiscountNotLower)
	assert.True(t, p.Price.Equal(dec("100")))
	assert.Nil(t, p.DiscountPrice)

	require.NoError(t, p.SetPricing(dec("50"), nil))
	assert.True(t, p.Price.Equal(dec("50")))
}

func TestOrderItemsTotal(t *testing.T) {
	o := &Order{Items: []OrderItem{
		{Quantity: 3, PriceAtTimeOfOrder: dec("19.99")},
		{Quantity: 1, PriceAtTimeOfOrder: dec("0.02")},
	}}
	assert.True(t, o.ItemsTotal().Equal(dec("59.99")))
}

func TestCustomerDisplayName(t *testing.T) {
	phone := "+254799887766"
	assert.Equal(t, "Amina", (&Customer{Name: "Amina", Email: "a@x.io"}).DisplayName())
	assert.Equal(t, phone, (&Customer{PhoneNumber: &phone, Email: "a@x.io"}).DisplayName())
	assert.Equal(t, "a@x.io", (&Customer{Email: "a@x.io"}).DisplayName())
}
