// Package pricing resolves what a customer pays for a product at a point in time.
package pricing

import (
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/shopspring/decimal"
)

// EffectivePrice is the discount price when one is set, otherwise the list price.
func EffectivePrice(p *model.Product) decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

func LineTotal(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}
