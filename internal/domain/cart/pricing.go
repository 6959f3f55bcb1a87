// internal/domain/cart/pricing.go
package cart

import (
	"math"

	"github.com/tissue45/convi-backend/internal/domain/catalog"
)

// DiscountedUnitPrice applies the store's discount rate to the unit price.
// Rates outside (0, 1] leave the price untouched.
func DiscountedUnitPrice(unitPrice int64, discountRate float64) int64 {
	if discountRate <= 0 || discountRate > 1 {
		return unitPrice
	}
	return int64(math.Round(float64(unitPrice) * (1 - discountRate)))
}

// ItemSubtotal computes the line subtotal for a quantity of one store product
// under its promotion tier. The discount rate applies first, then the tier
// decides how many units are actually paid for:
//
//	buy_one_get_one: every full pair costs one unit, a trailing unit costs full price
//	buy_two_get_one: every full triple costs two units, remainder units cost full price
//
// Pure and deterministic; the rest of the engine never prices a line any
// other way.
func ItemSubtotal(unitPrice int64, discountRate float64, tier catalog.PromotionTier, quantity int) int64 {
	if quantity <= 0 {
		return 0
	}

	basePrice := DiscountedUnitPrice(unitPrice, discountRate)

	switch tier {
	case catalog.PromotionBuyOneGetOne:
		groups := int64(quantity / 2)
		remainder := int64(quantity % 2)
		return basePrice*groups + basePrice*remainder
	case catalog.PromotionBuyTwoGetOne:
		groups := int64(quantity / 3)
		remainder := int64(quantity % 3)
		return basePrice*2*groups + basePrice*remainder
	default:
		return basePrice * int64(quantity)
	}
}

// SubtotalFor prices a quantity of the given store-scoped product snapshot
func SubtotalFor(sp catalog.StoreProduct, quantity int) int64 {
	return ItemSubtotal(sp.Price, sp.DiscountRate, sp.PromotionTier, quantity)
}
