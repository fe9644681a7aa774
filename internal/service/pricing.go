package service

import (
	"checkout-service/config"
	"checkout-service/internal/models"
)

// ShippingPolicy returns the shipping charge for a subtotal.
type ShippingPolicy func(subtotal int64) int64

// TaxPolicy returns the tax charge for a subtotal.
type TaxPolicy func(subtotal int64) int64

// FlatRateShipping charges a flat fee below the free-shipping threshold
// and nothing at or above it. An empty cart ships for free.
func FlatRateShipping(fee, freeThreshold int64) ShippingPolicy {
	return func(subtotal int64) int64 {
		if subtotal == 0 || subtotal >= freeThreshold {
			return 0
		}
		return fee
	}
}

// BasisPointTax charges a fixed rate expressed in basis points.
func BasisPointTax(rateBps int64) TaxPolicy {
	return func(subtotal int64) int64 {
		return subtotal * rateBps / 10000
	}
}

// Subtotal sums unit price times quantity over the cart.
func Subtotal(cart *models.Cart) int64 {
	var total int64
	for _, item := range cart.Items {
		total += item.UnitPrice * int64(item.Qty())
	}
	return total
}

// ItemCount sums quantities over the cart.
func ItemCount(cart *models.Cart) int {
	var count int
	for _, item := range cart.Items {
		count += item.Qty()
	}
	return count
}

// Pricer derives price breakdowns from cart state. It holds no state of
// its own; every call recomputes from scratch so breakdowns can never go
// stale.
type Pricer struct {
	shipping ShippingPolicy
	tax      TaxPolicy
	coupons  CouponResolver
}

// NewPricer creates a pricer with explicit policies.
func NewPricer(shipping ShippingPolicy, tax TaxPolicy, coupons CouponResolver) *Pricer {
	return &Pricer{shipping: shipping, tax: tax, coupons: coupons}
}

// NewPricerFromConfig creates a pricer with the configured flat-rate
// shipping and basis-point tax policies.
func NewPricerFromConfig(cfg config.PricingConfig, coupons CouponResolver) *Pricer {
	return NewPricer(
		FlatRateShipping(cfg.ShippingFee, cfg.FreeShippingThreshold),
		BasisPointTax(cfg.TaxRateBps),
		coupons,
	)
}

// Breakdown computes subtotal, shipping, tax, discount and total for the
// cart and its active coupon. Total never goes below zero.
func (p *Pricer) Breakdown(cart *models.Cart) models.PriceBreakdown {
	subtotal := Subtotal(cart)
	shipping := p.shipping(subtotal)
	tax := p.tax(subtotal)

	var discount int64
	if cart.CouponCode != "" {
		if coupon, ok := p.coupons.Resolve(cart.CouponCode); ok {
			discount = coupon.DiscountFor(subtotal)
		}
	}

	total := subtotal + shipping + tax - discount
	if total < 0 {
		total = 0
	}

	return models.PriceBreakdown{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    total,
	}
}
