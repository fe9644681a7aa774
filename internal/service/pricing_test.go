package service

import (
	"testing"

	"checkout-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func testPricer(coupons CouponResolver) *Pricer {
	if coupons == nil {
		coupons = NewTableResolver(DefaultCoupons()...)
	}
	return NewPricer(FlatRateShipping(999, 10000), BasisPointTax(825), coupons)
}

func TestSubtotal(t *testing.T) {
	cart := &models.Cart{
		Items: []models.CartItem{
			{ProductID: "p1", UnitPrice: 10000, Quantity: 2},
			{ProductID: "p2", UnitPrice: 5000, Quantity: 1},
		},
	}

	assert.Equal(t, int64(25000), Subtotal(cart))
}

func TestSubtotalEmptyCart(t *testing.T) {
	assert.Equal(t, int64(0), Subtotal(&models.Cart{}))
}

func TestSubtotalLegacyItemWithoutQuantity(t *testing.T) {
	// Records persisted before the quantity field existed count as 1.
	cart := &models.Cart{
		Items: []models.CartItem{
			{ProductID: "p1", UnitPrice: 4200},
		},
	}

	assert.Equal(t, int64(4200), Subtotal(cart))
	assert.Equal(t, 1, ItemCount(cart))
}

func TestBreakdownInvariant(t *testing.T) {
	pricer := testPricer(nil)

	carts := []*models.Cart{
		{},
		{Items: []models.CartItem{{ProductID: "p1", UnitPrice: 100, Quantity: 1}}},
		{Items: []models.CartItem{{ProductID: "p1", UnitPrice: 10000, Quantity: 3}}, CouponCode: "COLLECT20"},
		{Items: []models.CartItem{{ProductID: "p1", UnitPrice: 500, Quantity: 1}}, CouponCode: "SAVE15"},
	}

	for _, cart := range carts {
		b := pricer.Breakdown(cart)

		expected := b.Subtotal + b.Shipping + b.Tax - b.Discount
		if expected < 0 {
			expected = 0
		}
		assert.Equal(t, expected, b.Total)
		assert.GreaterOrEqual(t, b.Total, int64(0))
	}
}

func TestBreakdownRecomputedPerCall(t *testing.T) {
	pricer := testPricer(nil)
	cart := &models.Cart{
		Items: []models.CartItem{{ProductID: "p1", UnitPrice: 1000, Quantity: 1}},
	}

	first := pricer.Breakdown(cart)

	cart.Items[0].Quantity = 5
	second := pricer.Breakdown(cart)

	assert.Equal(t, int64(1000), first.Subtotal)
	assert.Equal(t, int64(5000), second.Subtotal)
}

func TestFlatRateShipping(t *testing.T) {
	policy := FlatRateShipping(999, 10000)

	assert.Equal(t, int64(0), policy(0))
	assert.Equal(t, int64(999), policy(9999))
	assert.Equal(t, int64(0), policy(10000))
	assert.Equal(t, int64(0), policy(25000))
}

func TestBasisPointTax(t *testing.T) {
	policy := BasisPointTax(825)

	assert.Equal(t, int64(0), policy(0))
	assert.Equal(t, int64(825), policy(10000))
}

func TestFlatCouponCannotDriveTotalNegative(t *testing.T) {
	coupons := NewTableResolver(models.Coupon{Code: "HUGE", Kind: models.CouponKindFlat, Value: 1000000})
	pricer := testPricer(coupons)

	cart := &models.Cart{
		Items:      []models.CartItem{{ProductID: "p1", UnitPrice: 500, Quantity: 1}},
		CouponCode: "HUGE",
	}

	b := pricer.Breakdown(cart)
	assert.Equal(t, int64(0), b.Total)
}

func TestUnknownCouponYieldsNoDiscount(t *testing.T) {
	pricer := testPricer(nil)

	cart := &models.Cart{
		Items:      []models.CartItem{{ProductID: "p1", UnitPrice: 1000, Quantity: 2}},
		CouponCode: "NOPE",
	}

	assert.Equal(t, int64(0), pricer.Breakdown(cart).Discount)
}
