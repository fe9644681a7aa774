package service

import (
	"context"
	"testing"

	"checkout-service/config"
	"checkout-service/internal/broker"
	"checkout-service/internal/catalog"
	"checkout-service/internal/models"
	"checkout-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrderFactory(t *testing.T) (*OrderFactory, *CartService, *catalog.StaticCatalog) {
	t.Helper()

	st := store.NewMemoryStore()
	cat := catalog.NewStaticCatalog(testProducts...)
	coupons := NewTableResolver(DefaultCoupons()...)
	pricer := testPricer(coupons)
	carts := NewCartService(st, cat, coupons, pricer, broker.NopPublisher{})
	factory := NewOrderFactory(st, carts, pricer, broker.NopPublisher{},
		config.BusinessConfig{OrderProcessingDelayMs: 0, DeliveryDays: 7})
	return factory, carts, cat
}

func readySession() *CheckoutSession {
	cs := NewCheckoutSession()
	cs.UpdateShippingAddress(testAddress)
	cs.NextStep()
	cs.NextStep()
	cs.SetPaymentMethod("pm-1", "card")
	cs.NextStep()
	cs.SetAcceptTerms(true)
	return cs
}

func TestPlaceOrder(t *testing.T) {
	factory, carts, cat := newTestOrderFactory(t)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, "guest", mustProduct(t, cat, "p1"), 2)
	require.NoError(t, err)
	_, err = carts.ApplyCoupon(ctx, "guest", "WELCOME10")
	require.NoError(t, err)

	orderID, res, err := factory.PlaceOrder(ctx, "guest", readySession())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotEmpty(t, orderID)

	orders, err := factory.Orders(ctx, "guest")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	order := orders[0]
	assert.Equal(t, orderID, order.ID)
	assert.NotEmpty(t, order.OrderNumber)
	assert.NotEqual(t, order.ID, order.OrderNumber)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "card", order.PaymentMethodType)
	assert.Equal(t, testAddress, order.ShippingAddress)
	assert.Equal(t, testAddress, order.BillingAddress)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "p1", order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)

	// Frozen breakdown: 20000 subtotal, free shipping over 10000,
	// 8.25% tax, 10% coupon.
	assert.Equal(t, int64(20000), order.Pricing.Subtotal)
	assert.Equal(t, int64(0), order.Pricing.Shipping)
	assert.Equal(t, int64(1650), order.Pricing.Tax)
	assert.Equal(t, int64(2000), order.Pricing.Discount)
	assert.Equal(t, int64(19650), order.Pricing.Total)

	assert.True(t, order.EstimatedDelivery.After(order.CreatedAt))

	// The cart is cleared by placement.
	assert.Empty(t, carts.Cart(ctx, "guest").Items)

	last, err := factory.LastOrder(ctx, "guest")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, orderID, last.ID)
}

func TestPlaceOrderEmptyCartRejected(t *testing.T) {
	factory, carts, _ := newTestOrderFactory(t)
	ctx := context.Background()

	orderID, res, err := factory.PlaceOrder(ctx, "guest", readySession())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgOrderCartEmpty, res.Message)
	assert.Empty(t, orderID)

	orders, err := factory.Orders(ctx, "guest")
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, carts.Cart(ctx, "guest").Items)
}

func TestPlaceOrderWithoutAcceptedTermsRejected(t *testing.T) {
	factory, carts, cat := newTestOrderFactory(t)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, "guest", mustProduct(t, cat, "p1"), 1)
	require.NoError(t, err)

	session := readySession()
	session.SetAcceptTerms(false)
	assert.False(t, session.CanProceed())

	orderID, res, err := factory.PlaceOrder(ctx, "guest", session)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgTermsNotAccepted, res.Message)
	assert.Empty(t, orderID)

	// No side effects: cart still populated, no orders written.
	assert.Len(t, carts.Cart(ctx, "guest").Items, 1)
	orders, err := factory.Orders(ctx, "guest")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrderMissingDataRejected(t *testing.T) {
	factory, carts, cat := newTestOrderFactory(t)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, "guest", mustProduct(t, cat, "p1"), 1)
	require.NoError(t, err)

	noShipping := NewCheckoutSession()
	noShipping.SetPaymentMethod("pm-1", "card")
	noShipping.SetAcceptTerms(true)
	_, res, err := factory.PlaceOrder(ctx, "guest", noShipping)
	require.NoError(t, err)
	assert.Equal(t, MsgMissingShipping, res.Message)

	noPayment := NewCheckoutSession()
	noPayment.UpdateShippingAddress(testAddress)
	noPayment.SetAcceptTerms(true)
	_, res, err = factory.PlaceOrder(ctx, "guest", noPayment)
	require.NoError(t, err)
	assert.Equal(t, MsgMissingPayment, res.Message)

	noBilling := NewCheckoutSession()
	noBilling.SetSameAsShipping(false)
	noBilling.UpdateShippingAddress(testAddress)
	noBilling.SetPaymentMethod("pm-1", "card")
	noBilling.SetAcceptTerms(true)
	_, res, err = factory.PlaceOrder(ctx, "guest", noBilling)
	require.NoError(t, err)
	assert.Equal(t, MsgMissingBilling, res.Message)

	// Nothing was written along the way.
	assert.Len(t, carts.Cart(ctx, "guest").Items, 1)
	orders, err := factory.Orders(ctx, "guest")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrderExplicitBillingAddress(t *testing.T) {
	factory, carts, cat := newTestOrderFactory(t)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, "guest", mustProduct(t, cat, "p2"), 1)
	require.NoError(t, err)

	billing := testAddress
	billing.FullName = "Charles Babbage"
	billing.City = "Cambridge"

	session := readySession()
	session.SetSameAsShipping(false)
	session.UpdateBillingAddress(billing)

	orderID, res, err := factory.PlaceOrder(ctx, "guest", session)
	require.NoError(t, err)
	require.True(t, res.Success)

	last, err := factory.LastOrder(ctx, "guest")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, orderID, last.ID)
	assert.Equal(t, "Cambridge", last.BillingAddress.City)
	assert.Equal(t, "London", last.ShippingAddress.City)
}

func TestOrdersAreImmutableAfterCartMutation(t *testing.T) {
	factory, carts, cat := newTestOrderFactory(t)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, "guest", mustProduct(t, cat, "p1"), 2)
	require.NoError(t, err)

	orderID, res, err := factory.PlaceOrder(ctx, "guest", readySession())
	require.NoError(t, err)
	require.True(t, res.Success)

	// Mutate the cart after placement.
	_, err = carts.AddToCart(ctx, "guest", mustProduct(t, cat, "p3"), 1)
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx, "guest", mustProduct(t, cat, "p1"), 4)
	require.NoError(t, err)

	orders, err := factory.Orders(ctx, "guest")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, orderID, orders[0].ID)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "p1", orders[0].Items[0].ProductID)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
	assert.Equal(t, int64(20000), orders[0].Pricing.Subtotal)
}

func TestOrderListIsAppendOnly(t *testing.T) {
	factory, carts, cat := newTestOrderFactory(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		_, err := carts.AddToCart(ctx, "guest", mustProduct(t, cat, "p2"), 1)
		require.NoError(t, err)

		id, res, err := factory.PlaceOrder(ctx, "guest", readySession())
		require.NoError(t, err)
		require.True(t, res.Success)
		ids = append(ids, id)
	}

	orders, err := factory.Orders(ctx, "guest")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for i, order := range orders {
		assert.Equal(t, ids[i], order.ID)
	}

	last, err := factory.LastOrder(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, ids[2], last.ID)
}

func TestPlaceOrderRejectedWhileInFlight(t *testing.T) {
	factory, carts, cat := newTestOrderFactory(t)
	ctx := context.Background()

	_, err := carts.AddToCart(ctx, "guest", mustProduct(t, cat, "p1"), 1)
	require.NoError(t, err)

	factory.processing.Store(true)
	orderID, res, err := factory.PlaceOrder(ctx, "guest", readySession())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgOrderInFlight, res.Message)
	assert.Empty(t, orderID)
	factory.processing.Store(false)

	// Once the pending placement finishes, ordering works again.
	_, res, err = factory.PlaceOrder(ctx, "guest", readySession())
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestLastOrderEmptyScope(t *testing.T) {
	factory, _, _ := newTestOrderFactory(t)

	last, err := factory.LastOrder(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, last)
}
