package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"checkout-service/config"
	"checkout-service/internal/broker"
	"checkout-service/internal/models"
	"checkout-service/internal/store"
	"checkout-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Order placement failure messages
const (
	MsgOrderInFlight    = "Order is already being placed"
	MsgMissingShipping  = "Shipping address is required"
	MsgMissingBilling   = "Billing address is required"
	MsgMissingPayment   = "Payment method is required"
	MsgTermsNotAccepted = "You must accept the terms"
	MsgOrderCartEmpty   = "Cart is empty"
)

// OrderFactory is the sole writer of order records. PlaceOrder snapshots
// the cart and checkout data into an immutable order, appends it to the
// scope's order list and clears the cart. Validation failures leave cart,
// checkout state and order list untouched.
type OrderFactory struct {
	store        store.PersistentStore
	carts        *CartService
	pricer       *Pricer
	publisher    broker.Publisher
	logger       *zap.Logger
	delay        time.Duration
	deliveryDays int
	processing   atomic.Bool
}

// NewOrderFactory creates a new order factory
func NewOrderFactory(
	st store.PersistentStore,
	carts *CartService,
	pricer *Pricer,
	publisher broker.Publisher,
	cfg config.BusinessConfig,
) *OrderFactory {
	return &OrderFactory{
		store:        st,
		carts:        carts,
		pricer:       pricer,
		publisher:    publisher,
		logger:       util.GetLogger(),
		delay:        time.Duration(cfg.OrderProcessingDelayMs) * time.Millisecond,
		deliveryDays: cfg.DeliveryDays,
	}
}

// PlaceOrder validates the checkout session and the cart, then creates
// and persists the order. Only one placement may be in flight at a time;
// a second call while one is pending is rejected without creating a
// second order.
func (f *OrderFactory) PlaceOrder(ctx context.Context, scopeKey string, session *CheckoutSession) (string, models.OpResult, error) {
	if !f.processing.CompareAndSwap(false, true) {
		util.OrdersFailedTotal.WithLabelValues("already_processing").Inc()
		return "", models.OpResult{Success: false, Message: MsgOrderInFlight}, nil
	}
	defer f.processing.Store(false)

	ctx, span := util.StartSpan(ctx, "OrderFactory.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderPlacementLatency.Observe(time.Since(start).Seconds())
	}()

	data := session.Data()
	cart := f.carts.Cart(ctx, scopeKey)

	if res, ok := f.validate(&data, cart); !ok {
		return "", res, nil
	}

	// Simulated processing latency, context-aware.
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", models.OpResult{}, ctx.Err()
		}
	}

	billing := *data.ShippingAddress
	if !data.SameAsShipping {
		billing = *data.BillingAddress
	}

	items := make([]models.CartItem, len(cart.Items))
	copy(items, cart.Items)

	now := time.Now()
	order := models.Order{
		ID:                uuid.New().String(),
		OrderNumber:       newOrderNumber(),
		Items:             items,
		ShippingAddress:   *data.ShippingAddress,
		BillingAddress:    billing,
		PaymentMethodType: data.PaymentMethodType,
		Pricing:           f.pricer.Breakdown(cart),
		Status:            models.OrderStatusConfirmed,
		Notes:             data.OrderNotes,
		CreatedAt:         now,
		EstimatedDelivery: now.AddDate(0, 0, f.deliveryDays),
	}

	var orders []models.Order
	if _, err := f.store.Load(ctx, store.OrdersKey(scopeKey), &orders); err != nil {
		util.OrdersFailedTotal.WithLabelValues("store_error").Inc()
		return "", models.OpResult{}, fmt.Errorf("failed to load order list: %w", err)
	}
	orders = append(orders, order)

	if err := f.store.Save(ctx, store.OrdersKey(scopeKey), orders); err != nil {
		util.OrdersFailedTotal.WithLabelValues("store_error").Inc()
		return "", models.OpResult{}, fmt.Errorf("failed to persist order: %w", err)
	}
	if err := f.store.Save(ctx, store.LastOrderKey(scopeKey), order); err != nil {
		f.logger.Error("Failed to persist last-order pointer",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}

	if _, err := f.carts.ClearCart(ctx, scopeKey); err != nil {
		f.logger.Error("Failed to clear cart after order placement",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}

	util.OrdersPlacedTotal.Inc()
	f.logger.Info("Order placed",
		zap.String("scope", scopeKey),
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total", order.Pricing.Total))

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: now,
		},
		ScopeKey:    scopeKey,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       order.Pricing.Total,
	}
	if err := f.publisher.PublishOrderPlaced(ctx, event); err != nil {
		f.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	return order.ID, models.OpResult{Success: true, Message: models.MsgOrderPlaced}, nil
}

// validate checks the review-step preconditions without touching state.
func (f *OrderFactory) validate(data *models.CheckoutData, cart *models.Cart) (models.OpResult, bool) {
	fail := func(message, reason string) (models.OpResult, bool) {
		util.OrdersFailedTotal.WithLabelValues(reason).Inc()
		return models.OpResult{Success: false, Message: message}, false
	}

	if len(cart.Items) == 0 {
		return fail(MsgOrderCartEmpty, "cart_empty")
	}
	if data.ShippingAddress == nil {
		return fail(MsgMissingShipping, "missing_shipping")
	}
	if !data.SameAsShipping && data.BillingAddress == nil {
		return fail(MsgMissingBilling, "missing_billing")
	}
	if data.PaymentMethodID == "" {
		return fail(MsgMissingPayment, "missing_payment")
	}
	if !data.AcceptTerms {
		return fail(MsgTermsNotAccepted, "terms_not_accepted")
	}
	return models.OpResult{}, true
}

// Orders returns the scope's order history, oldest first.
func (f *OrderFactory) Orders(ctx context.Context, scopeKey string) ([]models.Order, error) {
	var orders []models.Order
	if _, err := f.store.Load(ctx, store.OrdersKey(scopeKey), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// LastOrder returns the scope's most recent order, or nil.
func (f *OrderFactory) LastOrder(ctx context.Context, scopeKey string) (*models.Order, error) {
	var order models.Order
	ok, err := f.store.Load(ctx, store.LastOrderKey(scopeKey), &order)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &order, nil
}

// newOrderNumber generates the short human-facing order number. It is a
// separate id space from the order id.
func newOrderNumber() string {
	return fmt.Sprintf("ORD-%s", strings.ToUpper(uuid.New().String()[:8]))
}
