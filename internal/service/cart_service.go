package service

import (
	"context"
	"sync"
	"time"

	"checkout-service/internal/broker"
	"checkout-service/internal/catalog"
	"checkout-service/internal/models"
	"checkout-service/internal/store"
	"checkout-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService owns the live cart for each scope key. Items are unique by
// product: adding an existing product updates its quantity in place, and
// no mutation may push a quantity past the product's current stock.
type CartService struct {
	store     store.PersistentStore
	catalog   catalog.ProductCatalog
	coupons   CouponResolver
	pricer    *Pricer
	publisher broker.Publisher
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewCartService creates a new cart service
func NewCartService(
	st store.PersistentStore,
	cat catalog.ProductCatalog,
	coupons CouponResolver,
	pricer *Pricer,
	publisher broker.Publisher,
) *CartService {
	return &CartService{
		store:     st,
		catalog:   cat,
		coupons:   coupons,
		pricer:    pricer,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// loadCart reads the persisted cart for a scope. A missing, corrupted or
// unreadable record degrades to an empty cart.
func (s *CartService) loadCart(ctx context.Context, scopeKey string) *models.Cart {
	var cart models.Cart
	ok, err := s.store.Load(ctx, store.CartKey(scopeKey), &cart)
	if err != nil {
		s.logger.Warn("Cart load failed, starting empty",
			zap.String("scope", scopeKey),
			zap.Error(err))
		return &models.Cart{}
	}
	if !ok {
		return &models.Cart{}
	}
	return &cart
}

func (s *CartService) saveCart(ctx context.Context, scopeKey string, cart *models.Cart) error {
	if len(cart.Items) == 0 && cart.CouponCode == "" {
		return s.store.Remove(ctx, store.CartKey(scopeKey))
	}
	return s.store.Save(ctx, store.CartKey(scopeKey), cart)
}

// AddToCart adds quantity units of the product, or bumps the existing
// line. Quantities below 1 are rejected, as is any quantity that would
// exceed the product's stock.
func (s *CartService) AddToCart(ctx context.Context, scopeKey string, product *models.Product, quantity int) (models.OpResult, error) {
	if quantity < 1 {
		util.CartMutationsFailed.WithLabelValues("invalid_quantity").Inc()
		return models.OpResult{Success: false, Message: models.MsgInvalidQuantity}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.loadCart(ctx, scopeKey)

	idx := -1
	for i, item := range cart.Items {
		if item.ProductID == product.ID {
			idx = i
			break
		}
	}

	proposed := quantity
	if idx >= 0 {
		proposed = cart.Items[idx].Qty() + quantity
	}
	if proposed > product.Stock {
		util.CartMutationsFailed.WithLabelValues("insufficient_stock").Inc()
		return models.OpResult{Success: false, Message: models.MsgNotEnoughStock}, nil
	}

	message := models.MsgAddedToCart
	if idx >= 0 {
		cart.Items[idx].Quantity = proposed
		message = models.MsgQuantityUpdated
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			UnitPrice: product.Price,
			Quantity:  quantity,
		})
	}

	if err := s.saveCart(ctx, scopeKey, cart); err != nil {
		return models.OpResult{}, err
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	s.logger.Info("Cart item added",
		zap.String("scope", scopeKey),
		zap.String("product_id", product.ID),
		zap.Int("quantity", proposed))

	s.notifyCartUpdated(ctx, scopeKey, cart)
	return models.OpResult{Success: true, Message: message}, nil
}

// RemoveFromCart removes the product's line entirely.
func (s *CartService) RemoveFromCart(ctx context.Context, scopeKey, productID string) (models.OpResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.loadCart(ctx, scopeKey)
	if len(cart.Items) == 0 {
		util.CartMutationsFailed.WithLabelValues("cart_empty").Inc()
		return models.OpResult{Success: false, Message: models.MsgCartEmpty}, nil
	}

	idx := -1
	for i, item := range cart.Items {
		if item.ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		util.CartMutationsFailed.WithLabelValues("not_in_cart").Inc()
		return models.OpResult{Success: false, Message: models.MsgProductNotInCart}, nil
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.saveCart(ctx, scopeKey, cart); err != nil {
		return models.OpResult{}, err
	}

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	s.notifyCartUpdated(ctx, scopeKey, cart)
	return models.OpResult{Success: true, Message: models.MsgRemovedFromCart}, nil
}

// UpdateQuantity sets the product's quantity. Zero behaves as removal,
// negative quantities are rejected, and the product's current stock is the
// ceiling.
func (s *CartService) UpdateQuantity(ctx context.Context, scopeKey, productID string, quantity int) (models.OpResult, error) {
	if quantity < 0 {
		util.CartMutationsFailed.WithLabelValues("invalid_quantity").Inc()
		return models.OpResult{Success: false, Message: models.MsgInvalidQuantity}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.loadCart(ctx, scopeKey)

	idx := -1
	for i, item := range cart.Items {
		if item.ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		util.CartMutationsFailed.WithLabelValues("not_in_cart").Inc()
		return models.OpResult{Success: false, Message: models.MsgProductNotInCart}, nil
	}

	if quantity == 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		if err := s.saveCart(ctx, scopeKey, cart); err != nil {
			return models.OpResult{}, err
		}
		util.CartMutationsTotal.WithLabelValues("remove").Inc()
		s.notifyCartUpdated(ctx, scopeKey, cart)
		return models.OpResult{Success: true, Message: models.MsgRemovedFromCart}, nil
	}

	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return models.OpResult{}, err
	}
	if quantity > product.Stock {
		util.CartMutationsFailed.WithLabelValues("insufficient_stock").Inc()
		return models.OpResult{Success: false, Message: models.MsgNotEnoughStock}, nil
	}

	cart.Items[idx].Quantity = quantity

	if err := s.saveCart(ctx, scopeKey, cart); err != nil {
		return models.OpResult{}, err
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	s.notifyCartUpdated(ctx, scopeKey, cart)
	return models.OpResult{Success: true, Message: models.MsgQuantityUpdated}, nil
}

// ClearCart drops the cart and its persisted record. Clearing an empty
// cart succeeds the same way.
func (s *CartService) ClearCart(ctx context.Context, scopeKey string) (models.OpResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(ctx, store.CartKey(scopeKey)); err != nil {
		return models.OpResult{}, err
	}

	util.CartMutationsTotal.WithLabelValues("clear").Inc()

	event := &models.CartClearedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCartCleared,
			Timestamp: time.Now(),
		},
		ScopeKey: scopeKey,
	}
	if err := s.publisher.PublishCartCleared(ctx, event); err != nil {
		s.logger.Error("Failed to publish CartCleared event", zap.Error(err))
	}

	return models.OpResult{Success: true, Message: models.MsgCartCleared}, nil
}

// ApplyCoupon applies a coupon code to the cart. An empty code removes the
// active coupon; an unknown code also clears it but reports failure.
func (s *CartService) ApplyCoupon(ctx context.Context, scopeKey, code string) (models.CouponResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.loadCart(ctx, scopeKey)

	if code == "" {
		cart.CouponCode = ""
		if err := s.saveCart(ctx, scopeKey, cart); err != nil {
			return models.CouponResult{}, err
		}
		util.CouponAppliesTotal.WithLabelValues("removed").Inc()
		return models.CouponResult{Success: true, Message: models.MsgCouponRemoved}, nil
	}

	coupon, ok := s.coupons.Resolve(code)
	if !ok {
		cart.CouponCode = ""
		if err := s.saveCart(ctx, scopeKey, cart); err != nil {
			return models.CouponResult{}, err
		}
		util.CouponAppliesTotal.WithLabelValues("invalid").Inc()
		return models.CouponResult{Success: false, Message: models.MsgInvalidCoupon}, nil
	}

	cart.CouponCode = coupon.Code
	if err := s.saveCart(ctx, scopeKey, cart); err != nil {
		return models.CouponResult{}, err
	}

	discount := coupon.DiscountFor(Subtotal(cart))
	util.CouponAppliesTotal.WithLabelValues("applied").Inc()
	s.logger.Info("Coupon applied",
		zap.String("scope", scopeKey),
		zap.String("code", coupon.Code),
		zap.Int64("discount", discount))

	return models.CouponResult{Success: true, Message: models.MsgCouponApplied, Discount: discount}, nil
}

// RemoveCoupon clears the active coupon.
func (s *CartService) RemoveCoupon(ctx context.Context, scopeKey string) (models.CouponResult, error) {
	return s.ApplyCoupon(ctx, scopeKey, "")
}

// Cart returns a copy of the current cart.
func (s *CartService) Cart(ctx context.Context, scopeKey string) *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.loadCart(ctx, scopeKey)
	items := make([]models.CartItem, len(cart.Items))
	copy(items, cart.Items)
	return &models.Cart{Items: items, CouponCode: cart.CouponCode}
}

// Breakdown recomputes the price breakdown for the current cart.
func (s *CartService) Breakdown(ctx context.Context, scopeKey string) models.PriceBreakdown {
	return s.pricer.Breakdown(s.Cart(ctx, scopeKey))
}

// CartTotal returns the sum of unit price times quantity.
func (s *CartService) CartTotal(ctx context.Context, scopeKey string) int64 {
	return Subtotal(s.Cart(ctx, scopeKey))
}

// CartItemCount returns the sum of quantities.
func (s *CartService) CartItemCount(ctx context.Context, scopeKey string) int {
	return ItemCount(s.Cart(ctx, scopeKey))
}

// IsInCart reports whether the product has a line in the cart.
func (s *CartService) IsInCart(ctx context.Context, scopeKey, productID string) bool {
	cart := s.Cart(ctx, scopeKey)
	for _, item := range cart.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *CartService) notifyCartUpdated(ctx context.Context, scopeKey string, cart *models.Cart) {
	event := &models.CartUpdatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCartUpdated,
			Timestamp: time.Now(),
		},
		ScopeKey:  scopeKey,
		ItemCount: ItemCount(cart),
		CartTotal: Subtotal(cart),
	}
	if err := s.publisher.PublishCartUpdated(ctx, event); err != nil {
		s.logger.Error("Failed to publish CartUpdated event", zap.Error(err))
	}
}
