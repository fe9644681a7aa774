package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"checkout-service/internal/catalog"
	"checkout-service/internal/models"
	"checkout-service/internal/service"
	"checkout-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	carts    *service.CartService
	orders   *service.OrderFactory
	catalog  catalog.ProductCatalog
	payments catalog.PaymentMethodRegistry
	identity service.IdentityProvider

	mu       sync.Mutex
	sessions map[string]*service.CheckoutSession
}

// NewHandler creates a new HTTP handler
func NewHandler(
	carts *service.CartService,
	orders *service.OrderFactory,
	cat catalog.ProductCatalog,
	payments catalog.PaymentMethodRegistry,
	identity service.IdentityProvider,
) *Handler {
	return &Handler{
		carts:    carts,
		orders:   orders,
		catalog:  cat,
		payments: payments,
		identity: identity,
		sessions: make(map[string]*service.CheckoutSession),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addToCart)
		v1.PATCH("/cart/items/:productId", h.updateQuantity)
		v1.DELETE("/cart/items/:productId", h.removeFromCart)
		v1.DELETE("/cart", h.clearCart)
		v1.POST("/cart/coupon", h.applyCoupon)
		v1.DELETE("/cart/coupon", h.removeCoupon)

		v1.GET("/checkout", h.getCheckout)
		v1.PUT("/checkout/shipping-address", h.updateShippingAddress)
		v1.PUT("/checkout/billing-address", h.updateBillingAddress)
		v1.PUT("/checkout/payment", h.setPaymentMethod)
		v1.PUT("/checkout/options", h.setCheckoutOptions)
		v1.POST("/checkout/next", h.nextStep)
		v1.POST("/checkout/prev", h.prevStep)

		v1.POST("/orders", h.placeOrder)
		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/last", h.lastOrder)
	}
}

// scopeKey resolves the persistence scope for a request: an explicit
// X-Scope-Key header wins, otherwise the identity provider's current key.
func (h *Handler) scopeKey(c *gin.Context) string {
	if scope := c.GetHeader("X-Scope-Key"); scope != "" {
		return scope
	}
	return h.identity.CurrentScopeKey()
}

// session returns the checkout session for a scope, creating it on first
// use. Sessions live in memory only; carts survive restarts, sessions do
// not.
func (h *Handler) session(scope string) *service.CheckoutSession {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[scope]
	if !ok {
		s = service.NewCheckoutSession()
		h.sessions[scope] = s
	}
	return s
}

func (h *Handler) dropSession(scope string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, scope)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getCart returns the cart with its freshly computed breakdown.
func (h *Handler) getCart(c *gin.Context) {
	scope := h.scopeKey(c)
	ctx := c.Request.Context()

	cart := h.carts.Cart(ctx, scope)
	c.JSON(http.StatusOK, gin.H{
		"cart":       cart,
		"breakdown":  h.carts.Breakdown(ctx, scope),
		"item_count": h.carts.CartItemCount(ctx, scope),
	})
}

type addToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// addToCart handles adding a product to the cart
func (h *Handler) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.GetByID(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Catalog lookup failed"})
		return
	}

	res, err := h.carts.AddToCart(c.Request.Context(), h.scopeKey(c), product, req.Quantity)
	h.respondResult(c, res, err)
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// updateQuantity handles quantity changes for one cart line
func (h *Handler) updateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	res, err := h.carts.UpdateQuantity(c.Request.Context(), h.scopeKey(c), c.Param("productId"), *req.Quantity)
	h.respondResult(c, res, err)
}

// removeFromCart handles removing a cart line
func (h *Handler) removeFromCart(c *gin.Context) {
	res, err := h.carts.RemoveFromCart(c.Request.Context(), h.scopeKey(c), c.Param("productId"))
	h.respondResult(c, res, err)
}

// clearCart handles emptying the cart
func (h *Handler) clearCart(c *gin.Context) {
	res, err := h.carts.ClearCart(c.Request.Context(), h.scopeKey(c))
	h.respondResult(c, res, err)
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

// applyCoupon handles coupon application
func (h *Handler) applyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	res, err := h.carts.ApplyCoupon(c.Request.Context(), h.scopeKey(c), req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed", "details": err.Error()})
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, res)
}

// removeCoupon handles coupon removal
func (h *Handler) removeCoupon(c *gin.Context) {
	res, err := h.carts.RemoveCoupon(c.Request.Context(), h.scopeKey(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// getCheckout returns the session state and the step-gating predicate.
func (h *Handler) getCheckout(c *gin.Context) {
	session := h.session(h.scopeKey(c))
	c.JSON(http.StatusOK, gin.H{
		"checkout":    session.Data(),
		"can_proceed": session.CanProceed(),
	})
}

// updateShippingAddress sets the shipping address
func (h *Handler) updateShippingAddress(c *gin.Context) {
	var addr models.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	session := h.session(h.scopeKey(c))
	session.UpdateShippingAddress(addr)
	c.JSON(http.StatusOK, gin.H{"checkout": session.Data()})
}

// updateBillingAddress sets the billing address
func (h *Handler) updateBillingAddress(c *gin.Context) {
	var addr models.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	session := h.session(h.scopeKey(c))
	session.UpdateBillingAddress(addr)
	c.JSON(http.StatusOK, gin.H{"checkout": session.Data()})
}

type setPaymentRequest struct {
	PaymentMethodID   string `json:"payment_method_id"`
	PaymentMethodType string `json:"payment_method_type"`
}

// setPaymentMethod selects a payment method; with no id in the body the
// scope's default method from the registry is used.
func (h *Handler) setPaymentMethod(c *gin.Context) {
	var req setPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	scope := h.scopeKey(c)
	session := h.session(scope)

	if req.PaymentMethodID == "" {
		method, err := h.payments.GetDefault(c.Request.Context(), scope)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment method lookup failed"})
			return
		}
		if method == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No payment method on file"})
			return
		}
		session.SetPaymentMethod(method.ID, method.Type)
	} else {
		session.SetPaymentMethod(req.PaymentMethodID, req.PaymentMethodType)
	}

	c.JSON(http.StatusOK, gin.H{"checkout": session.Data()})
}

type checkoutOptionsRequest struct {
	SameAsShipping      *bool   `json:"same_as_shipping"`
	AcceptTerms         *bool   `json:"accept_terms"`
	SubscribeNewsletter *bool   `json:"subscribe_newsletter"`
	OrderNotes          *string `json:"order_notes"`
}

// setCheckoutOptions updates the checkout flags and notes
func (h *Handler) setCheckoutOptions(c *gin.Context) {
	var req checkoutOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	session := h.session(h.scopeKey(c))
	if req.SameAsShipping != nil {
		session.SetSameAsShipping(*req.SameAsShipping)
	}
	if req.AcceptTerms != nil {
		session.SetAcceptTerms(*req.AcceptTerms)
	}
	if req.SubscribeNewsletter != nil {
		session.SetSubscribeNewsletter(*req.SubscribeNewsletter)
	}
	if req.OrderNotes != nil {
		session.SetOrderNotes(*req.OrderNotes)
	}

	c.JSON(http.StatusOK, gin.H{"checkout": session.Data()})
}

// nextStep advances the checkout; the gate check happens here, the state
// machine itself is permissive.
func (h *Handler) nextStep(c *gin.Context) {
	session := h.session(h.scopeKey(c))
	if !session.CanProceed() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Current step is incomplete",
			"step":  session.CurrentStep(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"step": session.NextStep()})
}

// prevStep steps the checkout back
func (h *Handler) prevStep(c *gin.Context) {
	session := h.session(h.scopeKey(c))
	c.JSON(http.StatusOK, gin.H{"step": session.PrevStep()})
}

// placeOrder handles order placement
func (h *Handler) placeOrder(c *gin.Context) {
	scope := h.scopeKey(c)
	session := h.session(scope)

	orderID, res, err := h.orders.PlaceOrder(c.Request.Context(), scope, session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to place order",
			"details": err.Error(),
		})
		return
	}
	if !res.Success {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}

	h.dropSession(scope)
	c.JSON(http.StatusCreated, gin.H{
		"order_id": orderID,
		"message":  res.Message,
	})
}

// listOrders returns the scope's order history
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.Orders(c.Request.Context(), h.scopeKey(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// lastOrder returns the scope's most recent order
func (h *Handler) lastOrder(c *gin.Context) {
	order, err := h.orders.LastOrder(c.Request.Context(), h.scopeKey(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No orders yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) respondResult(c *gin.Context, res models.OpResult, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Operation failed",
			"details": err.Error(),
		})
		return
	}
	if !res.Success {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
