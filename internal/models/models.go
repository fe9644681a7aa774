package models

import "time"

// Product is the read-only catalog view the cart consumes. Price is in
// minor currency units.
type Product struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	ImageURL string `db:"image_url" json:"image_url,omitempty"`
	Price    int64  `db:"price" json:"price"`
	Stock    int    `db:"stock" json:"stock"`
}

// CartItem is one line of a cart. UnitPrice and the display fields are
// snapshotted from the product at add time.
type CartItem struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url,omitempty"`
	UnitPrice int64  `json:"price"`
	Quantity  int    `json:"quantity,omitempty"`
}

// Qty returns the effective quantity. Legacy records persisted without a
// quantity field count as 1.
func (ci CartItem) Qty() int {
	if ci.Quantity <= 0 {
		return 1
	}
	return ci.Quantity
}

// Cart holds the line items and the active coupon for one scope key.
// Items are unique by ProductID.
type Cart struct {
	Items      []CartItem `json:"items"`
	CouponCode string     `json:"coupon_code,omitempty"`
}

// PriceBreakdown is derived from the cart on every read, never stored on
// its own. The only persisted copies are the ones frozen into orders.
type PriceBreakdown struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

// Address is a contact plus postal address record, used for both shipping
// and billing.
type Address struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PaymentMethod is an opaque reference to a stored payment record.
type PaymentMethod struct {
	ID        string `db:"id" json:"id"`
	Type      string `db:"method_type" json:"type"`
	Label     string `db:"label" json:"label"`
	IsDefault bool   `db:"is_default" json:"is_default"`
}

// CheckoutStep is one stage of the linear checkout flow.
type CheckoutStep string

const (
	StepShipping CheckoutStep = "shipping"
	StepBilling  CheckoutStep = "billing"
	StepPayment  CheckoutStep = "payment"
	StepReview   CheckoutStep = "review"
)

// CheckoutData is the working state of one checkout session. It lives in
// memory only and is discarded after order placement.
type CheckoutData struct {
	ShippingAddress     *Address     `json:"shipping_address,omitempty"`
	BillingAddress      *Address     `json:"billing_address,omitempty"`
	SameAsShipping      bool         `json:"same_as_shipping"`
	PaymentMethodID     string       `json:"payment_method_id,omitempty"`
	PaymentMethodType   string       `json:"payment_method_type,omitempty"`
	OrderNotes          string       `json:"order_notes,omitempty"`
	AcceptTerms         bool         `json:"accept_terms"`
	SubscribeNewsletter bool         `json:"subscribe_newsletter"`
	CurrentStep         CheckoutStep `json:"current_step"`
}

// Order statuses
const (
	OrderStatusConfirmed = "CONFIRMED"
)

// Order is an immutable snapshot of a completed checkout. Nothing in the
// cart/checkout core mutates an order after creation.
type Order struct {
	ID                string         `json:"id"`
	OrderNumber       string         `json:"order_number"`
	Items             []CartItem     `json:"items"`
	ShippingAddress   Address        `json:"shipping_address"`
	BillingAddress    Address        `json:"billing_address"`
	PaymentMethodType string         `json:"payment_method_type"`
	Pricing           PriceBreakdown `json:"pricing"`
	Status            string         `json:"status"`
	Notes             string         `json:"notes,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	EstimatedDelivery time.Time      `json:"estimated_delivery"`
}

// Coupon kinds
const (
	CouponKindPercent = "PERCENT"
	CouponKindFlat    = "FLAT"
)

// Coupon is a discount rule resolved from a code. Value is a percentage
// for PERCENT coupons and a minor-unit amount for FLAT coupons.
type Coupon struct {
	Code  string `json:"code"`
	Kind  string `json:"kind"`
	Value int64  `json:"value"`
}

// DiscountFor computes the discount this coupon yields for a subtotal.
// Percentage discounts never exceed the subtotal.
func (c Coupon) DiscountFor(subtotal int64) int64 {
	switch c.Kind {
	case CouponKindPercent:
		d := subtotal * c.Value / 100
		if d > subtotal {
			d = subtotal
		}
		return d
	case CouponKindFlat:
		return c.Value
	default:
		return 0
	}
}

// OpResult is the outcome of a cart or checkout mutation. Failures carry a
// short user-facing message and imply no state change.
type OpResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CouponResult is the outcome of a coupon application.
type CouponResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Discount int64  `json:"discount"`
}

// User-facing operation messages
const (
	MsgAddedToCart      = "Added to cart"
	MsgQuantityUpdated  = "Quantity updated"
	MsgRemovedFromCart  = "Removed from cart"
	MsgNotEnoughStock   = "Not enough stock"
	MsgCartEmpty        = "Cart is empty"
	MsgProductNotInCart = "Product not in cart"
	MsgInvalidQuantity  = "Invalid quantity"
	MsgCartCleared      = "Cart cleared"
	MsgCouponApplied    = "Coupon applied"
	MsgCouponRemoved    = "Coupon removed"
	MsgInvalidCoupon    = "Invalid coupon code"
	MsgOrderPlaced      = "Order placed"
)

// BadgeSnapshot is the materialized cart summary the badge worker keeps
// for the counter UI.
type BadgeSnapshot struct {
	ItemCount int       `json:"item_count"`
	CartTotal int64     `json:"cart_total"`
	UpdatedAt time.Time `json:"updated_at"`
}
