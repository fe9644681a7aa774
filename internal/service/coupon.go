package service

import (
	"strings"
	"sync"

	"checkout-service/internal/models"
)

// CouponResolver resolves a coupon code to a discount rule. Pricing is
// written against this interface so coupon rules can be swapped without
// touching it.
type CouponResolver interface {
	Resolve(code string) (models.Coupon, bool)
}

// TableResolver resolves codes against a fixed table. Codes are matched
// case-insensitively.
type TableResolver struct {
	mu    sync.RWMutex
	codes map[string]models.Coupon
}

// NewTableResolver builds a resolver from the given coupons.
func NewTableResolver(coupons ...models.Coupon) *TableResolver {
	r := &TableResolver{codes: make(map[string]models.Coupon, len(coupons))}
	for _, c := range coupons {
		c.Code = normalizeCode(c.Code)
		r.codes[c.Code] = c
	}
	return r
}

func (r *TableResolver) Resolve(code string) (models.Coupon, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codes[normalizeCode(code)]
	return c, ok
}

// Add registers or replaces a coupon.
func (r *TableResolver) Add(c models.Coupon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Code = normalizeCode(c.Code)
	r.codes[c.Code] = c
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DefaultCoupons returns the demo coupon table.
func DefaultCoupons() []models.Coupon {
	return []models.Coupon{
		{Code: "WELCOME10", Kind: models.CouponKindPercent, Value: 10},
		{Code: "COLLECT20", Kind: models.CouponKindPercent, Value: 20},
		{Code: "SAVE15", Kind: models.CouponKindFlat, Value: 1500},
	}
}
