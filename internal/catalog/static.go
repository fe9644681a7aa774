package catalog

import (
	"context"
	"sync"

	"checkout-service/internal/models"
)

// StaticCatalog is a fixed in-memory catalog for tests and dev mode.
type StaticCatalog struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

// NewStaticCatalog builds a catalog from the given products.
func NewStaticCatalog(products ...models.Product) *StaticCatalog {
	c := &StaticCatalog{products: make(map[string]models.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *StaticCatalog) GetByID(ctx context.Context, id string) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// SetStock adjusts a product's stock, e.g. after fulfillment in dev mode.
func (c *StaticCatalog) SetStock(id string, stock int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.products[id]; ok {
		p.Stock = stock
		c.products[id] = p
	}
}

// StaticPaymentMethods is a fixed payment-method registry.
type StaticPaymentMethods struct {
	byScope map[string]models.PaymentMethod
}

// NewStaticPaymentMethods builds a registry mapping scope keys to their
// default method.
func NewStaticPaymentMethods(byScope map[string]models.PaymentMethod) *StaticPaymentMethods {
	if byScope == nil {
		byScope = make(map[string]models.PaymentMethod)
	}
	return &StaticPaymentMethods{byScope: byScope}
}

func (r *StaticPaymentMethods) GetDefault(ctx context.Context, scopeKey string) (*models.PaymentMethod, error) {
	m, ok := r.byScope[scopeKey]
	if !ok {
		return nil, nil
	}
	return &m, nil
}
