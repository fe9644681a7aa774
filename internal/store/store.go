package store

import (
	"context"
	"fmt"
)

// PersistentStore is scoped key-value persistence with JSON encoding.
//
// Load reports whether a value was present. A record that fails to decode
// is treated as absent: the corrupted entry is discarded and Load returns
// (false, nil), never an error. Callers reinitialize from an empty state.
type PersistentStore interface {
	Load(ctx context.Context, key string, v interface{}) (bool, error)
	Save(ctx context.Context, key string, v interface{}) error
	Remove(ctx context.Context, key string) error
}

// CartKey returns the persistence key for a scope's cart.
func CartKey(scopeKey string) string {
	return fmt.Sprintf("cart:%s", scopeKey)
}

// OrdersKey returns the persistence key for a scope's order list.
func OrdersKey(scopeKey string) string {
	return fmt.Sprintf("orders:%s", scopeKey)
}

// LastOrderKey returns the persistence key for a scope's most recent order.
func LastOrderKey(scopeKey string) string {
	return fmt.Sprintf("orders:%s:last", scopeKey)
}

// BadgeKey returns the persistence key for a scope's badge snapshot.
func BadgeKey(scopeKey string) string {
	return fmt.Sprintf("badge:%s", scopeKey)
}
