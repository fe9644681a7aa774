package worker

import (
	"context"
	"log"

	"checkout-service/internal/broker"
	"checkout-service/internal/models"
	"checkout-service/internal/store"
)

// BadgeWorker consumes cart and order events and keeps a per-scope badge
// snapshot (item count, cart total) materialized for the counter UI.
type BadgeWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        store.PersistentStore
}

// NewBadgeWorker creates a new badge worker
func NewBadgeWorker(consumer *broker.Consumer, st store.PersistentStore) *BadgeWorker {
	w := &BadgeWorker{
		consumer: consumer,
		store:    st,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnCartUpdated(w.handleCartUpdated)
	eventHandler.OnCartCleared(w.handleCartCleared)
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *BadgeWorker) Start(ctx context.Context) error {
	log.Println("Starting badge worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *BadgeWorker) Stop() error {
	log.Println("Stopping badge worker...")
	return w.consumer.Close()
}

func (w *BadgeWorker) handleCartUpdated(ctx context.Context, event *models.CartUpdatedEvent) error {
	snapshot := models.BadgeSnapshot{
		ItemCount: event.ItemCount,
		CartTotal: event.CartTotal,
		UpdatedAt: event.Timestamp,
	}
	return w.store.Save(ctx, store.BadgeKey(event.ScopeKey), snapshot)
}

func (w *BadgeWorker) handleCartCleared(ctx context.Context, event *models.CartClearedEvent) error {
	snapshot := models.BadgeSnapshot{UpdatedAt: event.Timestamp}
	return w.store.Save(ctx, store.BadgeKey(event.ScopeKey), snapshot)
}

func (w *BadgeWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	log.Printf("Order placed: scope=%s, order=%s, total=%d",
		event.ScopeKey, event.OrderNumber, event.Total)
	// The cart-cleared event that follows placement resets the badge.
	return nil
}
