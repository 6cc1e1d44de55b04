package order

import "context"

// Unsubscribe stops a feed subscription and releases its connection. Safe to
// call more than once; only the first call has effect.
type Unsubscribe func()

// Feed is the remote authoritative order store. Every change on the remote
// side produces a full-list delivery through Subscribe; Create and Update only
// acknowledge acceptance, the confirmed state always arrives via the feed.
type Feed interface {
	// Subscribe opens a long-lived push subscription. onSnapshot receives the
	// complete current order list at least once immediately, then again on
	// every remote change. Deliveries are serialized, never concurrent.
	Subscribe(ctx context.Context, onSnapshot func([]Order)) (Unsubscribe, error)

	// Create submits a new order. The remote side assigns the id when the
	// submitted one is empty. Returns once the write is acknowledged.
	Create(ctx context.Context, o Order) error

	// Update submits a partial field update for an existing order id.
	Update(ctx context.Context, id string, patch Patch) error
}

// SnapshotStore is the durable local slot holding the last-known full order
// list, used as a cold-start fallback while no remote snapshot has arrived.
type SnapshotStore interface {
	// Load returns the last persisted list, a fixed seed list when no snapshot
	// exists yet, or an empty list on a corrupt snapshot. It never errors.
	Load(ctx context.Context) []Order

	// Save persists the full list atomically from a concurrent reader's point
	// of view and notifies sibling processes.
	Save(ctx context.Context, orders []Order) error
}
