package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
)

// Tracker owns the canonical in-process order list. Both push sources feed it
// full replacement lists: the local snapshot store only counts until the first
// remote delivery, after which the remote feed is authoritative. All other
// components read through Tracker and never mutate the list themselves.
type Tracker struct {
	mu           sync.RWMutex
	orders       []Order
	index        map[string]int
	remoteSynced bool

	feed   Feed
	store  SnapshotStore
	logger apt.Logger
	now    func() time.Time

	unsubscribe Unsubscribe
	stopOnce    sync.Once
}

func NewTracker(feed Feed, store SnapshotStore, logger apt.Logger) *Tracker {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Tracker{
		index:  make(map[string]int),
		feed:   feed,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Start loads the cold-start fallback and opens the remote subscription.
// Called exactly once for the tracker's lifetime.
func (t *Tracker) Start(ctx context.Context) error {
	if t.store != nil {
		t.ApplySnapshot(t.store.Load(ctx))
	}

	if t.feed == nil {
		return fmt.Errorf("order tracker has no remote feed configured")
	}

	unsub, err := t.feed.Subscribe(ctx, t.ApplyRemote)
	if err != nil {
		return fmt.Errorf("subscribe to order feed: %w", err)
	}
	t.unsubscribe = unsub

	t.logger.Info("order tracker started", "orders", t.Count())
	return nil
}

// Stop releases the remote subscription. Safe to call more than once.
func (t *Tracker) Stop(ctx context.Context) error {
	t.stopOnce.Do(func() {
		if t.unsubscribe != nil {
			t.unsubscribe()
		}
		t.logger.Info("order tracker stopped")
	})
	return nil
}

// ApplySnapshot replaces the canonical list with a locally persisted one. A
// snapshot push is a fallback only: once any remote delivery has been seen it
// must never override the live view, so it is dropped.
func (t *Tracker) ApplySnapshot(orders []Order) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remoteSynced {
		t.logger.Debug("snapshot push ignored, remote feed already synced", "orders", len(orders))
		return
	}

	t.replaceLocked(orders)
	t.logger.Debug("canonical list replaced from local snapshot", "orders", len(orders))
}

// ApplyRemote replaces the canonical list with a remote feed delivery,
// unconditionally. The remote feed always carries the full current set, so
// replacement is whole-list; no per-record merging happens anywhere.
func (t *Tracker) ApplyRemote(orders []Order) {
	t.mu.Lock()
	t.remoteSynced = true
	t.replaceLocked(orders)
	t.mu.Unlock()

	t.logger.Debug("canonical list replaced from remote feed", "orders", len(orders))

	// Keep the local fallback warm for the next cold start. Best effort; a
	// failed write never disturbs canonical state.
	if t.store != nil {
		if err := t.store.Save(context.Background(), t.Orders()); err != nil {
			t.logger.Error("cannot persist order snapshot", "error", err)
		}
	}
}

// replaceLocked swaps in a fully-built copy so a reader never observes a
// partially-updated list. Must be called with t.mu held for writing.
func (t *Tracker) replaceLocked(orders []Order) {
	next := make([]Order, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		next[i] = o
		index[o.ID] = i
	}
	t.orders = next
	t.index = index
}

// Orders returns a copy of the canonical list in its current relative order.
func (t *Tracker) Orders() []Order {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Order, len(t.orders))
	copy(out, t.orders)
	return out
}

// Get returns the canonical order for id.
func (t *Tracker) Get(id string) (Order, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[id]
	if !ok {
		return Order{}, false
	}
	return t.orders[i], true
}

// Count returns the number of canonical orders.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.orders)
}

// ClearAllData empties canonical state and the local snapshot slot. Used only
// by administrative reset tooling; the remote store is left untouched and will
// repopulate the list on its next delivery if it still holds orders.
func (t *Tracker) ClearAllData(ctx context.Context) error {
	t.mu.Lock()
	t.replaceLocked(nil)
	t.mu.Unlock()

	if t.store == nil {
		return nil
	}
	if err := t.store.Save(ctx, []Order{}); err != nil {
		return fmt.Errorf("clear order snapshot: %w", err)
	}

	t.logger.Info("order data cleared")
	return nil
}
