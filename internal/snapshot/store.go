package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/armanaros/p-town-pos/internal/order"
	"github.com/armanaros/p-town-pos/pkg"
)

// Store is the durable local order-list slot: a JSON document on disk plus a
// NATS notification so sibling processes learn about every write. It is a
// cold-start fallback, never an authority; a corrupt or missing file degrades
// to the seed list or an empty list without surfacing an error.
type Store struct {
	path      string
	publisher events.Publisher
	logger    apt.Logger
	source    string
}

func New(path string, publisher events.Publisher, logger apt.Logger) *Store {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	source, _ := os.Hostname()
	return &Store{
		path:      path,
		publisher: publisher,
		logger:    logger,
		source:    source,
	}
}

// Load returns the last persisted order list. With no snapshot on disk yet it
// returns the fixed seed list; a snapshot that fails to deserialize is logged
// and degrades to an empty list.
func (s *Store) Load(ctx context.Context) []order.Order {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no order snapshot yet, starting from seed list", "path", s.path)
			return seedOrders()
		}
		s.logger.Error("cannot read order snapshot", "error", err, "path", s.path)
		return nil
	}

	var docs []map[string]any
	if err := json.Unmarshal(data, &docs); err != nil {
		s.logger.Error("order snapshot corrupt, ignoring", "error", err, "path", s.path)
		return nil
	}

	orders := make([]order.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, order.Normalize(doc))
	}
	return orders
}

// Save persists the full list and notifies sibling processes. The write goes
// through a temp file and rename, so a concurrent Load sees either the old or
// the new list, never a partial one.
func (s *Store) Save(ctx context.Context, orders []order.Order) error {
	if orders == nil {
		orders = []order.Order{}
	}

	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("cannot encode order snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".orders-*.json")
	if err != nil {
		return fmt.Errorf("cannot create snapshot temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot replace snapshot: %w", err)
	}

	s.notify(ctx, data)
	return nil
}

// notify announces the new snapshot. Best effort: the durable write already
// succeeded, a lost notification only delays sibling processes until their
// next cold start.
func (s *Store) notify(ctx context.Context, orders json.RawMessage) {
	if s.publisher == nil {
		return
	}

	event := pkg.OrdersSnapshotEvent{
		EventID:    uuid.NewString(),
		EventType:  pkg.EventOrdersSnapshotWritten,
		OccurredAt: time.Now().UTC(),
		Source:     s.source,
		Orders:     orders,
	}
	msg, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("cannot encode snapshot event", "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, pkg.OrdersSnapshotTopic, msg); err != nil {
		s.logger.Error("cannot publish snapshot event", "error", err)
	}
}

// seedOrders is the documented cold-start fallback used before any snapshot
// or remote delivery has ever been seen.
func seedOrders() []order.Order {
	opened := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	table := 1

	return []order.Order{
		{
			ID:           "seed-1",
			Items:        map[string]int{"1": 2, "3": 1},
			Status:       order.StatusPending,
			OrderType:    order.TypeDineIn,
			CreatedAt:    opened,
			UpdatedAt:    opened,
			Total:        185,
			CashierName:  "Admin",
			CustomerName: "Walk-in",
			TableNumber:  &table,
		},
		{
			ID:           "seed-2",
			Items:        map[string]int{"2": 1},
			Status:       order.StatusPending,
			OrderType:    order.TypeTakeOut,
			CreatedAt:    opened.Add(5 * time.Minute),
			UpdatedAt:    opened.Add(5 * time.Minute),
			Total:        95,
			CashierName:  "Admin",
			CustomerName: "Walk-in",
		},
	}
}
