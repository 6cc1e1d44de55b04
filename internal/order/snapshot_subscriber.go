package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/armanaros/p-town-pos/pkg"
)

// SnapshotSubscriber listens for order snapshots written by sibling processes
// and pushes the carried list into the tracker as a snapshot-source delivery.
type SnapshotSubscriber struct {
	subscriber events.Subscriber
	tracker    *Tracker
	logger     apt.Logger
}

func NewSnapshotSubscriber(sub events.Subscriber, tracker *Tracker, logger apt.Logger) *SnapshotSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &SnapshotSubscriber{
		subscriber: sub,
		tracker:    tracker,
		logger:     logger,
	}
}

func (s *SnapshotSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting order snapshot subscriber", "topic", pkg.OrdersSnapshotTopic)
	if s.subscriber == nil {
		return fmt.Errorf("order snapshot subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, pkg.OrdersSnapshotTopic, s.handleEvent)
}

func (s *SnapshotSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var event pkg.OrdersSnapshotEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		s.logger.Info("invalid order snapshot event", "error", err)
		return nil
	}

	var docs []map[string]any
	if err := json.Unmarshal(event.Orders, &docs); err != nil {
		s.logger.Info("invalid order list in snapshot event", "error", err)
		return nil
	}

	orders := make([]Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, Normalize(doc))
	}

	s.tracker.ApplySnapshot(orders)
	s.logger.Debug("snapshot event applied", "source", event.Source, "orders", len(orders))
	return nil
}
