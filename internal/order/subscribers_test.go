package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/armanaros/p-town-pos/pkg"
)

func TestNewSnapshotSubscriber(t *testing.T) {
	tracker := NewTracker(NewMockFeed(), nil, nil)

	sub := NewSnapshotSubscriber(nil, tracker, nil)

	if sub == nil {
		t.Fatal("NewSnapshotSubscriber() returned nil")
	}
	if sub.logger == nil {
		t.Error("NewSnapshotSubscriber() should set noop logger when nil")
	}
	if sub.tracker != tracker {
		t.Error("NewSnapshotSubscriber() should set tracker")
	}
}

func TestSnapshotSubscriberStartNilSubscriber(t *testing.T) {
	sub := NewSnapshotSubscriber(nil, nil, nil)

	err := sub.Start(context.Background())
	if err == nil {
		t.Error("Start() with nil subscriber should return error")
	}

	expectedMsg := "order snapshot subscriber not configured"
	if err.Error() != expectedMsg {
		t.Errorf("Start() error = %q, want %q", err.Error(), expectedMsg)
	}
}

func TestSnapshotSubscriberStartSubscribesToTopic(t *testing.T) {
	events := NewMockSubscriber()
	tracker := NewTracker(NewMockFeed(), nil, nil)
	sub := NewSnapshotSubscriber(events, tracker, nil)

	if err := sub.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if events.Topic != pkg.OrdersSnapshotTopic {
		t.Errorf("subscribed topic = %q, want %q", events.Topic, pkg.OrdersSnapshotTopic)
	}
	if events.Handler == nil {
		t.Fatal("Start() should register a handler")
	}
}

func TestSnapshotSubscriberAppliesEvent(t *testing.T) {
	events := NewMockSubscriber()
	tracker := NewTracker(NewMockFeed(), nil, nil)
	sub := NewSnapshotSubscriber(events, tracker, nil)

	if err := sub.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	orders, _ := json.Marshal([]map[string]any{
		{"id": "o-1", "status": "pending", "total": 120, "createdAt": "2025-08-06T10:00:00Z"},
	})
	event, _ := json.Marshal(pkg.OrdersSnapshotEvent{
		EventType:  pkg.EventOrdersSnapshotWritten,
		OccurredAt: time.Now().UTC(),
		Source:     "other-process",
		Orders:     orders,
	})

	if err := events.Handler(context.Background(), event); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	got, ok := tracker.Get("o-1")
	if !ok {
		t.Fatal("snapshot event should populate canonical state")
	}
	if got.Total != 120 {
		t.Errorf("Total = %v, want 120", got.Total)
	}
}

func TestSnapshotSubscriberEventIgnoredAfterRemoteSync(t *testing.T) {
	events := NewMockSubscriber()
	tracker := NewTracker(NewMockFeed(), nil, nil)
	sub := NewSnapshotSubscriber(events, tracker, nil)

	if err := sub.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	at := time.Date(2025, 8, 6, 10, 0, 0, 0, time.UTC)
	tracker.ApplyRemote([]Order{testOrder("live", StatusPending, at)})

	orders, _ := json.Marshal([]map[string]any{{"id": "stale", "status": "pending"}})
	event, _ := json.Marshal(pkg.OrdersSnapshotEvent{EventType: pkg.EventOrdersSnapshotWritten, Orders: orders})

	if err := events.Handler(context.Background(), event); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	if _, ok := tracker.Get("stale"); ok {
		t.Error("snapshot event must not override a remote-synced tracker")
	}
	if _, ok := tracker.Get("live"); !ok {
		t.Error("remote state should survive snapshot events")
	}
}

func TestSnapshotSubscriberInvalidPayload(t *testing.T) {
	events := NewMockSubscriber()
	tracker := NewTracker(NewMockFeed(), nil, nil)
	sub := NewSnapshotSubscriber(events, tracker, nil)

	if err := sub.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := events.Handler(context.Background(), []byte("not json")); err != nil {
		t.Errorf("invalid payload should be dropped silently, got error %v", err)
	}
	if tracker.Count() != 0 {
		t.Error("invalid payload must not touch canonical state")
	}
}
