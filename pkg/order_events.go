package pkg

import (
	"encoding/json"
	"time"
)

const (
	// OrdersSnapshotTopic delivers full-list order snapshots written by any
	// process sharing the local cache.
	OrdersSnapshotTopic = "pos.orders.snapshot"

	// EventOrdersSnapshotWritten identifies a snapshot-written payload.
	EventOrdersSnapshotWritten = "orders.snapshot.written"
)

// OrdersSnapshotEvent announces that a process persisted a new full order
// list. The event always carries the complete list, never a diff, so a
// consumer can replace its fallback state wholesale.
type OrdersSnapshotEvent struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Source     string          `json:"source,omitempty"`
	Orders     json.RawMessage `json:"orders"`
}
