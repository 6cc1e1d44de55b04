package order

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestOrdersByStatus(t *testing.T) {
	tracker := NewTracker(NewMockFeed(), nil, nil)
	at := time.Date(2025, 8, 6, 10, 0, 0, 0, time.UTC)

	tracker.ApplyRemote([]Order{
		testOrder("a", StatusPending, at),
		testOrder("b", StatusReady, at),
		testOrder("c", StatusPending, at),
	})

	got := tracker.OrdersByStatus(StatusPending)
	if len(got) != 2 {
		t.Fatalf("OrdersByStatus(pending) = %d entries, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("relative order = [%s %s], want [a c]", got[0].ID, got[1].ID)
	}
}

func TestQueueOrdersFiltersAndSorts(t *testing.T) {
	tracker := NewTracker(NewMockFeed(), nil, nil)
	base := time.Date(2025, 8, 6, 10, 0, 0, 0, time.UTC)

	tracker.ApplyRemote([]Order{
		testOrder("newest", StatusPending, base.Add(2*time.Hour)),
		testOrder("done", StatusCompleted, base),
		testOrder("oldest", StatusReady, base),
		testOrder("gone", StatusCancelled, base),
		testOrder("middle", StatusPreparing, base.Add(time.Hour)),
		testOrder("out", StatusServed, base),
	})

	got := tracker.QueueOrders()

	wantIDs := []string{"oldest", "middle", "newest"}
	if len(got) != len(wantIDs) {
		t.Fatalf("QueueOrders() = %d entries, want %d", len(got), len(wantIDs))
	}
	for i, want := range wantIDs {
		if got[i].ID != want {
			t.Errorf("QueueOrders()[%d] = %s, want %s", i, got[i].ID, want)
		}
	}

	for _, o := range got {
		switch o.Status {
		case StatusServed, StatusCompleted, StatusCancelled:
			t.Errorf("queue must never contain a %s order", o.Status)
		}
	}
}

func TestQueueOrdersStableOnTies(t *testing.T) {
	tracker := NewTracker(NewMockFeed(), nil, nil)
	at := time.Date(2025, 8, 6, 10, 0, 0, 0, time.UTC)

	tracker.ApplyRemote([]Order{
		testOrder("first", StatusPending, at),
		testOrder("second", StatusPending, at),
		testOrder("third", StatusPending, at),
	})

	got := tracker.QueueOrders()
	if got[0].ID != "first" || got[1].ID != "second" || got[2].ID != "third" {
		t.Errorf("equal timestamps must keep canonical order, got [%s %s %s]",
			got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestCounts(t *testing.T) {
	tracker := NewTracker(NewMockFeed(), nil, nil)
	at := time.Date(2025, 8, 6, 10, 0, 0, 0, time.UTC)

	tracker.ApplyRemote([]Order{
		testOrder("a", StatusPending, at),
		testOrder("b", StatusPreparing, at),
		testOrder("c", StatusReady, at),
		testOrder("d", StatusServed, at),
		testOrder("e", StatusCompleted, at),
		testOrder("f", StatusCancelled, at),
	})

	if got := tracker.PendingCount(); got != 3 {
		t.Errorf("PendingCount() = %d, want 3", got)
	}
	// Served orders count as fulfilled.
	if got := tracker.CompletedCount(); got != 2 {
		t.Errorf("CompletedCount() = %d, want 2", got)
	}
}

func TestSalesByDate(t *testing.T) {
	tracker := NewTracker(NewMockFeed(), nil, nil)

	o1 := testOrder("s1", StatusCompleted, time.Date(2025, 8, 6, 19, 0, 0, 0, time.UTC))
	o1.Total = 580
	o2 := testOrder("s2", StatusCompleted, time.Date(2025, 8, 6, 20, 0, 0, 0, time.UTC))
	o2.Total = 300
	open := testOrder("q1", StatusPending, time.Date(2025, 8, 6, 21, 0, 0, 0, time.UTC))
	open.Total = 999

	tracker.ApplyRemote([]Order{o1, o2, open})

	buckets := tracker.SalesByDate()
	if len(buckets) != 1 {
		t.Fatalf("SalesByDate() = %d buckets, want 1", len(buckets))
	}

	bucket := buckets[0]
	if bucket.Date != "2025-08-06" {
		t.Errorf("Date = %q, want %q", bucket.Date, "2025-08-06")
	}
	if bucket.TotalSales != 880 {
		t.Errorf("TotalSales = %v, want 880", bucket.TotalSales)
	}
	if bucket.OrderCount != 2 {
		t.Errorf("OrderCount = %d, want 2", bucket.OrderCount)
	}
	if len(bucket.Orders) != 2 {
		t.Errorf("contributing orders = %d, want 2", len(bucket.Orders))
	}
}

func TestSalesByDateBucketsByUTCDay(t *testing.T) {
	tracker := NewTracker(NewMockFeed(), nil, nil)

	// 23:30 UTC on the 5th stays on the 5th regardless of any local zone.
	late := testOrder("late", StatusCompleted, time.Date(2025, 8, 5, 23, 30, 0, 0, time.UTC))
	early := testOrder("early", StatusCompleted, time.Date(2025, 8, 6, 0, 30, 0, 0, time.UTC))
	tracker.ApplyRemote([]Order{late, early})

	buckets := tracker.SalesByDate()
	if len(buckets) != 2 {
		t.Fatalf("SalesByDate() = %d buckets, want 2", len(buckets))
	}
	if buckets[0].Date != "2025-08-05" || buckets[1].Date != "2025-08-06" {
		t.Errorf("bucket dates = [%s %s], want sorted [2025-08-05 2025-08-06]",
			buckets[0].Date, buckets[1].Date)
	}
}

func TestSalesByDateSparse(t *testing.T) {
	tracker := NewTracker(NewMockFeed(), nil, nil)
	tracker.ApplyRemote([]Order{
		testOrder("open", StatusPending, time.Date(2025, 8, 6, 10, 0, 0, 0, time.UTC)),
	})

	if got := tracker.SalesByDate(); len(got) != 0 {
		t.Errorf("SalesByDate() with no completed orders = %d buckets, want 0", len(got))
	}
}

func TestSalesByDateIdempotent(t *testing.T) {
	tracker := NewTracker(NewMockFeed(), nil, nil)

	o1 := testOrder("s1", StatusCompleted, time.Date(2025, 8, 5, 12, 0, 0, 0, time.UTC))
	o2 := testOrder("s2", StatusCompleted, time.Date(2025, 8, 6, 12, 0, 0, 0, time.UTC))
	o3 := testOrder("s3", StatusCompleted, time.Date(2025, 8, 6, 13, 0, 0, 0, time.UTC))
	tracker.ApplyRemote([]Order{o1, o2, o3})

	first := tracker.SalesByDate()
	second := tracker.SalesByDate()

	if !reflect.DeepEqual(first, second) {
		t.Error("SalesByDate() should be deterministic over unchanged state")
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal first result: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal second result: %v", err)
	}
	if string(a) != string(b) {
		t.Error("SalesByDate() results should be byte-identical across calls")
	}
}
