package order

import (
	"sort"
	"time"
)

// Read-side queries. All of them work on a copy of the latest reconciled
// snapshot and have no side effects.

// SalesBucket is a date-keyed aggregate of completed orders. Derived only,
// never persisted.
type SalesBucket struct {
	Date       string  `json:"date"`
	TotalSales float64 `json:"totalSales"`
	OrderCount int     `json:"orderCount"`
	Orders     []Order `json:"orders"`
}

// OrdersByStatus returns orders with exactly the given status, preserving
// their relative order in the canonical list.
func (t *Tracker) OrdersByStatus(status string) []Order {
	all := t.Orders()
	out := make([]Order, 0, len(all))
	for _, o := range all {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// QueueOrders returns the operational work queue: orders still pending,
// preparing or ready, oldest first. Orders created at the same instant keep
// their canonical relative order.
func (t *Tracker) QueueOrders() []Order {
	all := t.Orders()
	out := make([]Order, 0, len(all))
	for _, o := range all {
		if inQueue(o.Status) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// PendingCount counts orders in the queue partition (pending, preparing,
// ready).
func (t *Tracker) PendingCount() int {
	count := 0
	for _, o := range t.Orders() {
		if inQueue(o.Status) {
			count++
		}
	}
	return count
}

// CompletedCount counts fulfilled orders. Served orders count as fulfilled for
// this purpose even though they have not been closed out yet.
func (t *Tracker) CompletedCount() int {
	count := 0
	for _, o := range t.Orders() {
		if o.Status == StatusCompleted || o.Status == StatusServed {
			count++
		}
	}
	return count
}

// SalesByDate groups completed orders by the UTC calendar day of createdAt.
// Days without a completed order produce no bucket; callers needing a dense
// range synthesize the missing dates themselves. Buckets come back sorted by
// date, so repeated calls over unchanged state yield identical results.
func (t *Tracker) SalesByDate() []SalesBucket {
	byDate := make(map[string]*SalesBucket)
	for _, o := range t.Orders() {
		if o.Status != StatusCompleted {
			continue
		}
		date := o.CreatedAt.UTC().Format(time.DateOnly)
		bucket, ok := byDate[date]
		if !ok {
			bucket = &SalesBucket{Date: date}
			byDate[date] = bucket
		}
		bucket.TotalSales += o.Total
		bucket.OrderCount++
		bucket.Orders = append(bucket.Orders, o)
	}

	out := make([]SalesBucket, 0, len(byDate))
	for _, bucket := range byDate {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

func inQueue(status string) bool {
	return status == StatusPending || status == StatusPreparing || status == StatusReady
}
