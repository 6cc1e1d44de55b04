package order

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Pending through completed form the happy path; cancelled is
// reachable from any state still in the queue.
const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusServed    = "served"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Order types.
const (
	TypeDineIn  = "dine-in"
	TypeTakeOut = "take-out"
)

// Order is one tracked order. Field names on the wire match the remote store's
// document schema exactly; both sources deliver records in this shape.
type Order struct {
	ID                 string         `json:"id" bson:"_id"`
	Items              map[string]int `json:"items" bson:"items"`
	Status             string         `json:"status" bson:"status"`
	OrderType          string         `json:"orderType" bson:"orderType"`
	CreatedAt          time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt" bson:"updatedAt"`
	Total              float64        `json:"total" bson:"total"`
	CashierName        string         `json:"cashierName" bson:"cashierName"`
	CustomerName       string         `json:"customerName" bson:"customerName"`
	TableNumber        *int           `json:"tableNumber,omitempty" bson:"tableNumber,omitempty"`
	EstimatedTime      *int           `json:"estimatedTime,omitempty" bson:"estimatedTime,omitempty"`
	CancellationReason string         `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`
	CancelledBy        string         `json:"cancelledBy,omitempty" bson:"cancelledBy,omitempty"`
	CancelledAt        *time.Time     `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
}

// Draft is an order submission. The remote store assigns id, status and
// createdAt; the lifecycle layer forces status/createdAt before forwarding.
type Draft struct {
	Items         map[string]int `json:"items"`
	OrderType     string         `json:"orderType"`
	Total         float64        `json:"total"`
	CashierName   string         `json:"cashierName"`
	CustomerName  string         `json:"customerName"`
	TableNumber   *int           `json:"tableNumber,omitempty"`
	EstimatedTime *int           `json:"estimatedTime,omitempty"`
}

// Patch is a partial field update forwarded to the remote store. Only non-nil
// fields are written.
type Patch struct {
	Status             *string    `json:"status,omitempty" bson:"status,omitempty"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
	EstimatedTime      *int       `json:"estimatedTime,omitempty" bson:"estimatedTime,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`
	CancelledBy        *string    `json:"cancelledBy,omitempty" bson:"cancelledBy,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
}

// terminal reports whether no further transition is accepted from status.
func terminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// ValidStatus reports whether status is one of the six known values.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusPreparing, StatusReady, StatusServed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// transitions maps each status to the statuses reachable from it. Cancellation
// is allowed only while the order is still in the queue.
var transitions = map[string][]string{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusServed, StatusCancelled},
	StatusServed:    {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether moving from one status to another is permitted
// by the lifecycle state machine.
func CanTransition(from, to string) bool {
	if terminal(from) {
		return false
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Normalize converts a raw record from any source into an Order. It is total:
// a schema-incomplete or differently-typed record never errors, it gets the
// documented defaults instead. The same logical record always normalizes to
// the same Order regardless of which source delivered it.
func Normalize(doc map[string]any) Order {
	o := Order{
		Items:        normalizeItems(doc["items"]),
		Status:       normalizeStatus(doc["status"]),
		OrderType:    normalizeType(doc["orderType"]),
		Total:        toFloat(doc["total"]),
		CashierName:  toString(doc["cashierName"]),
		CustomerName: toString(doc["customerName"]),
	}

	if id, ok := doc["_id"]; ok {
		o.ID = NormalizeID(id)
	} else {
		o.ID = NormalizeID(doc["id"])
	}

	o.CreatedAt = toTime(doc["createdAt"], time.Now().UTC())
	o.UpdatedAt = toTime(doc["updatedAt"], o.CreatedAt)

	if n, ok := toInt(doc["tableNumber"]); ok && n >= 0 {
		o.TableNumber = &n
	}
	if n, ok := toInt(doc["estimatedTime"]); ok {
		o.EstimatedTime = &n
	}

	if o.Status == StatusCancelled {
		o.CancellationReason = toString(doc["cancellationReason"])
		o.CancelledBy = toString(doc["cancelledBy"])
		if at := toTime(doc["cancelledAt"], time.Time{}); !at.IsZero() {
			o.CancelledAt = &at
		}
	}

	return o
}

// NormalizeID maps an id of any source representation (string, JSON number,
// BSON integer) to one comparable string form. Deterministic and total.
func NormalizeID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case int:
		return strconv.Itoa(id)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case float64:
		if id == math.Trunc(id) && !math.IsInf(id, 0) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", id)
	}
}

func normalizeItems(v any) map[string]int {
	items := make(map[string]int)
	raw, ok := v.(map[string]any)
	if !ok {
		// bson.M and plain JSON objects both satisfy the assertion above;
		// anything else (missing, array, scalar) becomes an empty mapping.
		if typed, ok := v.(map[string]int); ok {
			for k, qty := range typed {
				if qty > 0 {
					items[k] = qty
				}
			}
		}
		return items
	}
	for k, qv := range raw {
		if qty, ok := toInt(qv); ok && qty > 0 {
			items[k] = qty
		}
	}
	return items
}

func normalizeStatus(v any) string {
	if s, ok := v.(string); ok && ValidStatus(s) {
		return s
	}
	return StatusPending
}

func normalizeType(v any) string {
	if s, ok := v.(string); ok && (s == TypeDineIn || s == TypeTakeOut) {
		return s
	}
	return TypeDineIn
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		if n < 0 || math.IsNaN(n) {
			return 0
		}
		return n
	case float32:
		return toFloat(float64(n))
	case int:
		return toFloat(float64(n))
	case int32:
		return toFloat(float64(n))
	case int64:
		return toFloat(float64(n))
	default:
		return 0
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func toTime(v any, fallback time.Time) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case primitive.DateTime:
		return t.Time().UTC()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.UTC()
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.UTC()
		}
		return fallback
	default:
		return fallback
	}
}
