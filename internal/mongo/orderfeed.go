package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/armanaros/p-town-pos/internal/order"
)

// OrderFeed implements order.Feed on a MongoDB collection. A change stream
// drives the push side: every remote write triggers a full-list reload, so
// subscribers always receive the complete current set and never a diff.
type OrderFeed struct {
	collection *mongo.Collection
	logger     apt.Logger
}

func NewOrderFeed(db *mongo.Database, logger apt.Logger) *OrderFeed {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &OrderFeed{
		collection: db.Collection("orders"),
		logger:     logger,
	}
}

func (f *OrderFeed) Create(ctx context.Context, o order.Order) error {
	if o.ID == "" {
		o.ID = apt.GenerateNewID().String()
	}
	if o.Status == "" {
		o.Status = order.StatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	if _, err := f.collection.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("cannot create order: %w", err)
	}
	return nil
}

func (f *OrderFeed) Update(ctx context.Context, id string, patch order.Patch) error {
	result, err := f.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": patch})
	if err != nil {
		return fmt.Errorf("cannot update order: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("order %s not in remote store", id)
	}
	return nil
}

// Subscribe delivers the full current list once immediately, then again after
// every remote change. The watch loop runs on one goroutine, so deliveries
// are serialized. The returned unsubscribe closes the stream and waits for
// the loop to drain; only its first call has effect.
func (f *OrderFeed) Subscribe(ctx context.Context, onSnapshot func([]order.Order)) (order.Unsubscribe, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	stream, err := f.collection.Watch(streamCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("cannot watch orders collection: %w", err)
	}

	orders, err := f.list(streamCtx)
	if err != nil {
		cancel()
		stream.Close(context.Background())
		return nil, fmt.Errorf("initial order sync: %w", err)
	}
	onSnapshot(orders)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer stream.Close(context.Background())

		for stream.Next(streamCtx) {
			current, err := f.list(streamCtx)
			if err != nil {
				f.logger.Error("cannot reload orders after change event", "error", err)
				continue
			}
			onSnapshot(current)
		}

		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			f.logger.Error("order change stream closed", "error", err)
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	return unsubscribe, nil
}

// list fetches the complete order set, oldest first, normalizing each raw
// document so schema-incomplete records cannot reach consumers.
func (f *OrderFeed) list(ctx context.Context) ([]order.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := f.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode orders: %w", err)
	}

	orders := make([]order.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, order.Normalize(doc))
	}
	return orders, nil
}
