package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"go.mongodb.org/mongo-driver/mongo"
)

const demoSeedApplication = "pos_demo"

// ApplyDemoSeeds writes a realistic day-of-service order batch through the
// remote feed: a live queue, fulfilled orders across two calendar days and a
// cancelled order carrying audit fields, so queue views and sales buckets have
// something to show.
func ApplyDemoSeeds(ctx context.Context, feed Feed, db *mongo.Database, logger apt.Logger) error {
	if db == nil {
		return errors.New("database is required for demo seeding")
	}
	if feed == nil {
		return errors.New("order feed is required for demo seeding")
	}

	tracker := seed.NewMongoTracker(db)

	demoSeeds := []seed.Seed{
		{
			ID:          "2025-08-06_demo_orders_v1",
			Description: "Create demo orders across the status spectrum and two sales days",
			Run: func(ctx context.Context) error {
				return seedDemoOrders(ctx, feed, logger)
			},
		},
	}

	logger.Info("Applying demo order seeds")
	if err := seed.Apply(ctx, tracker, demoSeeds, demoSeedApplication); err != nil {
		return err
	}
	logger.Info("Demo order seeds applied successfully")
	return nil
}

func seedDemoOrders(ctx context.Context, feed Feed, logger apt.Logger) error {
	for _, o := range buildDemoOrders() {
		if err := feed.Create(ctx, o); err != nil {
			return fmt.Errorf("create demo order %s: %w", o.ID, err)
		}
	}
	logger.Info("Demo orders created")
	return nil
}

func buildDemoOrders() []Order {
	day1 := time.Date(2025, 8, 5, 18, 30, 0, 0, time.UTC)
	day2 := time.Date(2025, 8, 6, 19, 0, 0, 0, time.UTC)
	table2, table5 := 2, 5
	eta := 15

	cancelledAt := day2.Add(25 * time.Minute)

	return []Order{
		{
			ID:            "demo-queue-1",
			Items:         map[string]int{"1": 2, "4": 1},
			Status:        StatusPending,
			OrderType:     TypeDineIn,
			CreatedAt:     day2.Add(90 * time.Minute),
			UpdatedAt:     day2.Add(90 * time.Minute),
			Total:         240,
			CashierName:   "Marie",
			CustomerName:  "Dela Cruz",
			TableNumber:   &table2,
			EstimatedTime: &eta,
		},
		{
			ID:           "demo-queue-2",
			Items:        map[string]int{"7": 3},
			Status:       StatusPreparing,
			OrderType:    TypeTakeOut,
			CreatedAt:    day2.Add(80 * time.Minute),
			UpdatedAt:    day2.Add(95 * time.Minute),
			Total:        150,
			CashierName:  "Marie",
			CustomerName: "Santos",
		},
		{
			ID:           "demo-queue-3",
			Items:        map[string]int{"2": 1, "3": 1},
			Status:       StatusReady,
			OrderType:    TypeDineIn,
			CreatedAt:    day2.Add(60 * time.Minute),
			UpdatedAt:    day2.Add(85 * time.Minute),
			Total:        310,
			CashierName:  "Jon",
			CustomerName: "Reyes",
			TableNumber:  &table5,
		},
		{
			ID:           "demo-served-1",
			Items:        map[string]int{"5": 2},
			Status:       StatusServed,
			OrderType:    TypeDineIn,
			CreatedAt:    day2.Add(30 * time.Minute),
			UpdatedAt:    day2.Add(70 * time.Minute),
			Total:        420,
			CashierName:  "Jon",
			CustomerName: "Garcia",
			TableNumber:  &table2,
		},
		{
			ID:           "demo-sale-1",
			Items:        map[string]int{"1": 3, "6": 1},
			Status:       StatusCompleted,
			OrderType:    TypeDineIn,
			CreatedAt:    day2,
			UpdatedAt:    day2.Add(45 * time.Minute),
			Total:        580,
			CashierName:  "Marie",
			CustomerName: "Lim",
			TableNumber:  &table5,
		},
		{
			ID:           "demo-sale-2",
			Items:        map[string]int{"8": 2},
			Status:       StatusCompleted,
			OrderType:    TypeTakeOut,
			CreatedAt:    day2.Add(time.Hour),
			UpdatedAt:    day2.Add(100 * time.Minute),
			Total:        300,
			CashierName:  "Jon",
			CustomerName: "Tan",
		},
		{
			ID:           "demo-sale-3",
			Items:        map[string]int{"2": 2, "9": 1},
			Status:       StatusCompleted,
			OrderType:    TypeDineIn,
			CreatedAt:    day1,
			UpdatedAt:    day1.Add(50 * time.Minute),
			Total:        465,
			CashierName:  "Marie",
			CustomerName: "Ocampo",
			TableNumber:  &table2,
		},
		{
			ID:                 "demo-cancelled-1",
			Items:              map[string]int{"4": 1},
			Status:             StatusCancelled,
			OrderType:          TypeTakeOut,
			CreatedAt:          day2.Add(20 * time.Minute),
			UpdatedAt:          cancelledAt,
			Total:              120,
			CashierName:        "Jon",
			CustomerName:       "Uy",
			CancellationReason: "customer left before pickup",
			CancelledBy:        "Jon",
			CancelledAt:        &cancelledAt,
		},
	}
}

// DemoSeedingFunc wraps ApplyDemoSeeds as a lifecycle start hook that seeds in
// the background without blocking service startup.
func DemoSeedingFunc(seedCtx context.Context, feed Feed, db *mongo.Database, logger apt.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		logger.Info("Starting demo order seeding in background")
		go func() {
			if err := ApplyDemoSeeds(seedCtx, feed, db, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Demo order seeds failed: %v", err)
			}
		}()
		return nil
	}
}
