package commands

import (
	"context"

	"github.com/appetiteclub/apt"

	"github.com/armanaros/p-town-pos/internal/mongo"
	"github.com/armanaros/p-town-pos/internal/order"
)

// SeedDemo writes the demo order batch through the remote feed so every
// running tracker picks it up on its next feed delivery.
func SeedDemo(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	client, dbName, err := connect(ctx, config)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Connected to MongoDB")

	db := client.Database(dbName)
	feed := mongo.NewOrderFeed(db, logger)

	return order.ApplyDemoSeeds(ctx, feed, db, logger)
}
