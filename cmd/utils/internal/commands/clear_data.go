package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/appetiteclub/apt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ClearData removes every order document from the remote store and deletes
// the local snapshot file, returning the tracker to a clean slate.
func ClearData(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	logger.Info("Starting order data cleanup...")

	client, dbName, err := connect(ctx, config)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Connected to MongoDB")

	collection := client.Database(dbName).Collection("orders")
	result, err := collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("delete orders: %w", err)
	}
	logger.Info("Deleted remote orders", "count", result.DeletedCount)

	snapshotPath := config.GetStringOrDef("snapshot.path", "data/orders.json")
	if err := os.Remove(snapshotPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove snapshot file: %w", err)
	}
	logger.Info("Removed local order snapshot", "path", snapshotPath)

	return nil
}

func connect(ctx context.Context, config *apt.Config) (*mongo.Client, string, error) {
	mongoURL := config.GetStringOrDef("mongo.url", "mongodb://localhost:27017")
	dbName := config.GetStringOrDef("mongo.name", "ptown_pos")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, "", fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, "", fmt.Errorf("ping mongodb: %w", err)
	}

	return client, dbName, nil
}
